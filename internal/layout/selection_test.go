package layout

import (
	"errors"
	"testing"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

func editFixture(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(grid.DefaultConfig())
	e.Grid().SetScroll(8*72, client.Height)

	locked := appt("locked", "g", ts(4, 11, 0), ts(4, 12, 0))
	locked.Locked = true
	if _, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("b", "g", ts(4, 9, 0), ts(4, 10, 0)),
		locked,
	}, client); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	return e
}

func TestEditSessionBlocksLayout(t *testing.T) {
	e := editFixture(t)

	target, err := e.BeginEdit("a")
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	r, _ := e.RectFor("a")
	if target.Bounds.X != r.X+5 || target.Appointment.ID != "a" {
		t.Fatalf("bounds = %+v, rect %+v", target.Bounds, r)
	}

	if _, err := e.BeginEdit("b"); !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("second BeginEdit err = %v", err)
	}
	if _, err := e.ComputeLayout(e.Range(), nil, client); !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("ComputeLayout during edit err = %v", err)
	}
	if _, ok := e.RectFor("a"); !ok {
		t.Fatal("refused pass must leave the cache intact")
	}

	res, ok := e.FinishEdit("renamed", false)
	if !ok || res.ID != "a" || res.Title != "renamed" || res.Cancelled {
		t.Fatalf("FinishEdit = %+v, %v", res, ok)
	}
	if _, ok := e.FinishEdit("again", false); ok {
		t.Fatal("FinishEdit without a session should report false")
	}
	if _, err := e.ComputeLayout(e.Range(), nil, client); err != nil {
		t.Fatalf("ComputeLayout after edit: %v", err)
	}
}

func TestBeginEditRefusals(t *testing.T) {
	e := editFixture(t)

	if _, err := e.BeginEdit("locked"); !errors.Is(err, ErrLocked) {
		t.Fatalf("locked err = %v", err)
	}
	if _, err := e.BeginEdit("ghost"); !errors.Is(err, ErrNotVisible) {
		t.Fatalf("ghost err = %v", err)
	}
	if e.Editing() {
		t.Fatal("refused edit left a session open")
	}
}

func TestPendingEditStaleness(t *testing.T) {
	e := editFixture(t)

	if _, err := e.ScheduleEdit(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("ScheduleEdit without selection err = %v", err)
	}

	e.SelectAppointment("a")
	p, err := e.ScheduleEdit()
	if err != nil {
		t.Fatalf("ScheduleEdit: %v", err)
	}
	e.SelectAppointment("b")
	if _, ok := e.RunPendingEdit(p); ok {
		t.Fatal("pending edit ran after the selection changed")
	}
	if e.Editing() {
		t.Fatal("stale edit opened a session")
	}

	p, _ = e.ScheduleEdit()
	target, ok := e.RunPendingEdit(p)
	if !ok || target.Appointment.ID != "b" {
		t.Fatalf("RunPendingEdit = %+v, %v", target, ok)
	}
	e.FinishEdit("", true)

	e.SelectAppointment("locked")
	p, _ = e.ScheduleEdit()
	if _, ok := e.RunPendingEdit(p); ok {
		t.Fatal("locked appointment opened for editing")
	}
}

func TestSelectAt(t *testing.T) {
	e := editFixture(t)

	r, _ := e.RectFor("a")
	if s := e.SelectAt(r.X+1, r.Y+1, false); s.Kind != SelectAppointment || s.AppointmentID != "a" {
		t.Fatalf("click on a = %+v", s)
	}
	a, _ := e.Cache().Lookup("a")
	b, _ := e.Cache().Lookup("b")
	if !a.Selected || !a.Border || b.Selected || b.Border {
		t.Fatalf("flags a=%v/%v b=%v/%v", a.Selected, a.Border, b.Selected, b.Border)
	}

	gen := e.Generation()
	// 14:00 is free
	y := e.Grid().TimeToY(ts(4, 14, 0))
	s := e.SelectAt(r.X+1, y, false)
	if s.Kind != SelectDateRange || !s.Start.Equal(ts(4, 14, 0)) || !s.End.Equal(ts(4, 14, 15)) {
		t.Fatalf("click on empty slot = %+v", s)
	}
	if e.Generation() == gen {
		t.Fatal("generation did not advance")
	}
	sr, ok := e.SelectionRect()
	if !ok || sr.Y != y || sr.Height != 18 {
		t.Fatalf("SelectionRect = %+v, %v", sr, ok)
	}

	if s := e.SelectAt(r.X+1, y, true); !s.End.Equal(ts(4, 15, 0)) {
		t.Fatalf("wide selection end = %s", s.End)
	}

	if s := e.SelectAt(r.X+1, 0, false); s.Kind != SelectNone {
		t.Fatalf("click on header = %+v", s)
	}
}

func TestBorderAll(t *testing.T) {
	cfg := grid.DefaultConfig()
	cfg.BorderAll = true

	res, err := Compute(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
	}, cfg, client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if v := viewOf(t, res.SameDay, "a"); !v.Border || v.Selected {
		t.Fatalf("view flags = %+v", v)
	}
}
