package layout

import (
	"time"

	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

// SelectionKind tags a Selection.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectDateRange
	SelectAppointment
)

// Selection is what the user last picked: nothing, a time range, or an
// appointment.
type Selection struct {
	Kind          SelectionKind
	Start, End    time.Time
	AppointmentID string
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection { return e.sel }

// Generation increases on every selection change.
func (e *Engine) Generation() uint64 { return e.gen }

func (e *Engine) setSelection(s Selection) {
	e.sel = s
	e.gen++
	e.cache.markSelected(s.AppointmentID, e.grid.Config().BorderAll)
}

// SelectAppointment selects the appointment with the given ID.
func (e *Engine) SelectAppointment(id string) {
	e.setSelection(Selection{Kind: SelectAppointment, AppointmentID: id})
}

// SelectRange selects the time range between start and end.
func (e *Engine) SelectRange(start, end time.Time) {
	if end.Before(start) {
		start, end = end, start
	}
	e.setSelection(Selection{Kind: SelectDateRange, Start: start, End: end})
}

// ClearSelection selects nothing.
func (e *Engine) ClearSelection() {
	e.setSelection(Selection{})
}

// SelectAt updates the selection for a click at the client point: the
// appointment under it, nothing for the header rows, or a time range at the
// clicked slot. A wide range covers an hour instead of one slot.
func (e *Engine) SelectAt(x, y int, wide bool) Selection {
	if a, ok := e.HitTest(x, y); ok {
		e.SelectAppointment(a.ID)
		return e.sel
	}
	if y < e.grid.HeaderHeight() {
		e.ClearSelection()
		return e.sel
	}
	start := e.TimeAt(x, y)
	length := e.grid.SlotDuration()
	if wide {
		length = time.Hour
	}
	e.SelectRange(start, start.Add(length))
	return e.sel
}

// SelectionRect returns the rectangle of a time-range selection in the
// column of the day it starts on.
func (e *Engine) SelectionRect() (grid.Rect, bool) {
	if e.sel.Kind != SelectDateRange {
		return grid.Rect{}, false
	}
	day := grid.CalendarDays(e.rng.Start, e.sel.Start)
	if day < 0 || day >= e.rng.Days {
		return grid.Rect{}, false
	}
	return e.grid.HourRangeRect(e.sel.Start, e.sel.End, e.DayRect(day)), true
}

type editState struct {
	active bool
	id     string
}

// EditTarget is an open edit session.
type EditTarget struct {
	Appointment core.Appointment
	// Bounds is where an editor should be drawn: the view's rectangle
	// without its grip.
	Bounds grid.Rect
}

// EditResult is the outcome of an edit session.
type EditResult struct {
	ID        string
	Title     string
	Cancelled bool
}

// PendingEdit is a deferred request to start editing. It goes stale when
// the selection changes before it runs.
type PendingEdit struct {
	ID         string
	Generation uint64
}

// Editing reports whether an edit session is open.
func (e *Engine) Editing() bool { return e.edit.active }

// BeginEdit opens an edit session on the appointment with the given ID.
// Locked appointments and appointments absent from the latest pass cannot
// be edited, and only one session can be open at a time.
func (e *Engine) BeginEdit(id string) (EditTarget, error) {
	if e.edit.active {
		return EditTarget{}, ErrEditInProgress
	}
	v, ok := e.cache.Lookup(id)
	if !ok {
		return EditTarget{}, ErrNotVisible
	}
	if v.Appointment.Locked {
		return EditTarget{}, ErrLocked
	}

	grip := e.grid.Config().GripWidth
	bounds := v.Rect
	bounds.X += grip
	bounds.Width = max(1, bounds.Width-grip)

	e.edit = editState{active: true, id: id}
	return EditTarget{Appointment: v.Appointment, Bounds: bounds}, nil
}

// FinishEdit closes the open session with the edited title, or discards it
// when cancel is set. It reports false when no session was open.
func (e *Engine) FinishEdit(title string, cancel bool) (EditResult, bool) {
	if !e.edit.active {
		return EditResult{}, false
	}
	res := EditResult{ID: e.edit.id, Title: title, Cancelled: cancel}
	e.edit = editState{}
	return res, true
}

// ScheduleEdit captures the selected appointment for a deferred edit.
func (e *Engine) ScheduleEdit() (PendingEdit, error) {
	if e.sel.Kind != SelectAppointment {
		return PendingEdit{}, ErrNoSelection
	}
	return PendingEdit{ID: e.sel.AppointmentID, Generation: e.gen}, nil
}

// RunPendingEdit opens the session captured by p if the selection has not
// changed since. A stale or refused request is dropped without an error.
func (e *Engine) RunPendingEdit(p PendingEdit) (EditTarget, bool) {
	if p.Generation != e.gen || e.sel.Kind != SelectAppointment || e.sel.AppointmentID != p.ID {
		e.log.Debug("pending edit dropped", zap.String("id", p.ID), zap.Uint64("generation", p.Generation))
		return EditTarget{}, false
	}
	t, err := e.BeginEdit(p.ID)
	if err != nil {
		e.log.Debug("pending edit refused", zap.String("id", p.ID), zap.Error(err))
		return EditTarget{}, false
	}
	return t, true
}
