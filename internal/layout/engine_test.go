package layout

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

var client = grid.Size{Width: 752, Height: 600}

func ts(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func appt(id, group string, start, end time.Time) core.Appointment {
	return core.Appointment{ID: id, Title: id, Group: group, Start: start, End: end}
}

func allDay(id string, start, end time.Time) core.Appointment {
	a := appt(id, "", start, end)
	a.AllDay = true
	return a
}

func viewOf(t *testing.T, views []View, id string) View {
	t.Helper()
	for _, v := range views {
		if v.Appointment.ID == id {
			return v
		}
	}
	t.Fatalf("no view for %q", id)
	return View{}
}

func TestOverlappingSameGroupSplitsColumn(t *testing.T) {
	appts := []core.Appointment{
		appt("a", "work", ts(4, 9, 0), ts(4, 10, 0)),
		appt("b", "work", ts(4, 9, 30), ts(4, 10, 30)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if res.ConflictCounts["a"] != 2 || res.ConflictCounts["b"] != 2 {
		t.Fatalf("conflict counts = %v, want 2 and 2", res.ConflictCounts)
	}

	a, b := viewOf(t, res.SameDay, "a"), viewOf(t, res.SameDay, "b")
	// day column starts at 52, the group slice after the grip at 59 and is 693 wide
	half := 693 / 2
	if a.Rect.X != 59 || a.Rect.Width != half || b.Rect.Width != half {
		t.Fatalf("a = %+v, b = %+v, want x=59 and width %d", a.Rect, b.Rect, half)
	}
	if b.Rect.X < a.Rect.X+half {
		t.Fatalf("b.X = %d, want >= %d", b.Rect.X, a.Rect.X+half)
	}
	if a.Rect.Intersects(b.Rect) {
		t.Fatalf("rects overlap: %+v %+v", a.Rect, b.Rect)
	}
}

func TestBannerLayersFirstFit(t *testing.T) {
	appts := []core.Appointment{
		allDay("e1", ts(4, 0, 0), ts(6, 0, 0)),
		allDay("e2", ts(5, 0, 0), ts(7, 0, 0)),
		allDay("e3", ts(8, 0, 0), ts(9, 0, 0)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 7), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := map[string]int{"e1": 0, "e2": 1, "e3": 0}
	if !reflect.DeepEqual(res.Layers, want) {
		t.Fatalf("layers = %v, want %v", res.Layers, want)
	}
	if res.BannerHeight != 2*(20+5)+5 {
		t.Fatalf("banner height = %d, want 55", res.BannerHeight)
	}

	e1 := viewOf(t, res.Banners, "e1")
	if e1.Rect != (grid.Rect{X: 52, Y: 25, Width: 200, Height: 20}) {
		t.Fatalf("e1 rect = %+v", e1.Rect)
	}
	e2 := viewOf(t, res.Banners, "e2")
	if e2.Rect.Y != 50 || e2.Rect.X != 152 {
		t.Fatalf("e2 rect = %+v", e2.Rect)
	}
	if len(res.SameDay) != 0 {
		t.Fatalf("same-day views = %d, want 0", len(res.SameDay))
	}
}

func TestBannerLayersNeverShareDates(t *testing.T) {
	var appts []core.Appointment
	for i := 0; i < 12; i++ {
		start := ts(4+i%5, 0, 0)
		appts = append(appts, allDay(fmt.Sprintf("b%d", i), start, start.AddDate(0, 0, 1+i%3)))
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 7), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i, a := range appts {
		for _, b := range appts[i+1:] {
			if res.Layers[a.ID] != res.Layers[b.ID] {
				continue
			}
			if dateSpanOf(newEntry(a)).intersects(dateSpanOf(newEntry(b))) {
				t.Fatalf("%s and %s share layer %d and dates", a.ID, b.ID, res.Layers[a.ID])
			}
		}
	}
}

func TestZeroDurationOccupiesOneSlot(t *testing.T) {
	appts := []core.Appointment{
		appt("zero", "g", ts(4, 14, 0), ts(4, 14, 0)),
		appt("quarter", "g", ts(4, 14, 0), ts(4, 14, 15)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	zero := viewOf(t, res.SameDay, "zero")
	if zero.Rect.Height != 18 {
		t.Fatalf("zero-duration height = %d, want one slot (18)", zero.Rect.Height)
	}
	if res.ConflictCounts["zero"] != 2 || res.ConflictCounts["quarter"] != 2 {
		t.Fatalf("conflict counts = %v, want both 2", res.ConflictCounts)
	}
}

func TestShortAppointmentRoundsToSlot(t *testing.T) {
	cfg := grid.DefaultConfig()
	cfg.HeightMode = grid.FullHalfHourBlocksShort
	e := NewEngine(cfg)

	res, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("short", "g", ts(4, 9, 5), ts(4, 9, 15)),
	}, client)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	v := viewOf(t, res.SameDay, "short")
	if v.Rect.Y != e.Grid().TimeToY(ts(4, 9, 0)) || v.Rect.Height != 18 {
		t.Fatalf("rect = %+v, want y=%d h=18", v.Rect, e.Grid().TimeToY(ts(4, 9, 0)))
	}
	// the grip follows the true start
	if v.Grip.Y != e.Grid().TimeToY(ts(4, 9, 5)) || v.Grip.Width != cfg.GripWidth {
		t.Fatalf("grip = %+v", v.Grip)
	}
}

func TestMalformedIntervalIsReported(t *testing.T) {
	appts := []core.Appointment{
		appt("ok1", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("bad", "g", ts(4, 11, 0), ts(4, 10, 0)),
		appt("ok2", "g", ts(4, 13, 0), ts(4, 14, 0)),
	}

	e := NewEngine(grid.DefaultConfig())
	res, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 1), appts, client)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var ie *IntervalError
	errs := multierr.Errors(err)
	if len(errs) != 1 || !errors.As(errs[0], &ie) || ie.ID != "bad" {
		t.Fatalf("errors = %v, want one IntervalError for bad", errs)
	}

	if len(res.SameDay) != 3 {
		t.Fatalf("same-day views = %d, want 3", len(res.SameDay))
	}
	bad := viewOf(t, res.SameDay, "bad")
	if bad.Rect.Y != e.Grid().TimeToY(ts(4, 11, 0)) || bad.Rect.Height != 18 {
		t.Fatalf("malformed rect = %+v, want a one-slot box at 11:00", bad.Rect)
	}
}

func TestMissingAndDuplicateIDs(t *testing.T) {
	appts := []core.Appointment{
		appt("", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("dup", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("dup", "g", ts(4, 12, 0), ts(4, 13, 0)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if !errors.Is(multierr.Errors(err)[0], ErrMissingID) || !errors.Is(multierr.Errors(err)[1], ErrDuplicateID) {
		t.Fatalf("err = %v", err)
	}
	if len(res.SameDay) != 1 {
		t.Fatalf("same-day views = %d, want 1", len(res.SameDay))
	}
	if v := viewOf(t, res.SameDay, "dup"); v.Rect.Y != NewEngine(grid.DefaultConfig()).Grid().TimeToY(ts(4, 9, 0)) {
		t.Fatalf("first occurrence should win, got %+v", v.Rect)
	}
}

func TestGroupsGetSeparateSlices(t *testing.T) {
	appts := []core.Appointment{
		appt("b1", "beta", ts(4, 9, 0), ts(4, 10, 0)),
		appt("a1", "alpha", ts(4, 9, 0), ts(4, 10, 0)),
		appt("a2", "alpha", ts(4, 9, 0), ts(4, 10, 0)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// slot holds 3 appointments in 2 groups: 3 - (2-1) = 2
	if res.ConflictCounts["a1"] != 2 || res.ConflictCounts["a2"] != 2 {
		t.Fatalf("alpha counts = %v", res.ConflictCounts)
	}

	slice := 693 / 2
	b1 := viewOf(t, res.SameDay, "b1")
	if b1.Rect.X != 59+slice {
		t.Fatalf("beta x = %d, want %d", b1.Rect.X, 59+slice)
	}
	a1, a2 := viewOf(t, res.SameDay, "a1"), viewOf(t, res.SameDay, "a2")
	if a1.Rect.X != 59 || a2.Rect.X != 59+slice/2 {
		t.Fatalf("alpha x = %d, %d", a1.Rect.X, a2.Rect.X)
	}
	if a2.Rect.Right() > b1.Rect.X {
		t.Fatalf("alpha spills into beta: %+v %+v", a2.Rect, b1.Rect)
	}
}

func TestNoOverlapWithinGroup(t *testing.T) {
	tests := []struct {
		name  string
		appts []core.Appointment
	}{
		{"three in parallel", []core.Appointment{
			appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
			appt("b", "g", ts(4, 9, 0), ts(4, 10, 0)),
			appt("c", "g", ts(4, 9, 0), ts(4, 10, 0)),
		}},
		{"staggered", []core.Appointment{
			appt("a", "g", ts(4, 9, 0), ts(4, 11, 0)),
			appt("b", "g", ts(4, 9, 0), ts(4, 10, 0)),
			appt("c", "g", ts(4, 10, 0), ts(4, 11, 0)),
		}},
		{"back to back", []core.Appointment{
			appt("a", "g", ts(4, 9, 0), ts(4, 9, 30)),
			appt("b", "g", ts(4, 9, 30), ts(4, 10, 0)),
			appt("c", "g", ts(4, 10, 0), ts(4, 10, 30)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(NewRange(ts(4, 0, 0), 1), tt.appts, grid.DefaultConfig(), client)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			for i, a := range res.SameDay {
				if a.ConflictCount < 1 {
					t.Fatalf("%s conflict count %d", a.Appointment.ID, a.ConflictCount)
				}
				for _, b := range res.SameDay[i+1:] {
					if a.Rect.Intersects(b.Rect) {
						t.Fatalf("%s %+v overlaps %s %+v", a.Appointment.ID, a.Rect, b.Appointment.ID, b.Rect)
					}
				}
			}
		})
	}
}

func TestConflictCountIsUnbounded(t *testing.T) {
	var appts []core.Appointment
	for i := 0; i < 50; i++ {
		appts = append(appts, appt(fmt.Sprintf("a%d", i), "g", ts(4, 9, 0), ts(4, 9, 30)))
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for id, n := range res.ConflictCounts {
		if n != 50 {
			t.Fatalf("%s count = %d, want 50", id, n)
		}
	}
}

func TestConflictCountNeverLowered(t *testing.T) {
	appts := []core.Appointment{
		appt("long", "g", ts(4, 9, 0), ts(4, 12, 0)),
		appt("x", "g", ts(4, 9, 0), ts(4, 9, 30)),
		appt("y", "g", ts(4, 9, 0), ts(4, 9, 30)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.ConflictCounts["long"] != 3 {
		t.Fatalf("long count = %d, want 3 from its busiest slot", res.ConflictCounts["long"])
	}
}

func TestDeterministic(t *testing.T) {
	appts := []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("b", "h", ts(5, 9, 30), ts(5, 10, 30)),
		appt("c", "g", ts(4, 9, 30), ts(4, 11, 0)),
		allDay("d", ts(4, 0, 0), ts(6, 0, 0)),
		appt("e", "g", ts(6, 22, 0), ts(7, 2, 0)),
	}
	r := NewRange(ts(4, 0, 0), 7)

	e := NewEngine(grid.DefaultConfig())
	first, err := e.ComputeLayout(r, appts, client)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	second, err := e.ComputeLayout(r, appts, client)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two passes over the same input differ")
	}
}

func TestCacheFreshness(t *testing.T) {
	e := NewEngine(grid.DefaultConfig())
	r := NewRange(ts(4, 0, 0), 7)

	if _, err := e.ComputeLayout(r, []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
		appt("b", "g", ts(5, 9, 0), ts(5, 10, 0)),
	}, client); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if _, ok := e.RectFor("b"); !ok {
		t.Fatal("b missing after first pass")
	}

	if _, err := e.ComputeLayout(r, []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
	}, client); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if _, ok := e.RectFor("b"); ok {
		t.Fatal("b still cached after a pass without it")
	}
	if _, ok := e.RectFor("a"); !ok {
		t.Fatal("a missing after second pass")
	}
}

func TestOutOfRangeDaysAreNotPlaced(t *testing.T) {
	res, err := Compute(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("later", "g", ts(6, 9, 0), ts(6, 10, 0)),
	}, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.SameDay) != 0 {
		t.Fatalf("same-day views = %d, want 0", len(res.SameDay))
	}
}

func TestLegacyDayKeysCollideAcrossMonths(t *testing.T) {
	april := time.Date(2024, time.April, 4, 9, 0, 0, 0, time.UTC)
	appts := []core.Appointment{appt("april", "g", april, april.Add(time.Hour))}
	r := NewRange(ts(4, 0, 0), 1)

	res, err := Compute(r, appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.SameDay) != 0 {
		t.Fatal("full-date keys should keep April out of March")
	}

	cfg := grid.DefaultConfig()
	cfg.LegacyDayKeys = true
	res, err = Compute(r, appts, cfg, client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.SameDay) != 1 {
		t.Fatal("day-of-month keys should put April 4 in the March 4 column")
	}
}

func TestRouting(t *testing.T) {
	tests := []struct {
		name string
		a    core.Appointment
		want BucketKind
	}{
		{"same day", appt("a", "", ts(4, 9, 0), ts(4, 10, 0)), SameDay},
		{"all day flag", allDay("b", ts(4, 9, 0), ts(4, 10, 0)), Spanning},
		{"crosses midnight", appt("c", "", ts(4, 22, 0), ts(5, 1, 0)), Spanning},
		{"inverted across days", appt("d", "", ts(5, 1, 0), ts(4, 22, 0)), SameDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.a, false).Kind; got != tt.want {
				t.Fatalf("Route = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanDays(t *testing.T) {
	tests := []struct {
		start, end time.Time
		want       int
	}{
		{ts(4, 0, 0), ts(5, 0, 0), 1},
		{ts(4, 0, 0), ts(7, 0, 0), 3},
		{ts(4, 22, 0), ts(5, 2, 0), 1},
		{ts(4, 22, 0), ts(6, 2, 0), 2},
		{ts(4, 10, 0), ts(6, 12, 0), 2},
		{ts(4, 10, 0), ts(4, 10, 0), 1},
	}
	for _, tt := range tests {
		if got := spanDays(tt.start, tt.end); got != tt.want {
			t.Errorf("spanDays(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestHitTest(t *testing.T) {
	e := NewEngine(grid.DefaultConfig())
	e.Grid().SetScroll(8*72, client.Height)

	_, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 10, 0)),
		allDay("banner", ts(4, 0, 0), ts(5, 0, 0)),
	}, client)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	r, ok := e.RectFor("a")
	if !ok {
		t.Fatal("a not laid out")
	}
	if got, ok := e.HitTest(r.X+1, r.Y+1); !ok || got.ID != "a" {
		t.Fatalf("HitTest inside a = %q, %v", got.ID, ok)
	}
	if _, ok := e.HitTest(r.X+1, r.Bottom()+40); ok {
		t.Fatal("HitTest below a should miss")
	}

	b, _ := e.RectFor("banner")
	if got, ok := e.HitTest(b.X+1, b.Y+1); !ok || got.ID != "banner" {
		t.Fatalf("HitTest inside banner = %q, %v", got.ID, ok)
	}

	if got := e.TimeAt(r.X+1, r.Y+1); !got.Equal(ts(4, 9, 0)) {
		t.Fatalf("TimeAt = %s, want 09:00", got)
	}
}

func TestHitTestIgnoresScrolledAwayViews(t *testing.T) {
	e := NewEngine(grid.DefaultConfig())
	e.Grid().SetScroll(10*72, client.Height)

	if _, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 1), []core.Appointment{
		appt("early", "g", ts(4, 9, 0), ts(4, 10, 0)),
	}, client); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	r, _ := e.RectFor("early")
	if r.Bottom() > e.Grid().HeaderHeight() {
		t.Fatalf("expected early to be scrolled above the grid, rect %+v", r)
	}
	if _, ok := e.HitTest(r.X+1, r.Bottom()-1); ok {
		t.Fatal("hit a view hidden under the header")
	}
}

func TestColumnWrapsToSliceOrigin(t *testing.T) {
	appts := []core.Appointment{
		appt("a", "g", ts(4, 9, 0), ts(4, 9, 30)),
		appt("b", "g", ts(4, 9, 0), ts(4, 11, 0)),
		appt("c", "g", ts(4, 10, 0), ts(4, 11, 0)),
		appt("d", "g", ts(4, 10, 0), ts(4, 11, 0)),
	}

	res, err := Compute(NewRange(ts(4, 0, 0), 1), appts, grid.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	tests := []struct {
		id    string
		x     int
		width int
		count int
	}{
		{"a", 59, 693 / 2, 2},
		{"b", 290, 693 / 3, 3},
		{"c", 521, 693 / 3, 3},
		// 521+2*231 runs past the slice edge at 752, so d starts over.
		{"d", 59, 693 / 3, 3},
	}
	for _, tt := range tests {
		v := viewOf(t, res.SameDay, tt.id)
		if v.Rect.X != tt.x || v.Rect.Width != tt.width {
			t.Fatalf("%s rect = %+v, want x=%d width=%d", tt.id, v.Rect, tt.x, tt.width)
		}
		if v.ConflictCount != tt.count {
			t.Fatalf("%s conflict count = %d, want %d", tt.id, v.ConflictCount, tt.count)
		}
	}
}

func TestHitTestClipsBannersToStrip(t *testing.T) {
	e := NewEngine(grid.DefaultConfig())
	if _, err := e.ComputeLayout(NewRange(ts(4, 0, 0), 7), []core.Appointment{
		allDay("old", ts(1, 0, 0), ts(6, 0, 0)),
	}, client); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	r, ok := e.RectFor("old")
	if !ok {
		t.Fatal("old not laid out")
	}
	strip := e.Grid().BannerAreaRect(client)
	if r.X >= strip.X {
		t.Fatalf("expected old to start left of the strip, rect %+v strip %+v", r, strip)
	}

	y := r.Y + 1
	if _, ok := e.HitTest(strip.X-1, y); ok {
		t.Fatal("hit a banner in the hour-label column")
	}
	if got, ok := e.HitTest(strip.X+1, y); !ok || got.ID != "old" {
		t.Fatalf("HitTest inside strip = %q, %v", got.ID, ok)
	}
}
