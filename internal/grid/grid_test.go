package grid

import (
	"testing"
	"time"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestTimeToY(t *testing.T) {
	m := NewModel(DefaultConfig())

	if got := m.TimeToY(at(4, 9, 30)); got != 704 {
		t.Fatalf("TimeToY(09:30) = %d, want 704", got)
	}
	if got := m.SlotIndex(at(4, 9, 30)); got != 38 {
		t.Fatalf("SlotIndex(09:30) = %d, want 38", got)
	}

	m.SetBannerAreaHeight(50)
	m.SetScroll(100, 600)
	if got := m.TimeToY(at(4, 9, 30)); got != 704+50-100 {
		t.Fatalf("TimeToY with banner and scroll = %d, want %d", got, 704+50-100)
	}
}

func TestVisualSpan(t *testing.T) {
	tests := []struct {
		name       string
		mode       HeightMode
		start, end time.Time
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{"true height keeps exact times", TrueHeightAll, at(4, 9, 5), at(4, 9, 20), at(4, 9, 5), at(4, 9, 20)},
		{"zero duration covers one slot", TrueHeightAll, at(4, 14, 0), at(4, 14, 0), at(4, 14, 0), at(4, 14, 15)},
		{"full blocks round both ends", FullHalfHourBlocksAll, at(4, 9, 5), at(4, 9, 20), at(4, 9, 0), at(4, 9, 30)},
		{"full blocks keep boundaries", FullHalfHourBlocksAll, at(4, 9, 0), at(4, 9, 30), at(4, 9, 0), at(4, 9, 30)},
		{"end blocks round end only", EndHalfHourBlocksAll, at(4, 9, 5), at(4, 9, 20), at(4, 9, 5), at(4, 9, 30)},
		{"full short rounds short", FullHalfHourBlocksShort, at(4, 9, 5), at(4, 9, 15), at(4, 9, 0), at(4, 9, 15)},
		{"full short ignores long", FullHalfHourBlocksShort, at(4, 9, 5), at(4, 10, 2), at(4, 9, 5), at(4, 10, 2)},
		{"end short rounds short", EndHalfHourBlocksShort, at(4, 9, 5), at(4, 9, 10), at(4, 9, 5), at(4, 9, 15)},
		{"end short ignores long", EndHalfHourBlocksShort, at(4, 9, 5), at(4, 9, 40), at(4, 9, 5), at(4, 9, 40)},
		{"end rounding crosses midnight", EndHalfHourBlocksAll, at(4, 23, 50), at(4, 23, 55), at(4, 23, 50), at(5, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.HeightMode = tt.mode
			m := NewModel(cfg)

			gotStart, gotEnd := m.VisualSpan(tt.start, tt.end)
			if !gotStart.Equal(tt.wantStart) || !gotEnd.Equal(tt.wantEnd) {
				t.Fatalf("VisualSpan = %s-%s, want %s-%s",
					gotStart.Format("15:04"), gotEnd.Format("15:04"),
					tt.wantStart.Format("15:04"), tt.wantEnd.Format("15:04"))
			}
		})
	}
}

func TestVisualSpanMinSlotHeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSlotHeight = true
	m := NewModel(cfg)

	_, end := m.VisualSpan(at(4, 9, 0), at(4, 9, 5))
	if !end.Equal(at(4, 9, 15)) {
		t.Fatalf("end = %s, want 09:15", end.Format("15:04"))
	}
}

func TestHourRangeRect(t *testing.T) {
	m := NewModel(DefaultConfig())
	base := Rect{X: 10, Y: 0, Width: 100, Height: 500}

	r := m.HourRangeRect(at(4, 9, 0), at(4, 10, 0), base)
	if r.X != 10 || r.Width != 100 || r.Height != m.HourHeight() {
		t.Fatalf("rect = %+v, want x=10 w=100 h=%d", r, m.HourHeight())
	}

	r = m.HourRangeRect(at(4, 9, 0), at(4, 9, 0), base)
	if r.Height != 1 {
		t.Fatalf("zero span height = %d, want 1", r.Height)
	}

	r = m.HourRangeRect(at(4, 23, 0), at(5, 0, 0), base)
	if r.Height != m.HourHeight() {
		t.Fatalf("span to midnight height = %d, want %d", r.Height, m.HourHeight())
	}
}

func TestPixelToTime(t *testing.T) {
	m := NewModel(TerminalConfig())
	client := Size{Width: 76, Height: 40}
	monday := at(4, 0, 0)

	cols := m.Columns(client)
	if cols.Area.X != 7 || cols.Width != 9 || cols.Extra != 6 {
		t.Fatalf("columns = %+v", cols)
	}

	x := cols.Day(2).X + 1

	if got := m.PixelToTime(client, monday, x, 1+38); !got.Equal(at(6, 9, 30)) {
		t.Fatalf("PixelToTime = %s, want 2024-03-06 09:30", got)
	}
	if got := m.PixelToTime(client, monday, x, 0); !got.Equal(at(6, 0, 0)) {
		t.Fatalf("above grid = %s, want bare day", got)
	}
	if got := m.PixelToTime(client, monday, x, 1+500); !got.Equal(at(6, 23, 45)) {
		t.Fatalf("below grid = %s, want last slot", got)
	}
	if got := m.PixelToTime(client, monday, 0, 1); !got.Equal(at(4, 0, 0)) {
		t.Fatalf("hour label column = %s, want first day", got)
	}
	if got := m.PixelToTime(client, monday, 1000, 1); !got.Equal(at(10, 0, 0)) {
		t.Fatalf("past last column = %s, want last day", got)
	}
}

func TestColumns(t *testing.T) {
	c := Columns{Area: Rect{X: 7, Y: 1, Width: 69, Height: 10}, Count: 7, Width: 9, Extra: 6}

	if d := c.Day(0); d.X != 7 || d.Width != 15 {
		t.Fatalf("day 0 = %+v", d)
	}
	if d := c.Day(1); d.X != 22 || d.Width != 9 {
		t.Fatalf("day 1 = %+v", d)
	}
	if got := c.IndexAt(21); got != 0 {
		t.Fatalf("IndexAt(21) = %d, want 0", got)
	}
	if got := c.IndexAt(22); got != 1 {
		t.Fatalf("IndexAt(22) = %d, want 1", got)
	}
	if got := c.X(-1); got != -2 {
		t.Fatalf("X(-1) = %d, want -2", got)
	}
}

func TestWorkingHours(t *testing.T) {
	m := NewModel(DefaultConfig())
	col := Rect{X: 0, Width: 100}

	if _, ok := m.WorkingHours(at(9, 0, 0), col); ok {
		t.Fatal("saturday should have no working hours")
	}
	r, ok := m.WorkingHours(at(4, 0, 0), col)
	if !ok {
		t.Fatal("monday should have working hours")
	}
	if r.Y != m.TimeToY(at(4, 8, 30)) || r.Bottom() != m.TimeToY(at(4, 18, 30)) {
		t.Fatalf("band = %+v", r)
	}
}

func TestScroll(t *testing.T) {
	m := NewModel(TerminalConfig())

	if got := m.MaxScroll(40); got != 57 {
		t.Fatalf("MaxScroll = %d, want 57", got)
	}
	m.SetScroll(1000, 40)
	if m.Scroll() != 57 {
		t.Fatalf("scroll = %d, want clamp to 57", m.Scroll())
	}
	m.ScrollBy(false, 40)
	if m.Scroll() != 53 {
		t.Fatalf("scroll up = %d, want 53", m.Scroll())
	}
	m.ScrollToStartHour(40)
	if m.Scroll() != 32 {
		t.Fatalf("start hour scroll = %d, want 32", m.Scroll())
	}
	m.SetScroll(-5, 40)
	if m.Scroll() != 0 {
		t.Fatalf("scroll = %d, want 0", m.Scroll())
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{SlotsPerHour: 7, SlotHeight: 0, StartHour: 30, Days: 0, HeightMode: HeightMode(42),
		WorkingStart: Clock{Hour: 18}, WorkingEnd: Clock{Hour: 9}}
	cfg.Normalize()

	if cfg.SlotsPerHour != 4 || cfg.SlotHeight != 1 || cfg.StartHour != 23 || cfg.Days != 1 {
		t.Fatalf("normalized = %+v", cfg)
	}
	if cfg.HeightMode != TrueHeightAll {
		t.Fatalf("height mode = %v", cfg.HeightMode)
	}
	if cfg.WorkingStart.Hour != 9 || cfg.WorkingEnd.Hour != 18 {
		t.Fatalf("working hours not swapped: %v-%v", cfg.WorkingStart, cfg.WorkingEnd)
	}
}

func TestParsers(t *testing.T) {
	c, err := ParseClock("08:30")
	if err != nil || c.Minutes() != 510 {
		t.Fatalf("ParseClock = %v, %v", c, err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for 25:00")
	}

	for mode, name := range heightModeNames {
		got, err := ParseHeightMode(name)
		if err != nil || got != mode {
			t.Fatalf("ParseHeightMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseHeightMode("bogus"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestWeekStart(t *testing.T) {
	if got := WeekStart(at(6, 15, 0)); !got.Equal(at(4, 0, 0)) {
		t.Fatalf("WeekStart(wed) = %s", got)
	}
	if got := WeekStart(at(10, 15, 0)); !got.Equal(at(4, 0, 0)) {
		t.Fatalf("WeekStart(sun) = %s", got)
	}
	if got := CalendarDays(at(4, 23, 0), at(5, 1, 0)); got != 1 {
		t.Fatalf("CalendarDays = %d, want 1", got)
	}
}
