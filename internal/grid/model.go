package grid

import "time"

// Model converts between wall-clock time and grid coordinates. It owns the
// vertical scroll offset and the height of the banner strip, both of which
// shift every same-day rectangle.
type Model struct {
	cfg        Config
	scroll     int
	bannerArea int
}

// NewModel returns a model for cfg after normalizing it.
func NewModel(cfg Config) *Model {
	cfg.Normalize()
	return &Model{cfg: cfg}
}

// Config returns the normalized configuration.
func (m *Model) Config() Config { return m.cfg }

// SlotMinutes is the length of one slot.
func (m *Model) SlotMinutes() int { return 60 / m.cfg.SlotsPerHour }

// SlotDuration is SlotMinutes as a time.Duration.
func (m *Model) SlotDuration() time.Duration {
	return time.Duration(m.SlotMinutes()) * time.Minute
}

// SlotsPerDay is the number of slots between midnight and midnight.
func (m *Model) SlotsPerDay() int { return 24 * m.cfg.SlotsPerHour }

func (m *Model) HourHeight() int { return m.cfg.SlotHeight * m.cfg.SlotsPerHour }

// DayHeight is the height of a full unscrolled day.
func (m *Model) DayHeight() int { return m.HourHeight() * 24 }

// HeaderHeight is the day headers plus the banner strip of the last pass.
func (m *Model) HeaderHeight() int { return m.cfg.DayHeaderHeight + m.bannerArea }

func (m *Model) BannerAreaHeight() int { return m.bannerArea }

func (m *Model) SetBannerAreaHeight(h int) {
	if h < 0 {
		h = 0
	}
	m.bannerArea = h
}

// SetDays changes the number of day columns.
func (m *Model) SetDays(n int) {
	m.cfg.Days = max(1, n)
}

// SlotIndex returns the slot containing t within its day.
func (m *Model) SlotIndex(t time.Time) int {
	return t.Hour()*m.cfg.SlotsPerHour + t.Minute()/m.SlotMinutes()
}

// TimeToY maps t to a y coordinate in the client area.
func (m *Model) TimeToY(t time.Time) int {
	return m.minutesToY(minuteOfDay(t))
}

func (m *Model) minutesToY(minutes int) int {
	hour, minute := minutes/60, minutes%60
	return hour*m.cfg.SlotsPerHour*m.cfg.SlotHeight +
		(minute*m.cfg.SlotHeight)/m.SlotMinutes() -
		m.scroll + m.HeaderHeight()
}

// HourRangeRect returns base narrowed vertically to [start, end). An end on a
// later date than start is treated as the end of start's day. The height is
// never less than one pixel.
func (m *Model) HourRangeRect(start, end time.Time, base Rect) Rect {
	y1 := m.TimeToY(start)
	endMinutes := minuteOfDay(end)
	if CalendarDays(start, end) > 0 {
		endMinutes = 24 * 60
	}
	y2 := m.minutesToY(endMinutes)

	r := base
	r.Y = y1
	r.Height = max(1, y2-y1)
	return r
}

// VisualSpan applies the configured height mode to [start, end). The result
// is never empty: a span that collapses after rounding covers one slot.
func (m *Model) VisualSpan(start, end time.Time) (time.Time, time.Time) {
	slot := m.SlotMinutes()
	short := end.Sub(start) < m.SlotDuration()

	switch m.cfg.HeightMode {
	case FullHalfHourBlocksAll:
		start, end = floorSlot(start, slot), ceilSlot(end, slot)
	case EndHalfHourBlocksAll:
		end = ceilSlot(end, slot)
	case FullHalfHourBlocksShort:
		if short {
			start, end = floorSlot(start, slot), ceilSlot(end, slot)
		}
	case EndHalfHourBlocksShort:
		if short {
			end = ceilSlot(end, slot)
		}
	}

	if !end.After(start) || (m.cfg.MinSlotHeight && end.Sub(start) < m.SlotDuration()) {
		end = start.Add(m.SlotDuration())
	}
	return start, end
}

// TrueRect is the same-day grid area below the headers and right of the
// hour labels.
func (m *Model) TrueRect(client Size) Rect {
	left := m.cfg.HourLabelWidth + m.cfg.HourLabelIndent
	header := m.HeaderHeight()
	return Rect{
		X:      left,
		Y:      header,
		Width:  max(0, client.Width-left),
		Height: max(0, client.Height-header),
	}
}

// BannerAreaRect is the strip between the day headers and the grid.
func (m *Model) BannerAreaRect(client Size) Rect {
	left := m.cfg.HourLabelWidth + m.cfg.HourLabelIndent
	return Rect{
		X:      left,
		Y:      m.cfg.DayHeaderHeight,
		Width:  max(0, client.Width-left),
		Height: m.bannerArea,
	}
}

// Columns splits the grid area of client into one column per day.
func (m *Model) Columns(client Size) Columns {
	area := m.TrueRect(client)
	c := Columns{Area: area, Count: m.cfg.Days}
	c.Width = area.Width / c.Count
	c.Extra = area.Width % c.Count
	return c
}

// PixelToTime maps a client point to a time within the visible range
// starting at rangeStart. Points above the grid yield the day with no time of
// day; points below the last slot clamp to it.
func (m *Model) PixelToTime(client Size, rangeStart time.Time, x, y int) time.Time {
	cols := m.Columns(client)
	day := Midnight(rangeStart).AddDate(0, 0, cols.IndexAt(x))

	rel := y - m.HeaderHeight() + m.scroll
	if rel < 0 {
		return day
	}
	slot := rel / m.cfg.SlotHeight
	if slot >= m.SlotsPerDay() {
		slot = m.SlotsPerDay() - 1
	}
	y0, mo, d := day.Date()
	return time.Date(y0, mo, d, 0, slot*m.SlotMinutes(), 0, 0, day.Location())
}

// WorkingHours returns the working-hours band of day within column. Weekends
// have no band.
func (m *Model) WorkingHours(day time.Time, column Rect) (Rect, bool) {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return Rect{}, false
	}
	y, mo, d := day.Date()
	start := time.Date(y, mo, d, m.cfg.WorkingStart.Hour, m.cfg.WorkingStart.Minute, 0, 0, day.Location())
	end := time.Date(y, mo, d, m.cfg.WorkingEnd.Hour, m.cfg.WorkingEnd.Minute, 0, 0, day.Location())
	if !end.After(start) {
		return Rect{}, false
	}
	return m.HourRangeRect(start, end, column), true
}

// Scroll returns the vertical scroll offset in pixels.
func (m *Model) Scroll() int { return m.scroll }

// MaxScroll is the offset at which the last slot sits at the bottom of a
// client area of the given height.
func (m *Model) MaxScroll(viewHeight int) int {
	return max(0, m.DayHeight()-viewHeight+m.HeaderHeight())
}

// SetScroll clamps v to [0, MaxScroll].
func (m *Model) SetScroll(v, viewHeight int) {
	m.scroll = min(max(0, v), m.MaxScroll(viewHeight))
}

// ScrollBy moves one hour up or down.
func (m *Model) ScrollBy(down bool, viewHeight int) {
	step := m.HourHeight()
	if !down {
		step = -step
	}
	m.SetScroll(m.scroll+step, viewHeight)
}

// ScrollPage moves four hours up or down.
func (m *Model) ScrollPage(down bool, viewHeight int) {
	step := 4 * m.HourHeight()
	if !down {
		step = -step
	}
	m.SetScroll(m.scroll+step, viewHeight)
}

// ScrollToStartHour puts the configured start hour at the top of the grid.
func (m *Model) ScrollToStartHour(viewHeight int) {
	m.SetScroll(m.cfg.StartHour*m.HourHeight(), viewHeight)
}

// Columns is the horizontal split of the grid area into days. Day 0 absorbs
// the pixels left over by the integer division.
type Columns struct {
	Area  Rect
	Count int
	Width int
	Extra int
}

// Day returns the rectangle of day i.
func (c Columns) Day(i int) Rect {
	r := c.Area
	if i == 0 {
		r.Width = c.Width + c.Extra
		return r
	}
	r.X = c.Area.X + c.Extra + i*c.Width
	r.Width = c.Width
	return r
}

// X returns the left edge of day i. Negative and out-of-range indexes
// extrapolate at the regular day width.
func (c Columns) X(i int) int {
	x := c.Area.X + i*c.Width
	if i > 0 {
		x += c.Extra
	}
	return x
}

// IndexAt returns the day under x, clamped to the visible days.
func (c Columns) IndexAt(x int) int {
	if c.Width <= 0 {
		return 0
	}
	off := x - c.Area.X - c.Extra
	if off < c.Width {
		return 0
	}
	return min(off/c.Width, c.Count-1)
}
