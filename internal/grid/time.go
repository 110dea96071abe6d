package grid

import "time"

// Midnight returns the start of t's calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDays returns the number of calendar days from a's date to b's date,
// ignoring time of day. Each date is read in its own location.
func CalendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return CalendarDays(a, b) == 0
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return Midnight(t).AddDate(0, 0, -offset)
}

// minuteOfDay ignores seconds.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func onSlotBoundary(t time.Time, slotMinutes int) bool {
	return t.Second() == 0 && t.Nanosecond() == 0 && minuteOfDay(t)%slotMinutes == 0
}

func floorSlot(t time.Time, slotMinutes int) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, minuteOfDay(t)/slotMinutes*slotMinutes, 0, 0, t.Location())
}

func ceilSlot(t time.Time, slotMinutes int) time.Time {
	if onSlotBoundary(t, slotMinutes) {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, (minuteOfDay(t)/slotMinutes+1)*slotMinutes, 0, 0, t.Location())
}
