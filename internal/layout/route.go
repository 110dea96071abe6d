package layout

import (
	"time"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

// Date is a calendar date with no time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// BucketKind tags a Bucket.
type BucketKind int

const (
	SameDay BucketKind = iota
	Spanning
)

// Bucket is the routing key of an appointment: SameDay(date) for
// appointments drawn in a day column, Spanning for banners.
type Bucket struct {
	Kind BucketKind
	Date Date
}

// SpanningBucket holds every banner appointment.
var SpanningBucket = Bucket{Kind: Spanning}

// SameDayBucket returns the bucket of day. With legacy set, only the
// day-of-month is kept.
func SameDayBucket(day time.Time, legacy bool) Bucket {
	d := DateOf(day)
	if legacy {
		d = Date{Day: d.Day}
	}
	return Bucket{Kind: SameDay, Date: d}
}

// IsBanner reports whether a is drawn in the banner strip: all-day
// appointments and appointments whose start and end fall on different days.
func IsBanner(a core.Appointment) bool {
	start, end := span(a)
	return a.AllDay || !grid.SameDate(start, end)
}

// Route returns the bucket of a.
func Route(a core.Appointment, legacy bool) Bucket {
	if IsBanner(a) {
		return SpanningBucket
	}
	return SameDayBucket(a.Start, legacy)
}

// span returns the interval used for geometry. An end before the start is
// collapsed onto the start.
func span(a core.Appointment) (time.Time, time.Time) {
	if a.End.Before(a.Start) {
		return a.Start, a.Start
	}
	return a.Start, a.End
}

// entry is one validated appointment of a pass.
type entry struct {
	appt       core.Appointment
	start, end time.Time
}

func newEntry(a core.Appointment) entry {
	start, end := span(a)
	return entry{appt: a, start: start, end: end}
}
