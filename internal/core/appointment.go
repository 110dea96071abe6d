package core

import (
	"time"
)

// AppointmentStatus represents the user's response to an invitation.
type AppointmentStatus int

const (
	StatusAccepted AppointmentStatus = iota
	// User declined
	StatusRejected
	// User marked as tentative
	StatusTentative
	// Awaiting user's response
	StatusAwaiting
	// No response needed (subscribed calendars, self-created appointments)
	StatusNoResponse
)

// AppointmentType represents the kind of calendar entry.
type AppointmentType int

const (
	TypeDefault      AppointmentType = iota // Regular meeting
	TypeOutOfOffice                         // Out of office block
	TypeFocusTime                           // Focus time block
	TypeWorkLocation                        // Working location (home/office)
)

// Calendar represents the calendar an appointment belongs to.
type Calendar struct {
	// Calendar ID (e.g., "primary", "user@example.com", subscription ID)
	ID string
	// Human-readable name (e.g., "Work", "Holidays in India")
	Name string
}

// CalendarResponse records one calendar's copy of a shared appointment.
type CalendarResponse struct {
	Calendar Calendar
	Status   AppointmentStatus
	URL      string
}

// Appointment is the unit the day view lays out. Providers convert their
// data to this format; the layout engine only reads it.
type Appointment struct {
	// Unique ID (provided by the source)
	ID string
	// Same value for copies of one appointment seen through several calendars
	DedupeKey string
	// The ID of the provider source (e.g., "google")
	ProviderID string
	// Which calendar this appointment belongs to
	Calendar Calendar
	// Every calendar carrying this appointment, after dedupe
	Calendars []CalendarResponse
	Type      AppointmentType
	// Details
	Title       string
	Description string
	Location    string
	Status      AppointmentStatus
	URL         string
	MeetingLink string
	// Timing
	Start  time.Time
	End    time.Time
	AllDay bool
	// Group partitions the day column. Appointments only compete for columns
	// with others of the same group.
	Group string
	// Locked appointments cannot be edited in place.
	Locked bool
}

// Duration returns the length of the appointment.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// InProgress checks if the appointment is happening right now.
func (a Appointment) InProgress(now time.Time) bool {
	return now.After(a.Start) && now.Before(a.End)
}

// Overlaps reports whether a intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && a.End.After(start)
}
