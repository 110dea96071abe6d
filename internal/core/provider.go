package core

import (
	"context"
	"time"
)

// FetchOptions configures which appointments to retrieve.
type FetchOptions struct {
	Start time.Time
	End   time.Time

	// Filter by calendar ID. Empty means all calendars.
	CalendarIDs []string

	// Filter by type. Empty means every type.
	IncludeTypes []AppointmentType

	// Filter by response status. Empty means all statuses.
	IncludeStatuses []AppointmentStatus

	// ExcludeAllDay filters out all-day appointments when true.
	ExcludeAllDay bool
}

// Allows reports whether a passes the type, status and all-day filters.
// Range and calendar filtering are left to the provider.
func (o FetchOptions) Allows(a Appointment) bool {
	if len(o.IncludeTypes) > 0 && !contains(o.IncludeTypes, a.Type) {
		return false
	}
	if len(o.IncludeStatuses) > 0 && !contains(o.IncludeStatuses, a.Status) {
		return false
	}
	if o.ExcludeAllDay && a.AllDay {
		return false
	}
	return true
}

func contains[T comparable](items []T, v T) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

// Provider is an appointment source (Google, Outlook, .ics, ...).
type Provider interface {
	// ID returns the unique identifier from the config (e.g. "work_calendar")
	ID() string
	// Name returns a human-readable label (e.g. "Work Account")
	Name() string
	// FetchAppointments retrieves appointments matching the given options.
	// This should block until done or context is cancelled.
	FetchAppointments(ctx context.Context, opts FetchOptions) ([]Appointment, error)
}
