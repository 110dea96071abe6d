package core

import (
	"context"
	"time"
)

// Storage holds appointments between refreshes.
type Storage interface {
	// SyncAppointments replaces every appointment previously synced from
	// providerID with the batch.
	SyncAppointments(ctx context.Context, providerID string, appts []Appointment) error
	// ListAppointments returns appointments in insertion order.
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	// PurgeProvider removes appointments associated with a specific provider ID.
	PurgeProvider(ctx context.Context, providerID string) error
}

// AppointmentFilter defines criteria for querying storage.
type AppointmentFilter struct {
	Start time.Time
	End   time.Time
	// If empty, return all providers
	ProviderIDs []string
}
