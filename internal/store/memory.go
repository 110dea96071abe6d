// Package store keeps appointments in memory between provider refreshes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theakshaypant/dayview/internal/core"
)

// LocalProviderID marks appointments created in the UI.
const LocalProviderID = "local"

var (
	ErrNotFound = errors.New("appointment not found")
	ErrExists   = errors.New("appointment already exists")
)

// Memory is an in-memory core.Storage. Appointments are returned in the
// order they were stored, which keeps banner layering stable across
// refreshes. Title edits are kept as overrides that survive a resync.
type Memory struct {
	mu     sync.RWMutex
	appts  []core.Appointment
	titles map[string]string
}

var _ core.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{titles: make(map[string]string)}
}

// SyncAppointments replaces every appointment previously synced from
// providerID.
func (m *Memory) SyncAppointments(ctx context.Context, providerID string, appts []core.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.appts = without(m.appts, providerID)
	for _, a := range appts {
		if a.ProviderID == "" {
			a.ProviderID = providerID
		}
		m.appts = append(m.appts, a)
	}
	return nil
}

// ListAppointments returns the stored appointments overlapping the filter
// range (all of them when the range is zero) with title overrides applied.
func (m *Memory) ListAppointments(ctx context.Context, filter core.AppointmentFilter) ([]core.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Appointment
	for _, a := range m.appts {
		if len(filter.ProviderIDs) > 0 && !containsString(filter.ProviderIDs, a.ProviderID) {
			continue
		}
		if !filter.Start.IsZero() && !filter.End.IsZero() && !inRange(a, filter.Start, filter.End) {
			continue
		}
		if title, ok := m.titles[a.ID]; ok {
			a.Title = title
		}
		result = append(result, a)
	}
	return result, nil
}

// PurgeProvider removes appointments associated with a specific provider ID.
func (m *Memory) PurgeProvider(ctx context.Context, providerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appts = without(m.appts, providerID)
	return nil
}

// Resolve returns the appointments to lay out for [start, end).
func (m *Memory) Resolve(ctx context.Context, start, end time.Time) ([]core.Appointment, error) {
	return m.ListAppointments(ctx, core.AppointmentFilter{Start: start, End: end})
}

// Add stores a locally created appointment.
func (m *Memory) Add(a core.Appointment) error {
	if a.ID == "" {
		return fmt.Errorf("add appointment: empty id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.appts {
		if existing.ID == a.ID {
			return fmt.Errorf("add appointment %q: %w", a.ID, ErrExists)
		}
	}
	if a.ProviderID == "" {
		a.ProviderID = LocalProviderID
	}
	m.appts = append(m.appts, a)
	return nil
}

// Get returns the appointment with the given ID.
func (m *Memory) Get(id string) (core.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.appts {
		if a.ID == id {
			if title, ok := m.titles[id]; ok {
				a.Title = title
			}
			return a, nil
		}
	}
	return core.Appointment{}, fmt.Errorf("get appointment %q: %w", id, ErrNotFound)
}

// SetTitle records a new title for the appointment with the given ID.
func (m *Memory) SetTitle(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.appts {
		if a.ID != id {
			continue
		}
		if a.ProviderID == LocalProviderID {
			m.appts[i].Title = title
		} else {
			m.titles[id] = title
		}
		return nil
	}
	return fmt.Errorf("set title %q: %w", id, ErrNotFound)
}

// Len returns the number of stored appointments.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.appts)
}

// inRange keeps appointments inside [start, end] and those overlapping it.
func inRange(a core.Appointment, start, end time.Time) bool {
	contained := !a.Start.Before(start) && !a.End.After(end)
	return contained || a.Overlaps(start, end)
}

func without(appts []core.Appointment, providerID string) []core.Appointment {
	kept := appts[:0]
	for _, a := range appts {
		if a.ProviderID != providerID {
			kept = append(kept, a)
		}
	}
	clear(appts[len(kept):])
	return kept
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
