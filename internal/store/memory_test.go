package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theakshaypant/dayview/internal/core"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ids(appts []core.Appointment) []string {
	var out []string
	for _, a := range appts {
		out = append(out, a.ID)
	}
	return out
}

func TestSyncReplacesProvider(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.SyncAppointments(ctx, "google", []core.Appointment{
		{ID: "g1", Start: at(4, 9), End: at(4, 10)},
		{ID: "g2", Start: at(4, 11), End: at(4, 12)},
	}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := m.Add(core.Appointment{ID: "l1", Start: at(4, 13), End: at(4, 14)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.SyncAppointments(ctx, "google", []core.Appointment{
		{ID: "g3", Start: at(4, 9), End: at(4, 10)},
	}); err != nil {
		t.Fatalf("resync: %v", err)
	}

	got, err := m.ListAppointments(ctx, core.AppointmentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"l1", "g3"}; len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[1].ProviderID != "google" || got[0].ProviderID != LocalProviderID {
		t.Fatalf("provider ids = %q, %q", got[0].ProviderID, got[1].ProviderID)
	}
}

func TestResolveRange(t *testing.T) {
	m := NewMemory()
	_ = m.SyncAppointments(context.Background(), "p", []core.Appointment{
		{ID: "before", Start: at(1, 9), End: at(1, 10)},
		{ID: "inside", Start: at(4, 9), End: at(4, 10)},
		{ID: "spanning", Start: at(3, 9), End: at(5, 10)},
		{ID: "after", Start: at(12, 9), End: at(12, 10)},
	})

	got, err := m.Resolve(context.Background(), at(4, 0), at(11, 0))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[0].ID != "inside" || got[1].ID != "spanning" {
		t.Fatalf("ids = %v", ids(got))
	}
}

func TestTitleOverrides(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.SyncAppointments(ctx, "p", []core.Appointment{{ID: "a", Title: "old"}})
	_ = m.Add(core.Appointment{ID: "l", Title: "x"})

	if err := m.SetTitle("a", "new"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if err := m.SetTitle("l", "lunch"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if err := m.SetTitle("ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetTitle(ghost) err = %v", err)
	}

	_ = m.SyncAppointments(ctx, "p", []core.Appointment{{ID: "a", Title: "old"}})
	a, err := m.Get("a")
	if err != nil || a.Title != "new" {
		t.Fatalf("Get(a) = %q, %v; override should survive resync", a.Title, err)
	}
	l, _ := m.Get("l")
	if l.Title != "lunch" {
		t.Fatalf("local title = %q", l.Title)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	m := NewMemory()
	if err := m.Add(core.Appointment{ID: "a"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add(core.Appointment{ID: "a"}); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate add err = %v", err)
	}
	if err := m.Add(core.Appointment{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestPurgeProvider(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.SyncAppointments(ctx, "a", []core.Appointment{{ID: "1"}})
	_ = m.SyncAppointments(ctx, "b", []core.Appointment{{ID: "2"}})

	if err := m.PurgeProvider(ctx, "a"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	got, _ := m.ListAppointments(ctx, core.AppointmentFilter{ProviderIDs: []string{"a", "b"}})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("ids = %v", ids(got))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.ListAppointments(cancelled, core.AppointmentFilter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled list err = %v", err)
	}
}
