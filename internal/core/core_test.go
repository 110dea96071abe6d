package core

import (
	"testing"
	"time"
)

func TestDedupe(t *testing.T) {
	work := Calendar{ID: "w", Name: "Work"}
	team := Calendar{ID: "t", Name: "Team"}
	appts := []Appointment{
		{ID: "1", DedupeKey: "uid-a", Calendar: work, Status: StatusAccepted},
		{ID: "2", DedupeKey: "uid-b", Calendar: work},
		{ID: "3", DedupeKey: "uid-a", Calendar: team, Status: StatusTentative},
		{ID: "4"},
	}

	got := Dedupe(appts)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if len(got[0].Calendars) != 2 || got[0].Calendars[1].Calendar.Name != "Team" {
		t.Fatalf("calendars = %+v", got[0].Calendars)
	}
	if got[2].ID != "4" {
		t.Fatalf("keyless appointment lost: %+v", got[2])
	}
}

func TestFetchOptionsAllows(t *testing.T) {
	opts := FetchOptions{
		IncludeTypes:    []AppointmentType{TypeDefault},
		IncludeStatuses: []AppointmentStatus{StatusAccepted},
		ExcludeAllDay:   true,
	}

	if !opts.Allows(Appointment{Type: TypeDefault, Status: StatusAccepted}) {
		t.Fatal("default accepted appointment rejected")
	}
	if opts.Allows(Appointment{Type: TypeFocusTime, Status: StatusAccepted}) {
		t.Fatal("focus time allowed")
	}
	if opts.Allows(Appointment{Type: TypeDefault, Status: StatusAccepted, AllDay: true}) {
		t.Fatal("all-day allowed")
	}
}

func TestSortByStartStable(t *testing.T) {
	nine := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	appts := []Appointment{
		{ID: "b", Start: nine},
		{ID: "a", Start: nine.Add(-time.Hour)},
		{ID: "c", Start: nine},
	}
	SortByStart(appts)
	if appts[0].ID != "a" || appts[1].ID != "b" || appts[2].ID != "c" {
		t.Fatalf("order = %s %s %s", appts[0].ID, appts[1].ID, appts[2].ID)
	}
}
