// Package ics reads appointments from iCalendar files and subscription URLs.
package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
)

// Adapter is a read-only provider backed by one .ics source, either a local
// path or an http(s) URL.
type Adapter struct {
	id     string
	name   string
	source string
	client *http.Client
	log    *zap.Logger
}

func NewAdapter(id, name, source string, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		id:     id,
		name:   name,
		source: source,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.With(zap.String("provider", id)),
	}
}

func (a *Adapter) ID() string   { return a.id }
func (a *Adapter) Name() string { return a.name }

// Calendars reports the single calendar an .ics source carries.
func (a *Adapter) Calendars() map[string]string {
	return map[string]string{a.id: a.name}
}

// FetchAppointments reads the source and expands recurrences into opts' range.
// Unreadable events are logged and skipped.
func (a *Adapter) FetchAppointments(ctx context.Context, opts core.FetchOptions) ([]core.Appointment, error) {
	body, err := a.read(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := parse(body)
	if err != nil && len(cal.Events) == 0 {
		return nil, err
	}
	if err != nil {
		a.log.Warn("some events could not be read", zap.Error(err))
	}

	group := cal.Name
	if group == "" {
		group = a.name
	}

	var out []core.Appointment
	for _, occ := range expand(cal.Events, opts.Start, opts.End, a.log) {
		appt := a.toAppointment(occ, group)
		if !opts.Allows(appt) {
			continue
		}
		out = append(out, appt)
	}
	core.SortByStart(out)

	a.log.Debug("appointments fetched", zap.Int("count", len(out)))
	return out, nil
}

func (a *Adapter) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(a.source, "http://") && !strings.HasPrefix(a.source, "https://") {
		body, err := os.ReadFile(a.source)
		if err != nil {
			return nil, fmt.Errorf("read calendar file: %w", err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch calendar: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (a *Adapter) toAppointment(occ occurrence, group string) core.Appointment {
	ev := occ.Event
	status := core.StatusNoResponse
	if ev.Status == "TENTATIVE" {
		status = core.StatusTentative
	}
	start, end := occ.Start.Local(), occ.End.Local()
	if ev.AllDay {
		start = time.Date(occ.Start.Year(), occ.Start.Month(), occ.Start.Day(), 0, 0, 0, 0, time.Local)
		end = time.Date(occ.End.Year(), occ.End.Month(), occ.End.Day(), 0, 0, 0, 0, time.Local)
	}
	// Instances of a series share the UID.
	id := ev.UID + "/" + occ.Start.UTC().Format("20060102T150405Z")
	return core.Appointment{
		ID:          id,
		DedupeKey:   id,
		ProviderID:  a.id,
		Calendar:    core.Calendar{ID: a.id, Name: a.name},
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Status:      status,
		URL:         ev.URL,
		Start:       start,
		End:         end,
		AllDay:      ev.AllDay,
		Group:       group,
		// Subscriptions are read-only.
		Locked: true,
	}
}

// Login is a no-op; .ics sources need no credentials.
func (a *Adapter) Login(ctx context.Context) error { return nil }
