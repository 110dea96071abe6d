// Package google reads appointments from Google Calendar.
package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/theakshaypant/dayview/internal/auth"
	"github.com/theakshaypant/dayview/internal/core"
)

type GoogleAdapter struct {
	id        string
	name      string
	service   *calendar.Service
	credsFile string
	tokenFile string
	calendars map[string]string
	log       *zap.Logger
}

func NewGoogleAdapter(id, name, credsFile, tokenFile string, log *zap.Logger) *GoogleAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleAdapter{
		id:        id,
		name:      name,
		credsFile: credsFile,
		tokenFile: tokenFile,
		calendars: make(map[string]string),
		log:       log.With(zap.String("provider", id)),
	}
}

func (g *GoogleAdapter) ID() string   { return g.id }
func (g *GoogleAdapter) Name() string { return g.name }

// Login builds the Calendar service from the OAuth client file and the
// token saved by `dayview auth`. Refreshed tokens are written back.
func (g *GoogleAdapter) Login(ctx context.Context) error {
	b, err := os.ReadFile(g.credsFile)
	if err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}
	config, err := auth.GoogleConfig(b)
	if err != nil {
		return err
	}

	tok, err := auth.Load(g.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'dayview auth' first): %w", err)
	}

	src := auth.Persist(config.TokenSource(ctx, tok), g.tokenFile, tok, g.log)
	g.service, err = calendar.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}

	return g.loadCalendarList(ctx)
}

func (g *GoogleAdapter) loadCalendarList(ctx context.Context) error {
	calList, err := g.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load calendar list: %w", err)
	}
	for _, cal := range calList.Items {
		g.calendars[cal.Id] = cal.Summary
	}
	g.log.Debug("calendar list loaded", zap.Int("calendars", len(g.calendars)))
	return nil
}

// Calendars returns the available calendars (ID -> Name).
func (g *GoogleAdapter) Calendars() map[string]string {
	return g.calendars
}

// FetchAppointments reads every selected calendar. A calendar that fails is
// skipped; the failures are returned together with whatever was read.
func (g *GoogleAdapter) FetchAppointments(ctx context.Context, opts core.FetchOptions) ([]core.Appointment, error) {
	var (
		results []core.Appointment
		errs    error
	)

	calendarIDs := opts.CalendarIDs
	if len(calendarIDs) == 0 {
		for calID := range g.calendars {
			calendarIDs = append(calendarIDs, calID)
		}
	}

	for _, calID := range calendarIDs {
		if _, exists := g.calendars[calID]; !exists {
			continue
		}
		appts, err := g.fetchFromCalendar(ctx, calID, opts)
		if err != nil {
			g.log.Warn("calendar fetch failed", zap.String("calendar", calID), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, appts...)
	}

	results = core.Dedupe(results)
	core.SortByStart(results)

	g.log.Debug("appointments fetched", zap.Int("count", len(results)))
	return results, errs
}

func (g *GoogleAdapter) fetchFromCalendar(ctx context.Context, calendarID string, opts core.FetchOptions) ([]core.Appointment, error) {
	tMin := opts.Start.Format(time.RFC3339)
	tMax := opts.End.Format(time.RFC3339)

	var results []core.Appointment
	pageToken := ""

	calendarName := g.calendars[calendarID]

	for {
		req := g.service.Events.List(calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(tMin).
			TimeMax(tMax).
			OrderBy("startTime").
			Context(ctx)

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		eventsResult, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("api call failed for calendar %s: %w", calendarID, err)
		}

		for _, item := range eventsResult.Items {
			appt := toAppointment(g.id, item, calendarID, calendarName)
			if !opts.Allows(appt) {
				continue
			}
			results = append(results, appt)
		}

		pageToken = eventsResult.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return results, nil
}

// toAppointment converts a Google Calendar event. The calendar name becomes
// the appointment group, so each calendar gets its own lanes in a day column.
func toAppointment(providerID string, item *calendar.Event, calendarID, calendarName string) core.Appointment {
	apptType := core.TypeDefault
	switch item.EventType {
	case "outOfOffice":
		apptType = core.TypeOutOfOffice
	case "focusTime":
		apptType = core.TypeFocusTime
	case "workingLocation":
		apptType = core.TypeWorkLocation
	}

	var start, end time.Time
	allDay := false

	if item.Start != nil && item.Start.DateTime != "" {
		start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		if item.End != nil {
			end, _ = time.Parse(time.RFC3339, item.End.DateTime)
		}
		start, end = start.Local(), end.Local()
	} else if item.Start != nil {
		// Date-only, end date exclusive.
		start, _ = time.ParseInLocation(time.DateOnly, item.Start.Date, time.Local)
		if item.End != nil {
			end, _ = time.ParseInLocation(time.DateOnly, item.End.Date, time.Local)
		}
		allDay = true
	}

	return core.Appointment{
		ID:         item.Id,
		DedupeKey:  item.ICalUID,
		ProviderID: providerID,
		Calendar: core.Calendar{
			ID:   calendarID,
			Name: calendarName,
		},
		Type:        apptType,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      parseStatus(item),
		URL:         item.HtmlLink,
		MeetingLink: extractMeetingLink(item),
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Group:       calendarName,
		Locked:      item.Locked || !canEdit(item),
	}
}

// canEdit reports whether the user may change the event's title.
func canEdit(item *calendar.Event) bool {
	if item.Organizer == nil || item.Organizer.Self {
		return true
	}
	return item.GuestsCanModify
}

func extractMeetingLink(item *calendar.Event) string {
	if item.ConferenceData != nil {
		for _, entry := range item.ConferenceData.EntryPoints {
			if entry.EntryPointType == "video" {
				return entry.Uri
			}
		}
	}

	if item.HangoutLink != "" {
		return item.HangoutLink
	}

	return ""
}

func parseStatus(item *calendar.Event) core.AppointmentStatus {
	for _, attendee := range item.Attendees {
		if attendee.Self {
			switch attendee.ResponseStatus {
			case "declined":
				return core.StatusRejected
			case "tentative":
				return core.StatusTentative
			case "needsAction":
				return core.StatusAwaiting
			case "accepted":
				return core.StatusAccepted
			}
		}
	}

	// No attendees: self-created, subscribed or imported.
	if len(item.Attendees) == 0 && item.Status == "cancelled" {
		return core.StatusRejected
	}
	return core.StatusNoResponse
}
