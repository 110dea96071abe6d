package outlook

import (
	"context"
	"fmt"
	"strings"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
)

// FetchAppointments reads every selected calendar. Calendars that fail are
// skipped and their errors returned alongside the rest.
func (o *OutlookAdapter) FetchAppointments(ctx context.Context, opts core.FetchOptions) ([]core.Appointment, error) {
	var (
		results []core.Appointment
		errs    error
	)

	calendarIDs := opts.CalendarIDs
	if len(calendarIDs) == 0 {
		for calID := range o.calendars {
			calendarIDs = append(calendarIDs, calID)
		}
	}

	for _, calID := range calendarIDs {
		if _, exists := o.calendars[calID]; !exists {
			continue
		}
		appts, err := o.fetchFromCalendar(ctx, calID, opts)
		if err != nil {
			o.log.Warn("calendar fetch failed", zap.String("calendar", calID), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, appts...)
	}

	results = core.Dedupe(results)
	core.SortByStart(results)

	o.log.Debug("appointments fetched", zap.Int("count", len(results)))
	return results, errs
}

func (o *OutlookAdapter) fetchFromCalendar(ctx context.Context, calendarID string, opts core.FetchOptions) ([]core.Appointment, error) {
	startStr := opts.Start.UTC().Format(time.RFC3339)
	endStr := opts.End.UTC().Format(time.RFC3339)
	selectFields := []string{
		"id", "iCalUId", "subject", "body", "start", "end", "location",
		"isAllDay", "showAs", "responseStatus", "onlineMeeting", "webLink",
		"isOrganizer", "isCancelled", "categories", "sensitivity",
	}
	orderBy := []string{"start/dateTime"}
	top := int32(100)

	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)

	var result models.EventCollectionResponseable
	var err error

	if calendarID == "default" {
		config := &users.ItemCalendarViewRequestBuilderGetRequestConfiguration{
			QueryParameters: &users.ItemCalendarViewRequestBuilderGetQueryParameters{
				StartDateTime: &startStr,
				EndDateTime:   &endStr,
				Select:        selectFields,
				Orderby:       orderBy,
				Top:           &top,
			},
			Headers: headers,
		}
		result, err = o.client.Me().CalendarView().Get(ctx, config)
	} else {
		config := &users.ItemCalendarsItemCalendarViewRequestBuilderGetRequestConfiguration{
			QueryParameters: &users.ItemCalendarsItemCalendarViewRequestBuilderGetQueryParameters{
				StartDateTime: &startStr,
				EndDateTime:   &endStr,
				Select:        selectFields,
				Orderby:       orderBy,
				Top:           &top,
			},
			Headers: headers,
		}
		result, err = o.client.Me().Calendars().ByCalendarId(calendarID).CalendarView().Get(ctx, config)
	}

	if err != nil {
		return nil, fmt.Errorf("fetch calendar view: %w", err)
	}

	calendarName := o.calendars[calendarID]
	var results []core.Appointment

	pageIterator, err := msgraphcore.NewPageIterator[models.Eventable](
		result,
		o.client.GetAdapter(),
		models.CreateEventCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}

	err = pageIterator.Iterate(ctx, func(item models.Eventable) bool {
		if deref(item.GetIsCancelled()) {
			return true
		}

		appt := toAppointment(o.id, item, calendarID, calendarName)
		if !opts.Allows(appt) {
			return true
		}
		results = append(results, appt)
		return true
	})

	if err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return results, nil
}

// toAppointment converts a Graph event. The calendar name becomes the
// appointment group; events the user does not organize are locked.
func toAppointment(providerID string, item models.Eventable, calendarID, calendarName string) core.Appointment {
	apptType := core.TypeDefault
	if showAs := item.GetShowAs(); showAs != nil {
		switch *showAs {
		case models.OOF_FREEBUSYSTATUS:
			apptType = core.TypeOutOfOffice
		case models.WORKINGELSEWHERE_FREEBUSYSTATUS:
			apptType = core.TypeWorkLocation
		}
	}
	for _, cat := range item.GetCategories() {
		lower := strings.ToLower(cat)
		if lower == "focus time" || lower == "focustime" {
			apptType = core.TypeFocusTime
		}
	}

	allDay := deref(item.GetIsAllDay())
	start := parseSDKDateTime(item.GetStart())
	end := parseSDKDateTime(item.GetEnd())
	if allDay {
		// All-day events carry midnight in UTC; keep the calendar date.
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.Local)
	} else {
		start, end = start.Local(), end.Local()
	}

	meetingLink := ""
	if om := item.GetOnlineMeeting(); om != nil {
		if joinURL := om.GetJoinUrl(); joinURL != nil {
			meetingLink = *joinURL
		}
	}

	// body.content may be HTML.
	description := ""
	if body := item.GetBody(); body != nil {
		if content := body.GetContent(); content != nil {
			description = *content
		}
	}

	location := ""
	if loc := item.GetLocation(); loc != nil {
		if dn := loc.GetDisplayName(); dn != nil {
			location = *dn
		}
	}

	locked := !deref(item.GetIsOrganizer())
	if s := item.GetSensitivity(); s != nil && *s == models.PRIVATE_SENSITIVITY {
		locked = true
	}

	return core.Appointment{
		ID:         deref(item.GetId()),
		DedupeKey:  deref(item.GetICalUId()),
		ProviderID: providerID,
		Calendar: core.Calendar{
			ID:   calendarID,
			Name: calendarName,
		},
		Type:        apptType,
		Title:       deref(item.GetSubject()),
		Description: description,
		Location:    location,
		Status:      parseStatus(item),
		URL:         deref(item.GetWebLink()),
		MeetingLink: meetingLink,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Group:       calendarName,
		Locked:      locked,
	}
}

// parseSDKDateTime converts a Graph SDK DateTimeTimeZone to time.Time.
// Times are in UTC because we set the Prefer: outlook.timezone="UTC" header.
func parseSDKDateTime(dt models.DateTimeTimeZoneable) time.Time {
	if dt == nil {
		return time.Time{}
	}
	dateTimeStr := dt.GetDateTime()
	if dateTimeStr == nil {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, *dateTimeStr); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseStatus(item models.Eventable) core.AppointmentStatus {
	rs := item.GetResponseStatus()
	if rs == nil {
		return core.StatusNoResponse
	}
	resp := rs.GetResponse()
	if resp == nil {
		return core.StatusNoResponse
	}
	switch *resp {
	case models.ACCEPTED_RESPONSETYPE, models.ORGANIZER_RESPONSETYPE:
		return core.StatusAccepted
	case models.DECLINED_RESPONSETYPE:
		return core.StatusRejected
	case models.TENTATIVELYACCEPTED_RESPONSETYPE:
		return core.StatusTentative
	case models.NOTRESPONDED_RESPONSETYPE:
		return core.StatusAwaiting
	default:
		return core.StatusNoResponse
	}
}
