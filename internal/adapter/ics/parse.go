package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/multierr"
)

// vevent is one VEVENT before recurrence expansion.
type vevent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Status      string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule      string
	ExDates    []time.Time
	Recurrence *time.Time
}

// calendarFile is a parsed VCALENDAR.
type calendarFile struct {
	Name   string
	Events []vevent
}

// parse reads an iCalendar payload. Events that cannot be read are skipped
// and reported through the returned error; the rest are still returned.
func parse(body []byte) (calendarFile, error) {
	var out calendarFile
	if len(bytes.TrimSpace(body)) == 0 {
		return out, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("parse calendar: %w", err)
	}

	for _, p := range cal.CalendarProperties {
		if p.IANAToken == "X-WR-CALNAME" {
			out.Name = p.Value
		}
	}

	var errs error
	for _, comp := range cal.Events() {
		ev, err := parseVEvent(comp)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out.Events = append(out.Events, ev)
	}
	return out, errs
}

func parseVEvent(ve *ical.VEvent) (vevent, error) {
	var out vevent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("vevent: missing UID")
	}
	out.UID = uid.Value

	out.Summary = propValue(ve, ical.ComponentPropertySummary)
	out.Description = propValue(ve, ical.ComponentPropertyDescription)
	out.Location = propValue(ve, ical.ComponentPropertyLocation)
	out.URL = propValue(ve, ical.ComponentPropertyUrl)
	out.Status = strings.ToUpper(propValue(ve, ical.ComponentPropertyStatus))

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("vevent %s: missing DTSTART", out.UID)
	}
	out.AllDay = isDateValue(dtStart)

	var err error
	if out.AllDay {
		out.Start, err = ve.GetAllDayStartAt()
	} else {
		out.Start, err = ve.GetStartAt()
	}
	if err != nil {
		if out.Start, err = parseICSTime(dtStart.Value); err != nil {
			return out, fmt.Errorf("vevent %s: DTSTART: %w", out.UID, err)
		}
	}

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) == nil && out.AllDay:
		out.End = out.Start.AddDate(0, 0, 1)
	case ve.GetProperty(ical.ComponentPropertyDtEnd) == nil:
		out.End = out.Start
	case out.AllDay:
		if out.End, err = ve.GetAllDayEndAt(); err != nil {
			out.End = out.Start.AddDate(0, 0, 1)
		}
	default:
		if out.End, err = ve.GetEndAt(); err != nil {
			out.End = out.Start
		}
	}

	out.RRule = propValue(ve, ical.ComponentPropertyRrule)

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
		if t, err := parseICSTime(rid.Value); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

// isDateValue reports whether a DTSTART carries a bare date.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime handles the UTC, floating and date forms used by EXDATE and
// RECURRENCE-ID. Floating values are read in the local zone.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
