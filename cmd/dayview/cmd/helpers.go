package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

// gridConfigFromViper builds the terminal grid from the grid.* keys.
func gridConfigFromViper() (grid.Config, error) {
	return gridConfigFrom(grid.TerminalConfig())
}

// gridConfigFrom applies the grid.* keys over base. Out-of-range numbers
// are repaired by Normalize; unparseable clocks and height modes are errors.
func gridConfigFrom(base grid.Config) (grid.Config, error) {
	cfg := base

	if viper.IsSet("grid.slots_per_hour") {
		cfg.SlotsPerHour = viper.GetInt("grid.slots_per_hour")
	}
	if viper.IsSet("grid.slot_height") {
		cfg.SlotHeight = viper.GetInt("grid.slot_height")
	}
	if viper.IsSet("grid.start_hour") {
		cfg.StartHour = viper.GetInt("grid.start_hour")
	}
	if s := viper.GetString("grid.working_start"); s != "" {
		c, err := grid.ParseClock(s)
		if err != nil {
			return cfg, fmt.Errorf("grid.working_start: %w", err)
		}
		cfg.WorkingStart = c
	}
	if s := viper.GetString("grid.working_end"); s != "" {
		c, err := grid.ParseClock(s)
		if err != nil {
			return cfg, fmt.Errorf("grid.working_end: %w", err)
		}
		cfg.WorkingEnd = c
	}
	mode, err := grid.ParseHeightMode(viper.GetString("grid.height_mode"))
	if err != nil {
		return cfg, fmt.Errorf("grid.height_mode: %w", err)
	}
	cfg.HeightMode = mode

	// grid.days wins; otherwise the view is as wide as the fetched range.
	if viper.IsSet("grid.days") {
		cfg.Days = viper.GetInt("grid.days")
	} else if viper.IsSet("days") {
		cfg.Days = viper.GetInt("days")
	}

	cfg.BorderAll = viper.GetBool("grid.border_all")
	cfg.MinSlotHeight = viper.GetBool("grid.min_slot_height")
	cfg.LegacyDayKeys = viper.GetBool("grid.legacy_day_keys")

	cfg.Normalize()
	return cfg, nil
}

// parseDate parses a date string in various formats
// Supports: YYYY-MM-DD, "today", "tomorrow", "yesterday", weekday names
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := grid.Midnight(now)

	switch s {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	weekdays := map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}

	// Handle "next <weekday>"
	dayName := strings.TrimPrefix(s, "next ")
	if wd, ok := weekdays[dayName]; ok {
		daysUntil := int(wd - today.Weekday())
		if daysUntil <= 0 {
			daysUntil += 7
		}
		return today.AddDate(0, 0, daysUntil), nil
	}

	loc := now.Location()

	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}

	// MM-DD and MM/DD fall in the current year
	for _, layout := range []string{"01-02", "01/02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.AddDate(now.Year(), 0, 0), nil
		}
	}

	if t, err := time.ParseInLocation("01/02/2006", s, loc); err == nil {
		return t, nil
	}

	return now, fmt.Errorf("unable to parse date: %s (use YYYY-MM-DD, 'today', 'tomorrow', or weekday names)", s)
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func resolveCalendarNames(names []string, calendars map[string]string) []string {
	var ids []string

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		nameLower := strings.ToLower(name)

		if _, exists := calendars[name]; exists {
			ids = append(ids, name)
			continue
		}

		for id, calName := range calendars {
			if strings.Contains(strings.ToLower(calName), nameLower) {
				ids = append(ids, id)
				break
			}
		}
	}

	return ids
}

// OOOPeriod represents a time range when the user is out of office
type OOOPeriod struct {
	Start time.Time
	End   time.Time
}

// detectPrimaryCalendar finds the user's primary calendar, resolving a
// configured name or falling back to provider conventions.
func detectPrimaryCalendar(configured string) string {
	calendars := adapter.Calendars()

	if configured != "" {
		ids := resolveCalendarNames([]string{configured}, calendars)
		if len(ids) > 0 {
			return ids[0]
		}
		return configured
	}

	// Google uses this key
	if _, exists := calendars["primary"]; exists {
		return "primary"
	}

	// Outlook default
	for id, name := range calendars {
		if name == "Calendar" {
			return id
		}
	}

	// Personal calendars, not Google group calendars
	for id := range calendars {
		if strings.Contains(id, "@") && !strings.Contains(id, "@group.calendar.google.com") {
			return id
		}
	}

	for id := range calendars {
		return id
	}

	return ""
}

// getOOOPeriods fetches OOO appointments from the primary calendar.
func getOOOPeriods(ctx context.Context, start, end time.Time, primaryCalendar string) []OOOPeriod {
	if primaryCalendar == "" {
		return nil
	}

	// OOO blocks are often NoResponse, so every status counts.
	opts := core.FetchOptions{
		Start:        start,
		End:          end,
		CalendarIDs:  []string{primaryCalendar},
		IncludeTypes: []core.AppointmentType{core.TypeOutOfOffice},
	}

	appts, err := adapter.FetchAppointments(ctx, opts)
	if err != nil {
		return nil
	}

	var periods []OOOPeriod
	for _, a := range appts {
		periods = append(periods, OOOPeriod{Start: a.Start, End: a.End})
	}

	return periods
}

// filterOutsideOOO drops appointments on OOO days, keeping only the OOO
// blocks of the primary calendar.
func filterOutsideOOO(appts []core.Appointment, oooPeriods []OOOPeriod, primaryCalendar string) []core.Appointment {
	var filtered []core.Appointment

	for _, a := range appts {
		if isOnOOODay(a, oooPeriods) {
			if a.Calendar.ID == primaryCalendar && a.Type == core.TypeOutOfOffice {
				filtered = append(filtered, a)
			}
			continue
		}
		filtered = append(filtered, a)
	}

	return filtered
}

// isOnOOODay checks if an appointment overlaps any day of an OOO period.
func isOnOOODay(a core.Appointment, oooPeriods []OOOPeriod) bool {
	for _, ooo := range oooPeriods {
		current := grid.Midnight(ooo.Start.Local())
		end := ooo.End.Local()

		for current.Before(end) {
			next := current.AddDate(0, 0, 1)
			if a.Overlaps(current, next) {
				return true
			}
			current = next
		}
	}
	return false
}
