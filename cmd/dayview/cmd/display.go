package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
	"github.com/theakshaypant/dayview/internal/layout"
	"github.com/theakshaypant/dayview/internal/store"
	"github.com/theakshaypant/dayview/internal/util"
)

const rule = "─────────────────────────────────────────────────"

// agendaClient is the client area the agenda is laid out in. Only the
// routing and conflict counts are printed, so the size barely matters.
var agendaClient = grid.Size{Width: 160, Height: 60}

// DisplayOptions controls how appointments are displayed
type DisplayOptions struct {
	Compact        bool   // Compact mode for list views
	ShowCalendar   bool   // Show calendar name
	ShowGroup      bool   // Show the layout group when it differs from the calendar
	ShowTime       bool   // Show when/duration
	ShowLocation   bool   // Show location
	ShowMeetLink   bool   // Show meeting link
	ShowDesc       bool   // Show description
	ShowStatus     bool   // Show response status
	ShowEventURL   bool   // Show calendar URL
	ShowID         bool   // Show appointment ID
	ShowInProgress bool   // Show in-progress status
	Indent         string // Indentation prefix
}

// DefaultDisplayOptions returns options for list view
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		Compact:        true,
		ShowCalendar:   true,
		ShowGroup:      true,
		ShowTime:       true,
		ShowLocation:   true,
		ShowMeetLink:   true,
		ShowDesc:       false,
		ShowStatus:     false,
		ShowEventURL:   false,
		ShowID:         false,
		ShowInProgress: true,
		Indent:         "    ",
	}
}

// DetailedDisplayOptions returns options for a single appointment
func DetailedDisplayOptions() DisplayOptions {
	return DisplayOptions{
		Compact:        false,
		ShowCalendar:   true,
		ShowGroup:      true,
		ShowTime:       true,
		ShowLocation:   true,
		ShowMeetLink:   true,
		ShowDesc:       true,
		ShowStatus:     true,
		ShowEventURL:   true,
		ShowID:         true,
		ShowInProgress: false,
		Indent:         "  ",
	}
}

// DisplayOptionsFromConfig builds display options from viper config
func DisplayOptionsFromConfig(detailed bool) DisplayOptions {
	opts := DefaultDisplayOptions()
	if detailed {
		opts = DetailedDisplayOptions()
	}

	overrides := map[string]*bool{
		"display.calendar":     &opts.ShowCalendar,
		"display.group":        &opts.ShowGroup,
		"display.time":         &opts.ShowTime,
		"display.location":     &opts.ShowLocation,
		"display.meeting_link": &opts.ShowMeetLink,
		"display.description":  &opts.ShowDesc,
		"display.status":       &opts.ShowStatus,
		"display.event_url":    &opts.ShowEventURL,
		"display.id":           &opts.ShowID,
		"display.in_progress":  &opts.ShowInProgress,
	}
	for key, field := range overrides {
		if viper.IsSet(key) {
			*field = viper.GetBool(key)
		}
	}

	return opts
}

// DisplayAppointment prints an appointment with the given options
func DisplayAppointment(w io.Writer, a core.Appointment, opts DisplayOptions, now time.Time) {
	indent := opts.Indent

	title := a.Title
	if title == "" {
		title = "(no title)"
	}
	if label := formatType(a.Type); label != "" {
		title = fmt.Sprintf("[%s] %s", label, title)
	}
	if a.Locked && !opts.Compact {
		title += " 🔒"
	}
	fmt.Fprintf(w, "%s%s\n", indent, title)

	if opts.ShowCalendar {
		if len(a.Calendars) > 1 {
			var calNames []string
			for _, cr := range a.Calendars {
				calNames = append(calNames, cr.Calendar.Name)
			}
			fmt.Fprintf(w, "%s📅 Calendars:   %s\n", indent, strings.Join(calNames, ", "))
		} else if a.Calendar.Name != "" {
			fmt.Fprintf(w, "%s📅 Calendar:    %s\n", indent, a.Calendar.Name)
		}
	}

	if opts.ShowGroup && a.Group != "" && a.Group != a.Calendar.Name {
		fmt.Fprintf(w, "%s🗂  Group:       %s\n", indent, a.Group)
	}

	if opts.ShowTime {
		fmt.Fprintf(w, "%s🕐 When:        %s\n", indent, formatAppointmentTime(a.Start, a.End, a.AllDay))
		fmt.Fprintf(w, "%s⏱️  Duration:    %s\n", indent, formatDurationCompact(a.Duration()))
	}

	if opts.ShowLocation && a.Location != "" {
		fmt.Fprintf(w, "%s📍 Location:    %s\n", indent, a.Location)
	}

	if opts.ShowMeetLink && a.MeetingLink != "" {
		fmt.Fprintf(w, "%s📹 Join:        %s\n", indent, util.Hyperlink(a.MeetingLink, a.MeetingLink))
	}

	if opts.ShowDesc && a.Description != "" {
		if opts.Compact {
			fmt.Fprintf(w, "%s📝 Description: %s\n", indent, util.Truncate(firstLine(util.HTMLToText(a.Description, 80)), 80))
		} else {
			fmt.Fprintf(w, "%s📝 Description:\n", indent)
			desc := ansi.Wordwrap(util.HTMLToText(a.Description, 60), 60, "")
			for _, line := range strings.Split(desc, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				fmt.Fprintf(w, "%s   %s\n", indent, line)
			}
		}
	}

	if opts.ShowStatus {
		if len(a.Calendars) > 1 {
			fmt.Fprintf(w, "%s📊 Responses:\n", indent)
			for _, cr := range a.Calendars {
				fmt.Fprintf(w, "%s   %s: %s\n", indent, cr.Calendar.Name, formatStatus(cr.Status))
			}
		} else {
			fmt.Fprintf(w, "%s📊 Response:    %s\n", indent, formatStatus(a.Status))
		}
	}

	if opts.ShowEventURL && a.URL != "" {
		fmt.Fprintf(w, "%s🔗 Event:       %s\n", indent, util.Hyperlink(a.URL, a.URL))
	}

	if opts.ShowInProgress && a.InProgress(now) {
		fmt.Fprintf(w, "%s🟢 IN PROGRESS (%s remaining)\n", indent, formatDurationCompact(a.End.Sub(now)))
	}

	if opts.ShowID {
		fmt.Fprintf(w, "%s🆔 ID:          %s\n", indent, a.ID)
	}
}

// listAgenda prints the range as the day view sees it: banners first, then
// each day's same-day appointments.
func listAgenda(cmd *cobra.Command, args []string) error {
	now := time.Now()
	rng, err := resolveRange(now)
	if err != nil {
		return err
	}

	appts, err := fetchAppointments(cmd.Context(), rng)
	if err != nil {
		return err
	}

	mem := store.NewMemory()
	if err := mem.SyncAppointments(cmd.Context(), adapter.ID(), appts); err != nil {
		return err
	}
	appts, err = mem.Resolve(cmd.Context(), rng.Start, rng.End())
	if err != nil {
		return err
	}

	cfg, err := gridConfigFromViper()
	if err != nil {
		return err
	}
	cfg.Days = rng.Days

	res, err := layout.Compute(rng, appts, cfg, agendaClient)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			logger.Warn("appointment not laid out cleanly", zap.Error(e))
		}
	}

	printAgenda(cmd.OutOrStdout(), res, DisplayOptionsFromConfig(false), now)
	return nil
}

func printAgenda(w io.Writer, res layout.Result, opts DisplayOptions, now time.Time) {
	rng := res.Range
	fmt.Fprintf(w, "📅 %s to %s\n", rng.Start.Format("Mon, Jan 2"), rng.Day(rng.Days-1).Format("Mon, Jan 2"))
	fmt.Fprintln(w, rule)

	total := len(res.Banners) + len(res.SameDay)
	if total == 0 {
		fmt.Fprintln(w, "No appointments found.")
		return
	}

	if len(res.Banners) > 0 {
		banners := append([]layout.View(nil), res.Banners...)
		sort.SliceStable(banners, func(i, j int) bool { return banners[i].Layer < banners[j].Layer })

		fmt.Fprintln(w, "\n  All day and multi-day")
		for _, v := range banners {
			fmt.Fprintln(w)
			DisplayAppointment(w, v.Appointment, opts, now)
		}
	}

	byDay := make(map[int][]layout.View)
	for _, v := range res.SameDay {
		byDay[v.Day] = append(byDay[v.Day], v)
	}

	for i := 0; i < rng.Days; i++ {
		views := byDay[i]
		if len(views) == 0 {
			continue
		}
		sort.SliceStable(views, func(a, b int) bool {
			return views[a].Appointment.Start.Before(views[b].Appointment.Start)
		})

		fmt.Fprintf(w, "\n  %s\n", rng.Day(i).Format("Monday, Jan 2"))
		for _, v := range views {
			fmt.Fprintln(w)
			DisplayAppointment(w, v.Appointment, opts, now)
			if v.ConflictCount > 1 {
				fmt.Fprintf(w, "%s⚠️  Overlaps:    %d at once\n", opts.Indent, v.ConflictCount)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total: %d appointments\n", total)
}

// formatDurationCompact formats a duration in a compact way
func formatDurationCompact(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%dd %dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	}
	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}

func formatAppointmentTime(start, end time.Time, allDay bool) string {
	localStart := start.Local()
	localEnd := end.Local()

	if allDay {
		if end.Sub(start) <= 24*time.Hour {
			return localStart.Format("Mon, Jan 2") + " (all day)"
		}
		return fmt.Sprintf("%s - %s (all day)", localStart.Format("Mon, Jan 2"), localEnd.AddDate(0, 0, -1).Format("Mon, Jan 2"))
	}

	if grid.SameDate(localStart, localEnd) {
		return fmt.Sprintf("%s, %s - %s", localStart.Format("Mon, Jan 2"), localStart.Format("3:04 PM"), localEnd.Format("3:04 PM"))
	}
	return fmt.Sprintf("%s - %s", localStart.Format("Mon, Jan 2 3:04 PM"), localEnd.Format("Mon, Jan 2 3:04 PM"))
}

func formatStatus(status core.AppointmentStatus) string {
	switch status {
	case core.StatusAccepted:
		return "Accepted ✓"
	case core.StatusRejected:
		return "Declined ✗"
	case core.StatusTentative:
		return "Tentative ?"
	case core.StatusAwaiting:
		return "Awaiting response"
	case core.StatusNoResponse:
		return "No response needed"
	default:
		return "Unknown"
	}
}

func formatType(t core.AppointmentType) string {
	switch t {
	case core.TypeOutOfOffice:
		return "🏖️ OOO"
	case core.TypeFocusTime:
		return "🎯 Focus"
	case core.TypeWorkLocation:
		return "🏠 Location"
	default:
		return ""
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠️  "+format+"\n", args...)
}
