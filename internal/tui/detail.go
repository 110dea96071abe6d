package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/util"
)

// detailContent renders the details of a for the detail viewport.
func detailContent(a core.Appointment, width int, now time.Time) string {
	var lines []string

	lines = append(lines, TitleStyle.Render(ansi.Wordwrap(a.Title, width, "")))

	if len(a.Calendars) > 1 {
		var calNames []string
		for _, cr := range a.Calendars {
			calNames = append(calNames, cr.Calendar.Name)
		}
		lines = append(lines, renderWrappedField("Calendars", strings.Join(calNames, ", "), width))
	} else if a.Calendar.Name != "" {
		lines = append(lines, renderField("Calendar", a.Calendar.Name))
	}

	lines = append(lines, renderField("When", formatAppointmentTime(a.Start, a.End, a.AllDay)))
	if !a.AllDay {
		lines = append(lines, renderField("Duration", formatDuration(a.Duration())))
	}

	switch {
	case a.End.Before(now):
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Italic(true).
			Render(fmt.Sprintf("Ended %s ago", formatDuration(now.Sub(a.End)))))
	case a.InProgress(now):
		lines = append(lines, StatusAcceptedStyle.Render(fmt.Sprintf("In progress, %s remaining", formatDuration(a.End.Sub(now)))))
	case a.Start.After(now):
		lines = append(lines, StatusPendingStyle.Render(fmt.Sprintf("Starts in %s", formatDuration(a.Start.Sub(now)))))
	}
	lines = append(lines, "")

	if a.Location != "" {
		lines = append(lines, renderWrappedField("Location", a.Location, width))
	}

	if a.MeetingLink != "" {
		labelWidth := lipgloss.Width(LabelStyle.Render("Join")) + 1
		displayURL := util.Truncate(a.MeetingLink, width-labelWidth)
		lines = append(lines, renderField("Join", util.Hyperlink(a.MeetingLink, LinkStyle.Render(displayURL))))
	}

	if len(a.Calendars) > 1 {
		lines = append(lines, LabelStyle.Render("Responses"))
		for _, cr := range a.Calendars {
			lines = append(lines, fmt.Sprintf("   %s: %s", ValueStyle.Render(cr.Calendar.Name), formatStatus(cr.Status)))
		}
	} else {
		lines = append(lines, renderField("Response", formatStatus(a.Status)))
	}
	if a.Locked {
		lines = append(lines, CalendarBadgeStyle.Render("read-only"))
	}

	if a.Description != "" {
		lines = append(lines, "", LabelStyle.Render("Description"))
		desc := util.HTMLToText(a.Description, width)
		lines = append(lines, ValueStyle.Render(ansi.Wordwrap(desc, width, "")))
	}

	return strings.Join(lines, "\n")
}

func renderField(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

// renderWrappedField word-wraps value to maxWidth, indenting continuation
// lines under the value.
func renderWrappedField(label, value string, maxWidth int) string {
	labelRendered := LabelStyle.Render(label)
	labelWidth := lipgloss.Width(labelRendered) + 1
	valueWidth := max(10, maxWidth-labelWidth)
	wrapLines := strings.Split(ansi.Wordwrap(value, valueWidth, ""), "\n")
	indent := strings.Repeat(" ", labelWidth)
	for i := 1; i < len(wrapLines); i++ {
		wrapLines[i] = indent + wrapLines[i]
	}
	return labelRendered + " " + ValueStyle.Render(strings.Join(wrapLines, "\n"))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours()) / 24
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
		last := localEnd.AddDate(0, 0, -1)
		if !last.After(localStart) {
			return localStart.Format("Mon, Jan 2") + " (all day)"
		}
		return fmt.Sprintf("%s - %s (all day)", localStart.Format("Mon, Jan 2"), last.Format("Mon, Jan 2"))
	}
	if localStart.YearDay() == localEnd.YearDay() && localStart.Year() == localEnd.Year() {
		return fmt.Sprintf("%s, %s - %s",
			localStart.Format("Mon, Jan 2"),
			localStart.Format("15:04"),
			localEnd.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s",
		localStart.Format("Mon, Jan 2 15:04"),
		localEnd.Format("Mon, Jan 2 15:04"))
}

func formatStatus(status core.AppointmentStatus) string {
	switch status {
	case core.StatusAccepted:
		return StatusAcceptedStyle.Render("Accepted")
	case core.StatusRejected:
		return StatusDeclinedStyle.Render("Declined")
	case core.StatusTentative:
		return StatusPendingStyle.Render("Tentative")
	case core.StatusAwaiting:
		return StatusPendingStyle.Render("Awaiting response")
	case core.StatusNoResponse:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("No response needed")
	default:
		return "Unknown"
	}
}

// openURL opens url in the default browser. Failures are ignored; the link
// is also shown in the detail pane.
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		_ = util.OpenBrowser(url)
		return nil
	}
}
