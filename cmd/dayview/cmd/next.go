package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theakshaypant/dayview/internal/core"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next upcoming appointment",
	Long: `Show detailed information about the next upcoming appointment.

Supports all the same filters as the main command.`,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	now := time.Now()
	rng, err := resolveRange(now)
	if err != nil {
		return err
	}

	appts, err := fetchAppointments(cmd.Context(), rng)
	if err != nil {
		return err
	}

	concurrent := nextAppointments(appts, now)
	out := cmd.OutOrStdout()
	switch {
	case len(concurrent) == 0:
		fmt.Fprintln(out, "No upcoming appointments found.")
	case len(concurrent) > 1:
		printConcurrent(out, concurrent, now)
	default:
		printNext(out, concurrent[0], now)
	}
	return nil
}

// nextAppointments returns the earliest upcoming or in-progress timed
// appointments, all sharing the same start. appts must be sorted by start.
func nextAppointments(appts []core.Appointment, now time.Time) []core.Appointment {
	var eligible []core.Appointment
	for _, a := range appts {
		if a.AllDay {
			continue
		}
		if a.Start.After(now) || a.InProgress(now) {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	nextStart := eligible[0].Start
	var concurrent []core.Appointment
	for _, a := range eligible {
		if !a.Start.Equal(nextStart) {
			break
		}
		concurrent = append(concurrent, a)
	}
	return concurrent
}

func printCountdown(w io.Writer, a core.Appointment, now time.Time) {
	fmt.Fprintln(w)
	if a.InProgress(now) {
		fmt.Fprintf(w, "  🟢 IN PROGRESS - %s remaining\n", formatDurationCompact(a.End.Sub(now)))
	} else {
		fmt.Fprintf(w, "  ⏳ STARTS IN: %s\n", formatCountdown(a.Start.Sub(now)))
	}
}

func printConcurrent(w io.Writer, appts []core.Appointment, now time.Time) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  ⚠️  CONFLICT: %d APPOINTMENTS AT THE SAME TIME\n", len(appts))
	fmt.Fprintln(w, rule)

	printCountdown(w, appts[0], now)

	opts := DisplayOptionsFromConfig(false)
	opts.ShowInProgress = false
	opts.ShowDesc = false
	opts.Indent = "  "

	for i, a := range appts {
		fmt.Fprintf(w, "\n  APPOINTMENT %d of %d\n", i+1, len(appts))
		fmt.Fprintln(w, "  ─────────────────────────────────────────────")
		DisplayAppointment(w, a, opts, now)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

func printNext(w io.Writer, a core.Appointment, now time.Time) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  NEXT APPOINTMENT")
	fmt.Fprintln(w, rule)

	printCountdown(w, a, now)
	fmt.Fprintln(w)

	DisplayAppointment(w, a, DisplayOptionsFromConfig(true), now)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		return "NOW"
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, ", ")
}
