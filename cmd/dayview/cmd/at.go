package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var atCmd = &cobra.Command{
	Use:   "at",
	Short: "Show what sits at a point of the day view",
	Long: `Lay out the selected range like 'dayview layout' and report what a click
at (--x, --y) would hit: an appointment, the banner strip, or a time slot.

Coordinates are relative to the client area, with (0, 0) at its top-left
corner.`,
	RunE: runAt,
}

func init() {
	rootCmd.AddCommand(atCmd)
	addViewportFlags(atCmd)
	atCmd.Flags().Int("x", 0, "Horizontal position in the client area")
	atCmd.Flags().Int("y", 0, "Vertical position in the client area")
	atCmd.Flags().Bool("wide", false, "Select an hour instead of one slot when no appointment is hit")
}

func runAt(cmd *cobra.Command, args []string) error {
	e, _, err := computeView(cmd)
	if e == nil {
		return err
	}
	if err != nil {
		logger.Sugar().Debugw("layout reported problems", "error", err)
	}

	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	wide, _ := cmd.Flags().GetBool("wide")
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "📍 (%d, %d)\n", x, y)
	fmt.Fprintln(out, rule)

	if a, ok := e.HitTest(x, y); ok {
		rect, _ := e.RectFor(a.ID)
		fmt.Fprintf(out, "  Rect:        %d,%d %dx%d\n\n", rect.X, rect.Y, rect.Width, rect.Height)
		DisplayAppointment(out, a, DisplayOptionsFromConfig(true), time.Now())
		return nil
	}

	if y < e.Grid().HeaderHeight() {
		fmt.Fprintln(out, "  Header or banner strip, no appointment")
		return nil
	}

	sel := e.SelectAt(x, y, wide)
	fmt.Fprintf(out, "  Time:        %s\n", e.TimeAt(x, y).Format("Mon, Jan 2 15:04"))
	fmt.Fprintf(out, "  Selects:     %s - %s\n", sel.Start.Format("15:04"), sel.End.Format("15:04"))
	if rect, ok := e.SelectionRect(); ok {
		fmt.Fprintf(out, "  Rect:        %d,%d %dx%d\n", rect.X, rect.Y, rect.Width, rect.Height)
	}
	return nil
}
