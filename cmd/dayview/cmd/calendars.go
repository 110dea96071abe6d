package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var calendarsCmd = &cobra.Command{
	Use:     "calendars",
	Aliases: []string{"cal", "cals"},
	Short:   "List available calendars",
	Long: `List every calendar the provider exposes. Each calendar's name is the
group its appointments are colored by in the day view.

SHOWN marks the calendars selected by --calendars (all, when unset) and
PRIMARY the one used for smart out-of-office filtering.`,
	RunE: runCalendars,
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, args []string) error {
	calendars := adapter.Calendars()

	var selected []string
	if names := viper.GetString("calendars"); names != "" {
		selected = resolveCalendarNames(strings.Split(names, ","), calendars)
	}
	primary := detectPrimaryCalendar(viper.GetString("primary_calendar"))

	printCalendars(cmd.OutOrStdout(), calendars, selected, primary)
	return nil
}

func printCalendars(w io.Writer, calendars map[string]string, selected []string, primary string) {
	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if calendars[ids[i]] != calendars[ids[j]] {
			return calendars[ids[i]] < calendars[ids[j]]
		}
		return ids[i] < ids[j]
	})

	shown := make(map[string]bool, len(selected))
	for _, id := range selected {
		shown[id] = true
	}

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return ""
	}

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{
			calendars[id],
			mark(len(selected) == 0 || shown[id]),
			mark(id == primary),
			id,
		})
	}

	fmt.Fprintln(w, "📅 Available calendars")
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SHOWN", "PRIMARY", "ID").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "Total: %d calendars\n", len(calendars))
	fmt.Fprintln(w, "\nTip: Use 'dayview -c \"calendar name\"' to show only some calendars")
}
