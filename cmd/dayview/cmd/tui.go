package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/store"
	"github.com/theakshaypant/dayview/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive day view",
	Long: `Launch the interactive day view: days side by side, hours running down,
multi-day appointments in a banner strip above the grid.

Click an empty slot and start typing to create an appointment. Select an
appointment and press enter to rename it.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	rng, err := resolveRange(time.Now())
	if err != nil {
		return err
	}
	opts, err := buildFetchOptions(rng)
	if err != nil {
		return err
	}

	cfg, err := gridConfigFromViper()
	if err != nil {
		return err
	}

	refresh, err := tui.ParseRefresh(viper.GetString("ui.refresh"))
	if err != nil {
		return fmt.Errorf("ui.refresh: %w", err)
	}

	start := time.Time{}
	if viper.GetString("from") != "" {
		start = rng.Start
	}

	m := tui.NewModel(tui.Options{
		Providers: []core.Provider{adapter},
		Store:     store.NewMemory(),
		Fetch:     opts,
		Grid:      cfg,
		Refresh:   refresh,
		Logger:    logger,
		Start:     start,
	})

	// Set up the program with mouse support and alt screen
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
