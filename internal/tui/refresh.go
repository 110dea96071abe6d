package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
)

// DefaultRefresh reloads providers every fifteen minutes.
const DefaultRefresh = "*/15 * * * *"

type refreshMsg time.Time

type clockMsg time.Time

// ParseRefresh parses a standard five-field cron expression. An empty spec
// disables scheduled refreshes.
func ParseRefresh(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, nil
	}
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// scheduleRefresh fires a refreshMsg at the next activation of s.
func scheduleRefresh(s cron.Schedule, now time.Time) tea.Cmd {
	if s == nil {
		return nil
	}
	next := s.Next(now)
	if next.IsZero() {
		return nil
	}
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// clockTick redraws the now line once a minute.
func clockTick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
