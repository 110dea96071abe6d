package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// HeightMode controls how an appointment's visual start and end are rounded
// to slot boundaries before its rectangle is computed.
type HeightMode int

const (
	// TrueHeightAll draws every appointment over its exact start and end.
	TrueHeightAll HeightMode = iota
	// FullHalfHourBlocksAll rounds the start down and the end up to slot boundaries.
	FullHalfHourBlocksAll
	// EndHalfHourBlocksAll keeps the start and rounds the end up.
	EndHalfHourBlocksAll
	// FullHalfHourBlocksShort applies full rounding only to appointments shorter than a slot.
	FullHalfHourBlocksShort
	// EndHalfHourBlocksShort applies end rounding only to appointments shorter than a slot.
	EndHalfHourBlocksShort
)

var heightModeNames = map[HeightMode]string{
	TrueHeightAll:           "true-height-all",
	FullHalfHourBlocksAll:   "full-blocks-all",
	EndHalfHourBlocksAll:    "end-blocks-all",
	FullHalfHourBlocksShort: "full-blocks-short",
	EndHalfHourBlocksShort:  "end-blocks-short",
}

func (m HeightMode) String() string {
	if s, ok := heightModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("HeightMode(%d)", int(m))
}

// ParseHeightMode accepts the names printed by HeightMode.String.
func ParseHeightMode(s string) (HeightMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TrueHeightAll, nil
	}
	for mode, name := range heightModeNames {
		if name == s {
			return mode, nil
		}
	}
	return TrueHeightAll, fmt.Errorf("unknown height mode %q (supported: true-height-all, full-blocks-all, end-blocks-all, full-blocks-short, end-blocks-short)", s)
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (or a bare hour such as "9").
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	h, err := strconv.Atoi(hourPart)
	if err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	m := 0
	if hasMinutes {
		m, err = strconv.Atoi(minutePart)
		if err != nil {
			return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
		}
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return Clock{}, fmt.Errorf("clock %q out of range", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// Minutes returns the offset of c from midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Config holds the grid geometry. Sizes are in pixels; the terminal UI uses
// one pixel per character cell.
type Config struct {
	SlotsPerHour int
	SlotHeight   int
	StartHour    int

	WorkingStart Clock
	WorkingEnd   Clock

	HeightMode HeightMode

	DayHeaderHeight int
	HourLabelWidth  int
	HourLabelIndent int
	GripWidth       int
	BannerHeight    int
	BannerGap       int

	// Days is the number of day columns shown side by side.
	Days int

	// BorderAll marks every view as bordered, not just the selected one.
	BorderAll bool
	// MinSlotHeight draws every same-day appointment at least one slot tall.
	MinSlotHeight bool
	// LegacyDayKeys buckets same-day appointments by day-of-month only, so
	// days from different months that share a number collide.
	LegacyDayKeys bool
}

// DefaultConfig returns the pixel geometry of a desktop day view.
func DefaultConfig() Config {
	return Config{
		SlotsPerHour:    4,
		SlotHeight:      18,
		StartHour:       8,
		WorkingStart:    Clock{Hour: 8, Minute: 30},
		WorkingEnd:      Clock{Hour: 18, Minute: 30},
		HeightMode:      TrueHeightAll,
		DayHeaderHeight: 20,
		HourLabelWidth:  50,
		HourLabelIndent: 2,
		GripWidth:       5,
		BannerHeight:    20,
		BannerGap:       5,
		Days:            7,
	}
}

// TerminalConfig returns a geometry sized for character cells.
func TerminalConfig() Config {
	cfg := DefaultConfig()
	cfg.SlotHeight = 1
	cfg.DayHeaderHeight = 1
	cfg.HourLabelWidth = 6
	cfg.HourLabelIndent = 1
	cfg.GripWidth = 1
	cfg.BannerHeight = 1
	cfg.BannerGap = 0
	return cfg
}

// Normalize repairs out-of-range values in place.
func (c *Config) Normalize() {
	if c.SlotsPerHour <= 0 || c.SlotsPerHour > 60 || 60%c.SlotsPerHour != 0 {
		c.SlotsPerHour = 4
	}
	if c.SlotHeight < 1 {
		c.SlotHeight = 1
	}
	if c.StartHour < 0 {
		c.StartHour = 0
	}
	if c.StartHour > 23 {
		c.StartHour = 23
	}
	c.WorkingStart = clampClock(c.WorkingStart)
	c.WorkingEnd = clampClock(c.WorkingEnd)
	if c.WorkingEnd.Minutes() < c.WorkingStart.Minutes() {
		c.WorkingStart, c.WorkingEnd = c.WorkingEnd, c.WorkingStart
	}
	if _, ok := heightModeNames[c.HeightMode]; !ok {
		c.HeightMode = TrueHeightAll
	}
	if c.DayHeaderHeight < 0 {
		c.DayHeaderHeight = 0
	}
	if c.HourLabelWidth < 0 {
		c.HourLabelWidth = 0
	}
	if c.HourLabelIndent < 0 {
		c.HourLabelIndent = 0
	}
	if c.GripWidth < 0 {
		c.GripWidth = 0
	}
	if c.BannerHeight < 1 {
		c.BannerHeight = 1
	}
	if c.BannerGap < 0 {
		c.BannerGap = 0
	}
	if c.Days < 1 {
		c.Days = 1
	}
}

func clampClock(c Clock) Clock {
	if c.Hour < 0 {
		return Clock{}
	}
	if c.Hour >= 24 {
		return Clock{Hour: 24}
	}
	if c.Minute < 0 {
		c.Minute = 0
	}
	if c.Minute > 59 {
		c.Minute = 59
	}
	return c
}
