package util

import "github.com/charmbracelet/x/ansi"

// Ellipsis marks text cut to fit a cell or column.
const Ellipsis = "…"

// Hyperlink wraps text in an OSC 8 hyperlink to url. Terminals without
// OSC 8 support show text unchanged.
func Hyperlink(url, text string) string {
	if url == "" {
		return text
	}
	if text == "" {
		text = url
	}
	return ansi.SetHyperlink(url) + text + ansi.ResetHyperlink()
}

// Truncate shortens s to at most width display cells, ending in Ellipsis
// when anything was cut. Escape sequences do not count toward the width.
// A width <= 0 leaves s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}
