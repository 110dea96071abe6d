package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/theakshaypant/dayview/internal/grid"
	"github.com/theakshaypant/dayview/internal/layout"
)

// editBox is an open title editor drawn over its view.
type editBox struct {
	bounds grid.Rect
	value  string
}

// renderDayView draws the latest pass of e: day headers, banners, hour
// labels, working hours, the selected range and the appointment views.
func renderDayView(e *layout.Engine, now time.Time, edit *editBox) string {
	client := e.Client()
	g := e.Grid()
	cfg := g.Config()
	rng := e.Range()
	cols := g.Columns(client)
	area := g.TrueRect(client)

	c := newCanvas(client.Width, client.Height, GridStyle)
	c.fill(c.bounds(), ' ', GridStyle)

	drawHours(c, g, area)

	for i := 0; i < rng.Days; i++ {
		day := rng.Day(i)
		col := cols.Day(i)
		if band, ok := g.WorkingHours(day, col); ok {
			c.fill(band.Intersect(area), ' ', WorkingStyle)
		}
		if i > 0 {
			c.fill(grid.Rect{X: col.X, Y: area.Y, Width: 1, Height: area.Height}, '│', GridStyle)
		}

		label := day.Format("Mon 02")
		st := DayHeaderStyle
		if grid.SameDate(day, now) {
			st = TodayHeaderStyle
		}
		w := lipgloss.Width(label)
		x := col.X + max(0, (col.Width-w)/2)
		c.text(x, 0, label, col.Width, st)
	}

	if r, ok := e.SelectionRect(); ok {
		c.fill(r.Intersect(area), ' ', SelectionStyle)
	}

	if day := grid.CalendarDays(rng.Start, now); day >= 0 && day < rng.Days {
		col := cols.Day(day)
		y := g.TimeToY(now)
		if y >= area.Y && y < area.Bottom() {
			c.hline(col.X, y, col.Width, '─', NowLineStyle)
		}
	}

	palette := groupColors(e.Cache())

	for _, v := range e.Cache().SameDay() {
		drawView(c, v, v.Rect.Intersect(area), cfg.GripWidth, palette)
	}

	bannerArea := g.BannerAreaRect(client)
	if !bannerArea.Empty() {
		c.fill(bannerArea, ' ', BannerAreaStyle)
		for _, v := range e.Cache().Banners() {
			drawView(c, v, v.Rect.Intersect(bannerArea), 0, palette)
		}
	}

	if edit != nil {
		b := edit.bounds.Intersect(c.bounds())
		if !b.Empty() {
			c.fill(grid.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: 1}, ' ', EditStyle)
			value := edit.value + "▏"
			// Keep the tail in view while typing.
			for lipgloss.Width(value) > b.Width && len(value) > 0 {
				_, size := utf8.DecodeRuneInString(value)
				value = value[size:]
			}
			c.text(b.X, b.Y, value, b.Width, EditStyle)
		}
	}

	return c.String()
}

func drawHours(c *canvas, g *grid.Model, area grid.Rect) {
	cfg := g.Config()
	hourH := g.HourHeight()
	for y := area.Y; y < area.Bottom(); y++ {
		rel := y - area.Y + g.Scroll()
		if rel%hourH != 0 {
			continue
		}
		hour := rel / hourH
		if hour >= 24 {
			break
		}
		c.text(0, y, fmt.Sprintf("%*s", cfg.HourLabelWidth, fmt.Sprintf("%02d:00", hour)), cfg.HourLabelWidth, HourLabelStyle)
	}
}

func drawView(c *canvas, v layout.View, r grid.Rect, grip int, palette map[string]lipgloss.Color) {
	if r.Empty() {
		return
	}
	st := appointmentStyle(palette[v.Appointment.Group], v.Selected)
	c.fill(r, ' ', st)

	if grip > 0 {
		c.fill(v.Grip.Intersect(r), '▌', GripStyle.Background(palette[v.Appointment.Group]))
	}

	inner := r
	inner.X += grip
	inner.Width -= grip
	if v.Border && inner.Width >= 4 && inner.Height >= 3 {
		c.box(inner, st)
		inner = inner.Inset(1, 1)
	}
	if inner.Empty() {
		return
	}

	lines := []string{v.Appointment.Title}
	if !v.Banner {
		lines = append([]string{v.Appointment.Start.Format("15:04")}, lines...)
		if inner.Height < 2 {
			lines = []string{v.Appointment.Start.Format("15:04") + " " + v.Appointment.Title}
		}
	}
	if v.Appointment.Location != "" {
		lines = append(lines, v.Appointment.Location)
	}
	for i, line := range lines {
		if i >= inner.Height {
			break
		}
		c.text(inner.X, inner.Y+i, strings.TrimSpace(line), inner.Width, st)
	}
}

// groupColors assigns palette colors to groups in order of appearance.
func groupColors(cache *layout.ViewCache) map[string]lipgloss.Color {
	out := make(map[string]lipgloss.Color)
	assign := func(views []layout.View) {
		for _, v := range views {
			if _, ok := out[v.Appointment.Group]; !ok {
				out[v.Appointment.Group] = groupPalette[len(out)%len(groupPalette)]
			}
		}
	}
	assign(cache.SameDay())
	assign(cache.Banners())
	return out
}
