package layout

import (
	"time"

	"github.com/theakshaypant/dayview/internal/grid"
)

// dayNumber counts calendar days from the Unix epoch to t's date.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// dateSpan is the inclusive range of calendar dates an entry touches.
type dateSpan struct {
	first, last int
}

func dateSpanOf(e entry) dateSpan {
	return dateSpan{first: dayNumber(e.start), last: dayNumber(e.end)}
}

func (a dateSpan) intersects(b dateSpan) bool {
	return a.first <= b.last && b.first <= a.last
}

// assignLayers colors banners first-fit in input order: each banner takes
// the lowest layer none of whose occupants shares a calendar date with it.
// It returns the layer of every entry and the number of layers used.
func assignLayers(entries []entry) ([]int, int) {
	layers := make([]int, len(entries))
	var occupants [][]dateSpan

	for i, e := range entries {
		ds := dateSpanOf(e)
		layer := len(occupants)
		for l, spans := range occupants {
			free := true
			for _, other := range spans {
				if ds.intersects(other) {
					free = false
					break
				}
			}
			if free {
				layer = l
				break
			}
		}
		if layer == len(occupants) {
			occupants = append(occupants, nil)
		}
		occupants[layer] = append(occupants[layer], ds)
		layers[i] = layer
	}

	return layers, len(occupants)
}

// spanDays is the number of day columns a banner covers: its whole-day
// duration, plus one when it ends on a later day at an earlier time of day
// than it started. Never less than one.
func spanDays(start, end time.Time) int {
	days := int(end.Sub(start) / (24 * time.Hour))
	if !grid.SameDate(start, end) && timeOfDay(end) < timeOfDay(start) {
		days++
	}
	return max(1, days)
}

func timeOfDay(t time.Time) time.Duration {
	return t.Sub(grid.Midnight(t))
}

// bannerAreaHeight is the strip height for the given number of layers.
func bannerAreaHeight(cfg grid.Config, layers int) int {
	if layers == 0 {
		return 0
	}
	return layers*(cfg.BannerHeight+cfg.BannerGap) + cfg.BannerGap
}

// placeBanners writes the banner views for entries.
func placeBanners(m *grid.Model, cols grid.Columns, rangeStart time.Time, entries []entry, layers []int, cache *ViewCache) {
	cfg := m.Config()
	for i, e := range entries {
		day := grid.CalendarDays(rangeStart, e.start)
		x := cols.X(day)
		right := cols.X(day + spanDays(e.start, e.end))
		r := grid.Rect{
			X:      x,
			Y:      cfg.DayHeaderHeight + layers[i]*(cfg.BannerHeight+cfg.BannerGap) + cfg.BannerGap,
			Width:  right - x,
			Height: cfg.BannerHeight,
		}
		cache.putBanner(View{
			Appointment:   e.appt,
			Rect:          r,
			Grip:          grid.Rect{X: r.X, Y: r.Y, Width: min(cfg.GripWidth, r.Width), Height: r.Height},
			Day:           day,
			Banner:        true,
			Layer:         layers[i],
			ConflictCount: 1,
		})
	}
}
