package layout

import (
	"sort"

	"github.com/theakshaypant/dayview/internal/grid"
)

// groupsOf returns the distinct groups of entries, sorted.
func groupsOf(entries []entry) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, e := range entries {
		if !seen[e.appt.Group] {
			seen[e.appt.Group] = true
			groups = append(groups, e.appt.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

// assignColumns places the same-day entries of one day. The day is split
// into one equal slice per group; inside a slice, slots are walked in time
// order and each entry seen for the first time goes one column right of the
// rightmost placed entry of its group in that slot, wrapping to the slice
// origin when it would not fit.
func assignColumns(m *grid.Model, dayIndex int, day grid.Rect, entries []entry, slots []slot, counts []int, cache *ViewCache) {
	groups := groupsOf(entries)
	if len(groups) == 0 {
		return
	}

	cfg := m.Config()
	area := day
	area.X += cfg.GripWidth + 2
	area.Width -= cfg.GripWidth + 2
	sliceWidth := area.Width / len(groups)

	placed := make([]bool, len(entries))
	xs := make([]int, len(entries))

	for gi, group := range groups {
		slice := area
		slice.X = area.X + gi*sliceWidth
		slice.Width = sliceWidth

		for s := range slots {
			for _, i := range slots[s].entries {
				e := entries[i]
				if e.appt.Group != group || placed[i] {
					continue
				}

				colWidth := slice.Width / max(1, counts[i])

				lastX := 0
				for _, j := range slots[s].entries {
					if placed[j] && entries[j].appt.Group == group && xs[j] > lastX {
						lastX = xs[j]
					}
				}
				if lastX+2*colWidth > slice.Right() {
					lastX = 0
				}

				r := slice
				r.Width = colWidth
				if lastX > 0 {
					r.X = lastX + colWidth
				}

				vs, ve := m.VisualSpan(e.start, e.end)
				r = m.HourRangeRect(vs, ve, r)

				grip := m.HourRangeRect(e.start, e.end, grid.Rect{X: r.X, Width: cfg.GripWidth}).Intersect(r)

				placed[i] = true
				xs[i] = r.X
				cache.putSameDay(View{
					Appointment:   e.appt,
					Rect:          r,
					Grip:          grip,
					Day:           dayIndex,
					ConflictCount: max(1, counts[i]),
				})
			}
		}
	}
}
