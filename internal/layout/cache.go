package layout

import (
	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

// View is one laid-out appointment.
type View struct {
	Appointment core.Appointment
	Rect        grid.Rect
	// Grip is the handle strip at the left edge of Rect, over the
	// appointment's unrounded time span.
	Grip grid.Rect
	// Day is the index of the view's (first) day column. Banners starting
	// before the range have a negative index.
	Day           int
	ConflictCount int
	Banner        bool
	Layer         int
	Selected      bool
	Border        bool
}

// ViewCache holds the views of the most recent layout pass, same-day and
// banner views apart. Views are kept in placement order so scans are
// deterministic.
type ViewCache struct {
	sameDay    []View
	banners    []View
	sameDayIdx map[string]int
	bannerIdx  map[string]int

	// Views are only hit where they are drawn: same-day views inside the
	// grid area, banners inside the banner strip.
	clip       grid.Rect
	bannerClip grid.Rect
}

func NewViewCache() *ViewCache {
	c := &ViewCache{}
	c.Reset()
	return c
}

// Reset drops every view.
func (c *ViewCache) Reset() {
	c.sameDay = nil
	c.banners = nil
	c.sameDayIdx = make(map[string]int)
	c.bannerIdx = make(map[string]int)
	c.clip = grid.Rect{}
	c.bannerClip = grid.Rect{}
}

func (c *ViewCache) putSameDay(v View) {
	if i, ok := c.sameDayIdx[v.Appointment.ID]; ok {
		c.sameDay[i] = v
		return
	}
	c.sameDayIdx[v.Appointment.ID] = len(c.sameDay)
	c.sameDay = append(c.sameDay, v)
}

func (c *ViewCache) putBanner(v View) {
	if i, ok := c.bannerIdx[v.Appointment.ID]; ok {
		c.banners[i] = v
		return
	}
	c.bannerIdx[v.Appointment.ID] = len(c.banners)
	c.banners = append(c.banners, v)
}

// Len is the number of views of both kinds.
func (c *ViewCache) Len() int { return len(c.sameDay) + len(c.banners) }

// Lookup returns the view of the appointment with the given ID.
func (c *ViewCache) Lookup(id string) (View, bool) {
	if i, ok := c.sameDayIdx[id]; ok {
		return c.sameDay[i], true
	}
	if i, ok := c.bannerIdx[id]; ok {
		return c.banners[i], true
	}
	return View{}, false
}

// RectFor returns the rectangle of the appointment with the given ID.
func (c *ViewCache) RectFor(id string) (grid.Rect, bool) {
	v, ok := c.Lookup(id)
	return v.Rect, ok
}

// HitTest returns the view under the point, same-day views first.
func (c *ViewCache) HitTest(x, y int) (View, bool) {
	for _, v := range c.sameDay {
		if v.Rect.Intersect(c.clip).Contains(x, y) {
			return v, true
		}
	}
	for _, v := range c.banners {
		if v.Rect.Intersect(c.bannerClip).Contains(x, y) {
			return v, true
		}
	}
	return View{}, false
}

// SameDay returns a copy of the same-day views in placement order.
func (c *ViewCache) SameDay() []View {
	return append([]View(nil), c.sameDay...)
}

// Banners returns a copy of the banner views in input order.
func (c *ViewCache) Banners() []View {
	return append([]View(nil), c.banners...)
}

func (c *ViewCache) markSelected(id string, borderAll bool) {
	for i := range c.sameDay {
		c.sameDay[i].Selected = c.sameDay[i].Appointment.ID == id
		c.sameDay[i].Border = borderAll || c.sameDay[i].Selected
	}
	for i := range c.banners {
		c.banners[i].Selected = c.banners[i].Appointment.ID == id
		c.banners[i].Border = borderAll || c.banners[i].Selected
	}
}
