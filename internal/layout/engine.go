// Package layout positions appointments on a multi-day time grid.
//
// A pass routes every appointment either to a day column or to the banner
// strip above the grid. Day columns are split by group and packed greedily
// using per-slot conflict counts; banners are stacked into layers first-fit.
// The resulting rectangles are kept in a ViewCache for drawing and hit
// testing until the next pass.
package layout

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
)

// Range is a run of whole days starting at midnight of Start.
type Range struct {
	Start time.Time
	Days  int
}

// NewRange returns the range of days days starting on start's date.
func NewRange(start time.Time, days int) Range {
	return Range{Start: grid.Midnight(start), Days: max(1, days)}
}

// WeekRange returns the days-long range starting on the Monday of t's week.
func WeekRange(t time.Time, days int) Range {
	return NewRange(grid.WeekStart(t), days)
}

// Day returns midnight of day i.
func (r Range) Day(i int) time.Time { return r.Start.AddDate(0, 0, i) }

// End is midnight after the last day.
func (r Range) End() time.Time { return r.Day(r.Days) }

// Shift moves the range by n days.
func (r Range) Shift(n int) Range { return Range{Start: r.Day(n), Days: r.Days} }

// Result is a snapshot of one pass.
type Result struct {
	Range   Range
	SameDay []View
	Banners []View
	// BannerHeight is the height of the banner strip; the grid below starts
	// that much lower.
	BannerHeight   int
	ConflictCounts map[string]int
	Layers         map[string]int
}

// Engine runs layout passes and answers queries about the latest one. It is
// not safe for concurrent use.
type Engine struct {
	grid   *grid.Model
	cache  *ViewCache
	log    *zap.Logger
	rng    Range
	client grid.Size

	sel  Selection
	gen  uint64
	edit editState
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for pass statistics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an engine over cfg showing the range that starts today.
func NewEngine(cfg grid.Config, opts ...Option) *Engine {
	e := &Engine{
		grid:  grid.NewModel(cfg),
		cache: NewViewCache(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = NewRange(time.Now(), e.grid.Config().Days)
	return e
}

// Compute runs a single pass on a fresh engine.
func Compute(r Range, appts []core.Appointment, cfg grid.Config, client grid.Size) (Result, error) {
	return NewEngine(cfg).ComputeLayout(r, appts, client)
}

// Grid returns the time grid the engine lays out on.
func (e *Engine) Grid() *grid.Model { return e.grid }

// Cache returns the views of the latest pass.
func (e *Engine) Cache() *ViewCache { return e.cache }

// Range returns the range of the latest pass.
func (e *Engine) Range() Range { return e.rng }

// Client returns the client size of the latest pass.
func (e *Engine) Client() grid.Size { return e.client }

// ComputeLayout lays out appts over r in a client area of the given size.
// The order of appts decides banner layering.
//
// Appointments that cannot be laid out (no ID, repeated ID) and appointments
// that end before they start are reported together in the returned error;
// the result still covers every other appointment, and inverted intervals
// are drawn as one-slot boxes. ErrEditInProgress is returned, with the
// previous pass left intact, while an edit session is open.
func (e *Engine) ComputeLayout(r Range, appts []core.Appointment, client grid.Size) (Result, error) {
	if e.edit.active {
		return Result{}, ErrEditInProgress
	}
	began := time.Now()

	if r.Days < 1 {
		r.Days = 1
	}
	e.rng = r
	e.client = client
	e.grid.SetDays(r.Days)
	e.cache.Reset()
	cfg := e.grid.Config()

	var errs error
	seen := make(map[string]bool, len(appts))
	var banners []entry
	sameDay := make(map[Bucket][]entry)

	for i, a := range appts {
		if a.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("appointment %d (%q): %w", i, a.Title, ErrMissingID))
			continue
		}
		if seen[a.ID] {
			errs = multierr.Append(errs, fmt.Errorf("appointment %q: %w", a.ID, ErrDuplicateID))
			continue
		}
		seen[a.ID] = true
		if a.End.Before(a.Start) {
			errs = multierr.Append(errs, &IntervalError{ID: a.ID, Start: a.Start, End: a.End})
		}

		ent := newEntry(a)
		if b := Route(a, cfg.LegacyDayKeys); b.Kind == Spanning {
			banners = append(banners, ent)
		} else {
			sameDay[b] = append(sameDay[b], ent)
		}
	}

	layers, layerCount := assignLayers(banners)
	e.grid.SetBannerAreaHeight(bannerAreaHeight(cfg, layerCount))

	cols := e.grid.Columns(client)
	placeBanners(e.grid, cols, r.Start, banners, layers, e.cache)

	for d := 0; d < r.Days; d++ {
		entries := sameDay[SameDayBucket(r.Day(d), cfg.LegacyDayKeys)]
		if len(entries) == 0 {
			continue
		}
		slots, counts := resolveConflicts(e.grid, entries)
		assignColumns(e.grid, d, cols.Day(d), entries, slots, counts, e.cache)
	}

	e.cache.clip = e.grid.TrueRect(client)
	e.cache.bannerClip = e.grid.BannerAreaRect(client)
	e.cache.markSelected(e.sel.AppointmentID, cfg.BorderAll)

	res := Result{
		Range:          r,
		SameDay:        e.cache.SameDay(),
		Banners:        e.cache.Banners(),
		BannerHeight:   e.grid.BannerAreaHeight(),
		ConflictCounts: make(map[string]int),
		Layers:         make(map[string]int),
	}
	for _, v := range res.SameDay {
		res.ConflictCounts[v.Appointment.ID] = v.ConflictCount
	}
	for _, v := range res.Banners {
		res.Layers[v.Appointment.ID] = v.Layer
	}

	for _, err := range multierr.Errors(errs) {
		e.log.Debug("appointment rejected", zap.Error(err))
	}
	e.log.Debug("layout pass",
		zap.Time("range_start", r.Start),
		zap.Int("days", r.Days),
		zap.Int("same_day", len(res.SameDay)),
		zap.Int("banners", len(res.Banners)),
		zap.Int("layers", layerCount),
		zap.Duration("took", time.Since(began)),
	)

	return res, errs
}

// HitTest returns the appointment under the client point of the latest pass.
func (e *Engine) HitTest(x, y int) (core.Appointment, bool) {
	v, ok := e.cache.HitTest(x, y)
	return v.Appointment, ok
}

// TimeAt returns the time under the client point of the latest pass.
func (e *Engine) TimeAt(x, y int) time.Time {
	return e.grid.PixelToTime(e.client, e.rng.Start, x, y)
}

// RectFor returns the rectangle of the appointment with the given ID in the
// latest pass.
func (e *Engine) RectFor(id string) (grid.Rect, bool) {
	return e.cache.RectFor(id)
}

// DayRect returns the column of day i of the latest pass.
func (e *Engine) DayRect(i int) grid.Rect {
	return e.grid.Columns(e.client).Day(i)
}
