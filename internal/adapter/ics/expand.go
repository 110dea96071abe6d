package ics

import (
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

const maxOccurrences = 5000

// occurrence is one concrete instance of a vevent.
type occurrence struct {
	Event vevent
	Start time.Time
	End   time.Time
}

// expand turns events into the occurrences overlapping [from, to). Overrides
// (events with a RECURRENCE-ID) replace the instance they name.
func expand(events []vevent, from, to time.Time, log *zap.Logger) []occurrence {
	base := make(map[string][]vevent)
	overrides := make(map[string][]vevent)
	var order []string

	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	var out []occurrence
	for _, uid := range order {
		for _, ev := range base[uid] {
			if ev.RRule == "" {
				out = appendIfOverlaps(out, applyOverride(ev, ev.Start, ev.End, overrides[uid]), from, to)
				continue
			}
			out = append(out, expandRecurring(ev, overrides[uid], from, to, log)...)
		}
	}
	return out
}

func expandRecurring(ev vevent, overrides []vevent, from, to time.Time, log *zap.Logger) []occurrence {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		log.Warn("skipping event with unreadable RRULE",
			zap.String("uid", ev.UID), zap.String("rrule", ev.RRule), zap.Error(err))
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	// Widen the window by the duration so instances starting before from
	// that still run into it are kept.
	times := set.Between(from.Add(-dur).In(loc), to.In(loc), true)
	if len(times) > maxOccurrences {
		log.Warn("recurrence truncated", zap.String("uid", ev.UID), zap.Int("cap", maxOccurrences))
		times = times[:maxOccurrences]
	}

	var out []occurrence
	for _, start := range times {
		out = appendIfOverlaps(out, applyOverride(ev, start, start.Add(dur), overrides), from, to)
	}
	return out
}

func applyOverride(ev vevent, start, end time.Time, overrides []vevent) occurrence {
	for _, ov := range overrides {
		if ov.Recurrence.Equal(start) {
			return occurrence{Event: ov, Start: ov.Start, End: ov.End}
		}
	}
	return occurrence{Event: ev, Start: start, End: end}
}

func appendIfOverlaps(out []occurrence, occ occurrence, from, to time.Time) []occurrence {
	if occ.Event.Status == "CANCELLED" {
		return out
	}
	// Zero-length occurrences count when they sit inside the window.
	if occ.End.After(from) && occ.Start.Before(to) || !occ.Start.Before(from) && occ.Start.Before(to) {
		return append(out, occ)
	}
	return out
}
