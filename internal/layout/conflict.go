package layout

import "github.com/theakshaypant/dayview/internal/grid"

// slot is one quantized unit of a day. It lists the appointments active in
// it, in the order they were added, and counts them per group.
type slot struct {
	entries []int
	groups  map[string]int
}

func (s *slot) add(i int, group string) {
	s.entries = append(s.entries, i)
	if s.groups == nil {
		s.groups = make(map[string]int)
	}
	s.groups[group]++
}

// slotRange returns the half-open slot interval an entry occupies. Every
// entry occupies at least one slot.
func slotRange(m *grid.Model, e entry) (int, int) {
	first := m.SlotIndex(e.start)
	last := m.SlotIndex(e.end)
	if first == last {
		if last < m.SlotsPerDay() {
			last++
		} else {
			first--
		}
	}
	return first, last
}

// resolveConflicts builds the slots of one day and the conflict count of
// every entry. A count starts at 1 and is only ever raised: in each slot an
// entry touches, same-group entries take the slot's size minus the number of
// other groups present.
func resolveConflicts(m *grid.Model, entries []entry) ([]slot, []int) {
	slots := make([]slot, m.SlotsPerDay())
	counts := make([]int, len(entries))
	for i := range counts {
		counts[i] = 1
	}

	for i, e := range entries {
		first, last := slotRange(m, e)
		for s := max(first, 0); s < last && s < len(slots); s++ {
			sl := &slots[s]
			sl.add(i, e.appt.Group)

			candidate := len(sl.entries) - (len(sl.groups) - 1)
			for _, j := range sl.entries {
				if entries[j].appt.Group == e.appt.Group && candidate > counts[j] {
					counts[j] = candidate
				}
			}
		}
	}

	return slots, counts
}
