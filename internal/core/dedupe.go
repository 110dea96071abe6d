package core

import "sort"

// Dedupe merges appointments that share a DedupeKey (the iCal UID). The first
// occurrence is kept; later ones only add their calendar to Calendars.
func Dedupe(appts []Appointment) []Appointment {
	seen := make(map[string]int)
	var result []Appointment

	for _, a := range appts {
		if a.DedupeKey == "" {
			result = append(result, a)
			continue
		}

		resp := CalendarResponse{Calendar: a.Calendar, Status: a.Status, URL: a.URL}
		if idx, ok := seen[a.DedupeKey]; ok {
			result[idx].Calendars = append(result[idx].Calendars, resp)
			continue
		}
		a.Calendars = []CalendarResponse{resp}
		seen[a.DedupeKey] = len(result)
		result = append(result, a)
	}

	return result
}

// SortByStart orders appointments by start time, keeping the relative order
// of appointments that start together.
func SortByStart(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Start.Before(appts[j].Start)
	})
}
