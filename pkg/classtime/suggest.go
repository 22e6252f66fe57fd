package classtime

import "time"

// suggestedDateCount is how many upcoming dates the scheduling helper
// offers when an admin books a one-off live session against a recurring
// class.
const suggestedDateCount = 5

// SuggestedDates walks forward day by day from the given date (inclusive)
// and collects the next five calendar dates whose weekday is in days. An
// empty day set yields an empty slice. Returned values are midnight in
// from's location, strictly increasing.
func SuggestedDates(days []Weekday, from time.Time) []time.Time {
	if len(days) == 0 {
		return nil
	}
	wanted := make(map[Weekday]bool, len(days))
	for _, d := range days {
		if d.Valid() {
			wanted[d] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	dates := make([]time.Time, 0, suggestedDateCount)
	cursor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for len(dates) < suggestedDateCount {
		if wanted[WeekdayOf(cursor)] {
			dates = append(dates, cursor)
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return dates
}
