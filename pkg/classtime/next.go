package classtime

import (
	"time"

	"go.uber.org/zap"
)

// Entry is one recurring weekly timetable slot as seen by the resolver.
// Start and end times are in the instructor's timezone.
type Entry struct {
	ID        string
	Days      []Weekday
	StartTime string
	EndTime   string
	Timezone  string
	Active    bool
}

// NextSession is the nearest upcoming occurrence of a weekly timetable,
// rendered in the viewer's timezone.
type NextSession struct {
	EntryID      string  `json:"entry_id"`
	Day          Weekday `json:"day"`
	DayName      string  `json:"day_name"`
	DaysAway     int     `json:"days_away"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	DifferentDay bool    `json:"is_different_day"`
}

// NextSession finds the single nearest upcoming occurrence across all
// active entries and their configured days, relative to now. It returns
// false when no active entry has any day configured.
//
// An occurrence on today's weekday whose converted start time is at or
// before now counts as next week (daysAway 7, not 0). Ties on daysAway go
// to the first candidate encountered: entries in input order, days in each
// entry's own order. Entries whose times fail to parse are skipped so one
// bad record does not sink the whole resolution.
func (c *Converter) NextSession(entries []Entry, now time.Time) (*NextSession, bool) {
	localNow := now.In(c.target)
	today := WeekdayOf(localNow)
	nowMinutes := localNow.Hour()*60 + localNow.Minute()

	var best *NextSession
	for _, entry := range entries {
		if !entry.Active {
			continue
		}
		for _, day := range entry.Days {
			start, err := c.Convert(entry.StartTime, entry.Timezone, day)
			if err != nil {
				c.logger.Warn("skipping unparsable timetable entry",
					zap.String("entry_id", entry.ID),
					zap.String("start_time", entry.StartTime),
					zap.Error(err))
				continue
			}

			daysAway := (int(start.LocalDay) - int(today) + 7) % 7
			if daysAway == 0 {
				startTod, err := ParseTimeOfDay(start.LocalTime)
				if err != nil || startTod.MinutesFromMidnight() <= nowMinutes {
					daysAway = 7
				}
			}

			if best != nil && daysAway >= best.DaysAway {
				continue
			}

			candidate := &NextSession{
				EntryID:      entry.ID,
				Day:          start.LocalDay,
				DayName:      start.LocalDayName,
				DaysAway:     daysAway,
				StartTime:    start.LocalTime,
				DifferentDay: start.DifferentDay,
			}
			if end, err := c.Convert(entry.EndTime, entry.Timezone, day); err == nil {
				candidate.EndTime = end.LocalTime
			} else {
				c.logger.Warn("skipping unparsable entry end time",
					zap.String("entry_id", entry.ID),
					zap.String("end_time", entry.EndTime),
					zap.Error(err))
			}
			best = candidate
		}
	}
	return best, best != nil
}
