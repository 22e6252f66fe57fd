// Package classtime resolves recurring weekly class times across timezones:
// parsing time-of-day strings, converting a class slot from the instructor's
// timezone into a viewer's timezone, and picking the nearest upcoming
// occurrence of a weekly timetable.
package classtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime reports a time-of-day string that could not be parsed.
var ErrMalformedTime = errors.New("malformed time string")

// Weekday is a day of the week with Monday = 0 through Sunday = 6.
// The remap from Go's Sunday = 0 convention happens only in WeekdayOf.
type Weekday int

// Days of the week, Monday first.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayAliases = map[string]Weekday{
	"MON": Monday, "MONDAY": Monday,
	"TUE": Tuesday, "TUESDAY": Tuesday,
	"WED": Wednesday, "WEDNESDAY": Wednesday,
	"THU": Thursday, "THURSDAY": Thursday,
	"FRI": Friday, "FRIDAY": Friday,
	"SAT": Saturday, "SATURDAY": Saturday,
	"SUN": Sunday, "SUNDAY": Sunday,
}

// String returns the full English day name.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Valid reports whether d is within Monday..Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// ParseWeekday accepts short ("WED") and full ("Wednesday") day names,
// case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	day, ok := weekdayAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return day, nil
}

// WeekdayOf converts t's platform weekday (Sunday = 0) to the Monday = 0
// convention used throughout this package.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// GoWeekday returns the time.Weekday equivalent of d.
func (d Weekday) GoWeekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// TimeOfDay is a wall-clock time with Hour in 0..23 and Minute in 0..59.
// Values only come out of ParseTimeOfDay, which rejects out-of-range input.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses 24-hour ("14:30", "9:05") and 12-hour
// ("2:30 PM", "12:00 am") time strings. The AM/PM marker is matched
// case-insensitively; surrounding whitespace is ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)

	var pm, twelveHour bool
	switch {
	case strings.HasSuffix(upper, "PM"):
		pm, twelveHour = true, true
		trimmed = strings.TrimSpace(trimmed[:len(trimmed)-2])
	case strings.HasSuffix(upper, "AM"):
		twelveHour = true
		trimmed = strings.TrimSpace(trimmed[:len(trimmed)-2])
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	if twelveHour {
		if pm && hour != 12 {
			hour += 12
		}
		if !pm && hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Clock12 formats the time in 12-hour form, e.g. "2:30 PM".
func (t TimeOfDay) Clock12() string {
	marker := "AM"
	hour := t.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		marker = "PM"
	case hour > 12:
		hour -= 12
		marker = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, marker)
}

// Clock24 formats the time in 24-hour form, e.g. "14:30".
func (t TimeOfDay) Clock24() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesFromMidnight returns the time as minutes since 00:00.
func (t TimeOfDay) MinutesFromMidnight() int {
	return t.Hour*60 + t.Minute
}
