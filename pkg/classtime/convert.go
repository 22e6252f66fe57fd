package classtime

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// anchorMonday is the fixed reference week used for conversions. Anchoring
// to one known week keeps conversions independent of the calendar date, at
// the cost of not tracking DST transitions that fall between the anchor
// week and a real future occurrence. That approximation is intentional and
// matches the behaviour callers rely on.
var anchorMonday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ConvertedTime describes a class slot re-rendered in the viewer's timezone.
type ConvertedTime struct {
	LocalTime      string  `json:"local_time"`
	LocalDay       Weekday `json:"local_day"`
	LocalDayName   string  `json:"local_day_name"`
	DifferentDay   bool    `json:"is_different_day"`
	TimeDifference string  `json:"time_difference"`
}

// Converter converts class times into a fixed target timezone. The zero
// target is the system's local timezone. Converter is stateless beyond its
// configuration and safe for concurrent use.
type Converter struct {
	target *time.Location
	logger *zap.Logger
}

// NewConverter builds a Converter for the given IANA target timezone.
// An empty name selects the system's local timezone; an unrecognized name
// falls back to UTC with a warning rather than failing, so a bad viewer
// timezone degrades the display instead of breaking it.
func NewConverter(targetTZ string, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Converter{logger: logger}
	c.target = c.loadLocation(targetTZ, time.Local)
	return c
}

// Target returns the converter's target location.
func (c *Converter) Target() *time.Location {
	return c.target
}

func (c *Converter) loadLocation(name string, fallback *time.Location) *time.Location {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		c.logger.Warn("unrecognized timezone, falling back to UTC",
			zap.String("timezone", name),
			zap.Error(err))
		return time.UTC
	}
	return loc
}

// Convert takes a class start time anchored to day in sourceTZ and renders
// it in the converter's target timezone. startTime accepts the same forms
// as ParseTimeOfDay.
func (c *Converter) Convert(startTime, sourceTZ string, day Weekday) (ConvertedTime, error) {
	if !day.Valid() {
		return ConvertedTime{}, fmt.Errorf("invalid weekday %d", int(day))
	}
	tod, err := ParseTimeOfDay(startTime)
	if err != nil {
		return ConvertedTime{}, err
	}

	source := c.loadLocation(sourceTZ, time.UTC)
	anchor := time.Date(
		anchorMonday.Year(), anchorMonday.Month(), anchorMonday.Day()+int(day),
		tod.Hour, tod.Minute, 0, 0, source,
	)
	local := anchor.In(c.target)

	localDay := WeekdayOf(local)
	converted := TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}

	_, sourceOffset := anchor.Zone()
	_, targetOffset := local.Zone()

	return ConvertedTime{
		LocalTime:      converted.Clock12(),
		LocalDay:       localDay,
		LocalDayName:   localDay.String(),
		DifferentDay:   localDay != day,
		TimeDifference: formatOffset(targetOffset - sourceOffset),
	}, nil
}

// formatOffset renders a zone offset delta in seconds as "+3h30m" or "-5h".
func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("%s%dh", sign, hours)
	}
	return fmt.Sprintf("%s%dh%dm", sign, hours, minutes)
}
