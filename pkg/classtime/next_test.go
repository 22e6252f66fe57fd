package classtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tuesdayNoonUTC is a fixed clock: Tuesday 2024-01-09 12:00 UTC.
var tuesdayNoonUTC = time.Date(2024, time.January, 9, 12, 0, 0, 0, time.UTC)

func TestNextSessionPicksNearestDay(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "friday", Days: []Weekday{Friday}, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: true},
		{ID: "thursday", Days: []Weekday{Thursday}, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, "thursday", next.EntryID)
	assert.Equal(t, Thursday, next.Day)
	assert.Equal(t, 2, next.DaysAway)
	assert.Equal(t, "9:00 AM", next.StartTime)
	assert.Equal(t, "10:00 AM", next.EndTime)
}

func TestNextSessionAlreadyPassedTodayCountsAsNextWeek(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "today", Days: []Weekday{Tuesday}, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, 7, next.DaysAway)
}

func TestNextSessionLaterTodayStaysToday(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "today", Days: []Weekday{Tuesday}, StartTime: "18:00", EndTime: "19:00", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, 0, next.DaysAway)
	assert.Equal(t, "6:00 PM", next.StartTime)
}

func TestNextSessionEmptyAndInactive(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	next, ok := conv.NextSession(nil, tuesdayNoonUTC)
	assert.False(t, ok)
	assert.Nil(t, next)

	next, ok = conv.NextSession([]Entry{
		{ID: "off", Days: []Weekday{Wednesday}, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: false},
		{ID: "no-days", StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: true},
	}, tuesdayNoonUTC)
	assert.False(t, ok)
	assert.Nil(t, next)
}

func TestNextSessionTieBreakFirstSeen(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "first", Days: []Weekday{Friday}, StartTime: "15:00", EndTime: "16:00", Timezone: "UTC", Active: true},
		{ID: "second", Days: []Weekday{Friday}, StartTime: "08:00", EndTime: "09:00", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, "first", next.EntryID)
}

func TestNextSessionSkipsUnparsableEntry(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "broken", Days: []Weekday{Wednesday}, StartTime: "whenever", EndTime: "later", Timezone: "UTC", Active: true},
		{ID: "good", Days: []Weekday{Friday}, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, "good", next.EntryID)
}

func TestNextSessionDubaiClassForNewYorkViewer(t *testing.T) {
	conv := newTestConverter(t, "America/New_York")

	entries := []Entry{
		{ID: "dubai", Days: []Weekday{Wednesday}, StartTime: "09:00", EndTime: "10:00", Timezone: "Asia/Dubai", Active: true},
	}

	// Tuesday 08:00 in New York (2024-01-09 is a Tuesday).
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, time.January, 9, 8, 0, 0, 0, nyc)

	next, ok := conv.NextSession(entries, now)
	require.True(t, ok)
	// 9:00 Wednesday in Dubai is midnight Wednesday in New York, so the
	// next occurrence is tomorrow from the viewer's Tuesday morning.
	assert.Equal(t, Wednesday, next.Day)
	assert.Equal(t, 1, next.DaysAway)
	assert.Equal(t, "12:00 AM", next.StartTime)
	assert.Equal(t, "1:00 AM", next.EndTime)
	assert.False(t, next.DifferentDay)
}

func TestNextSessionMalformedEndTimeStillResolves(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	entries := []Entry{
		{ID: "broken-end", Days: []Weekday{Thursday}, StartTime: "09:00", EndTime: "27:99", Timezone: "UTC", Active: true},
	}

	next, ok := conv.NextSession(entries, tuesdayNoonUTC)
	require.True(t, ok)
	assert.Equal(t, "broken-end", next.EntryID)
	assert.Equal(t, "9:00 AM", next.StartTime)
	assert.Empty(t, next.EndTime)
}
