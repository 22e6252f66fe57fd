package classtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestedDatesSingleDay(t *testing.T) {
	// 2024-01-09 is a Tuesday.
	from := time.Date(2024, time.January, 9, 15, 30, 0, 0, time.UTC)

	dates := SuggestedDates([]Weekday{Wednesday}, from)
	require.Len(t, dates, 5)
	for i, date := range dates {
		assert.Equal(t, Wednesday, WeekdayOf(date))
		assert.False(t, date.Before(from.AddDate(0, 0, -1)))
		if i > 0 {
			assert.True(t, date.After(dates[i-1]))
			assert.Equal(t, 7*24*time.Hour, date.Sub(dates[i-1]))
		}
	}
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestSuggestedDatesIncludesStartDay(t *testing.T) {
	from := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)

	dates := SuggestedDates([]Weekday{Tuesday, Thursday}, from)
	require.Len(t, dates, 5)
	assert.Equal(t, from, dates[0])
	assert.Equal(t, Thursday, WeekdayOf(dates[1]))
	assert.Equal(t, Tuesday, WeekdayOf(dates[2]))
}

func TestSuggestedDatesEmptySet(t *testing.T) {
	from := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, SuggestedDates(nil, from))
	assert.Empty(t, SuggestedDates([]Weekday{Weekday(42)}, from))
}

func TestSuggestedDatesEveryDay(t *testing.T) {
	from := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
	all := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

	dates := SuggestedDates(all, from)
	require.Len(t, dates, 5)
	for i, date := range dates {
		assert.Equal(t, from.AddDate(0, 0, i), date)
	}
}
