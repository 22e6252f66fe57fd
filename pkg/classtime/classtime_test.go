package classtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  TimeOfDay
	}{
		{"24h morning", "09:00", TimeOfDay{9, 0}},
		{"24h single digit hour", "9:05", TimeOfDay{9, 5}},
		{"24h afternoon", "14:30", TimeOfDay{14, 30}},
		{"12h pm", "2:30 PM", TimeOfDay{14, 30}},
		{"12h am", "9:15 AM", TimeOfDay{9, 15}},
		{"noon", "12:00 PM", TimeOfDay{12, 0}},
		{"midnight", "12:00 AM", TimeOfDay{0, 0}},
		{"lowercase marker", "2:30 pm", TimeOfDay{14, 30}},
		{"whitespace", "  11:45 PM ", TimeOfDay{23, 45}},
		{"no space before marker", "7:00PM", TimeOfDay{19, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeOfDayRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "noon", "14", "14:30:00", "aa:bb", "25:00", "12:60", "-1:30"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimeOfDay(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTime)
		})
	}
}

func TestClock12RoundTrip(t *testing.T) {
	cases := []TimeOfDay{
		{0, 0}, {0, 30}, {9, 15}, {11, 59}, {12, 0}, {12, 30}, {14, 30}, {23, 45},
	}
	for _, tod := range cases {
		t.Run(tod.Clock24(), func(t *testing.T) {
			parsed, err := ParseTimeOfDay(tod.Clock12())
			require.NoError(t, err)
			assert.Equal(t, tod, parsed)
		})
	}
}

func TestClock12Formatting(t *testing.T) {
	assert.Equal(t, "2:30 PM", TimeOfDay{14, 30}.Clock12())
	assert.Equal(t, "12:00 AM", TimeOfDay{0, 0}.Clock12())
	assert.Equal(t, "12:15 PM", TimeOfDay{12, 15}.Clock12())
	assert.Equal(t, "9:05 AM", TimeOfDay{9, 5}.Clock12())
}

func TestParseWeekday(t *testing.T) {
	for _, input := range []string{"WED", "wed", "Wednesday", " wednesday "} {
		day, err := ParseWeekday(input)
		require.NoError(t, err)
		assert.Equal(t, Wednesday, day)
	}
	_, err := ParseWeekday("someday")
	assert.Error(t, err)
}

func TestWeekdayOfRemapsSundayZero(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-07 a Sunday.
	monday := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, time.January, 7, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Monday, WeekdayOf(monday))
	assert.Equal(t, Sunday, WeekdayOf(sunday))
	assert.Equal(t, time.Monday, Monday.GoWeekday())
	assert.Equal(t, time.Sunday, Sunday.GoWeekday())
}
