package classtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConverter(t *testing.T, tz string) *Converter {
	t.Helper()
	return NewConverter(tz, zap.NewNop())
}

func TestConvertSameTimezoneIdentity(t *testing.T) {
	conv := newTestConverter(t, "Asia/Dubai")

	for day := Monday; day <= Sunday; day++ {
		got, err := conv.Convert("2:30 PM", "Asia/Dubai", day)
		require.NoError(t, err)
		assert.Equal(t, "2:30 PM", got.LocalTime)
		assert.Equal(t, day, got.LocalDay)
		assert.False(t, got.DifferentDay)
		assert.Equal(t, "+0h", got.TimeDifference)
	}
}

func TestConvertDayRollover(t *testing.T) {
	// Chicago is two hours behind Halifax in January; a late Wednesday
	// class lands on Thursday for a Halifax viewer.
	conv := newTestConverter(t, "America/Halifax")

	got, err := conv.Convert("11:30 PM", "America/Chicago", Wednesday)
	require.NoError(t, err)
	assert.Equal(t, "1:30 AM", got.LocalTime)
	assert.Equal(t, Thursday, got.LocalDay)
	assert.Equal(t, "Thursday", got.LocalDayName)
	assert.True(t, got.DifferentDay)
	assert.Equal(t, "+2h", got.TimeDifference)
}

func TestConvertBackwardRollover(t *testing.T) {
	// Early Monday in Tokyo is still Sunday in Los Angeles.
	conv := newTestConverter(t, "America/Los_Angeles")

	got, err := conv.Convert("08:00", "Asia/Tokyo", Monday)
	require.NoError(t, err)
	assert.Equal(t, Sunday, got.LocalDay)
	assert.True(t, got.DifferentDay)
	assert.Equal(t, "3:00 PM", got.LocalTime)
	assert.Equal(t, "-17h", got.TimeDifference)
}

func TestConvertHalfHourOffset(t *testing.T) {
	conv := newTestConverter(t, "Asia/Kolkata")

	got, err := conv.Convert("12:00", "UTC", Friday)
	require.NoError(t, err)
	assert.Equal(t, "5:30 PM", got.LocalTime)
	assert.Equal(t, Friday, got.LocalDay)
	assert.Equal(t, "+5h30m", got.TimeDifference)
}

func TestConvertRejectsBadInput(t *testing.T) {
	conv := newTestConverter(t, "UTC")

	_, err := conv.Convert("late", "UTC", Monday)
	assert.ErrorIs(t, err, ErrMalformedTime)

	_, err = conv.Convert("10:00", "UTC", Weekday(9))
	assert.Error(t, err)
}

func TestUnrecognizedTimezoneFallsBackToUTC(t *testing.T) {
	conv := NewConverter("Not/AZone", zap.NewNop())
	assert.Equal(t, time.UTC, conv.Target())

	// Unknown source behaves as UTC too, so UTC→unknown is an identity.
	got, err := conv.Convert("10:00", "Also/Bogus", Tuesday)
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", got.LocalTime)
	assert.Equal(t, Tuesday, got.LocalDay)
	assert.False(t, got.DifferentDay)
}

func TestConvertDubaiToNewYork(t *testing.T) {
	// A 9:00 Wednesday class in Dubai is midnight Wednesday for a New
	// York viewer at the anchor week's -9h offset.
	conv := newTestConverter(t, "America/New_York")

	got, err := conv.Convert("09:00", "Asia/Dubai", Wednesday)
	require.NoError(t, err)
	assert.Equal(t, "12:00 AM", got.LocalTime)
	assert.Equal(t, Wednesday, got.LocalDay)
	assert.False(t, got.DifferentDay)
	assert.Equal(t, "-9h", got.TimeDifference)
}
