package schoolyear

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "autumn belongs to the current year",
			now:  time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "spring belongs to the previous year",
			now:  time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultStart(tt.now, time.September))
		})
	}
}

func TestWeekNumber(t *testing.T) {
	// 2024-09-02 is a Monday
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, WeekNumber(start, start))
	assert.Equal(t, 1, WeekNumber(start, time.Date(2024, 9, 8, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, WeekNumber(start, time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, WeekNumber(start, time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)))
}

func TestWeekNumber_StartMidWeek(t *testing.T) {
	// Sunday start still maps its Monday-aligned week to 1
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, WeekNumber(start, time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, WeekNumber(start, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)))
}

func TestWeekRange_RoundTrip(t *testing.T) {
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	for week := MinWeek; week <= MaxWeek; week++ {
		from, to := WeekRange(start, week)
		assert.Equal(t, week, WeekNumber(start, from))
		assert.Equal(t, week, WeekNumber(start, to.Add(-time.Minute)))
		assert.Equal(t, time.Monday, from.Weekday())
	}
}

func TestInRange(t *testing.T) {
	assert.False(t, InRange(0))
	assert.True(t, InRange(1))
	assert.True(t, InRange(62))
	assert.False(t, InRange(70))
}

func TestDays(t *testing.T) {
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	days := Days(start, 2)

	assert.Len(t, days, 7)
	assert.Equal(t, time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC), days[0])
	assert.Equal(t, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), days[6])
}
