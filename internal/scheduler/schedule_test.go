package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 7 * * 1-5", true},
		{"0 */6 * * *", true},
		{"invalid", false},
		{"* * * *", false},
		{"60 * * * *", false},
		{"0 25 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetCronDescription(t *testing.T) {
	tests := []struct {
		schedule    string
		description string
	}{
		{"*/15 * * * *", "Every 15 minutes"},
		{"0 * * * *", "Every hour at :00"},
		{"0 7 * * 1-5", "Weekdays at 07:00"},
		{"5 4 * * *", "Custom schedule: 5 4 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			assert.Equal(t, tt.description, GetCronDescription(tt.schedule))
		})
	}
}

func TestGetNextRunTime(t *testing.T) {
	// Thursday
	from := time.Date(2024, 2, 15, 9, 30, 0, 0, time.UTC)

	next, err := GetNextRunTime("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), *next)

	next, err = GetNextRunTime("0 7 * * 1-5", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 16, 7, 0, 0, 0, time.UTC), *next)

	_, err = GetNextRunTime("invalid", from)
	assert.Error(t, err)
}
