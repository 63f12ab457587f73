// SPDX-License-Identifier: MIT

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBirthdayWithin(t *testing.T) {
	today := date(2026, time.August, 24)

	tests := []struct {
		name string
		dob  time.Time
		want bool
	}{
		{"today", date(1990, time.August, 24), true},
		{"tomorrow", date(1985, time.August, 25), true},
		{"last day of window", date(2000, time.August, 31), true},
		{"one day past window", date(2000, time.September, 1), false},
		{"yesterday", date(1990, time.August, 23), false},
		{"months away", date(1990, time.December, 24), false},
		{"already passed this year", date(1990, time.January, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BirthdayWithin(tt.dob, today, 7))
		})
	}
}

func TestBirthdayWithinIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, time.August, 24, 23, 59, 0, 0, time.UTC)
	dob := time.Date(1990, time.August, 24, 0, 0, 0, 0, time.UTC)
	assert.True(t, BirthdayWithin(dob, today, 7))
}

// The window is evaluated in the current year only, as the original service
// did: a late-December lookup does not see early-January birthdays.
func TestBirthdayWithinDoesNotWrapYears(t *testing.T) {
	today := date(2026, time.December, 29)
	assert.False(t, BirthdayWithin(date(1990, time.January, 2), today, 7))
	assert.True(t, BirthdayWithin(date(1990, time.December, 31), today, 7))
}
