package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTournamentEndDate(t *testing.T) {
	cases := []struct {
		start, end string
	}{
		{"2025-01-01", "2025-04-01"},
		{"2025-11-30", "2026-02-28"},
		{"2023-11-30", "2024-02-29"},
		{"2025-10-15", "2026-01-15"},
		{"2025-03-31", "2025-06-30"},
	}
	for _, tc := range cases {
		start, _ := time.Parse(time.DateOnly, tc.start)
		want, _ := time.Parse(time.DateOnly, tc.end)

		tournament := Tournament{StartDate: start}
		assert.True(t, want.Equal(tournament.EndDate()), "start %s: got %s", tc.start, tournament.EndDate())
	}
}

func TestAddMonthsKeepsClock(t *testing.T) {
	start := time.Date(2025, 1, 31, 13, 45, 10, 0, time.UTC)
	got := AddMonths(start, 1)
	assert.Equal(t, time.Date(2025, 2, 28, 13, 45, 10, 0, time.UTC), got)
}

func TestRoleForPosition(t *testing.T) {
	ptr := func(s string) *string { return &s }

	assert.Equal(t, RoleAdmin, RoleForPosition(ptr("Admin")))
	assert.Equal(t, RoleAdmin, RoleForPosition(ptr("aDmIn")))
	assert.Equal(t, RoleUser, RoleForPosition(ptr("Admin in Development")))
	assert.Equal(t, RoleUser, RoleForPosition(ptr("player")))
	assert.Equal(t, RoleUser, RoleForPosition(nil))
}
