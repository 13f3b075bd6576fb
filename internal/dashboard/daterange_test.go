package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadops/lead-dashboard/internal/dashboard"
)

func TestInRange(t *testing.T) {
	tests := map[string]struct {
		date, from, to string
		want           bool
	}{
		"NoBounds":                {"2025-06-15", "", "", true},
		"NoBoundsUnparsable":      {"not a date", "", "", true},
		"NoBoundsEmpty":           {"", "", "", true},
		"InclusiveSameDay":        {"2025-06-15", "2025-06-15", "2025-06-15", true},
		"BeforeFrom":              {"2025-06-14", "2025-06-15", "", false},
		"AfterFrom":               {"2025-06-16", "2025-06-15", "", true},
		"AfterTo":                 {"2025-06-16", "", "2025-06-15", false},
		"TimeOfDayStripped":       {"2025-06-15T23:59:59Z", "2025-06-15", "2025-06-15", true},
		"UnparsableIncluded":      {"garbage", "2025-06-15", "2025-06-16", true},
		"InsideRange":             {"2025-06-20", "2025-06-01", "2025-06-30", true},
		"UnparsableBoundIgnored":  {"2025-06-20", "whenever", "2025-06-30", true},
		"SlashLayout":             {"2025/06/10", "2025-06-11", "", false},
		"DateTimeWithSpace":       {"2025-06-15 08:00:00", "2025-06-15", "2025-06-15", true},
		"FromBoundWithTimeOfDay":  {"2025-06-15", "2025-06-15T18:00:00Z", "", true},
		"WhitespaceBoundsIgnored": {"2025-01-01", "  ", " ", true},
		"UnpaddedUSDate":          {"6/5/2025", "2025-06-06", "", false},
		"UnpaddedUSDateInside":    {"6/5/2025", "2025-06-05", "2025-06-05", true},
		"PaddedUSDate":            {"06/05/2025", "2025-06-06", "", false},
		"UnpaddedISODate":         {"2025-6-5", "", "2025-06-04", false},
		"UnpaddedSlashISODate":    {"2025/6/5", "2025-06-05", "2025-06-05", true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, dashboard.InRange(tc.date, tc.from, tc.to))
		})
	}
}

func TestInRangeIn_UsesLocationForDayBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:30 UTC on the 14th is already the 15th at UTC+3.
	assert.True(t, dashboard.InRangeIn("2025-06-14T22:30:00Z", "2025-06-15", "", loc))
	assert.False(t, dashboard.InRange("2025-06-14T22:30:00Z", "2025-06-15", ""))
}

func TestParseDay(t *testing.T) {
	day, ok := dashboard.ParseDay("2025-06-15T13:45:00Z", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), day)

	for _, value := range []string{"6/5/2025", "06/05/2025", "2025-6-5", "2025/6/05"} {
		day, ok = dashboard.ParseDay(value, time.UTC)
		require.True(t, ok, value)
		assert.Equal(t, time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC), day, value)
	}

	_, ok = dashboard.ParseDay("10 days ago", time.UTC)
	assert.False(t, ok)
}
