package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

func TestNormalizeRelativeKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"tomorrow", "tomorrow", time.Date(2024, time.July, 11, 0, 0, 0, 0, time.UTC)},
		{"day after tomorrow", "day after tomorrow", time.Date(2024, time.July, 12, 0, 0, 0, 0, time.UTC)},
		{"embedded tomorrow", "sometime tomorrow please", time.Date(2024, time.July, 11, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := Normalize(tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slot.Time())
		})
	}
}

func TestNormalizeRelativeOffsets(t *testing.T) {
	refAt := time.Date(2024, time.July, 10, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"3 days ago", time.Date(2024, time.July, 7, 14, 0, 0, 0, time.UTC)},
		{"2 days from now", time.Date(2024, time.July, 12, 14, 0, 0, 0, time.UTC)},
		{"1 week from now", time.Date(2024, time.July, 17, 14, 0, 0, 0, time.UTC)},
		{"90 minutes from now", time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC)},
		// month and year are fixed 30- and 365-day offsets, not calendar math
		{"1 month from now", time.Date(2024, time.August, 9, 14, 0, 0, 0, time.UTC)},
		{"1 year ago", time.Date(2023, time.July, 11, 14, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			slot, err := Normalize(tt.input, refAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slot.Time())
		})
	}
}

func TestNormalizeAbsolute(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"11 July at 9 AM", time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC)},
		{"11th July at 9 AM", time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC)},
		{"02 July at 09 AM", time.Date(2024, time.July, 2, 9, 0, 0, 0, time.UTC)},
		{"12 December at 2 PM", time.Date(2024, time.December, 12, 14, 0, 0, 0, time.UTC)},
		{"11 July at 9:30 AM", time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC)},
		{"1st January at 12 PM", time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			slot, err := Normalize(tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slot.Time())
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	inputs := []string{
		"",
		"next Tuesday",
		"July 11 at 9 AM",
		"11 July",
		"11 Juy at 9 AM",
		"9 AM",
		"soonish",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input, ref)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)
		})
	}
}

func TestNormalizeTruncatesToHour(t *testing.T) {
	refAt := time.Date(2024, time.July, 10, 9, 45, 30, 0, time.UTC)
	slot, err := Normalize("tomorrow", refAt)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC), slot.Time())
}

func TestCanonicalRoundTrip(t *testing.T) {
	orig := At(time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "11 July at 09 AM", orig.String())

	parsed, err := Parse(orig.String(), ref)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(orig), "round-trip changed the slot: %s vs %s", parsed, orig)
}

func TestConflictsWith(t *testing.T) {
	base := At(time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC))
	tests := []struct {
		name  string
		other time.Time
		want  bool
	}{
		{"same slot", time.Date(2024, time.July, 11, 9, 0, 0, 0, time.UTC), true},
		{"one hour later", time.Date(2024, time.July, 11, 10, 0, 0, 0, time.UTC), false},
		{"one hour earlier", time.Date(2024, time.July, 11, 8, 0, 0, 0, time.UTC), false},
		{"next day", time.Date(2024, time.July, 12, 9, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.ConflictsWith(At(tt.other)))
		})
	}
}

func TestSlotStringZeroPads(t *testing.T) {
	slot := At(time.Date(2024, time.July, 2, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, "02 July at 02 PM", slot.String())
}
