package schedule

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when an input matches neither the absolute
// "day month at hour AM/PM" form nor a recognized relative pattern.
var ErrInvalidDateFormat = errors.New("schedule: invalid date format")

var (
	ordinalRE  = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	relativeRE = regexp.MustCompile(`(?i)^(\d+)\s+(minute|hour|day|week|month|year)s?\s+(ago|from now)$`)
)

// Offsets for the coarse units. A month is approximated as 30 days and a year
// as 365; callers relying on calendar-accurate arithmetic should not use the
// relative forms.
var unitDurations = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// Normalize resolves a natural-language date expression against a reference
// time and returns the hour-precision slot it names.
//
// Recognized inputs, tried in order:
//   - "day after tomorrow", "tomorrow" (substring match, same clock time)
//   - "<N> <unit> ago|from now" with unit minute/hour/day/week/month/year
//   - the absolute "<day> <month> at <hour> AM/PM" form; the year is taken
//     from the reference time since the canonical form carries none
//
// Ordinal suffixes ("11th July") are stripped before matching.
func Normalize(input string, ref time.Time) (Slot, error) {
	text := strings.TrimSpace(ordinalRE.ReplaceAllString(input, "$1"))
	if text == "" {
		return Slot{}, ErrInvalidDateFormat
	}
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return At(ref.AddDate(0, 0, 2)), nil
	case strings.Contains(lower, "tomorrow"):
		return At(ref.AddDate(0, 0, 1)), nil
	}

	if m := relativeRE.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Slot{}, ErrInvalidDateFormat
		}
		offset := time.Duration(n) * unitDurations[strings.ToLower(m[2])]
		if strings.EqualFold(m[3], "ago") {
			offset = -offset
		}
		return At(ref.Add(offset)), nil
	}

	return parseAbsolute(text, ref)
}

// Parse resolves only the absolute canonical form against a reference time.
// Used to decode slots stored in their text representation.
func Parse(text string, ref time.Time) (Slot, error) {
	return parseAbsolute(strings.TrimSpace(text), ref)
}

// Parse layouts accept unpadded day and hour ("9 AM" as well as "09 AM") and
// an optional minutes component ("9:30 AM"), which truncates away; formatting
// always emits the zero-padded canonical Layout.
var parseLayouts = []string{
	"2 January at 3 PM",
	"2 January at 3:04 PM",
}

// parseAbsolute handles the canonical year-less form, e.g. "11 July at 9 AM".
func parseAbsolute(text string, ref time.Time) (Slot, error) {
	var parsed time.Time
	var err error
	for _, layout := range parseLayouts {
		parsed, err = time.Parse(layout, text)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Slot{}, ErrInvalidDateFormat
	}
	resolved := time.Date(ref.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), 0, 0, 0, ref.Location())
	return At(resolved), nil
}
