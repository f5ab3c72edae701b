// Package timeparse normalizes partial user-entered date/time strings
// into absolute instants in the bot's operating timezone.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidFormat is returned when the input does not match the
// MM-DD HH:mm pattern or names an impossible date or time.
var ErrInvalidFormat = errors.New("invalid date/time format")

// Layout is the canonical local representation of an interview time.
const Layout = "2006-01-02 15:04"

var inputPattern = regexp.MustCompile(`^\d{2}-\d{2} \d{2}:\d{2}$`)

// Normalize converts a partial "MM-DD HH:mm" string into an absolute
// instant. The current year in loc is assumed; if the resulting moment
// has already passed relative to now, it is moved forward by exactly
// one year. A candidate equal to now (to the minute) counts as not
// passed, so it is never rolled over.
func Normalize(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if !inputPattern.MatchString(input) {
		return time.Time{}, fmt.Errorf("%w: %q (expected MM-DD HH:mm)", ErrInvalidFormat, input)
	}

	local := now.In(loc)
	candidate, err := time.ParseInLocation(Layout, fmt.Sprintf("%04d-%s", local.Year(), input), loc)
	if err != nil {
		// Matched the pattern but names an impossible moment,
		// e.g. month 13 or hour 25.
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}

	if candidate.Before(now.Truncate(time.Minute)) {
		candidate = candidate.AddDate(1, 0, 0)
	}

	return candidate, nil
}

// FormatLocal renders an instant in the operating timezone using the
// canonical layout. All user-visible times go through this function so
// stored and displayed values never drift.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}
