// Package recurrence encodes weekly availability patterns as iCalendar-style
// rule strings (FREQ=WEEKLY;BYDAY=MO,WE,FR) so calendar clients that speak
// RRULE can consume them directly.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidDayIndex = errors.New("day index out of range")

// Day codes indexed 0=Sunday..6=Saturday, matching time.Weekday.
var dayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// EncodeWeekly builds a weekly rule string from a set of day indices.
// The set must be non-empty and every index must be in [0,6].
func EncodeWeekly(days []int) (string, error) {
	if len(days) == 0 {
		return "", fmt.Errorf("%w: empty day set", ErrInvalidDayIndex)
	}

	seen := [7]bool{}
	for _, d := range days {
		if d < 0 || d > 6 {
			return "", fmt.Errorf("%w: %d", ErrInvalidDayIndex, d)
		}
		seen[d] = true
	}

	codes := make([]string, 0, 7)
	for i, ok := range seen {
		if ok {
			codes = append(codes, dayCodes[i])
		}
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ","), nil
}

// DecodeWeekly parses a weekly rule string back into sorted day indices.
// Anything that is not a well-formed weekly rule (a different frequency, a
// malformed part, an unknown day code) yields (nil, false); callers treat
// that as "no recurrence", never as a failure.
func DecodeWeekly(rule string) ([]int, bool) {
	var freq, byday string
	for _, part := range strings.Split(rule, ";") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			return nil, false
		}
		switch strings.ToUpper(strings.TrimSpace(k)) {
		case "FREQ":
			freq = strings.ToUpper(strings.TrimSpace(v))
		case "BYDAY":
			byday = strings.ToUpper(strings.TrimSpace(v))
		default:
			// Tokens like INTERVAL or UNTIL describe patterns this system
			// does not materialize.
			return nil, false
		}
	}

	if freq != "WEEKLY" || byday == "" {
		return nil, false
	}

	seen := [7]bool{}
	for _, code := range strings.Split(byday, ",") {
		idx := -1
		for i, c := range dayCodes {
			if c == strings.TrimSpace(code) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		seen[idx] = true
	}

	var days []int
	for i, ok := range seen {
		if ok {
			days = append(days, i)
		}
	}
	sort.Ints(days)
	return days, true
}
