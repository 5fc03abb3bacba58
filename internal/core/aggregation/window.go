package aggregation

import (
	"fmt"
	"time"
)

// Day is the length of one calendar day in window arithmetic.
const Day = 24 * time.Hour

// ParseWindowSize parses a window duration string.
// Supports Go duration syntax (e.g. "36h", "-2h") plus "Xd" for days.
// Negative windows are valid: they produce an inverted range that is queried in
// descending key order.
func ParseWindowSize(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("window must not be empty")
	}

	// Handle "d" suffix (days), not supported by time.ParseDuration.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid window %q: %w", s, err)
		}
		return time.Duration(days) * Day, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", s, err)
	}
	return d, nil
}

// WindowDays returns the whole number of days in d, rounded towards negative
// infinity, which is how calendar-date window arithmetic treats sub-day remainders.
func WindowDays(d time.Duration) int {
	days := int(d / Day)
	if d%Day < 0 {
		days--
	}
	return days
}
