// Package openhours decides whether a place is open at a given wall-clock
// time. All call sites (booking admission, listing display) go through IsOpen
// instead of re-implementing the minute math.
package openhours

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	allDayOpen  = "00:00"
	allDayClose = "23:59"
)

// Minutes converts a zero-padded "HH:MM" string to minutes since midnight.
func Minutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return h*60 + m, nil
}

// IsOpen reports whether current falls inside the operating window. Three
// window shapes are distinguished by value:
//
//   - 00:00–23:59 means open around the clock;
//   - close earlier than open means the window wraps midnight
//     (e.g. 21:00–02:00);
//   - otherwise a normal same-day window.
//
// Both boundaries are inclusive: current == open and current == close are
// open. A window with open == close (other than the 24h pair) is open for
// exactly that minute.
func IsOpen(current, open, close string) (bool, error) {
	if open == allDayOpen && close == allDayClose {
		return true, nil
	}

	cur, err := Minutes(current)
	if err != nil {
		return false, err
	}
	openMin, err := Minutes(open)
	if err != nil {
		return false, err
	}
	closeMin, err := Minutes(close)
	if err != nil {
		return false, err
	}

	if closeMin < openMin {
		return cur >= openMin || cur <= closeMin, nil
	}
	return cur >= openMin && cur <= closeMin, nil
}
