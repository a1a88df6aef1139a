package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTime = errors.New("invalid time of day")

// MinutesOfDay parses "HH:MM" into minutes since midnight (0..1439).
func MinutesOfDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTime, s)
	}
	return h*60 + m, nil
}

// MustMinutesOfDay is MinutesOfDay for values that already passed Sanitize.
func MustMinutesOfDay(s string) int {
	m, err := MinutesOfDay(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FormatMinutes returns HH:MM for minutes since midnight (00:00..23:59).
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	mins %= 24 * 60
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// ParseWindow parses an awake window such as "08:00-23:00" or "08:00–23:00".
func ParseWindow(s string) (wake, sleep int, err error) {
	s = strings.TrimSpace(s)
	sep := "–"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected HH:MM-HH:MM, got %q", ErrInvalidTime, s)
	}
	if wake, err = MinutesOfDay(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("wake: %w", err)
	}
	if sleep, err = MinutesOfDay(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("sleep: %w", err)
	}
	return wake, sleep, nil
}

// ShiftTime moves an "HH:MM" value by delta minutes, wrapping around
// midnight. Malformed input is returned unchanged.
func ShiftTime(s string, delta int) string {
	m, err := MinutesOfDay(s)
	if err != nil {
		return s
	}
	const day = 24 * 60
	return FormatMinutes(((m+delta)%day + day) % day)
}

// IsWithinWindow reports whether a minute of day falls in the awake window.
// Both ends are inclusive. wake == sleep means the whole day; wake > sleep
// means the window wraps midnight.
func IsWithinWindow(m, wake, sleep int) bool {
	if wake == sleep {
		return true
	}
	if wake < sleep {
		return m >= wake && m <= sleep
	}
	return m >= wake || m <= sleep
}

// ProjectIntoWindow moves candidate to the nearest instant inside the awake
// window. In-window candidates are truncated to the minute and pushed one
// minute forward if that lands at or before now. Out-of-window candidates
// advance to the next wake boundary.
func ProjectIntoWindow(candidate, now time.Time, wake, sleep int) time.Time {
	m := minuteOf(candidate)
	if IsWithinWindow(m, wake, sleep) {
		t := localAt(candidate, m)
		if !t.After(now) {
			t = t.Add(time.Minute)
		}
		return t
	}

	wakeToday := localAt(candidate, wake)
	if wake < sleep {
		if m < wake {
			return wakeToday
		}
		return localAt(nextDay(candidate), wake)
	}
	// wrapping window: outside means sleep < m < wake
	if wakeToday.After(candidate) {
		return wakeToday
	}
	return localAt(nextDay(candidate), wake)
}

func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// localAt builds the instant on base's calendar date at the given minute of day.
func localAt(base time.Time, mins int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), mins/60, mins%60, 0, 0, base.Location())
}

func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}
