package util

import (
	"fmt"
	"time"
)

const (
	DateLayout         = "2006-01-02"
	ClockLayout        = "15:04"
	ClockSecondsLayout = "15:04:05"
)

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseClock parses HH:MM or HH:MM:SS and returns the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	for _, layout := range []string{ClockLayout, ClockSecondsLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("time %q: want HH:MM or HH:MM:SS", s)
}

// ParseBirthDateTime combines a date and a clock time into one UTC civil
// timestamp. No timezone conversion is applied.
func ParseBirthDateTime(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(offset), nil
}
