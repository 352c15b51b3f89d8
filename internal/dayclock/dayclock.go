package dayclock

import (
	"fmt"
	"strconv"
	"time"
)

// NightCutoffHour is the early-morning boundary: clock hours below it
// belong, for ordering purposes, to the evening of the previous
// conceptual day. A day runs 08:00–07:59 when sorting a day's logs.
const NightCutoffHour = 8

// DateKey formats t as the canonical ISO date key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockTime formats t as canonical 24-hour HH:MM.
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}

// MonthPrefix formats t as the YYYY-MM prefix shared by its date keys.
func MonthPrefix(t time.Time) string {
	return t.Format("2006-01")
}

// ParseDateKey parses a YYYY-MM-DD date key.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// YearOf returns the YYYY portion of a date key.
func YearOf(dateKey string) string {
	if len(dateKey) < 4 {
		return ""
	}
	return dateKey[:4]
}

// ParseClock parses a canonical HH:MM string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	hour, err = strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	minute, err = strconv.Atoi(s[3:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q (out of range)", s)
	}
	return hour, minute, nil
}

// HourOf returns the hour of a canonical HH:MM string. ok is false for
// malformed strings.
func HourOf(s string) (hour int, ok bool) {
	h, _, err := ParseClock(s)
	if err != nil {
		return 0, false
	}
	return h, true
}

// SortMinutes returns the minutes-since-conceptual-day-start used to
// order a day's logs: hours below NightCutoffHour count as 24–31, so a
// 01:00 night session sorts after a 23:00 evening one. Malformed times
// return -1 and sort first.
func SortMinutes(s string) int {
	h, m, err := ParseClock(s)
	if err != nil {
		return -1
	}
	if h < NightCutoffHour {
		h += 24
	}
	return h*60 + m
}

// DaysInclusive returns the number of calendar days in [start, end],
// both date keys, or 0 if either key is malformed or end precedes
// start.
func DaysInclusive(start, end string) int {
	from, err := ParseDateKey(start)
	if err != nil {
		return 0
	}
	to, err := ParseDateKey(end)
	if err != nil {
		return 0
	}
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// FormatDisplay renders a stored HH:MM clock for display in the given
// preference ("24h" or "12h"). Malformed input is returned unchanged.
func FormatDisplay(clock, format string) string {
	if format != "12h" {
		return clock
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return clock
	}
	t := time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}
