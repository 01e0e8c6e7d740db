// Package timeparse normalizes the loose date and time tokens the booking API
// accepts from the agent layer into canonical calendar days and "HH:MM" clocks.
//
// All calendar math is UTC. A failed parse is reported as ok=false, never as
// an error: callers translate it into a user-correctable message.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// shorthand like "2pm", "2 pm", "2opm", "10am". The odd "o" separator shows up
// in voice-transcribed input.
var shorthandRe = regexp.MustCompile(`^(\d{1,2})\s*[o:]?\s*(am|pm)$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
}

// ParseDate resolves "today", "tomorrow", or an ISO-8601 date/date-time token
// to midnight UTC of that calendar day.
func ParseDate(token string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(token)
	switch strings.ToLower(s) {
	case "":
		return time.Time{}, false
	case "today":
		return midnight(now.UTC()), true
	case "tomorrow":
		return midnight(now.UTC().AddDate(0, 0, 1)), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t.UTC()), true
		}
	}
	return time.Time{}, false
}

// ParseClock resolves a time-of-day token: 24-hour "HH:MM"/"HH:MM:SS", 12-hour
// "H:MM AM/PM" with or without the space, or bare-hour shorthand ("2pm"),
// which snaps to the top of the hour.
func ParseClock(token string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(token)
	if s == "" {
		return 0, 0, false
	}
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Hour(), t.Minute(), true
		}
		compact := strings.ReplaceAll(upper, " ", "")
		if t, err := time.Parse(strings.ReplaceAll(layout, " ", ""), compact); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}

	m := shorthandRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	if h < 0 || h > 23 {
		return 0, 0, false
	}
	return h, 0, true
}

// Canonical renders a time-of-day as the "HH:MM" slot token.
func Canonical(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// At combines a midnight day with a time-of-day into a UTC instant.
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

// Weekday maps a day to the 0=Monday..6=Sunday convention used by the
// availability templates.
func Weekday(day time.Time) int {
	return (int(day.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
