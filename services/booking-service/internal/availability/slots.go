// Package availability computes the bookable slot set for one doctor-day.
//
// The resolution is a pure three-way merge: hourly offerings expanded from the
// doctor's weekly template (or a fixed default set when no template exists),
// minus hours taken by SCHEDULED bookings, minus hours inside external
// calendar busy windows. Both exclusions only ever remove candidates from the
// template-derived superset, so applying them in either order yields the same
// result.
package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Window is one same-day availability window, "HH:MM" start inclusive to
// "HH:MM" end exclusive.
type Window struct {
	Start string
	End   string
}

// Interval is an externally reported busy time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// DefaultOfferings is the fallback slot set for doctors with no template rows
// on a weekday. It deliberately also covers doctors explicitly marked off that
// day, preserving bookability (a known coarse-grained rule, kept on purpose).
func DefaultOfferings() []string {
	return []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}
}

// Resolve returns the ordered bookable slot tokens for a day.
func Resolve(template []Window, booked []string, busy []Interval) []string {
	var offerings []string
	if len(template) == 0 {
		offerings = DefaultOfferings()
	} else {
		offerings = ExpandTemplate(template)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}
	for t := range BusyHours(busy) {
		taken[t] = struct{}{}
	}

	out := offerings[:0]
	for _, t := range offerings {
		if _, ok := taken[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// ExpandTemplate emits one offering per hour step from each window's start
// (inclusive) up to but not including its end: 09:00–17:00 yields
// 09:00,10:00,…,16:00. Malformed windows and windows with start >= end are
// skipped. The result is sorted and deduplicated.
func ExpandTemplate(windows []Window) []string {
	set := map[string]struct{}{}
	for _, w := range windows {
		start, ok := clockMinutes(w.Start)
		if !ok {
			continue
		}
		end, ok := clockMinutes(w.End)
		if !ok {
			continue
		}
		for m := start; m < end; m += 60 {
			set[fmt.Sprintf("%02d:%02d", m/60, m%60)] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// BusyHours floors busy windows onto the hourly grid: every hour boundary in
// [start hour, end hour) is unavailable, even when the window spans partial
// hours. A window ending at 15:30 therefore blocks 14:00 but not 15:00.
func BusyHours(busy []Interval) map[string]struct{} {
	out := map[string]struct{}{}
	for _, b := range busy {
		start := b.Start.UTC()
		end := b.End.UTC()
		if !end.After(start) {
			continue
		}
		for h := start.Hour(); h < end.Hour(); h++ {
			out[fmt.Sprintf("%02d:00", h)] = struct{}{}
		}
	}
	return out
}

func clockMinutes(s string) (int, bool) {
	h, m, ok := splitClock(s)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}

func splitClock(s string) (int, int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
