// Package datefmt parses the loosely formatted dates found in bank statements.
//
// Fully ambiguous day/month pairs (both <= 12) are read as DD/MM. Data imported
// earlier relies on that tie-break, so it must not change.
package datefmt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// YYYY-MM-DD, YYYY/MM/DD, YYYY.MM.DD with an optional trailing time.
	isoPattern = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})(?:[ T].*)?$`)
	// A/B/YYYY or A/B/YY with the same separators.
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})(?:[ T].*)?$`)
)

// Order says how an A/B/YYYY date was resolved.
type Order int

const (
	OrderUnknown Order = iota
	OrderISO           // YYYY-MM-DD
	OrderDMY           // day first
	OrderMDY           // month first
)

// Parse returns the calendar date (UTC midnight) in s.
// ok is false when s is not a recognizable date.
func Parse(s string) (time.Time, bool) {
	t, _, ok := ParseWithOrder(s)
	return t, ok
}

// ParseWithOrder is Parse that also reports which field order was used.
func ParseWithOrder(s string) (time.Time, Order, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, OrderUnknown, false
	}

	if m := isoPattern.FindStringSubmatch(s); m != nil {
		t, ok := build(atoi(m[1]), atoi(m[2]), atoi(m[3]))
		return t, OrderISO, ok
	}

	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, OrderUnknown, false
	}

	a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}

	switch {
	case a > 12:
		t, ok := build(year, b, a)
		return t, OrderDMY, ok
	case b > 12:
		t, ok := build(year, a, b)
		return t, OrderMDY, ok
	default:
		// Ambiguous: international default, day first.
		t, ok := build(year, b, a)
		return t, OrderDMY, ok
	}
}

// LooksLikeDate reports whether s has the shape of a statement date
// (DD/MM/YYYY, MM/DD/YYYY or YYYY-MM-DD style). It checks shape only.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	return isoPattern.MatchString(s) || dmyPattern.MatchString(s)
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(time.DateOnly)
}

func build(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Apr 31 -> May 1); reject those.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
