package mapper

import (
	"strings"
	"time"
)

// Wire formats are ISO-like; local display formats are day-first. Both a
// plain date and a date+time must round-trip. Anything unparseable passes
// through unchanged so a bad server value never blocks a sync pass.

const (
	wireDate     = "2006-01-02"
	wireDateTime = "2006-01-02T15:04:05"

	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04"
)

var wireLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	wireDateTime,
	"2006-01-02 15:04:05",
	wireDate,
}

var displayLayouts = []string{
	displayDateTime,
	displayDate,
}

// parseAny tries layouts in order, reporting the matched layout.
func parseAny(s string, layouts []string) (time.Time, string, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, layout, true
		}
	}
	return time.Time{}, "", false
}

func hasClock(layout string) bool {
	return strings.Contains(layout, "15:04")
}

// WireToDisplay converts an ISO wire date or datetime to the local display
// form. Unparseable input is returned unchanged.
func WireToDisplay(s string) string {
	if s == "" {
		return ""
	}
	t, layout, ok := parseAny(s, wireLayouts)
	if !ok {
		return s
	}
	if hasClock(layout) {
		return t.Format(displayDateTime)
	}
	return t.Format(displayDate)
}

// DisplayToWire converts a local display date or datetime to the ISO wire
// form. Unparseable input is returned unchanged.
func DisplayToWire(s string) string {
	if s == "" {
		return ""
	}
	t, layout, ok := parseAny(s, displayLayouts)
	if !ok {
		return s
	}
	if hasClock(layout) {
		return t.Format(wireDateTime)
	}
	return t.Format(wireDate)
}

// ParseWireInstant parses an ISO wire datetime (or date) into a time.
func ParseWireInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, _, ok := parseAny(s, wireLayouts)
	return t, ok
}

// FormatWireInstant renders an epoch-millisecond instant as an ISO wire
// datetime in UTC.
func FormatWireInstant(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(wireDateTime)
}
