package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWireToDisplay(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain date", "2026-03-05", "05/03/2026"},
		{"datetime", "2026-03-05T14:30:00", "05/03/2026 14:30"},
		{"datetime with zone", "2026-03-05T14:30:00Z", "05/03/2026 14:30"},
		{"datetime with millis", "2026-03-05T14:30:00.000Z", "05/03/2026 14:30"},
		{"space separated", "2026-03-05 14:30:00", "05/03/2026 14:30"},
		{"empty", "", ""},
		{"garbage passes through", "next tuesday", "next tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WireToDisplay(tt.in))
		})
	}
}

func TestDisplayToWire(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain date", "05/03/2026", "2026-03-05"},
		{"datetime", "05/03/2026 14:30", "2026-03-05T14:30:00"},
		{"empty", "", ""},
		{"garbage passes through", "soon", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayToWire(tt.in))
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	for _, wire := range []string{"2026-03-05", "2026-03-05T14:30:00"} {
		assert.Equal(t, wire, DisplayToWire(WireToDisplay(wire)))
	}
	for _, display := range []string{"05/03/2026", "05/03/2026 14:30"} {
		assert.Equal(t, display, WireToDisplay(DisplayToWire(display)))
	}
}

func TestParseWireInstant(t *testing.T) {
	got, ok := ParseWireInstant("2026-03-05T14:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC), got.UTC())

	_, ok = ParseWireInstant("")
	assert.False(t, ok)
	_, ok = ParseWireInstant("not a date")
	assert.False(t, ok)
}

func TestFormatWireInstant(t *testing.T) {
	at := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-05T14:30:00", FormatWireInstant(at.UnixMilli()))
}
