package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2026, 3, 15), date(2026, 3, 15), 0},
		{"one day later", date(2026, 3, 15), date(2026, 3, 16), 0},
		{"day before anniversary", date(2026, 3, 15), date(2026, 4, 14), 0},
		{"exact anniversary", date(2026, 3, 15), date(2026, 4, 15), 1},
		{"day after anniversary", date(2026, 3, 15), date(2026, 4, 16), 1},
		{"across a year", date(2025, 11, 10), date(2026, 2, 10), 3},
		{"full year", date(2025, 6, 1), date(2026, 6, 1), 12},
		{"b before a", date(2026, 5, 1), date(2026, 4, 30), 0},
		{"jan 31 into february", date(2026, 1, 31), date(2026, 2, 28), 0},
		{"jan 31 completes in march", date(2026, 1, 31), date(2026, 3, 1), 1},
		{"jan 31 to mar 31", date(2026, 1, 31), date(2026, 3, 31), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(tt.a, tt.b))
		})
	}
}

func TestReminderIsDue_Periodic(t *testing.T) {
	created := date(2026, 1, 15)
	r := &ReminderSetting{
		Type:           ReminderTypePeriodic,
		PeriodicMonths: 3,
		Active:         true,
		CreatedAt:      created,
	}

	assert.False(t, r.IsDue(date(2026, 4, 14)), "one day short of three months")
	assert.True(t, r.IsDue(date(2026, 4, 15)), "exactly three months")

	// after firing, the baseline moves to the firing instant
	fired := date(2026, 4, 15).UnixMilli()
	r.LastFiredAt = &fired
	assert.False(t, r.IsDue(date(2026, 6, 15)))
	assert.True(t, r.IsDue(date(2026, 7, 15)))
}

func TestReminderIsDue_PeriodicGuards(t *testing.T) {
	r := &ReminderSetting{
		Type:           ReminderTypePeriodic,
		PeriodicMonths: 1,
		Active:         true,
		CreatedAt:      date(2026, 1, 1),
	}
	now := date(2026, 6, 1)

	assert.True(t, r.IsDue(now))

	r.Active = false
	assert.False(t, r.IsDue(now), "inactive never fires")
	r.Active = true

	r.IsDeleted = true
	assert.False(t, r.IsDue(now), "deleted never fires")
	r.IsDeleted = false

	r.PeriodicMonths = 0
	assert.False(t, r.IsDue(now), "zero interval never fires")
}

func TestReminderIsDue_Custom(t *testing.T) {
	at := date(2026, 5, 1).Add(9 * time.Hour).UnixMilli()
	r := &ReminderSetting{
		Type:        ReminderTypeCustom,
		Active:      true,
		ScheduledAt: &at,
	}

	assert.False(t, r.IsDue(time.UnixMilli(at).Add(-time.Minute)))
	assert.True(t, r.IsDue(time.UnixMilli(at)))
	assert.True(t, r.IsDue(time.UnixMilli(at).Add(48*time.Hour)), "stays due until it fires")

	firedAt := time.UnixMilli(at).Add(time.Minute).UnixMilli()
	r.LastFiredAt = &firedAt
	assert.False(t, r.IsDue(time.UnixMilli(at).Add(2*time.Hour)), "fired at or after the schedule")

	r.ScheduledAt = nil
	assert.False(t, r.IsDue(time.UnixMilli(at)), "custom without an instant never fires")
}

func TestReminderMarkSyncedKeepsRemoteID(t *testing.T) {
	now := time.Now()
	existing := int64(7)
	r := &ReminderSetting{RemoteID: &existing, NeedsSync: true}

	r.MarkSynced(99, now)

	assert.Equal(t, int64(7), *r.RemoteID)
	assert.False(t, r.NeedsSync)
	assert.True(t, r.IsSynced)
}
