package domain

import "time"

type ReminderType string

const (
	ReminderTypePeriodic ReminderType = "PERIODIC"
	ReminderTypeCustom   ReminderType = "CUSTOM"
)

// ReminderSetting schedules either a repeating check-stock reminder
// (periodic, whole calendar months) or a one-shot reminder at a fixed
// instant (custom). A custom reminder is deleted outright once it fires.
type ReminderSetting struct {
	ID             string       `json:"id"`
	RemoteID       *int64       `json:"remote_id,omitempty"`
	OwnerID        string       `json:"owner_id"`
	Type           ReminderType `json:"type"`
	Title          string       `json:"title"`
	PeriodicMonths int          `json:"periodic_months,omitempty"` // periodic only
	ScheduledAt    *int64       `json:"scheduled_at,omitempty"`    // custom only, epoch millis
	PushToken      string       `json:"push_token"`
	Active         bool         `json:"active"`
	LastFiredAt    *int64       `json:"last_fired_at,omitempty"` // epoch millis
	CreatedAt      time.Time    `json:"created_at"`
	IsDeleted      bool         `json:"is_deleted"`
	NeedsSync      bool         `json:"needs_sync"`
	IsSynced       bool         `json:"is_synced"`
	LastModified   time.Time    `json:"last_modified"`
}

func (r *ReminderSetting) MarkPending(now time.Time) {
	r.NeedsSync = true
	r.IsSynced = false
	r.LastModified = now
}

func (r *ReminderSetting) MarkSynced(remoteID int64, now time.Time) {
	if r.RemoteID == nil {
		r.RemoteID = &remoteID
	}
	r.NeedsSync = false
	r.IsSynced = true
	r.LastModified = now
}

// IsDue reports whether the reminder should fire at now.
//
// A periodic reminder is due when at least PeriodicMonths whole calendar
// months have elapsed since the last firing (or creation, if it never
// fired). A custom reminder is due when now has reached ScheduledAt and it
// has not fired at or after that instant.
func (r *ReminderSetting) IsDue(now time.Time) bool {
	if !r.Active || r.IsDeleted {
		return false
	}
	switch r.Type {
	case ReminderTypePeriodic:
		if r.PeriodicMonths <= 0 {
			return false
		}
		baseline := r.CreatedAt
		if r.LastFiredAt != nil {
			baseline = time.UnixMilli(*r.LastFiredAt)
		}
		return MonthsBetween(baseline, now) >= r.PeriodicMonths
	case ReminderTypeCustom:
		if r.ScheduledAt == nil {
			return false
		}
		if now.UnixMilli() < *r.ScheduledAt {
			return false
		}
		return r.LastFiredAt == nil || *r.LastFiredAt < *r.ScheduledAt
	}
	return false
}

// MonthsBetween returns the number of whole calendar months elapsed from a
// to b. The month count from (y2-y1)*12+(m2-m1) is reduced by one while the
// day-of-month of b has not yet reached the day-of-month of a; a baseline
// day the target month never reaches (e.g. the 31st in February) completes
// on crossing into the following month.
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	a, b = a.UTC(), b.UTC()
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
