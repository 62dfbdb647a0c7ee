package domain

import "time"

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "SENT"
	NotificationStatusFailed NotificationStatus = "FAILED"
	NotificationStatusRead   NotificationStatus = "READ"
)

// NotificationHistoryEntry records a delivered (or attempted) notification.
// At most one entry exists per (owner, reminder reference, calendar day);
// that key dedups reminder firings seen from more than one origin.
type NotificationHistoryEntry struct {
	ID               string             `json:"id"`
	RemoteID         *int64             `json:"remote_id,omitempty"`
	OwnerID          string             `json:"owner_id"`
	Title            string             `json:"title"`
	Message          string             `json:"message"`
	FiredAt          int64              `json:"fired_at"` // epoch millis
	Status           NotificationStatus `json:"status"`
	LoanRemoteID     *int64             `json:"loan_remote_id,omitempty"`
	ReminderID       string             `json:"reminder_id,omitempty"`        // local reminder id
	ReminderRemoteID *int64             `json:"reminder_remote_id,omitempty"` // server-assigned
	LocallyCreated   bool               `json:"locally_created"`
	NeedsSync        bool               `json:"needs_sync"`
	IsSynced         bool               `json:"is_synced"`
	LastModified     time.Time          `json:"last_modified"`
}

// FiredDay returns the UTC calendar day the notification fired on, in
// 2006-01-02 form. It is the day component of the dedup key.
func (n *NotificationHistoryEntry) FiredDay() string {
	return time.UnixMilli(n.FiredAt).UTC().Format("2006-01-02")
}

func (n *NotificationHistoryEntry) MarkPending(now time.Time) {
	n.NeedsSync = true
	n.IsSynced = false
	n.LastModified = now
}

func (n *NotificationHistoryEntry) MarkSynced(remoteID int64, now time.Time) {
	if n.RemoteID == nil {
		n.RemoteID = &remoteID
	}
	n.NeedsSync = false
	n.IsSynced = true
	n.LastModified = now
}
