package domain

import "time"

type ItemCondition string

const (
	ItemConditionGood           ItemCondition = "GOOD"
	ItemConditionLightlyDamaged ItemCondition = "LIGHTLY_DAMAGED"
	ItemConditionHeavilyDamaged ItemCondition = "HEAVILY_DAMAGED"
)

// InventoryItem is a borrowable item in the local store. ID is the
// client-generated stable identifier; RemoteID is assigned by the server
// after the first successful push.
type InventoryItem struct {
	ID           string        `json:"id"`
	RemoteID     *int64        `json:"remote_id,omitempty"`
	OwnerID      string        `json:"owner_id"`
	Name         string        `json:"name"`
	Code         string        `json:"code"`
	Quantity     int           `json:"quantity"`
	Category     string        `json:"category"`
	Condition    ItemCondition `json:"condition"`
	Location     string        `json:"location"`
	Description  string        `json:"description"`
	AcquiredOn   string        `json:"acquired_on"` // display format, dd/MM/yyyy
	PhotoURL     string        `json:"photo_url"`
	IsDeleted    bool          `json:"is_deleted"`
	NeedsSync    bool          `json:"needs_sync"`
	IsSynced     bool          `json:"is_synced"`
	LastModified time.Time     `json:"last_modified"`
}

// MarkPending flags the item as carrying local changes that have not
// reached the server yet.
func (i *InventoryItem) MarkPending(now time.Time) {
	i.NeedsSync = true
	i.IsSynced = false
	i.LastModified = now
}

// MarkSynced records a successful push. remoteID is kept unchanged when the
// item already has one.
func (i *InventoryItem) MarkSynced(remoteID int64, now time.Time) {
	if i.RemoteID == nil {
		i.RemoteID = &remoteID
	}
	i.NeedsSync = false
	i.IsSynced = true
	i.LastModified = now
}
