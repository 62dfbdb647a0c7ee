// Package mapper translates between the backend's wire payloads and local
// store entities. Every function is pure and total: missing optional fields
// map to zero values, never errors, and hydration reuses existing local ids
// so repeated pulls cannot create duplicate rows for one remote entity.
package mapper

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/remote"
)

// QualifyPhotoURL resolves a wire photo reference against the server
// origin. Absolute http(s) URLs are used as-is; any other non-empty path is
// treated as server-relative.
func QualifyPhotoURL(origin, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}

func firstPhotoURL(origin string, photos []remote.Photo) string {
	if len(photos) == 0 {
		return ""
	}
	return QualifyPhotoURL(origin, photos[0].URL)
}

// --- inventory ---

func conditionFromWire(s string) domain.ItemCondition {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "_")) {
	case "lightly_damaged":
		return domain.ItemConditionLightlyDamaged
	case "heavily_damaged":
		return domain.ItemConditionHeavilyDamaged
	default:
		return domain.ItemConditionGood
	}
}

func conditionToWire(c domain.ItemCondition) string {
	switch c {
	case domain.ItemConditionLightlyDamaged:
		return "lightly_damaged"
	case domain.ItemConditionHeavilyDamaged:
		return "heavily_damaged"
	default:
		return "good"
	}
}

// ItemFromWire hydrates a local item from its server representation. When
// existing is non-nil its local id is preserved; otherwise a new stable id
// is minted. The result is clean (synced, no pending changes).
func ItemFromWire(w *remote.InventoryItem, existing *domain.InventoryItem, ownerID, origin string, now time.Time) *domain.InventoryItem {
	id := uuid.NewString()
	if existing != nil {
		id = existing.ID
	}
	remoteID := w.ID
	return &domain.InventoryItem{
		ID:           id,
		RemoteID:     &remoteID,
		OwnerID:      ownerID,
		Name:         w.Name,
		Code:         w.Code,
		Quantity:     w.Quantity,
		Category:     w.Category,
		Condition:    conditionFromWire(w.Condition),
		Location:     w.Location,
		Description:  w.Description,
		AcquiredOn:   WireToDisplay(w.AcquisitionDate),
		PhotoURL:     QualifyPhotoURL(origin, w.Photo),
		NeedsSync:    false,
		IsSynced:     true,
		LastModified: now,
	}
}

// ItemToWire builds the create/update payload for a local item.
func ItemToWire(it *domain.InventoryItem) *remote.InventoryItemRequest {
	return &remote.InventoryItemRequest{
		Name:            it.Name,
		Code:            it.Code,
		Quantity:        it.Quantity,
		Category:        it.Category,
		Condition:       conditionToWire(it.Condition),
		Location:        it.Location,
		Description:     it.Description,
		AcquisitionDate: DisplayToWire(it.AcquiredOn),
	}
}

// BackfillItem copies remote values into locally-empty fields of a pending
// local item. Non-empty local fields always win.
func BackfillItem(local *domain.InventoryItem, fromRemote *domain.InventoryItem) {
	if local.RemoteID == nil {
		local.RemoteID = fromRemote.RemoteID
	}
	if local.Category == "" {
		local.Category = fromRemote.Category
	}
	if local.Location == "" {
		local.Location = fromRemote.Location
	}
	if local.Description == "" {
		local.Description = fromRemote.Description
	}
	if local.AcquiredOn == "" {
		local.AcquiredOn = fromRemote.AcquiredOn
	}
	if local.PhotoURL == "" {
		local.PhotoURL = fromRemote.PhotoURL
	}
}

// --- loans ---

// LoanStatusFromWire parses the server's status vocabulary, defaulting to
// waiting for anything unrecognized.
func LoanStatusFromWire(s string) domain.LoanStatus {
	switch strings.ToLower(s) {
	case "borrowed":
		return domain.LoanStatusBorrowed
	case "completed":
		return domain.LoanStatusCompleted
	case "overdue":
		return domain.LoanStatusOverdue
	case "rejected":
		return domain.LoanStatusRejected
	default:
		return domain.LoanStatusWaiting
	}
}

// LoanStatusToWire renders a local status in the server's vocabulary.
func LoanStatusToWire(s domain.LoanStatus) string {
	return strings.ToLower(string(s))
}

// LoanFromWire hydrates a loan aggregate. Item identity follows the same
// reuse rule as the loan itself: items matching an existing item's remote id
// keep their local ids.
func LoanFromWire(w *remote.Loan, existing *domain.Loan, ownerID, origin string, now time.Time) *domain.Loan {
	id := uuid.NewString()
	if existing != nil {
		id = existing.ID
	}
	remoteID := w.ID

	byRemote := map[int64]string{}
	if existing != nil {
		for _, li := range existing.Items {
			if li.RemoteID != nil {
				byRemote[*li.RemoteID] = li.ID
			}
		}
	}

	items := make([]domain.LoanItem, 0, len(w.Items))
	for i := range w.Items {
		wi := &w.Items[i]
		itemID := byRemote[wi.ID]
		if itemID == "" {
			itemID = uuid.NewString()
		}
		itemRemoteID := wi.ID
		li := domain.LoanItem{
			ID:             itemID,
			LoanID:         id,
			RemoteID:       &itemRemoteID,
			ItemName:       wi.ItemName,
			ItemCode:       wi.ItemCode,
			Quantity:       wi.Quantity,
			BorrowPhotoURL: firstPhotoURL(origin, wi.BorrowPhotos),
			ReturnPhotoURL: firstPhotoURL(origin, wi.ReturnPhotos),
		}
		if wi.InventoryID != nil {
			inv := *wi.InventoryID
			li.InventoryRemoteID = &inv
		}
		items = append(items, li)
	}

	return &domain.Loan{
		ID:            id,
		RemoteID:      &remoteID,
		OwnerID:       ownerID,
		BorrowerName:  w.BorrowerName,
		BorrowerPhone: w.BorrowerPhone,
		LoanDate:      WireToDisplay(w.LoanDate),
		DueDate:       WireToDisplay(w.DueDate),
		ReturnDate:    WireToDisplay(w.ReturnDate),
		Status:        LoanStatusFromWire(w.Status),
		Items:         items,
		NeedsSync:     false,
		IsSynced:      true,
		LastModified:  now,
	}
}

// LoanToWire builds the creation payload for a local loan. Items lacking an
// inventory remote id are skipped; the server cannot reference them.
func LoanToWire(l *domain.Loan) *remote.LoanRequest {
	items := make([]remote.LoanItemRequest, 0, len(l.Items))
	for _, li := range l.Items {
		if li.InventoryRemoteID == nil {
			continue
		}
		items = append(items, remote.LoanItemRequest{
			InventoryID: *li.InventoryRemoteID,
			Quantity:    li.Quantity,
		})
	}
	return &remote.LoanRequest{
		BorrowerName:  l.BorrowerName,
		BorrowerPhone: l.BorrowerPhone,
		LoanDate:      DisplayToWire(l.LoanDate),
		DueDate:       DisplayToWire(l.DueDate),
		Items:         items,
	}
}

// BackfillLoan copies remote values into locally-empty fields of a pending
// local loan.
func BackfillLoan(local *domain.Loan, fromRemote *domain.Loan) {
	if local.RemoteID == nil {
		local.RemoteID = fromRemote.RemoteID
	}
	if local.BorrowerPhone == "" {
		local.BorrowerPhone = fromRemote.BorrowerPhone
	}
	if local.ReturnDate == "" {
		local.ReturnDate = fromRemote.ReturnDate
	}
	for i := range local.Items {
		li := &local.Items[i]
		if li.RemoteID != nil {
			continue
		}
		// adopt server ids for items matched by inventory reference
		for _, ri := range fromRemote.Items {
			if li.InventoryRemoteID != nil && ri.InventoryRemoteID != nil &&
				*li.InventoryRemoteID == *ri.InventoryRemoteID {
				li.RemoteID = ri.RemoteID
				break
			}
		}
	}
}

// --- reminders ---

func reminderTypeFromWire(s string) domain.ReminderType {
	if strings.EqualFold(s, "custom") {
		return domain.ReminderTypeCustom
	}
	return domain.ReminderTypePeriodic
}

func reminderTypeToWire(t domain.ReminderType) string {
	if t == domain.ReminderTypeCustom {
		return "custom"
	}
	return "periodic"
}

// ReminderFromWire hydrates a reminder setting. A periodic reminder never
// carries a scheduled instant; a custom one keeps its instant as epoch
// millis.
func ReminderFromWire(w *remote.Reminder, existing *domain.ReminderSetting, ownerID string, now time.Time) *domain.ReminderSetting {
	id := uuid.NewString()
	createdAt := now
	if existing != nil {
		id = existing.ID
		createdAt = existing.CreatedAt
	}
	remoteID := w.ID

	rem := &domain.ReminderSetting{
		ID:           id,
		RemoteID:     &remoteID,
		OwnerID:      ownerID,
		Type:         reminderTypeFromWire(w.Type),
		Title:        w.Title,
		PushToken:    w.PushToken,
		Active:       w.IsActive,
		CreatedAt:    createdAt,
		NeedsSync:    false,
		IsSynced:     true,
		LastModified: now,
	}
	if rem.Type == domain.ReminderTypePeriodic {
		rem.PeriodicMonths = w.PeriodicMonths
	} else if t, ok := ParseWireInstant(w.ScheduledDatetime); ok {
		millis := t.UnixMilli()
		rem.ScheduledAt = &millis
	}
	if t, ok := ParseWireInstant(w.LastNotified); ok {
		millis := t.UnixMilli()
		rem.LastFiredAt = &millis
	}
	return rem
}

func ReminderToWire(r *domain.ReminderSetting) *remote.ReminderRequest {
	req := &remote.ReminderRequest{
		Type:      reminderTypeToWire(r.Type),
		Title:     r.Title,
		PushToken: r.PushToken,
		IsActive:  r.Active,
	}
	if r.Type == domain.ReminderTypePeriodic {
		req.PeriodicMonths = r.PeriodicMonths
	} else if r.ScheduledAt != nil {
		req.ScheduledDatetime = FormatWireInstant(*r.ScheduledAt)
	}
	return req
}

// BackfillReminder copies remote values into locally-absent fields of a
// pending reminder. Set local fields are never overwritten.
func BackfillReminder(local *domain.ReminderSetting, fromRemote *domain.ReminderSetting) {
	if local.RemoteID == nil {
		local.RemoteID = fromRemote.RemoteID
	}
	if local.Title == "" {
		local.Title = fromRemote.Title
	}
	if local.PushToken == "" {
		local.PushToken = fromRemote.PushToken
	}
	if local.PeriodicMonths == 0 {
		local.PeriodicMonths = fromRemote.PeriodicMonths
	}
	if local.ScheduledAt == nil {
		local.ScheduledAt = fromRemote.ScheduledAt
	}
	if local.LastFiredAt == nil {
		local.LastFiredAt = fromRemote.LastFiredAt
	}
	if local.CreatedAt.IsZero() {
		local.CreatedAt = fromRemote.CreatedAt
	}
}

// --- notification history ---

func notificationStatusFromWire(s string) domain.NotificationStatus {
	switch strings.ToLower(s) {
	case "failed":
		return domain.NotificationStatusFailed
	case "read":
		return domain.NotificationStatusRead
	default:
		return domain.NotificationStatusSent
	}
}

func notificationStatusToWire(s domain.NotificationStatus) string {
	return strings.ToLower(string(s))
}

// NotificationFromWire hydrates a history entry. Remote-confirmed entries
// are authoritative historical record: they arrive clean and not
// locally-created.
func NotificationFromWire(w *remote.Notification, existing *domain.NotificationHistoryEntry, ownerID string, now time.Time) *domain.NotificationHistoryEntry {
	id := uuid.NewString()
	reminderID := ""
	if existing != nil {
		id = existing.ID
		reminderID = existing.ReminderID
	}
	remoteID := w.ID

	var firedAt int64
	if t, ok := ParseWireInstant(w.Timestamp); ok {
		firedAt = t.UnixMilli()
	}

	n := &domain.NotificationHistoryEntry{
		ID:             id,
		RemoteID:       &remoteID,
		OwnerID:        ownerID,
		Title:          w.Title,
		Message:        w.Message,
		FiredAt:        firedAt,
		Status:         notificationStatusFromWire(w.Status),
		ReminderID:     reminderID,
		LocallyCreated: false,
		NeedsSync:      false,
		IsSynced:       true,
		LastModified:   now,
	}
	if w.LoanID != nil {
		v := *w.LoanID
		n.LoanRemoteID = &v
	}
	if w.ReminderID != nil {
		v := *w.ReminderID
		n.ReminderRemoteID = &v
	}
	return n
}

func NotificationToWire(n *domain.NotificationHistoryEntry) *remote.NotificationRequest {
	req := &remote.NotificationRequest{
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: FormatWireInstant(n.FiredAt),
		Status:    notificationStatusToWire(n.Status),
	}
	if n.LoanRemoteID != nil {
		v := *n.LoanRemoteID
		req.LoanID = &v
	}
	if n.ReminderRemoteID != nil {
		v := *n.ReminderRemoteID
		req.ReminderID = &v
	}
	return req
}
