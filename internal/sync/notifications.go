package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/mapper"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository"
)

// NotificationEngine reconciles the notification history. History is
// append-only on the wire: locally-created entries are pushed as creations,
// and remote-confirmed entries replace their locally-created twins.
type NotificationEngine struct {
	engineState
	history   repository.NotificationRepository
	reminders repository.ReminderRepository
	client    *remote.Client
}

func NewNotificationEngine(history repository.NotificationRepository, reminders repository.ReminderRepository, client *remote.Client) *NotificationEngine {
	e := &NotificationEngine{history: history, reminders: reminders, client: client}
	e.family = "notifications"
	return e
}

func (e *NotificationEngine) SyncToRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		return e.push(ctx, ownerID)
	})
}

func (e *NotificationEngine) SyncFromRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		var res domain.SyncResult
		pulled, err := e.pull(ctx, ownerID)
		res.Pulled = pulled
		return res, err
	})
}

func (e *NotificationEngine) PerformFullSync(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		res, err := e.push(ctx, ownerID)
		if err != nil {
			return res, err
		}
		pulled, err := e.pull(ctx, ownerID)
		res.Pulled = pulled
		return res, err
	})
}

func (e *NotificationEngine) push(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	var res domain.SyncResult
	now := time.Now().UTC()

	pending, err := e.history.ListNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list pending notifications: %w", err)
	}
	for i := range pending {
		n := &pending[i]
		created, err := e.client.CreateNotification(ctx, mapper.NotificationToWire(n))
		if err != nil {
			logger.Warn("notification create failed", "entry", n.ID, "error", err)
			note(&res.Pushed, &res.FirstError, err)
			continue
		}
		if created == nil || created.ID == 0 {
			note(&res.Pushed, &res.FirstError, errors.New("create response missing id"))
			continue
		}
		n.MarkSynced(created.ID, now)
		if err := e.history.Update(ctx, n); err != nil {
			return res, fmt.Errorf("mark notification synced %s: %w", n.ID, err)
		}
		res.Pushed.Succeeded++
	}
	return res, nil
}

func (e *NotificationEngine) pull(ctx context.Context, ownerID string) (int, error) {
	wireNotes, err := e.client.ListNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch notifications: %w", err)
	}

	present := make(map[int64]bool, len(wireNotes))
	for i := range wireNotes {
		present[wireNotes[i].ID] = true
	}

	withRemote, err := e.history.ListWithRemoteID(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list local notifications: %w", err)
	}
	for i := range withRemote {
		n := &withRemote[i]
		if n.NeedsSync || present[*n.RemoteID] {
			continue
		}
		if err := e.history.Purge(ctx, n.ID); err != nil {
			return 0, fmt.Errorf("purge remotely-deleted notification %s: %w", n.ID, err)
		}
	}

	now := time.Now().UTC()
	count := 0
	for i := range wireNotes {
		w := &wireNotes[i]
		existing, err := e.history.GetByRemoteID(ctx, ownerID, w.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return count, fmt.Errorf("lookup notification by remote id: %w", err)
		}

		if existing == nil {
			// a locally-fired twin may exist under a different key; the
			// remote entry is authoritative for historical record
			twin, err := e.findWireDuplicate(ctx, ownerID, w)
			if err != nil {
				return count, err
			}
			// hydration reuses the twin's local id, so the upsert below
			// replaces its row in place; a failed write leaves it intact
			existing = twin
		}

		hydrated := mapper.NotificationFromWire(w, existing, ownerID, now)
		switch {
		case existing != nil && existing.NeedsSync && existing.RemoteID != nil:
			// still queued for push with a server identity already known;
			// local mutation wins until resolved
			count++
			continue
		case existing != nil && existing.RemoteID != nil && notificationContentEqual(existing, hydrated):
			// unchanged
		default:
			if err := e.history.Upsert(ctx, hydrated); err != nil {
				return count, fmt.Errorf("upsert notification %s: %w", hydrated.ID, err)
			}
		}
		count++
	}
	return count, nil
}

// findWireDuplicate locates a local entry recording the same logical event
// as the wire entry, trying the reminder reference first, then the
// server-assigned reminder id, then a same-day text match.
func (e *NotificationEngine) findWireDuplicate(ctx context.Context, ownerID string, w *remote.Notification) (*domain.NotificationHistoryEntry, error) {
	var day string
	if t, ok := mapper.ParseWireInstant(w.Timestamp); ok {
		day = dayOf(t)
	} else {
		return nil, nil // no day, no dedup key
	}

	if w.ReminderID != nil {
		// the server reminder id may map to a known local reminder
		if rem, err := e.reminders.GetByRemoteID(ctx, ownerID, *w.ReminderID); err == nil {
			if n, err := e.history.FindByReminderForDay(ctx, ownerID, rem.ID, day); err == nil {
				return n, nil
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if n, err := e.history.FindByReminderRemoteIDForDay(ctx, ownerID, *w.ReminderID, day); err == nil {
			return n, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	n, err := e.history.FindByTextForDay(ctx, ownerID, w.Title, w.Message, day)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// findDuplicate checks the three dedup strategies for a local firing about
// to be recorded. Strategy order: local reminder id, server reminder id,
// same-day text match.
func (e *NotificationEngine) findDuplicate(ctx context.Context, ownerID, reminderID string, reminderRemoteID *int64, title, message, day string) (*domain.NotificationHistoryEntry, error) {
	if reminderID != "" {
		n, err := e.history.FindByReminderForDay(ctx, ownerID, reminderID, day)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if reminderRemoteID != nil {
		n, err := e.history.FindByReminderRemoteIDForDay(ctx, ownerID, *reminderRemoteID, day)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	n, err := e.history.FindByTextForDay(ctx, ownerID, title, message, day)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// recordLocalFiring writes the history entry for a reminder fired on this
// device. It carries the reminder reference so later remote confirmations
// dedup against it.
func (e *NotificationEngine) recordLocalFiring(ctx context.Context, r *domain.ReminderSetting, message string, status domain.NotificationStatus, now time.Time) error {
	entry := &domain.NotificationHistoryEntry{
		ID:             uuid.NewString(),
		OwnerID:        r.OwnerID,
		Title:          r.Title,
		Message:        message,
		FiredAt:        now.UnixMilli(),
		Status:         status,
		ReminderID:     r.ID,
		LocallyCreated: true,
		NeedsSync:      true,
		LastModified:   now,
	}
	if r.RemoteID != nil {
		v := *r.RemoteID
		entry.ReminderRemoteID = &v
	}
	if err := e.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("record firing of %s: %w", r.ID, err)
	}
	return nil
}

func notificationContentEqual(a, b *domain.NotificationHistoryEntry) bool {
	return a.Title == b.Title && a.Message == b.Message && a.FiredAt == b.FiredAt &&
		a.Status == b.Status && int64PtrEqual(a.LoanRemoteID, b.LoanRemoteID) &&
		int64PtrEqual(a.ReminderRemoteID, b.ReminderRemoteID) &&
		a.LocallyCreated == b.LocallyCreated
}
