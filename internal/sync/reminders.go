package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/mapper"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository"
)

// ReminderEngine reconciles reminder settings and evaluates due reminders.
type ReminderEngine struct {
	engineState
	reminders repository.ReminderRepository
	history   *NotificationEngine
	notifier  Notifier
	client    *remote.Client
}

func NewReminderEngine(reminders repository.ReminderRepository, history *NotificationEngine, notifier Notifier, client *remote.Client) *ReminderEngine {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	e := &ReminderEngine{reminders: reminders, history: history, notifier: notifier, client: client}
	e.family = "reminders"
	return e
}

func (e *ReminderEngine) SyncToRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		return e.push(ctx, ownerID)
	})
}

func (e *ReminderEngine) SyncFromRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

func (e *ReminderEngine) PerformFullSync(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

func (e *ReminderEngine) push(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	var res domain.SyncResult
	now := time.Now().UTC()

	deleted, err := e.reminders.ListDeletedNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list deleted reminders: %w", err)
	}
	for i := range deleted {
		r := &deleted[i]
		if r.RemoteID == nil {
			if err := e.reminders.Purge(ctx, r.ID); err != nil {
				return res, fmt.Errorf("purge reminder %s: %w", r.ID, err)
			}
			res.Pushed.Succeeded++
			continue
		}
		if err := e.client.DeleteReminder(ctx, *r.RemoteID); err != nil && !isGone(err) {
			logger.Warn("reminder delete not acknowledged", "reminder", r.ID, "error", err)
			note(&res.Pushed, &res.FirstError, err)
			continue
		}
		if err := e.reminders.Purge(ctx, r.ID); err != nil {
			return res, fmt.Errorf("purge reminder %s: %w", r.ID, err)
		}
		res.Pushed.Succeeded++
	}

	pending, err := e.reminders.ListNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list pending reminders: %w", err)
	}
	for i := range pending {
		r := &pending[i]
		req := mapper.ReminderToWire(r)

		if r.RemoteID != nil {
			if _, err := e.client.UpdateReminder(ctx, *r.RemoteID, req); err != nil {
				logger.Warn("reminder update failed", "reminder", r.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			r.MarkSynced(*r.RemoteID, now)
		} else {
			created, err := e.client.CreateReminder(ctx, req)
			if err != nil {
				logger.Warn("reminder create failed", "reminder", r.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			if created == nil || created.ID == 0 {
				note(&res.Pushed, &res.FirstError, errors.New("create response missing id"))
				continue
			}
			r.MarkSynced(created.ID, now)
		}
		if err := e.reminders.Update(ctx, r); err != nil {
			return res, fmt.Errorf("mark reminder synced %s: %w", r.ID, err)
		}
		res.Pushed.Succeeded++
	}
	return res, nil
}

func (e *ReminderEngine) pull(ctx context.Context, ownerID string) (int, error) {
	wireRems, err := e.client.ListReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch reminders: %w", err)
	}

	present := make(map[int64]bool, len(wireRems))
	for i := range wireRems {
		present[wireRems[i].ID] = true
	}

	withRemote, err := e.reminders.ListWithRemoteID(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list local reminders: %w", err)
	}
	for i := range withRemote {
		r := &withRemote[i]
		if r.NeedsSync || present[*r.RemoteID] {
			continue
		}
		if err := e.reminders.Purge(ctx, r.ID); err != nil {
			return 0, fmt.Errorf("purge remotely-deleted reminder %s: %w", r.ID, err)
		}
	}

	now := time.Now().UTC()
	count := 0
	for i := range wireRems {
		w := &wireRems[i]
		existing, err := e.reminders.GetByRemoteID(ctx, ownerID, w.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return count, fmt.Errorf("lookup reminder by remote id: %w", err)
		}

		hydrated := mapper.ReminderFromWire(w, existing, ownerID, now)
		switch {
		case existing != nil && existing.NeedsSync:
			mapper.BackfillReminder(existing, hydrated)
			if err := e.reminders.Update(ctx, existing); err != nil {
				return count, fmt.Errorf("backfill reminder %s: %w", existing.ID, err)
			}
		case existing != nil && reminderContentEqual(existing, hydrated):
			// unchanged
		default:
			if err := e.reminders.Upsert(ctx, hydrated); err != nil {
				return count, fmt.Errorf("upsert reminder %s: %w", hydrated.ID, err)
			}
		}
		count++
	}
	return count, nil
}

func reminderContentEqual(a, b *domain.ReminderSetting) bool {
	if a.Type != b.Type || a.Title != b.Title || a.PeriodicMonths != b.PeriodicMonths ||
		a.PushToken != b.PushToken || a.Active != b.Active || a.IsDeleted || b.IsDeleted {
		return false
	}
	return int64PtrEqual(a.ScheduledAt, b.ScheduledAt) && int64PtrEqual(a.LastFiredAt, b.LastFiredAt)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// EvaluateDue fires every due reminder: deliver, record a dedup'd history
// entry, then either stamp the periodic baseline or retire the custom
// reminder. Returns the number fired.
func (e *ReminderEngine) EvaluateDue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	if ownerID == "" {
		return 0, ErrOwnerRequired
	}
	active, err := e.reminders.ListActive(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list active reminders: %w", err)
	}

	fired := 0
	for i := range active {
		r := &active[i]
		if !r.IsDue(now) {
			continue
		}

		message := fmt.Sprintf("Reminder: %s", r.Title)
		if dup, err := e.history.findDuplicate(ctx, ownerID, r.ID, r.RemoteID, r.Title, message, dayOf(now)); err != nil {
			return fired, err
		} else if dup != nil {
			// already recorded today from another origin
			continue
		}

		status := domain.NotificationStatusSent
		if err := e.notifier.Notify(ctx, r.PushToken, r.Title, message); err != nil {
			logger.Warn("reminder delivery failed", "reminder", r.ID, "error", err)
			status = domain.NotificationStatusFailed
		}

		if err := e.history.recordLocalFiring(ctx, r, message, status, now); err != nil {
			return fired, err
		}

		if r.Type == domain.ReminderTypeCustom {
			// terminal: a fired custom reminder does not survive
			if r.RemoteID == nil {
				if err := e.reminders.Purge(ctx, r.ID); err != nil {
					return fired, fmt.Errorf("purge fired reminder %s: %w", r.ID, err)
				}
			} else if err := e.reminders.SoftDelete(ctx, r.ID); err != nil {
				// queued for remote delete on the next push
				return fired, fmt.Errorf("retire fired reminder %s: %w", r.ID, err)
			}
		} else {
			millis := now.UnixMilli()
			r.LastFiredAt = &millis
			r.MarkPending(now)
			if err := e.reminders.Update(ctx, r); err != nil {
				return fired, fmt.Errorf("stamp reminder %s: %w", r.ID, err)
			}
		}
		fired++
	}
	return fired, nil
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
