package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/mapper"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository"
)

// InventoryEngine reconciles inventory items.
type InventoryEngine struct {
	engineState
	items  repository.ItemRepository
	client *remote.Client
}

func NewInventoryEngine(items repository.ItemRepository, client *remote.Client) *InventoryEngine {
	e := &InventoryEngine{items: items, client: client}
	e.family = "inventory"
	return e
}

func (e *InventoryEngine) SyncToRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		return e.push(ctx, ownerID)
	})
}

func (e *InventoryEngine) SyncFromRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

// PerformFullSync pushes then pulls. The order matters: pulling first would
// see freshly-created local rows as missing remotely, and rows pushed
// moments ago would lack the remote ids that suppress the deletion rule.
func (e *InventoryEngine) PerformFullSync(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

// push walks soft-deleted rows first, then pending creates/updates. A row
// failure counts and the pass continues; only local-storage errors abort.
func (e *InventoryEngine) push(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	var res domain.SyncResult
	now := time.Now().UTC()

	deleted, err := e.items.ListDeletedNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list deleted items: %w", err)
	}
	for i := range deleted {
		it := &deleted[i]
		if it.RemoteID == nil {
			// never reached the server; no remote call needed
			if err := e.items.Purge(ctx, it.ID); err != nil {
				return res, fmt.Errorf("purge item %s: %w", it.ID, err)
			}
			res.Pushed.Succeeded++
			continue
		}
		if err := e.client.DeleteInventoryItem(ctx, *it.RemoteID); err != nil && !isGone(err) {
			logger.Warn("inventory delete not acknowledged", "item", it.ID, "error", err)
			note(&res.Pushed, &res.FirstError, err)
			continue
		}
		if err := e.items.Purge(ctx, it.ID); err != nil {
			return res, fmt.Errorf("purge item %s: %w", it.ID, err)
		}
		res.Pushed.Succeeded++
	}

	pending, err := e.items.ListNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list pending items: %w", err)
	}
	for i := range pending {
		it := &pending[i]
		req := mapper.ItemToWire(it)

		if it.RemoteID != nil {
			if _, err := e.client.UpdateInventoryItem(ctx, *it.RemoteID, req); err != nil {
				logger.Warn("inventory update failed", "item", it.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			it.MarkSynced(*it.RemoteID, now)
		} else {
			created, err := e.client.CreateInventoryItem(ctx, req)
			if err != nil {
				logger.Warn("inventory create failed", "item", it.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			if created == nil || created.ID == 0 {
				// a create response without an id cannot be reconciled
				note(&res.Pushed, &res.FirstError, errors.New("create response missing id"))
				continue
			}
			it.MarkSynced(created.ID, now)
		}
		if err := e.items.Update(ctx, it); err != nil {
			return res, fmt.Errorf("mark item synced %s: %w", it.ID, err)
		}
		res.Pushed.Succeeded++
	}
	return res, nil
}

// pull applies the full remote collection: purge confirmed remote
// deletions, then upsert every remote row. Pending local rows win.
func (e *InventoryEngine) pull(ctx context.Context, ownerID string) (int, error) {
	wireItems, err := e.client.ListInventory(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch inventory: %w", err)
	}

	present := make(map[int64]bool, len(wireItems))
	for i := range wireItems {
		present[wireItems[i].ID] = true
	}

	withRemote, err := e.items.ListWithRemoteID(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list local items: %w", err)
	}
	for i := range withRemote {
		it := &withRemote[i]
		if it.NeedsSync || present[*it.RemoteID] {
			continue
		}
		if err := e.items.Purge(ctx, it.ID); err != nil {
			return 0, fmt.Errorf("purge remotely-deleted item %s: %w", it.ID, err)
		}
	}

	now := time.Now().UTC()
	count := 0
	for i := range wireItems {
		w := &wireItems[i]
		existing, err := e.items.GetByRemoteID(ctx, ownerID, w.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return count, fmt.Errorf("lookup item by remote id: %w", err)
		}

		hydrated := mapper.ItemFromWire(w, existing, ownerID, e.client.Origin(), now)
		switch {
		case existing != nil && existing.NeedsSync:
			// local pending changes win; only fill gaps
			mapper.BackfillItem(existing, hydrated)
			if err := e.items.Update(ctx, existing); err != nil {
				return count, fmt.Errorf("backfill item %s: %w", existing.ID, err)
			}
		case existing != nil && itemContentEqual(existing, hydrated):
			// unchanged; keep the store byte-stable across repeated pulls
		default:
			if err := e.items.Upsert(ctx, hydrated); err != nil {
				return count, fmt.Errorf("upsert item %s: %w", hydrated.ID, err)
			}
		}
		count++
	}
	return count, nil
}

func itemContentEqual(a, b *domain.InventoryItem) bool {
	return a.Name == b.Name && a.Code == b.Code && a.Quantity == b.Quantity &&
		a.Category == b.Category && a.Condition == b.Condition && a.Location == b.Location &&
		a.Description == b.Description && a.AcquiredOn == b.AcquiredOn && a.PhotoURL == b.PhotoURL &&
		!a.IsDeleted && !b.IsDeleted
}

// isGone treats a 404 on delete as the remote confirming the row no longer
// exists, which is exactly the acknowledgement the purge needs.
func isGone(err error) bool {
	var apiErr *remote.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
