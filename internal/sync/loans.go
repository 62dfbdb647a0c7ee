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

// LoanEngine reconciles loan aggregates, items included.
type LoanEngine struct {
	engineState
	loans  repository.LoanRepository
	client *remote.Client
}

func NewLoanEngine(loans repository.LoanRepository, client *remote.Client) *LoanEngine {
	e := &LoanEngine{loans: loans, client: client}
	e.family = "loans"
	return e
}

func (e *LoanEngine) SyncToRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	return e.run(ownerID, func() (domain.SyncResult, error) {
		if !e.client.Reachable(ctx) {
			return skipped()
		}
		return e.push(ctx, ownerID)
	})
}

func (e *LoanEngine) SyncFromRemote(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

func (e *LoanEngine) PerformFullSync(ctx context.Context, ownerID string) (domain.SyncResult, error) {
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

func (e *LoanEngine) push(ctx context.Context, ownerID string) (domain.SyncResult, error) {
	var res domain.SyncResult
	now := time.Now().UTC()

	deleted, err := e.loans.ListDeletedNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list deleted loans: %w", err)
	}
	for i := range deleted {
		l := &deleted[i]
		if l.RemoteID == nil {
			if err := e.loans.Purge(ctx, l.ID); err != nil {
				return res, fmt.Errorf("purge loan %s: %w", l.ID, err)
			}
			res.Pushed.Succeeded++
			continue
		}
		if err := e.client.DeleteLoan(ctx, *l.RemoteID); err != nil && !isGone(err) {
			logger.Warn("loan delete not acknowledged", "loan", l.ID, "error", err)
			note(&res.Pushed, &res.FirstError, err)
			continue
		}
		if err := e.loans.Purge(ctx, l.ID); err != nil {
			return res, fmt.Errorf("purge loan %s: %w", l.ID, err)
		}
		res.Pushed.Succeeded++
	}

	pending, err := e.loans.ListNeedingSync(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("list pending loans: %w", err)
	}
	for i := range pending {
		l := &pending[i]

		if l.RemoteID != nil {
			if err := e.pushUpdate(ctx, l); err != nil {
				logger.Warn("loan update failed", "loan", l.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			l.MarkSynced(*l.RemoteID, now)
		} else {
			created, err := e.client.CreateLoan(ctx, mapper.LoanToWire(l))
			if err != nil {
				logger.Warn("loan create failed", "loan", l.ID, "error", err)
				note(&res.Pushed, &res.FirstError, err)
				continue
			}
			if created == nil || created.ID == 0 {
				note(&res.Pushed, &res.FirstError, errors.New("create response missing id"))
				continue
			}
			// adopt the server's item ids assigned at creation
			adoptLoanItemIDs(l, created)
			l.MarkSynced(created.ID, now)
		}
		if err := e.loans.Update(ctx, l); err != nil {
			return res, fmt.Errorf("mark loan synced %s: %w", l.ID, err)
		}
		res.Pushed.Succeeded++
	}
	return res, nil
}

// pushUpdate sends the status change and the mutable loan fields. Status
// and return date travel on the status endpoint; deadline and item changes
// on the update endpoint. The status change is validated against the
// server's current status before it is sent.
func (e *LoanEngine) pushUpdate(ctx context.Context, l *domain.Loan) error {
	current, err := e.client.GetLoan(ctx, *l.RemoteID)
	if err != nil {
		return err
	}
	if remoteStatus := mapper.LoanStatusFromWire(current.Status); remoteStatus != l.Status {
		if !domain.CanTransition(remoteStatus, l.Status) {
			return fmt.Errorf("loan %s: status %s may not move to %s", l.ID, remoteStatus, l.Status)
		}
		statusReq := &remote.LoanStatusRequest{
			Status:     mapper.LoanStatusToWire(l.Status),
			ReturnDate: mapper.DisplayToWire(l.ReturnDate),
		}
		if _, err := e.client.UpdateLoanStatus(ctx, *l.RemoteID, statusReq); err != nil {
			return err
		}
	}

	updateReq := &remote.LoanUpdateRequest{DueDate: mapper.DisplayToWire(l.DueDate)}
	for _, li := range l.Items {
		if li.InventoryRemoteID == nil {
			continue
		}
		updateReq.Items = append(updateReq.Items, remote.LoanItemRequest{
			InventoryID: *li.InventoryRemoteID,
			Quantity:    li.Quantity,
		})
	}
	_, err = e.client.UpdateLoan(ctx, *l.RemoteID, updateReq)
	return err
}

func adoptLoanItemIDs(l *domain.Loan, created *remote.Loan) {
	for i := range l.Items {
		li := &l.Items[i]
		if li.RemoteID != nil || li.InventoryRemoteID == nil {
			continue
		}
		for j := range created.Items {
			ci := &created.Items[j]
			if ci.InventoryID != nil && *ci.InventoryID == *li.InventoryRemoteID {
				id := ci.ID
				li.RemoteID = &id
				break
			}
		}
	}
}

func (e *LoanEngine) pull(ctx context.Context, ownerID string) (int, error) {
	wireLoans, err := e.client.ListLoans(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("fetch loans: %w", err)
	}

	present := make(map[int64]bool, len(wireLoans))
	for i := range wireLoans {
		present[wireLoans[i].ID] = true
	}

	withRemote, err := e.loans.ListWithRemoteID(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list local loans: %w", err)
	}
	for i := range withRemote {
		l := &withRemote[i]
		if l.NeedsSync || present[*l.RemoteID] {
			continue
		}
		// server deleted it out-of-band; items go with the loan
		if err := e.loans.Purge(ctx, l.ID); err != nil {
			return 0, fmt.Errorf("purge remotely-deleted loan %s: %w", l.ID, err)
		}
	}

	now := time.Now().UTC()
	count := 0
	for i := range wireLoans {
		w := &wireLoans[i]
		existing, err := e.loans.GetByRemoteID(ctx, ownerID, w.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return count, fmt.Errorf("lookup loan by remote id: %w", err)
		}

		hydrated := mapper.LoanFromWire(w, existing, ownerID, e.client.Origin(), now)
		switch {
		case existing != nil && existing.NeedsSync:
			mapper.BackfillLoan(existing, hydrated)
			if err := e.loans.Update(ctx, existing); err != nil {
				return count, fmt.Errorf("backfill loan %s: %w", existing.ID, err)
			}
		case existing != nil && loanContentEqual(existing, hydrated):
			// unchanged
		default:
			if err := e.loans.Upsert(ctx, hydrated); err != nil {
				return count, fmt.Errorf("upsert loan %s: %w", hydrated.ID, err)
			}
		}
		count++
	}
	return count, nil
}

func loanContentEqual(a, b *domain.Loan) bool {
	if a.BorrowerName != b.BorrowerName || a.BorrowerPhone != b.BorrowerPhone ||
		a.LoanDate != b.LoanDate || a.DueDate != b.DueDate || a.ReturnDate != b.ReturnDate ||
		a.Status != b.Status || a.IsDeleted || b.IsDeleted || len(a.Items) != len(b.Items) {
		return false
	}
	// local items load in id order, wire items in server order; match by
	// the server-assigned item id
	byRemote := make(map[int64]*domain.LoanItem, len(a.Items))
	for i := range a.Items {
		ai := &a.Items[i]
		if ai.RemoteID == nil {
			return false
		}
		byRemote[*ai.RemoteID] = ai
	}
	for i := range b.Items {
		bi := &b.Items[i]
		if bi.RemoteID == nil {
			return false
		}
		ai, ok := byRemote[*bi.RemoteID]
		if !ok || ai.ItemName != bi.ItemName || ai.ItemCode != bi.ItemCode ||
			ai.Quantity != bi.Quantity || ai.BorrowPhotoURL != bi.BorrowPhotoURL ||
			ai.ReturnPhotoURL != bi.ReturnPhotoURL {
			return false
		}
	}
	return true
}
