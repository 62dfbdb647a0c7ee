// Package sync reconciles the local store with the remote backend, one
// entity family at a time. Push always precedes pull so freshly-assigned
// remote ids suppress false remote-deletion detection, and pending local
// changes always win over a concurrent pull.
package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"lendstock-sync/internal/domain"
)

var (
	// ErrInFlight is returned when a sync pass for the family is already
	// running; callers treat it as a coalesced no-op.
	ErrInFlight = errors.New("sync: pass already in flight")

	// ErrOwnerRequired rejects unauthenticated calls before any network or
	// local mutation.
	ErrOwnerRequired = errors.New("sync: owner id required")
)

// engineState carries the pieces every family engine shares: the in-flight
// guard and the last observable result.
type engineState struct {
	family  string
	syncing atomic.Bool

	mu   sync.Mutex
	last domain.SyncResult
}

// Family names the entity family this engine reconciles.
func (s *engineState) Family() string { return s.family }

// IsSyncing reports whether a pass for this family is in flight.
func (s *engineState) IsSyncing() bool { return s.syncing.Load() }

// LastResult returns the most recent completed pass result.
func (s *engineState) LastResult() domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// run guards fn with the in-flight flag and records its result.
func (s *engineState) run(ownerID string, fn func() (domain.SyncResult, error)) (domain.SyncResult, error) {
	if ownerID == "" {
		return domain.SyncResult{Family: s.family}, ErrOwnerRequired
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return domain.SyncResult{Family: s.family}, ErrInFlight
	}
	defer s.syncing.Store(false)

	res, err := fn()
	res.Family = s.family
	res.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, err
}

// skipped is the local-only outcome when the remote is unreachable.
func skipped() (domain.SyncResult, error) {
	return domain.SyncResult{Skipped: true}, nil
}

// note records a row failure into a tally, keeping the first message for
// foreground surfacing.
func note(t *domain.SyncTally, firstErr *string, err error) {
	t.Failed++
	if *firstErr == "" && err != nil {
		*firstErr = err.Error()
	}
}

// Engine is the per-family surface the jobs and the control API consume.
type Engine interface {
	Family() string
	IsSyncing() bool
	LastResult() domain.SyncResult
	SyncToRemote(ctx context.Context, ownerID string) (domain.SyncResult, error)
	SyncFromRemote(ctx context.Context, ownerID string) (domain.SyncResult, error)
	PerformFullSync(ctx context.Context, ownerID string) (domain.SyncResult, error)
}
