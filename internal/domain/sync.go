package domain

import "time"

// SyncTally counts per-row outcomes of a push or pull pass. A pass fails in
// aggregate only; a single row failure never aborts the pass.
type SyncTally struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (t SyncTally) OK() bool { return t.Failed == 0 }

// SyncResult is the observable outcome of one sync pass over one entity
// family.
type SyncResult struct {
	Family     string    `json:"family"`
	Pushed     SyncTally `json:"pushed"`
	Pulled     int       `json:"pulled"`
	Skipped    bool      `json:"skipped"` // remote unreachable, nothing attempted
	FirstError string    `json:"first_error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func (r SyncResult) OK() bool { return r.Pushed.OK() }
