package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatusIsTerminal(t *testing.T) {
	assert.False(t, LoanStatusWaiting.IsTerminal())
	assert.False(t, LoanStatusBorrowed.IsTerminal())
	assert.True(t, LoanStatusCompleted.IsTerminal())
	assert.True(t, LoanStatusOverdue.IsTerminal())
	assert.True(t, LoanStatusRejected.IsTerminal())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(LoanStatusWaiting, LoanStatusBorrowed))
	assert.True(t, CanTransition(LoanStatusWaiting, LoanStatusRejected))
	assert.True(t, CanTransition(LoanStatusBorrowed, LoanStatusCompleted))
	assert.True(t, CanTransition(LoanStatusBorrowed, LoanStatusOverdue))

	assert.False(t, CanTransition(LoanStatusBorrowed, LoanStatusWaiting), "no going back")
	assert.False(t, CanTransition(LoanStatusCompleted, LoanStatusBorrowed), "terminal is final")
	assert.False(t, CanTransition(LoanStatusOverdue, LoanStatusCompleted))
	assert.False(t, CanTransition(LoanStatusWaiting, LoanStatusWaiting), "self transition")
}

func TestLoanSyncFlagInvariant(t *testing.T) {
	now := time.Now()
	l := &Loan{}

	l.MarkPending(now)
	assert.True(t, l.NeedsSync)
	assert.False(t, l.IsSynced)

	l.MarkSynced(42, now)
	assert.False(t, l.NeedsSync)
	assert.True(t, l.IsSynced)
	assert.Equal(t, int64(42), *l.RemoteID)
}
