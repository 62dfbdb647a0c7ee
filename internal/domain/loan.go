package domain

import "time"

type LoanStatus string

const (
	LoanStatusWaiting   LoanStatus = "WAITING"
	LoanStatusBorrowed  LoanStatus = "BORROWED"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusOverdue   LoanStatus = "OVERDUE"
	LoanStatusRejected  LoanStatus = "REJECTED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s LoanStatus) IsTerminal() bool {
	switch s {
	case LoanStatusCompleted, LoanStatusOverdue, LoanStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a loan may move from one status to another.
// Waiting and Borrowed may progress; terminal statuses may not change.
func CanTransition(from, to LoanStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case LoanStatusWaiting:
		return to == LoanStatusBorrowed || to == LoanStatusCompleted ||
			to == LoanStatusOverdue || to == LoanStatusRejected
	case LoanStatusBorrowed:
		return to == LoanStatusCompleted || to == LoanStatusOverdue || to == LoanStatusRejected
	}
	return false
}

// Loan is the aggregate root for a borrow record. Items are always loaded
// and stored together with their loan.
type Loan struct {
	ID            string     `json:"id"`
	RemoteID      *int64     `json:"remote_id,omitempty"`
	OwnerID       string     `json:"owner_id"`
	BorrowerName  string     `json:"borrower_name"`
	BorrowerPhone string     `json:"borrower_phone"`
	LoanDate      string     `json:"loan_date"` // display format
	DueDate       string     `json:"due_date"`
	ReturnDate    string     `json:"return_date,omitempty"` // empty until returned
	Status        LoanStatus `json:"status"`
	Items         []LoanItem `json:"items"`
	IsDeleted     bool       `json:"is_deleted"`
	NeedsSync     bool       `json:"needs_sync"`
	IsSynced      bool       `json:"is_synced"`
	LastModified  time.Time  `json:"last_modified"`
}

// LoanItem is a line item of a loan, snapshotting the inventory item's name
// and code at loan creation time.
type LoanItem struct {
	ID                string `json:"id"`
	LoanID            string `json:"loan_id"`
	RemoteID          *int64 `json:"remote_id,omitempty"`
	InventoryRemoteID *int64 `json:"inventory_remote_id,omitempty"`
	ItemName          string `json:"item_name"`
	ItemCode          string `json:"item_code"`
	Quantity          int    `json:"quantity"`
	BorrowPhotoURL    string `json:"borrow_photo_url"`
	ReturnPhotoURL    string `json:"return_photo_url"`
}

func (l *Loan) MarkPending(now time.Time) {
	l.NeedsSync = true
	l.IsSynced = false
	l.LastModified = now
}

func (l *Loan) MarkSynced(remoteID int64, now time.Time) {
	if l.RemoteID == nil {
		l.RemoteID = &remoteID
	}
	l.NeedsSync = false
	l.IsSynced = true
	l.LastModified = now
}
