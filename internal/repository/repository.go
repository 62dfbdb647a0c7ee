package repository

import (
	"context"
	"errors"

	"lendstock-sync/internal/domain"
)

// ErrNotFound is returned by Get-style lookups when no row matches.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateCode is returned when creating or updating an inventory item
// would violate code uniqueness among non-deleted items of the same owner.
var ErrDuplicateCode = errors.New("repository: duplicate item code")

type ItemRepository interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	GetByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.InventoryItem, error)
	GetByCode(ctx context.Context, ownerID, code string) (*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	Upsert(ctx context.Context, item *domain.InventoryItem) error
	SoftDelete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]domain.InventoryItem, error)
	ListNeedingSync(ctx context.Context, ownerID string) ([]domain.InventoryItem, error)
	ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.InventoryItem, error)
	ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.InventoryItem, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	Upsert(ctx context.Context, loan *domain.Loan) error
	SoftDelete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]domain.Loan, error)
	ListByStatus(ctx context.Context, ownerID string, status domain.LoanStatus) ([]domain.Loan, error)
	ListNeedingSync(ctx context.Context, ownerID string) ([]domain.Loan, error)
	ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.Loan, error)
	ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.Loan, error)
}

type ReminderRepository interface {
	Create(ctx context.Context, rem *domain.ReminderSetting) error
	GetByID(ctx context.Context, id string) (*domain.ReminderSetting, error)
	GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.ReminderSetting, error)
	Update(ctx context.Context, rem *domain.ReminderSetting) error
	Upsert(ctx context.Context, rem *domain.ReminderSetting) error
	SoftDelete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error)
	ListActive(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error)
	ListNeedingSync(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error)
	ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error)
	ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, entry *domain.NotificationHistoryEntry) error
	GetByID(ctx context.Context, id string) (*domain.NotificationHistoryEntry, error)
	GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.NotificationHistoryEntry, error)
	Update(ctx context.Context, entry *domain.NotificationHistoryEntry) error
	Upsert(ctx context.Context, entry *domain.NotificationHistoryEntry) error
	Purge(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error)
	ListNeedingSync(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error)
	ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error)

	// Dedup lookups; day is a UTC calendar day in 2006-01-02 form. Each
	// returns ErrNotFound when no entry matches.
	FindByReminderForDay(ctx context.Context, ownerID, reminderID, day string) (*domain.NotificationHistoryEntry, error)
	FindByReminderRemoteIDForDay(ctx context.Context, ownerID string, reminderRemoteID int64, day string) (*domain.NotificationHistoryEntry, error)
	FindByTextForDay(ctx context.Context, ownerID, title, message, day string) (*domain.NotificationHistoryEntry, error)
}
