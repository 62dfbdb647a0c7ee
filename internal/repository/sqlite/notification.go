package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationCols = `id, remote_id, owner_id, title, message, fired_at, fired_day, status,
	loan_remote_id, reminder_id, reminder_remote_id, locally_created, needs_sync, is_synced, last_modified`

func scanNotification(scanner interface{ Scan(...any) error }) (*domain.NotificationHistoryEntry, error) {
	var (
		n                            domain.NotificationHistoryEntry
		remoteID, loanRem, remindRem sql.NullInt64
		firedDay                     string
	)
	err := scanner.Scan(&n.ID, &remoteID, &n.OwnerID, &n.Title, &n.Message, &n.FiredAt,
		&firedDay, &n.Status, &loanRem, &n.ReminderID, &remindRem, &n.LocallyCreated,
		&n.NeedsSync, &n.IsSynced, &n.LastModified)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		n.RemoteID = &remoteID.Int64
	}
	if loanRem.Valid {
		n.LoanRemoteID = &loanRem.Int64
	}
	if remindRem.Valid {
		n.ReminderRemoteID = &remindRem.Int64
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.NotificationHistoryEntry) error {
	if n.LastModified.IsZero() {
		n.LastModified = time.Now().UTC()
	}
	query := `INSERT INTO notification_history (` + notificationCols + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.RemoteID, n.OwnerID, n.Title, n.Message,
		n.FiredAt, n.FiredDay(), n.Status, n.LoanRemoteID, n.ReminderID, n.ReminderRemoteID,
		n.LocallyCreated, n.NeedsSync, n.IsSynced, n.LastModified)
	return err
}

func (r *notificationRepository) getWhere(ctx context.Context, where string, args ...any) (*domain.NotificationHistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationCols+` FROM notification_history WHERE `+where, args...)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.NotificationHistoryEntry, error) {
	return r.getWhere(ctx, `id = ?`, id)
}

func (r *notificationRepository) GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.NotificationHistoryEntry, error) {
	return r.getWhere(ctx, `owner_id = ? AND remote_id = ?`, ownerID, remoteID)
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.NotificationHistoryEntry) error {
	query := `UPDATE notification_history SET remote_id=?, title=?, message=?, fired_at=?,
	          fired_day=?, status=?, loan_remote_id=?, reminder_id=?, reminder_remote_id=?,
	          locally_created=?, needs_sync=?, is_synced=?, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, n.RemoteID, n.Title, n.Message, n.FiredAt,
		n.FiredDay(), n.Status, n.LoanRemoteID, n.ReminderID, n.ReminderRemoteID,
		n.LocallyCreated, n.NeedsSync, n.IsSynced, n.LastModified, n.ID)
	return err
}

func (r *notificationRepository) Upsert(ctx context.Context, n *domain.NotificationHistoryEntry) error {
	_, err := r.GetByID(ctx, n.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.Create(ctx, n)
	}
	if err != nil {
		return err
	}
	return r.Update(ctx, n)
}

func (r *notificationRepository) Purge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notification_history WHERE id = ?`, id)
	return err
}

func (r *notificationRepository) list(ctx context.Context, query string, args ...any) ([]domain.NotificationHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var entries []domain.NotificationHistoryEntry
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		entries = append(entries, *n)
	}
	return entries, rows.Err()
}

func (r *notificationRepository) List(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error) {
	return r.list(ctx, `SELECT `+notificationCols+` FROM notification_history
		WHERE owner_id = ? ORDER BY fired_at DESC`, ownerID)
}

func (r *notificationRepository) ListNeedingSync(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error) {
	return r.list(ctx, `SELECT `+notificationCols+` FROM notification_history
		WHERE owner_id = ? AND needs_sync = 1 ORDER BY fired_at`, ownerID)
}

func (r *notificationRepository) ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.NotificationHistoryEntry, error) {
	return r.list(ctx, `SELECT `+notificationCols+` FROM notification_history
		WHERE owner_id = ? AND remote_id IS NOT NULL ORDER BY remote_id`, ownerID)
}

func (r *notificationRepository) FindByReminderForDay(ctx context.Context, ownerID, reminderID, day string) (*domain.NotificationHistoryEntry, error) {
	return r.getWhere(ctx, `owner_id = ? AND reminder_id = ? AND reminder_id != '' AND fired_day = ?`,
		ownerID, reminderID, day)
}

func (r *notificationRepository) FindByReminderRemoteIDForDay(ctx context.Context, ownerID string, reminderRemoteID int64, day string) (*domain.NotificationHistoryEntry, error) {
	return r.getWhere(ctx, `owner_id = ? AND reminder_remote_id = ? AND fired_day = ?`,
		ownerID, reminderRemoteID, day)
}

func (r *notificationRepository) FindByTextForDay(ctx context.Context, ownerID, title, message, day string) (*domain.NotificationHistoryEntry, error) {
	return r.getWhere(ctx, `owner_id = ? AND title = ? AND message = ? AND fired_day = ?`,
		ownerID, title, message, day)
}
