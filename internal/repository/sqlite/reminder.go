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

type reminderRepository struct {
	db *sql.DB
}

func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

const reminderCols = `id, remote_id, owner_id, type, title, periodic_months, scheduled_at,
	push_token, active, last_fired_at, created_at, is_deleted, needs_sync, is_synced, last_modified`

func scanReminder(scanner interface{ Scan(...any) error }) (*domain.ReminderSetting, error) {
	var (
		rem                            domain.ReminderSetting
		remoteID, scheduled, lastFired sql.NullInt64
	)
	err := scanner.Scan(&rem.ID, &remoteID, &rem.OwnerID, &rem.Type, &rem.Title,
		&rem.PeriodicMonths, &scheduled, &rem.PushToken, &rem.Active, &lastFired,
		&rem.CreatedAt, &rem.IsDeleted, &rem.NeedsSync, &rem.IsSynced, &rem.LastModified)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		rem.RemoteID = &remoteID.Int64
	}
	if scheduled.Valid {
		rem.ScheduledAt = &scheduled.Int64
	}
	if lastFired.Valid {
		rem.LastFiredAt = &lastFired.Int64
	}
	return &rem, nil
}

func (r *reminderRepository) Create(ctx context.Context, rem *domain.ReminderSetting) error {
	now := time.Now().UTC()
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = now
	}
	if rem.LastModified.IsZero() {
		rem.LastModified = now
	}
	query := `INSERT INTO reminder_settings (` + reminderCols + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, rem.ID, rem.RemoteID, rem.OwnerID, rem.Type,
		rem.Title, rem.PeriodicMonths, rem.ScheduledAt, rem.PushToken, rem.Active,
		rem.LastFiredAt, rem.CreatedAt, rem.IsDeleted, rem.NeedsSync, rem.IsSynced, rem.LastModified)
	return err
}

func (r *reminderRepository) getWhere(ctx context.Context, where string, args ...any) (*domain.ReminderSetting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reminderCols+` FROM reminder_settings WHERE `+where, args...)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id string) (*domain.ReminderSetting, error) {
	return r.getWhere(ctx, `id = ?`, id)
}

func (r *reminderRepository) GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.ReminderSetting, error) {
	return r.getWhere(ctx, `owner_id = ? AND remote_id = ?`, ownerID, remoteID)
}

func (r *reminderRepository) Update(ctx context.Context, rem *domain.ReminderSetting) error {
	query := `UPDATE reminder_settings SET remote_id=?, type=?, title=?, periodic_months=?,
	          scheduled_at=?, push_token=?, active=?, last_fired_at=?, is_deleted=?,
	          needs_sync=?, is_synced=?, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, rem.RemoteID, rem.Type, rem.Title,
		rem.PeriodicMonths, rem.ScheduledAt, rem.PushToken, rem.Active, rem.LastFiredAt,
		rem.IsDeleted, rem.NeedsSync, rem.IsSynced, rem.LastModified, rem.ID)
	return err
}

func (r *reminderRepository) Upsert(ctx context.Context, rem *domain.ReminderSetting) error {
	_, err := r.GetByID(ctx, rem.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.Create(ctx, rem)
	}
	if err != nil {
		return err
	}
	return r.Update(ctx, rem)
}

func (r *reminderRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE reminder_settings SET is_deleted=1, needs_sync=1, is_synced=0, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func (r *reminderRepository) Purge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminder_settings WHERE id = ?`, id)
	return err
}

func (r *reminderRepository) list(ctx context.Context, query string, args ...any) ([]domain.ReminderSetting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var rems []domain.ReminderSetting
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		rems = append(rems, *rem)
	}
	return rems, rows.Err()
}

func (r *reminderRepository) List(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error) {
	return r.list(ctx, `SELECT `+reminderCols+` FROM reminder_settings
		WHERE owner_id = ? AND is_deleted = 0 ORDER BY created_at`, ownerID)
}

func (r *reminderRepository) ListActive(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error) {
	return r.list(ctx, `SELECT `+reminderCols+` FROM reminder_settings
		WHERE owner_id = ? AND active = 1 AND is_deleted = 0 ORDER BY created_at`, ownerID)
}

func (r *reminderRepository) ListNeedingSync(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error) {
	return r.list(ctx, `SELECT `+reminderCols+` FROM reminder_settings
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 0 ORDER BY last_modified`, ownerID)
}

func (r *reminderRepository) ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error) {
	return r.list(ctx, `SELECT `+reminderCols+` FROM reminder_settings
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 1 ORDER BY last_modified`, ownerID)
}

func (r *reminderRepository) ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.ReminderSetting, error) {
	return r.list(ctx, `SELECT `+reminderCols+` FROM reminder_settings
		WHERE owner_id = ? AND remote_id IS NOT NULL ORDER BY remote_id`, ownerID)
}
