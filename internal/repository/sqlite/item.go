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

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemCols = `id, remote_id, owner_id, name, code, quantity, category, condition,
	location, description, acquired_on, photo_url, is_deleted, needs_sync, is_synced, last_modified`

func scanItem(scanner interface{ Scan(...any) error }) (*domain.InventoryItem, error) {
	var (
		it       domain.InventoryItem
		remoteID sql.NullInt64
	)
	err := scanner.Scan(&it.ID, &remoteID, &it.OwnerID, &it.Name, &it.Code, &it.Quantity,
		&it.Category, &it.Condition, &it.Location, &it.Description, &it.AcquiredOn,
		&it.PhotoURL, &it.IsDeleted, &it.NeedsSync, &it.IsSynced, &it.LastModified)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		it.RemoteID = &remoteID.Int64
	}
	return &it, nil
}

func (r *itemRepository) Create(ctx context.Context, it *domain.InventoryItem) error {
	if it.LastModified.IsZero() {
		it.LastModified = time.Now().UTC()
	}
	query := `INSERT INTO inventory_items (` + itemCols + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, it.ID, it.RemoteID, it.OwnerID, it.Name, it.Code,
		it.Quantity, it.Category, it.Condition, it.Location, it.Description, it.AcquiredOn,
		it.PhotoURL, it.IsDeleted, it.NeedsSync, it.IsSynced, it.LastModified)
	return mapConstraintErr(err)
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM inventory_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *itemRepository) GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemCols+` FROM inventory_items WHERE owner_id = ? AND remote_id = ?`, ownerID, remoteID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item by remote id: %w", err)
	}
	return it, nil
}

func (r *itemRepository) GetByCode(ctx context.Context, ownerID, code string) (*domain.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemCols+` FROM inventory_items WHERE owner_id = ? AND code = ? AND is_deleted = 0`, ownerID, code)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item by code: %w", err)
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.InventoryItem) error {
	query := `UPDATE inventory_items SET remote_id=?, name=?, code=?, quantity=?, category=?,
	          condition=?, location=?, description=?, acquired_on=?, photo_url=?,
	          is_deleted=?, needs_sync=?, is_synced=?, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, it.RemoteID, it.Name, it.Code, it.Quantity,
		it.Category, it.Condition, it.Location, it.Description, it.AcquiredOn, it.PhotoURL,
		it.IsDeleted, it.NeedsSync, it.IsSynced, it.LastModified, it.ID)
	return mapConstraintErr(err)
}

func (r *itemRepository) Upsert(ctx context.Context, it *domain.InventoryItem) error {
	_, err := r.GetByID(ctx, it.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.Create(ctx, it)
	}
	if err != nil {
		return err
	}
	return r.Update(ctx, it)
}

func (r *itemRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE inventory_items SET is_deleted=1, needs_sync=1, is_synced=0, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func (r *itemRepository) Purge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	return err
}

func (r *itemRepository) list(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *itemRepository) List(ctx context.Context, ownerID string) ([]domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+itemCols+` FROM inventory_items
		WHERE owner_id = ? AND is_deleted = 0 ORDER BY name`, ownerID)
}

func (r *itemRepository) ListNeedingSync(ctx context.Context, ownerID string) ([]domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+itemCols+` FROM inventory_items
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 0 ORDER BY last_modified`, ownerID)
}

func (r *itemRepository) ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+itemCols+` FROM inventory_items
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 1 ORDER BY last_modified`, ownerID)
}

func (r *itemRepository) ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+itemCols+` FROM inventory_items
		WHERE owner_id = ? AND remote_id IS NOT NULL ORDER BY remote_id`, ownerID)
}
