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

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanCols = `id, remote_id, owner_id, borrower_name, borrower_phone, loan_date,
	due_date, return_date, status, is_deleted, needs_sync, is_synced, last_modified`

const loanItemCols = `id, loan_id, remote_id, inventory_remote_id, item_name, item_code,
	quantity, borrow_photo_url, return_photo_url`

func scanLoan(scanner interface{ Scan(...any) error }) (*domain.Loan, error) {
	var (
		l        domain.Loan
		remoteID sql.NullInt64
	)
	err := scanner.Scan(&l.ID, &remoteID, &l.OwnerID, &l.BorrowerName, &l.BorrowerPhone,
		&l.LoanDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.IsDeleted, &l.NeedsSync,
		&l.IsSynced, &l.LastModified)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		l.RemoteID = &remoteID.Int64
	}
	return &l, nil
}

func (r *loanRepository) loadItems(ctx context.Context, loanID string) ([]domain.LoanItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanItemCols+` FROM loan_items WHERE loan_id = ? ORDER BY id`, loanID)
	if err != nil {
		return nil, fmt.Errorf("list loan items: %w", err)
	}
	defer rows.Close()

	var items []domain.LoanItem
	for rows.Next() {
		var (
			li                  domain.LoanItem
			remoteID, invRemote sql.NullInt64
		)
		err := rows.Scan(&li.ID, &li.LoanID, &remoteID, &invRemote, &li.ItemName,
			&li.ItemCode, &li.Quantity, &li.BorrowPhotoURL, &li.ReturnPhotoURL)
		if err != nil {
			return nil, fmt.Errorf("scan loan item: %w", err)
		}
		if remoteID.Valid {
			li.RemoteID = &remoteID.Int64
		}
		if invRemote.Valid {
			li.InventoryRemoteID = &invRemote.Int64
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// saveItems replaces the loan's item rows with the given set.
func (r *loanRepository) saveItems(ctx context.Context, tx *sql.Tx, loanID string, items []domain.LoanItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM loan_items WHERE loan_id = ?`, loanID); err != nil {
		return fmt.Errorf("clear loan items: %w", err)
	}
	for i := range items {
		li := &items[i]
		li.LoanID = loanID
		_, err := tx.ExecContext(ctx, `INSERT INTO loan_items (`+loanItemCols+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			li.ID, li.LoanID, li.RemoteID, li.InventoryRemoteID, li.ItemName, li.ItemCode,
			li.Quantity, li.BorrowPhotoURL, li.ReturnPhotoURL)
		if err != nil {
			return fmt.Errorf("insert loan item: %w", err)
		}
	}
	return nil
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	if l.LastModified.IsZero() {
		l.LastModified = time.Now().UTC()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO loans (`+loanCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.RemoteID, l.OwnerID, l.BorrowerName, l.BorrowerPhone, l.LoanDate,
		l.DueDate, l.ReturnDate, l.Status, l.IsDeleted, l.NeedsSync, l.IsSynced, l.LastModified)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	if err := r.saveItems(ctx, tx, l.ID, l.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *loanRepository) getWhere(ctx context.Context, where string, args ...any) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+loanCols+` FROM loans WHERE `+where, args...)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	l.Items, err = r.loadItems(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	return r.getWhere(ctx, `id = ?`, id)
}

func (r *loanRepository) GetByRemoteID(ctx context.Context, ownerID string, remoteID int64) (*domain.Loan, error) {
	return r.getWhere(ctx, `owner_id = ? AND remote_id = ?`, ownerID, remoteID)
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE loans SET remote_id=?, borrower_name=?, borrower_phone=?,
		loan_date=?, due_date=?, return_date=?, status=?, is_deleted=?, needs_sync=?,
		is_synced=?, last_modified=? WHERE id=?`,
		l.RemoteID, l.BorrowerName, l.BorrowerPhone, l.LoanDate, l.DueDate, l.ReturnDate,
		l.Status, l.IsDeleted, l.NeedsSync, l.IsSynced, l.LastModified, l.ID)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if err := r.saveItems(ctx, tx, l.ID, l.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *loanRepository) Upsert(ctx context.Context, l *domain.Loan) error {
	_, err := r.GetByID(ctx, l.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return r.Create(ctx, l)
	}
	if err != nil {
		return err
	}
	return r.Update(ctx, l)
}

func (r *loanRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE loans SET is_deleted=1, needs_sync=1, is_synced=0, last_modified=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func (r *loanRepository) Purge(ctx context.Context, id string) error {
	// loan_items rows go with the loan via FK cascade
	_, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
	return err
}

func (r *loanRepository) list(ctx context.Context, query string, args ...any) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Items, err = r.loadItems(ctx, loans[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return loans, nil
}

func (r *loanRepository) List(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanCols+` FROM loans
		WHERE owner_id = ? AND is_deleted = 0 ORDER BY last_modified DESC`, ownerID)
}

func (r *loanRepository) ListByStatus(ctx context.Context, ownerID string, status domain.LoanStatus) ([]domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanCols+` FROM loans
		WHERE owner_id = ? AND status = ? AND is_deleted = 0 ORDER BY last_modified DESC`, ownerID, status)
}

func (r *loanRepository) ListNeedingSync(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanCols+` FROM loans
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 0 ORDER BY last_modified`, ownerID)
}

func (r *loanRepository) ListDeletedNeedingSync(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanCols+` FROM loans
		WHERE owner_id = ? AND needs_sync = 1 AND is_deleted = 1 ORDER BY last_modified`, ownerID)
}

func (r *loanRepository) ListWithRemoteID(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanCols+` FROM loans
		WHERE owner_id = ? AND remote_id IS NOT NULL ORDER BY remote_id`, ownerID)
}
