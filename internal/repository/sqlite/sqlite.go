package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"lendstock-sync/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store bundles the per-family repositories over one sqlite database.
type Store struct {
	db *sql.DB
	repository.ItemRepository
	repository.LoanRepository
	repository.ReminderRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		ItemRepository:         NewItemRepository(db),
		LoanRepository:         NewLoanRepository(db),
		ReminderRepository:     NewReminderRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// DB exposes the underlying handle for maintenance queries.
func (s *Store) DB() *sql.DB { return s.db }

// Open opens (creating if needed) the local database at path and brings the
// schema up to date.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Loan item purging relies on FK cascades; enforce regardless of DSN.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// mapConstraintErr translates the driver's unique-violation error on the
// (owner_id, code) index into ErrDuplicateCode.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repository.ErrDuplicateCode
	}
	return err
}
