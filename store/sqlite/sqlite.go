/*
Package sqlite provides the SQLite-backed transaction store.

PURPOSE:
  Holds the purchase transactions the API serves. The store is a cache of
  whatever was imported (seed file, POST /api/transactions); it does no
  points math itself. Points are always derived on read by the rewards
  engine, so a tier change never requires a data migration.

ORDERING:
  Rows carry an autoincrement seq. Every list query orders by seq, so reads
  return transactions in the order they were first imported. Re-importing a
  transaction id updates the row in place and keeps its position.

AMOUNTS:
  amount_raw holds the amount exactly as it arrived in JSON (number, string,
  null, or garbage). Reading a row decodes it with the same permissive rules
  as an import, so a malformed amount stays malformed instead of turning
  into 0 on disk.

SCHEMA:
  Versioned migrations are embedded (migrations/*.sql) and applied with
  golang-migrate on New().

WAL MODE:
  File databases are opened with WAL so readers don't block the writer.
  ":memory:" is pinned to a single connection; every new connection to an
  in-memory database would otherwise see an empty schema.

USAGE:
  store, err := sqlite.New("./data/rewards.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  n, err := store.SaveTransactions(ctx, txs)
  all, err := store.ListTransactions(ctx)

SEE ALSO:
  - source/source.go: Store used as a transaction Source
  - model/amount.go:  Amount JSON rules
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/reward-points/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists transactions in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations. The migrate instance is not
// closed because that would close the shared *sql.DB.
func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// =============================================================================
// WRITES
// =============================================================================

// SaveTransactions upserts txs in one database transaction and returns how
// many were written. Records without a transaction id get a generated UUID.
func (s *Store) SaveTransactions(ctx context.Context, txs []model.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (transaction_id, customer_id, customer_name, amount_raw, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			customer_name = excluded.customer_name,
			amount_raw = excluded.amount_raw,
			date = excluded.date
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, tx := range txs {
		id := tx.TransactionID
		if id == "" {
			id = uuid.NewString()
		}
		amountRaw, err := json.Marshal(tx.Amount)
		if err != nil {
			return 0, fmt.Errorf("encode amount of %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx,
			id, tx.CustomerID, tx.CustomerName, string(amountRaw), tx.Date, now,
		); err != nil {
			return 0, fmt.Errorf("failed to save transaction %s: %w", id, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(txs), nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions")
	return err
}

// =============================================================================
// READS
// =============================================================================

const selectColumns = `SELECT transaction_id, customer_id, customer_name, amount_raw, date FROM transactions`

// ListTransactions returns every transaction in import order.
func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, selectColumns+` ORDER BY seq`)
}

// Transactions makes the store usable as a source.Source.
func (s *Store) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return s.ListTransactions(ctx)
}

// ListByCustomer returns one customer's transactions in import order.
func (s *Store) ListByCustomer(ctx context.Context, customerID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, selectColumns+` WHERE customer_id = ? ORDER BY seq`, customerID)
}

// GetTransaction returns a transaction by id, or nil if it does not exist.
func (s *Store) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs, err := s.queryTransactions(ctx, selectColumns+` WHERE transaction_id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

// Count returns the number of stored transactions.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n)
	return n, err
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var (
			tx        model.Transaction
			amountRaw string
		)
		if err := rows.Scan(&tx.TransactionID, &tx.CustomerID, &tx.CustomerName, &amountRaw, &tx.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Amount = model.AmountFromJSON([]byte(amountRaw))
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}
