/*
Package sqlite provides a SQLite-backed implementation of tfc.Store.

PURPOSE:
  Persists children and their payment history. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  children:  One row per enrolled child, with the reconfirmation anchor
  payments:  Confirmed payments; money columns stored as decimal TEXT
             so nothing ever round-trips through binary floats

CASCADE:
  payments.child_id references children(id) ON DELETE CASCADE, so
  removing a child removes its history in one statement. Foreign keys
  are switched on in the DSN.

DERIVED STATE:
  There is deliberately NO "top-up received this quarter" column.
  Quarterly totals are recomputed from the payments table on read.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/tfc.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tfc/ledger.go: Store interface definition
  - tfc/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brightkite/tfc-engine/tfc"
)

// Store implements tfc.Store using SQLite.
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS children (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		date_of_birth TEXT,
		reconfirmation_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		child_id TEXT NOT NULL REFERENCES children(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		parent_paid TEXT NOT NULL,
		government_top_up TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: quarterly sums fold over one child's payments by date
	CREATE INDEX IF NOT EXISTS idx_payments_child_date
		ON payments(child_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHILDREN
// =============================================================================

func (s *Store) SaveChild(ctx context.Context, c tfc.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO children (id, name, date_of_birth, reconfirmation_date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(c.ID), c.Name, formatDate(c.DateOfBirth), formatDate(c.ReconfirmationDate),
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return tfc.ErrDuplicateID
	}
	return err
}

func (s *Store) UpdateChild(ctx context.Context, c tfc.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE children SET name = ?, date_of_birth = ?, reconfirmation_date = ?
		WHERE id = ?`,
		c.Name, formatDate(c.DateOfBirth), formatDate(c.ReconfirmationDate), string(c.ID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tfc.ErrChildNotFound
	}
	return nil
}

func (s *Store) GetChild(ctx context.Context, id tfc.ChildID) (*tfc.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, date_of_birth, reconfirmation_date, created_at
		FROM children WHERE id = ?`, string(id))

	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, tfc.ErrChildNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListChildren(ctx context.Context) ([]tfc.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date_of_birth, reconfirmation_date, created_at
		FROM children ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []tfc.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *Store) DeleteChild(ctx context.Context, id tfc.ChildID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tfc.ErrChildNotFound
	}
	// Payments cascade via the foreign key.
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) AppendPayment(ctx context.Context, p tfc.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, child_id, amount, parent_paid, government_top_up, date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.ID), string(p.ChildID),
		p.Amount.String(), p.ParentPaid.String(), p.GovernmentTopUp.String(),
		formatDate(p.Date), p.Description,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return tfc.ErrChildNotFound
		}
		if isUniqueViolation(err) {
			return tfc.ErrDuplicateID
		}
		return err
	}
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, childID tfc.ChildID, id tfc.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM payments WHERE id = ? AND child_id = ?`,
		string(id), string(childID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tfc.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, childID tfc.ChildID) ([]tfc.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, child_id, amount, parent_paid, government_top_up, date, description, created_at
		FROM payments WHERE child_id = ? ORDER BY date, id`, string(childID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []tfc.Payment
	for rows.Next() {
		var (
			id, owner             string
			amount, parent, topUp string
			date, created         string
			description           sql.NullString
		)
		if err := rows.Scan(&id, &owner, &amount, &parent, &topUp, &date, &description, &created); err != nil {
			return nil, err
		}

		p := tfc.Payment{
			ID:          tfc.PaymentID(id),
			ChildID:     tfc.ChildID(owner),
			Date:        parseDate(date),
			Description: description.String,
			CreatedAt:   parseTimestamp(created),
		}
		if p.Amount, err = tfc.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for payment %s: %w", id, err)
		}
		if p.ParentPaid, err = tfc.ParseMoney(parent); err != nil {
			return nil, fmt.Errorf("corrupt parent_paid for payment %s: %w", id, err)
		}
		if p.GovernmentTopUp, err = tfc.ParseMoney(topUp); err != nil {
			return nil, fmt.Errorf("corrupt government_top_up for payment %s: %w", id, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// SCAN / FORMAT HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (*tfc.Child, error) {
	var (
		id, name             string
		dob, reconf, created sql.NullString
	)
	if err := row.Scan(&id, &name, &dob, &reconf, &created); err != nil {
		return nil, err
	}
	return &tfc.Child{
		ID:                 tfc.ChildID(id),
		Name:               name,
		DateOfBirth:        parseDate(dob.String),
		ReconfirmationDate: parseDate(reconf.String),
		CreatedAt:          parseTimestamp(created.String),
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time check that Store implements tfc.Store.
var _ tfc.Store = (*Store)(nil)
