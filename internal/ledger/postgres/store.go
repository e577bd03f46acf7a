// Package postgres implements the ledger store backed by PostgreSQL. The
// primary-key constraint on the address column is what enforces the
// at-most-one allocation guarantee under concurrent writers.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

const uniqueViolation = "23505"

// Store implements ledger.Store on a PostgreSQL database.
type Store struct {
	db *sqlx.DB
}

var _ ledger.Store = (*Store)(nil)

// Open connects to PostgreSQL and runs pending migrations.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle without running migrations.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type accountRow struct {
	Address   string    `db:"address"`
	Data      []byte    `db:"data"`
	Payer     string    `db:"payer"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Allocate inserts a new account row. A primary-key conflict maps to
// ledger.ErrAlreadyAllocated.
func (s *Store) Allocate(ctx context.Context, acct ledger.Account) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settlement_accounts (address, data, payer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, acct.Address.String(), acct.Data, acct.Payer.String(), now, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ledger.ErrAlreadyAllocated
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get returns the account at addr.
func (s *Store) Get(ctx context.Context, addr pda.Address) (ledger.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, `
		SELECT address, data, payer, created_at, updated_at
		FROM settlement_accounts
		WHERE address = $1
	`, addr.String())
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("select account: %w", err)
	}

	payer, err := pda.Parse(row.Payer)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("decode payer: %w", err)
	}
	return ledger.Account{
		Address:   addr,
		Data:      row.Data,
		Payer:     payer,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Exists reports whether an account is allocated at addr.
func (s *Store) Exists(ctx context.Context, addr pda.Address) (bool, error) {
	var found bool
	err := s.db.GetContext(ctx, &found, `
		SELECT EXISTS (SELECT 1 FROM settlement_accounts WHERE address = $1)
	`, addr.String())
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return found, nil
}

// Update rewrites the data of an existing account.
func (s *Store) Update(ctx context.Context, addr pda.Address, data []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE settlement_accounts
		SET data = $2, updated_at = $3
		WHERE address = $1
	`, addr.String(), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Remove deletes the account at addr.
func (s *Store) Remove(ctx context.Context, addr pda.Address) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM settlement_accounts WHERE address = $1
	`, addr.String())
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
