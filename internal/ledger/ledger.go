// Package ledger defines the insert-only account store backing settlement
// state. Every entity lives at a derived address; allocation of an address
// can succeed at most once, which is what makes order processing idempotent.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

var (
	// ErrAlreadyAllocated is returned when an address already holds an account.
	ErrAlreadyAllocated = errors.New("account already allocated")
	// ErrNotFound is returned when no account exists at an address.
	ErrNotFound = errors.New("account not found")
)

// Account is a fixed-layout record stored at a derived address.
type Account struct {
	Address   pda.Address `json:"address"`
	Data      []byte      `json:"data"`
	Payer     pda.Address `json:"payer"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store persists accounts keyed by derived address.
//
// Allocate is insert-only: it fails with ErrAlreadyAllocated if the address
// is taken. Update rewrites the data of an existing account and is used only
// for admin-owned entities (config, token registry); order records are never
// updated. Remove exists solely as the engine's compensation path when a
// transfer fails after the order address was claimed.
type Store interface {
	Allocate(ctx context.Context, acct Account) error
	Get(ctx context.Context, addr pda.Address) (Account, error)
	Exists(ctx context.Context, addr pda.Address) (bool, error)
	Update(ctx context.Context, addr pda.Address, data []byte) error
	Remove(ctx context.Context, addr pda.Address) error
	Health(ctx context.Context) error
	Close() error
}
