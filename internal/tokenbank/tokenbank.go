// Package tokenbank provides core balance management for settlement.
//
// This is NOT a service but core infrastructure: the engine debits buyers
// and credits the hot wallet through it. Balances are keyed by (mint,
// holder) and every movement is journaled for audit.
package tokenbank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

var (
	ErrInsufficientBalance = errors.New("tokenbank: insufficient balance")
	ErrTransferNotAllowed  = errors.New("tokenbank: authority does not own the source account")
	ErrInvalidAmount       = errors.New("tokenbank: amount must be positive")
)

// TxType labels a journal entry.
type TxType string

const (
	TxTypeMint     TxType = "mint"
	TxTypeTransfer TxType = "transfer"
)

// Transaction is one journaled balance movement.
type Transaction struct {
	ID        string      `json:"id"`
	Type      TxType      `json:"type"`
	Mint      pda.Address `json:"mint"`
	From      pda.Address `json:"from,omitempty"`
	To        pda.Address `json:"to"`
	Amount    uint64      `json:"amount"`
	CreatedAt time.Time   `json:"created_at"`
}

type balanceKey struct {
	mint   pda.Address
	holder pda.Address
}

// Bank tracks token balances per (mint, holder) pair.
type Bank struct {
	mu       sync.RWMutex
	balances map[balanceKey]uint64
	journal  []Transaction
}

// New creates an empty bank.
func New() *Bank {
	return &Bank{
		balances: make(map[balanceKey]uint64),
	}
}

// Balance returns the holder's balance for a mint. Unknown pairs are zero.
func (b *Bank) Balance(_ context.Context, mint, holder pda.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[balanceKey{mint, holder}]
}

// Mint credits new units to a holder. Used to fund accounts from deposits
// observed off-process.
func (b *Bank) Mint(_ context.Context, mint, holder pda.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := balanceKey{mint, holder}
	if b.balances[key]+amount < b.balances[key] {
		return fmt.Errorf("tokenbank: balance overflow for %s", holder)
	}
	b.balances[key] += amount
	b.journal = append(b.journal, Transaction{
		ID:        uuid.New().String(),
		Type:      TxTypeMint,
		Mint:      mint,
		To:        holder,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Transfer moves amount between holders. The authority must own the source
// account; there are no delegated approvals.
func (b *Bank) Transfer(_ context.Context, mint, from, to pda.Address, amount uint64, authority pda.Address) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if authority != from {
		return ErrTransferNotAllowed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromKey := balanceKey{mint, from}
	if b.balances[fromKey] < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, b.balances[fromKey], amount)
	}
	toKey := balanceKey{mint, to}
	if b.balances[toKey]+amount < b.balances[toKey] {
		return fmt.Errorf("tokenbank: balance overflow for %s", to)
	}

	b.balances[fromKey] -= amount
	b.balances[toKey] += amount
	b.journal = append(b.journal, Transaction{
		ID:        uuid.New().String(),
		Type:      TxTypeTransfer,
		Mint:      mint,
		From:      from,
		To:        to,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Transactions returns a copy of the journal, newest last.
func (b *Bank) Transactions(_ context.Context) []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Transaction, len(b.journal))
	copy(out, b.journal)
	return out
}
