// Package memory provides an in-memory ledger store. It is safe for
// concurrent use and is primarily intended for tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// Store is an in-memory implementation of ledger.Store.
type Store struct {
	mu       sync.RWMutex
	accounts map[pda.Address]ledger.Account
	now      func() time.Time
}

var _ ledger.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts: make(map[pda.Address]ledger.Account),
		now:      time.Now,
	}
}

// Allocate inserts a new account. It fails with ledger.ErrAlreadyAllocated
// if the address is taken; concurrent allocations of the same address admit
// exactly one winner.
func (s *Store) Allocate(_ context.Context, acct ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acct.Address]; exists {
		return ledger.ErrAlreadyAllocated
	}

	now := s.now().UTC()
	acct.Data = cloneBytes(acct.Data)
	acct.CreatedAt = now
	acct.UpdatedAt = now
	s.accounts[acct.Address] = acct
	return nil
}

// Get returns the account at addr.
func (s *Store) Get(_ context.Context, addr pda.Address) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[addr]
	if !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	acct.Data = cloneBytes(acct.Data)
	return acct, nil
}

// Exists reports whether an account is allocated at addr.
func (s *Store) Exists(_ context.Context, addr pda.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[addr]
	return ok, nil
}

// Update rewrites the data of an existing account.
func (s *Store) Update(_ context.Context, addr pda.Address, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[addr]
	if !ok {
		return ledger.ErrNotFound
	}
	acct.Data = cloneBytes(data)
	acct.UpdatedAt = s.now().UTC()
	s.accounts[addr] = acct
	return nil
}

// Remove deletes the account at addr.
func (s *Store) Remove(_ context.Context, addr pda.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[addr]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.accounts, addr)
	return nil
}

// Health always succeeds for the in-memory store.
func (s *Store) Health(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
