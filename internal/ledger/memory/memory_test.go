package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

func addrFromByte(b byte) pda.Address {
	var a pda.Address
	a[0] = b
	return a
}

func TestAllocateIsInsertOnly(t *testing.T) {
	ctx := context.Background()
	store := New()
	addr := addrFromByte(1)

	err := store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{1, 2, 3}})
	require.NoError(t, err)

	err = store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{9}})
	require.ErrorIs(t, err, ledger.ErrAlreadyAllocated)

	acct, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, acct.Data, "losing allocation must not overwrite")
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Get(ctx, addrFromByte(7))
	require.ErrorIs(t, err, ledger.ErrNotFound)

	ok, err := store.Exists(ctx, addrFromByte(7))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateRewritesData(t *testing.T) {
	ctx := context.Background()
	store := New()
	addr := addrFromByte(2)

	require.NoError(t, store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{1}}))
	require.NoError(t, store.Update(ctx, addr, []byte{2, 2}))

	acct, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 2}, acct.Data)
	require.False(t, acct.UpdatedAt.Before(acct.CreatedAt))

	require.ErrorIs(t, store.Update(ctx, addrFromByte(99), []byte{1}), ledger.ErrNotFound)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := New()
	addr := addrFromByte(3)

	require.NoError(t, store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{1}}))
	require.NoError(t, store.Remove(ctx, addr))

	ok, err := store.Exists(ctx, addr)
	require.NoError(t, err)
	require.False(t, ok)

	// Removal frees the address for a fresh allocation.
	require.NoError(t, store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{4}}))
	require.ErrorIs(t, store.Remove(ctx, addrFromByte(42)), ledger.ErrNotFound)
}

func TestDataIsolation(t *testing.T) {
	ctx := context.Background()
	store := New()
	addr := addrFromByte(4)

	data := []byte{1, 2, 3}
	require.NoError(t, store.Allocate(ctx, ledger.Account{Address: addr, Data: data}))
	data[0] = 99

	acct, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, acct.Data, "caller mutation must not leak into the store")

	acct.Data[0] = 55
	again, err := store.Get(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, again.Data, "returned slice mutation must not leak into the store")
}
