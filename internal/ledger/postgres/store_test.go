package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	var addr, payer pda.Address
	addr[0], payer[0] = 0xAA, 0xBB

	// Clean slate in case a previous run left the row behind.
	_ = store.Remove(ctx, addr)

	if err := store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{1, 2}, Payer: payer}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := store.Allocate(ctx, ledger.Account{Address: addr, Data: []byte{3}, Payer: payer}); err != ledger.ErrAlreadyAllocated {
		t.Fatalf("second allocate: got %v, want ErrAlreadyAllocated", err)
	}

	acct, err := store.Get(ctx, addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(acct.Data) != 2 || acct.Data[0] != 1 {
		t.Errorf("unexpected data: %v", acct.Data)
	}

	if err := store.Update(ctx, addr, []byte{9, 9, 9}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Remove(ctx, addr); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, addr); err != ledger.ErrNotFound {
		t.Fatalf("get after remove: got %v, want ErrNotFound", err)
	}
}
