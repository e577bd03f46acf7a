package tokenbank

import (
	"context"
	"errors"
	"testing"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

func addr(tag byte) pda.Address {
	var a pda.Address
	for i := range a {
		a[i] = tag
	}
	return a
}

func TestMintAndBalance(t *testing.T) {
	b := New()
	ctx := context.Background()
	mint := addr(0x01)
	alice := addr(0xAA)

	if got := b.Balance(ctx, mint, alice); got != 0 {
		t.Fatalf("fresh balance = %d, want 0", got)
	}
	if err := b.Mint(ctx, mint, alice, 1_000_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if got := b.Balance(ctx, mint, alice); got != 1_000_000 {
		t.Fatalf("balance = %d, want 1000000", got)
	}

	if err := b.Mint(ctx, mint, alice, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero mint err = %v, want ErrInvalidAmount", err)
	}
}

func TestTransfer(t *testing.T) {
	b := New()
	ctx := context.Background()
	mint := addr(0x01)
	alice := addr(0xAA)
	bob := addr(0xBB)

	if err := b.Mint(ctx, mint, alice, 1_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := b.Transfer(ctx, mint, alice, bob, 400, alice); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := b.Balance(ctx, mint, alice); got != 600 {
		t.Errorf("alice = %d, want 600", got)
	}
	if got := b.Balance(ctx, mint, bob); got != 400 {
		t.Errorf("bob = %d, want 400", got)
	}

	// Balances are scoped per mint.
	if got := b.Balance(ctx, addr(0x02), bob); got != 0 {
		t.Errorf("other mint balance = %d, want 0", got)
	}
}

func TestTransferRejections(t *testing.T) {
	b := New()
	ctx := context.Background()
	mint := addr(0x01)
	alice := addr(0xAA)
	bob := addr(0xBB)

	if err := b.Mint(ctx, mint, alice, 100); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if err := b.Transfer(ctx, mint, alice, bob, 101, alice); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overdraft err = %v, want ErrInsufficientBalance", err)
	}
	if err := b.Transfer(ctx, mint, alice, bob, 10, bob); !errors.Is(err, ErrTransferNotAllowed) {
		t.Errorf("foreign authority err = %v, want ErrTransferNotAllowed", err)
	}
	if err := b.Transfer(ctx, mint, alice, bob, 0, alice); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount err = %v, want ErrInvalidAmount", err)
	}
	if got := b.Balance(ctx, mint, alice); got != 100 {
		t.Errorf("failed transfers changed balance: %d", got)
	}
}

func TestJournal(t *testing.T) {
	b := New()
	ctx := context.Background()
	mint := addr(0x01)
	alice := addr(0xAA)
	bob := addr(0xBB)

	if err := b.Mint(ctx, mint, alice, 500); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := b.Transfer(ctx, mint, alice, bob, 200, alice); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	txs := b.Transactions(ctx)
	if len(txs) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(txs))
	}
	if txs[0].Type != TxTypeMint || txs[1].Type != TxTypeTransfer {
		t.Errorf("journal order = %s, %s", txs[0].Type, txs[1].Type)
	}
	if txs[1].From != alice || txs[1].To != bob || txs[1].Amount != 200 {
		t.Errorf("transfer entry = %+v", txs[1])
	}
	if txs[0].ID == txs[1].ID {
		t.Error("journal ids not unique")
	}
}
