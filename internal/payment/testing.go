package payment

import (
	"context"
	"sync"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// RecordingTransfer is a TransferService for tests. It records every call
// and can be told to fail.
type RecordingTransfer struct {
	mu    sync.Mutex
	calls []TransferCall
	Err   error
}

// TransferCall is one recorded Transfer invocation.
type TransferCall struct {
	Mint      pda.Address
	From      pda.Address
	To        pda.Address
	Amount    uint64
	Authority pda.Address
}

func (r *RecordingTransfer) Transfer(_ context.Context, mint, from, to pda.Address, amount uint64, authority pda.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.calls = append(r.calls, TransferCall{Mint: mint, From: from, To: to, Amount: amount, Authority: authority})
	return nil
}

// Calls returns a copy of the recorded transfers.
func (r *RecordingTransfer) Calls() []TransferCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TransferCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// TestAddress builds a deterministic address from a tag for tests.
func TestAddress(tag byte) pda.Address {
	var a pda.Address
	for i := range a {
		a[i] = tag
	}
	if tag == 0 {
		a[0] = 1 // keep clear of the reserved range
	}
	return a
}
