package httpapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/Rithunrajrp/0xmart-backend/internal/events"
	"github.com/Rithunrajrp/0xmart-backend/internal/ledger/memory"
	"github.com/Rithunrajrp/0xmart-backend/internal/payment"
	"github.com/Rithunrajrp/0xmart-backend/internal/tokenbank"
)

func TestSettlementRateLimit(t *testing.T) {
	bank := tokenbank.New()
	store := memory.New()
	server := NewServer(Options{
		Engine:         payment.NewEngine(testAddr(0xDE), store, bank, events.NewBus(nil), nil),
		Bank:           bank,
		Bus:            events.NewBus(nil),
		Ledger:         store,
		JWTSecret:      testSecret,
		Authority:      testAddr(0xA0),
		AllowedOrigins: []string{"*"},
		RateLimit:      1,
		RateBurst:      1,
	})
	f := &apiFixture{server: server, bank: bank}

	// First request consumes the burst; it fails on engine state but the
	// limiter admitted it.
	rec := f.do(t, http.MethodPost, "/v1/payments", map[string]any{}, "")
	if rec.Code == http.StatusTooManyRequests {
		t.Fatalf("first request throttled")
	}

	throttled := false
	for i := 0; i < 3; i++ {
		if rec := f.do(t, http.MethodPost, "/v1/payments", map[string]any{}, ""); rec.Code == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	if !throttled {
		t.Fatal("burst-exceeding requests not throttled")
	}

	// Reads are never throttled.
	for i := 0; i < 5; i++ {
		if rec := f.do(t, http.MethodGet, "/healthz", nil, ""); rec.Code == http.StatusTooManyRequests {
			t.Fatal("read path throttled")
		}
	}

	// The bucket refills.
	time.Sleep(1100 * time.Millisecond)
	if rec := f.do(t, http.MethodPost, "/v1/payments", map[string]any{}, ""); rec.Code == http.StatusTooManyRequests {
		t.Fatal("limiter did not refill")
	}
}
