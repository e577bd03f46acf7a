package payment

import (
	"testing"
)

func TestConfigLayout(t *testing.T) {
	cfg := Config{
		Authority:         TestAddress(0xA0),
		HotWallet:         TestAddress(0xB0),
		PlatformFeeBps:    250,
		MaxPlatformFeeBps: 1000,
		MaxCommissionBps:  10_000,
		Paused:            true,
		Bump:              254,
	}
	raw := cfg.Marshal()
	if len(raw) != ConfigLen {
		t.Fatalf("len = %d, want %d", len(raw), ConfigLen)
	}
	got, err := UnmarshalConfig(raw)
	if err != nil {
		t.Fatalf("UnmarshalConfig: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, cfg)
	}

	if _, err := UnmarshalConfig(raw[:ConfigLen-1]); err == nil {
		t.Error("short buffer accepted")
	}
}

func TestProcessedOrderLayout(t *testing.T) {
	order := ProcessedOrder{
		OrderIDHash:   HashOrderID("ORDER-1"),
		Buyer:         TestAddress(0xC0),
		TokenMint:     TestAddress(0xD0),
		Amount:        1_000_000,
		PlatformFee:   25_000,
		Affiliate:     TestAddress(0xE0),
		Commission:    50_000,
		CommissionBps: 500,
		Timestamp:     1_700_000_000,
		Bump:          253,
		ProductRef:    "SKU-42",
		ProductCount:  1,
	}
	raw := order.Marshal()
	got, err := UnmarshalProcessedOrder(raw)
	if err != nil {
		t.Fatalf("UnmarshalProcessedOrder: %v", err)
	}
	if got != order {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, order)
	}

	if _, err := UnmarshalProcessedOrder(raw[:OrderCoreLen-1]); err == nil {
		t.Error("truncated record accepted")
	}
}

func TestOrderAddressDependsOnOrderID(t *testing.T) {
	deployment := TestAddress(0xDE)
	a1, _, err := OrderAddress(deployment, "ORDER-1")
	if err != nil {
		t.Fatalf("OrderAddress: %v", err)
	}
	a2, _, err := OrderAddress(deployment, "ORDER-2")
	if err != nil {
		t.Fatalf("OrderAddress: %v", err)
	}
	if a1 == a2 {
		t.Error("distinct order ids derived the same address")
	}

	again, _, err := OrderAddress(deployment, "ORDER-1")
	if err != nil {
		t.Fatalf("OrderAddress: %v", err)
	}
	if a1 != again {
		t.Error("derivation is not deterministic")
	}
}

func TestUnmarshalSupportedTokenShort(t *testing.T) {
	token := SupportedToken{Mint: TestAddress(0xD0), IsSupported: true, Bump: 255}
	raw := token.Marshal()
	if len(raw) != TokenLen {
		t.Fatalf("len = %d, want %d", len(raw), TokenLen)
	}
	if _, err := UnmarshalSupportedToken(raw[:TokenLen-1]); err == nil {
		t.Error("short buffer accepted")
	}
	if _, err := UnmarshalSupportedToken(nil); err == nil {
		t.Error("nil buffer accepted")
	}
}
