package pda

import (
	"encoding/json"
	"testing"
)

func testDeployment() Address {
	var d Address
	for i := range d {
		d[i] = byte(i + 1)
	}
	return d
}

func TestDeriveDeterministic(t *testing.T) {
	deployment := testDeployment()

	a1, bump1, err := Derive(deployment, []byte("config"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	a2, bump2, err := Derive(deployment, []byte("config"))
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}

	if a1 != a2 || bump1 != bump2 {
		t.Errorf("derivation not deterministic: (%s,%d) vs (%s,%d)", a1, bump1, a2, bump2)
	}
	if a1.reserved() {
		t.Error("derived address landed in the reserved range")
	}
}

func TestDeriveDistinctSeeds(t *testing.T) {
	deployment := testDeployment()

	a1, _, err := Derive(deployment, []byte("order"), []byte("order-1"))
	if err != nil {
		t.Fatalf("derive order-1: %v", err)
	}
	a2, _, err := Derive(deployment, []byte("order"), []byte("order-2"))
	if err != nil {
		t.Fatalf("derive order-2: %v", err)
	}

	if a1 == a2 {
		t.Error("distinct seeds must yield distinct addresses")
	}
}

func TestDeriveDistinctDeployments(t *testing.T) {
	d1 := testDeployment()
	d2 := testDeployment()
	d2[0] ^= 0xFF

	a1, _, err := Derive(d1, []byte("config"))
	if err != nil {
		t.Fatalf("derive d1: %v", err)
	}
	a2, _, err := Derive(d2, []byte("config"))
	if err != nil {
		t.Fatalf("derive d2: %v", err)
	}

	if a1 == a2 {
		t.Error("distinct deployments must yield distinct addresses")
	}
}

func TestDeriveWithBumpMatchesSearch(t *testing.T) {
	deployment := testDeployment()

	addr, bump, err := Derive(deployment, []byte("token"), []byte("usdc-mint"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	recomputed := DeriveWithBump(deployment, bump, []byte("token"), []byte("usdc-mint"))
	if recomputed != addr {
		t.Errorf("DeriveWithBump mismatch: %s vs %s", recomputed, addr)
	}
}

func TestAddressTextRoundTrip(t *testing.T) {
	addr, _, err := Derive(testDeployment(), []byte("config"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	parsed, err := Parse(addr.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != addr {
		t.Errorf("round trip mismatch: %s vs %s", parsed, addr)
	}

	raw, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	var back Address
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if back != addr {
		t.Errorf("json round trip mismatch: %s vs %s", back, addr)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse("not-base58-0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
	if _, err := Parse("abc"); err == nil {
		t.Error("expected error for wrong length")
	}
	if _, err := FromBytes(make([]byte, 16)); err == nil {
		t.Error("expected error for short byte slice")
	}
}
