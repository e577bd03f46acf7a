package payment

import (
	"math"
	"testing"
)

func TestComputeFees(t *testing.T) {
	tests := []struct {
		name          string
		amount        uint64
		platformBps   uint16
		commissionBps uint16
		wantFee       uint64
		wantComm      uint64
		wantNet       uint64
	}{
		{
			name:        "typical purchase",
			amount:      1_000_000,
			platformBps: 250,
			wantFee:     25_000,
			wantNet:     975_000,
		},
		{
			name:          "purchase with affiliate",
			amount:        1_000_000,
			platformBps:   250,
			commissionBps: 500,
			wantFee:       25_000,
			wantComm:      50_000,
			wantNet:       975_000,
		},
		{
			name:        "batch total",
			amount:      3_000_000,
			platformBps: 100,
			wantFee:     30_000,
			wantNet:     2_970_000,
		},
		{
			name:        "zero fee rate",
			amount:      1_000_000,
			platformBps: 0,
			wantFee:     0,
			wantNet:     1_000_000,
		},
		{
			name:        "fee floors down",
			amount:      999,
			platformBps: 250,
			wantFee:     24, // 999*250/10000 = 24.975
			wantNet:     975,
		},
		{
			name:        "tiny amount floors to zero fee",
			amount:      3,
			platformBps: 250,
			wantFee:     0,
			wantNet:     3,
		},
		{
			name:          "max values do not overflow",
			amount:        math.MaxUint64,
			platformBps:   1000,
			commissionBps: 10_000,
			wantFee:       math.MaxUint64 / 10,
			wantComm:      math.MaxUint64,
			wantNet:       math.MaxUint64 - math.MaxUint64/10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, err := ComputeFees(tt.amount, tt.platformBps, tt.commissionBps)
			if err != nil {
				t.Fatalf("ComputeFees: %v", err)
			}
			if fees.PlatformFee != tt.wantFee {
				t.Errorf("platform fee = %d, want %d", fees.PlatformFee, tt.wantFee)
			}
			if fees.Commission != tt.wantComm {
				t.Errorf("commission = %d, want %d", fees.Commission, tt.wantComm)
			}
			if fees.NetAmount != tt.wantNet {
				t.Errorf("net = %d, want %d", fees.NetAmount, tt.wantNet)
			}
		})
	}
}

func TestComputeFeesCommissionNotDeducted(t *testing.T) {
	// The commission is recorded but never subtracted from the transfer
	// amount, even when fee plus commission exceeds the gross amount.
	fees, err := ComputeFees(1_000_000, 1000, 10_000)
	if err != nil {
		t.Fatalf("ComputeFees: %v", err)
	}
	if fees.NetAmount != 900_000 {
		t.Errorf("net = %d, want 900000", fees.NetAmount)
	}
	if fees.Commission != 1_000_000 {
		t.Errorf("commission = %d, want 1000000", fees.Commission)
	}
	if fees.PlatformFee+fees.Commission <= 1_000_000 {
		t.Error("expected recorded obligations to exceed gross amount in this scenario")
	}
}
