package payment

import "math/bits"

// Fees is the result of settlement fee arithmetic.
type Fees struct {
	PlatformFee uint64
	Commission  uint64
	NetAmount   uint64
}

// basisPoints computes floor(amount * bps / FeeDenominator) with a 128-bit
// intermediate product, failing closed instead of wrapping.
func basisPoints(amount uint64, bps uint16) (uint64, error) {
	hi, lo := bits.Mul64(amount, uint64(bps))
	// Div64 panics when the quotient overflows 64 bits, which happens iff
	// hi >= FeeDenominator. With bps <= 10000 this cannot occur, but the
	// guard keeps the function total for any input.
	if hi >= FeeDenominator {
		return 0, ErrArithmeticOverflow
	}
	q, _ := bits.Div64(hi, lo, FeeDenominator)
	return q, nil
}

// ComputeFees derives the platform fee, affiliate commission, and net
// transfer amount for a gross amount.
//
// The commission is computed against the gross amount, independent of the
// platform fee, and is NOT deducted from the net transfer; it is recorded
// for later off-platform payout. Nothing bounds platform_fee + commission
// by amount: a high commission rate combined with a nonzero fee can exceed
// the gross amount on paper. This matches the on-chain contract and is a
// known design gap, kept intentionally.
func ComputeFees(amount uint64, platformFeeBps, commissionBps uint16) (Fees, error) {
	platformFee, err := basisPoints(amount, platformFeeBps)
	if err != nil {
		return Fees{}, err
	}
	commission, err := basisPoints(amount, commissionBps)
	if err != nil {
		return Fees{}, err
	}
	if platformFee > amount {
		return Fees{}, ErrArithmeticOverflow
	}
	return Fees{
		PlatformFee: platformFee,
		Commission:  commission,
		NetAmount:   amount - platformFee,
	}, nil
}
