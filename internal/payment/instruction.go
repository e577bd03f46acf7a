package payment

import (
	"encoding/binary"
	"fmt"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// InstructionTag selects an operation variant on the wire.
type InstructionTag uint8

const (
	TagInitialize InstructionTag = iota
	TagProcessPayment
	TagProcessBatchPayment
	TagAddSupportedToken
	TagRemoveSupportedToken
	TagUpdateHotWallet
	TagUpdatePlatformFee
	TagPause
	TagUnpause
	TagEmergencyWithdraw
)

// Instruction is a decoded wire operation.
type Instruction interface {
	Tag() InstructionTag
}

// InitializeInstruction creates the config singleton.
type InitializeInstruction struct {
	HotWallet      pda.Address
	PlatformFeeBps uint16
}

// ProcessPaymentInstruction settles a single order.
type ProcessPaymentInstruction struct {
	OrderID       string
	Amount        uint64
	ProductRef    string
	TokenMint     pda.Address
	Affiliate     pda.Address
	CommissionBps uint16
}

// ProcessBatchPaymentInstruction settles a shopping-cart order.
type ProcessBatchPaymentInstruction struct {
	OrderID       string
	TotalAmount   uint64
	ProductRefs   []string
	TokenMint     pda.Address
	Affiliate     pda.Address
	CommissionBps uint16
}

// AddSupportedTokenInstruction enables a payment token.
type AddSupportedTokenInstruction struct {
	Mint pda.Address
}

// RemoveSupportedTokenInstruction disables a payment token.
type RemoveSupportedTokenInstruction struct {
	Mint pda.Address
}

// UpdateHotWalletInstruction rotates the settlement destination.
type UpdateHotWalletInstruction struct {
	NewHotWallet pda.Address
}

// UpdatePlatformFeeInstruction changes the platform fee rate.
type UpdatePlatformFeeInstruction struct {
	NewFeeBps uint16
}

// PauseInstruction halts settlement.
type PauseInstruction struct{}

// UnpauseInstruction resumes settlement.
type UnpauseInstruction struct{}

// EmergencyWithdrawInstruction moves vault funds to a destination account.
type EmergencyWithdrawInstruction struct {
	TokenMint   pda.Address
	Destination pda.Address
	Amount      uint64
}

func (InitializeInstruction) Tag() InstructionTag          { return TagInitialize }
func (ProcessPaymentInstruction) Tag() InstructionTag      { return TagProcessPayment }
func (ProcessBatchPaymentInstruction) Tag() InstructionTag { return TagProcessBatchPayment }
func (AddSupportedTokenInstruction) Tag() InstructionTag   { return TagAddSupportedToken }
func (RemoveSupportedTokenInstruction) Tag() InstructionTag {
	return TagRemoveSupportedToken
}
func (UpdateHotWalletInstruction) Tag() InstructionTag   { return TagUpdateHotWallet }
func (UpdatePlatformFeeInstruction) Tag() InstructionTag { return TagUpdatePlatformFee }
func (PauseInstruction) Tag() InstructionTag             { return TagPause }
func (UnpauseInstruction) Tag() InstructionTag           { return TagUnpause }
func (EmergencyWithdrawInstruction) Tag() InstructionTag { return TagEmergencyWithdraw }

// =============================================================================
// Decoding
// =============================================================================

// DecodeInstruction parses a wire buffer into a typed instruction. It has no
// side effects and fails with ErrInvalidInstruction on an unknown tag,
// truncated payload, or trailing bytes.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidInstruction)
	}
	r := &wireReader{buf: data[1:]}

	var ins Instruction
	switch InstructionTag(data[0]) {
	case TagInitialize:
		ins = InitializeInstruction{
			HotWallet:      r.address(),
			PlatformFeeBps: r.uint16(),
		}
	case TagProcessPayment:
		ins = ProcessPaymentInstruction{
			OrderID:       r.string(),
			Amount:        r.uint64(),
			ProductRef:    r.string(),
			TokenMint:     r.address(),
			Affiliate:     r.address(),
			CommissionBps: r.uint16(),
		}
	case TagProcessBatchPayment:
		ins = ProcessBatchPaymentInstruction{
			OrderID:       r.string(),
			TotalAmount:   r.uint64(),
			ProductRefs:   r.stringVec(),
			TokenMint:     r.address(),
			Affiliate:     r.address(),
			CommissionBps: r.uint16(),
		}
	case TagAddSupportedToken:
		ins = AddSupportedTokenInstruction{Mint: r.address()}
	case TagRemoveSupportedToken:
		ins = RemoveSupportedTokenInstruction{Mint: r.address()}
	case TagUpdateHotWallet:
		ins = UpdateHotWalletInstruction{NewHotWallet: r.address()}
	case TagUpdatePlatformFee:
		ins = UpdatePlatformFeeInstruction{NewFeeBps: r.uint16()}
	case TagPause:
		ins = PauseInstruction{}
	case TagUnpause:
		ins = UnpauseInstruction{}
	case TagEmergencyWithdraw:
		ins = EmergencyWithdrawInstruction{
			TokenMint:   r.address(),
			Destination: r.address(),
			Amount:      r.uint64(),
		}
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrInvalidInstruction, data[0])
	}

	if r.failed {
		return nil, fmt.Errorf("%w: truncated payload for tag %d", ErrInvalidInstruction, data[0])
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstruction, len(r.buf))
	}
	return ins, nil
}

// EncodeInstruction renders a typed instruction to its wire form. The
// encoded bytes are also the canonical signing payload for buyers.
func EncodeInstruction(ins Instruction) []byte {
	w := &wireWriter{buf: []byte{byte(ins.Tag())}}

	switch v := ins.(type) {
	case InitializeInstruction:
		w.address(v.HotWallet)
		w.uint16(v.PlatformFeeBps)
	case ProcessPaymentInstruction:
		w.string(v.OrderID)
		w.uint64(v.Amount)
		w.string(v.ProductRef)
		w.address(v.TokenMint)
		w.address(v.Affiliate)
		w.uint16(v.CommissionBps)
	case ProcessBatchPaymentInstruction:
		w.string(v.OrderID)
		w.uint64(v.TotalAmount)
		w.stringVec(v.ProductRefs)
		w.address(v.TokenMint)
		w.address(v.Affiliate)
		w.uint16(v.CommissionBps)
	case AddSupportedTokenInstruction:
		w.address(v.Mint)
	case RemoveSupportedTokenInstruction:
		w.address(v.Mint)
	case UpdateHotWalletInstruction:
		w.address(v.NewHotWallet)
	case UpdatePlatformFeeInstruction:
		w.uint16(v.NewFeeBps)
	case PauseInstruction, UnpauseInstruction:
	case EmergencyWithdrawInstruction:
		w.address(v.TokenMint)
		w.address(v.Destination)
		w.uint64(v.Amount)
	}
	return w.buf
}

// =============================================================================
// Wire primitives (little-endian, length-prefixed strings)
// =============================================================================

type wireReader struct {
	buf    []byte
	failed bool
}

func (r *wireReader) take(n int) []byte {
	if r.failed || len(r.buf) < n {
		r.failed = true
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *wireReader) uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *wireReader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *wireReader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *wireReader) address() pda.Address {
	b := r.take(pda.AddressLen)
	var a pda.Address
	if b != nil {
		copy(a[:], b)
	}
	return a
}

func (r *wireReader) string() string {
	n := r.uint32()
	if r.failed || uint64(n) > uint64(len(r.buf)) {
		r.failed = true
		return ""
	}
	return string(r.take(int(n)))
}

func (r *wireReader) stringVec() []string {
	n := r.uint32()
	if r.failed || uint64(n) > uint64(len(r.buf)) {
		r.failed = true
		return nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, r.string())
		if r.failed {
			return nil
		}
	}
	return out
}

type wireWriter struct {
	buf []byte
}

func (w *wireWriter) uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *wireWriter) uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *wireWriter) uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *wireWriter) address(a pda.Address) {
	w.buf = append(w.buf, a[:]...)
}

func (w *wireWriter) string(s string) {
	w.uint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *wireWriter) stringVec(v []string) {
	w.uint32(uint32(len(v)))
	for _, s := range v {
		w.string(s)
	}
}
