// Package payment implements the stablecoin settlement core: fee
// computation, the idempotent order ledger, and the administrative state
// machine guarding it.
package payment

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// FeeDenominator converts basis points to a rate: rate = bps / 10000.
	FeeDenominator = 10_000

	// DefaultMaxPlatformFeeBps caps the platform fee at 10%.
	DefaultMaxPlatformFeeBps uint16 = 1000
	// DefaultMaxCommissionBps caps affiliate commission at 100%.
	DefaultMaxCommissionBps uint16 = 10_000

	// MaxProductRefLen bounds the stored product reference.
	MaxProductRefLen = 50

	// BatchProductRef is the sentinel product reference for batch orders.
	BatchProductRef = "BATCH"
)

// Seed namespaces for address derivation.
var (
	seedConfig = []byte("config")
	seedToken  = []byte("token")
	seedOrder  = []byte("order")
)

// =============================================================================
// Derivation helpers
// =============================================================================

// ConfigAddress derives the config singleton address for a deployment.
func ConfigAddress(deployment pda.Address) (pda.Address, uint8, error) {
	return pda.Derive(deployment, seedConfig)
}

// TokenAddress derives the registry entry address for a token mint.
func TokenAddress(deployment, mint pda.Address) (pda.Address, uint8, error) {
	return pda.Derive(deployment, seedToken, mint.Bytes())
}

// HashOrderID maps an arbitrary order identifier to its 32-byte key.
func HashOrderID(orderID string) [32]byte {
	return sha256.Sum256([]byte(orderID))
}

// OrderAddress derives the order record address for an order identifier.
func OrderAddress(deployment pda.Address, orderID string) (pda.Address, uint8, error) {
	hash := HashOrderID(orderID)
	return pda.Derive(deployment, seedOrder, hash[:])
}

// =============================================================================
// Config
// =============================================================================

// ConfigLen is the fixed byte size of the config layout.
const ConfigLen = 32 + 32 + 2 + 2 + 2 + 1 + 1 // 72

// Config is the singleton administrative state for a deployment.
// Invariant: PlatformFeeBps <= MaxPlatformFeeBps at all times.
type Config struct {
	Authority         pda.Address `json:"authority"`
	HotWallet         pda.Address `json:"hot_wallet"`
	PlatformFeeBps    uint16      `json:"platform_fee_bps"`
	MaxPlatformFeeBps uint16      `json:"max_platform_fee_bps"`
	MaxCommissionBps  uint16      `json:"max_commission_bps"`
	Paused            bool        `json:"paused"`
	Bump              uint8       `json:"bump"`
}

// Marshal encodes the config into its fixed little-endian layout.
func (c *Config) Marshal() []byte {
	buf := make([]byte, ConfigLen)
	copy(buf[0:32], c.Authority[:])
	copy(buf[32:64], c.HotWallet[:])
	binary.LittleEndian.PutUint16(buf[64:66], c.PlatformFeeBps)
	binary.LittleEndian.PutUint16(buf[66:68], c.MaxPlatformFeeBps)
	binary.LittleEndian.PutUint16(buf[68:70], c.MaxCommissionBps)
	if c.Paused {
		buf[70] = 1
	}
	buf[71] = c.Bump
	return buf
}

// UnmarshalConfig decodes a config account.
func UnmarshalConfig(data []byte) (Config, error) {
	if len(data) != ConfigLen {
		return Config{}, fmt.Errorf("config layout: got %d bytes, want %d", len(data), ConfigLen)
	}
	var c Config
	copy(c.Authority[:], data[0:32])
	copy(c.HotWallet[:], data[32:64])
	c.PlatformFeeBps = binary.LittleEndian.Uint16(data[64:66])
	c.MaxPlatformFeeBps = binary.LittleEndian.Uint16(data[66:68])
	c.MaxCommissionBps = binary.LittleEndian.Uint16(data[68:70])
	c.Paused = data[70] == 1
	c.Bump = data[71]
	return c, nil
}

// =============================================================================
// SupportedToken
// =============================================================================

// TokenLen is the fixed byte size of the registry entry layout.
const TokenLen = 32 + 1 + 1 // 34

// SupportedToken is a token registry entry. Disabled entries are retained
// with IsSupported=false rather than deleted.
type SupportedToken struct {
	Mint        pda.Address `json:"mint"`
	IsSupported bool        `json:"is_supported"`
	Bump        uint8       `json:"bump"`
}

// Marshal encodes the entry into its fixed layout.
func (t *SupportedToken) Marshal() []byte {
	buf := make([]byte, TokenLen)
	copy(buf[0:32], t.Mint[:])
	if t.IsSupported {
		buf[32] = 1
	}
	buf[33] = t.Bump
	return buf
}

// UnmarshalSupportedToken decodes a registry entry account.
func UnmarshalSupportedToken(data []byte) (SupportedToken, error) {
	if len(data) != TokenLen {
		return SupportedToken{}, fmt.Errorf("token layout: got %d bytes, want %d", len(data), TokenLen)
	}
	var t SupportedToken
	copy(t.Mint[:], data[0:32])
	t.IsSupported = data[32] == 1
	t.Bump = data[33]
	return t, nil
}

// =============================================================================
// ProcessedOrder
// =============================================================================

// OrderCoreLen is the fixed portion of the order record layout. The bounded
// product reference (4-byte length + up to 50 bytes) and the 4-byte product
// count follow it.
const OrderCoreLen = 32 + 32 + 32 + 8 + 8 + 32 + 8 + 2 + 8 + 1 // 163

// ProcessedOrder is the write-once settlement receipt. Its existence at the
// derived order address is the "processed" flag; it is never mutated.
type ProcessedOrder struct {
	OrderIDHash   [32]byte    `json:"order_id_hash"`
	Buyer         pda.Address `json:"buyer"`
	TokenMint     pda.Address `json:"token_mint"`
	Amount        uint64      `json:"amount"`
	PlatformFee   uint64      `json:"platform_fee"`
	Affiliate     pda.Address `json:"affiliate"`
	Commission    uint64      `json:"commission"`
	CommissionBps uint16      `json:"commission_bps"`
	Timestamp     int64       `json:"timestamp"`
	Bump          uint8       `json:"bump"`
	ProductRef    string      `json:"product_ref"`
	ProductCount  uint32      `json:"product_count"`
}

// Marshal encodes the record: 163-byte core, then the bounded product
// reference, then the product count.
func (o *ProcessedOrder) Marshal() []byte {
	ref := []byte(o.ProductRef)
	buf := make([]byte, OrderCoreLen+4+len(ref)+4)

	copy(buf[0:32], o.OrderIDHash[:])
	copy(buf[32:64], o.Buyer[:])
	copy(buf[64:96], o.TokenMint[:])
	binary.LittleEndian.PutUint64(buf[96:104], o.Amount)
	binary.LittleEndian.PutUint64(buf[104:112], o.PlatformFee)
	copy(buf[112:144], o.Affiliate[:])
	binary.LittleEndian.PutUint64(buf[144:152], o.Commission)
	binary.LittleEndian.PutUint16(buf[152:154], o.CommissionBps)
	binary.LittleEndian.PutUint64(buf[154:162], uint64(o.Timestamp))
	buf[162] = o.Bump

	off := OrderCoreLen
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(ref)))
	off += 4
	copy(buf[off:off+len(ref)], ref)
	off += len(ref)
	binary.LittleEndian.PutUint32(buf[off:off+4], o.ProductCount)
	return buf
}

// UnmarshalProcessedOrder decodes an order record account.
func UnmarshalProcessedOrder(data []byte) (ProcessedOrder, error) {
	if len(data) < OrderCoreLen+8 {
		return ProcessedOrder{}, fmt.Errorf("order layout: %d bytes too short", len(data))
	}
	var o ProcessedOrder
	copy(o.OrderIDHash[:], data[0:32])
	copy(o.Buyer[:], data[32:64])
	copy(o.TokenMint[:], data[64:96])
	o.Amount = binary.LittleEndian.Uint64(data[96:104])
	o.PlatformFee = binary.LittleEndian.Uint64(data[104:112])
	copy(o.Affiliate[:], data[112:144])
	o.Commission = binary.LittleEndian.Uint64(data[144:152])
	o.CommissionBps = binary.LittleEndian.Uint16(data[152:154])
	o.Timestamp = int64(binary.LittleEndian.Uint64(data[154:162]))
	o.Bump = data[162]

	off := OrderCoreLen
	refLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if refLen > MaxProductRefLen || off+refLen+4 != len(data) {
		return ProcessedOrder{}, fmt.Errorf("order layout: bad product reference length %d", refLen)
	}
	o.ProductRef = string(data[off : off+refLen])
	off += refLen
	o.ProductCount = binary.LittleEndian.Uint32(data[off : off+4])
	return o, nil
}
