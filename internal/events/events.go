// Package events carries one-way settlement and admin-change notifications
// for external indexers. The core publishes and never reads back.
package events

import (
	"time"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// Type identifies an event variant.
type Type string

const (
	TypePaymentProcessed      Type = "payment.processed"
	TypeBatchPaymentProcessed Type = "payment.batch_processed"
	TypeHotWalletUpdated      Type = "admin.hot_wallet_updated"
	TypePlatformFeeUpdated    Type = "admin.platform_fee_updated"
	TypeContractPaused        Type = "admin.paused"
	TypeContractUnpaused      Type = "admin.unpaused"
	TypeTokenAdded            Type = "admin.token_added"
	TypeTokenRemoved          Type = "admin.token_removed"
	TypeEmergencyWithdrawal   Type = "admin.emergency_withdrawal"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// PaymentProcessed is emitted after a single-order settlement commits.
type PaymentProcessed struct {
	OrderIDHash   string      `json:"order_id_hash"`
	Buyer         pda.Address `json:"buyer"`
	TokenMint     pda.Address `json:"token_mint"`
	Amount        uint64      `json:"amount"`
	PlatformFee   uint64      `json:"platform_fee"`
	Affiliate     pda.Address `json:"affiliate"`
	Commission    uint64      `json:"commission"`
	CommissionBps uint16      `json:"commission_bps"`
	ProductRef    string      `json:"product_ref"`
	Timestamp     int64       `json:"timestamp"`
}

// BatchPaymentProcessed is emitted after a batch settlement commits.
type BatchPaymentProcessed struct {
	OrderIDHash   string      `json:"order_id_hash"`
	Buyer         pda.Address `json:"buyer"`
	TokenMint     pda.Address `json:"token_mint"`
	TotalAmount   uint64      `json:"total_amount"`
	PlatformFee   uint64      `json:"platform_fee"`
	Affiliate     pda.Address `json:"affiliate"`
	Commission    uint64      `json:"commission"`
	CommissionBps uint16      `json:"commission_bps"`
	ProductCount  uint32      `json:"product_count"`
	Timestamp     int64       `json:"timestamp"`
}

// HotWalletUpdated is emitted when the authority rotates the hot wallet.
type HotWalletUpdated struct {
	OldHotWallet pda.Address `json:"old_hot_wallet"`
	NewHotWallet pda.Address `json:"new_hot_wallet"`
	Authority    pda.Address `json:"authority"`
}

// PlatformFeeUpdated is emitted when the platform fee rate changes.
type PlatformFeeUpdated struct {
	OldFeeBps uint16      `json:"old_fee_bps"`
	NewFeeBps uint16      `json:"new_fee_bps"`
	Authority pda.Address `json:"authority"`
}

// PauseChanged is emitted for both pause and unpause.
type PauseChanged struct {
	Paused    bool        `json:"paused"`
	Authority pda.Address `json:"authority"`
}

// TokenChanged is emitted when the registry adds or disables a token.
type TokenChanged struct {
	Mint      pda.Address `json:"mint"`
	Supported bool        `json:"supported"`
	Authority pda.Address `json:"authority"`
}

// EmergencyWithdrawal is emitted after vault funds are moved out.
type EmergencyWithdrawal struct {
	TokenMint   pda.Address `json:"token_mint"`
	Destination pda.Address `json:"destination"`
	Amount      uint64      `json:"amount"`
	Authority   pda.Address `json:"authority"`
}
