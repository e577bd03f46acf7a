package payment

import (
	"context"
	"fmt"

	"github.com/Rithunrajrp/0xmart-backend/internal/events"
	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/metrics"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// =============================================================================
// Administrative operations
// =============================================================================

// Initialize creates the deployment config. The caller becomes the
// permanent authority; there is no authority rotation.
func (e *Engine) Initialize(ctx context.Context, auth Authorization, hotWallet pda.Address, platformFeeBps uint16) (Config, error) {
	fail := func(err error) (Config, error) {
		metrics.ObserveAdminOp("initialize", string(Classify(err)))
		return Config{}, err
	}

	if !auth.Verified() {
		return fail(ErrMissingSignature)
	}
	if platformFeeBps > DefaultMaxPlatformFeeBps {
		return fail(ErrFeeTooHigh)
	}

	addr, bump, err := ConfigAddress(e.deployment)
	if err != nil {
		return fail(fmt.Errorf("derive config address: %w", err))
	}

	cfg := Config{
		Authority:         auth.Signer(),
		HotWallet:         hotWallet,
		PlatformFeeBps:    platformFeeBps,
		MaxPlatformFeeBps: DefaultMaxPlatformFeeBps,
		MaxCommissionBps:  DefaultMaxCommissionBps,
		Paused:            false,
		Bump:              bump,
	}

	err = e.ledger.Allocate(ctx, ledger.Account{
		Address: addr,
		Data:    cfg.Marshal(),
		Payer:   auth.Signer(),
	})
	if err == ledger.ErrAlreadyAllocated {
		return fail(ErrAlreadyInitialized)
	}
	if err != nil {
		return fail(fmt.Errorf("allocate config: %w", err))
	}

	metrics.ObserveAdminOp("initialize", "ok")
	e.log.WithField("authority", cfg.Authority.String()).
		WithField("hot_wallet", cfg.HotWallet.String()).
		Info("deployment initialized")
	return cfg, nil
}

// UpdateHotWallet rotates the fee destination wallet.
func (e *Engine) UpdateHotWallet(ctx context.Context, auth Authorization, newHotWallet pda.Address) error {
	return e.adminOp(ctx, "update_hot_wallet", auth, func(cfg *Config) (events.Type, any, error) {
		old := cfg.HotWallet
		cfg.HotWallet = newHotWallet
		return events.TypeHotWalletUpdated, events.HotWalletUpdated{
			OldHotWallet: old,
			NewHotWallet: newHotWallet,
			Authority:    cfg.Authority,
		}, nil
	})
}

// UpdatePlatformFee changes the platform fee rate within the configured cap.
func (e *Engine) UpdatePlatformFee(ctx context.Context, auth Authorization, newFeeBps uint16) error {
	return e.adminOp(ctx, "update_platform_fee", auth, func(cfg *Config) (events.Type, any, error) {
		if newFeeBps > cfg.MaxPlatformFeeBps {
			return "", nil, ErrFeeTooHigh
		}
		old := cfg.PlatformFeeBps
		cfg.PlatformFeeBps = newFeeBps
		return events.TypePlatformFeeUpdated, events.PlatformFeeUpdated{
			OldFeeBps: old,
			NewFeeBps: newFeeBps,
			Authority: cfg.Authority,
		}, nil
	})
}

// Pause halts both settlement operations. Idempotent.
func (e *Engine) Pause(ctx context.Context, auth Authorization) error {
	return e.adminOp(ctx, "pause", auth, func(cfg *Config) (events.Type, any, error) {
		cfg.Paused = true
		return events.TypeContractPaused, events.PauseChanged{
			Paused:    true,
			Authority: cfg.Authority,
		}, nil
	})
}

// Unpause resumes settlement. Idempotent.
func (e *Engine) Unpause(ctx context.Context, auth Authorization) error {
	return e.adminOp(ctx, "unpause", auth, func(cfg *Config) (events.Type, any, error) {
		cfg.Paused = false
		return events.TypeContractUnpaused, events.PauseChanged{
			Paused:    false,
			Authority: cfg.Authority,
		}, nil
	})
}

// AddSupportedToken registers a mint, or re-enables a previously disabled
// one. Adding an already-enabled mint is a no-op.
func (e *Engine) AddSupportedToken(ctx context.Context, auth Authorization, mint pda.Address) error {
	fail := func(err error) error {
		metrics.ObserveAdminOp("add_token", string(Classify(err)))
		return err
	}

	cfg, _, err := e.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	if err := e.requireAuthority(auth, cfg); err != nil {
		return fail(err)
	}

	addr, bump, err := TokenAddress(e.deployment, mint)
	if err != nil {
		return fail(fmt.Errorf("derive token address: %w", err))
	}

	token := SupportedToken{Mint: mint, IsSupported: true, Bump: bump}
	data := token.Marshal()

	err = e.ledger.Allocate(ctx, ledger.Account{Address: addr, Data: data, Payer: auth.Signer()})
	if err == ledger.ErrAlreadyAllocated {
		err = e.ledger.Update(ctx, addr, data)
	}
	if err != nil {
		return fail(fmt.Errorf("store token entry: %w", err))
	}

	metrics.ObserveAdminOp("add_token", "ok")
	e.log.WithField("mint", mint.String()).Info("token registered")
	e.bus.Publish(ctx, events.TypeTokenAdded, events.TokenChanged{
		Mint:      mint,
		Supported: true,
		Authority: cfg.Authority,
	})
	return nil
}

// RemoveSupportedToken disables a mint. The registry entry is retained so
// history remains queryable and the mint can be re-enabled later.
func (e *Engine) RemoveSupportedToken(ctx context.Context, auth Authorization, mint pda.Address) error {
	fail := func(err error) error {
		metrics.ObserveAdminOp("remove_token", string(Classify(err)))
		return err
	}

	cfg, _, err := e.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	if err := e.requireAuthority(auth, cfg); err != nil {
		return fail(err)
	}

	addr, _, err := TokenAddress(e.deployment, mint)
	if err != nil {
		return fail(fmt.Errorf("derive token address: %w", err))
	}
	acct, err := e.ledger.Get(ctx, addr)
	if err != nil {
		return fail(ErrTokenNotSupported)
	}
	token, err := UnmarshalSupportedToken(acct.Data)
	if err != nil {
		return fail(err)
	}

	token.IsSupported = false
	if err := e.ledger.Update(ctx, addr, token.Marshal()); err != nil {
		return fail(fmt.Errorf("store token entry: %w", err))
	}

	metrics.ObserveAdminOp("remove_token", "ok")
	e.log.WithField("mint", mint.String()).Info("token disabled")
	e.bus.Publish(ctx, events.TypeTokenRemoved, events.TokenChanged{
		Mint:      mint,
		Supported: false,
		Authority: cfg.Authority,
	})
	return nil
}

// EmergencyWithdraw moves funds out of the deployment vault to an arbitrary
// destination. Authority-gated and unconstrained by the pause flag or fee
// caps: this is the recovery hatch.
func (e *Engine) EmergencyWithdraw(ctx context.Context, auth Authorization, mint, destination pda.Address, amount uint64) error {
	fail := func(err error) error {
		metrics.ObserveAdminOp("emergency_withdraw", string(Classify(err)))
		return err
	}

	cfg, configAddr, err := e.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	if err := e.requireAuthority(auth, cfg); err != nil {
		return fail(err)
	}
	if amount == 0 {
		return fail(ErrInvalidAmount)
	}

	// The vault is owned by the config account itself, so the config
	// address signs the outbound transfer.
	if err := e.transfer.Transfer(ctx, mint, configAddr, destination, amount, configAddr); err != nil {
		return fail(fmt.Errorf("withdraw: %w", err))
	}

	metrics.ObserveAdminOp("emergency_withdraw", "ok")
	e.log.WithField("mint", mint.String()).
		WithField("destination", destination.String()).
		WithField("amount", amount).
		Warn("emergency withdrawal executed")
	e.bus.Publish(ctx, events.TypeEmergencyWithdrawal, events.EmergencyWithdrawal{
		TokenMint:   mint,
		Destination: destination,
		Amount:      amount,
		Authority:   cfg.Authority,
	})
	return nil
}

// adminOp loads the config, checks the authority, applies the mutation and
// persists the result.
func (e *Engine) adminOp(ctx context.Context, op string, auth Authorization, mutate func(*Config) (events.Type, any, error)) error {
	fail := func(err error) error {
		metrics.ObserveAdminOp(op, string(Classify(err)))
		return err
	}

	cfg, addr, err := e.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	if err := e.requireAuthority(auth, cfg); err != nil {
		return fail(err)
	}

	typ, payload, err := mutate(&cfg)
	if err != nil {
		return fail(err)
	}

	if err := e.ledger.Update(ctx, addr, cfg.Marshal()); err != nil {
		return fail(fmt.Errorf("store config: %w", err))
	}

	metrics.ObserveAdminOp(op, "ok")
	e.log.WithField("op", op).Info("admin operation applied")
	e.bus.Publish(ctx, typ, payload)
	return nil
}

func (e *Engine) requireAuthority(auth Authorization, cfg Config) error {
	if !auth.Verified() {
		return ErrMissingSignature
	}
	if auth.Signer() != cfg.Authority {
		return ErrUnauthorized
	}
	return nil
}
