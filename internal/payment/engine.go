package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Rithunrajrp/0xmart-backend/internal/events"
	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/metrics"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
	"github.com/Rithunrajrp/0xmart-backend/pkg/logger"
)

// TransferService moves value between holding accounts. The engine consumes
// it through this narrow interface and never implements it.
type TransferService interface {
	Transfer(ctx context.Context, mint, from, to pda.Address, amount uint64, authority pda.Address) error
}

// Engine executes settlement and administrative operations against the
// ledger for one deployment.
type Engine struct {
	deployment pda.Address
	ledger     ledger.Store
	transfer   TransferService
	bus        *events.Bus
	log        *logger.Logger
	now        func() time.Time
}

// NewEngine constructs a settlement engine.
func NewEngine(deployment pda.Address, store ledger.Store, transfer TransferService, bus *events.Bus, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefault("settlement")
	}
	if bus == nil {
		bus = events.NewBus(log)
	}
	return &Engine{
		deployment: deployment,
		ledger:     store,
		transfer:   transfer,
		bus:        bus,
		log:        log,
		now:        time.Now,
	}
}

// Deployment returns the deployment identity addresses are derived under.
func (e *Engine) Deployment() pda.Address { return e.deployment }

// PaymentRequest carries a single-order settlement.
type PaymentRequest struct {
	Auth          Authorization
	TokenMint     pda.Address
	OrderID       string
	Amount        uint64
	ProductRef    string
	Affiliate     pda.Address
	CommissionBps uint16

	// OrderAccount optionally cross-checks a caller-supplied storage
	// address against the derived one. Zero means "derive for me".
	OrderAccount pda.Address
}

// BatchPaymentRequest carries a shopping-cart settlement.
type BatchPaymentRequest struct {
	Auth          Authorization
	TokenMint     pda.Address
	OrderID       string
	TotalAmount   uint64
	ProductRefs   []string
	Affiliate     pda.Address
	CommissionBps uint16
	OrderAccount  pda.Address
}

// ProcessPayment validates and settles a single order: it moves the net
// amount from the buyer to the hot wallet and writes the one-time order
// record. The operation either fully commits or leaves no residue.
func (e *Engine) ProcessPayment(ctx context.Context, req PaymentRequest) (ProcessedOrder, error) {
	if len(req.ProductRef) > MaxProductRefLen {
		metrics.ObserveSettlement("single", string(ClassValidation), 0)
		return ProcessedOrder{}, ErrProductRefTooLong
	}

	order, err := e.settle(ctx, settlement{
		kind:          "single",
		auth:          req.Auth,
		tokenMint:     req.TokenMint,
		orderID:       req.OrderID,
		amount:        req.Amount,
		productRef:    req.ProductRef,
		productCount:  1,
		affiliate:     req.Affiliate,
		commissionBps: req.CommissionBps,
		orderAccount:  req.OrderAccount,
	})
	if err != nil {
		return ProcessedOrder{}, err
	}

	e.bus.Publish(ctx, events.TypePaymentProcessed, events.PaymentProcessed{
		OrderIDHash:   fmt.Sprintf("%x", order.OrderIDHash),
		Buyer:         order.Buyer,
		TokenMint:     order.TokenMint,
		Amount:        order.Amount,
		PlatformFee:   order.PlatformFee,
		Affiliate:     order.Affiliate,
		Commission:    order.Commission,
		CommissionBps: order.CommissionBps,
		ProductRef:    order.ProductRef,
		Timestamp:     order.Timestamp,
	})
	return order, nil
}

// ProcessBatchPayment settles a cart of products as one order. The record
// stores the batch sentinel reference and the product count.
func (e *Engine) ProcessBatchPayment(ctx context.Context, req BatchPaymentRequest) (ProcessedOrder, error) {
	order, err := e.settle(ctx, settlement{
		kind:          "batch",
		auth:          req.Auth,
		tokenMint:     req.TokenMint,
		orderID:       req.OrderID,
		amount:        req.TotalAmount,
		productRef:    BatchProductRef,
		productCount:  uint32(len(req.ProductRefs)),
		affiliate:     req.Affiliate,
		commissionBps: req.CommissionBps,
		orderAccount:  req.OrderAccount,
		requireProducts: true,
	})
	if err != nil {
		return ProcessedOrder{}, err
	}

	e.bus.Publish(ctx, events.TypeBatchPaymentProcessed, events.BatchPaymentProcessed{
		OrderIDHash:   fmt.Sprintf("%x", order.OrderIDHash),
		Buyer:         order.Buyer,
		TokenMint:     order.TokenMint,
		TotalAmount:   order.Amount,
		PlatformFee:   order.PlatformFee,
		Affiliate:     order.Affiliate,
		Commission:    order.Commission,
		CommissionBps: order.CommissionBps,
		ProductCount:  order.ProductCount,
		Timestamp:     order.Timestamp,
	})
	return order, nil
}

type settlement struct {
	kind            string
	auth            Authorization
	tokenMint       pda.Address
	orderID         string
	amount          uint64
	productRef      string
	productCount    uint32
	affiliate       pda.Address
	commissionBps   uint16
	orderAccount    pda.Address
	requireProducts bool
}

// settle runs the shared precondition chain and effect unit. Preconditions
// abort in a fixed order: pause gate, commission bound, amount, product
// list, token registry, order replay, buyer signature.
func (e *Engine) settle(ctx context.Context, s settlement) (ProcessedOrder, error) {
	fail := func(err error) (ProcessedOrder, error) {
		metrics.ObserveSettlement(s.kind, string(Classify(err)), 0)
		return ProcessedOrder{}, err
	}

	cfg, _, err := e.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	if cfg.Paused {
		return fail(ErrProgramPaused)
	}
	if s.commissionBps > cfg.MaxCommissionBps {
		return fail(ErrInvalidCommission)
	}
	if s.amount == 0 {
		return fail(ErrInvalidAmount)
	}
	if s.requireProducts && s.productCount == 0 {
		return fail(ErrNoProducts)
	}

	token, err := e.loadToken(ctx, s.tokenMint)
	if err != nil || !token.IsSupported {
		return fail(ErrTokenNotSupported)
	}

	orderAddr, orderBump, err := OrderAddress(e.deployment, s.orderID)
	if err != nil {
		return fail(fmt.Errorf("derive order address: %w", err))
	}
	if !s.orderAccount.IsZero() && s.orderAccount != orderAddr {
		return fail(ErrInvalidSeeds)
	}
	exists, err := e.ledger.Exists(ctx, orderAddr)
	if err != nil {
		return fail(fmt.Errorf("check order: %w", err))
	}
	if exists {
		return fail(ErrOrderAlreadyProcessed)
	}

	if !s.auth.Verified() {
		return fail(ErrMissingSignature)
	}
	buyer := s.auth.Signer()

	fees, err := ComputeFees(s.amount, cfg.PlatformFeeBps, s.commissionBps)
	if err != nil {
		return fail(err)
	}

	order := ProcessedOrder{
		OrderIDHash:   HashOrderID(s.orderID),
		Buyer:         buyer,
		TokenMint:     s.tokenMint,
		Amount:        s.amount,
		PlatformFee:   fees.PlatformFee,
		Affiliate:     s.affiliate,
		Commission:    fees.Commission,
		CommissionBps: s.commissionBps,
		Timestamp:     e.now().Unix(),
		Bump:          orderBump,
		ProductRef:    s.productRef,
		ProductCount:  s.productCount,
	}

	// Claim the order address first: under a race exactly one caller wins
	// the allocation and the loser observes OrderAlreadyProcessed having
	// moved no funds.
	err = e.ledger.Allocate(ctx, ledger.Account{
		Address: orderAddr,
		Data:    order.Marshal(),
		Payer:   buyer,
	})
	if err == ledger.ErrAlreadyAllocated {
		return fail(ErrOrderAlreadyProcessed)
	}
	if err != nil {
		return fail(fmt.Errorf("allocate order record: %w", err))
	}

	if err := e.transfer.Transfer(ctx, s.tokenMint, buyer, cfg.HotWallet, fees.NetAmount, buyer); err != nil {
		// Release the claim so a retry with the same order ID can succeed.
		if rmErr := e.ledger.Remove(ctx, orderAddr); rmErr != nil {
			e.log.WithError(rmErr).WithField("order", orderAddr.String()).
				Error("failed to release order claim after transfer failure")
		}
		return fail(fmt.Errorf("transfer: %w", err))
	}

	metrics.ObserveSettlement(s.kind, "ok", s.amount)
	e.log.WithFields(map[string]interface{}{
		"kind":         s.kind,
		"order":        orderAddr.String(),
		"buyer":        buyer.String(),
		"amount":       s.amount,
		"platform_fee": fees.PlatformFee,
		"commission":   fees.Commission,
	}).Info("payment processed")

	return order, nil
}

// =============================================================================
// Reads
// =============================================================================

// GetConfig returns the deployment config.
func (e *Engine) GetConfig(ctx context.Context) (Config, error) {
	cfg, _, err := e.loadConfig(ctx)
	return cfg, err
}

// GetToken returns the registry entry for a mint.
func (e *Engine) GetToken(ctx context.Context, mint pda.Address) (SupportedToken, error) {
	token, err := e.loadToken(ctx, mint)
	if err != nil {
		return SupportedToken{}, ErrTokenNotSupported
	}
	return token, nil
}

// GetOrder returns the settlement record for an order identifier.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (ProcessedOrder, error) {
	addr, _, err := OrderAddress(e.deployment, orderID)
	if err != nil {
		return ProcessedOrder{}, fmt.Errorf("derive order address: %w", err)
	}
	acct, err := e.ledger.Get(ctx, addr)
	if err != nil {
		return ProcessedOrder{}, err
	}
	return UnmarshalProcessedOrder(acct.Data)
}

func (e *Engine) loadConfig(ctx context.Context) (Config, pda.Address, error) {
	addr, _, err := ConfigAddress(e.deployment)
	if err != nil {
		return Config{}, pda.Address{}, fmt.Errorf("derive config address: %w", err)
	}
	acct, err := e.ledger.Get(ctx, addr)
	if err == ledger.ErrNotFound {
		return Config{}, addr, ErrNotInitialized
	}
	if err != nil {
		return Config{}, addr, fmt.Errorf("load config: %w", err)
	}
	cfg, err := UnmarshalConfig(acct.Data)
	if err != nil {
		return Config{}, addr, err
	}
	return cfg, addr, nil
}

func (e *Engine) loadToken(ctx context.Context, mint pda.Address) (SupportedToken, error) {
	addr, _, err := TokenAddress(e.deployment, mint)
	if err != nil {
		return SupportedToken{}, err
	}
	acct, err := e.ledger.Get(ctx, addr)
	if err != nil {
		return SupportedToken{}, err
	}
	return UnmarshalSupportedToken(acct.Data)
}
