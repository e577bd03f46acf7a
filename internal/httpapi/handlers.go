package httpapi

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/payment"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// signedRequest carries an ed25519 proof over the canonical instruction
// encoding. The server re-encodes the instruction it builds from the JSON
// body and verifies the signature against those exact bytes.
type signedRequest struct {
	PublicKey string `json:"public_key"` // base64 ed25519 public key
	Signature string `json:"signature"`  // base64 signature
}

func (sr signedRequest) verify(ins payment.Instruction) (payment.Authorization, error) {
	pub, err := base64.StdEncoding.DecodeString(sr.PublicKey)
	if err != nil {
		return payment.Authorization{}, fmt.Errorf("%w: bad public key encoding", payment.ErrMissingSignature)
	}
	sig, err := base64.StdEncoding.DecodeString(sr.Signature)
	if err != nil {
		return payment.Authorization{}, fmt.Errorf("%w: bad signature encoding", payment.ErrMissingSignature)
	}
	return payment.VerifySignature(ed25519.PublicKey(pub), payment.EncodeInstruction(ins), sig)
}

// =============================================================================
// Settlement
// =============================================================================

type paymentRequest struct {
	signedRequest
	OrderID       string `json:"order_id"`
	Amount        uint64 `json:"amount"`
	ProductRef    string `json:"product_ref"`
	TokenMint     string `json:"token_mint"`
	Affiliate     string `json:"affiliate,omitempty"`
	CommissionBps uint16 `json:"commission_bps,omitempty"`
	OrderAccount  string `json:"order_account,omitempty"`
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	mint, err := pda.Parse(req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("token_mint: %w", err))
		return
	}
	affiliate, err := parseOptionalAddress(req.Affiliate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("affiliate: %w", err))
		return
	}
	orderAccount, err := parseOptionalAddress(req.OrderAccount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("order_account: %w", err))
		return
	}

	auth, err := req.verify(payment.ProcessPaymentInstruction{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		ProductRef:    req.ProductRef,
		TokenMint:     mint,
		Affiliate:     affiliate,
		CommissionBps: req.CommissionBps,
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}

	order, err := s.engine.ProcessPayment(r.Context(), payment.PaymentRequest{
		Auth:          auth,
		TokenMint:     mint,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		ProductRef:    req.ProductRef,
		Affiliate:     affiliate,
		CommissionBps: req.CommissionBps,
		OrderAccount:  orderAccount,
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse(order))
}

type batchPaymentRequest struct {
	signedRequest
	OrderID       string   `json:"order_id"`
	TotalAmount   uint64   `json:"total_amount"`
	ProductRefs   []string `json:"product_refs"`
	TokenMint     string   `json:"token_mint"`
	Affiliate     string   `json:"affiliate,omitempty"`
	CommissionBps uint16   `json:"commission_bps,omitempty"`
	OrderAccount  string   `json:"order_account,omitempty"`
}

func (s *Server) handleBatchPayment(w http.ResponseWriter, r *http.Request) {
	var req batchPaymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	mint, err := pda.Parse(req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("token_mint: %w", err))
		return
	}
	affiliate, err := parseOptionalAddress(req.Affiliate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("affiliate: %w", err))
		return
	}
	orderAccount, err := parseOptionalAddress(req.OrderAccount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("order_account: %w", err))
		return
	}

	auth, err := req.verify(payment.ProcessBatchPaymentInstruction{
		OrderID:       req.OrderID,
		TotalAmount:   req.TotalAmount,
		ProductRefs:   req.ProductRefs,
		TokenMint:     mint,
		Affiliate:     affiliate,
		CommissionBps: req.CommissionBps,
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}

	order, err := s.engine.ProcessBatchPayment(r.Context(), payment.BatchPaymentRequest{
		Auth:          auth,
		TokenMint:     mint,
		OrderID:       req.OrderID,
		TotalAmount:   req.TotalAmount,
		ProductRefs:   req.ProductRefs,
		Affiliate:     affiliate,
		CommissionBps: req.CommissionBps,
		OrderAccount:  orderAccount,
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse(order))
}

// handleInstruction accepts a raw wire instruction with a detached
// signature and dispatches it. Settlement instructions execute with the
// signer as buyer; admin instructions execute only when the signer is the
// on-ledger authority.
func (s *Server) handleInstruction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		signedRequest
		Instruction string `json:"instruction"` // base64 wire encoding
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	wire, err := base64.StdEncoding.DecodeString(req.Instruction)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("instruction: %w", err))
		return
	}
	ins, err := payment.DecodeInstruction(wire)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	auth, err := req.verify(ins)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	result, err := s.dispatch(r, ins, auth)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) dispatch(r *http.Request, ins payment.Instruction, auth payment.Authorization) (any, error) {
	ctx := r.Context()
	ok := map[string]string{"status": "ok"}

	switch v := ins.(type) {
	case payment.InitializeInstruction:
		return s.engine.Initialize(ctx, auth, v.HotWallet, v.PlatformFeeBps)
	case payment.ProcessPaymentInstruction:
		order, err := s.engine.ProcessPayment(ctx, payment.PaymentRequest{
			Auth:          auth,
			TokenMint:     v.TokenMint,
			OrderID:       v.OrderID,
			Amount:        v.Amount,
			ProductRef:    v.ProductRef,
			Affiliate:     v.Affiliate,
			CommissionBps: v.CommissionBps,
		})
		if err != nil {
			return nil, err
		}
		return orderResponse(order), nil
	case payment.ProcessBatchPaymentInstruction:
		order, err := s.engine.ProcessBatchPayment(ctx, payment.BatchPaymentRequest{
			Auth:          auth,
			TokenMint:     v.TokenMint,
			OrderID:       v.OrderID,
			TotalAmount:   v.TotalAmount,
			ProductRefs:   v.ProductRefs,
			Affiliate:     v.Affiliate,
			CommissionBps: v.CommissionBps,
		})
		if err != nil {
			return nil, err
		}
		return orderResponse(order), nil
	case payment.AddSupportedTokenInstruction:
		return ok, s.engine.AddSupportedToken(ctx, auth, v.Mint)
	case payment.RemoveSupportedTokenInstruction:
		return ok, s.engine.RemoveSupportedToken(ctx, auth, v.Mint)
	case payment.UpdateHotWalletInstruction:
		return ok, s.engine.UpdateHotWallet(ctx, auth, v.NewHotWallet)
	case payment.UpdatePlatformFeeInstruction:
		return ok, s.engine.UpdatePlatformFee(ctx, auth, v.NewFeeBps)
	case payment.PauseInstruction:
		return ok, s.engine.Pause(ctx, auth)
	case payment.UnpauseInstruction:
		return ok, s.engine.Unpause(ctx, auth)
	case payment.EmergencyWithdrawInstruction:
		return ok, s.engine.EmergencyWithdraw(ctx, auth, v.TokenMint, v.Destination, v.Amount)
	default:
		return nil, payment.ErrInvalidInstruction
	}
}

// =============================================================================
// Reads
// =============================================================================

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderID"]
	order, err := s.engine.GetOrder(r.Context(), orderID)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(order))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.GetConfig(r.Context())
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	mint, err := pda.Parse(mux.Vars(r)["mint"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mint: %w", err))
		return
	}
	token, err := s.engine.GetToken(r.Context(), mint)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mint, err := pda.Parse(vars["mint"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mint: %w", err))
		return
	}
	holder, err := pda.Parse(vars["holder"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("holder: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mint":    mint,
		"holder":  holder,
		"balance": s.bank.Balance(r.Context(), mint, holder),
	})
}

// =============================================================================
// Helpers
// =============================================================================

type orderView struct {
	OrderIDHash   string      `json:"order_id_hash"`
	Buyer         pda.Address `json:"buyer"`
	TokenMint     pda.Address `json:"token_mint"`
	Amount        uint64      `json:"amount"`
	PlatformFee   uint64      `json:"platform_fee"`
	Affiliate     pda.Address `json:"affiliate"`
	Commission    uint64      `json:"commission"`
	CommissionBps uint16      `json:"commission_bps"`
	Timestamp     int64       `json:"timestamp"`
	ProductRef    string      `json:"product_ref"`
	ProductCount  uint32      `json:"product_count"`
}

func orderResponse(order payment.ProcessedOrder) orderView {
	return orderView{
		OrderIDHash:   fmt.Sprintf("%x", order.OrderIDHash),
		Buyer:         order.Buyer,
		TokenMint:     order.TokenMint,
		Amount:        order.Amount,
		PlatformFee:   order.PlatformFee,
		Affiliate:     order.Affiliate,
		Commission:    order.Commission,
		CommissionBps: order.CommissionBps,
		Timestamp:     order.Timestamp,
		ProductRef:    order.ProductRef,
		ProductCount:  order.ProductCount,
	}
}

func parseOptionalAddress(s string) (pda.Address, error) {
	if s == "" {
		return pda.Address{}, nil
	}
	return pda.Parse(s)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writePaymentError maps engine errors onto HTTP statuses.
func writePaymentError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, payment.ErrMissingSignature):
		status = http.StatusUnauthorized
	case errors.Is(err, payment.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, payment.ErrOrderAlreadyProcessed),
		errors.Is(err, payment.ErrAlreadyInitialized),
		errors.Is(err, payment.ErrProgramPaused):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, payment.ErrNotInitialized),
		errors.Is(err, payment.ErrTokenNotSupported):
		status = http.StatusNotFound
	default:
		if payment.Classify(err) == payment.ClassValidation {
			status = http.StatusBadRequest
		}
	}
	writeError(w, status, err)
}
