package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/Rithunrajrp/0xmart-backend/internal/payment"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// adminClaims is the bearer token payload for admin routes. Subject is the
// base58 address the caller acts as; it must match the configured authority
// and, for everything past Initialize, the on-ledger authority too.
type adminClaims struct {
	jwt.RegisteredClaims
}

// IssueAdminToken mints an HS256 bearer token for the given identity. Used
// by operator tooling and tests; the server only verifies.
func IssueAdminToken(secret []byte, subject pda.Address, ttl time.Duration) (string, error) {
	claims := &adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "settlementd",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *Server) validateAdminToken(tokenString string) (pda.Address, error) {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return pda.Address{}, err
	}
	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid {
		return pda.Address{}, fmt.Errorf("invalid token")
	}
	return pda.Parse(claims.Subject)
}

func (s *Server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			jsonError(w, "admin API disabled", http.StatusUnauthorized)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			jsonError(w, "missing authorization", http.StatusUnauthorized)
			return
		}
		subject, err := s.validateAdminToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			jsonError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if !s.authority.IsZero() && subject != s.authority {
			jsonError(w, "token subject is not the authority", http.StatusForbidden)
			return
		}
		r.Header.Set("X-Admin-Subject", subject.String())
		next.ServeHTTP(w, r)
	})
}

// adminAuth rebuilds the engine authorization from the middleware-verified
// subject header.
func adminAuth(r *http.Request) (payment.Authorization, error) {
	subject, err := pda.Parse(r.Header.Get("X-Admin-Subject"))
	if err != nil {
		return payment.Authorization{}, payment.ErrMissingSignature
	}
	return payment.ProvenSigner(subject), nil
}

// =============================================================================
// Admin handlers
// =============================================================================

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		HotWallet      string `json:"hot_wallet"`
		PlatformFeeBps uint16 `json:"platform_fee_bps"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	wallet, err := pda.Parse(req.HotWallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("hot_wallet: %w", err))
		return
	}

	cfg, err := s.engine.Initialize(r.Context(), auth, wallet, req.PlatformFeeBps)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleUpdateHotWallet(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		HotWallet string `json:"hot_wallet"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	wallet, err := pda.Parse(req.HotWallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("hot_wallet: %w", err))
		return
	}
	if err := s.engine.UpdateHotWallet(r.Context(), auth, wallet); err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdatePlatformFee(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		PlatformFeeBps uint16 `json:"platform_fee_bps"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.UpdatePlatformFee(r.Context(), auth, req.PlatformFeeBps); err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseState(w, r, true)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseState(w, r, false)
}

func (s *Server) handlePauseState(w http.ResponseWriter, r *http.Request, paused bool) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	if paused {
		err = s.engine.Pause(r.Context(), auth)
	} else {
		err = s.engine.Unpause(r.Context(), auth)
	}
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paused": paused})
}

func (s *Server) handleAddToken(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		Mint string `json:"mint"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mint, err := pda.Parse(req.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mint: %w", err))
		return
	}
	if err := s.engine.AddSupportedToken(r.Context(), auth, mint); err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"mint": mint.String()})
}

func (s *Server) handleRemoveToken(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	mint, err := pda.Parse(mux.Vars(r)["mint"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mint: %w", err))
		return
	}
	if err := s.engine.RemoveSupportedToken(r.Context(), auth, mint); err != nil {
		writePaymentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	auth, err := adminAuth(r)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		TokenMint   string `json:"token_mint"`
		Destination string `json:"destination"`
		Amount      uint64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mint, err := pda.Parse(req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("token_mint: %w", err))
		return
	}
	dest, err := pda.Parse(req.Destination)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("destination: %w", err))
		return
	}
	if err := s.engine.EmergencyWithdraw(r.Context(), auth, mint, dest, req.Amount); err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFaucet credits test funds to a holder. Admin-gated; intended for
// development deployments backed by the in-process bank.
func (s *Server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	if _, err := adminAuth(r); err != nil {
		writePaymentError(w, err)
		return
	}
	var req struct {
		Mint   string `json:"mint"`
		Holder string `json:"holder"`
		Amount uint64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mint, err := pda.Parse(req.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("mint: %w", err))
		return
	}
	holder, err := pda.Parse(req.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("holder: %w", err))
		return
	}
	if err := s.bank.Mint(r.Context(), mint, holder, req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance": s.bank.Balance(r.Context(), mint, holder),
	})
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
