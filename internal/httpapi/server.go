// Package httpapi exposes the settlement engine over REST plus a websocket
// event stream.
package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rithunrajrp/0xmart-backend/internal/events"
	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	"github.com/Rithunrajrp/0xmart-backend/internal/metrics"
	"github.com/Rithunrajrp/0xmart-backend/internal/payment"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
	"github.com/Rithunrajrp/0xmart-backend/internal/tokenbank"
	"github.com/Rithunrajrp/0xmart-backend/pkg/logger"
)

// Options configures the HTTP server.
type Options struct {
	Engine *payment.Engine
	Bank   *tokenbank.Bank
	Bus    *events.Bus
	Ledger ledger.Store
	Log    *logger.Logger

	// JWTSecret verifies admin bearer tokens; admin routes 401 when empty.
	JWTSecret []byte
	// Authority is the on-ledger admin identity admin tokens must claim.
	Authority pda.Address
	// AllowedOrigins is the CORS allowlist; "*" allows every origin.
	AllowedOrigins []string

	// RateLimit throttles settlement submissions per client IP in
	// requests per second. Zero disables throttling.
	RateLimit float64
	// RateBurst is the per-client burst allowance when RateLimit is set.
	RateBurst int
}

// Server is the settlement REST API.
type Server struct {
	engine    *payment.Engine
	bank      *tokenbank.Bank
	bus       *events.Bus
	ledger    ledger.Store
	log       *logger.Logger
	jwtSecret []byte
	authority pda.Address
	origins   []string
	router    *mux.Router
}

// NewServer wires routes and middleware.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	s := &Server{
		engine:    opts.Engine,
		bank:      opts.Bank,
		bus:       opts.Bus,
		ledger:    opts.Ledger,
		log:       log,
		jwtSecret: opts.JWTSecret,
		authority: opts.Authority,
		origins:   opts.AllowedOrigins,
	}

	r := mux.NewRouter()
	r.Use(s.loggingMiddleware, s.corsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	settle := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit) + 1
		}
		rl := newRateLimiter(opts.RateLimit, burst)
		settle = func(h http.HandlerFunc) http.Handler { return rl.middleware(h) }
	}
	v1.Handle("/instructions", settle(s.handleInstruction)).Methods(http.MethodPost)
	v1.Handle("/payments", settle(s.handlePayment)).Methods(http.MethodPost)
	v1.Handle("/payments/batch", settle(s.handleBatchPayment)).Methods(http.MethodPost)
	v1.HandleFunc("/orders/{orderID}", s.handleGetOrder).Methods(http.MethodGet)
	v1.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	v1.HandleFunc("/tokens/{mint}", s.handleGetToken).Methods(http.MethodGet)
	v1.HandleFunc("/balances/{mint}/{holder}", s.handleGetBalance).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(s.adminAuthMiddleware)
	admin.HandleFunc("/initialize", s.handleInitialize).Methods(http.MethodPost)
	admin.HandleFunc("/hot-wallet", s.handleUpdateHotWallet).Methods(http.MethodPut)
	admin.HandleFunc("/platform-fee", s.handleUpdatePlatformFee).Methods(http.MethodPut)
	admin.HandleFunc("/pause", s.handlePause).Methods(http.MethodPost)
	admin.HandleFunc("/unpause", s.handleUnpause).Methods(http.MethodPost)
	admin.HandleFunc("/tokens", s.handleAddToken).Methods(http.MethodPost)
	admin.HandleFunc("/tokens/{mint}", s.handleRemoveToken).Methods(http.MethodDelete)
	admin.HandleFunc("/withdraw", s.handleEmergencyWithdraw).Methods(http.MethodPost)
	admin.HandleFunc("/faucet", s.handleFaucet).Methods(http.MethodPost)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// =============================================================================
// Middleware
// =============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.ObserveHTTPRequest(r.Method, route, strconv.Itoa(rec.status))
		s.log.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, candidate := range s.origins {
		c := strings.TrimSpace(candidate)
		if c == "*" || c == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ledger != nil {
		if err := s.ledger.Health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
