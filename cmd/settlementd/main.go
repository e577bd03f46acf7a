// Package main implements settlementd, the stablecoin settlement daemon.
// It validates signed payment instructions, applies platform fee and
// affiliate commission arithmetic, and records write-once order records
// that double as the replay guard.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rithunrajrp/0xmart-backend/internal/config"
	"github.com/Rithunrajrp/0xmart-backend/internal/events"
	"github.com/Rithunrajrp/0xmart-backend/internal/httpapi"
	"github.com/Rithunrajrp/0xmart-backend/internal/ledger"
	ledgermem "github.com/Rithunrajrp/0xmart-backend/internal/ledger/memory"
	ledgerpg "github.com/Rithunrajrp/0xmart-backend/internal/ledger/postgres"
	"github.com/Rithunrajrp/0xmart-backend/internal/payment"
	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
	"github.com/Rithunrajrp/0xmart-backend/internal/tokenbank"
	"github.com/Rithunrajrp/0xmart-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/settlementd.yaml", "Path to config file")
	envFile := flag.String("env", ".env", "Path to env file")
	flag.Parse()

	// .env is optional; env vars still apply without it.
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault("settlementd").WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	log := logger.New("settlementd", cfg.LogLevel)
	log.WithField("addr", cfg.HTTPAddr).Info("starting settlement daemon")

	var store ledger.Store
	if cfg.PostgresDSN != "" {
		pg, err := ledgerpg.Open(cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Error("failed to open postgres ledger")
			os.Exit(1)
		}
		store = pg
		log.Info("using postgres ledger store")
	} else {
		store = ledgermem.New()
		log.Warn("using in-memory ledger store; state will not survive restarts")
	}
	defer store.Close()

	var authority pda.Address
	if cfg.Authority != "" {
		authority, _ = pda.Parse(cfg.Authority)
	}

	bank := tokenbank.New()
	bus := events.NewBus(log)
	engine := payment.NewEngine(cfg.Deployment(), store, bank, bus, log)

	api := httpapi.NewServer(httpapi.Options{
		Engine:         engine,
		Bank:           bank,
		Bus:            bus,
		Ledger:         store,
		Log:            log,
		JWTSecret:      []byte(cfg.JWTSecret),
		Authority:      authority,
		AllowedOrigins: strings.Split(cfg.AllowedOrigins, ","),
		RateLimit:      cfg.RateLimitRPS,
		RateBurst:      cfg.RateBurst,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server failed")
			os.Exit(1)
		}
	}()
	log.WithField("addr", cfg.HTTPAddr).Info("http server listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
