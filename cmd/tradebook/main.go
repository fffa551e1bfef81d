package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"TradeBook/internal/api"
	"TradeBook/internal/blotter"
	"TradeBook/internal/booking"
	"TradeBook/internal/event"
	"TradeBook/internal/notify"
	"TradeBook/internal/observability"
	"TradeBook/internal/server"
	"TradeBook/internal/store"
	"TradeBook/internal/trade"
	"TradeBook/internal/validation"
)

// Config holds all application configuration, loaded from environment
// variables.
type Config struct {
	// NATS
	NATSURL string

	// Postgres blotter (disabled when the DSN is empty)
	PostgresDSN string

	// Blotter worker
	BlotterBufSize      int
	BlotterBatchSize    int
	BlotterFlushTimeout time.Duration

	// Ops endpoints
	HTTPAddr string
	GRPCAddr string
}

func DefaultConfig() Config {
	return Config{
		NATSURL:             envOrDefault("TRADEBOOK_NATS_URL", "nats://localhost:4222"),
		PostgresDSN:         os.Getenv("TRADEBOOK_POSTGRES_DSN"),
		BlotterBufSize:      envIntOrDefault("TRADEBOOK_BLOTTER_BUF_SIZE", 1024),
		BlotterBatchSize:    envIntOrDefault("TRADEBOOK_BLOTTER_BATCH_SIZE", 50),
		BlotterFlushTimeout: 250 * time.Millisecond,
		HTTPAddr:            envOrDefault("TRADEBOOK_HTTP_ADDR", ":8080"),
		GRPCAddr:            envOrDefault("TRADEBOOK_GRPC_ADDR", ":9090"),
	}
}

func main() {
	log := observability.NewLogger("main")
	log.Info().Msg("TradeBook starting")

	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// --- Observability ---
	metrics := observability.NewMetrics()
	healthChecker := observability.NewHealthChecker()

	// --- NATS ---
	nc, js, err := notify.ConnectNATS(cfg.NATSURL, observability.NewLogger("nats"))
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect")
	}
	defer nc.Close()
	log.Info().Str("url", cfg.NATSURL).Msg("NATS connected")

	if err := notify.EnsureEventStream(ctx, js); err != nil {
		log.Fatal().Err(err).Msg("ensure event stream")
	}

	// --- Observers ---
	publishers := event.Fanout{
		notify.NewLogPublisher(observability.NewLogger("notify")),
		notify.NewNATSPublisher(js, observability.NewLogger("notify.nats"), metrics),
	}

	errChan := make(chan error, 4)

	// --- Optional Postgres blotter ---
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open")
		}
		defer db.Close()

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping")
		}
		if err := blotter.EnsureSchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("ensure blotter schema")
		}
		log.Info().Msg("Postgres blotter enabled")

		writer := blotter.NewWriter(db, cfg.BlotterBufSize, cfg.BlotterBatchSize, cfg.BlotterFlushTimeout,
			observability.NewLogger("blotter"), metrics)
		publishers = append(publishers, writer)

		go func() {
			errChan <- writer.Run(ctx)
		}()
	}

	// --- Booking service ---
	recordStore := store.NewMemoryStore()
	ids := trade.NewIDGenerator()
	svc := booking.NewService(recordStore, publishers, ids, observability.NewLogger("booking"), metrics)
	svc.AddValidator(validation.NewEquityValidator())
	svc.AddValidator(validation.NewBondValidator())

	// --- API over NATS request/reply ---
	apiServer := api.NewServer(nc, svc, observability.NewLogger("api"), metrics)
	if err := apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("start API")
	}

	// --- Ops servers ---
	ops := server.NewOpsServer(cfg.HTTPAddr, cfg.GRPCAddr, healthChecker, observability.NewLogger("ops"))
	go func() {
		errChan <- ops.StartHTTP(ctx)
	}()
	go func() {
		errChan <- ops.StartGRPC(ctx)
	}()

	healthChecker.SetReady(true)
	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Msg("TradeBook ready")

	// --- Wait for shutdown signal ---
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("component failed, shutting down")
		}
	}

	healthChecker.SetReady(false)
	apiServer.Stop()
	cancel()

	// Give the blotter time to flush its final batch.
	time.Sleep(cfg.BlotterFlushTimeout * 2)

	log.Info().Msg("TradeBook shutdown complete")
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var i int
	if _, err := fmt.Sscanf(v, "%d", &i); err != nil {
		return defaultVal
	}
	return i
}
