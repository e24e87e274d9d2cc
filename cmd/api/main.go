// Package main is the entry point for the Wanderlog API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/kevinlin/wanderlog/internal/cloudstore"
	"github.com/kevinlin/wanderlog/internal/config"
	"github.com/kevinlin/wanderlog/internal/facade"
	"github.com/kevinlin/wanderlog/internal/handler"
	"github.com/kevinlin/wanderlog/internal/kvstore"
	"github.com/kevinlin/wanderlog/internal/metrics"
	"github.com/kevinlin/wanderlog/internal/middleware"
	"github.com/kevinlin/wanderlog/internal/weather"
	"github.com/kevinlin/wanderlog/migrations"
)

// maxRequestBody caps incoming JSON bodies; trip documents are small.
const maxRequestBody = 1 << 20 // 1 MiB

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog JSON handler writes machine-readable output suitable for log
	// aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Cloud document store --------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("cloud store connection established")

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Local key/value store -------------------------------------------
	local, err := kvstore.New(cfg.LocalStoreDir, logger)
	if err != nil {
		slog.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	if !local.Available() {
		slog.Warn("local store is not writable; offline fallback disabled",
			"dir", cfg.LocalStoreDir)
	}

	// --- Storage layer ----------------------------------------------------
	met := metrics.NewCollector()
	cloud := cloudstore.New(pool)
	store := facade.New(cloud, local, logger, met)
	cache := weather.NewCache(local, weather.NewClient(cfg.WeatherBaseURL), cloud,
		cfg.WeatherTTL, logger, met)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → CORS →
	// Recoverer → body cap. RequestID generates a unique trace ID per
	// request; Recoverer catches panics and returns HTTP 500 instead of
	// crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBody))

	handler.NewServer(store, cache).Register(r)
	r.Method(http.MethodGet, "/metrics", met.Handler())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, give in-flight requests up
	// to 15 seconds, then drain pending cloud syncs before exit.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	store.Flush()
	slog.Info("server stopped")
}

// runMigrations applies all pending collection migrations.
// goose needs database/sql rather than a pgx pool, so it gets its own
// short-lived connection.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return err
	}
	return nil
}
