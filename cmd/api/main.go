package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"inventory-dashboard/internal"
	"inventory-dashboard/internal/config"
	"inventory-dashboard/internal/handlers"
	"inventory-dashboard/internal/source"
	"inventory-dashboard/internal/store"
	"inventory-dashboard/pkg/inventory"
	"inventory-dashboard/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer lg.Sync()

	opts, err := inventory.OptionsFromMapping(cfg.MappingPath)
	if err != nil {
		lg.Fatal("failed to load column mapping", zap.String("path", cfg.MappingPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		src      source.Source
		importer handlers.Importer
	)
	if cfg.DBDSN != "" {
		st, err := store.Open(ctx, cfg.DBDSN, cfg.DevicesTable)
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			lg.Fatal("failed to migrate", zap.Error(err))
		}
		src, importer = st, st
		lg.Info("serving inventory from database", zap.String("table", cfg.DevicesTable))
	} else {
		src = source.NewFileSource(cfg.DataPath, opts, cfg.CacheTTL)
		lg.Info("serving inventory from file", zap.String("path", cfg.DataPath), zap.Duration("cache_ttl", cfg.CacheTTL))
	}

	// Create and start server
	srv, err := internal.NewServer(cfg, src, importer, opts, lg)
	if err != nil {
		lg.Fatal("failed to create server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lg.Error("shutdown failed", zap.Error(err))
		}
	}()

	lg.Info("starting inventory dashboard API",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.Bool("auth", cfg.AuthEnabled),
		zap.Bool("metrics", cfg.EnableMetrics),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server failed", zap.Error(err))
	}
	lg.Info("server stopped")
}
