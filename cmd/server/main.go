package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rpggio/bigyear/internal/config"
	"github.com/rpggio/bigyear/internal/logging"
	"github.com/rpggio/bigyear/internal/metrics"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/rpggio/bigyear/internal/transport"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Log.Level, cfg.Log.Path, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	if err := ensureDBDir(cfg.Server.DBPath); err != nil {
		return fmt.Errorf("failed to prepare database path: %w", err)
	}
	db, store, err := openStore(ctx, cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := metrics.New()
	if err != nil {
		return err
	}

	router := transport.NewServer(store, transport.Options{
		Metrics:     m,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sync backend listening", "addr", addr, "db", cfg.Server.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

// openStore opens the backend database with only the sync tables. The
// client schema (species, lists, preferences) is never created here.
func openStore(ctx context.Context, path string) (*sqlite.DB, *sqlite.SyncStore, error) {
	db, err := sqlite.New(path)
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlite.NewSyncStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
