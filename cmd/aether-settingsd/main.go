// Package main is the entry point for the aether-settingsd application,
// the backend half of the Aether client's settings screen.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aetherchat/settings"
	"github.com/aetherchat/settings/api"
	"github.com/aetherchat/settings/config"
	"github.com/aetherchat/settings/store"
)

func main() {
	configPath := flag.String("config", "aether-settingsd.toml", "path to TOML configuration")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	logger := settings.NewDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddress = *listenAddr
	}
	logger.SetLevel(logLevel(cfg.LogLevel))
	logger.Info("aether-settingsd starting up...", "backend", cfg.Storage.Backend)

	kv, fileKV, err := openBackend(cfg.Storage)
	if err != nil {
		logger.Error("Failed to open storage backend", "error", err)
		os.Exit(1)
	}

	schema := settings.DefaultSchema()
	st := store.New(kv, schema, store.WithLogger(logger))

	agg := settings.New(
		settings.WithStore(st),
		settings.WithSchema(schema),
		settings.WithLogger(logger),
	)
	if err := agg.Load(context.Background()); err != nil {
		logger.Error("Failed to load settings", "error", err)
		os.Exit(1)
	}

	// Pick up external edits of the settings file while running.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if fileKV != nil {
		changes, err := fileKV.Watch(watchCtx)
		if err != nil {
			logger.Error("Failed to watch settings file", "error", err)
			os.Exit(1)
		}
		agg.WatchExternal(watchCtx, changes)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddress: cfg.ListenAddress,
		Aggregator:    agg,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("Failed to create API server", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	if err := agg.Close(); err != nil {
		logger.Error("Failed to close aggregator", "error", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("Failed to close store", "error", err)
	}

	logger.Info("Server exited gracefully")
}

// openBackend builds the configured KV backend, optionally wrapped with
// value encryption. The second return value is non-nil for the file
// backend, which supports change watching.
func openBackend(cfg config.StorageConfig) (settings.KV, *store.FileKV, error) {
	var (
		kv     settings.KV
		fileKV *store.FileKV
		err    error
	)
	switch cfg.Backend {
	case "memory":
		kv = store.NewMemoryKV()
	case "file":
		fileKV, err = store.NewFileKV(cfg.Path)
		kv = fileKV
	case "sqlite":
		kv, err = store.NewSQLiteKV(cfg.Path)
	case "postgres":
		kv, err = store.NewPostgresKV(cfg.DSN)
	case "redis":
		kv, err = store.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	if err != nil {
		return nil, nil, err
	}
	if cfg.Encrypt {
		encrypted, err := store.NewEncryptedKV(kv)
		if err != nil {
			return nil, nil, err
		}
		return encrypted, fileKV, nil
	}
	return kv, fileKV, nil
}

func logLevel(name string) settings.LogLevel {
	switch name {
	case "debug":
		return settings.LogLevelDebug
	case "warn":
		return settings.LogLevelWarn
	case "error":
		return settings.LogLevelError
	default:
		return settings.LogLevelInfo
	}
}
