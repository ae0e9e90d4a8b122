package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/api"
	"github.com/hoanghai1803/creatorpilot/internal/backend"
	"github.com/hoanghai1803/creatorpilot/internal/config"
	"github.com/hoanghai1803/creatorpilot/internal/feeds"
	"github.com/hoanghai1803/creatorpilot/internal/generate"
	"github.com/hoanghai1803/creatorpilot/internal/settings"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "", "path to data directory (overrides data_dir)")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		return err
	}
	store := storage.NewStore(db)

	box, err := settings.NewSecretBox(cfg.Security.SecretKey, cfg.DataDir)
	if err != nil {
		return err
	}
	cfgStore := settings.NewStore(store, box)

	deps := generate.Deps{
		Config: cfgStore,
		Client: ai.NewClient(&http.Client{Timeout: cfg.AI.RequestTimeout()}),
		Search: feeds.NewSearcher(cfg.Search.Feeds, cfg.Search.Timeout()),
		Hot:    store,
	}

	// The default backend is optional: without a key only user-configured
	// providers can serve requests.
	if b := backend.New(backend.Config{
		APIKey:     cfg.Backend.APIKey,
		BaseURL:    cfg.Backend.BaseURL,
		Model:      cfg.Backend.Model,
		ImageModel: cfg.Backend.ImageModel,
		Timeout:    cfg.AI.RequestTimeout(),
	}); b != nil {
		deps.DefaultText = b
		deps.DefaultImage = b
		slog.Info("default backend configured", "model", cfg.Backend.Model, "image_model", cfg.Backend.ImageModel)
	} else {
		slog.Warn("no default backend API key configured, requests need a provider set in settings")
	}

	router := api.NewRouter(api.Deps{
		Store:       store,
		Settings:    cfgStore,
		Generator:   generate.NewService(deps),
		Extractor:   feeds.NewExtractor(cfg.Search.Timeout()),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
