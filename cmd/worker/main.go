// Package main provides the identitymap worker entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/JustKeepShipping/identitymap/internal/catalog"
	"github.com/JustKeepShipping/identitymap/internal/config"
	"github.com/JustKeepShipping/identitymap/internal/db/store"
	"github.com/JustKeepShipping/identitymap/internal/watcher"
	"github.com/JustKeepShipping/identitymap/internal/worker"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	port := flag.Int("port", 0, "HTTP port (default: from settings)")
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.identitymap)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directories")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}

	dbPath := cfg.DBPath
	catalogPath := cfg.CatalogPath
	if *dataDir != "" {
		dbPath = filepath.Join(*dataDir, "identitymap.db")
		catalogPath = filepath.Join(*dataDir, "catalog.yaml")
	}
	if *port != 0 {
		cfg.WorkerPort = *port
	}

	st, err := store.NewStore(store.Config{
		Path:     dbPath,
		MaxConns: cfg.MaxConns,
		LogLevel: logger.Silent,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer st.Close()

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Warn().Err(err).Str("path", catalogPath).Msg("Failed to load tag catalog, continuing without suggestions")
		cat = catalog.Empty()
	}

	svc := worker.NewService(Version, cfg, st, cat)

	startWatchers(dbPath)

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.WorkerPort),
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", Version).Msg("Starting worker")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down worker")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Worker server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// startWatchers exits the process when the database or settings file is
// deleted, relying on an external supervisor to restart with fresh state.
func startWatchers(dbPath string) {
	exitOnDelete := func(path, what string) {
		w, err := watcher.New(path, func() {
			log.Warn().Str("path", path).Msgf("%s deleted, exiting for restart...", what)
			time.Sleep(100 * time.Millisecond)
			os.Exit(0)
		})
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to create file watcher")
			return
		}
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to start file watcher")
			return
		}
		log.Info().Str("path", path).Msg("File watcher started")
	}

	exitOnDelete(dbPath, "Database")
	exitOnDelete(config.SettingsPath(), "Settings file")
}
