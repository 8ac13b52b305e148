// Package main is the entry point for FactVault, the persistence and
// indexing core of a fact-verification platform. This file handles
// command-line argument parsing, configuration loading, and orchestrates
// the startup of all application components: blob backend, record stores,
// index manager, API key manager, and the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/apikey"
	"github.com/factvault/factvault/internal/blob"
	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/index"
	"github.com/factvault/factvault/internal/server"
	"github.com/factvault/factvault/internal/store"
)

// Version information set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "config.ini", "Path to configuration file")
	rebuild := flag.Bool("rebuild", false, "Rebuild record stores from the blob backend manifest at startup")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("FactVault %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration from INI file and environment variables.
	// Environment variables override file settings (12-factor app pattern).
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Main.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Initialize the blob backend: the disk-mirrored mock for offline
	// development, or the decentralized storage network.
	backend, err := blob.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize blob backend")
	}
	defer backend.Close()

	// Initialize the record stores (Memory or Database class).
	stores, err := store.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize record stores")
	}
	defer stores.Close()

	// Memory-class stores lose their records on restart; -rebuild replays
	// the backend manifest to repopulate them.
	if *rebuild {
		restored, err := store.RebuildFromBackend(context.Background(), backend, stores, log)
		if err != nil {
			log.WithError(err).Fatal("failed to rebuild record stores")
		}
		log.WithField("records", restored).Info("record stores rebuilt")
	}

	idx := index.NewManager(stores.Facts, stores.Comments, backend, log)
	keys := apikey.NewManager(cfg.RateLimit, log)

	srv, err := server.New(cfg, backend, stores, idx, keys, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create server")
	}

	// Start the server in a goroutine so we can handle shutdown gracefully.
	go func() {
		log.WithFields(logrus.Fields{
			"version": version,
			"addr":    srv.Addr(),
			"backend": cfg.Blob.Backend,
			"model":   cfg.Model.Class,
		}).Info("FactVault starting")
		if err := srv.ListenAndServe(); err != nil {
			log.WithError(err).Info("server stopped listening")
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM) for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Give outstanding requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped gracefully")
}
