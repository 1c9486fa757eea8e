package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironlog/internal/coach"
	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/draft"
	"github.com/claude/ironlog/internal/server"
	"github.com/claude/ironlog/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open draft store
	store, err := openDraftStore(cfg, log)
	if err != nil {
		log.Error("failed to open draft store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	drafts := draft.NewManager(store, db, log)

	// Coach is optional: without an API key the insight endpoint answers
	// with the static fallback and plan generation reports unavailable.
	var coachClient *coach.Client
	if cfg.Coach.APIKey != "" {
		coachClient = coach.New(cfg.Coach.BaseURL, cfg.Coach.Model, cfg.Coach.APIKey)
		log.Info("coach enabled", "model", cfg.Coach.Model)
	} else {
		log.Info("coach disabled: no API key configured")
	}

	srv := server.New(db, drafts, coachClient, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func openDraftStore(cfg *config.Config, log *slog.Logger) (draft.Store, error) {
	switch cfg.Draft.Backend {
	case "redis":
		log.Info("draft store: redis", "addr", cfg.Draft.Redis.Addr)
		return draft.NewRedis(cfg.Draft.Redis.Addr, cfg.Draft.Redis.Password, cfg.Draft.Redis.DB), nil
	default:
		log.Info("draft store: sqlite", "dir", cfg.Draft.Dir)
		return draft.OpenSQLite(cfg.Draft.Dir)
	}
}
