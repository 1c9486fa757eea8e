package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// ironlog-mcp serves workout history to MCP clients over stdio. It runs in
// one of two modes:
//
//	-server URL -api-key KEY   query a remote IronLog instance over its REST API
//	-config config.yaml        query the PostgreSQL history directly
func main() {
	serverURL := flag.String("server", "", "base URL of a remote IronLog server")
	apiKey := flag.String("api-key", "", "API key for the remote server")
	configPath := flag.String("config", "", "path to config file for direct database access")
	flag.Parse()

	// stdout carries the MCP transport; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	switch {
	case *serverURL != "":
		if *apiKey == "" {
			log.Error("-api-key is required with -server")
			os.Exit(1)
		}
		ds = mcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("remote mode", "server", *serverURL)

	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("direct mode", "database", cfg.Database.Name)

	default:
		log.Error("either -server or -config is required")
		os.Exit(1)
	}

	s := mcp.New(ds, Version, log)

	log.Info("IronLog MCP server starting", "version", Version)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
