package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/procgen/internal/bridge"
	"github.com/lawnchairsociety/procgen/internal/config"
	"github.com/lawnchairsociety/procgen/internal/database"
	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/logger"
)

func main() {
	configFile := flag.String("config", "data/procgen.yaml", "Path to generator config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	addr := flag.String("addr", "", "Listen address (empty uses config)")
	seed := flag.Int64("seed", 0, "Base seed (0 uses config, then current time per connection)")
	hashToken := flag.String("hash-token", "", "Print the bcrypt hash of a bridge token for auth_token_hash and exit")
	flag.Parse()

	if *hashToken != "" {
		hash, err := bridge.HashToken(*hashToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to hash token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting procgen bridge")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if *addr != "" {
		cfg.Bridge.Address = *addr
	}
	if *seed != 0 {
		cfg.Generation.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	gen := dungeon.NewGenerator(cfg.Generation.Params())
	srv := bridge.NewServer(cfg.Bridge, gen, cfg.Generation.Seed)

	if cfg.Storage.StorageEnabled() {
		db, err := database.OpenWithConfig(cfg.Storage.Database())
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		srv.SetRecorder(db)
		logger.Info("Run history enabled", "driver", cfg.Storage.Driver)
	} else {
		logger.Info("Run history disabled")
	}

	if len(cfg.Bridge.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Bridge.AllowedOrigins) == 1 && cfg.Bridge.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Bridge.AllowedOrigins)
	}
	if cfg.Bridge.AuthTokenHash == "" {
		logger.Warning("Bridge auth token not set, any renderer may connect")
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("Bridge server error: %v", err)
		}
	}()

	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down bridge")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Bridge shutdown incomplete", "error", err)
	}
	logger.Info("Bridge stopped")
}
