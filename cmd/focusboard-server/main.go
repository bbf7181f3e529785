package main

import (
	"context"
	"log"
	"os"

	"github.com/existflow/focusboard/internal/app"
	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/sync"
	"github.com/existflow/focusboard/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	addr := cfg.Listen
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Storage = config.BackendPostgres
		cfg.DatabaseURL = dbURL
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = logger.ParseLevel(cfg.LogLevel)
	logConfig.FilePath = cfg.LogFile
	logConfig.Console = true
	if err := logger.Init(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, app.Options{Passphrase: os.Getenv(sync.PassphraseEnv)})
	if err != nil {
		log.Fatalf("Failed to open board: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Printf("Error closing board: %v", err)
		}
	}()

	log.Printf("FocusBoard server starting on %s", addr)
	if err := server.Run(ctx, a, addr, cfg.APIToken); err != nil {
		log.Printf("Server failed: %v", err)
	}
}
