package main

import (
	"context"
	"log"
	"time"

	"impostor-bot/internal/config"
	"impostor-bot/internal/db"
	"impostor-bot/internal/narrative"
	"impostor-bot/internal/session"
	"impostor-bot/internal/telegram"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is not set")
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.ConfigurePool(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns,
		cfg.DBConnMaxLifetimeSeconds, cfg.DBConnMaxIdleTimeSeconds); err != nil {
		log.Fatalf("database pool setup failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	narrator := narrative.NewClient(cfg.HFAPIKey, cfg.HFModel,
		time.Duration(cfg.HFTimeoutSeconds)*time.Second)
	orch := session.New(conn, cfg, narrator)

	if _, err := orch.RecoverActiveSessions(); err != nil {
		log.Fatalf("session recovery failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.RunCleanup(ctx)

	bot, err := telegram.NewBot(cfg.TelegramToken, orch)
	if err != nil {
		log.Fatalf("telegram setup failed: %v", err)
	}
	bot.Start()
}
