package main

import (
	"context"
	"log"

	"doc-verify-bot/internal/bootstrap"
	"doc-verify-bot/internal/config"
	"doc-verify-bot/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 3. Start Background Workers
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Fatalf("[FATAL] Failed to start photo workers: %v", err)
	}

	// 4. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
