package main

import (
	"context"
	"log"

	"github.com/amora-app/amora-server/internal/config"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.New()

	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedDemoData(context.Background(), database, logger.L()); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding completed.")
}
