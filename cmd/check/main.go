package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crowdpulse/pkg/apify"
	"crowdpulse/pkg/config"
	"crowdpulse/pkg/database"
	"crowdpulse/pkg/logger"
	"crowdpulse/services/ingest/repository"
)

// Connectivity smoke check: verifies the database and the scraping
// backend are reachable before scheduling unattended runs.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New()
	failed := false

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Database: %v", err)
		failed = true
	} else {
		posts, _ := repository.NewPostRepository(db).Count()
		logs, _ := repository.NewFetchLogRepository(db).Count()
		log.Info("Database: ok (%d posts, %d fetch logs)", posts, logs)
	}

	if cfg.ApifyToken == "" {
		log.Error("Apify: APIFY_TOKEN is not set")
		failed = true
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := apify.NewClient(cfg).CheckToken(ctx); err != nil {
			log.Error("Apify: %v", err)
			failed = true
		} else {
			log.Info("Apify: ok")
		}
	}

	if failed {
		os.Exit(1)
	}
	log.Info("All checks passed")
}
