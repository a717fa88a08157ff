package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"crowdpulse/pkg/apify"
	"crowdpulse/pkg/cache"
	"crowdpulse/pkg/config"
	"crowdpulse/pkg/database"
	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
	"crowdpulse/pkg/queue"
	"crowdpulse/pkg/s3"
	"crowdpulse/services/ingest/adapters"
	"crowdpulse/services/ingest/orchestrator"
	"crowdpulse/services/ingest/repository"
)

// The ingest runner executes one ingestion run and exits. Platform
// names come as arguments; no arguments means all platforms. The exit
// code is 0 whenever the run completes, regardless of per-platform
// outcomes — failures show up as zero counts and fetch_logs rows.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()

	if cfg.ApifyToken == "" {
		log.Error("APIFY_TOKEN must be set")
		os.Exit(1)
	}
	if cfg.MonitoredXUsername == "" || cfg.MonitoredInstagramUsername == "" || cfg.MonitoredFacebookUsername == "" {
		log.Error("MONITORED_X_USERNAME, MONITORED_INSTAGRAM_USERNAME and MONITORED_FACEBOOK_USERNAME must be set")
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	backend := apify.NewClient(cfg)

	deps := orchestrator.Deps{
		Adapters: []adapters.Adapter{
			adapters.NewXAdapter(backend, cfg.MonitoredXUsername, log),
			adapters.NewInstagramAdapter(backend, cfg.MonitoredInstagramUsername, log),
			adapters.NewFacebookAdapter(backend, cfg.MonitoredFacebookUsername, log),
		},
		Posts:  repository.NewPostRepository(db),
		Logs:   repository.NewFetchLogRepository(db),
		Logger: log,
		Policy: orchestrator.Policy{
			FetchLimit:     cfg.FetchLimit,
			EmptyRunStatus: models.FetchStatus(cfg.FetchEmptyStatus),
			Concurrent:     cfg.FetchConcurrent,
		},
	}

	// Redis, RabbitMQ and S3 are best-effort side channels; the core
	// pipeline only needs Postgres and the scraping backend
	if redisClient, err := cache.NewRedisClient(cfg); err != nil {
		log.Warn("Redis unavailable, feed cache disabled: %v", err)
	} else {
		deps.Feed = cache.NewFeed(redisClient)
		defer redisClient.Close()
	}

	if queueClient, err := queue.NewRabbitMQClient(cfg, log); err != nil {
		log.Warn("RabbitMQ unavailable, ingest events disabled: %v", err)
	} else {
		deps.Events = queueClient
		defer queueClient.Close()
	}

	if cfg.MediaArchiveEnabled {
		if s3Client, err := s3.NewClient(cfg); err != nil {
			log.Warn("S3 unavailable, media archiving disabled: %v", err)
		} else {
			deps.Archiver = s3Client
		}
	}

	orch := orchestrator.New(deps)

	log.Info("Starting ingestion run...")
	summary := orch.FetchAll(context.Background(), os.Args[1:])

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Printf("Fetch summary: %s\n", out)
}
