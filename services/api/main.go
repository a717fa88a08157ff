package main

import (
	"net/http"
	"time"

	"crowdpulse/pkg/apify"
	"crowdpulse/pkg/cache"
	"crowdpulse/pkg/config"
	"crowdpulse/pkg/database"
	"crowdpulse/pkg/jwt"
	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/middleware"
	"crowdpulse/pkg/models"
	"crowdpulse/pkg/queue"
	"crowdpulse/services/api/handlers"
	"crowdpulse/services/ingest/adapters"
	"crowdpulse/services/ingest/orchestrator"
	"crowdpulse/services/ingest/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Crowdpulse API
// @version         1.0
// @description     Read and trigger API for the multi-platform post ingestion pipeline.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	postRepo := repository.NewPostRepository(db)
	logRepo := repository.NewFetchLogRepository(db)
	jwtService := jwt.NewService(cfg.JWTSecret)

	var feed *cache.Feed
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, serving posts from the database only: %v", err)
	} else {
		feed = cache.NewFeed(redisClient)
	}

	backend := apify.NewClient(cfg)
	deps := orchestrator.Deps{
		Adapters: []adapters.Adapter{
			adapters.NewXAdapter(backend, cfg.MonitoredXUsername, log),
			adapters.NewInstagramAdapter(backend, cfg.MonitoredInstagramUsername, log),
			adapters.NewFacebookAdapter(backend, cfg.MonitoredFacebookUsername, log),
		},
		Posts:  postRepo,
		Logs:   logRepo,
		Logger: log,
		Policy: orchestrator.Policy{
			FetchLimit:     cfg.FetchLimit,
			EmptyRunStatus: models.FetchStatus(cfg.FetchEmptyStatus),
			Concurrent:     cfg.FetchConcurrent,
		},
	}
	if feed != nil {
		deps.Feed = feed
	}
	if queueClient, err := queue.NewRabbitMQClient(cfg, log); err != nil {
		log.Warn("RabbitMQ unavailable, ingest events disabled: %v", err)
	} else {
		deps.Events = queueClient
		defer queueClient.Close()
	}
	orch := orchestrator.New(deps)

	postHandler := handlers.NewPostHandler(postRepo, feed, log)
	fetchHandler := handlers.NewFetchHandler(orch, logRepo, log)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// Swagger docs are generated with `swag init`
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/posts", postHandler.GetPosts)
		v1.GET("/logs", fetchHandler.GetLogs)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		if redisClient != nil {
			protected.Use(middleware.RateLimitMiddleware(redisClient, 5, time.Minute))
		}
		protected.POST("/fetch", fetchHandler.TriggerFetch)
	}

	log.Info("API service starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Error("Server failed: %v", err)
		panic(err)
	}
}
