package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// JWT
	JWTSecret string

	// AWS S3 (media archive)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3BucketName       string
	S3UseSSL           string

	// Apify scraping backend
	ApifyToken   string
	ApifyBaseURL string

	// Monitored accounts
	MonitoredXUsername         string
	MonitoredInstagramUsername string
	MonitoredFacebookUsername  string

	// Fetch behavior
	FetchLimit          int
	FetchEmptyStatus    string // status logged when a fetch returns zero items: "partial" or "success"
	FetchConcurrent     bool
	MediaArchiveEnabled bool
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "crowdpulse"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "crowdpulse-media"),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),

		ApifyToken:   getEnv("APIFY_TOKEN", ""),
		ApifyBaseURL: getEnv("APIFY_BASE_URL", "https://api.apify.com"),

		MonitoredXUsername:         getEnv("MONITORED_X_USERNAME", ""),
		MonitoredInstagramUsername: getEnv("MONITORED_INSTAGRAM_USERNAME", ""),
		MonitoredFacebookUsername:  getEnv("MONITORED_FACEBOOK_USERNAME", ""),

		FetchLimit:          getEnvInt("FETCH_LIMIT", 50),
		FetchEmptyStatus:    getEnv("FETCH_EMPTY_STATUS", "partial"),
		FetchConcurrent:     getEnvBool("FETCH_CONCURRENT", false),
		MediaArchiveEnabled: getEnvBool("MEDIA_ARCHIVE_ENABLED", false),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
