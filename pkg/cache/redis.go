package cache

import (
	"context"
	"fmt"
	"time"

	"crowdpulse/pkg/config"

	"github.com/redis/go-redis/v9"
)

const (
	feedMaxLen = 999
	feedTTL    = 7 * 24 * time.Hour
)

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Feed caches the most recently ingested post IDs per platform so the
// read API can serve recent posts without hitting Postgres.
type Feed struct {
	client *redis.Client
}

func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client}
}

func feedKey(platform string) string {
	return fmt.Sprintf("feed:%s", platform)
}

// Push prepends post IDs to the platform feed, newest first.
func (f *Feed) Push(ctx context.Context, platform string, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	key := feedKey(platform)
	// LPush wants newest last so the newest ends up at the head
	args := make([]interface{}, 0, len(postIDs))
	for i := len(postIDs) - 1; i >= 0; i-- {
		args = append(args, postIDs[i])
	}
	if err := f.client.LPush(ctx, key, args...).Err(); err != nil {
		return err
	}
	f.client.LTrim(ctx, key, 0, feedMaxLen)
	f.client.Expire(ctx, key, feedTTL)
	return nil
}

// Recent returns up to limit post IDs for a platform, newest first.
func (f *Feed) Recent(ctx context.Context, platform string, limit, offset int) ([]string, error) {
	end := int64(offset + limit - 1)
	ids, err := f.client.LRange(ctx, feedKey(platform), int64(offset), end).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	return ids, nil
}
