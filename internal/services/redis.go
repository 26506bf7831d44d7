package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const unreadCountTTL = 5 * time.Minute

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func unreadCountKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// GetCachedUnreadCount returns the cached unread notification count for a
// user. The second return value reports a cache hit.
func GetCachedUnreadCount(ctx context.Context, userID uint) (int64, bool) {
	if RedisClient == nil {
		return 0, false
	}
	count, err := RedisClient.Get(ctx, unreadCountKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return count, true
}

// CacheUnreadCount stores the unread notification count for a user
func CacheUnreadCount(ctx context.Context, userID uint, count int64) {
	if RedisClient == nil {
		return
	}
	RedisClient.Set(ctx, unreadCountKey(userID), count, unreadCountTTL)
}

// InvalidateUnreadCount drops the cached unread count after a write
func InvalidateUnreadCount(ctx context.Context, userID uint) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, unreadCountKey(userID))
}

// PublishParcelUpdate publishes a parcel lifecycle event to Redis pub/sub so
// other instances can forward it to their connected clients.
func PublishParcelUpdate(ctx context.Context, userID uint, event ParcelEvent) error {
	if RedisClient == nil {
		return nil
	}

	payload := map[string]interface{}{
		"userId": userID,
		"event":  event,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "parcel:updates", data).Err()
}
