package views

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const statsRetention = 30 * 24 * time.Hour

func dayKey(day time.Time) string {
	return "post_views:" + day.UTC().Format(DayLayout)
}

// RedisStats keeps one hash per UTC day, mapping post id to views counted
// that day.
type RedisStats struct {
	client *redis.Client
}

func NewRedisStats(redisUrl string) (*RedisStats, error) {
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStats{client: redis.NewClient(opts)}, nil
}

func (s *RedisStats) Incr(ctx context.Context, postId string, viewedAt time.Time) error {
	key := dayKey(viewedAt)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, postId, 1)
	pipe.Expire(ctx, key, statsRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count view of post %s: %w", postId, err)
	}
	return nil
}

func (s *RedisStats) Daily(ctx context.Context, day time.Time) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, dayKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read view stats: %w", err)
	}
	return parseCounters(raw)
}

func (s *RedisStats) Close() error {
	return s.client.Close()
}

func parseCounters(raw map[string]string) (map[string]int64, error) {
	counters := make(map[string]int64, len(raw))
	for postId, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt counter for post %s: %w", postId, err)
		}
		counters[postId] = n
	}
	return counters, nil
}
