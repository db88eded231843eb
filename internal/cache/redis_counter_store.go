package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	followersCountKeyPrefix = "birdup:followers:"
	hotKeyScoresKey         = "birdup:hotkey:followers"
)

// RedisCounterStore implements CounterStore backed by Redis.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore wraps an existing client.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func followersCountKey(userID uint) string {
	return followersCountKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (s *RedisCounterStore) GetFollowersCount(ctx context.Context, userID uint) (int64, bool, error) {
	val, err := s.client.Get(ctx, followersCountKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get followers count: %w", err)
	}
	return val, true, nil
}

func (s *RedisCounterStore) SetFollowersCount(ctx context.Context, userID uint, count int64) error {
	if err := s.client.Set(ctx, followersCountKey(userID), count, 0).Err(); err != nil {
		return fmt.Errorf("redis set followers count: %w", err)
	}
	return nil
}

// condIncrScript increments the key only if it exists.
var condIncrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  return redis.call("INCR", key)
end
return 0
`)

// condDecrScript decrements the key only if it exists and stays >= 0.
var condDecrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  local val = tonumber(redis.call("GET", key))
  if val and val > 0 then
    return redis.call("DECR", key)
  end
end
return 0
`)

func (s *RedisCounterStore) CondIncrFollowersCount(ctx context.Context, userID uint) error {
	err := condIncrScript.Run(ctx, s.client, []string{followersCountKey(userID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond incr followers count: %w", err)
	}
	return nil
}

func (s *RedisCounterStore) CondDecrFollowersCount(ctx context.Context, userID uint) error {
	err := condDecrScript.Run(ctx, s.client, []string{followersCountKey(userID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond decr followers count: %w", err)
	}
	return nil
}

func (s *RedisCounterStore) RecordAccess(ctx context.Context, userID uint) error {
	member := strconv.FormatUint(uint64(userID), 10)
	if err := s.client.ZIncrBy(ctx, hotKeyScoresKey, 1, member).Err(); err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// GetTopHotKeys returns the n most read user IDs.
func (s *RedisCounterStore) GetTopHotKeys(ctx context.Context, n int64) ([]uint, error) {
	members, err := s.client.ZRevRange(ctx, hotKeyScoresKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (s *RedisCounterStore) ResetHotKeyScores(ctx context.Context) error {
	if err := s.client.Del(ctx, hotKeyScoresKey).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

var _ CounterStore = (*RedisCounterStore)(nil)
