package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	homeFeedKeyPrefix = "birdup:feed:home"
	homeFeedIndexKey  = "birdup:feed:home:keys"
)

// RedisFeedCache implements FeedCache. Every stored key is recorded in an
// index set so invalidation does not need SCAN.
type RedisFeedCache struct {
	client *redis.Client
}

// NewRedisFeedCache wraps an existing client.
func NewRedisFeedCache(client *redis.Client) *RedisFeedCache {
	return &RedisFeedCache{client: client}
}

func homeFeedKey(page, size int) string {
	return fmt.Sprintf("%s:%d:%d", homeFeedKeyPrefix, size, page)
}

func (c *RedisFeedCache) GetHomePage(ctx context.Context, page, size int) (*FeedPage, error) {
	data, err := c.client.Get(ctx, homeFeedKey(page, size)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var p FeedPage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &p, nil
}

func (c *RedisFeedCache) SetHomePage(ctx context.Context, page, size int, p *FeedPage, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := homeFeedKey(page, size)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.SAdd(ctx, homeFeedIndexKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// invalidateHomeScript drops every indexed page and the index in one step,
// so a page stored concurrently is either deleted or still indexed.
var invalidateHomeScript = redis.NewScript(`
local keys = redis.call("SMEMBERS", KEYS[1])
for i = 1, #keys, 500 do
  redis.call("DEL", unpack(keys, i, math.min(i + 499, #keys)))
end
redis.call("DEL", KEYS[1])
return #keys
`)

func (c *RedisFeedCache) InvalidateHome(ctx context.Context) error {
	err := invalidateHomeScript.Run(ctx, c.client, []string{homeFeedIndexKey}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}

var _ FeedCache = (*RedisFeedCache)(nil)
