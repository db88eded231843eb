package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/birdup/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CounterStore caches follower counts and tracks which counts are read most.
type CounterStore interface {
	// GetFollowersCount returns (count, true, nil) on hit and (0, false, nil) on miss.
	GetFollowersCount(ctx context.Context, userID uint) (int64, bool, error)
	SetFollowersCount(ctx context.Context, userID uint, count int64) error
	// CondIncr/CondDecr only touch counts that are already cached, so an
	// event can never seed a wrong value.
	CondIncrFollowersCount(ctx context.Context, userID uint) error
	CondDecrFollowersCount(ctx context.Context, userID uint) error
	RecordAccess(ctx context.Context, userID uint) error
	GetTopHotKeys(ctx context.Context, n int64) ([]uint, error)
	ResetHotKeyScores(ctx context.Context) error
}

// FeedPage is a cached window of the home feed.
type FeedPage struct {
	Posts  []domain.Post `json:"posts"`
	Total  int64         `json:"total"`
	Window domain.Window `json:"window"`
}

// FeedCache caches home feed pages.
type FeedCache interface {
	GetHomePage(ctx context.Context, page, size int) (*FeedPage, error)
	SetHomePage(ctx context.Context, page, size int, p *FeedPage, ttl time.Duration) error
	InvalidateHome(ctx context.Context) error
}
