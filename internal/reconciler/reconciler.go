package reconciler

import (
	"context"
	"time"

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/config"
	pkglog "github.com/weiawesome/birdup/pkg/log"
)

// FollowerCounter is the slice of the follow repository the reconciler reads.
type FollowerCounter interface {
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
}

// Reconciler periodically re-syncs the most read follower counts with the
// database, correcting drift left by missed events.
type Reconciler struct {
	store  cache.CounterStore
	repo   FollowerCounter
	cfg    config.ReconcilerConfig
	quit   chan struct{}
	doneCh chan struct{}
}

// New creates a new Reconciler.
func New(store cache.CounterStore, repo FollowerCounter, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		quit:   make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass and returns how many counters were refreshed.
func (r *Reconciler) Reconcile(ctx context.Context) int {
	l := pkglog.L()
	l.Debug().Msg("reconciler: starting hot-key reconciliation")

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = 100
	}

	userIDs, err := r.store.GetTopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get top hot keys")
		return 0
	}

	if len(userIDs) == 0 {
		l.Debug().Msg("reconciler: no hot keys to reconcile")
		return 0
	}

	synced := 0
	for _, userID := range userIDs {
		count, err := r.repo.CountFollowers(ctx, userID)
		if err != nil {
			l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("reconciler: failed to get followers count from db")
			continue
		}
		if err := r.store.SetFollowersCount(ctx, userID, count); err != nil {
			l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("reconciler: failed to set followers count in redis")
			continue
		}
		synced++
	}

	// Scores restart every cycle so the set follows current traffic.
	if err := r.store.ResetHotKeyScores(ctx); err != nil {
		l.Error().Err(err).Msg("reconciler: failed to reset hot key scores")
	}

	l.Info().Int("count", synced).Msg("reconciler: hot-key reconciliation complete")
	return synced
}
