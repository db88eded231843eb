package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkglog "github.com/weiawesome/birdup/pkg/log"
)

// FeedOptions tune the feeds.
type FeedOptions struct {
	PageSize                   int
	ProfileFeedIncludesGrouped bool
	PostingMode                policy.GroupPostingMode
	// HomeCacheTTL enables the home page cache when positive.
	HomeCacheTTL time.Duration
}

// feedService implements FeedService.
type feedService struct {
	posts   repository.PostRepository
	users   repository.UserRepository
	groups  repository.GroupRepository
	follows FollowService
	cache   cache.FeedCache
	opts    FeedOptions
	sf      singleflight.Group
}

// NewFeedService creates a new FeedService instance.
func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	follows FollowService,
	feedCache cache.FeedCache,
	opts FeedOptions,
) FeedService {
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.PostingMode == "" {
		opts.PostingMode = policy.Restricted
	}
	return &feedService{
		posts:   posts,
		users:   users,
		groups:  groups,
		follows: follows,
		cache:   feedCache,
		opts:    opts,
	}
}

func (s *feedService) pager(page int) domain.PageNumber {
	return domain.PageNumber{Number: page, Size: s.opts.PageSize}
}

func (s *feedService) list(ctx context.Context, f repository.PostFilter, page int) (*domain.Page[domain.Post], error) {
	items, total, w, err := s.posts.List(ctx, f, s.pager(page))
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

// Home lists every post newest first. With a cache TTL set, pages are
// served from the feed cache and concurrent misses share one query.
func (s *feedService) Home(ctx context.Context, page int) (*domain.Page[domain.Post], error) {
	if s.opts.HomeCacheTTL <= 0 || s.cache == nil {
		return s.list(ctx, repository.PostFilter{}, page)
	}
	l := pkglog.Ctx(ctx)

	cached, err := s.cache.GetHomePage(ctx, page, s.opts.PageSize)
	if err == nil {
		return domain.NewPage(cached.Posts, cached.Total, cached.Window), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Msg("feed cache read failed, falling back to db")
	}

	v, err, _ := s.sf.Do(strconv.Itoa(page), func() (interface{}, error) {
		items, total, w, err := s.posts.List(ctx, repository.PostFilter{}, s.pager(page))
		if err != nil {
			return nil, err
		}
		fp := &cache.FeedPage{Posts: items, Total: total, Window: w}
		if err := s.cache.SetHomePage(context.WithoutCancel(ctx), page, s.opts.PageSize, fp, s.opts.HomeCacheTTL); err != nil {
			l.Warn().Err(err).Msg("failed to populate feed cache")
		}
		return fp, nil
	})
	if err != nil {
		return nil, err
	}
	fp := v.(*cache.FeedPage)
	return domain.NewPage(fp.Posts, fp.Total, fp.Window), nil
}

// Personal is the union of posts by followed authors and posts in followed
// groups, each post once.
func (s *feedService) Personal(ctx context.Context, caller domain.Caller, page int) (*domain.Page[domain.Post], error) {
	if err := policy.RequireAuthenticated(caller, ""); err != nil {
		return nil, err
	}
	follower := caller.UserID
	return s.list(ctx, repository.PostFilter{FollowerID: &follower}, page)
}

func (s *feedService) Group(ctx context.Context, caller domain.Caller, slug string, page int) (*GroupFeed, error) {
	group, err := findGroup(ctx, s.groups, slug)
	if err != nil {
		return nil, err
	}

	posts, err := s.list(ctx, repository.PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowingGroup(ctx, caller, group.ID)
	if err != nil {
		return nil, err
	}

	return &GroupFeed{
		Group:     group,
		Posts:     posts,
		Following: following,
		CanPost:   policy.CanPostInGroup(caller, group, following, s.opts.PostingMode) == nil,
	}, nil
}

func (s *feedService) Profile(ctx context.Context, caller domain.Caller, username string, page int) (*ProfileFeed, error) {
	author, err := findUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.list(ctx, repository.PostFilter{
		AuthorID:      &author.ID,
		UngroupedOnly: !s.opts.ProfileFeedIncludesGrouped,
	}, page)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowingAuthor(ctx, caller, author.ID)
	if err != nil {
		return nil, err
	}

	counts, err := s.follows.Counts(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	return &ProfileFeed{
		Author:       author,
		Profile:      profile,
		Posts:        posts,
		Following:    following,
		FollowButton: caller.IsAuthenticated() && !caller.Is(author.ID),
		Counts:       *counts,
	}, nil
}

func (s *feedService) InvalidateHome(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateHome(ctx)
}

// Ensure interface is satisfied at compile time.
var _ FeedService = (*feedService)(nil)
