package service

import (
	"context"
	"errors"

	"github.com/weiawesome/birdup/internal/audit"
	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

// followService implements FollowService.
type followService struct {
	follows  repository.FollowRepository
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	counters cache.CounterStore
	pub      pubsub.Publisher
	pageSize int
}

// NewFollowService creates a new FollowService instance.
func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	posts repository.PostRepository,
	counters cache.CounterStore,
	pub pubsub.Publisher,
	pageSize int,
) FollowService {
	return &followService{
		follows:  follows,
		users:    users,
		groups:   groups,
		posts:    posts,
		counters: counters,
		pub:      pub,
		pageSize: pageSize,
	}
}

func (s *followService) IsFollowingAuthor(ctx context.Context, caller domain.Caller, authorID uint) (bool, error) {
	if !caller.IsAuthenticated() {
		return false, nil
	}
	return s.follows.IsFollowingAuthor(ctx, caller.UserID, authorID)
}

func (s *followService) IsFollowingGroup(ctx context.Context, caller domain.Caller, groupID uint) (bool, error) {
	if !caller.IsAuthenticated() {
		return false, nil
	}
	return s.follows.IsFollowingGroup(ctx, caller.UserID, groupID)
}

// FollowAuthor makes caller follow the user named username. Duplicate edges
// are rejected by the store's unique index.
func (s *followService) FollowAuthor(ctx context.Context, caller domain.Caller, username string) (*domain.Follow, error) {
	l := pkglog.Ctx(ctx)

	if err := policy.CanFollow(caller); err != nil {
		return nil, err
	}

	author, err := findUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	if caller.Is(author.ID) {
		return nil, ErrSelfFollow
	}

	follow, err := s.follows.FollowAuthor(ctx, caller.UserID, author.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil, ErrAlreadyFollowing
		}
		l.Error().Err(err).
			Uint(pkglog.FieldAuthorID, author.ID).
			Msg("failed to follow author")
		return nil, err
	}

	publish(ctx, s.pub, pubsub.FollowChannel(caller.UserID), pubsub.EventFollowCreated, pubsub.FollowPayload{
		FollowerID: caller.UserID,
		AuthorID:   uintPtr(author.ID),
	})
	audit.LogTarget(ctx, audit.ActionFollow, caller.UserID, author.Username, "author followed")

	follow.FollowerUsername = caller.Username
	follow.AuthorUsername = author.Username
	return follow, nil
}

// FollowGroup makes caller follow the group.
func (s *followService) FollowGroup(ctx context.Context, caller domain.Caller, slug string) (*domain.Follow, error) {
	l := pkglog.Ctx(ctx)

	if err := policy.CanFollow(caller); err != nil {
		return nil, err
	}

	group, err := findGroup(ctx, s.groups, slug)
	if err != nil {
		return nil, err
	}

	follow, err := s.follows.FollowGroup(ctx, caller.UserID, group.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil, ErrAlreadyFollowing
		}
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to follow group")
		return nil, err
	}

	publish(ctx, s.pub, pubsub.FollowChannel(caller.UserID), pubsub.EventFollowCreated, pubsub.FollowPayload{
		FollowerID: caller.UserID,
		GroupID:    uintPtr(group.ID),
	})
	audit.LogTarget(ctx, audit.ActionFollow, caller.UserID, group.Slug, "group followed")

	follow.FollowerUsername = caller.Username
	follow.GroupSlug = group.Slug
	return follow, nil
}

func (s *followService) UnfollowAuthor(ctx context.Context, caller domain.Caller, username string) error {
	if err := policy.CanFollow(caller); err != nil {
		return err
	}

	author, err := findUser(ctx, s.users, username)
	if err != nil {
		return err
	}

	removed, err := s.follows.UnfollowAuthor(ctx, caller.UserID, author.ID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldAuthorID, author.ID).Msg("failed to unfollow author")
		return err
	}
	if !removed {
		return nil
	}

	publish(ctx, s.pub, pubsub.FollowChannel(caller.UserID), pubsub.EventFollowDeleted, pubsub.FollowPayload{
		FollowerID: caller.UserID,
		AuthorID:   uintPtr(author.ID),
	})
	audit.LogTarget(ctx, audit.ActionUnfollow, caller.UserID, author.Username, "author unfollowed")
	return nil
}

func (s *followService) UnfollowGroup(ctx context.Context, caller domain.Caller, slug string) error {
	if err := policy.CanFollow(caller); err != nil {
		return err
	}

	group, err := findGroup(ctx, s.groups, slug)
	if err != nil {
		return err
	}

	removed, err := s.follows.UnfollowGroup(ctx, caller.UserID, group.ID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to unfollow group")
		return err
	}
	if !removed {
		return nil
	}

	publish(ctx, s.pub, pubsub.FollowChannel(caller.UserID), pubsub.EventFollowDeleted, pubsub.FollowPayload{
		FollowerID: caller.UserID,
		GroupID:    uintPtr(group.ID),
	})
	audit.LogTarget(ctx, audit.ActionUnfollow, caller.UserID, group.Slug, "group unfollowed")
	return nil
}

func (s *followService) ListFollows(ctx context.Context, caller domain.Caller, search string, pager domain.Pager) (*domain.Page[domain.Follow], error) {
	if err := policy.RequireAuthenticated(caller, ""); err != nil {
		return nil, err
	}
	items, total, w, err := s.follows.ListByFollower(ctx, caller.UserID, search, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

func (s *followService) GroupFollowers(ctx context.Context, slug string, page int) (*domain.Group, *domain.Page[domain.User], error) {
	group, err := findGroup(ctx, s.groups, slug)
	if err != nil {
		return nil, nil, err
	}
	items, total, w, err := s.follows.ListGroupFollowers(ctx, group.ID, domain.PageNumber{Number: page, Size: s.pageSize})
	if err != nil {
		return nil, nil, err
	}
	return group, domain.NewPage(items, total, w), nil
}

// FollowersCount checks the counter cache first; on miss it queries the DB,
// populates the cache, and records a hot key access.
func (s *followService) FollowersCount(ctx context.Context, userID uint) (int64, error) {
	l := pkglog.Ctx(ctx)

	if err := s.counters.RecordAccess(ctx, userID); err != nil {
		l.Warn().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to record hot key access")
	}

	count, found, err := s.counters.GetFollowersCount(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Uint(pkglog.FieldUserID, userID).Msg("cache get followers count failed, falling back to db")
	}
	if found {
		return count, nil
	}

	count, err = s.follows.CountFollowers(ctx, userID)
	if err != nil {
		l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to get followers count from db")
		return 0, err
	}

	if err := s.counters.SetFollowersCount(ctx, userID, count); err != nil {
		l.Warn().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to set followers count in cache")
	}
	return count, nil
}

func (s *followService) Counts(ctx context.Context, userID uint) (*domain.FollowCounts, error) {
	followers, err := s.FollowersCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.FollowCounts{Followers: followers, Following: following, Posts: posts}, nil
}

// Ensure interface is satisfied at compile time.
var _ FollowService = (*followService)(nil)
