package service

import (
	"context"
	"errors"
	"strings"

	"github.com/weiawesome/birdup/internal/audit"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

// groupService implements GroupService.
type groupService struct {
	groups repository.GroupRepository
	pub    pubsub.Publisher
}

// NewGroupService creates a new GroupService instance.
func NewGroupService(groups repository.GroupRepository, pub pubsub.Publisher) GroupService {
	return &groupService{groups: groups, pub: pub}
}

// Create stores the group and makes the creator its first follower in the
// same transaction.
func (s *groupService) Create(ctx context.Context, caller domain.Caller, req *domain.GroupCreateRequest) (*domain.Group, error) {
	l := pkglog.Ctx(ctx)

	if err := policy.CanCreateGroup(caller); err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(req.Slug)
	if !domain.ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	creator := caller.UserID
	group := &domain.Group{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: req.Description,
		CreatorID:   &creator,
	}
	if err := s.groups.CreateWithCreatorFollow(ctx, group); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugTaken
		}
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to create group")
		return nil, err
	}

	publish(ctx, s.pub, pubsub.FollowChannel(caller.UserID), pubsub.EventFollowCreated, pubsub.FollowPayload{
		FollowerID: caller.UserID,
		GroupID:    uintPtr(group.ID),
	})
	audit.LogTarget(ctx, audit.ActionCreateGroup, caller.UserID, group.Slug, "group created")
	return group, nil
}

func (s *groupService) List(ctx context.Context, pager domain.Pager) (*domain.Page[domain.Group], error) {
	items, total, w, err := s.groups.List(ctx, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

func (s *groupService) GetByID(ctx context.Context, id uint) (*domain.Group, error) {
	return findGroupByID(ctx, s.groups, id)
}

func (s *groupService) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return findGroup(ctx, s.groups, slug)
}

// Ensure interface is satisfied at compile time.
var _ GroupService = (*groupService)(nil)
