package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/weiawesome/birdup/internal/audit"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/media"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
	"github.com/weiawesome/birdup/pkg/storage"
)

const (
	postImagePrefix = "posts"
	urlExpiry       = time.Hour
)

// postService implements PostService.
type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	groups   repository.GroupRepository
	follows  repository.FollowRepository
	store    storage.Storage
	pub      pubsub.Publisher
	mode     policy.GroupPostingMode
}

// NewPostService creates a new PostService instance.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
	follows repository.FollowRepository,
	store storage.Storage,
	pub pubsub.Publisher,
	mode policy.GroupPostingMode,
) PostService {
	if mode == "" {
		mode = policy.Restricted
	}
	return &postService{
		posts:    posts,
		comments: comments,
		groups:   groups,
		follows:  follows,
		store:    store,
		pub:      pub,
		mode:     mode,
	}
}

func (s *postService) Get(ctx context.Context, id uint) (*domain.Post, error) {
	return findPost(ctx, s.posts, id)
}

func (s *postService) Detail(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := findPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.AllByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

func (s *postService) List(ctx context.Context, pager domain.Pager) (*domain.Page[domain.Post], error) {
	items, total, w, err := s.posts.List(ctx, repository.PostFilter{}, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

// checkGroup loads the group and applies the posting policy to it.
func (s *postService) checkGroup(ctx context.Context, caller domain.Caller, group *domain.Group) error {
	following, err := s.follows.IsFollowingGroup(ctx, caller.UserID, group.ID)
	if err != nil {
		return err
	}
	return policy.CanPostInGroup(caller, group, following, s.mode)
}

func (s *postService) Create(ctx context.Context, caller domain.Caller, in domain.PostInput) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	if err := policy.RequireAuthenticated(caller, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}

	post := &domain.Post{Text: in.Text, AuthorID: caller.UserID, AuthorUsername: caller.Username}
	if in.GroupID != nil {
		group, err := findGroupByID(ctx, s.groups, *in.GroupID)
		if err != nil {
			return nil, err
		}
		if err := s.checkGroup(ctx, caller, group); err != nil {
			return nil, err
		}
		post.GroupID = &group.ID
		post.GroupSlug = group.Slug
		post.GroupTitle = group.Title
	}

	if in.Image != nil {
		key, err := storeImage(ctx, s.store, postImagePrefix, media.PostImage, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Msg("failed to create post")
		removeObject(ctx, s.store, post.Image)
		return nil, err
	}

	publish(ctx, s.pub, pubsub.PostChannel(post.AuthorID), pubsub.EventPostCreated, pubsub.PostPayload{
		PostID:   post.ID,
		AuthorID: post.AuthorID,
		GroupID:  post.GroupID,
	})
	audit.LogTarget(ctx, audit.ActionCreatePost, caller.UserID, strconv.FormatUint(uint64(post.ID), 10), "post created")
	return post, nil
}

func (s *postService) CheckGroupPosting(ctx context.Context, caller domain.Caller, slug string) (*domain.Group, error) {
	if err := policy.RequireAuthenticated(caller, ""); err != nil {
		return nil, err
	}
	group, err := findGroup(ctx, s.groups, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, caller, group); err != nil {
		return group, err
	}
	return group, nil
}

// CreateInGroup files the post under the group named by slug, whatever group
// the input names.
func (s *postService) CreateInGroup(ctx context.Context, caller domain.Caller, slug string, in domain.PostInput) (*domain.Post, error) {
	group, err := s.CheckGroupPosting(ctx, caller, slug)
	if err != nil {
		return nil, err
	}
	in.GroupID = &group.ID
	return s.Create(ctx, caller, in)
}

func (s *postService) CheckEdit(ctx context.Context, caller domain.Caller, id uint) (*domain.Post, error) {
	post, err := findPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyPost(caller, post); err != nil {
		return post, err
	}
	return post, nil
}

// Update replaces text and group. Moving the post into a different group
// needs the posting check for that group; a nil group clears it.
func (s *postService) Update(ctx context.Context, caller domain.Caller, id uint, in domain.PostInput) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	post, err := s.CheckEdit(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}

	if in.GroupID != nil && (post.GroupID == nil || *post.GroupID != *in.GroupID) {
		group, err := findGroupByID(ctx, s.groups, *in.GroupID)
		if err != nil {
			return nil, err
		}
		if err := s.checkGroup(ctx, caller, group); err != nil {
			return nil, err
		}
		post.GroupSlug = group.Slug
		post.GroupTitle = group.Title
	} else if in.GroupID == nil {
		post.GroupSlug = ""
		post.GroupTitle = ""
	}
	post.Text = in.Text
	post.GroupID = in.GroupID

	oldImage := ""
	if in.Image != nil {
		key, err := storeImage(ctx, s.store, postImagePrefix, media.PostImage, in.Image)
		if err != nil {
			return nil, err
		}
		oldImage, post.Image = post.Image, key
	}

	if err := s.posts.Update(ctx, post); err != nil {
		l.Error().Err(err).Uint(pkglog.FieldPostID, id).Msg("failed to update post")
		if in.Image != nil {
			removeObject(ctx, s.store, post.Image)
		}
		return nil, err
	}
	removeObject(ctx, s.store, oldImage)

	publish(ctx, s.pub, pubsub.PostChannel(post.AuthorID), pubsub.EventPostUpdated, pubsub.PostPayload{
		PostID:   post.ID,
		AuthorID: post.AuthorID,
		GroupID:  post.GroupID,
	})
	audit.LogTarget(ctx, audit.ActionUpdatePost, caller.UserID, strconv.FormatUint(uint64(id), 10), "post updated")
	return post, nil
}

func (s *postService) Delete(ctx context.Context, caller domain.Caller, id uint) error {
	post, err := s.CheckEdit(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldPostID, id).Msg("failed to delete post")
		return err
	}
	removeObject(ctx, s.store, post.Image)

	publish(ctx, s.pub, pubsub.PostChannel(post.AuthorID), pubsub.EventPostDeleted, pubsub.PostPayload{
		PostID:   post.ID,
		AuthorID: post.AuthorID,
		GroupID:  post.GroupID,
	})
	audit.LogTarget(ctx, audit.ActionDeletePost, caller.UserID, strconv.FormatUint(uint64(id), 10), "post deleted")
	return nil
}

func (s *postService) ImageURL(ctx context.Context, post *domain.Post) string {
	return objectURL(ctx, s.store, post.Image)
}

// Ensure interface is satisfied at compile time.
var _ PostService = (*postService)(nil)
