package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/weiawesome/birdup/internal/audit"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

// commentService implements CommentService.
type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	pub      pubsub.Publisher
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, pub pubsub.Publisher) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
		pub:      pub,
	}
}

func (s *commentService) Add(ctx context.Context, caller domain.Caller, postID uint, text string) (*domain.Comment, error) {
	if err := policy.RequireAuthenticated(caller, policy.PostURL(postID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if _, err := findPost(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:         postID,
		AuthorID:       caller.UserID,
		AuthorUsername: caller.Username,
		Text:           text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to create comment")
		return nil, err
	}

	publish(ctx, s.pub, pubsub.CommentChannel(postID), pubsub.EventCommentCreated, pubsub.CommentPayload{
		CommentID: comment.ID,
		PostID:    postID,
		AuthorID:  caller.UserID,
	})
	audit.LogTarget(ctx, audit.ActionCreateComment, caller.UserID, strconv.FormatUint(uint64(comment.ID), 10), "comment created")
	return comment, nil
}

func (s *commentService) List(ctx context.Context, postID uint, pager domain.Pager) (*domain.Page[domain.Comment], error) {
	if _, err := findPost(ctx, s.posts, postID); err != nil {
		return nil, err
	}
	items, total, w, err := s.comments.ListByPost(ctx, postID, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

func (s *commentService) Get(ctx context.Context, postID, id uint) (*domain.Comment, error) {
	c, err := s.comments.GetByID(ctx, postID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, caller domain.Caller, postID, id uint, text string) (*domain.Comment, error) {
	c, err := s.Get(ctx, postID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyComment(caller, c); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	if err := s.comments.UpdateText(ctx, id, text); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldCommentID, id).Msg("failed to update comment")
		return nil, err
	}
	c.Text = text

	audit.LogTarget(ctx, audit.ActionUpdateComment, caller.UserID, strconv.FormatUint(uint64(id), 10), "comment updated")
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, caller domain.Caller, postID, id uint) error {
	c, err := s.Get(ctx, postID, id)
	if err != nil {
		return err
	}
	if err := policy.CanModifyComment(caller, c); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldCommentID, id).Msg("failed to delete comment")
		return err
	}

	audit.LogTarget(ctx, audit.ActionDeleteComment, caller.UserID, strconv.FormatUint(uint64(id), 10), "comment deleted")
	return nil
}

// Ensure interface is satisfied at compile time.
var _ CommentService = (*commentService)(nil)
