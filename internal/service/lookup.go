package service

import (
	"context"
	"errors"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/repository"
)

// Lookups translate repository not-found errors into service errors.

func findUser(ctx context.Context, users repository.UserRepository, username string) (*domain.User, error) {
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func findGroup(ctx context.Context, groups repository.GroupRepository, slug string) (*domain.Group, error) {
	g, err := groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func findGroupByID(ctx context.Context, groups repository.GroupRepository, id uint) (*domain.Group, error) {
	g, err := groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func findPost(ctx context.Context, posts repository.PostRepository, id uint) (*domain.Post, error) {
	p, err := posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}
