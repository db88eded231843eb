package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/birdup/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrGroupNotFound    = errors.New("group not found")
	ErrSlugExists       = errors.New("group slug already exists")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrAlreadyFollowing = errors.New("already following")
)

// UserRepository defines persistence operations for users and profiles.
type UserRepository interface {
	// Create inserts the user and an empty profile in one transaction.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	GetProfile(ctx context.Context, userID uint) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	Search(ctx context.Context, term string, pager domain.Pager) ([]domain.User, int64, domain.Window, error)
}

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	// CreateWithCreatorFollow inserts the group and the creator's follow edge
	// in one transaction.
	CreateWithCreatorFollow(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uint) (*domain.Group, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	List(ctx context.Context, pager domain.Pager) ([]domain.Group, int64, domain.Window, error)
	Search(ctx context.Context, term string, pager domain.Pager) ([]domain.Group, int64, domain.Window, error)
}

// PostFilter selects the posts a feed shows.
type PostFilter struct {
	AuthorID      *uint
	GroupID       *uint
	UngroupedOnly bool
	// FollowerID selects posts by authors or in groups the user follows.
	FollowerID *uint
	// Term is a case-insensitive substring of the text.
	Term string
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	// List returns matching posts newest first.
	List(ctx context.Context, filter PostFilter, pager domain.Pager) ([]domain.Post, int64, domain.Window, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, postID, id uint) (*domain.Comment, error)
	// ListByPost returns the comments of a post oldest first.
	ListByPost(ctx context.Context, postID uint, pager domain.Pager) ([]domain.Comment, int64, domain.Window, error)
	// AllByPost returns every comment of a post oldest first.
	AllByPost(ctx context.Context, postID uint) ([]domain.Comment, error)
	UpdateText(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, id uint) error
}

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	FollowAuthor(ctx context.Context, followerID, authorID uint) (*domain.Follow, error)
	FollowGroup(ctx context.Context, followerID, groupID uint) (*domain.Follow, error)
	// Unfollow methods report whether an edge was removed.
	UnfollowAuthor(ctx context.Context, followerID, authorID uint) (bool, error)
	UnfollowGroup(ctx context.Context, followerID, groupID uint) (bool, error)
	IsFollowingAuthor(ctx context.Context, followerID, authorID uint) (bool, error)
	IsFollowingGroup(ctx context.Context, followerID, groupID uint) (bool, error)
	// ListByFollower filters by a substring of the follower username, the
	// followed username or the group slug.
	ListByFollower(ctx context.Context, followerID uint, term string, pager domain.Pager) ([]domain.Follow, int64, domain.Window, error)
	ListGroupFollowers(ctx context.Context, groupID uint, pager domain.Pager) ([]domain.User, int64, domain.Window, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, followerID uint) (int64, error)
}
