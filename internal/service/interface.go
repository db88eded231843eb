package service

import (
	"context"
	"errors"

	"github.com/weiawesome/birdup/internal/domain"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrSlugTaken          = errors.New("group slug already taken")
	ErrInvalidSlug        = errors.New("slug may contain only letters, digits, hyphens and underscores")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmptyText          = errors.New("text must not be empty")
	ErrInvalidImage       = errors.New("file is not a supported image")
)

// FollowService manages follow edges between users and toward groups.
type FollowService interface {
	IsFollowingAuthor(ctx context.Context, caller domain.Caller, authorID uint) (bool, error)
	IsFollowingGroup(ctx context.Context, caller domain.Caller, groupID uint) (bool, error)
	// FollowAuthor and FollowGroup return the created edge.
	FollowAuthor(ctx context.Context, caller domain.Caller, username string) (*domain.Follow, error)
	FollowGroup(ctx context.Context, caller domain.Caller, slug string) (*domain.Follow, error)
	// Unfollowing an edge that does not exist is a no-op.
	UnfollowAuthor(ctx context.Context, caller domain.Caller, username string) error
	UnfollowGroup(ctx context.Context, caller domain.Caller, slug string) error
	ListFollows(ctx context.Context, caller domain.Caller, search string, pager domain.Pager) (*domain.Page[domain.Follow], error)
	GroupFollowers(ctx context.Context, slug string, page int) (*domain.Group, *domain.Page[domain.User], error)
	FollowersCount(ctx context.Context, userID uint) (int64, error)
	Counts(ctx context.Context, userID uint) (*domain.FollowCounts, error)
}

// GroupFeed is a group page: the group, its posts and what the caller may do.
type GroupFeed struct {
	Group     *domain.Group
	Posts     *domain.Page[domain.Post]
	Following bool
	CanPost   bool
}

// ProfileFeed is a profile page.
type ProfileFeed struct {
	Author       *domain.User
	Profile      *domain.Profile
	Posts        *domain.Page[domain.Post]
	Following    bool
	FollowButton bool
	Counts       domain.FollowCounts
}

// FeedService assembles the post feeds.
type FeedService interface {
	Home(ctx context.Context, page int) (*domain.Page[domain.Post], error)
	Personal(ctx context.Context, caller domain.Caller, page int) (*domain.Page[domain.Post], error)
	Group(ctx context.Context, caller domain.Caller, slug string, page int) (*GroupFeed, error)
	Profile(ctx context.Context, caller domain.Caller, username string, page int) (*ProfileFeed, error)
	InvalidateHome(ctx context.Context) error
}

// PostDetail is a post with its comments and the author's post count.
type PostDetail struct {
	Post            *domain.Post
	Comments        []domain.Comment
	AuthorPostCount int64
}

// PostService creates, edits and deletes posts under the authorization policy.
type PostService interface {
	Get(ctx context.Context, id uint) (*domain.Post, error)
	Detail(ctx context.Context, id uint) (*PostDetail, error)
	List(ctx context.Context, pager domain.Pager) (*domain.Page[domain.Post], error)
	Create(ctx context.Context, caller domain.Caller, in domain.PostInput) (*domain.Post, error)
	// CheckGroupPosting resolves the group and runs the posting check
	// without writing anything.
	CheckGroupPosting(ctx context.Context, caller domain.Caller, slug string) (*domain.Group, error)
	CreateInGroup(ctx context.Context, caller domain.Caller, slug string, in domain.PostInput) (*domain.Post, error)
	// CheckEdit returns the post when the caller may change it.
	CheckEdit(ctx context.Context, caller domain.Caller, id uint) (*domain.Post, error)
	Update(ctx context.Context, caller domain.Caller, id uint, in domain.PostInput) (*domain.Post, error)
	Delete(ctx context.Context, caller domain.Caller, id uint) error
	ImageURL(ctx context.Context, post *domain.Post) string
}

// CommentService manages comments under posts.
type CommentService interface {
	Add(ctx context.Context, caller domain.Caller, postID uint, text string) (*domain.Comment, error)
	List(ctx context.Context, postID uint, pager domain.Pager) (*domain.Page[domain.Comment], error)
	Get(ctx context.Context, postID, id uint) (*domain.Comment, error)
	Update(ctx context.Context, caller domain.Caller, postID, id uint, text string) (*domain.Comment, error)
	Delete(ctx context.Context, caller domain.Caller, postID, id uint) error
}

// GroupService manages groups.
type GroupService interface {
	Create(ctx context.Context, caller domain.Caller, req *domain.GroupCreateRequest) (*domain.Group, error)
	List(ctx context.Context, pager domain.Pager) (*domain.Page[domain.Group], error)
	GetByID(ctx context.Context, id uint) (*domain.Group, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
}

// SearchResults is the first page of each search.
type SearchResults struct {
	Posts  *domain.Page[domain.Post]
	Users  *domain.Page[domain.User]
	Groups *domain.Page[domain.Group]
}

// SearchService runs substring searches. A query that is not QueryPresent
// returns an empty page without touching the store.
type SearchService interface {
	Posts(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.Post], error)
	Users(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.User], error)
	Groups(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.Group], error)
	All(ctx context.Context, q Query, pager domain.Pager) (*SearchResults, error)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User   *domain.User
	Tokens *pkgjwt.TokenPair
}

// ProfileUpdate is a profile edit. Photo nil keeps the current photo.
type ProfileUpdate struct {
	domain.ProfileEditRequest
	Photo *domain.Upload
}

// UserService handles accounts, tokens and profiles.
type UserService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, claims *pkgjwt.Claims) error
	Refresh(ctx context.Context, refreshToken string) (*pkgjwt.TokenPair, error)
	Verify(ctx context.Context, token string) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetProfile(ctx context.Context, caller domain.Caller) (*domain.User, *domain.Profile, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, upd *ProfileUpdate) (*domain.User, *domain.Profile, error)
	PhotoURL(ctx context.Context, profile *domain.Profile) string
}
