package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/birdup/internal/audit"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/media"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
	"github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/storage"
)

const profilePhotoPrefix = "users"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo   repository.UserRepository
	tokens *pkgjwt.Manager
	store  storage.Storage
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens *pkgjwt.Manager, store storage.Storage) UserService {
	return &userServiceImpl{
		repo:   repo,
		tokens: tokens,
		store:  store,
	}
}

// Signup creates the user and its profile and logs the user in.
func (s *userServiceImpl) Signup(ctx context.Context, req *domain.SignupRequest) (*AuthResult, error) {
	l := log.Ctx(ctx)

	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if req.Confirm != "" && req.Confirm != req.Password {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	tokens, err := s.tokens.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to generate tokens after signup")
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignup, user.ID, "user signed up")
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login authenticates a user.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*AuthResult, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, 0, req.Username, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by username")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Username, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Logout revokes the presented token.
func (s *userServiceImpl) Logout(ctx context.Context, claims *pkgjwt.Claims) error {
	if claims == nil {
		return nil
	}
	s.tokens.Revoke(claims)
	audit.Log(ctx, audit.ActionLogout, claims.UserID, "user logged out")
	return nil
}

func (s *userServiceImpl) Refresh(ctx context.Context, refreshToken string) (*pkgjwt.TokenPair, error) {
	tokens, err := s.tokens.RefreshTokens(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, err := s.tokens.ValidateToken(tokens.Access); err == nil {
		audit.Log(ctx, audit.ActionRefreshToken, claims.UserID, "token refreshed")
	}
	return tokens, nil
}

func (s *userServiceImpl) Verify(_ context.Context, token string) error {
	if _, err := s.tokens.ValidateToken(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (s *userServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return findUser(ctx, s.repo, username)
}

func (s *userServiceImpl) GetProfile(ctx context.Context, caller domain.Caller) (*domain.User, *domain.Profile, error) {
	if err := policy.RequireAuthenticated(caller, ""); err != nil {
		return nil, nil, err
	}
	user, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	profile, err := s.repo.GetProfile(ctx, caller.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// UpdateProfile edits names, email, about text and optionally the photo.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, caller domain.Caller, upd *ProfileUpdate) (*domain.User, *domain.Profile, error) {
	l := log.Ctx(ctx)

	user, profile, err := s.GetProfile(ctx, caller)
	if err != nil {
		return nil, nil, err
	}

	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Email = upd.Email
	profile.About = upd.About

	oldPhoto := ""
	if upd.Photo != nil {
		key, err := storeImage(ctx, s.store, profilePhotoPrefix, media.ProfilePhoto, upd.Photo)
		if err != nil {
			return nil, nil, err
		}
		oldPhoto, profile.Photo = profile.Photo, key
	}

	if err := s.repo.Update(ctx, user); err != nil {
		l.Error().Err(err).Msg("failed to update user")
		return nil, nil, err
	}
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		l.Error().Err(err).Msg("failed to update profile")
		return nil, nil, err
	}
	removeObject(ctx, s.store, oldPhoto)

	audit.Log(ctx, audit.ActionUpdateProfile, user.ID, "profile updated")
	return user, profile, nil
}

func (s *userServiceImpl) PhotoURL(ctx context.Context, profile *domain.Profile) string {
	if profile == nil {
		return ""
	}
	return objectURL(ctx, s.store, profile.Photo)
}

// Ensure interface is satisfied at compile time.
var _ UserService = (*userServiceImpl)(nil)
