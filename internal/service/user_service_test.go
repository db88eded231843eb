package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/testutil"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
)

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})

	res, err := f.user.Signup(ctx, &domain.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
		Confirm:  "correct horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, res.User.ID)
	assert.NotEmpty(t, res.Tokens.Access)

	var profiles int64
	require.NoError(t, f.db.Model(&domain.ProfileModel{}).Where("user_id = ?", res.User.ID).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)

	_, err = f.user.Signup(ctx, &domain.SignupRequest{Username: "alice", Password: "another one"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.user.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.user.Login(ctx, &domain.LoginRequest{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := f.user.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	require.NoError(t, f.user.Verify(ctx, login.Tokens.Access))
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})

	_, err := f.user.Signup(ctx, &domain.SignupRequest{Username: "bob", Password: "password1", Confirm: "password2"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = f.user.Signup(ctx, &domain.SignupRequest{Username: "bad name", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	res, err := f.user.Signup(ctx, &domain.SignupRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	pair, err := f.user.Refresh(ctx, res.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, res.Tokens.Access, pair.Access)

	_, err = f.user.Refresh(ctx, res.Tokens.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens, err := pkgjwt.NewManager("test-secret", time.Hour, 24*time.Hour, "birdup-test")
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(pair.Access)
	require.NoError(t, err)

	require.NoError(t, f.user.Logout(ctx, claims))
	assert.ErrorIs(t, f.user.Verify(ctx, pair.Access), ErrInvalidToken)
}

func TestUpdateProfileWithPhoto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")

	upd := &ProfileUpdate{
		ProfileEditRequest: domain.ProfileEditRequest{FirstName: "Alice", LastName: "Liddell", About: "down the hole"},
		Photo:              &domain.Upload{Filename: "me.jpg", ContentType: "image/jpeg", Body: bytes.NewReader(testutil.PNG(t, 64, 48))},
	}
	user, profile, err := f.user.UpdateProfile(ctx, a, upd)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", user.FullName())
	assert.Equal(t, "down the hole", profile.About)
	assert.True(t, strings.HasPrefix(profile.Photo, "users/"))

	_, stored, err := f.user.GetProfile(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, profile.Photo, stored.Photo)
	assert.Equal(t, "/media/"+stored.Photo, f.user.PhotoURL(ctx, stored))
}
