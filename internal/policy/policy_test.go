package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
)

func uintPtr(v uint) *uint { return &v }

func TestCanModifyPost(t *testing.T) {
	post := &domain.Post{ID: 42, AuthorID: 1}

	assert.NoError(t, CanModifyPost(domain.Caller{UserID: 1}, post))

	err := CanModifyPost(domain.Anonymous(), post)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	err = CanModifyPost(domain.Caller{UserID: 2}, post)
	require.ErrorIs(t, err, ErrAuthorizationDenied)
	d, ok := AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, "/posts/42/", d.Fallback)
}

func TestCanModifyComment(t *testing.T) {
	c := &domain.Comment{ID: 3, PostID: 9, AuthorID: 5}

	assert.NoError(t, CanModifyComment(domain.Caller{UserID: 5}, c))
	assert.ErrorIs(t, CanModifyComment(domain.Anonymous(), c), ErrAuthenticationRequired)

	d, ok := AsDenial(CanModifyComment(domain.Caller{UserID: 6}, c))
	require.True(t, ok)
	assert.Equal(t, "/posts/9/", d.Fallback)
}

func TestCanPostInGroup(t *testing.T) {
	group := &domain.Group{ID: 1, Slug: "cats", CreatorID: uintPtr(1)}

	tests := []struct {
		name      string
		caller    domain.Caller
		following bool
		mode      GroupPostingMode
		want      error
	}{
		{"creator", domain.Caller{UserID: 1}, false, Restricted, nil},
		{"follower", domain.Caller{UserID: 2}, true, Restricted, nil},
		{"stranger", domain.Caller{UserID: 3}, false, Restricted, ErrAuthorizationDenied},
		{"stranger permissive", domain.Caller{UserID: 3}, false, Permissive, nil},
		{"anonymous", domain.Anonymous(), false, Permissive, ErrAuthenticationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanPostInGroup(tt.caller, group, tt.following, tt.mode)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	d, ok := AsDenial(CanPostInGroup(domain.Caller{UserID: 3}, group, false, Restricted))
	require.True(t, ok)
	assert.Equal(t, "/group/cats/", d.Fallback)
}

func TestGroupWithoutCreator(t *testing.T) {
	group := &domain.Group{ID: 1, Slug: "orphan"}
	err := CanPostInGroup(domain.Caller{UserID: 1}, group, false, Restricted)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
}

func TestRequireAuthenticatedCarriesNext(t *testing.T) {
	assert.NoError(t, RequireAuthenticated(domain.Caller{UserID: 1}, "/follow/"))

	err := RequireAuthenticated(domain.Anonymous(), "/follow/")
	d, ok := AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, "/follow/", d.Next)
	assert.True(t, errors.Is(err, ErrAuthenticationRequired))

	assert.ErrorIs(t, CanFollow(domain.Anonymous()), ErrAuthenticationRequired)
	assert.ErrorIs(t, CanCreateGroup(domain.Anonymous()), ErrAuthenticationRequired)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "/posts/7/", PostURL(7))
	assert.Equal(t, "/group/a-b/", GroupURL("a-b"))
	assert.Equal(t, "/profile/leo/", ProfileURL("leo"))
}
