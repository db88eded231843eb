package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/testutil"
)

func TestFollowAuthorRejectsSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")

	_, err := f.follow.FollowAuthor(ctx, a, "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)

	var n int64
	require.NoError(t, f.db.Model(&domain.FollowModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFollowAuthorDuplicateKeepsOneEdge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")
	f.caller(t, "bob")

	edge := f.followAuthor(t, a, "bob")
	require.NotZero(t, edge.ID)
	assert.Equal(t, "alice", edge.FollowerUsername)
	assert.Equal(t, "bob", edge.AuthorUsername)

	_, err := f.follow.FollowAuthor(ctx, a, "bob")
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	var n int64
	require.NoError(t, f.db.Model(&domain.FollowModel{}).Where("follower_id = ?", a.UserID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestFollowRequiresLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	f.caller(t, "bob")

	_, err := f.follow.FollowAuthor(ctx, domain.Anonymous(), "bob")
	requireDenied(t, err, policy.ErrAuthenticationRequired)
}

func TestFollowUnknownTargets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")

	_, err := f.follow.FollowAuthor(ctx, a, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.follow.FollowGroup(ctx, a, "ghost")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestUnfollowAbsentEdgeIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")
	b := f.caller(t, "bob")
	testutil.CreateGroup(t, f.db, "cats", nil)

	require.NoError(t, f.follow.UnfollowAuthor(ctx, a, "bob"))
	require.NoError(t, f.follow.UnfollowGroup(ctx, a, "cats"))

	f.followAuthor(t, a, "bob")
	require.NoError(t, f.follow.UnfollowAuthor(ctx, a, "bob"))

	ok, err := f.follow.IsFollowingAuthor(ctx, a, b.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsFollowingIsFalseForAnonymous(t *testing.T) {
	f := newFixture(t, FeedOptions{})
	b := f.caller(t, "bob")

	ok, err := f.follow.IsFollowingAuthor(context.Background(), domain.Anonymous(), b.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowersCountUsesCounterCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")
	b := f.caller(t, "bob")
	f.caller(t, "carol")

	f.followAuthor(t, a, "bob")

	count, err := f.follow.FollowersCount(ctx, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	cached, found, err := f.counters.GetFollowersCount(ctx, b.UserID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), cached)

	hot, err := f.counters.GetTopHotKeys(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.UserID}, hot)

	counts, err := f.follow.Counts(ctx, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Followers)
	assert.Equal(t, int64(1), counts.Following)
}

func TestListFollowsFiltersBySearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")
	f.caller(t, "bob")
	f.caller(t, "robert")
	testutil.CreateGroup(t, f.db, "cats", nil)

	f.followAuthor(t, a, "bob")
	f.followAuthor(t, a, "robert")
	f.followGroup(t, a, "cats")

	page, err := f.follow.ListFollows(ctx, a, "", domain.LimitOffset{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = f.follow.ListFollows(ctx, a, "OB", domain.LimitOffset{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, it := range page.Items {
		assert.Contains(t, []string{"bob", "robert"}, it.AuthorUsername)
	}
}

func TestGroupFollowers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FeedOptions{})
	a := f.caller(t, "alice")
	b := f.caller(t, "bob")

	_, err := f.group.Create(ctx, a, &domain.GroupCreateRequest{Title: "Cats", Slug: "cats"})
	require.NoError(t, err)
	f.followGroup(t, b, "cats")

	group, page, err := f.follow.GroupFollowers(ctx, "cats", 1)
	require.NoError(t, err)
	assert.Equal(t, "cats", group.Slug)
	assert.Equal(t, int64(2), page.Total)
}
