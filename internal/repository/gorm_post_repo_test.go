package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/testutil"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func createPost(t *testing.T, repo *GormPostRepository, author uint, group *uint, text string, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{Text: text, AuthorID: author, GroupID: group, CreatedAt: at}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func ids(posts []domain.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestPersonalFeedIsUnionWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	follows := NewGormFollowRepository(db)

	reader := testutil.CreateUser(t, db, "reader")
	x := testutil.CreateUser(t, db, "x")
	y := testutil.CreateUser(t, db, "y")
	g := testutil.CreateGroup(t, db, "g", nil)

	mustFollowAuthor(t, follows, reader.ID, x.ID)
	mustFollowGroup(t, follows, reader.ID, g.ID)

	both := createPost(t, posts, x.ID, &g.ID, "x in g", base.Add(1*time.Minute))
	byX := createPost(t, posts, x.ID, nil, "x alone", base.Add(2*time.Minute))
	inG := createPost(t, posts, y.ID, &g.ID, "y in g", base.Add(3*time.Minute))
	createPost(t, posts, y.ID, nil, "y alone", base.Add(4*time.Minute))

	got, total, _, err := posts.List(ctx, PostFilter{FollowerID: &reader.ID}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{inG.ID, byX.ID, both.ID}, ids(got))
}

func TestFeedOrderingNewestFirstWithIDTieBreak(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	a := testutil.CreateUser(t, db, "a")

	p1 := createPost(t, posts, a.ID, nil, "one", base)
	p2 := createPost(t, posts, a.ID, nil, "two", base)
	p3 := createPost(t, posts, a.ID, nil, "three", base.Add(time.Second))

	got, _, _, err := posts.List(ctx, PostFilter{}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, ids(got))
	assert.Equal(t, "a", got[0].AuthorUsername)
}

func TestPageNumberClampsToLastPage(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	a := testutil.CreateUser(t, db, "a")
	for i := 0; i < 12; i++ {
		createPost(t, posts, a.ID, nil, "p", base.Add(time.Duration(i)*time.Second))
	}

	got, total, w, err := posts.List(ctx, PostFilter{}, domain.PageNumber{Number: 99, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Equal(t, 10, w.Offset)
	assert.Len(t, got, 2)
}

func TestProfileFilterUngroupedOnly(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	a := testutil.CreateUser(t, db, "a")
	g := testutil.CreateGroup(t, db, "g", nil)

	createPost(t, posts, a.ID, &g.ID, "grouped", base)
	plain := createPost(t, posts, a.ID, nil, "plain", base.Add(time.Second))

	all, _, _, err := posts.List(ctx, PostFilter{AuthorID: &a.ID}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, _, _, err := posts.List(ctx, PostFilter{AuthorID: &a.ID, UngroupedOnly: true}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{plain.ID}, ids(only))
}

func TestSearchPostsCaseInsensitiveAndEscaped(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	a := testutil.CreateUser(t, db, "a")

	hello := createPost(t, posts, a.ID, nil, "Hello World", base)
	pct := createPost(t, posts, a.ID, nil, "100% sure", base.Add(time.Second))
	createPost(t, posts, a.ID, nil, "nothing here", base.Add(2*time.Second))

	got, _, _, err := posts.List(ctx, PostFilter{Term: "hello"}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{hello.ID}, ids(got))

	got, _, _, err = posts.List(ctx, PostFilter{Term: "%"}, domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{pct.ID}, ids(got))
}

func TestDeletePostRemovesComments(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	comments := NewGormCommentRepository(db)
	a := testutil.CreateUser(t, db, "a")
	p := createPost(t, posts, a.ID, nil, "p", base)

	require.NoError(t, comments.Create(ctx, &domain.Comment{PostID: p.ID, AuthorID: a.ID, Text: "c"}))
	require.NoError(t, posts.Delete(ctx, p.ID))

	_, err := posts.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, posts.Delete(ctx, p.ID), ErrPostNotFound)

	var left int64
	require.NoError(t, db.Model(&domain.CommentModel{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestCommentsOldestFirst(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	comments := NewGormCommentRepository(db)
	a := testutil.CreateUser(t, db, "a")
	p := createPost(t, posts, a.ID, nil, "p", base)

	late := &domain.Comment{PostID: p.ID, AuthorID: a.ID, Text: "late", CreatedAt: base.Add(time.Hour)}
	early := &domain.Comment{PostID: p.ID, AuthorID: a.ID, Text: "early", CreatedAt: base}
	require.NoError(t, comments.Create(ctx, late))
	require.NoError(t, comments.Create(ctx, early))

	got, total, _, err := comments.ListByPost(ctx, p.ID, domain.LimitOffset{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Text)
	assert.Equal(t, "late", got[1].Text)
	assert.Equal(t, "a", got[0].AuthorUsername)
}

func TestUpdatePostClearsGroup(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	a := testutil.CreateUser(t, db, "a")
	g := testutil.CreateGroup(t, db, "g", nil)
	p := createPost(t, posts, a.ID, &g.ID, "p", base)

	p.GroupID = nil
	p.Text = "edited"
	require.NoError(t, posts.Update(ctx, p))

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, "edited", got.Text)
	assert.Empty(t, got.GroupSlug)
}

func TestGroupCreateFollowsCreatorAndSlugUnique(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	groups := NewGormGroupRepository(db)
	follows := NewGormFollowRepository(db)
	a := testutil.CreateUser(t, db, "a")

	g := &domain.Group{Title: "Cats", Slug: "cats", CreatorID: &a.ID}
	require.NoError(t, groups.CreateWithCreatorFollow(ctx, g))
	require.NotZero(t, g.ID)

	ok, err := follows.IsFollowingGroup(ctx, a.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = groups.CreateWithCreatorFollow(ctx, &domain.Group{Title: "Cats 2", Slug: "cats", CreatorID: &a.ID})
	assert.ErrorIs(t, err, ErrSlugExists)

	var n int64
	require.NoError(t, db.Model(&domain.GroupModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUserCreateAndSearch(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewGormUserRepository(db)

	u := &domain.User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "anna", FirstName: "Anna", LastName: "Leonova", PasswordHash: "h"}))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{Username: "leo", PasswordHash: "h"}), ErrUsernameExists)

	profile, err := users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, profile.UserID)

	found, total, _, err := users.Search(ctx, "LEO", domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchFoldsNonASCIICase(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	groups := NewGormGroupRepository(db)
	a := testutil.CreateUser(t, db, "a")

	hello := createPost(t, posts, a.ID, nil, "Привет мир", base)
	createPost(t, posts, a.ID, nil, "hello world", base.Add(time.Second))

	for _, q := range []string{"Привет", "привет", "ПРИВЕТ", "мир", "МИР"} {
		got, _, _, err := posts.List(ctx, PostFilter{Term: q}, domain.PageNumber{Number: 1})
		require.NoError(t, err)
		assert.Equal(t, []uint{hello.ID}, ids(got), "query %q", q)
	}

	lev := &domain.User{Username: "lev", FirstName: "Лев", LastName: "Толстой", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, lev))
	for _, q := range []string{"лев", "ЛЕВ", "толст"} {
		found, total, _, err := users.Search(ctx, q, domain.PageNumber{Number: 1})
		require.NoError(t, err)
		require.Equal(t, int64(1), total, "query %q", q)
		assert.Equal(t, lev.ID, found[0].ID)
	}

	require.NoError(t, groups.CreateWithCreatorFollow(ctx, &domain.Group{Title: "Кошки", Slug: "cats", Description: "Всё о КОШКАХ", CreatorID: &a.ID}))
	found, total, _, err := groups.Search(ctx, "кошк", domain.PageNumber{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, found, 1)
}
