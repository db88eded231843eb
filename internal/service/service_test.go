package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	"github.com/weiawesome/birdup/internal/testutil"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
	"github.com/weiawesome/birdup/pkg/pubsub"
	"github.com/weiawesome/birdup/pkg/storage"
)

type fixture struct {
	db       *gorm.DB
	bus      *pubsub.MemoryPubSub
	counters *cache.MemoryCounterStore
	feedc    *cache.MemoryFeedCache
	store    *storage.LocalStorage

	users    repository.UserRepository
	groupsR  repository.GroupRepository
	postsR   repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository

	follow  FollowService
	feed    FeedService
	post    PostService
	comment CommentService
	group   GroupService
	search  SearchService
	user    UserService
}

func newFixture(t *testing.T, opts FeedOptions) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media/"})
	require.NoError(t, err)
	tokens, err := pkgjwt.NewManager("test-secret", time.Hour, 24*time.Hour, "birdup-test")
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		bus:      pubsub.NewMemoryPubSub(),
		counters: cache.NewMemoryCounterStore(),
		feedc:    cache.NewMemoryFeedCache(),
		store:    store,
		users:    repository.NewGormUserRepository(db),
		groupsR:  repository.NewGormGroupRepository(db),
		postsR:   repository.NewGormPostRepository(db),
		comments: repository.NewGormCommentRepository(db),
		follows:  repository.NewGormFollowRepository(db),
	}
	f.follow = NewFollowService(f.follows, f.users, f.groupsR, f.postsR, f.counters, f.bus, opts.PageSize)
	f.feed = NewFeedService(f.postsR, f.users, f.groupsR, f.follow, f.feedc, opts)
	f.post = NewPostService(f.postsR, f.comments, f.groupsR, f.follows, store, f.bus, opts.PostingMode)
	f.comment = NewCommentService(f.comments, f.postsR, f.bus)
	f.group = NewGroupService(f.groupsR, f.bus)
	f.search = NewSearchService(f.postsR, f.users, f.groupsR)
	f.user = NewUserService(f.users, tokens, store)
	return f
}

func (f *fixture) caller(t *testing.T, username string) domain.Caller {
	t.Helper()
	u := testutil.CreateUser(t, f.db, username)
	return domain.Caller{UserID: u.ID, Username: u.Username}
}

func (f *fixture) mustPost(t *testing.T, caller domain.Caller, text string, groupID *uint) *domain.Post {
	t.Helper()
	p, err := f.post.Create(context.Background(), caller, domain.PostInput{Text: text, GroupID: groupID})
	require.NoError(t, err)
	return p
}

func (f *fixture) followAuthor(t *testing.T, caller domain.Caller, username string) *domain.Follow {
	t.Helper()
	edge, err := f.follow.FollowAuthor(context.Background(), caller, username)
	require.NoError(t, err)
	return edge
}

func (f *fixture) followGroup(t *testing.T, caller domain.Caller, slug string) *domain.Follow {
	t.Helper()
	edge, err := f.follow.FollowGroup(context.Background(), caller, slug)
	require.NoError(t, err)
	return edge
}

func (f *fixture) postCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.PostModel{}).Count(&n).Error)
	return n
}

func requireDenied(t *testing.T, err error, reason error) *policy.Denial {
	t.Helper()
	require.ErrorIs(t, err, reason)
	d, ok := policy.AsDenial(err)
	require.True(t, ok)
	return d
}

func postIDs(p *domain.Page[domain.Post]) []uint {
	ids := make([]uint, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
