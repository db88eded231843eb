package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/repository"
	"github.com/weiawesome/birdup/internal/service"
	"github.com/weiawesome/birdup/internal/testutil"
	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
	"github.com/weiawesome/birdup/pkg/middleware"
	"github.com/weiawesome/birdup/pkg/pubsub"
	"github.com/weiawesome/birdup/pkg/response"
	"github.com/weiawesome/birdup/pkg/storage"
)

const testCookie = "birdup_session"

type testServer struct {
	db     *gorm.DB
	tokens *pkgjwt.Manager
	engine *gin.Engine
	svc    Services
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media/"})
	require.NoError(t, err)
	tokens, err := pkgjwt.NewManager("test-secret", time.Hour, 24*time.Hour, "birdup-test")
	require.NoError(t, err)

	bus := pubsub.NewMemoryPubSub()
	users := repository.NewGormUserRepository(db)
	groups := repository.NewGormGroupRepository(db)
	posts := repository.NewGormPostRepository(db)
	comments := repository.NewGormCommentRepository(db)
	follows := repository.NewGormFollowRepository(db)

	followSvc := service.NewFollowService(follows, users, groups, posts, cache.NewMemoryCounterStore(), bus, 10)
	svc := Services{
		Users: service.NewUserService(users, tokens, store),
		Feed: service.NewFeedService(posts, users, groups, followSvc, cache.NewMemoryFeedCache(), service.FeedOptions{
			PageSize:                   10,
			ProfileFeedIncludesGrouped: true,
			PostingMode:                policy.Restricted,
		}),
		Posts:    service.NewPostService(posts, comments, groups, follows, store, bus, policy.Restricted),
		Comments: service.NewCommentService(comments, posts, bus),
		Groups:   service.NewGroupService(groups, bus),
		Follows:  followSvc,
		Search:   service.NewSearchService(posts, users, groups),
	}

	h := NewHandler(svc, store, middleware.NewAuthMiddleware(tokens, testCookie), Options{
		LoginPath:  "/auth/login/",
		CookieName: testCookie,
		PageSize:   10,
	})
	r := gin.New()
	h.RegisterRoutes(r)

	return &testServer{db: db, tokens: tokens, engine: r, svc: svc}
}

// user creates an account and returns a bearer token for it.
func (s *testServer) user(t *testing.T, username string) (*domain.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, s.db, username)
	pair, err := s.tokens.GenerateTokenPair(u.ID, u.Username)
	require.NoError(t, err)
	return u, pair.Access
}

func (s *testServer) do(t *testing.T, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(t *testing.T, target, token string) *httptest.ResponseRecorder {
	return s.do(t, http.MethodGet, target, token, nil, "")
}

func (s *testServer) postForm(t *testing.T, target, token string, form url.Values) *httptest.ResponseRecorder {
	return s.do(t, http.MethodPost, target, token, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (s *testServer) sendJSON(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return s.do(t, method, target, token, strings.NewReader(string(raw)), "application/json")
}

func (s *testServer) postCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&domain.PostModel{}).Count(&n).Error)
	return n
}

func (s *testServer) followCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&domain.FollowModel{}).Count(&n).Error)
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func requireRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	require.Equal(t, location, w.Header().Get("Location"))
}

func newRecorder() *httptest.ResponseRecorder { return httptest.NewRecorder() }
