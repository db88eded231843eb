package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
)

func newEngine(t *testing.T) (*gin.Engine, *pkgjwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := pkgjwt.NewManager("secret", time.Minute, time.Hour, "birdup")
	require.NoError(t, err)

	mw := NewAuthMiddleware(manager, "session")
	r := gin.New()
	r.Use(mw.Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%d:%s", GetUserID(c), GetUsername(c))
	})
	r.GET("/private", mw.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, manager
}

func TestAuthenticateAnonymous(t *testing.T) {
	r, _ := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0:", w.Body.String())
}

func TestAuthenticateBearerAndCookie(t *testing.T) {
	r, manager := newEngine(t)
	pair, err := manager.GenerateTokenPair(5, "leo")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5:leo", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: pair.Access})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5:leo", w.Body.String())
}

func TestRequireAuth(t *testing.T) {
	r, manager := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	pair, err := manager.GenerateTokenPair(5, "leo")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.Refresh)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.Access)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginURLAndSafeNext(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", LoginURL("/auth/login/", "/create/"))
	assert.Equal(t, "/auth/login/", LoginURL("/auth/login/", ""))

	assert.Equal(t, "/follow/", SafeNext("/follow/", "/"))
	assert.Equal(t, "/", SafeNext("//evil.example", "/"))
	assert.Equal(t, "/", SafeNext("https://evil.example", "/"))
	assert.Equal(t, "/", SafeNext("", "/"))
}
