package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	pkgjwt "github.com/weiawesome/birdup/pkg/jwt"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/response"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	ClaimsKey     = "claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates access tokens. *jwt.Manager satisfies it.
type TokenValidator interface {
	ValidateAccessToken(token string) (*pkgjwt.Claims, error)
}

// AuthMiddleware resolves the caller from a bearer header or a session cookie.
type AuthMiddleware struct {
	validator  TokenValidator
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware. An empty cookieName
// disables cookie lookup.
func NewAuthMiddleware(validator TokenValidator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		validator:  validator,
		cookieName: cookieName,
	}
}

// Authenticate identifies the caller when a valid token is present and lets
// anonymous requests through untouched.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.resolve(c)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 && !m.resolve(c) {
			response.Unauthorized(c, "authentication credentials were not provided or are invalid")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) bool {
	token := m.extractToken(c)
	if token == "" {
		return false
	}

	claims, err := m.validator.ValidateAccessToken(token)
	if err != nil {
		l := pkglog.Ctx(c.Request.Context())
		l.Debug().Err(err).Msg("ignoring invalid access token")
		return false
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(ClaimsKey, claims)
	c.Request = c.Request.WithContext(pkglog.WithUser(c.Request.Context(), claims.UserID, claims.Username))
	return true
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	if m.cookieName == "" {
		return ""
	}
	if token, err := c.Cookie(m.cookieName); err == nil {
		return token
	}
	return ""
}

// GetUserID extracts the user ID from the Gin context; 0 means anonymous.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(UserIDKey); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetUsername extracts the username from the Gin context.
func GetUsername(c *gin.Context) string {
	if username, ok := c.Get(UsernameKey); ok {
		if v, ok := username.(string); ok {
			return v
		}
	}
	return ""
}

// GetClaims returns the validated token claims, or nil.
func GetClaims(c *gin.Context) *pkgjwt.Claims {
	if claims, ok := c.Get(ClaimsKey); ok {
		if v, ok := claims.(*pkgjwt.Claims); ok {
			return v
		}
	}
	return nil
}

// LoginURL builds the login redirect carrying the page to come back to.
func LoginURL(loginPath, next string) string {
	if next == "" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
