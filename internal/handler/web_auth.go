package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/service"
	"github.com/weiawesome/birdup/pkg/middleware"
	"github.com/weiawesome/birdup/pkg/response"
)

// SignupForm handles GET /auth/signup/.
func (h *Handler) SignupForm(c *gin.Context) {
	response.Success(c, gin.H{"form": domain.SignupRequest{}})
}

// Signup handles POST /auth/signup/. The new account is not logged in.
func (h *Handler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err)
		return
	}

	if _, err := h.svc.Users.Signup(c.Request.Context(), &req); err != nil {
		h.webFail(c, err, "failed to sign up")
		return
	}
	response.Found(c, "/")
}

// LoginForm handles GET /auth/login/.
func (h *Handler) LoginForm(c *gin.Context) {
	response.Success(c, gin.H{"next": c.Query("next")})
}

// Login handles POST /auth/login/ and stores the access token in the
// session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err)
		return
	}

	res, err := h.svc.Users.Login(c.Request.Context(), &req)
	if err != nil {
		h.webFail(c, err, "failed to log in")
		return
	}

	h.setSession(c, res.Tokens.Access, int(time.Until(res.Tokens.AccessExpiresAt).Seconds()))
	next := c.Query("next")
	if next == "" {
		next = c.PostForm("next")
	}
	response.Found(c, middleware.SafeNext(next, "/"))
}

// Logout handles GET /auth/logout/.
func (h *Handler) Logout(c *gin.Context) {
	if claims := middleware.GetClaims(c); claims != nil {
		if err := h.svc.Users.Logout(c.Request.Context(), claims); err != nil {
			h.webFail(c, err, "failed to log out")
			return
		}
	}
	h.setSession(c, "", -1)
	response.Found(c, "/")
}

func (h *Handler) setSession(c *gin.Context, value string, maxAge int) {
	if h.opts.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.CookieSecure, true)
}

// ProfileEditForm handles GET /profile/edit/.
func (h *Handler) ProfileEditForm(c *gin.Context) {
	ctx := c.Request.Context()

	user, profile, err := h.svc.Users.GetProfile(ctx, caller(c))
	if err != nil {
		h.webFail(c, err, "failed to load profile")
		return
	}
	response.Success(c, h.profileResponse(ctx, user, profile, true))
}

// ProfileEdit handles POST /profile/edit/.
func (h *Handler) ProfileEdit(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	if err := policy.RequireAuthenticated(who, ""); err != nil {
		h.webFail(c, err, "")
		return
	}

	var upd service.ProfileUpdate
	if err := c.ShouldBind(&upd.ProfileEditRequest); err != nil {
		bindFail(c, err)
		return
	}

	photo, f, err := h.formUpload(c, "photo")
	if err != nil {
		h.webFail(c, err, "failed to read upload")
		return
	}
	if f != nil {
		defer f.Close()
	}
	upd.Photo = photo

	if _, _, err := h.svc.Users.UpdateProfile(ctx, who, &upd); err != nil {
		h.webFail(c, err, "failed to update profile")
		return
	}
	response.Found(c, policy.ProfileURL(who.Username))
}
