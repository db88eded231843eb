package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/service"
	"github.com/weiawesome/birdup/pkg/middleware"
	"github.com/weiawesome/birdup/pkg/storage"
)

// Services bundles the business services the handlers call.
type Services struct {
	Users    service.UserService
	Feed     service.FeedService
	Posts    service.PostService
	Comments service.CommentService
	Groups   service.GroupService
	Follows  service.FollowService
	Search   service.SearchService
}

// Options are the HTTP-facing settings.
type Options struct {
	LoginPath      string
	CookieName     string
	CookieSecure   bool
	PageSize       int
	MaxUploadBytes int64
}

// Handler serves the web pages and the REST API.
type Handler struct {
	svc            Services
	store          storage.Storage
	authMiddleware *middleware.AuthMiddleware
	opts           Options
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, store storage.Storage, authMiddleware *middleware.AuthMiddleware, opts Options) *Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/auth/login/"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		svc:            svc,
		store:          store,
		authMiddleware: authMiddleware,
		opts:           opts,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(h.authMiddleware.Authenticate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/media/*key", h.Media)

	h.registerWeb(r)
	h.registerAPI(r)
}

func (h *Handler) registerWeb(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/follow/", h.FollowIndex)

	r.GET("/create/", h.PostCreateForm)
	r.POST("/create/", h.PostCreate)

	posts := r.Group("/posts/:id")
	{
		posts.GET("/", h.PostDetail)
		posts.GET("/edit/", h.PostEditForm)
		posts.POST("/edit/", h.PostEdit)
		posts.POST("/delete/", h.PostDelete)
		posts.POST("/comment/", h.AddComment)
	}

	r.GET("/groups/", h.GroupIndex)
	r.GET("/group_create/", h.GroupCreateForm)
	r.POST("/group_create/", h.GroupCreate)

	group := r.Group("/group/:slug")
	{
		group.GET("/", h.GroupPosts)
		group.GET("/follow/", h.GroupFollow)
		group.GET("/unfollow/", h.GroupUnfollow)
		group.GET("/followers/", h.GroupFollowers)
		group.GET("/create/", h.GroupPostForm)
		group.POST("/create/", h.GroupPostCreate)
	}

	r.GET("/profile/edit/", h.ProfileEditForm)
	r.POST("/profile/edit/", h.ProfileEdit)

	profile := r.Group("/profile/:username")
	{
		profile.GET("/", h.Profile)
		profile.GET("/follow/", h.ProfileFollow)
		profile.GET("/unfollow/", h.ProfileUnfollow)
	}

	r.GET("/post_search/", h.PostSearch)
	r.GET("/user_search/", h.UserSearch)
	r.GET("/group_search/", h.GroupSearch)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", h.SignupForm)
		auth.POST("/signup/", h.Signup)
		auth.GET("/login/", h.LoginForm)
		auth.POST("/login/", h.Login)
		auth.GET("/logout/", h.Logout)
	}
}

func (h *Handler) registerAPI(r *gin.Engine) {
	requireAuth := h.authMiddleware.RequireAuth()

	api := r.Group("/api/v1")
	{
		jwt := api.Group("/jwt")
		{
			jwt.POST("/create/", h.APITokenCreate)
			jwt.POST("/refresh/", h.APITokenRefresh)
			jwt.POST("/verify/", h.APITokenVerify)
		}

		api.POST("/users/", h.APIUserCreate)

		api.GET("/posts/", h.APIPostList)
		api.POST("/posts/", requireAuth, h.APIPostCreate)
		api.GET("/posts/:id/", h.APIPostGet)
		api.PUT("/posts/:id/", requireAuth, h.APIPostUpdate)
		api.PATCH("/posts/:id/", requireAuth, h.APIPostUpdate)
		api.DELETE("/posts/:id/", requireAuth, h.APIPostDelete)

		api.GET("/posts/:id/comments/", h.APICommentList)
		api.POST("/posts/:id/comments/", requireAuth, h.APICommentCreate)
		api.GET("/posts/:id/comments/:cid/", h.APICommentGet)
		api.PUT("/posts/:id/comments/:cid/", requireAuth, h.APICommentUpdate)
		api.PATCH("/posts/:id/comments/:cid/", requireAuth, h.APICommentUpdate)
		api.DELETE("/posts/:id/comments/:cid/", requireAuth, h.APICommentDelete)

		api.GET("/groups/", h.APIGroupList)
		api.GET("/groups/:id/", h.APIGroupGet)

		api.GET("/follow/", requireAuth, h.APIFollowList)
		api.POST("/follow/", requireAuth, h.APIFollowCreate)

		api.GET("/search", h.APISearch)
	}
}
