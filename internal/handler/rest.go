package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/service"
	"github.com/weiawesome/birdup/pkg/response"
)

// APITokenCreate handles POST /api/v1/jwt/create/.
func (h *Handler) APITokenCreate(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	res, err := h.svc.Users.Login(c.Request.Context(), &req)
	if err != nil {
		apiFail(c, err, "failed to issue token")
		return
	}
	response.Success(c, res.Tokens)
}

// APITokenRefresh handles POST /api/v1/jwt/refresh/.
func (h *Handler) APITokenRefresh(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	pair, err := h.svc.Users.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		apiFail(c, err, "failed to refresh token")
		return
	}
	response.Success(c, pair)
}

// APITokenVerify handles POST /api/v1/jwt/verify/.
func (h *Handler) APITokenVerify(c *gin.Context) {
	var req domain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	if err := h.svc.Users.Verify(c.Request.Context(), req.Token); err != nil {
		apiFail(c, err, "failed to verify token")
		return
	}
	response.Success(c, gin.H{"valid": true})
}

// APIUserCreate handles POST /api/v1/users/.
func (h *Handler) APIUserCreate(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	res, err := h.svc.Users.Signup(c.Request.Context(), &req)
	if err != nil {
		apiFail(c, err, "failed to create user")
		return
	}
	response.Created(c, res.User.ToPrivateResponse())
}

// APIPostList handles GET /api/v1/posts/.
func (h *Handler) APIPostList(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.svc.Posts.List(ctx, h.limitOffset(c))
	if err != nil {
		apiFail(c, err, "failed to list posts")
		return
	}
	response.Success(c, newListBody(c, page, h.postResults(ctx, page)))
}

// APIPostCreate handles POST /api/v1/posts/.
func (h *Handler) APIPostCreate(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}
	if req.Text == nil {
		response.ValidationError(c, "invalid input", map[string][]string{"text": {"this field is required"}})
		return
	}

	post, err := h.svc.Posts.Create(ctx, caller(c), domain.PostInput{Text: *req.Text, GroupID: req.Group})
	if err != nil {
		postFail(c, err, "failed to create post")
		return
	}
	response.Created(c, h.postResponse(ctx, post))
}

// APIPostGet handles GET /api/v1/posts/:id/.
func (h *Handler) APIPostGet(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	post, err := h.svc.Posts.Get(ctx, id)
	if err != nil {
		apiFail(c, err, "failed to get post")
		return
	}
	response.Success(c, h.postResponse(ctx, post))
}

// APIPostUpdate handles PUT and PATCH /api/v1/posts/:id/. PATCH keeps the
// fields the body leaves out; PUT requires text and clears an absent group.
func (h *Handler) APIPostUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	current, err := h.svc.Posts.CheckEdit(ctx, who, id)
	if err != nil {
		apiFail(c, err, "failed to get post")
		return
	}

	var req domain.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	in := domain.PostInput{Text: current.Text, GroupID: req.Group}
	partial := c.Request.Method == "PATCH"
	switch {
	case req.Text != nil:
		in.Text = *req.Text
	case !partial:
		response.ValidationError(c, "invalid input", map[string][]string{"text": {"this field is required"}})
		return
	}
	if partial && req.Group == nil {
		in.GroupID = current.GroupID
	}

	post, err := h.svc.Posts.Update(ctx, who, id, in)
	if err != nil {
		postFail(c, err, "failed to update post")
		return
	}
	response.Success(c, h.postResponse(ctx, post))
}

// APIPostDelete handles DELETE /api/v1/posts/:id/.
func (h *Handler) APIPostDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	if err := h.svc.Posts.Delete(c.Request.Context(), caller(c), id); err != nil {
		apiFail(c, err, "failed to delete post")
		return
	}
	response.NoContent(c)
}

// postFail reports an unknown group as a field error of the body.
func postFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrGroupNotFound) {
		response.ValidationError(c, "invalid input", map[string][]string{"group": {err.Error()}})
		return
	}
	apiFail(c, err, msg)
}

// APICommentList handles GET /api/v1/posts/:id/comments/.
func (h *Handler) APICommentList(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	page, err := h.svc.Comments.List(c.Request.Context(), postID, h.limitOffset(c))
	if err != nil {
		apiFail(c, err, "failed to list comments")
		return
	}
	response.Success(c, newListBody(c, page, commentResults(page.Items)))
}

// APICommentCreate handles POST /api/v1/posts/:id/comments/.
func (h *Handler) APICommentCreate(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	var req domain.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	comment, err := h.svc.Comments.Add(c.Request.Context(), caller(c), postID, req.Text)
	if err != nil {
		apiFail(c, err, "failed to create comment")
		return
	}
	response.Created(c, comment.ToResponse())
}

// APICommentGet handles GET /api/v1/posts/:id/comments/:cid/.
func (h *Handler) APICommentGet(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		response.NotFound(c, "comment not found")
		return
	}

	comment, err := h.svc.Comments.Get(c.Request.Context(), postID, id)
	if err != nil {
		apiFail(c, err, "failed to get comment")
		return
	}
	response.Success(c, comment.ToResponse())
}

// APICommentUpdate handles PUT and PATCH /api/v1/posts/:id/comments/:cid/.
func (h *Handler) APICommentUpdate(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		response.NotFound(c, "comment not found")
		return
	}

	var req domain.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}

	comment, err := h.svc.Comments.Update(c.Request.Context(), caller(c), postID, id, req.Text)
	if err != nil {
		apiFail(c, err, "failed to update comment")
		return
	}
	response.Success(c, comment.ToResponse())
}

// APICommentDelete handles DELETE /api/v1/posts/:id/comments/:cid/.
func (h *Handler) APICommentDelete(c *gin.Context) {
	postID, ok1 := idParam(c, "id")
	id, ok2 := idParam(c, "cid")
	if !ok1 || !ok2 {
		response.NotFound(c, "comment not found")
		return
	}

	if err := h.svc.Comments.Delete(c.Request.Context(), caller(c), postID, id); err != nil {
		apiFail(c, err, "failed to delete comment")
		return
	}
	response.NoContent(c)
}

// APIGroupList handles GET /api/v1/groups/.
func (h *Handler) APIGroupList(c *gin.Context) {
	page, err := h.svc.Groups.List(c.Request.Context(), h.limitOffset(c))
	if err != nil {
		apiFail(c, err, "failed to list groups")
		return
	}
	response.Success(c, newListBody(c, page, groupPage(page).Items))
}

// APIGroupGet handles GET /api/v1/groups/:id/.
func (h *Handler) APIGroupGet(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "group not found")
		return
	}

	group, err := h.svc.Groups.GetByID(c.Request.Context(), id)
	if err != nil {
		apiFail(c, err, "failed to get group")
		return
	}
	response.Success(c, group.ToResponse())
}

// APIFollowList handles GET /api/v1/follow/. ?search= filters on the
// follower and followed usernames.
func (h *Handler) APIFollowList(c *gin.Context) {
	page, err := h.svc.Follows.ListFollows(c.Request.Context(), caller(c), c.Query("search"), h.limitOffset(c))
	if err != nil {
		apiFail(c, err, "failed to list follows")
		return
	}
	response.Success(c, newListBody(c, page, followResults(page.Items)))
}

// APIFollowCreate handles POST /api/v1/follow/. The body names exactly one
// of an author or a group; self and duplicate follows are field errors.
func (h *Handler) APIFollowCreate(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	var req domain.FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFail(c, err)
		return
	}
	req.Following = strings.TrimSpace(req.Following)
	req.Group = strings.TrimSpace(req.Group)

	if (req.Following == "") == (req.Group == "") {
		response.ValidationError(c, "invalid input", map[string][]string{
			"non_field_errors": {"exactly one of following and group is required"},
		})
		return
	}

	var (
		follow *domain.Follow
		err    error
	)
	field := "following"
	if req.Group != "" {
		field = "group"
		follow, err = h.svc.Follows.FollowGroup(ctx, who, req.Group)
	} else {
		follow, err = h.svc.Follows.FollowAuthor(ctx, who, req.Following)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow),
			errors.Is(err, service.ErrAlreadyFollowing),
			errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrGroupNotFound):
			response.ValidationError(c, "invalid input", map[string][]string{field: {err.Error()}})
		default:
			apiFail(c, err, "failed to follow")
		}
		return
	}

	response.Created(c, follow.ToResponse())
}

// APISearch handles GET /api/v1/search?query=.
func (h *Handler) APISearch(c *gin.Context) {
	ctx := c.Request.Context()

	raw, present := c.GetQuery("query")
	q := service.ParseQuery(raw, present)

	res, err := h.svc.Search.All(ctx, q, h.limitOffset(c))
	if err != nil {
		apiFail(c, err, "search failed")
		return
	}
	response.Success(c, gin.H{
		"query":  q.Text,
		"posts":  newListBody(c, res.Posts, h.postResults(ctx, res.Posts)),
		"users":  newListBody(c, res.Users, userPage(res.Users).Items),
		"groups": newListBody(c, res.Groups, groupPage(res.Groups).Items),
	})
}
