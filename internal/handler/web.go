package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/service"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/response"
	"github.com/weiawesome/birdup/pkg/storage"
)

// Index handles GET /.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.svc.Feed.Home(ctx, pageParam(c))
	if err != nil {
		h.webFail(c, err, "failed to load feed")
		return
	}
	response.Success(c, gin.H{"index": true, "page_obj": h.postPage(ctx, page)})
}

// FollowIndex handles GET /follow/, the caller's personal feed.
func (h *Handler) FollowIndex(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.svc.Feed.Personal(ctx, caller(c), pageParam(c))
	if err != nil {
		h.webFail(c, err, "failed to load feed")
		return
	}
	response.Success(c, gin.H{"follow": true, "page_obj": h.postPage(ctx, page)})
}

// GroupPosts handles GET /group/:slug/.
func (h *Handler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()

	feed, err := h.svc.Feed.Group(ctx, caller(c), c.Param("slug"), pageParam(c))
	if err != nil {
		h.webFail(c, err, "failed to load group")
		return
	}
	response.Success(c, gin.H{
		"group":     feed.Group.ToResponse(),
		"count":     feed.Posts.Total,
		"following": feed.Following,
		"can_post":  feed.CanPost,
		"page_obj":  h.postPage(ctx, feed.Posts),
	})
}

// Profile handles GET /profile/:username/.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	feed, err := h.svc.Feed.Profile(ctx, caller(c), c.Param("username"), pageParam(c))
	if err != nil {
		h.webFail(c, err, "failed to load profile")
		return
	}
	response.Success(c, gin.H{
		"author":        h.profileResponse(ctx, feed.Author, feed.Profile, false),
		"counts":        feed.Counts,
		"following":     feed.Following,
		"follow_button": feed.FollowButton,
		"page_obj":      h.postPage(ctx, feed.Posts),
	})
}

// PostDetail handles GET /posts/:id/.
func (h *Handler) PostDetail(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	detail, err := h.svc.Posts.Detail(ctx, id)
	if err != nil {
		h.webFail(c, err, "failed to load post")
		return
	}
	response.Success(c, h.detailResponse(ctx, detail))
}

// PostCreateForm handles GET /create/.
func (h *Handler) PostCreateForm(c *gin.Context) {
	if err := policy.RequireAuthenticated(caller(c), ""); err != nil {
		h.webFail(c, err, "")
		return
	}
	response.Success(c, gin.H{"is_edit": false})
}

// PostCreate handles POST /create/. A post filed under a group lands on
// the group page, otherwise on the author's profile.
func (h *Handler) PostCreate(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	if err := policy.RequireAuthenticated(who, ""); err != nil {
		h.webFail(c, err, "")
		return
	}

	var form domain.PostForm
	if err := c.ShouldBind(&form); err != nil {
		bindFail(c, err)
		return
	}

	in, closeFn, err := h.postInput(c, form.Text, form.GroupID())
	if err != nil {
		h.webFail(c, err, "failed to read upload")
		return
	}
	defer closeFn()

	post, err := h.svc.Posts.Create(ctx, who, in)
	if err != nil {
		h.webFail(c, err, "failed to create post")
		return
	}

	if post.GroupSlug != "" {
		response.Found(c, policy.GroupURL(post.GroupSlug))
		return
	}
	response.Found(c, policy.ProfileURL(who.Username))
}

// PostEditForm handles GET /posts/:id/edit/.
func (h *Handler) PostEditForm(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	post, err := h.svc.Posts.CheckEdit(ctx, caller(c), id)
	if err != nil {
		h.webFail(c, err, "failed to load post")
		return
	}
	response.Success(c, gin.H{"is_edit": true, "post": h.postResponse(ctx, post)})
}

// PostEdit handles POST /posts/:id/edit/.
func (h *Handler) PostEdit(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	// Denials take precedence over form errors.
	if _, err := h.svc.Posts.CheckEdit(ctx, who, id); err != nil {
		h.webFail(c, err, "failed to load post")
		return
	}

	var form domain.PostForm
	if err := c.ShouldBind(&form); err != nil {
		bindFail(c, err)
		return
	}

	in, closeFn, err := h.postInput(c, form.Text, form.GroupID())
	if err != nil {
		h.webFail(c, err, "failed to read upload")
		return
	}
	defer closeFn()

	post, err := h.svc.Posts.Update(ctx, who, id, in)
	if err != nil {
		h.webFail(c, err, "failed to update post")
		return
	}

	if post.GroupSlug != "" {
		response.Found(c, policy.GroupURL(post.GroupSlug))
		return
	}
	response.Found(c, policy.PostURL(post.ID))
}

// PostDelete handles POST /posts/:id/delete/.
func (h *Handler) PostDelete(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	if err := h.svc.Posts.Delete(ctx, who, id); err != nil {
		h.webFail(c, err, "failed to delete post")
		return
	}
	response.Found(c, policy.ProfileURL(who.Username))
}

// AddComment handles POST /posts/:id/comment/. Blank comments are dropped
// and the browser goes back to the post either way.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := idParam(c, "id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	_, err := h.svc.Comments.Add(ctx, caller(c), id, c.PostForm("text"))
	if err != nil && !errors.Is(err, service.ErrEmptyText) {
		h.webFail(c, err, "failed to add comment")
		return
	}
	response.Found(c, policy.PostURL(id))
}

// ProfileFollow handles GET /profile/:username/follow/. Following yourself
// or an author you already follow changes nothing.
func (h *Handler) ProfileFollow(c *gin.Context) {
	username := c.Param("username")

	_, err := h.svc.Follows.FollowAuthor(c.Request.Context(), caller(c), username)
	if err != nil && !errors.Is(err, service.ErrSelfFollow) && !errors.Is(err, service.ErrAlreadyFollowing) {
		h.webFail(c, err, "failed to follow")
		return
	}
	response.Found(c, policy.ProfileURL(username))
}

// ProfileUnfollow handles GET /profile/:username/unfollow/.
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	username := c.Param("username")

	if err := h.svc.Follows.UnfollowAuthor(c.Request.Context(), caller(c), username); err != nil {
		h.webFail(c, err, "failed to unfollow")
		return
	}
	response.Found(c, policy.ProfileURL(username))
}

// GroupFollow handles GET /group/:slug/follow/.
func (h *Handler) GroupFollow(c *gin.Context) {
	slug := c.Param("slug")

	_, err := h.svc.Follows.FollowGroup(c.Request.Context(), caller(c), slug)
	if err != nil && !errors.Is(err, service.ErrAlreadyFollowing) {
		h.webFail(c, err, "failed to follow group")
		return
	}
	response.Found(c, policy.GroupURL(slug))
}

// GroupUnfollow handles GET /group/:slug/unfollow/.
func (h *Handler) GroupUnfollow(c *gin.Context) {
	slug := c.Param("slug")

	if err := h.svc.Follows.UnfollowGroup(c.Request.Context(), caller(c), slug); err != nil {
		h.webFail(c, err, "failed to unfollow group")
		return
	}
	response.Found(c, policy.GroupURL(slug))
}

// GroupFollowers handles GET /group/:slug/followers/.
func (h *Handler) GroupFollowers(c *gin.Context) {
	group, page, err := h.svc.Follows.GroupFollowers(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		h.webFail(c, err, "failed to load followers")
		return
	}
	response.Success(c, gin.H{"group": group.ToResponse(), "page_obj": userPage(page)})
}

// GroupPostForm handles GET /group/:slug/create/. It only checks; nothing
// is written until the form is submitted.
func (h *Handler) GroupPostForm(c *gin.Context) {
	group, err := h.svc.Posts.CheckGroupPosting(c.Request.Context(), caller(c), c.Param("slug"))
	if err != nil {
		h.webFail(c, err, "failed to load group")
		return
	}
	response.Success(c, gin.H{"is_edit": false, "group": group.ToResponse()})
}

// GroupPostCreate handles POST /group/:slug/create/.
func (h *Handler) GroupPostCreate(c *gin.Context) {
	ctx := c.Request.Context()
	who := caller(c)
	slug := c.Param("slug")

	if _, err := h.svc.Posts.CheckGroupPosting(ctx, who, slug); err != nil {
		h.webFail(c, err, "failed to load group")
		return
	}

	var form domain.PostForm
	if err := c.ShouldBind(&form); err != nil {
		bindFail(c, err)
		return
	}

	in, closeFn, err := h.postInput(c, form.Text, nil)
	if err != nil {
		h.webFail(c, err, "failed to read upload")
		return
	}
	defer closeFn()

	if _, err := h.svc.Posts.CreateInGroup(ctx, who, slug, in); err != nil {
		h.webFail(c, err, "failed to create post")
		return
	}
	response.Found(c, policy.GroupURL(slug))
}

// GroupIndex handles GET /groups/.
func (h *Handler) GroupIndex(c *gin.Context) {
	page, err := h.svc.Groups.List(c.Request.Context(), domain.PageNumber{Number: pageParam(c), Size: h.opts.PageSize})
	if err != nil {
		h.webFail(c, err, "failed to list groups")
		return
	}
	response.Success(c, gin.H{"groups": true, "page_obj": groupPage(page)})
}

// GroupCreateForm handles GET /group_create/.
func (h *Handler) GroupCreateForm(c *gin.Context) {
	if err := policy.CanCreateGroup(caller(c)); err != nil {
		h.webFail(c, err, "")
		return
	}
	response.Success(c, gin.H{"form": domain.GroupCreateRequest{}})
}

// GroupCreate handles POST /group_create/.
func (h *Handler) GroupCreate(c *gin.Context) {
	who := caller(c)

	if err := policy.CanCreateGroup(who); err != nil {
		h.webFail(c, err, "")
		return
	}

	var req domain.GroupCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err)
		return
	}

	group, err := h.svc.Groups.Create(c.Request.Context(), who, &req)
	if err != nil {
		h.webFail(c, err, "failed to create group")
		return
	}
	response.Found(c, policy.GroupURL(group.Slug))
}

// PostSearch handles GET /post_search/.
func (h *Handler) PostSearch(c *gin.Context) {
	q, ok := h.searchQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Search.Posts(c.Request.Context(), q, domain.PageNumber{Number: pageParam(c), Size: h.opts.PageSize})
	if err != nil {
		h.webFail(c, err, "search failed")
		return
	}
	response.Success(c, gin.H{"query": q.Text, "page_obj": h.postPage(c.Request.Context(), page)})
}

// UserSearch handles GET /user_search/.
func (h *Handler) UserSearch(c *gin.Context) {
	q, ok := h.searchQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Search.Users(c.Request.Context(), q, domain.PageNumber{Number: pageParam(c), Size: h.opts.PageSize})
	if err != nil {
		h.webFail(c, err, "search failed")
		return
	}
	response.Success(c, gin.H{"query": q.Text, "page_obj": userPage(page)})
}

// GroupSearch handles GET /group_search/.
func (h *Handler) GroupSearch(c *gin.Context) {
	q, ok := h.searchQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Search.Groups(c.Request.Context(), q, domain.PageNumber{Number: pageParam(c), Size: h.opts.PageSize})
	if err != nil {
		h.webFail(c, err, "search failed")
		return
	}
	response.Success(c, gin.H{"query": q.Text, "page_obj": groupPage(page)})
}

// searchQuery answers the missing and empty cases itself and reports
// whether a search should run.
func (h *Handler) searchQuery(c *gin.Context) (service.Query, bool) {
	raw, present := c.GetQuery("query")
	q := service.ParseQuery(raw, present)

	switch q.State {
	case service.QueryMissing:
		response.Success(c, gin.H{"search_form": true})
		return q, false
	case service.QueryEmpty:
		response.Found(c, "/")
		return q, false
	default:
		return q, true
	}
}

// Media handles GET /media/*key for local storage.
func (h *Handler) Media(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	key := path.Clean(c.Param("key"))[1:]
	if key == "" {
		response.NotFound(c, "file not found")
		return
	}

	rc, err := h.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(c, "file not found")
			return
		}
		l.Error().Err(err).Str("key", key).Msg("failed to read media")
		response.InternalError(c, "failed to read file")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("media copy interrupted")
	}
}

// postInput assembles the post fields plus an optional image. The returned
// func releases the upload.
func (h *Handler) postInput(c *gin.Context, text string, groupID *uint) (domain.PostInput, func(), error) {
	up, f, err := h.formUpload(c, "image")
	if err != nil {
		return domain.PostInput{}, func() {}, err
	}
	closeFn := func() {
		if f != nil {
			f.Close()
		}
	}
	return domain.PostInput{Text: text, GroupID: groupID, Image: up}, closeFn, nil
}
