package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/service"
)

func (h *Handler) postResponse(ctx context.Context, p *domain.Post) domain.PostResponse {
	return p.ToResponse(h.svc.Posts.ImageURL(ctx, p))
}

func (h *Handler) postPage(ctx context.Context, page *domain.Page[domain.Post]) *domain.Page[domain.PostResponse] {
	return domain.MapPage(page, func(p domain.Post) domain.PostResponse {
		return h.postResponse(ctx, &p)
	})
}

func (h *Handler) postResults(ctx context.Context, page *domain.Page[domain.Post]) []domain.PostResponse {
	return h.postPage(ctx, page).Items
}

func userPage(page *domain.Page[domain.User]) *domain.Page[domain.UserResponse] {
	return domain.MapPage(page, func(u domain.User) domain.UserResponse { return u.ToResponse() })
}

func groupPage(page *domain.Page[domain.Group]) *domain.Page[domain.GroupResponse] {
	return domain.MapPage(page, func(g domain.Group) domain.GroupResponse { return g.ToResponse() })
}

func commentResults(comments []domain.Comment) []domain.CommentResponse {
	out := make([]domain.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].ToResponse())
	}
	return out
}

func followResults(follows []domain.Follow) []domain.FollowResponse {
	out := make([]domain.FollowResponse, 0, len(follows))
	for i := range follows {
		out = append(out, follows[i].ToResponse())
	}
	return out
}

func (h *Handler) profileResponse(ctx context.Context, u *domain.User, p *domain.Profile, private bool) gin.H {
	user := u.ToResponse()
	if private {
		user = u.ToPrivateResponse()
	}
	out := gin.H{"user": user, "full_name": u.FullName()}
	if p != nil {
		out["about"] = p.About
		out["photo"] = h.svc.Users.PhotoURL(ctx, p)
	}
	return out
}

func (h *Handler) detailResponse(ctx context.Context, d *service.PostDetail) gin.H {
	return gin.H{
		"post":              h.postResponse(ctx, d.Post),
		"comments":          commentResults(d.Comments),
		"author_post_count": d.AuthorPostCount,
	}
}
