package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/birdup/internal/policy"
	"github.com/weiawesome/birdup/internal/service"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/middleware"
	"github.com/weiawesome/birdup/pkg/response"
)

// fieldErrors maps input errors to the form field they belong to.
var fieldErrors = []struct {
	err   error
	field string
}{
	{service.ErrEmptyText, "text"},
	{service.ErrInvalidImage, "image"},
	{errFileTooLarge, "image"},
	{service.ErrInvalidSlug, "slug"},
	{service.ErrInvalidUsername, "username"},
	{service.ErrPasswordMismatch, "password2"},
	{service.ErrSelfFollow, "following"},
	{service.ErrAlreadyFollowing, "following"},
}

// webFail answers a failed page request. Denials become redirects.
func (h *Handler) webFail(c *gin.Context, err error, msg string) {
	if d, ok := policy.AsDenial(err); ok {
		if errors.Is(d, policy.ErrAuthenticationRequired) {
			next := d.Next
			if next == "" {
				next = c.Request.URL.RequestURI()
			}
			response.Found(c, middleware.LoginURL(h.opts.LoginPath, next))
			return
		}
		fallback := d.Fallback
		if fallback == "" {
			fallback = "/"
		}
		response.Found(c, fallback)
		return
	}
	fail(c, err, msg)
}

// apiFail answers a failed REST request. Denials become 401/403.
func apiFail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, policy.ErrAuthenticationRequired):
		response.Unauthorized(c, "authentication credentials were not provided")
	case errors.Is(err, policy.ErrAuthorizationDenied):
		response.Forbidden(c, "you do not have permission to perform this action")
	default:
		fail(c, err, msg)
	}
}

func fail(c *gin.Context, err error, msg string) {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			response.ValidationError(c, "invalid input", map[string][]string{
				fe.field: {fe.err.Error()},
			})
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrSlugTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, err.Error())
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		response.InternalError(c, msg)
	}
}

// bindFail answers a request whose body or form did not bind.
func bindFail(c *gin.Context, err error) {
	response.ValidationError(c, "invalid input", bindingDetails(err))
}
