package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/pkg/middleware"
)

var errFileTooLarge = errors.New("file too large")

// caller is the identity the auth middleware resolved, anonymous if none.
func caller(c *gin.Context) domain.Caller {
	return domain.Caller{
		UserID:   middleware.GetUserID(c),
		Username: middleware.GetUsername(c),
	}
}

// pageParam reads ?page=; anything unparsable is the first page.
func pageParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (h *Handler) limitOffset(c *gin.Context) domain.LimitOffset {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = h.opts.PageSize
	}
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return domain.LimitOffset{Limit: limit, Offset: offset}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formUpload opens the named multipart file. A missing file is (nil, nil).
// The caller must close the returned file.
func (h *Handler) formUpload(c *gin.Context, field string) (*domain.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if fh.Size > h.opts.MaxUploadBytes {
		return nil, nil, errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// bindingDetails turns binding errors into per-field messages.
func bindingDetails(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"non_field_errors": {err.Error()}}
	}
	details := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		details[field] = append(details[field], fieldMessage(fe))
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this field has at least " + fe.Param() + " characters"
	case "email":
		return "enter a valid email address"
	default:
		return "invalid value"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// listURL is the current request URL with new limit/offset values.
func listURL(c *gin.Context, limit, offset int) string {
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String()
}

// listBody is the REST list shape.
type listBody struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func newListBody[T, R any](c *gin.Context, page *domain.Page[T], results []R) listBody {
	body := listBody{Count: page.Total, Results: results}
	if page.HasNext {
		next := listURL(c, page.Limit, page.Offset+page.Limit)
		body.Next = &next
	}
	if page.Offset > 0 {
		prev := page.Offset - page.Limit
		if prev < 0 {
			prev = 0
		}
		previous := listURL(c, page.Limit, prev)
		body.Previous = &previous
	}
	return body
}
