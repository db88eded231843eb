package log

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinMiddleware attaches a request-scoped child logger (request id, method,
// path, client ip) to the request context and logs every completed request.
// Server errors log at error level, client errors at warn.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()

		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = child.Error()
		case status >= http.StatusBadRequest:
			evt = child.Warn()
		default:
			evt = child.Info()
		}
		evt = evt.Int(FieldStatus, status).
			Int64(FieldLatency, time.Since(start).Milliseconds())

		// Set by the auth middleware once the token has been validated.
		if v, ok := c.Get(FieldUserID); ok {
			if id, ok := v.(uint); ok && id != 0 {
				evt = evt.Uint(FieldUserID, id)
			}
		}
		if v, ok := c.Get(FieldUsername); ok {
			if name, ok := v.(string); ok && name != "" {
				evt = evt.Str(FieldUsername, name)
			}
		}
		if len(c.Errors) > 0 {
			evt = evt.Str(FieldErrors, c.Errors.String())
		}

		evt.Msg("request completed")
	}
}
