package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"
	FieldErrors    = "errors"

	// Actor (same keys as pkg/middleware)
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Domain
	FieldPostID    = "post_id"
	FieldCommentID = "comment_id"
	FieldGroupSlug = "group_slug"
	FieldAuthorID  = "author_id"
	FieldChannel   = "channel"
	FieldEvent     = "event"

	FieldService = "service"

	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
