package audit

import (
	"context"

	"github.com/weiawesome/birdup/pkg/log"
)

// Audit actions.
const (
	ActionSignup        = "user.signup"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionLogout        = "user.logout"
	ActionRefreshToken  = "user.refresh_token"
	ActionUpdateProfile = "user.update_profile"

	ActionCreatePost    = "post.create"
	ActionUpdatePost    = "post.update"
	ActionDeletePost    = "post.delete"
	ActionCreateComment = "comment.create"
	ActionUpdateComment = "comment.update"
	ActionDeleteComment = "comment.delete"
	ActionCreateGroup   = "group.create"
	ActionFollow        = "follow.create"
	ActionUnfollow      = "follow.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldTarget = "target"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry naming the object acted on.
func LogTarget(ctx context.Context, action string, userID uint, target string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldTarget, target).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID uint, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
