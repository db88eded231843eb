// Package policy decides who may do what. Every check takes the caller
// explicitly and is free of side effects.
package policy

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/weiawesome/birdup/internal/domain"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("authorization denied")
)

// GroupPostingMode controls who may post into a group.
type GroupPostingMode string

const (
	// Restricted allows the group creator and its followers.
	Restricted GroupPostingMode = "restricted"
	// Permissive allows any authenticated user.
	Permissive GroupPostingMode = "permissive"
)

// Denial is a refused check. Err is ErrAuthenticationRequired or
// ErrAuthorizationDenied; Fallback is where a browser should be sent
// instead. Next, when set, is the page to return to after logging in.
type Denial struct {
	Err      error
	Fallback string
	Next     string
	Reason   string
}

func (d *Denial) Error() string {
	if d.Reason == "" {
		return d.Err.Error()
	}
	return fmt.Sprintf("%s: %s", d.Err, d.Reason)
}

func (d *Denial) Unwrap() error { return d.Err }

// AsDenial extracts a Denial from err.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

func authRequired(next string) error {
	return &Denial{Err: ErrAuthenticationRequired, Next: next, Reason: "login required"}
}

func denied(fallback, reason string) error {
	return &Denial{Err: ErrAuthorizationDenied, Fallback: fallback, Reason: reason}
}

// RequireAuthenticated admits any logged-in caller. returnTo is the page
// to come back to after login; empty means the current request.
func RequireAuthenticated(caller domain.Caller, returnTo string) error {
	if !caller.IsAuthenticated() {
		return authRequired(returnTo)
	}
	return nil
}

// CanModifyPost admits only the post's author.
func CanModifyPost(caller domain.Caller, post *domain.Post) error {
	if !caller.IsAuthenticated() {
		return authRequired("")
	}
	if !caller.Is(post.AuthorID) {
		return denied(PostURL(post.ID), "only the author may change this post")
	}
	return nil
}

// CanModifyComment admits only the comment's author.
func CanModifyComment(caller domain.Caller, comment *domain.Comment) error {
	if !caller.IsAuthenticated() {
		return authRequired("")
	}
	if !caller.Is(comment.AuthorID) {
		return denied(PostURL(comment.PostID), "only the author may change this comment")
	}
	return nil
}

// CanPostInGroup decides whether caller may publish into group. following
// is whether the caller follows the group; the caller looks it up so this
// stays a pure function.
func CanPostInGroup(caller domain.Caller, group *domain.Group, following bool, mode GroupPostingMode) error {
	if !caller.IsAuthenticated() {
		return authRequired("")
	}
	if mode == Permissive {
		return nil
	}
	if group.IsCreator(caller.UserID) || following {
		return nil
	}
	return denied(GroupURL(group.Slug), "only the group creator and its followers may post here")
}

// CanCreateGroup admits any logged-in caller.
func CanCreateGroup(caller domain.Caller) error {
	return RequireAuthenticated(caller, "")
}

// CanFollow admits any logged-in caller.
func CanFollow(caller domain.Caller) error {
	return RequireAuthenticated(caller, "")
}

// PostURL is the post detail page.
func PostURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// GroupURL is the group feed page.
func GroupURL(slug string) string {
	return "/group/" + url.PathEscape(slug) + "/"
}

// ProfileURL is the profile feed page.
func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
