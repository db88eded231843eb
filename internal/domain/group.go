package domain

import (
	"regexp"
	"time"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s is a URL-safe slug.
func ValidSlug(s string) bool {
	return len(s) <= 100 && slugPattern.MatchString(s)
}

// Group represents a community posts can be filed under.
type Group struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatorID   *uint     `json:"creator_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsCreator reports whether userID created the group.
func (g *Group) IsCreator(userID uint) bool {
	return g.CreatorID != nil && userID != 0 && *g.CreatorID == userID
}

// GroupCreateRequest is the group creation form.
type GroupCreateRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Slug        string `form:"slug" json:"slug" binding:"required,max=100"`
	Description string `form:"description" json:"description"`
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ToResponse converts Group to GroupResponse.
func (g *Group) ToResponse() GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}
