package domain

import "time"

// Post represents a published post.
type Post struct {
	ID             uint
	Text           string
	AuthorID       uint
	AuthorUsername string
	GroupID        *uint
	GroupSlug      string
	GroupTitle     string
	Image          string // storage key
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Comment represents a comment under a post.
type Comment struct {
	ID             uint
	PostID         uint
	AuthorID       uint
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
}

// PostInput carries the fields of a create or edit. GroupID nil means no
// group; Image nil keeps the current image.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   *Upload
}

// PostForm is the web post form.
type PostForm struct {
	Text  string `form:"text" binding:"required"`
	Group *uint  `form:"group"`
}

// GroupID returns the selected group, treating 0 and absent as none.
func (f PostForm) GroupID() *uint {
	if f.Group == nil || *f.Group == 0 {
		return nil
	}
	id := *f.Group
	return &id
}

// PostRequest is the REST post body. Nil fields are left untouched on PATCH.
type PostRequest struct {
	Text  *string `json:"text"`
	Group *uint   `json:"group"`
}

// CommentRequest is the comment form and REST body.
type CommentRequest struct {
	Text string `form:"text" json:"text" binding:"required"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID         uint      `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	AuthorID   uint      `json:"author_id"`
	Group      *uint     `json:"group"`
	GroupSlug  string    `json:"group_slug,omitempty"`
	GroupTitle string    `json:"group_title,omitempty"`
	Image      string    `json:"image,omitempty"`
	PubDate    time.Time `json:"pub_date"`
}

// ToResponse converts Post to PostResponse. imageURL is the resolved image
// location or empty.
func (p *Post) ToResponse(imageURL string) PostResponse {
	return PostResponse{
		ID:         p.ID,
		Text:       p.Text,
		Author:     p.AuthorUsername,
		AuthorID:   p.AuthorID,
		Group:      p.GroupID,
		GroupSlug:  p.GroupSlug,
		GroupTitle: p.GroupTitle,
		Image:      imageURL,
		PubDate:    p.CreatedAt,
	}
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID      uint      `json:"id"`
	Post    uint      `json:"post"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// ToResponse converts Comment to CommentResponse.
func (c *Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Post:    c.PostID,
		Author:  c.AuthorUsername,
		Text:    c.Text,
		Created: c.CreatedAt,
	}
}
