package domain

import "time"

// Follow is a follow edge. Exactly one of AuthorID and GroupID is set.
type Follow struct {
	ID               uint
	FollowerID       uint
	FollowerUsername string
	AuthorID         *uint
	AuthorUsername   string
	GroupID          *uint
	GroupSlug        string
	CreatedAt        time.Time
}

// FollowRequest is the REST follow body: a username or a group slug.
type FollowRequest struct {
	Following string `json:"following"`
	Group     string `json:"group"`
}

// FollowResponse represents a follow edge in API responses.
type FollowResponse struct {
	ID        uint   `json:"id,omitempty"`
	User      string `json:"user"`
	Following string `json:"following,omitempty"`
	Group     string `json:"group,omitempty"`
}

// ToResponse converts Follow to FollowResponse.
func (f *Follow) ToResponse() FollowResponse {
	return FollowResponse{
		ID:        f.ID,
		User:      f.FollowerUsername,
		Following: f.AuthorUsername,
		Group:     f.GroupSlug,
	}
}

// FollowCounts are the numbers shown on a profile.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}
