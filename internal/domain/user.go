package domain

import (
	"io"
	"time"
)

// User represents a user entity.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName is first and last name, or the username when both are empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// Profile carries the optional about text and photo of a user.
type Profile struct {
	UserID uint   `json:"user_id"`
	About  string `json:"about"`
	Photo  string `json:"-"` // storage key
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SignupRequest is the web signup form and the REST user creation body.
type SignupRequest struct {
	Username  string `form:"username" json:"username" binding:"required,max=150"`
	Email     string `form:"email" json:"email" binding:"omitempty,email"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Password  string `form:"password1" json:"password" binding:"required,min=8"`
	// Confirm is only checked when present (the web form sends it).
	Confirm string `form:"password2" json:"-"`
}

// LoginRequest is the web login form and the REST token request.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// VerifyRequest checks a token.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// ProfileEditRequest is the profile edit form. Photo arrives separately.
type ProfileEditRequest struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	About     string `form:"about"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// ToResponse converts User to UserResponse without the email.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ToPrivateResponse includes the email, for the user themselves.
func (u *User) ToPrivateResponse() UserResponse {
	r := u.ToResponse()
	r.Email = u.Email
	return r
}
