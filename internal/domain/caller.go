package domain

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	UserID   uint
	Username string
}

// Anonymous returns the unauthenticated caller.
func Anonymous() Caller { return Caller{} }

// IsAuthenticated reports whether the caller is a logged-in user.
func (c Caller) IsAuthenticated() bool { return c.UserID != 0 }

// Is reports whether the caller is the given user.
func (c Caller) Is(userID uint) bool { return c.IsAuthenticated() && c.UserID == userID }
