package domain

import "time"

// User is a registered storefront account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is the minimal authenticated identity attached to a request and
// passed explicitly into every cart and checkout operation.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Principal projects the user onto its public identity.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Session binds an opaque token to a user until it expires.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
