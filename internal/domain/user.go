package domain

import (
	"context"
	"time"
)

// RoleAdmin is the role code that grants access to the admin API.
const RoleAdmin = "admin"

// User represents a registered user.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Category groups events by topic.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	UserID int64
	Roles  []string
}

// HasRole reports whether the principal carries the role code.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// UserRepository defines user lookups.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*User, error)
}

// CategoryRepository defines category lookups.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
}
