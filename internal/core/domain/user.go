package domain

import (
	"time"

	"github.com/google/uuid"
)

// User models an account. Users are never hard-deleted: a ban strips features
// and appends the nuked marker, leaving the row (and authored content) intact.
type User struct {
	ID           uuid.UUID `json:"id"`
	Tag          string    `json:"tag"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	// Features is the user's capability set. Insertion order is preserved;
	// the authorization engine treats it as a membership set.
	Features    []string  `json:"features"`
	Description string    `json:"description,omitempty"`
	Picture     string    `json:"picture,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FeatureNuked marks a permanently banned user. It is a state flag, not a
// grantable capability, so it lives here rather than in the registry.
const FeatureNuked = "nuked"

// DefaultUserFeatures is the capability set granted on signup.
func DefaultUserFeatures() []string {
	return []string{"read:session", "create:session", "read:user", "read:user:self"}
}

// AnonymousUser returns the principal attached to requests without a session.
// It can only sign up or log in.
func AnonymousUser() *User {
	return &User{
		Features: []string{"create:session", "create:user"},
	}
}

// HasFeature reports feature-set membership.
func (u *User) HasFeature(feature string) bool {
	for _, f := range u.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// IsNuked reports whether the user is permanently banned.
func (u *User) IsNuked() bool {
	return u.HasFeature(FeatureNuked)
}

// ResourceOwner identifies the user itself as the owner of its own record,
// satisfying the authorization engine's ownership check.
func (u *User) ResourceOwner() uuid.UUID {
	return u.ID
}
