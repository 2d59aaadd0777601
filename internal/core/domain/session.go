package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionDuration is how long a fresh or renewed session lives.
const SessionDuration = 30 * 24 * time.Hour

// SessionRenewalWindow is the remaining-lifetime threshold below which an
// authenticated request transparently renews its session.
const SessionRenewalWindow = 21 * 24 * time.Hour

// Session is a server-side login session. The token is a high-entropy opaque
// string; the cookie the client holds wraps it in a signed JWT.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsRenewal reports whether the session is close enough to expiry that it
// should be renewed on the next authenticated request.
func (s *Session) NeedsRenewal(now time.Time) bool {
	return s.ExpiresAt.Before(now.Add(SessionRenewalWindow))
}
