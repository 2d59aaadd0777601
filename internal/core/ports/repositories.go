package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// UserRepository defines persistence operations for users. Unique-field
// lookups match case-insensitively and return a NotFound domain error when
// the row is absent.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByTag(ctx context.Context, tag string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists the mutable profile fields of user and returns the
	// stored row.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	AddFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error)
	// RemoveFeatures removes the named features; an empty list clears the
	// whole feature set.
	RemoveFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error)
}

// TuitRepository defines persistence operations for tuits.
type TuitRepository interface {
	// Create inserts a root tuit. Comments and quotes go through
	// FeedbackRepository so the parent counter update shares the insert's
	// transaction.
	Create(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tuit, error)
	// Disable performs the one-way published -> disabled transition.
	Disable(ctx context.Context, id uuid.UUID) (*domain.Tuit, error)
	// ListUnviewedByUser returns up to limit tuits the user has not viewed,
	// the candidate set for the relevance-ranked root feed.
	ListUnviewedByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Tuit, error)
	// ListComments returns up to limit children of parentID, skipping
	// excludeIDs (pagination by exclusion).
	ListComments(ctx context.Context, parentID uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*domain.Tuit, error)
}

// FeedbackRepository is the feedback transaction manager. Every method runs
// its row mutation and counter update inside one transaction; on any failure
// both are rolled back together.
type FeedbackRepository interface {
	// Toggle flips the (user, tuit, kind) feedback state and adjusts the
	// matching counter. A repeated view returns (nil, nil) without writes.
	Toggle(ctx context.Context, kind domain.FeedbackKind, userID, tuitID uuid.UUID) (*domain.Feedback, error)
	// CreateComment inserts a child tuit and increments the parent's
	// comments counter.
	CreateComment(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error)
	// CreateQuote inserts a quoting tuit and increments the quoted tuit's
	// quotes counter.
	CreateQuote(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error)
}

// SessionRepository defines persistence operations for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// FindByToken returns the session only while it is unexpired.
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	Renew(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*domain.Session, error)
	// Expire pushes expires_at into the past, invalidating the session.
	Expire(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

// SessionCache is a read-through cache in front of SessionRepository keyed by
// session token. Misses and errors both fall back to the repository; entries
// are invalidated on renewal and logout.
type SessionCache interface {
	// Get returns the cached session, or nil on a miss.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Invalidate(ctx context.Context, token string) error
}
