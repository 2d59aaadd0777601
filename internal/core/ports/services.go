package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// CreateUserInput carries the signup fields, already projected through the
// create:user input whitelist.
type CreateUserInput struct {
	Tag      string
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries profile changes. Nil pointers mean "leave as is";
// which pointers may be non-nil is decided by the input projection of the
// feature used (update:user vs update:user:others).
type UpdateUserInput struct {
	Tag         *string
	Username    *string
	Email       *string
	Password    *string
	Description *string
	Picture     *string
}

// UserService defines user account use cases.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByTag(ctx context.Context, tag string) (*domain.User, error)
	Update(ctx context.Context, tag string, input UpdateUserInput) (*domain.User, error)
	// Ban permanently bans the user: removes every feature and appends the
	// nuked marker. Banning an already-nuked user fails with
	// UnprocessableEntity.
	Ban(ctx context.Context, tag string, banType string) (*domain.User, error)
	AddFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error)
}

// BanCascader is an extension point run after a successful ban. Whether a
// ban should cascade-disable the banned user's tuits is deliberately not
// decided here; install an implementation to enable it.
type BanCascader interface {
	CascadeBan(ctx context.Context, userID uuid.UUID) error
}

// SessionService defines login-session use cases. Cookie values wrap the
// opaque session token in a signed JWT.
type SessionService interface {
	// Login verifies credentials and opens a session. It returns the
	// session, the authenticated user, and the cookie value to issue.
	Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, string, error)
	// Authenticate resolves a cookie value to its user and session.
	Authenticate(ctx context.Context, cookieValue string) (*domain.User, *domain.Session, error)
	// RenewIfNeeded extends the session when it is close to expiry. The
	// returned cookie value is empty when no renewal happened.
	RenewIfNeeded(ctx context.Context, session *domain.Session) (*domain.Session, string, error)
	Logout(ctx context.Context, session *domain.Session) (*domain.Session, error)
}

// CreateTuitInput carries a new tuit, comment, or quote. At most one of
// ParentID and QuoteID may be set.
type CreateTuitInput struct {
	OwnerID  uuid.UUID
	Body     string
	ParentID *uuid.UUID
	QuoteID  *uuid.UUID
}

// TuitService defines content and feedback use cases.
type TuitService interface {
	Create(ctx context.Context, input CreateTuitInput) (*domain.Tuit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tuit, error)
	// Disable soft-deletes a tuit. Disabling an already-disabled tuit fails
	// with UnprocessableEntity; ownership is enforced by the caller through
	// the authorization engine.
	Disable(ctx context.Context, id uuid.UUID) (*domain.Tuit, error)
	// RelevantFeed returns the ranked root feed for the user: unviewed
	// candidates scored and cut to the feed size.
	RelevantFeed(ctx context.Context, userID uuid.UUID) ([]*domain.Tuit, error)
	// CommentThread returns the ranked comments of a tuit, excluding ids
	// the client has already seen.
	CommentThread(ctx context.Context, parentID uuid.UUID, seenIDs []uuid.UUID) ([]*domain.Tuit, error)
	// Feedback performs a view/like/retuit/bookmark action; the returned
	// record is nil for a repeated view.
	Feedback(ctx context.Context, kind domain.FeedbackKind, userID, tuitID uuid.UUID) (*domain.Feedback, error)
}
