package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackKind identifies one of the toggleable feedback tables. Comments and
// quotes are not kinds: they create child tuits and are append-only.
type FeedbackKind string

const (
	FeedbackView     FeedbackKind = "view"
	FeedbackLike     FeedbackKind = "like"
	FeedbackRetuit   FeedbackKind = "retuit"
	FeedbackBookmark FeedbackKind = "bookmark"
)

// ParseFeedbackKind validates a client-supplied feedback type.
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch FeedbackKind(s) {
	case FeedbackView, FeedbackLike, FeedbackRetuit, FeedbackBookmark:
		return FeedbackKind(s), nil
	}
	return "", ValidationError(
		`"feedback_type" must be one of: view, like, retuit, bookmark.`,
		"Send a supported feedback type.",
	).WithLocation("MODEL:FEEDBACK:PARSE_KIND:UNKNOWN").WithKey("feedback_type")
}

// Toggleable reports whether a second identical action reverses the first.
// Views are insert-once: repeating one is a no-op, never a removal.
func (k FeedbackKind) Toggleable() bool {
	return k != FeedbackView
}

// Feedback is one row of a feedback table: at most one per
// (owner, tuit, kind) triple, enforced by a unique constraint.
type Feedback struct {
	ID      uuid.UUID    `json:"id"`
	Kind    FeedbackKind `json:"kind"`
	OwnerID uuid.UUID    `json:"owner_id"`
	TuitID  uuid.UUID    `json:"tuit_id"`
	// Removed is true when the action reversed an earlier one: the returned
	// record is the deleted row.
	Removed   bool      `json:"removed"`
	CreatedAt time.Time `json:"created_at"`
}
