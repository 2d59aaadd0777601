package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TuitStatus represents the lifecycle state of a tuit.
type TuitStatus string

const (
	StatusPublished TuitStatus = "published"
	StatusDisabled  TuitStatus = "disabled"
)

const maxBodyLength = 255

// Tuit is a short post. ParentID marks it as a comment on another tuit,
// QuoteID as a quote-repost. Counters are mutated only inside feedback
// transactions and never go negative.
type Tuit struct {
	ID       uuid.UUID  `json:"id"`
	OwnerID  uuid.UUID  `json:"owner_id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	QuoteID  *uuid.UUID `json:"quote_id,omitempty"`
	Body     string     `json:"body"`
	Status   TuitStatus `json:"status"`

	Views     int `json:"views"`
	Likes     int `json:"likes"`
	Retuits   int `json:"retuits"`
	Bookmarks int `json:"bookmarks"`
	Comments  int `json:"comments"`
	Quotes    int `json:"quotes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDisabled reports whether the tuit has been soft-deleted. Disabled tuits
// keep their metadata visible but expose no body or engagement counters.
func (t *Tuit) IsDisabled() bool {
	return t.Status == StatusDisabled
}

// ResourceOwner satisfies the authorization engine's ownership check.
func (t *Tuit) ResourceOwner() uuid.UUID {
	return t.OwnerID
}

// invisibleRunes are zero-width characters stripped from body edges and
// rejected as a leading character.
func isInvisibleRune(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}

// NormalizeBody trims trailing whitespace and invisible characters from a raw
// tuit body and validates the result: it must not start with whitespace,
// control, or invisible characters, and must hold 1 to 255 visible characters.
func NormalizeBody(raw string) (string, error) {
	body := strings.TrimRightFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || isInvisibleRune(r)
	})

	if body == "" {
		return "", ValidationError(
			`"body" must not be empty.`,
			"Write some content before publishing.",
		).WithLocation("MODEL:TUIT:NORMALIZE_BODY:EMPTY").WithKey("body")
	}

	first, _ := utf8.DecodeRuneInString(body)
	if unicode.IsSpace(first) || unicode.IsControl(first) || isInvisibleRune(first) {
		return "", ValidationError(
			`"body" must not start with whitespace or invisible characters.`,
			"Remove the leading characters and try again.",
		).WithLocation("MODEL:TUIT:NORMALIZE_BODY:LEADING_INVISIBLE").WithKey("body")
	}

	if utf8.RuneCountInString(body) > maxBodyLength {
		return "", ValidationError(
			`"body" exceeds the maximum of 255 characters.`,
			"Shorten the content and try again.",
		).WithLocation("MODEL:TUIT:NORMALIZE_BODY:TOO_LONG").WithKey("body")
	}

	return body, nil
}
