package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID map[uuid.UUID]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[uuid.UUID]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	clone := *u
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The requested user was not found.", "Check the id.")
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByTag(_ context.Context, tag string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) string { return u.Tag }, tag)
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) string { return u.Username }, username)
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) string { return u.Email }, email)
}

func (r *stubUserRepo) findBy(key func(*domain.User) string, value string) (*domain.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(key(u), value) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.NotFoundError("The requested user was not found.", "Check the value.")
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	stored, ok := r.byID[u.ID]
	if !ok {
		return nil, domain.NotFoundError("The requested user was not found.", "Check the id.")
	}
	clone := *u
	clone.Features = stored.Features
	clone.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) AddFeatures(_ context.Context, id uuid.UUID, features []string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The requested user was not found.", "Check the id.")
	}
	for _, f := range features {
		if !u.HasFeature(f) {
			u.Features = append(u.Features, f)
		}
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) RemoveFeatures(_ context.Context, id uuid.UUID, features []string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The requested user was not found.", "Check the id.")
	}
	if len(features) == 0 {
		u.Features = []string{}
	} else {
		kept := u.Features[:0]
		for _, f := range u.Features {
			remove := false
			for _, victim := range features {
				if f == victim {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, f)
			}
		}
		u.Features = kept
	}
	clone := *u
	return &clone, nil
}

type stubTuitRepo struct {
	byID     map[uuid.UUID]*domain.Tuit
	unviewed []*domain.Tuit
}

func newStubTuitRepo() *stubTuitRepo {
	return &stubTuitRepo{byID: make(map[uuid.UUID]*domain.Tuit)}
}

func (r *stubTuitRepo) add(t *domain.Tuit) *domain.Tuit {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.byID[t.ID] = t
	return t
}

func (r *stubTuitRepo) Create(_ context.Context, t *domain.Tuit) (*domain.Tuit, error) {
	clone := *t
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTuitRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Tuit, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The requested tuit was not found.", "Check the id.")
	}
	clone := *t
	return &clone, nil
}

func (r *stubTuitRepo) Disable(_ context.Context, id uuid.UUID) (*domain.Tuit, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The requested tuit was not found.", "Check the id.")
	}
	t.Status = domain.StatusDisabled
	clone := *t
	return &clone, nil
}

func (r *stubTuitRepo) ListUnviewedByUser(_ context.Context, _ uuid.UUID, limit int) ([]*domain.Tuit, error) {
	out := r.unviewed
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubTuitRepo) ListComments(_ context.Context, parentID uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*domain.Tuit, error) {
	var out []*domain.Tuit
	for _, t := range r.byID {
		if t.ParentID == nil || *t.ParentID != parentID {
			continue
		}
		excluded := false
		for _, id := range excludeIDs {
			if t.ID == id {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// stubFeedbackRepo mirrors the row-plus-counter contract of the real
// repository: each toggle inserts or deletes the row and moves the matching
// tuit counter by one, never below zero. The mutex stands in for the FOR
// UPDATE row lock.
type stubFeedbackRepo struct {
	mu       sync.Mutex
	toggles  map[string]bool // kind:user:tuit -> row exists
	tuits    *stubTuitRepo
	lastKind domain.FeedbackKind
}

func newStubFeedbackRepo(tuits *stubTuitRepo) *stubFeedbackRepo {
	return &stubFeedbackRepo{toggles: make(map[string]bool), tuits: tuits}
}

func (r *stubFeedbackRepo) Toggle(_ context.Context, kind domain.FeedbackKind, userID, tuitID uuid.UUID) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tuit, ok := r.tuits.byID[tuitID]
	if !ok {
		return nil, domain.NotFoundError("The requested tuit was not found.", "Check the id.")
	}

	r.lastKind = kind
	key := string(kind) + ":" + userID.String() + ":" + tuitID.String()
	exists := r.toggles[key]

	if kind == domain.FeedbackView && exists {
		return nil, nil
	}

	record := &domain.Feedback{
		ID:        uuid.New(),
		Kind:      kind,
		OwnerID:   userID,
		TuitID:    tuitID,
		Removed:   exists,
		CreatedAt: time.Now().UTC(),
	}
	r.toggles[key] = !exists

	counter := counterFor(tuit, kind)
	if exists {
		if *counter > 0 {
			*counter--
		}
	} else {
		*counter++
	}
	return record, nil
}

func counterFor(t *domain.Tuit, kind domain.FeedbackKind) *int {
	switch kind {
	case domain.FeedbackLike:
		return &t.Likes
	case domain.FeedbackRetuit:
		return &t.Retuits
	case domain.FeedbackBookmark:
		return &t.Bookmarks
	default:
		return &t.Views
	}
}

func (r *stubFeedbackRepo) CreateComment(ctx context.Context, t *domain.Tuit) (*domain.Tuit, error) {
	parent, ok := r.tuits.byID[*t.ParentID]
	if !ok {
		return nil, domain.ValidationError("The referenced tuit does not exist.", "Check parent_id.").WithKey("parent_id")
	}
	created, _ := r.tuits.Create(ctx, t)
	parent.Comments++
	return created, nil
}

func (r *stubFeedbackRepo) CreateQuote(ctx context.Context, t *domain.Tuit) (*domain.Tuit, error) {
	quoted, ok := r.tuits.byID[*t.QuoteID]
	if !ok {
		return nil, domain.ValidationError("The referenced tuit does not exist.", "Check quote_id.").WithKey("quote_id")
	}
	created, _ := r.tuits.Create(ctx, t)
	quoted.Quotes++
	return created, nil
}

type stubSessionRepo struct {
	byID map[uuid.UUID]*domain.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{byID: make(map[uuid.UUID]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) (*domain.Session, error) {
	clone := *s
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubSessionRepo) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	for _, s := range r.byID {
		if s.Token == token && s.ExpiresAt.After(time.Now().UTC()) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.NotFoundError("The session was not found or has expired.", "Log in again.")
}

func (r *stubSessionRepo) Renew(_ context.Context, id uuid.UUID, expiresAt time.Time) (*domain.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The session was not found or has expired.", "Log in again.")
	}
	s.ExpiresAt = expiresAt
	s.UpdatedAt = time.Now().UTC()
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) Expire(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("The session was not found or has expired.", "Log in again.")
	}
	s.ExpiresAt = s.CreatedAt.Add(-24 * time.Hour)
	clone := *s
	return &clone, nil
}

type stubSessionCache struct {
	entries     map[string]*domain.Session
	gets, hits  int
	invalidated []string
}

func newStubSessionCache() *stubSessionCache {
	return &stubSessionCache{entries: make(map[string]*domain.Session)}
}

func (c *stubSessionCache) Get(_ context.Context, token string) (*domain.Session, error) {
	c.gets++
	s, ok := c.entries[token]
	if !ok {
		return nil, nil
	}
	c.hits++
	clone := *s
	return &clone, nil
}

func (c *stubSessionCache) Set(_ context.Context, s *domain.Session, _ time.Duration) error {
	clone := *s
	c.entries[s.Token] = &clone
	return nil
}

func (c *stubSessionCache) Invalidate(_ context.Context, token string) error {
	delete(c.entries, token)
	c.invalidated = append(c.invalidated, token)
	return nil
}
