package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// feedbackTables maps a feedback kind to its row table and the matching
// counter column on tuits. Identifiers are interpolated into SQL, so they
// must come from this closed map, never from input.
var feedbackTables = map[domain.FeedbackKind]string{
	domain.FeedbackView:     "views",
	domain.FeedbackLike:     "likes",
	domain.FeedbackRetuit:   "retuits",
	domain.FeedbackBookmark: "bookmarks",
}

// FeedbackRepository is the feedback transaction manager. Every operation
// runs on one dedicated connection inside one transaction: the existence
// check, the row mutation, and the counter update commit or roll back as a
// unit. The unique index on (owner_id, tuit_id) per feedback table is the
// integrity backstop when two toggles race past the row lock.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

func (r *FeedbackRepository) Toggle(ctx context.Context, kind domain.FeedbackKind, userID, tuitID uuid.UUID) (*domain.Feedback, error) {
	table, ok := feedbackTables[kind]
	if !ok {
		return nil, domain.ValidationError(
			"The feedback kind is not supported.",
			"Send a supported feedback type.",
		).WithLocation("INFRA:FEEDBACK:TOGGLE:UNKNOWN_KIND").WithKey("feedback_type")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:TOGGLE:BEGIN")
	}
	defer tx.Rollback(ctx)

	// Locking the tuit row serializes concurrent toggles on the same tuit,
	// making the check-then-act below atomic. It also proves the tuit exists.
	if err := lockTuit(ctx, tx, tuitID); err != nil {
		return nil, err
	}

	existing, err := findFeedbackRow(ctx, tx, table, userID, tuitID)
	if err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:TOGGLE:CHECK")
	}

	// A repeated view is terminal: no new row, no counter change.
	if kind == domain.FeedbackView && existing != nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, translateError(err, "INFRA:FEEDBACK:TOGGLE:COMMIT")
		}
		return nil, nil
	}

	var record *domain.Feedback
	var delta string

	if existing == nil {
		query := fmt.Sprintf(`
			INSERT INTO %s (owner_id, tuit_id)
			VALUES ($1, $2)
			RETURNING id, owner_id, tuit_id, created_at`, table)
		record, err = scanFeedback(tx.QueryRow(ctx, query, userID, tuitID), kind)
		delta = "+"
	} else {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE owner_id = $1 AND tuit_id = $2
			RETURNING id, owner_id, tuit_id, created_at`, table)
		record, err = scanFeedback(tx.QueryRow(ctx, query, userID, tuitID), kind)
		delta = "-"
	}
	if err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:TOGGLE:MUTATE")
	}
	record.Removed = existing != nil

	if err := updateCounter(ctx, tx, table, delta, tuitID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:TOGGLE:COMMIT")
	}
	return record, nil
}

func (r *FeedbackRepository) CreateComment(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error) {
	return r.createChild(ctx, tuit, tuit.ParentID, "comments", "parent_id")
}

func (r *FeedbackRepository) CreateQuote(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error) {
	return r.createChild(ctx, tuit, tuit.QuoteID, "quotes", "quote_id")
}

// createChild inserts a child tuit and bumps the referenced tuit's counter
// in the same transaction. The referenced tuit must exist.
func (r *FeedbackRepository) createChild(ctx context.Context, tuit *domain.Tuit, refID *uuid.UUID, counter, key string) (*domain.Tuit, error) {
	if refID == nil {
		return nil, domain.ValidationError(
			`No "`+key+`" was given.`,
			`Send a "`+key+`" pointing to existing content.`,
		).WithLocation("INFRA:FEEDBACK:CREATE_CHILD:REF_MISSING").WithKey(key)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:CREATE_CHILD:BEGIN")
	}
	defer tx.Rollback(ctx)

	if err := lockTuit(ctx, tx, *refID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ValidationError(
				"The referenced tuit does not exist.",
				`Send a "`+key+`" pointing to existing content.`,
			).WithLocation("INFRA:FEEDBACK:CREATE_CHILD:REF_NOT_FOUND").WithKey(key)
		}
		return nil, err
	}

	query := `
		INSERT INTO tuits (owner_id, parent_id, quote_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tuitColumns

	created, err := scanTuit(tx.QueryRow(ctx, query,
		tuit.OwnerID, tuit.ParentID, tuit.QuoteID, tuit.Body,
	))
	if err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:CREATE_CHILD:INSERT")
	}

	if err := updateCounter(ctx, tx, counter, "+", *refID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateError(err, "INFRA:FEEDBACK:CREATE_CHILD:COMMIT")
	}
	return created, nil
}

func lockTuit(ctx context.Context, tx pgx.Tx, tuitID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM tuits WHERE id = $1 FOR UPDATE`, tuitID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return tuitNotFound()
	}
	if err != nil {
		return translateError(err, "INFRA:FEEDBACK:LOCK_TUIT")
	}
	return nil
}

func findFeedbackRow(ctx context.Context, tx pgx.Tx, table string, userID, tuitID uuid.UUID) (*uuid.UUID, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE owner_id = $1 AND tuit_id = $2`, table)

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, userID, tuitID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// updateCounter moves the named counter on the tuit row. Counters never go
// below zero: the decrement path only runs after a row delete inside the
// same transaction, and the expression guards against drift anyway.
func updateCounter(ctx context.Context, tx pgx.Tx, counter, delta string, tuitID uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE tuits
		SET %s = GREATEST(%s %s 1, 0),
			updated_at = (now() at time zone 'utc')
		WHERE id = $1`, counter, counter, delta)

	if _, err := tx.Exec(ctx, query, tuitID); err != nil {
		return translateError(err, "INFRA:FEEDBACK:UPDATE_COUNTER")
	}
	return nil
}

func scanFeedback(row pgx.Row, kind domain.FeedbackKind) (*domain.Feedback, error) {
	var f domain.Feedback
	if err := row.Scan(&f.ID, &f.OwnerID, &f.TuitID, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Kind = kind
	return &f, nil
}
