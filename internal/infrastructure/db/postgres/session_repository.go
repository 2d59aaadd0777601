package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

const sessionColumns = `id, user_id, token, expires_at, created_at, updated_at`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + sessionColumns

	created, err := scanSession(r.pool.QueryRow(ctx, query,
		session.UserID, session.Token, session.ExpiresAt,
	))
	if err != nil {
		return nil, translateError(err, "INFRA:SESSION:CREATE")
	}
	return created, nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE token = $1 AND expires_at > (now() at time zone 'utc')`

	session, err := scanSession(r.pool.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sessionNotFound()
	}
	if err != nil {
		return nil, translateError(err, "INFRA:SESSION:FIND_BY_TOKEN")
	}
	return session, nil
}

func (r *SessionRepository) Renew(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET expires_at = $2,
			updated_at = (now() at time zone 'utc')
		WHERE id = $1
		RETURNING ` + sessionColumns

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, expiresAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sessionNotFound()
	}
	if err != nil {
		return nil, translateError(err, "INFRA:SESSION:RENEW")
	}
	return session, nil
}

func (r *SessionRepository) Expire(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	// Backdating to before creation invalidates the session without losing
	// the row, so logouts stay auditable.
	query := `
		UPDATE sessions
		SET expires_at = created_at - interval '1 day',
			updated_at = (now() at time zone 'utc')
		WHERE id = $1
		RETURNING ` + sessionColumns

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sessionNotFound()
	}
	if err != nil {
		return nil, translateError(err, "INFRA:SESSION:EXPIRE")
	}
	return session, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func sessionNotFound() error {
	return domain.NotFoundError(
		"The session was not found or has expired.",
		"Log in again to obtain a fresh session.",
	).WithLocation("INFRA:SESSION:FIND:NOT_FOUND")
}
