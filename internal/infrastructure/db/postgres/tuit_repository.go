package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

const tuitColumns = `id, owner_id, parent_id, quote_id, body, status,
	views, likes, retuits, bookmarks, comments, quotes, created_at, updated_at`

type TuitRepository struct {
	pool *pgxpool.Pool
}

func NewTuitRepository(pool *pgxpool.Pool) *TuitRepository {
	return &TuitRepository{pool: pool}
}

func (r *TuitRepository) Create(ctx context.Context, tuit *domain.Tuit) (*domain.Tuit, error) {
	query := `
		INSERT INTO tuits (owner_id, parent_id, quote_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tuitColumns

	created, err := scanTuit(r.pool.QueryRow(ctx, query,
		tuit.OwnerID, tuit.ParentID, tuit.QuoteID, tuit.Body,
	))
	if err != nil {
		return nil, translateError(err, "INFRA:TUIT:CREATE")
	}
	return created, nil
}

func (r *TuitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tuit, error) {
	tuit, err := scanTuit(r.pool.QueryRow(ctx, `SELECT `+tuitColumns+` FROM tuits WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tuitNotFound()
		}
		return nil, translateError(err, "INFRA:TUIT:FIND_BY_ID")
	}
	return tuit, nil
}

func (r *TuitRepository) Disable(ctx context.Context, id uuid.UUID) (*domain.Tuit, error) {
	query := `
		UPDATE tuits
		SET status = 'disabled',
			updated_at = (now() at time zone 'utc')
		WHERE id = $1
		RETURNING ` + tuitColumns

	disabled, err := scanTuit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tuitNotFound()
		}
		return nil, translateError(err, "INFRA:TUIT:DISABLE")
	}
	return disabled, nil
}

func (r *TuitRepository) ListUnviewedByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Tuit, error) {
	query := `
		SELECT ` + tuitColumns + `
		FROM tuits t
		WHERE NOT EXISTS (
			SELECT 1 FROM views v
			WHERE v.owner_id = $1 AND v.tuit_id = t.id
		)
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, translateError(err, "INFRA:TUIT:LIST_UNVIEWED")
	}
	defer rows.Close()

	return collectTuits(rows, "INFRA:TUIT:LIST_UNVIEWED")
}

func (r *TuitRepository) ListComments(ctx context.Context, parentID uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*domain.Tuit, error) {
	query := `
		SELECT ` + tuitColumns + `
		FROM tuits
		WHERE parent_id = $1`
	args := []any{parentID}

	if len(excludeIDs) > 0 {
		query += ` AND id <> ALL($2)`
		args = append(args, excludeIDs)
	}
	args = append(args, limit)
	if len(excludeIDs) > 0 {
		query += ` LIMIT $3`
	} else {
		query += ` LIMIT $2`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "INFRA:TUIT:LIST_COMMENTS")
	}
	defer rows.Close()

	return collectTuits(rows, "INFRA:TUIT:LIST_COMMENTS")
}

func collectTuits(rows pgx.Rows, location string) ([]*domain.Tuit, error) {
	tuits := make([]*domain.Tuit, 0)
	for rows.Next() {
		tuit, err := scanTuit(rows)
		if err != nil {
			return nil, translateError(err, location)
		}
		tuits = append(tuits, tuit)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, location)
	}
	return tuits, nil
}

func scanTuit(row pgx.Row) (*domain.Tuit, error) {
	var t domain.Tuit
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.ParentID, &t.QuoteID, &t.Body, &t.Status,
		&t.Views, &t.Likes, &t.Retuits, &t.Bookmarks, &t.Comments, &t.Quotes,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func tuitNotFound() error {
	return domain.NotFoundError(
		"The requested tuit was not found.",
		`Check that the "id" is correct.`,
	).WithLocation("INFRA:TUIT:FIND:NOT_FOUND").WithKey("id")
}
