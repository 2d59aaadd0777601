package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

const userColumns = `id, tag, username, email, password, features, description, picture, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (tag, username, email, password, features)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := r.scanUser(r.pool.QueryRow(ctx, query,
		user.Tag, user.Username, user.Email, user.PasswordHash, user.Features,
	))
	if err != nil {
		return nil, translateError(err, "INFRA:USER:CREATE")
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id, "id")
}

func (r *UserRepository) FindByTag(ctx context.Context, tag string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(tag) = LOWER($1) LIMIT 1`, tag, "tag")
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`, username, "username")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`, email, "email")
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET tag = $2, username = $3, email = $4, password = $5,
			description = $6, picture = $7,
			updated_at = (now() at time zone 'utc')
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := r.scanUser(r.pool.QueryRow(ctx, query,
		user.ID, user.Tag, user.Username, user.Email, user.PasswordHash,
		user.Description, user.Picture,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound("id")
		}
		return nil, translateError(err, "INFRA:USER:UPDATE")
	}
	return updated, nil
}

func (r *UserRepository) AddFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error) {
	query := `
		UPDATE users
		SET features = features || $2,
			updated_at = (now() at time zone 'utc')
		WHERE id = $1 AND NOT features @> $2
		RETURNING ` + userColumns

	var updated *domain.User
	for _, feature := range features {
		u, err := r.scanUser(r.pool.QueryRow(ctx, query, id, []string{feature}))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Either the user is gone or the feature is already present;
				// re-read to tell the two apart.
				u, err = r.FindByID(ctx, id)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, translateError(err, "INFRA:USER:ADD_FEATURES")
			}
		}
		updated = u
	}
	if updated == nil {
		return r.FindByID(ctx, id)
	}
	return updated, nil
}

func (r *UserRepository) RemoveFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error) {
	if len(features) == 0 {
		query := `
			UPDATE users
			SET features = '{}',
				updated_at = (now() at time zone 'utc')
			WHERE id = $1
			RETURNING ` + userColumns

		cleared, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, userNotFound("id")
			}
			return nil, translateError(err, "INFRA:USER:REMOVE_FEATURES")
		}
		return cleared, nil
	}

	query := `
		UPDATE users
		SET features = array_remove(features, $2),
			updated_at = (now() at time zone 'utc')
		WHERE id = $1
		RETURNING ` + userColumns

	var updated *domain.User
	for _, feature := range features {
		u, err := r.scanUser(r.pool.QueryRow(ctx, query, id, feature))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, userNotFound("id")
			}
			return nil, translateError(err, "INFRA:USER:REMOVE_FEATURES")
		}
		updated = u
	}
	return updated, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any, key string) (*domain.User, error) {
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound(key)
		}
		return nil, translateError(err, "INFRA:USER:FIND")
	}
	return user, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Tag, &u.Username, &u.Email, &u.PasswordHash,
		&u.Features, &u.Description, &u.Picture, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func userNotFound(key string) error {
	return domain.NotFoundError(
		"The requested user was not found.",
		`Check that the "`+key+`" is correct.`,
	).WithLocation("INFRA:USER:FIND:NOT_FOUND").WithKey(key)
}
