package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// Postgres error codes the repositories translate into the domain taxonomy.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
)

// translateError maps storage errors into domain errors so raw driver errors
// never leak past this package. Unique-constraint and serialization failures
// become retryable conflicts: they are the integrity backstop for races the
// transaction isolation did not serialize.
func translateError(err error, location string) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ConflictError(
				"The record already exists.",
				"Retry the operation.",
			).WithLocation(location).WithKey(pgErr.ConstraintName).AsRetryable()
		case codeSerializationFailure:
			return domain.ConflictError(
				"The operation conflicted with a concurrent one.",
				"Retry the operation.",
			).WithLocation(location).AsRetryable()
		}
	}

	return domain.InternalError(err).WithLocation(location)
}
