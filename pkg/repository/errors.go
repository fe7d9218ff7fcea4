package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode = "23505"
	pgForeignKeyCode   = "23503"
	pgCheckCode        = "23514"
)

// ErrInvariantViolation reports a persisted state that contradicts the data model:
// an orphaned reference, a constraint the application should never have produced,
// or a derived value that disagrees with its inputs. It is never recoverable.
var ErrInvariantViolation = errors.New("invariant violation")

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr, PostgreSQL unique violation (23505)
// to duplicateErr, and foreign key (23503) or check (23514) violations to
// ErrInvariantViolation. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgForeignKeyCode, pgCheckCode:
			return fmt.Errorf("%w: %s", ErrInvariantViolation, pgErr.ConstraintName)
		}
	}

	return err
}
