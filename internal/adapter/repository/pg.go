package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eslsoft/drillnet/internal/entity"
)

// translatePgError maps driver errors to entity errors where a domain meaning
// exists, wrapping everything else with the failed operation.
func translatePgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			// Duplicate history rows are harmless: the content hash already
			// captured an identical exercise.
			return nil
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ErrExerciseNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
