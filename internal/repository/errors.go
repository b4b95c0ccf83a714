package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/errors"
)

const uniqueViolation = "23505"

// wrapPG translates pgx errors into the errors taxonomy used by services.
func wrapPG(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.NewNotFound(err, what+" not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.NewAlreadyExists(err, what+" already exists")
	}
	return errors.Annotate(err, what)
}
