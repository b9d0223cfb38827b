package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by update operations that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a foreign key does not resolve.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidTransition is returned when a document is not in the expected status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStoryLimitReached is returned when a free user has used all of their stories.
	ErrStoryLimitReached = errors.New("story_limit_reached")
)

const (
	pgForeignKeyViolation = "23503"
	pgUndefinedTable      = "42P01"
)

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return errors.Join(ErrInvalidReference, err)
	}
	return err
}

// IsUndefinedTable reports whether err is a missing-relation error.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// isUUID guards lookups against uuid columns so malformed ids read as "no row".
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
