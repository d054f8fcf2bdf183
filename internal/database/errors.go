package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced record has no backing row.
// Callers must treat it explicitly; a missing record is never silently
// replaced with a fresh one.
var ErrNotFound = errors.New("database: record not found")

// notFound maps sql.ErrNoRows onto the package sentinel, keeping the
// underlying error wrapped for everything else.
func notFound(err error, what string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(what, args...), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(what, args...), err)
}
