package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgCode returns the SQLSTATE of a server error, or "" for anything else
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique index violation, such as a sibling name
// or version number already taken by a concurrent writer
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

// IsPgNoRowsError reports a single-row query that matched nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a reference to a parent row that no longer exists
func IsPgForeignKeyError(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}

// IsPgInvalidTextError reports malformed input such as a non-UUID id
func IsPgInvalidTextError(err error) bool {
	return pgCode(err) == pgerrcode.InvalidTextRepresentation
}
