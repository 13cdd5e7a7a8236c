// Package errors classifies errors reported by PostgreSQL.
package errors

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

func code(err error) (string, bool) {
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return "", false
	}
	return pgerr.Code, true
}

// IsUniqueViolation reports err is caused by an unique constraint.
func IsUniqueViolation(err error) bool {
	c, ok := code(err)
	return ok && c == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports err is caused by a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	c, ok := code(err)
	return ok && c == pgerrcode.ForeignKeyViolation
}
