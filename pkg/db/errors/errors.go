// Package errors has error types shared by database backends.
//
// Each type unwraps to a sentinel in pkg/db, so callers test them with errors.Is.
package errors

import (
	"fmt"

	kdb "github.com/opst/contactbook/pkg/db"
)

// requested data is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return kdb.ErrMissing
}

// the change violates uniqueness.
type Conflict struct {
	Table    string
	Identity string
	Cause    error
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	if c.Cause == nil {
		return fmt.Sprintf("%s conflicts in %s", c.Identity, c.Table)
	}
	return fmt.Sprintf("%s conflicts in %s: %s", c.Identity, c.Table, c.Cause)
}

func (c Conflict) Unwrap() []error {
	if c.Cause == nil {
		return []error{kdb.ErrConflict}
	}
	return []error{kdb.ErrConflict, c.Cause}
}
