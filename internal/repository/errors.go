// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios.  For
// example, ErrDuplicate signals that an insert or update collided with a
// unique key (a room name or slug, a building name, a username), while the
// per-entity ErrXNotFound values mean the addressed row does not exist.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate is returned when a write violates a unique constraint.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate entry")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}
