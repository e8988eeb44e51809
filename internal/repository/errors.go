// Package repository holds the MySQL stores and the sentinel errors every
// store implementation (including the in-memory one) returns. Services
// translate these into their own error kinds.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a unique key. Callers on
// find-or-create paths treat it as "someone else won" and re-read.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when a compare-and-set update finds the row in
// a different state than expected.
var ErrConflict = errors.New("conflict")

const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
