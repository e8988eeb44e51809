package repository

import (
	"database/sql"
	"errors"
	"time"
)

// now stamps created_at/updated_at. Times are stored in UTC.
var now = func() time.Time { return time.Now().UTC() }

// readErr maps a lookup error onto the package sentinels.
func readErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// writeErr maps a unique-key violation onto ErrDuplicate.
func writeErr(err error) error {
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// affected returns ErrNotFound when res touched no row.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func count(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// null stores "" as SQL NULL so unique keys on optional columns allow
// any number of unset rows.
func null(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
