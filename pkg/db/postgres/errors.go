package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"
	codeLockNotAvailable    = "55P03"
	codeInvalidTextRepr     = "22P02"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func IsUniqueViolation(err error) bool { return hasCode(err, codeUniqueViolation) }

func IsForeignKeyViolation(err error) bool { return hasCode(err, codeForeignKeyViolation) }

// IsExclusionViolation reports a row rejected by an EXCLUDE constraint,
// which is how overlapping bookings surface from the database.
func IsExclusionViolation(err error) bool { return hasCode(err, codeExclusionViolation) }

func IsLockNotAvailable(err error) bool { return hasCode(err, codeLockNotAvailable) }

// IsInvalidText reports malformed literals such as a bad uuid.
func IsInvalidText(err error) bool { return hasCode(err, codeInvalidTextRepr) }
