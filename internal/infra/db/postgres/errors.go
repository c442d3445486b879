package postgres

import (
	"errors"

	"github.com/jackc/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgErrorCode(err) == pgUniqueViolation }

func isForeignKeyViolation(err error) bool { return pgErrorCode(err) == pgForeignKeyViolation }
