package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsDuplicateKeyErr reports unique constraint violations across the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, pgUniqueViolation) {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"): // postgres 23505
		return true
	case strings.Contains(msg, "Error 1062"): // mysql
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"): // sqlite
		return true
	}
	return false
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
