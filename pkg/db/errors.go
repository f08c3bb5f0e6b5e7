package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure from
// Postgres or sqlite. When constraintName is provided the constraint must match.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesViolation(err, pgUniqueViolation, "UNIQUE constraint failed", "duplicate key value", constraintName)
}

// IsForeignKeyViolation reports whether err is a foreign key failure.
func IsForeignKeyViolation(err error) bool {
	return matchesViolation(err, pgForeignKeyViolation, "FOREIGN KEY constraint failed", "violates foreign key constraint", "")
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	return matchesViolation(err, pgCheckViolation, "CHECK constraint failed", "violates check constraint", "")
}

func matchesViolation(err error, pgCode, sqliteText, pgText, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgCode {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	msg := err.Error()
	if !strings.Contains(msg, sqliteText) && !strings.Contains(msg, pgText) {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}
