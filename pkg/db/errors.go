package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports a unique-constraint failure. A non-empty
// constraint narrows the match to that index. Postgres errors are matched by
// SQLSTATE; sqlite (tests) by message text.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if pg := pkgerrors.PostgresDetail(err); pg != nil {
		return pg.Code == pgUniqueViolation && (constraint == "" || pg.Constraint == constraint)
	}
	msg := err.Error()
	if constraint != "" {
		return strings.Contains(msg, constraint)
	}
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
