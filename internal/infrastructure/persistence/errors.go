package persistence

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique constraint violations
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether the error is a unique constraint
// violation. It recognizes GORM's translated error, raw pq driver errors and
// the SQLSTATE embedded in pgx error strings.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "SQLSTATE "+uniqueViolationCode)
}
