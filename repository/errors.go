package repository

import (
	"database/sql"
	"database/sql/driver"
	"strings"

	"github.com/goliatone/go-errors"
)

// NewRecordNotFound builds the error returned when a lookup matches nothing.
func NewRecordNotFound() *errors.Error {
	return errors.New("record not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode("RECORD_NOT_FOUND")
}

// IsRecordNotFound reports whether err is a record-not-found error.
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}

	if errors.IsNotFound(err) {
		return true
	}

	return errors.Is(err, sql.ErrNoRows)
}

// WrapStoreError classifies a storage fault into a persistence error. The
// message always carries the driver's original text so callers never lose
// the underlying cause, but conflicts, validation failures, and store
// unavailability surface as distinct categories.
func WrapStoreError(err error, msg string) error {
	if err == nil {
		return nil
	}

	return errors.Wrap(err, classify(err), msg+": "+err.Error()).
		WithTextCode("PERSISTENCE_ERROR")
}

func classify(err error) errors.Category {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.CategoryNotFound
	}

	if errors.Is(err, driver.ErrBadConn) {
		return errors.CategoryOperation
	}

	text := strings.ToLower(err.Error())

	switch {
	case strings.Contains(text, "unique constraint") ||
		strings.Contains(text, "duplicate key") ||
		strings.Contains(text, "unique violation"):
		return errors.CategoryConflict
	case strings.Contains(text, "check constraint") ||
		strings.Contains(text, "not null constraint") ||
		strings.Contains(text, "foreign key constraint"):
		return errors.CategoryValidation
	case strings.Contains(text, "connection refused") ||
		strings.Contains(text, "connection reset") ||
		strings.Contains(text, "database is locked"):
		return errors.CategoryOperation
	default:
		return errors.CategoryInternal
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
