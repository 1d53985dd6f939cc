package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// CodeNotFound marks a StoreError raised for a missing record.
const CodeNotFound = "NOT_FOUND"

// CodeTimeout marks a StoreError raised when the store did not answer in time.
const CodeTimeout = "TIMEOUT"

// StoreError is the store's rejection of a read or write. Its fields are
// surfaced verbatim to callers.
type StoreError struct {
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"-"`
}

func (e *StoreError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotFound reports whether the store rejected the call because the record is missing.
func (e *StoreError) NotFound() bool { return e.Code == CodeNotFound }

// IsNotFound reports whether err carries a not-found StoreError.
func IsNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.NotFound()
}

func notFoundError(what string, id any) *StoreError {
	return &StoreError{
		Message: fmt.Sprintf("%s with ID %v not found", what, id),
		Code:    CodeNotFound,
	}
}

// translateError converts driver errors into a StoreError. Postgres errors
// keep their message, detail, hint and SQLSTATE code.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &StoreError{
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Code:    pgErr.Code,
			Err:     err,
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StoreError{Message: fmt.Sprintf("failed to %s: record not found", op), Code: CodeNotFound, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &StoreError{Message: fmt.Sprintf("failed to %s: store timed out", op), Code: CodeTimeout, Err: err}
	}
	return &StoreError{Message: fmt.Sprintf("failed to %s: %v", op, err), Err: err}
}
