package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code standardizes store failure semantics so callers can pick a status
// without knowing which driver produced the error.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePreconditionFailed Code = "precondition_failed"
	CodeRetryable          Code = "retryable"
	CodeInternal           Code = "internal"
)

type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// MapError tags a store failure with a Code. Already-mapped errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var mapped *Error
	if errors.As(err, &mapped) {
		return err
	}
	return &Error{Code: classify(err), Op: strings.TrimSpace(op), Err: err}
}

// CodeOf extracts the store code when available.
func CodeOf(err error) Code {
	var mapped *Error
	if !errors.As(err, &mapped) {
		return ""
	}
	return mapped.Code
}

func classify(err error) Code {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return CodeConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return CodePreconditionFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return CodeConflict // unique_violation
		case "23503":
			return CodePreconditionFailed // foreign_key_violation
		case "40001", "40P01", "55P03", "57P01":
			return CodeRetryable
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return CodeConflict
	case strings.Contains(msg, "foreign key constraint failed"):
		return CodePreconditionFailed
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"):
		return CodeRetryable
	default:
		return CodeInternal
	}
}
