package edpak

import (
	"errors"
	"strings"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
)

// Kind classifies importer failures. Everything up to KindManifestValidation is
// detected before the first write, so it is safe to surface verbatim.
type Kind string

const (
	KindFetch              Kind = "fetch_error"
	KindEmptyArchive       Kind = "empty_archive"
	KindInvalidArchive     Kind = "invalid_archive"
	KindManifestParse      Kind = "manifest_parse_error"
	KindManifestValidation Kind = "manifest_invalid"
	KindPersistence        Kind = "persistence_error"
	KindLogPersistence     Kind = "log_persistence_error"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Msg)
	switch {
	case msg != "" && e.Err != nil:
		return msg + ": " + e.Err.Error()
	case msg != "":
		return msg
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidArchive) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrFetch              = &Error{Kind: KindFetch}
	ErrEmptyArchive       = &Error{Kind: KindEmptyArchive}
	ErrInvalidArchive     = &Error{Kind: KindInvalidArchive}
	ErrManifestParse      = &Error{Kind: KindManifestParse}
	ErrManifestValidation = &Error{Kind: KindManifestValidation}
	ErrPersistence        = &Error{Kind: KindPersistence}
	ErrLogPersistence     = &Error{Kind: KindLogPersistence}
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// StoreError wraps a repository failure, tagging it with the store code.
func StoreError(op string, err error) *Error {
	return newError(KindPersistence, op, aggregates.MapError(op, err))
}

// IsRetryableStore reports whether a persistence failure was transient.
func IsRetryableStore(err error) bool {
	return KindOf(err) == KindPersistence && aggregates.CodeOf(err) == aggregates.CodeRetryable
}

// IsConflictStore reports whether a persistence failure hit a uniqueness constraint.
func IsConflictStore(err error) bool {
	return KindOf(err) == KindPersistence && aggregates.CodeOf(err) == aggregates.CodeConflict
}

// KindOf returns the importer kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsSideEffectFree reports whether err was raised before any persistent write.
func IsSideEffectFree(err error) bool {
	switch KindOf(err) {
	case KindFetch, KindEmptyArchive, KindInvalidArchive, KindManifestParse, KindManifestValidation:
		return true
	default:
		return false
	}
}
