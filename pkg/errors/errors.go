// Package errors carries machine-readable codes on datamapper errors.
//
// Every failure that crosses a package boundary is an [*Error] with a [Code].
// Codes group into categories that callers branch on:
//
//	INVALID_*          bad input; the caller should fix the request
//	*NOT_FOUND         a root, port or file does not exist
//	MUTATION_*         an edit was rejected; the snapshot is unchanged
//	STORE_ERROR        a backend failed; retrying may help
//	everything else    a bug or an unsupported operation
//
// The CLI prints [UserMessage]; the HTTP server maps [Category] to a status.
//
//	if errors.IsConflict(err) {
//	    // keep the previous graph
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidRoot     Code = "INVALID_ROOT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeRootNotFound Code = "ROOT_NOT_FOUND"

	// Reported per node while building a graph; never fatal to the build.
	ErrCodeSchemaResolution Code = "SCHEMA_RESOLUTION"
	ErrCodeGraphBuild       Code = "GRAPH_BUILD"

	ErrCodeMutationConflict Code = "MUTATION_CONFLICT"
	ErrCodeMutationInFlight Code = "MUTATION_IN_FLIGHT"

	ErrCodeStore       Code = "STORE_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category is the coarse class of a [Code].
type Category int

const (
	CategoryInternal Category = iota
	CategoryInvalid
	CategoryNotFound
	CategoryConflict
	CategoryUnavailable
	CategoryUnsupported
)

// Category classifies c. Unknown and empty codes are internal.
func (c Code) Category() Category {
	switch {
	case strings.HasPrefix(string(c), "INVALID_"):
		return CategoryInvalid
	case strings.HasSuffix(string(c), "NOT_FOUND"):
		return CategoryNotFound
	case strings.HasPrefix(string(c), "MUTATION_"):
		return CategoryConflict
	case c == ErrCodeStore:
		return CategoryUnavailable
	case c == ErrCodeUnsupported:
		return CategoryUnsupported
	}
	return CategoryInternal
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code that keeps cause in the chain.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Conflict returns a MUTATION_CONFLICT error. A conflicting edit changes nothing.
func Conflict(format string, args ...any) *Error {
	return New(ErrCodeMutationConflict, format, args...)
}

// GetCode returns the code of the outermost [*Error] in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsConflict reports whether err is a MUTATION_CONFLICT.
func IsConflict(err error) bool { return Is(err, ErrCodeMutationConflict) }

// Retryable reports whether err is a backend failure worth retrying.
func Retryable(err error) bool {
	return GetCode(err).Category() == CategoryUnavailable
}

// UserMessage returns the message without code or cause, for display.
// Errors without a code are returned as is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
