package book

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the machine-checkable discriminant of an Error.
type Kind string

const (
	KindInvalidPayload      Kind = "INVALID_PAYLOAD"
	KindInvalidField        Kind = "INVALID_FIELD"
	KindInvalidFilterFormat Kind = "INVALID_FILTER_FORMAT"
	KindInvalidID           Kind = "INVALID_ID"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindFilter              Kind = "FILTER_ERROR"
	KindStorage             Kind = "STORAGE_FAILURE"
)

// Error is returned by every operation of this package.
type Error struct {
	Kind    Kind
	Field   string // set for INVALID_FIELD and VALIDATION_ERROR
	Op      string // operation name, set for STORAGE_FAILURE
	ID      string // target identifier, if any
	Message string // human readable
	Err     error
}

var (
	// ErrNotFound is returned when no book matches an identifier.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "Book not found"}
	// ErrInvalidID is returned for identifiers the storage engine could never produce.
	ErrInvalidID = &Error{Kind: KindInvalidID, Message: "Invalid book ID format"}
	// ErrInvalidPayload is returned when a candidate record is not an object.
	ErrInvalidPayload = &Error{Kind: KindInvalidPayload, Message: "Request body must be a JSON object"}
	// ErrInvalidFilterFormat is returned when filters cannot be decoded.
	ErrInvalidFilterFormat = &Error{Kind: KindInvalidFilterFormat, Message: "Invalid filter format"}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " id=%s", e.ID)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	var inner *Error
	if e.Err != nil && !(errors.As(e.Err, &inner) && inner.Message == e.Message) {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for a NOT_FOUND carrying an id.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or ""
// when err is not one of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidField(field, message string) *Error {
	return &Error{Kind: KindInvalidField, Field: field, Message: message}
}

func invalidFilter(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidFilterFormat, Message: fmt.Sprintf(format, args...)}
}

func notFound(id string) *Error {
	return &Error{Kind: KindNotFound, ID: id, Message: ErrNotFound.Message}
}

func invalidID(id string) *Error {
	return &Error{Kind: KindInvalidID, ID: id, Message: ErrInvalidID.Message}
}

func storageFailure(op, id string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, ID: id, Err: err}
}
