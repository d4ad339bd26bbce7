// Package apperror defines the closed error taxonomy surfaced to storefront
// callers. Every Error is logged once, when it is created.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an Error.
type Kind int

const (
	// KindUnknown is the fallback for failures that fit no other kind.
	KindUnknown Kind = iota
	// KindAPI covers network failures and non-2xx backend responses.
	KindAPI
	// KindGraphQL covers responses carrying GraphQL errors or no data.
	KindGraphQL
	// KindNotFound means the backend answered but the entity is absent.
	KindNotFound
	// KindParse covers response bodies that could not be decoded.
	KindParse
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindGraphQL:
		return "graphql"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Title returns the human-readable heading for the kind.
func (k Kind) Title() string {
	switch k {
	case KindAPI:
		return "API Error"
	case KindGraphQL:
		return "GraphQL Error"
	case KindNotFound:
		return "Not Found"
	case KindParse:
		return "Parse Error"
	default:
		return "Unknown Error"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "api":
		*k = KindAPI
	case "graphql":
		*k = KindGraphQL
	case "not_found":
		*k = KindNotFound
	case "parse":
		*k = KindParse
	case "unknown":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown error kind %q", b)
	}
	return nil
}

// Error is a classified, user-presentable failure.
type Error struct {
	ID        uuid.UUID
	Timestamp time.Time
	Kind      Kind
	// PublicMessage is safe to show to an end user.
	PublicMessage string
	// InternalMessage carries diagnostic detail for logs.
	InternalMessage string
	Cause           error
}

// New creates an Error and logs it through slog.Default().
func New(kind Kind, publicMessage, internalMessage string, cause error) *Error {
	e := &Error{
		ID:              uuid.New(),
		Timestamp:       time.Now().UTC(),
		Kind:            kind,
		PublicMessage:   publicMessage,
		InternalMessage: internalMessage,
		Cause:           cause,
	}
	e.log(slog.Default())
	return e
}

func (e *Error) log(logger *slog.Logger) {
	attrs := []slog.Attr{
		slog.String("error_id", e.ID.String()),
		slog.Time("timestamp", e.Timestamp),
		slog.String("kind", e.Kind.String()),
		slog.String("public_message", e.PublicMessage),
		slog.String("internal_message", e.InternalMessage),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelError, e.Kind.Title(), attrs...)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.InternalMessage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind.Title(), e.PublicMessage, e.InternalMessage)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Title(), e.PublicMessage)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, apperror.NotFound) works without comparing IDs.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.ID == uuid.Nil && t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind. They are never returned.
var (
	API      = &Error{Kind: KindAPI}
	GraphQL  = &Error{Kind: KindGraphQL}
	NotFound = &Error{Kind: KindNotFound}
	Parse    = &Error{Kind: KindParse}
	Unknown  = &Error{Kind: KindUnknown}
)

// Classifier is implemented by infrastructure errors that know their kind.
type Classifier interface {
	ErrorKind() Kind
}

// Classify returns the kind of the first *Error or Classifier in err's chain.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var c Classifier
	if errors.As(err, &c) {
		return c.ErrorKind()
	}
	return KindUnknown
}

// Wrap converts err into an *Error, keeping the kind reported by Classify.
// An err that already is an *Error is returned unchanged.
func Wrap(err error, publicMessage, internalMessage string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(Classify(err), publicMessage, internalMessage, err)
}

// IsNotFound reports whether err is a NotFound Error.
func IsNotFound(err error) bool {
	return errors.Is(err, NotFound)
}
