package chat

import (
	"errors"

	"github.com/guilhermegouw/socchat/internal/session"
)

// Kind classifies a chat failure.
type Kind uint8

// Error kinds.
const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindGeneration
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindGeneration:
		return "generation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Validation failures.
var (
	ErrEmptyMessage     = errors.New("message is required")
	ErrInvalidMaxTokens = errors.New("maxTokens must be positive")
	ErrEmptyTitle       = errors.New("title is required")
)

// Error is returned by every Service operation.
type Error struct {
	Err  error
	Op   string
	Kind Kind
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a chat Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or zero if err is not a chat Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalid(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func generationFailed(op string, err error) error {
	return &Error{Kind: KindGeneration, Op: op, Err: err}
}

// storeFailed classifies a store error, mapping session.ErrNotFound to
// KindNotFound.
func storeFailed(op string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindStorage, Op: op, Err: err}
}
