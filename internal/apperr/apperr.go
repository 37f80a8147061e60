// Package apperr defines the error kinds recovered at the handler boundary.
package apperr

import "errors"

// Kind classifies a user-visible failure.
type Kind int

const (
	// KindUnknown marks errors that carry no kind; they surface as 500s.
	KindUnknown Kind = iota
	// KindValidation is bad registration or request input.
	KindValidation
	// KindDuplicateUsername is a storage-level uniqueness violation.
	KindDuplicateUsername
	// KindAuth is a credential mismatch or unknown user.
	KindAuth
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is a tagged error carrying an explicit kind and a user-visible message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E constructs a tagged error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the kind from err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
