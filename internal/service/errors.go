package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/fridge-share/internal/repository"
)

// Kind classifies a failure for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindExpired
	KindConflict
	// KindIntegrity marks broken references between stored records. These
	// are reported as server errors and logged with full context.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	}
	return "internal"
}

// Error is the error type every service operation returns for expected
// failures. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func wrapErr(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Message: msg, Err: err} }

// internal wraps an unexpected store failure.
func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

func isNotFound(err error) bool  { return errors.Is(err, repository.ErrNotFound) }
func isDuplicate(err error) bool { return errors.Is(err, repository.ErrDuplicate) }
func isConflict(err error) bool  { return errors.Is(err, repository.ErrConflict) }

// Named failures shared across operations.
var (
	ErrDuplicateEmail     = newErr(KindConflict, "Email already registered. Please sign in instead.")
	ErrInvalidToken       = newErr(KindValidation, "Invalid or expired token")
	ErrInvalidCredentials = newErr(KindUnauthenticated, "Invalid email or password")
	ErrEmailNotVerified   = newErr(KindForbidden, "Please verify your email before signing in")
	ErrInviteNotFound     = newErr(KindNotFound, "Invite not found")
	ErrInviteExpired      = newErr(KindExpired, "Invite has expired")
	ErrFridgeNameMissing  = newErr(KindValidation, "fridgeName is required when creating a shared fridge")
	ErrNotMember          = newErr(KindForbidden, "You are not a member of this fridge")
)
