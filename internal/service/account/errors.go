package account

import (
	"errors"
	"fmt"
)

// Kind classifies service failures. The HTTP layer maps each kind to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidCredentials
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a client-safe Message; Err is the cause and is only logged.
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

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

const (
	MsgRoleNameRequired   = "Role name is required"
	MsgRoleExists         = "Role already exists"
	MsgCredentialsMissing = "Username and password are required"
	MsgUsernameTooLong    = "Username must be 25 characters or fewer"
	MsgPasswordTooLong    = "Password must be 50 characters or fewer"
	MsgHintTooLong        = "Hint must be 100 characters or fewer"
	MsgRoleIDInvalid      = "Role id must be a valid UUID"
	MsgRoleUnknown        = "Role does not exist"
	MsgUsernameTaken      = "Username already exists"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidToken       = "Invalid or expired token"
	MsgUserNotFound       = "User not found"
)
