package domain

import "errors"

// Error kinds. Every error surfaced to a caller unwraps to one of these, which
// the HTTP layer maps to a status code.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain failure with a message that is safe to show to clients.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the sentinel this error belongs to.
func (e *Error) Kind() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Validation builds an ErrValidation error with a custom message.
func Validation(msg string) error { return newError(ErrValidation, msg) }

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
	ErrNotAuthenticated   = newError(ErrUnauthorized, "not authenticated")
	ErrAdminOnly          = newError(ErrForbidden, "admin can access this resource")
	ErrClientOnly         = newError(ErrForbidden, "only clients can request access")

	ErrUserNotFound    = newError(ErrNotFound, "user not found")
	ErrProjectNotFound = newError(ErrNotFound, "project not found")
	ErrRequestNotFound = newError(ErrNotFound, "request not found")
	ErrSessionNotFound = newError(ErrNotFound, "session not found")

	ErrUsernameTaken = newError(ErrConflict, "username already exists")

	ErrMissingCredentials = newError(ErrValidation, "username and password are required")
	ErrInvalidRole        = newError(ErrValidation, "role must be Admin or Client")
	ErrInvalidDecision    = newError(ErrValidation, "invalid status")
	ErrPhoneTooLong       = newError(ErrValidation, "phone must be max 10 digits")
	ErrSelfDelete         = newError(ErrValidation, "admins cannot delete their own account")
)
