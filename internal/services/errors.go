package services

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("user already exists")
)

// ValidationError carries the message shown to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a *ValidationError with the given message.
func IsValidation(err error, msg string) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Message == msg
}
