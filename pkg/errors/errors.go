package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password;
// login responses never distinguish the two.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AppError wraps caller-fixable failures with a stable machine-readable code.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
