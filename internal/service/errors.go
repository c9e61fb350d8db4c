package service

import "errors"

var (
	// ErrTaskNotFound covers both absent tasks and tasks owned by someone else.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidCredentials never says which of username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists never says which of username or email collided.
	ErrUserExists = errors.New("username or email already exists")
	// ErrUnauthenticated means the request carried no usable session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// ValidationError rejects user input before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
