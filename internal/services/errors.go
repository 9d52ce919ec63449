package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotHost            = errors.New("you are not the host!")
	ErrDeadlinePassed     = errors.New("the last date to join this event has passed")
	ErrEventFull          = errors.New("this event is full")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("User already exists with that email")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidID          = errors.New("invalid id format")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and include upper and lower case letters, a number and a special character")
)

// ValidationError is returned when caller-supplied data is rejected before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// validationError flattens validator errors into one readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid("Data Invalid: %v", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return invalid("Data Invalid: %s", strings.Join(parts, "; "))
}
