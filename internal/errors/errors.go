package errors

import (
	"errors"
	"fmt"
)

// Common error kinds for the registry auth core
var (
	// Authentication errors. ErrInvalidCredentials deliberately covers
	// unknown email, password-less account and wrong password so that
	// callers cannot tell the cases apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("account already exists for this email")

	// Validation errors
	ErrInvalidParameters = errors.New("invalid parameters")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
