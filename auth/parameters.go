package auth

import (
	"net/mail"
	"strings"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/pkg/errors"
)

// SignInParams carries the credentials presented on a password sign-in.
type SignInParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpParams carries the fields required to register a password account.
type SignUpParams struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the sign-in parameters without touching any store.
// Failures surface as ErrInvalidParameters so handlers can map them to a
// 400 without leaking which field was wrong.
func (p *SignInParams) Validate() error {
	p.Email = normalizeEmail(p.Email)
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return errors.Wrap(apperrors.ErrInvalidParameters, "[SignInParams.Validate] email")
	}
	if p.Password == "" {
		return errors.Wrap(apperrors.ErrInvalidParameters, "[SignInParams.Validate] password is required")
	}
	return nil
}

// Validate checks the sign-up parameters, including password strength and
// username shape.
func (p *SignUpParams) Validate() error {
	p.Email = normalizeEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)

	if len(p.Name) < 3 {
		return errors.Wrap(apperrors.ErrInvalidParameters, "[SignUpParams.Validate] name must be at least 3 characters long")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return errors.Wrap(apperrors.ErrInvalidParameters, "[SignUpParams.Validate] email")
	}
	if err := users.ValidateUsername(p.Username); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidParameters, "[SignUpParams.Validate] %v", err)
	}
	if err := users.ValidatePasswordStrength(p.Password); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidParameters, "[SignUpParams.Validate] %v", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
