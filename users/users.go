package users

import (
	"fmt"
	"time"
	"unicode"
)

// Role is the closed set of registry roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// OAuthAccount links a user to a federated identity. A user may carry one
// link per provider.
type OAuthAccount struct {
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"provider_account_id"`
	UserID            string    `json:"user_id"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

type User struct {
	ID       string `json:"id,omitempty"`       // Unique identifier for the user
	Email    string `json:"email,omitempty"`    // Unique, case-insensitive identity key
	Name     string `json:"name,omitempty"`     // Display name
	Username string `json:"username,omitempty"` // Unique username

	// PasswordHash and Salt are set together for password accounts and
	// both empty for OAuth-only accounts - never serialized.
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`

	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// HasPassword reports whether this account can be signed into with a
// password. Hash and salt are set together or not at all.
func (u *User) HasPassword() bool {
	return u.PasswordHash != "" && u.Salt != ""
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 6 characters long
// - Contains an uppercase letter, a number and a special character
func ValidatePasswordStrength(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	var (
		hasUpper   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		} else if !unicode.IsLower(char) {
			hasSpecial = true
		}
	}

	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}

// ValidateUsername checks that username is at least 3 characters of
// letters, digits or underscores.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	for _, char := range username {
		if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
			return fmt.Errorf("username must be alphanumeric and can include underscores")
		}
	}
	return nil
}
