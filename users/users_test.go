package users_test

import (
	"testing"

	"github.com/accessregistry/go-registry-auth/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "Pa55w!rd"},
		{name: "too short", password: "P1!a", wantErr: "at least 6 characters"},
		{name: "missing number", password: "Password!", wantErr: "one number"},
		{name: "missing uppercase", password: "pa55word!", wantErr: "one uppercase"},
		{name: "missing special", password: "Pa55word", wantErr: "one special"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tc.password)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	require.NoError(t, users.ValidateUsername("field_worker42"))
	require.Error(t, users.ValidateUsername("ab"))
	require.Error(t, users.ValidateUsername("no spaces"))
	require.Error(t, users.ValidateUsername("bad-dash"))
}

func TestHasPassword(t *testing.T) {
	password := &users.User{PasswordHash: "hash", Salt: "salt"}
	require.True(t, password.HasPassword())

	oauthOnly := &users.User{}
	require.False(t, oauthOnly.HasPassword())

	// hash without salt breaks the invariant and must not count as a
	// password account
	broken := &users.User{PasswordHash: "hash"}
	require.False(t, broken.HasPassword())
}
