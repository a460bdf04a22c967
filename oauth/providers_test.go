package oauth_test

import (
	"testing"

	"github.com/accessregistry/go-registry-auth/oauth"
	"github.com/stretchr/testify/require"
)

type stubOAuthConfig struct{}

func (stubOAuthConfig) GetOAuthRedirectBase() string  { return "https://registry.example.com/api/oauth" }
func (stubOAuthConfig) GetDiscordClientID() string    { return "discord-id" }
func (stubOAuthConfig) GetDiscordClientSecret() string { return "discord-secret" }
func (stubOAuthConfig) GetGithubClientID() string     { return "github-id" }
func (stubOAuthConfig) GetGithubClientSecret() string { return "github-secret" }
func (stubOAuthConfig) GetGoogleClientID() string     { return "google-id" }
func (stubOAuthConfig) GetGoogleClientSecret() string { return "google-secret" }

func TestParseProvider(t *testing.T) {
	for _, raw := range []string{"discord", "github", "google"} {
		provider, err := oauth.ParseProvider(raw)
		require.NoError(t, err)
		require.Equal(t, oauth.Provider(raw), provider)
	}

	_, err := oauth.ParseProvider("facebook")
	require.ErrorIs(t, err, oauth.ErrUnknownProvider)
	_, err = oauth.ParseProvider("")
	require.ErrorIs(t, err, oauth.ErrUnknownProvider)
}

func TestRegistryGet(t *testing.T) {
	registry := oauth.NewDefaultRegistry(stubOAuthConfig{})

	for _, provider := range []oauth.Provider{oauth.ProviderDiscord, oauth.ProviderGithub, oauth.ProviderGoogle} {
		client, err := registry.Get(provider)
		require.NoError(t, err)
		require.Equal(t, provider, client.Provider())
	}

	_, err := registry.Get(oauth.Provider("facebook"))
	require.ErrorIs(t, err, oauth.ErrUnknownProvider)
}

func TestParseGithubUser(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    oauth.Identity
		wantErr bool
	}{
		{
			name:    "full profile",
			payload: `{"id": 42, "login": "ghopper", "name": "Grace Hopper", "email": "grace@example.com"}`,
			want:    oauth.Identity{ID: "42", Email: "grace@example.com", Name: "Grace Hopper"},
		},
		{
			name:    "null name falls back to login",
			payload: `{"id": 42, "login": "ghopper", "name": null, "email": "grace@example.com"}`,
			want:    oauth.Identity{ID: "42", Email: "grace@example.com", Name: "ghopper"},
		},
		{
			name:    "missing id",
			payload: `{"login": "ghopper", "email": "grace@example.com"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `<!doctype html>`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := oauth.ParseGithubUserInfo([]byte(tc.payload))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, *identity)
		})
	}
}

func TestParseGoogleUser(t *testing.T) {
	identity, err := oauth.ParseGoogleUserInfo([]byte(
		`{"id": "g-1", "name": "Grace Hopper", "email": "grace@example.com", "verified_email": true, "picture": "https://lh3.example.com/p.png"}`))
	require.NoError(t, err)
	require.Equal(t, "g-1", identity.ID)
	require.Equal(t, "https://lh3.example.com/p.png", identity.Image)

	_, err = oauth.ParseGoogleUserInfo([]byte(`{"id": "g-1", "name": "Grace Hopper", "email": "grace@example.com"}`))
	require.Error(t, err, "verified_email is required")
}

func TestParseDiscordUser(t *testing.T) {
	identity, err := oauth.ParseDiscordUserInfo([]byte(
		`{"id": "d-1", "username": "ghopper", "global_name": "Grace", "email": "grace@example.com", "avatar": "abcd"}`))
	require.NoError(t, err)
	require.Equal(t, "Grace", identity.Name)
	require.Equal(t, "https://cdn.discordapp.com/avatars/d-1/abcd.png", identity.Image)

	identity, err = oauth.ParseDiscordUserInfo([]byte(
		`{"id": "d-1", "username": "ghopper", "global_name": null, "email": "grace@example.com", "avatar": null}`))
	require.NoError(t, err)
	require.Equal(t, "ghopper", identity.Name)
	require.Empty(t, identity.Image)

	_, err = oauth.ParseDiscordUserInfo([]byte(`{"username": "ghopper"}`))
	require.Error(t, err)
}
