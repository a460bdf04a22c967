package config

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetOAuthRedirectBase returns the base URL that provider callbacks are
// registered against. The per-provider redirect URI is this base plus the
// provider identifier as the final path segment.
func (OAuth) GetOAuthRedirectBase() string {
	return GetEnv("OAUTH_REDIRECT_URL_BASE", "http://localhost:8080/api/oauth")
}

func (OAuth) GetDiscordClientID() string {
	return GetEnv("DISCORD_CLIENT_ID", "")
}

func (OAuth) GetDiscordClientSecret() string {
	return GetEnv("DISCORD_CLIENT_SECRET", "")
}

func (OAuth) GetGithubClientID() string {
	return GetEnv("GITHUB_CLIENT_ID", "")
}

func (OAuth) GetGithubClientSecret() string {
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func (OAuth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (OAuth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}
