package config

// Config is the process-wide configuration, loaded once at startup and
// treated as immutable afterwards.
type Config interface {
	EnvConfig
	OAuthConfig
}

// EnvConfig exposes general environment settings.
type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDatabaseURL() string
}

// OAuthConfig exposes the statically configured OAuth provider credentials.
type OAuthConfig interface {
	GetOAuthRedirectBase() string
	GetDiscordClientID() string
	GetDiscordClientSecret() string
	GetGithubClientID() string
	GetGithubClientSecret() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
}

type mainConfig struct {
	EnvVars
	OAuth
}

func New() Config {
	return mainConfig{}
}
