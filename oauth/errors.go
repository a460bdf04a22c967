package oauth

import "errors"

var (
	// ErrInvalidState is a tripped CSRF defense: the state echoed by the
	// provider does not match the one bound to this browser. Fail closed,
	// never recover.
	ErrInvalidState = errors.New("invalid state - the state parameter does not match the expected value")

	// ErrInvalidCodeVerifier means the PKCE verifier cookie is missing or
	// expired; the handshake cannot be completed and must be restarted.
	ErrInvalidCodeVerifier = errors.New("invalid code verifier - no code verifier stored for this handshake")

	// ErrInvalidToken and ErrInvalidUser are schema failures on provider
	// responses, distinct from transport failures.
	ErrInvalidToken = errors.New("invalid token response")
	ErrInvalidUser  = errors.New("invalid user info response")

	// ErrNetwork covers transport errors talking to a provider: timeout,
	// DNS failure, non-2xx status.
	ErrNetwork = errors.New("provider request failed")

	ErrUnknownProvider = errors.New("unknown oauth provider")
)
