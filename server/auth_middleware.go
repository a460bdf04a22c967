package server

import (
	"context"
	"net/http"

	"github.com/accessregistry/go-registry-auth/cookies"
	"github.com/accessregistry/go-registry-auth/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the resolved session for the request
const ContextKeySession ContextKey = "session"

// SessionFromContext returns the session injected by RequireSession.
func SessionFromContext(ctx context.Context) (sessions.UserSession, bool) {
	session, ok := ctx.Value(ContextKeySession).(sessions.UserSession)
	return session, ok
}

// RequireSession resolves the session cookie, rejects requests without a
// live session and slides the session expiry forward on each authorized
// request.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			jar := cookies.NewHTTPCookies(w, r)

			session, err := s.auth.Sessions().Resolve(r.Context(), jar)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if session == nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
				return
			}

			if err := s.auth.Sessions().RenewExpiration(r.Context(), jar); err != nil {
				log.Err(err).Msg("session renewal failed")
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, *session)
			next(w, r.WithContext(ctx))
		}
	}
}
