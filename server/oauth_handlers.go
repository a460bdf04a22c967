package server

import (
	"net/http"

	"github.com/accessregistry/go-registry-auth/cookies"
	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type oauthBeginResponse struct {
	AuthURL string `json:"authUrl"`
}

// OAuthBeginHandler starts the handshake for the provider named in the
// path: it sets the state and code-verifier cookies and returns the
// provider authorization URL for the client to navigate to.
func (s *Server) OAuthBeginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")

		authURL, err := s.auth.BeginOAuth(r.Context(), provider, cookies.NewHTTPCookies(w, r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Debug().Str("provider", provider).Msg("oauth handshake started")
		writeJSON(w, http.StatusOK, oauthBeginResponse{AuthURL: authURL})
	}
}

// OAuthCallbackHandler finishes the handshake when the provider redirects
// back. Success lands the signed-in user on the home page; any failure
// sends them to the sign-in page with a generic error, details stay in
// the log.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")
		query := r.URL.Query()
		code := query.Get("code")
		state := query.Get("state")

		if code == "" || state == "" {
			s.redirectWithError(w, r, provider, errors.Wrap(apperrors.ErrInvalidParameters, "[OAuthCallbackHandler] missing code or state"))
			return
		}

		user, err := s.auth.CompleteOAuth(r.Context(), provider, code, state, cookies.NewHTTPCookies(w, r))
		if err != nil {
			s.redirectWithError(w, r, provider, err)
			return
		}

		log.Info().Str("provider", provider).Str("userID", user.ID).Msg("oauth sign-in completed")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, provider string, err error) {
	log.Err(err).Str("provider", provider).Msg("oauth callback failed")
	http.Redirect(w, r, "/sign-in?oauthError=Failed+to+sign+in", http.StatusFound)
}
