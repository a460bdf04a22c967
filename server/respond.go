package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/oauth"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps internal failures onto generic client-facing messages.
// The underlying error goes to the log, never to the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func classifyError(err error) (int, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidParameters):
		return http.StatusBadRequest, "invalid request parameters"
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case apperrors.Is(err, apperrors.ErrEmailTaken):
		return http.StatusConflict, "account already exists for this email"
	case apperrors.Is(err, oauth.ErrUnknownProvider):
		return http.StatusNotFound, "unknown provider"
	case apperrors.Is(err, oauth.ErrInvalidState),
		apperrors.Is(err, oauth.ErrInvalidCodeVerifier),
		apperrors.Is(err, oauth.ErrInvalidToken),
		apperrors.Is(err, oauth.ErrInvalidUser):
		return http.StatusUnauthorized, "unable to sign in with this provider"
	case apperrors.Is(err, oauth.ErrNetwork):
		return http.StatusBadGateway, "provider is unavailable, please try again later"
	default:
		return http.StatusInternalServerError, "something went wrong, please try again later"
	}
}
