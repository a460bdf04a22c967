package server

import (
	"encoding/json"
	"net/http"

	"github.com/accessregistry/go-registry-auth/auth"
	"github.com/accessregistry/go-registry-auth/cookies"
	apperrors "github.com/accessregistry/go-registry-auth/internal/errors"
	"github.com/accessregistry/go-registry-auth/users"
	"github.com/pkg/errors"
)

type userResponse struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Role     users.Role `json:"role"`
}

func toUserResponse(user *users.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Username: user.Username,
		Role:     user.Role,
	}
}

// SignUpHandler registers a password account and establishes its session.
func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params auth.SignUpParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, r, errors.Wrap(apperrors.ErrInvalidParameters, "[SignUpHandler] decode body"))
			return
		}

		user, err := s.auth.SignUp(r.Context(), params, cookies.NewHTTPCookies(w, r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(user))
	}
}

// SignInHandler authenticates a password account and establishes its
// session.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params auth.SignInParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, r, errors.Wrap(apperrors.ErrInvalidParameters, "[SignInHandler] decode body"))
			return
		}

		user, err := s.auth.SignIn(r.Context(), params, cookies.NewHTTPCookies(w, r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

// SignOutHandler tears down the current session.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.SignOut(r.Context(), cookies.NewHTTPCookies(w, r)); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the signed-in user. Routed behind RequireSession.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, r, errors.New("[MeHandler] no session in context"))
			return
		}

		user, err := s.auth.Repos().Users.GetByID(r.Context(), session.ID)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}
