// Package server exposes the auth core over HTTP: JSON endpoints for
// password accounts and session management, plus the OAuth redirect and
// callback surface.
package server

import (
	"net/http"

	"github.com/accessregistry/go-registry-auth/auth"
	"github.com/accessregistry/go-registry-auth/internal/config"
	"github.com/pkg/errors"
)

type Server struct {
	env    string
	mux    *http.ServeMux
	config config.Config
	auth   *auth.Service
}

func New(cfg config.Config, authService *auth.Service) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[server.New] auth service is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}
