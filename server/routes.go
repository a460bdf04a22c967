package server

const (
	RouteSignUp  = "/api/auth/sign-up"
	RouteSignIn  = "/api/auth/sign-in"
	RouteSignOut = "/api/auth/sign-out"
	RouteMe      = "/api/auth/me"

	// RouteOAuth doubles as the callback target: the effective
	// redirect_uri registered with each provider is this path plus the
	// provider identifier.
	RouteOAuth = "/api/oauth/{provider}"
)

func (s *Server) initRoutes() {
	std := s.StdMiddleware()

	s.RegisterRouteFunc("POST "+RouteSignUp, ChainMiddleware(s.SignUpHandler(), std...))
	s.RegisterRouteFunc("POST "+RouteSignIn, ChainMiddleware(s.SignInHandler(), std...))
	s.RegisterRouteFunc("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), std...))
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), append(std, s.RequireSession())...))

	s.RegisterRouteFunc("POST "+RouteOAuth, ChainMiddleware(s.OAuthBeginHandler(), std...))
	s.RegisterRouteFunc("GET "+RouteOAuth, ChainMiddleware(s.OAuthCallbackHandler(), std...))
}
