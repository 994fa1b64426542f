package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"badstats/creds"
	"badstats/csrf"
	"badstats/internal/config"
	"badstats/sessions"
	"badstats/spotify"
	"badstats/token"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config

	codec       *sessions.Codec
	csrf        *csrf.Manager
	clientCreds *creds.ClientManager
	userCreds   *creds.UserManager
	accounts    *spotify.AccountsClient

	api        *spotify.Client // app-level credential
	apiOptions []spotify.ClientOption
}

type Option func(*Server)

// WithAccountsClient overrides the authorization-server client, primarily
// for tests.
func WithAccountsClient(accounts *spotify.AccountsClient) Option {
	return func(s *Server) {
		s.accounts = accounts
	}
}

// WithAPIOptions passes options through to every Web API client the server
// builds, primarily for tests.
func WithAPIOptions(options ...spotify.ClientOption) Option {
	return func(s *Server) {
		s.apiOptions = options
	}
}

func New(cfg config.Config, tokenRepo token.Repo, csrfRepo csrf.Repo, options ...Option) *Server {
	s := &Server{
		env:      cfg.Env,
		mux:      http.NewServeMux(),
		config:   cfg,
		codec:    sessions.NewCodec(cfg.CookieSecret),
		csrf:     csrf.NewManager(csrfRepo),
		accounts: spotify.NewAccountsClient(cfg.ClientID, cfg.ClientSecret),
	}

	for _, opt := range options {
		opt(s)
	}

	s.clientCreds = creds.NewClientManager(tokenRepo, s.accounts)
	s.userCreds = creds.NewUserManager(tokenRepo, s.accounts)
	s.api = spotify.NewClient(s.clientCreds, s.apiOptions...)

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// userAPI builds a Web API client bound to one session's user credential.
func (s *Server) userAPI(sessionID string) *spotify.Client {
	return spotify.NewClient(s.userCreds.ForSession(sessionID), s.apiOptions...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}

// serverError logs the cause and answers with a generic page; upstream and
// authorization-server details never reach the browser.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
}
