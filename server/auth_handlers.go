package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	bserrors "badstats/internal/errors"
	"badstats/sessions"
)

// scopes a user may grant through the authorize form.
var allowedScopes = map[string]bool{
	"playlist-read-private":       true,
	"playlist-read-collaborative": true,
	"user-library-read":           true,
}

// AuthorizePageHandler is the handshake entry point: it issues a CSRF token
// and renders the form that starts the redirect to the authorization server.
func (s *Server) AuthorizePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		csrfToken, err := s.csrf.Issue(r.Context())
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		s.render(w, "authorize", map[string]interface{}{
			"CSRF": csrfToken,
		})
	}
}

// AuthorizeSubmitHandler validates the form's CSRF token and redirects the
// browser to the authorization server, reusing the CSRF token as the state
// parameter. A failed check redirects to the landing page with no hint of
// why it failed.
func (s *Server) AuthorizeSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		csrfToken := r.FormValue("csrf")
		if err := s.csrf.Validate(r.Context(), csrfToken); err != nil {
			log.Debug().Err(err).Msg("authorize submission rejected")
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		scope := r.FormValue("scope")
		if !allowedScopes[scope] {
			log.Debug().Str("scope", scope).Msg("authorize submission with unknown scope")
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		authorizeURL := s.accounts.AuthorizeURL(s.config.RedirectURI(), scope, csrfToken)
		http.Redirect(w, r, authorizeURL, http.StatusSeeOther)
	}
}

// CallbackHandler finishes the handshake: it validates the round-tripped
// state exactly like the original CSRF token, mints a fresh browser session,
// exchanges the code for a user token bound to it, and sets the session
// cookie.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			log.Debug().Str("error", errParam).Msg("authorization denied")
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		if err := s.csrf.Validate(r.Context(), state); err != nil {
			log.Debug().Err(bserrors.Wrapf(bserrors.ErrInvalidState, "CallbackHandler %v", err)).Msg("callback rejected")
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		session := sessions.New()
		if _, err := s.userCreds.Exchange(r.Context(), code, s.config.RedirectURI(), session.ID); err != nil {
			s.serverError(w, r, err)
			return
		}

		if err := s.codec.Write(w, r, session); err != nil {
			s.serverError(w, r, err)
			return
		}

		http.Redirect(w, r, RouteUserPlaylists, http.StatusSeeOther)
	}
}

// DisconnectHandler deletes the session's token row and clears the cookie.
func (s *Server) DisconnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, routeLanding, http.StatusSeeOther)
			return
		}

		if err := s.userCreds.Disconnect(r.Context(), session.ID); err != nil {
			s.serverError(w, r, err)
			return
		}

		s.codec.Clear(w)
		http.Redirect(w, r, routeLanding, http.StatusSeeOther)
	}
}
