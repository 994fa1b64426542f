package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	bserrors "badstats/internal/errors"
	"badstats/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the validated browser session
const ContextKeySession ContextKey = "session"

// SessionFromContext returns the session the guard injected. ok is false on
// unguarded routes.
func SessionFromContext(ctx context.Context) (sessions.Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return s, ok
}

// RequireSession is the session validity guard for routes that need an
// authenticated user. It validates the cookie's timing checks and confirms a
// token row still backs the session, then injects the typed session into the
// request context. Any failure clears the cookie and redirects to the
// handshake entry point; the handler never runs with a half-valid session.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.codec.Read(r)
			if err == nil {
				err = session.Valid()
			}
			if err == nil {
				var ok bool
				ok, err = s.userCreds.HasSession(r.Context(), session.ID)
				if err == nil && !ok {
					err = errors.Wrap(bserrors.ErrSessionInvalid, "no token row backs session")
				}
			}
			if err != nil {
				log.Debug().Err(err).Msg("session guard rejected request")
				s.codec.Clear(w)
				http.Redirect(w, r, RouteAuthorize, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}
