package server

import (
	"net/http"
)

// UserPlaylistsHandler lists the session user's playlists using their own
// credential.
func (s *Server) UserPlaylistsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, RouteAuthorize, http.StatusSeeOther)
			return
		}

		playlists, err := s.userAPI(session.ID).UserPlaylists(r.Context())
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		s.render(w, "playlists", map[string]interface{}{"Playlists": playlists})
	}
}

// UserPlaylistHandler renders one playlist's track listing.
func (s *Server) UserPlaylistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, RouteAuthorize, http.StatusSeeOther)
			return
		}

		id := r.PathValue("id")
		if id == "" {
			http.NotFound(w, r)
			return
		}

		playlist, err := s.userAPI(session.ID).Playlist(r.Context(), id)
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		s.render(w, "playlist", map[string]interface{}{"Playlist": playlist})
	}
}
