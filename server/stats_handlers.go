package server

import (
	"net/http"

	"badstats/plot"
	"badstats/spotify"
)

// plotFeatures are the audio features an album chart can be drawn for, in
// menu order.
var plotFeatures = []string{
	"danceability",
	"energy",
	"loudness",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
}

// IndexHandler sends the bare root to the artist search page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, routeLanding, http.StatusSeeOther)
	}
}

// SearchHandler renders the search form and, on POST, its results. The
// results come from the Web API under the app-level credential.
func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		if !spotify.ValidKind(kind) {
			http.NotFound(w, r)
			return
		}

		data := map[string]interface{}{"Kind": kind}

		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				s.serverError(w, r, err)
				return
			}
			query := r.FormValue("query")
			data["Query"] = query
			if query != "" {
				results, err := s.api.Search(r.Context(), query, kind)
				if err != nil {
					s.serverError(w, r, err)
					return
				}
				data["Results"] = results
			}
		}

		s.render(w, "search", data)
	}
}

// ItemHandler renders an artist, album or song page by ID.
func (s *Server) ItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		id := r.PathValue("id")
		if !spotify.ValidKind(kind) || id == "" {
			http.NotFound(w, r)
			return
		}

		switch kind {
		case "artist":
			artist, err := s.api.Artist(r.Context(), id)
			if err != nil {
				s.serverError(w, r, err)
				return
			}
			s.render(w, "artist", map[string]interface{}{"Artist": artist})
		case "album":
			album, err := s.api.Album(r.Context(), id)
			if err != nil {
				s.serverError(w, r, err)
				return
			}
			s.render(w, "album", map[string]interface{}{
				"Album":    album,
				"Features": plotFeatures,
			})
		case "song":
			track, err := s.api.Track(r.Context(), id)
			if err != nil {
				s.serverError(w, r, err)
				return
			}
			s.render(w, "song", map[string]interface{}{"Track": track})
		}
	}
}

// PlotHandler draws one audio feature across an album's tracks as a bar
// chart, one bar per track in album order.
func (s *Server) PlotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feature := r.PathValue("feature")
		id := r.PathValue("id")

		var probe spotify.AudioFeatures
		if _, ok := probe.Feature(feature); !ok {
			http.NotFound(w, r)
			return
		}

		details, err := s.api.AlbumTrackDetails(r.Context(), id)
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		labels := make([]string, 0, len(details.Tracks))
		values := make([]float64, 0, len(details.Tracks))
		for _, t := range details.Tracks {
			v, _ := t.Features.Feature(feature)
			labels = append(labels, t.Name)
			values = append(values, v)
		}

		chart, err := plot.Bar(labels, values, details.Album+" — "+feature)
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		s.render(w, "plot", map[string]interface{}{
			"Album":   details.Album,
			"AlbumID": id,
			"Feature": feature,
			"Chart":   chart,
		})
	}
}
