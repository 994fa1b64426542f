package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"

	bserrors "badstats/internal/errors"
)

// DefaultAPIURL is the Spotify Web API.
const DefaultAPIURL = "https://api.spotify.com/v1"

// SearchKinds are the item kinds the front-end understands. "song" maps to
// the API's "track" type.
var SearchKinds = []string{"artist", "album", "song"}

// ValidKind reports whether kind is one of SearchKinds.
func ValidKind(kind string) bool {
	for _, k := range SearchKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// CredentialSource supplies a currently valid bearer credential. The client
// asks for one per request so that lazily refreshed tokens are picked up.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// Client performs authenticated reads against the Spotify Web API.
type Client struct {
	baseURL    string
	source     CredentialSource
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithAPIURL points the client at a different API host, primarily for tests.
func WithAPIURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(source CredentialSource, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultAPIURL,
		source:     source,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type wireArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
	Popularity int      `json:"popularity"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

type wireAlbum struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Images      []Image  `json:"images"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Genres      []string `json:"genres"`
	Popularity  int      `json:"popularity"`
	Artists     []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Tracks struct {
		Items []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			TrackNumber int    `json:"track_number"`
		} `json:"items"`
	} `json:"tracks"`
}

type wireTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Popularity  int    `json:"popularity"`
	Explicit    bool   `json:"explicit"`
	DurationMS  int    `json:"duration_ms"`
	TrackNumber int    `json:"track_number"`
	Album       struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Images  []Image `json:"images"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"album"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

func (t wireTrack) summary() TrackSummary {
	s := TrackSummary{
		ID:          t.ID,
		Name:        t.Name,
		Popularity:  t.Popularity,
		Explicit:    t.Explicit,
		DurationMS:  t.DurationMS,
		TrackNumber: t.TrackNumber,
		AlbumID:     t.Album.ID,
		AlbumName:   t.Album.Name,
		Images:      t.Album.Images,
	}
	for _, a := range t.Artists {
		s.Artists = append(s.Artists, a.Name)
	}
	return s
}

// Search queries the API for artists, albums or songs matching query.
func (c *Client) Search(ctx context.Context, query, kind string) ([]SearchResult, error) {
	if !ValidKind(kind) {
		return nil, errors.Errorf("Client.Search invalid kind %q", kind)
	}
	apiKind := kind
	if apiKind == "song" {
		apiKind = "track"
	}

	params := url.Values{"q": {query}, "type": {apiKind}, "limit": {"8"}}

	var body struct {
		Artists struct {
			Items []wireArtist `json:"items"`
		} `json:"artists"`
		Albums struct {
			Items []wireAlbum `json:"items"`
		} `json:"albums"`
		Tracks struct {
			Items []wireTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.apiGet(ctx, "/search", params, &body); err != nil {
		return nil, errors.Wrap(err, "Client.Search")
	}

	var results []SearchResult
	switch apiKind {
	case "artist":
		for _, a := range body.Artists.Items {
			results = append(results, SearchResult{ID: a.ID, Name: a.Name, Images: a.Images})
		}
	case "album":
		for _, a := range body.Albums.Items {
			results = append(results, SearchResult{
				ID:          a.ID,
				Name:        a.Name,
				Images:      a.Images,
				ReleaseDate: a.ReleaseDate,
				TotalTracks: a.TotalTracks,
			})
		}
	case "track":
		for _, t := range body.Tracks.Items {
			results = append(results, SearchResult{ID: t.ID, Name: t.Name, Images: t.Album.Images})
		}
	}
	return results, nil
}

// Artist fetches an artist's metadata and US top tracks.
func (c *Client) Artist(ctx context.Context, id string) (*Artist, error) {
	var wa wireArtist
	if err := c.apiGet(ctx, "/artists/"+id, nil, &wa); err != nil {
		return nil, errors.Wrap(err, "Client.Artist")
	}

	var top struct {
		Tracks []wireTrack `json:"tracks"`
	}
	if err := c.apiGet(ctx, "/artists/"+id+"/top-tracks", url.Values{"market": {"US"}}, &top); err != nil {
		return nil, errors.Wrap(err, "Client.Artist top-tracks")
	}

	artist := &Artist{
		ID:         wa.ID,
		Name:       wa.Name,
		Genres:     wa.Genres,
		Images:     wa.Images,
		Followers:  wa.Followers.Total,
		Popularity: wa.Popularity,
	}
	for _, t := range top.Tracks {
		artist.TopTracks = append(artist.TopTracks, t.summary())
	}
	return artist, nil
}

// Album fetches an album's metadata and track listing.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	var wa wireAlbum
	if err := c.apiGet(ctx, "/albums/"+id, nil, &wa); err != nil {
		return nil, errors.Wrap(err, "Client.Album")
	}

	album := &Album{
		ID:          wa.ID,
		Name:        wa.Name,
		Genres:      wa.Genres,
		Images:      wa.Images,
		Popularity:  wa.Popularity,
		ReleaseDate: wa.ReleaseDate,
	}
	for _, a := range wa.Artists {
		album.Artists = append(album.Artists, a.Name)
	}
	for _, t := range wa.Tracks.Items {
		album.Tracks = append(album.Tracks, TrackSummary{
			ID:          t.ID,
			Name:        t.Name,
			TrackNumber: t.TrackNumber,
		})
	}
	return album, nil
}

// Track fetches a track's metadata and audio features.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	var wt wireTrack
	if err := c.apiGet(ctx, "/tracks/"+id, url.Values{"market": {"US"}}, &wt); err != nil {
		return nil, errors.Wrap(err, "Client.Track")
	}

	var features AudioFeatures
	if err := c.apiGet(ctx, "/audio-features/"+id, nil, &features); err != nil {
		return nil, errors.Wrap(err, "Client.Track audio-features")
	}

	track := &Track{
		ID:         wt.ID,
		Name:       wt.Name,
		AlbumID:    wt.Album.ID,
		AlbumName:  wt.Album.Name,
		Images:     wt.Album.Images,
		Popularity: wt.Popularity,
		Explicit:   wt.Explicit,
		DurationMS: wt.DurationMS,
		Features:   features,
	}
	for _, a := range wt.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	return track, nil
}

// AlbumTrackDetails fetches an album's tracks with audio features attached,
// ordered by track number.
func (c *Client) AlbumTrackDetails(ctx context.Context, id string) (*AlbumTracks, error) {
	album, err := c.Album(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "Client.AlbumTrackDetails")
	}

	sort.Slice(album.Tracks, func(i, j int) bool {
		return album.Tracks[i].TrackNumber < album.Tracks[j].TrackNumber
	})

	ids := make([]string, 0, len(album.Tracks))
	for _, t := range album.Tracks {
		ids = append(ids, t.ID)
	}

	var tracksBody struct {
		Tracks []wireTrack `json:"tracks"`
	}
	params := url.Values{"ids": {strings.Join(ids, ",")}, "market": {"US"}}
	if err := c.apiGet(ctx, "/tracks", params, &tracksBody); err != nil {
		return nil, errors.Wrap(err, "Client.AlbumTrackDetails tracks")
	}

	var featuresBody struct {
		AudioFeatures []struct {
			ID string `json:"id"`
			AudioFeatures
		} `json:"audio_features"`
	}
	if err := c.apiGet(ctx, "/audio-features", url.Values{"ids": {strings.Join(ids, ",")}}, &featuresBody); err != nil {
		return nil, errors.Wrap(err, "Client.AlbumTrackDetails audio-features")
	}

	featuresByID := make(map[string]AudioFeatures, len(featuresBody.AudioFeatures))
	for _, f := range featuresBody.AudioFeatures {
		featuresByID[f.ID] = f.AudioFeatures
	}

	result := &AlbumTracks{Album: album.Name}
	for _, wt := range tracksBody.Tracks {
		track := Track{
			ID:         wt.ID,
			Name:       wt.Name,
			AlbumID:    wt.Album.ID,
			AlbumName:  wt.Album.Name,
			Images:     wt.Album.Images,
			Popularity: wt.Popularity,
			Explicit:   wt.Explicit,
			DurationMS: wt.DurationMS,
			Features:   featuresByID[wt.ID],
		}
		for _, a := range wt.Artists {
			track.Artists = append(track.Artists, a.Name)
		}
		result.Tracks = append(result.Tracks, track)
	}
	return result, nil
}

// UserPlaylists lists the authenticated user's playlists. The client must
// have been built with a user credential source.
func (c *Client) UserPlaylists(ctx context.Context) ([]PlaylistSummary, error) {
	var body struct {
		Items []struct {
			ID          string  `json:"id"`
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Images      []Image `json:"images"`
			Owner       struct {
				DisplayName string `json:"display_name"`
			} `json:"owner"`
		} `json:"items"`
	}
	if err := c.apiGet(ctx, "/me/playlists", nil, &body); err != nil {
		return nil, errors.Wrap(err, "Client.UserPlaylists")
	}

	var playlists []PlaylistSummary
	for _, p := range body.Items {
		playlists = append(playlists, PlaylistSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Images:      p.Images,
			Owner:       p.Owner.DisplayName,
		})
	}
	return playlists, nil
}

// Playlist fetches one of the authenticated user's playlists.
func (c *Client) Playlist(ctx context.Context, id string) (*Playlist, error) {
	var body struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Images      []Image `json:"images"`
		Public      bool    `json:"public"`
		Owner       struct {
			DisplayName string `json:"display_name"`
		} `json:"owner"`
		Followers struct {
			Total int `json:"total"`
		} `json:"followers"`
		Tracks struct {
			Items []struct {
				Track wireTrack `json:"track"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := c.apiGet(ctx, "/playlists/"+id, nil, &body); err != nil {
		return nil, errors.Wrap(err, "Client.Playlist")
	}

	playlist := &Playlist{
		ID:          body.ID,
		Name:        body.Name,
		Description: body.Description,
		Images:      body.Images,
		Owner:       body.Owner.DisplayName,
		Followers:   body.Followers.Total,
		Public:      body.Public,
	}
	for _, item := range body.Tracks.Items {
		playlist.Tracks = append(playlist.Tracks, item.Track.summary())
	}
	return playlist, nil
}

func (c *Client) apiGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	credential, err := c.source.Credential(ctx)
	if err != nil {
		return errors.Wrap(err, "apiGet Credential")
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "apiGet NewRequest")
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "apiGet Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Wrapf(bserrors.ErrUpstreamAPI, "apiGet %s status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "apiGet %s Decode", path)
	}
	return nil
}
