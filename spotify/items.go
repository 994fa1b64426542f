package spotify

// Image is artwork at one resolution.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SearchResult is one row of a search listing. ReleaseDate and TotalTracks
// are only populated for album results.
type SearchResult struct {
	ID          string
	Name        string
	Images      []Image
	ReleaseDate string
	TotalTracks int
}

// TrackSummary is a track as listed on an artist or album page.
type TrackSummary struct {
	ID          string
	Name        string
	Popularity  int
	Explicit    bool
	DurationMS  int
	TrackNumber int
	AlbumID     string
	AlbumName   string
	Images      []Image
	Artists     []string
}

// Artist is an artist page: metadata plus top tracks.
type Artist struct {
	ID         string
	Name       string
	Genres     []string
	Images     []Image
	Followers  int
	Popularity int
	TopTracks  []TrackSummary
}

// Album is an album page.
type Album struct {
	ID          string
	Name        string
	Artists     []string
	Genres      []string
	Images      []Image
	Popularity  int
	ReleaseDate string
	Tracks      []TrackSummary
}

// AudioFeatures is Spotify's audio analysis summary for one track.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
}

// Feature looks up one feature by its wire name. Only features that make
// sense on a bar chart are exposed.
func (f AudioFeatures) Feature(name string) (float64, bool) {
	switch name {
	case "danceability":
		return f.Danceability, true
	case "energy":
		return f.Energy, true
	case "loudness":
		return f.Loudness, true
	case "speechiness":
		return f.Speechiness, true
	case "acousticness":
		return f.Acousticness, true
	case "instrumentalness":
		return f.Instrumentalness, true
	case "liveness":
		return f.Liveness, true
	case "valence":
		return f.Valence, true
	case "tempo":
		return f.Tempo, true
	}
	return 0, false
}

// Track is a track page: metadata plus audio features.
type Track struct {
	ID         string
	Name       string
	AlbumID    string
	AlbumName  string
	Images     []Image
	Popularity int
	Explicit   bool
	DurationMS int
	Artists    []string
	Features   AudioFeatures
}

// AlbumTracks is an album's track list with audio features attached,
// ordered by track number. It is the input for feature bar charts.
type AlbumTracks struct {
	Album  string
	Tracks []Track
}

// PlaylistSummary is one row of the authenticated user's playlist listing.
type PlaylistSummary struct {
	ID          string
	Name        string
	Description string
	Images      []Image
	Owner       string
}

// Playlist is a playlist page.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Images      []Image
	Owner       string
	Followers   int
	Public      bool
	Tracks      []TrackSummary
}
