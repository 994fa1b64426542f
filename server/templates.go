package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var pageTmpl = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>badstats</title>
<style>
body{font-family:sans-serif;max-width:720px;margin:2rem auto;padding:0 1rem;color:#222}
nav a{margin-right:1rem}
table{border-collapse:collapse;width:100%}
td,th{text-align:left;padding:.3rem .6rem;border-bottom:1px solid #ddd}
img.art{max-width:200px}
form.search input[type=text]{width:60%;padding:.4rem}
.muted{color:#777}
</style>
</head>
<body>
<nav>
<a href="/search/artist">Artists</a>
<a href="/search/album">Albums</a>
<a href="/search/song">Songs</a>
<a href="/user/playlists">My Playlists</a>
<a href="/auth/spotify/disconnect">Disconnect</a>
</nav>
<hr>{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "search"}}{{template "head"}}
<h1>Search {{.Kind}}s</h1>
<form class="search" method="post" action="/search/{{.Kind}}">
<input type="text" name="query" value="{{.Query}}" placeholder="Search for a {{.Kind}}…">
<input type="submit" value="Search">
</form>
{{if .Results}}
<table>
<tr><th></th><th>Name</th>{{if eq .Kind "album"}}<th>Released</th><th>Tracks</th>{{end}}</tr>
{{range .Results}}
<tr>
<td>{{if .Images}}<img src="{{(index .Images 0).URL}}" width="48" alt="">{{end}}</td>
<td><a href="/item/{{$.Kind}}/{{.ID}}">{{.Name}}</a></td>
{{if eq $.Kind "album"}}<td>{{.ReleaseDate}}</td><td>{{.TotalTracks}}</td>{{end}}
</tr>
{{end}}
</table>
{{else if .Query}}<p class="muted">No results for "{{.Query}}".</p>{{end}}
{{template "foot"}}{{end}}

{{define "artist"}}{{template "head"}}
<h1>{{.Artist.Name}}</h1>
{{if .Artist.Images}}<img class="art" src="{{(index .Artist.Images 0).URL}}" alt="{{.Artist.Name}}">{{end}}
<p>Followers: {{.Artist.Followers}} · Popularity: {{.Artist.Popularity}}/100</p>
{{if .Artist.Genres}}<p class="muted">{{range .Artist.Genres}}{{.}} {{end}}</p>{{end}}
<h2>Top Tracks</h2>
<table>
<tr><th>Track</th><th>Album</th><th>Popularity</th></tr>
{{range .Artist.TopTracks}}
<tr>
<td><a href="/item/song/{{.ID}}">{{.Name}}</a></td>
<td><a href="/item/album/{{.AlbumID}}">{{.AlbumName}}</a></td>
<td>{{.Popularity}}</td>
</tr>
{{end}}
</table>
{{template "foot"}}{{end}}

{{define "album"}}{{template "head"}}
<h1>{{.Album.Name}}</h1>
{{if .Album.Images}}<img class="art" src="{{(index .Album.Images 0).URL}}" alt="{{.Album.Name}}">{{end}}
<p>{{range .Album.Artists}}{{.}} {{end}}· Released {{.Album.ReleaseDate}} · Popularity {{.Album.Popularity}}/100</p>
<h2>Tracks</h2>
<table>
<tr><th>#</th><th>Track</th></tr>
{{range .Album.Tracks}}
<tr><td>{{.TrackNumber}}</td><td><a href="/item/song/{{.ID}}">{{.Name}}</a></td></tr>
{{end}}
</table>
<h2>Feature charts</h2>
<p>
{{range .Features}}<a href="/plot/album/{{.}}/{{$.Album.ID}}">{{.}}</a> {{end}}
</p>
{{template "foot"}}{{end}}

{{define "song"}}{{template "head"}}
<h1>{{.Track.Name}}</h1>
{{if .Track.Images}}<img class="art" src="{{(index .Track.Images 0).URL}}" alt="{{.Track.Name}}">{{end}}
<p>{{range .Track.Artists}}{{.}} {{end}}· <a href="/item/album/{{.Track.AlbumID}}">{{.Track.AlbumName}}</a></p>
<p>Popularity {{.Track.Popularity}}/100{{if .Track.Explicit}} · Explicit{{end}}</p>
<h2>Audio features</h2>
<table>
<tr><td>Danceability</td><td>{{.Track.Features.Danceability}}</td></tr>
<tr><td>Energy</td><td>{{.Track.Features.Energy}}</td></tr>
<tr><td>Loudness</td><td>{{.Track.Features.Loudness}} dB</td></tr>
<tr><td>Speechiness</td><td>{{.Track.Features.Speechiness}}</td></tr>
<tr><td>Acousticness</td><td>{{.Track.Features.Acousticness}}</td></tr>
<tr><td>Instrumentalness</td><td>{{.Track.Features.Instrumentalness}}</td></tr>
<tr><td>Liveness</td><td>{{.Track.Features.Liveness}}</td></tr>
<tr><td>Valence</td><td>{{.Track.Features.Valence}}</td></tr>
<tr><td>Tempo</td><td>{{.Track.Features.Tempo}} BPM</td></tr>
</table>
{{template "foot"}}{{end}}

{{define "plot"}}{{template "head"}}
<h1>{{.Album}} — {{.Feature}}</h1>
{{.Chart}}
<p><a href="/item/album/{{.AlbumID}}">Back to album</a></p>
{{template "foot"}}{{end}}

{{define "authorize"}}{{template "head"}}
<h1>Connect your Spotify account</h1>
<p>Pick what badstats may read, then continue to Spotify to approve.</p>
<form method="post" action="/auth/spotify/authorize">
<input type="hidden" name="csrf" value="{{.CSRF}}">
<p>
<label><input type="radio" name="scope" value="playlist-read-private" checked> Private playlists</label><br>
<label><input type="radio" name="scope" value="playlist-read-collaborative"> Collaborative playlists</label><br>
<label><input type="radio" name="scope" value="user-library-read"> Saved library</label>
</p>
<input type="submit" value="Continue to Spotify">
</form>
{{template "foot"}}{{end}}

{{define "playlists"}}{{template "head"}}
<h1>Your playlists</h1>
{{if .Playlists}}
<table>
<tr><th></th><th>Name</th><th>Owner</th></tr>
{{range .Playlists}}
<tr>
<td>{{if .Images}}<img src="{{(index .Images 0).URL}}" width="48" alt="">{{end}}</td>
<td><a href="/user/playlist/{{.ID}}">{{.Name}}</a></td>
<td>{{.Owner}}</td>
</tr>
{{end}}
</table>
{{else}}<p class="muted">No playlists found.</p>{{end}}
{{template "foot"}}{{end}}

{{define "playlist"}}{{template "head"}}
<h1>{{.Playlist.Name}}</h1>
{{if .Playlist.Images}}<img class="art" src="{{(index .Playlist.Images 0).URL}}" alt="{{.Playlist.Name}}">{{end}}
{{if .Playlist.Description}}<p>{{.Playlist.Description}}</p>{{end}}
<p class="muted">By {{.Playlist.Owner}} · {{.Playlist.Followers}} followers{{if .Playlist.Public}} · Public{{end}}</p>
<table>
<tr><th>Track</th><th>Album</th><th>Popularity</th></tr>
{{range .Playlist.Tracks}}
<tr>
<td><a href="/item/song/{{.ID}}">{{.Name}}</a></td>
<td><a href="/item/album/{{.AlbumID}}">{{.AlbumName}}</a></td>
<td>{{.Popularity}}</td>
</tr>
{{end}}
</table>
{{template "foot"}}{{end}}
`))

// render executes one named page template. Template failures after the first
// write cannot change the status code, so they are only logged.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}
