package server

const (
	RouteIndex  = "/{$}"
	RouteSearch = "/search/{kind}"
	RouteItem   = "/item/{kind}/{id}"
	RoutePlot   = "/plot/album/{feature}/{id}"

	RouteAuthorize  = "/auth/spotify/authorize"
	RouteCallback   = "/auth/spotify/callback"
	RouteDisconnect = "/auth/spotify/disconnect"

	RouteUserPlaylists = "/user/playlists"
	RouteUserPlaylist  = "/user/playlist/{id}"

	RouteMetrics = "/metrics"

	// routeLanding is where failed handshakes and cleared sessions land.
	routeLanding = "/search/artist"
)
