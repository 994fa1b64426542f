package server

import "github.com/prometheus/client_golang/prometheus/promhttp"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	// Public stats pages (app-level credential)
	s.RegisterRouteHandler("GET "+RouteSearch, ChainMiddleware(s.SearchHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSearch, ChainMiddleware(s.SearchHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteItem, ChainMiddleware(s.ItemHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RoutePlot, ChainMiddleware(s.PlotHandler(), s.HTMLMiddleware()...))

	// Authorization handshake
	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.AuthorizePageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthorize, ChainMiddleware(s.AuthorizeSubmitHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...))

	// Authenticated user pages (session guard + user credential)
	s.RegisterRouteHandler("GET "+RouteDisconnect, ChainMiddleware(s.DisconnectHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteUserPlaylists, ChainMiddleware(s.UserPlaylistsHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteUserPlaylist, ChainMiddleware(s.UserPlaylistHandler(), s.HTMLMiddleware(s.RequireSession())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
