package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - chat requests
	mux.HandleFunc("/ws/chat", s.app.WSHandler.HandleChat)

	// API routes - Tickers
	mux.HandleFunc("/api/tickers", s.app.TickerHandler.ListTickersHandler)

	// API routes - System
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
