package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// APIHandler handles system-level API requests
type APIHandler struct {
	chatService interfaces.LLMService
	logger      arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(chatService interfaces.LLMService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status. The LLM backend is probed so a
// dead upstream shows up in liveness rather than on the first chat request.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]string{
		"status": "ok",
		"llm":    "ok",
	}

	if err := h.chatService.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		status["llm"] = "unavailable"
	}

	WriteJSON(w, http.StatusOK, status)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
