package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
	"github.com/ternarybob/auspex/internal/pipeline"
)

// chatRequest is one inbound chat message.
type chatRequest struct {
	Query string `json:"query"`
}

// WebSocketHandler serves the chat endpoint. Each connection processes one
// request at a time; progress events stream back in emission order.
type WebSocketHandler struct {
	supervisor *pipeline.Supervisor
	logger     arbor.ILogger
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates the chat websocket handler. An empty allowed
// origin permits all origins (development).
func NewWebSocketHandler(supervisor *pipeline.Supervisor, config *common.ServerConfig, logger arbor.ILogger) *WebSocketHandler {
	allowedOrigin := config.AllowedOrigin
	return &WebSocketHandler{
		supervisor: supervisor,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// connSink serializes event writes onto one websocket connection so stage
// goroutines can emit without interleaving frames.
type connSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *connSink) Send(event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(event)
}

// HandleChat upgrades the connection and serves chat requests until the
// client disconnects. Disconnecting cancels the in-flight request context;
// collection work already committed stays committed.
func (h *WebSocketHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.Info().
		Str("remote", conn.RemoteAddr().String()).
		Msg("Chat connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sink := &connSink{conn: conn}
	requests := make(chan chatRequest)

	// Read pump: it both receives requests and notices the disconnect that
	// cancels an in-flight pipeline run.
	go func() {
		defer close(requests)
		defer cancel()
		for {
			var req chatRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn().Err(err).Msg("Chat connection read failed")
				}
				return
			}
			select {
			case requests <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for req := range requests {
		if req.Query == "" {
			continue
		}

		requestID := uuid.New().String()
		h.logger.Info().
			Str("request_id", requestID).
			Str("query", req.Query).
			Msg("Chat request received")

		if err := h.supervisor.Run(ctx, req.Query, sink); err != nil {
			h.logger.Warn().
				Err(err).
				Str("request_id", requestID).
				Str("query", req.Query).
				Msg("Chat request failed")
			if ctx.Err() != nil {
				return
			}
		}
	}

	h.logger.Info().
		Str("remote", conn.RemoteAddr().String()).
		Msg("Chat connection closed")
}

var _ interfaces.EventSink = (*connSink)(nil)
