package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// TickerHandler serves the stored-ticker API.
type TickerHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewTickerHandler creates a new ticker handler.
func NewTickerHandler(storage interfaces.StorageManager, logger arbor.ILogger) *TickerHandler {
	return &TickerHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListTickersHandler returns every stored ticker with article previews.
// GET /api/tickers
func (h *TickerHandler) ListTickersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	store := h.storage.Store()

	tickers, err := store.ListTickers(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list tickers")
		WriteError(w, http.StatusInternalServerError, "Failed to list tickers")
		return
	}

	summaries := make([]models.TickerSummary, 0, len(tickers))
	for _, ticker := range tickers {
		articles, err := store.GetArticlesByTicker(ctx, ticker.Symbol)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("symbol", ticker.Symbol).
				Msg("Failed to load articles for ticker")
			WriteError(w, http.StatusInternalServerError, "Failed to load articles")
			return
		}

		previews := make([]models.ArticlePreview, 0, len(articles))
		for _, article := range articles {
			previews = append(previews, article.Preview())
		}

		summaries = append(summaries, models.TickerSummary{
			Ticker:   *ticker,
			Articles: previews,
		})
	}

	WriteJSON(w, http.StatusOK, summaries)
}
