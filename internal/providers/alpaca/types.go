// Package alpaca provides a client for the Alpaca Market Data news API.
package alpaca

import (
	"fmt"
	"time"

	"github.com/ternarybob/auspex/internal/models"
)

// APIError represents an error from the Alpaca API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpaca API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Alpaca rate limit exceeded, retry after %v", e.RetryAfter)
}

// newsResponse is the envelope of the news endpoint.
type newsResponse struct {
	News      []models.NewsItem `json:"news"`
	NextToken string            `json:"next_page_token"`
}
