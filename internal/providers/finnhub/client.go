package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/auspex/internal/interfaces"
)

const (
	// DefaultBaseURL is the base URL for the Finnhub API.
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// DefaultEarningsLimit bounds the earnings surprises history.
	DefaultEarningsLimit = 5

	// DefaultInsiderLookback is the insider sentiment window.
	DefaultInsiderLookback = 90 * 24 * time.Hour
)

// Client is a Finnhub API client.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	logger          arbor.ILogger
	limiter         *rate.Limiter
	earningsLimit   int
	insiderLookback time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithInsiderLookback sets the insider sentiment window.
func WithInsiderLookback(lookback time.Duration) ClientOption {
	return func(c *Client) {
		c.insiderLookback = lookback
	}
}

// NewClient creates a new Finnhub API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:         rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		earningsLimit:   DefaultEarningsLimit,
		insiderLookback: DefaultInsiderLookback,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Finnhub API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: time.Minute}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetCompanyProfile retrieves the company profile for a symbol.
func (c *Client) GetCompanyProfile(ctx context.Context, symbol string) (*interfaces.CompanyProfile, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var profile interfaces.CompanyProfile
	if err := c.get(ctx, "/stock/profile2", params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetRecommendationTrends retrieves analyst recommendation trends.
func (c *Client) GetRecommendationTrends(ctx context.Context, symbol string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var trends json.RawMessage
	if err := c.get(ctx, "/stock/recommendation", params, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

// GetEarningsSurprises retrieves the recent earnings surprise history.
func (c *Client) GetEarningsSurprises(ctx context.Context, symbol string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", fmt.Sprintf("%d", c.earningsLimit))

	var earnings json.RawMessage
	if err := c.get(ctx, "/stock/earnings", params, &earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}

// GetInsiderSentiment retrieves insider sentiment over the lookback window.
// Only the data array is returned.
func (c *Client) GetInsiderSentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	now := time.Now().UTC()
	from := now.Add(-c.insiderLookback)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	var result insiderSentimentResponse
	if err := c.get(ctx, "/stock/insider-sentiment", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetStockData gathers the full market-data set for a symbol. Each sub-fetch
// is independently fallible: failures are logged and leave the field empty
// rather than failing the whole fetch.
func (c *Client) GetStockData(ctx context.Context, symbol string) (*interfaces.StockData, error) {
	data := &interfaces.StockData{}

	profile, err := c.GetCompanyProfile(ctx, symbol)
	if err != nil {
		c.logFetchError(symbol, "profile", err)
	} else {
		data.Profile = profile
	}

	trends, err := c.GetRecommendationTrends(ctx, symbol)
	if err != nil {
		c.logFetchError(symbol, "recommendation_trends", err)
	} else {
		data.RecommendationTrends = trends
	}

	earnings, err := c.GetEarningsSurprises(ctx, symbol)
	if err != nil {
		c.logFetchError(symbol, "earnings_surprises", err)
	} else {
		data.EarningsSurprises = earnings
	}

	insider, err := c.GetInsiderSentiment(ctx, symbol)
	if err != nil {
		c.logFetchError(symbol, "insider_sentiment", err)
	} else {
		data.InsiderSentiment = insider
	}

	return data, nil
}

func (c *Client) logFetchError(symbol, field string, err error) {
	if c.logger != nil {
		c.logger.Warn().
			Str("symbol", symbol).
			Str("field", field).
			Err(err).
			Msg("Finnhub sub-fetch failed")
	}
}
