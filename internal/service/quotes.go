package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"folio/internal/models"
)

const (
	defaultQuoteTimeout = 20 * time.Second

	// The free tier of the quote feed allows one request per second.
	defaultQuoteRateLimit = 1
)

// QuoteSource fetches the current unit price for a symbol in its quote
// currency.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string, currency models.Currency) (decimal.Decimal, error)
}

// HTTPQuoteClient pulls quotes from a JSON price endpoint, pacing requests
// through a limiter so the refresh loop respects the feed's request budget.
type HTTPQuoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type QuoteOption func(*HTTPQuoteClient)

func WithHTTPClient(c *http.Client) QuoteOption {
	return func(q *HTTPQuoteClient) { q.httpClient = c }
}

func WithRateLimit(perSecond int) QuoteOption {
	return func(q *HTTPQuoteClient) { q.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

func NewHTTPQuoteClient(baseURL, apiKey string, opts ...QuoteOption) *HTTPQuoteClient {
	q := &HTTPQuoteClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultQuoteTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultQuoteRateLimit), 1),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

type quoteResponse struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

func (q *HTTPQuoteClient) Quote(ctx context.Context, symbol string, currency models.Currency) (decimal.Decimal, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	u := fmt.Sprintf("%s/quote?symbol=%s&currency=%s&apikey=%s", q.baseURL, url.QueryEscape(symbol), currency, url.QueryEscape(q.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote fetch %s: status %d", symbol, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("quote decode %s: %w", symbol, err)
	}
	if body.Price.IsZero() {
		return decimal.Zero, fmt.Errorf("quote fetch %s: empty price", symbol)
	}
	return body.Price, nil
}
