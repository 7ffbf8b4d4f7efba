package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/models"
	"folio/internal/valuation"
)

const rateTableKey = "rate-table"

// RateStore is the slice of the repository the rate service needs.
type RateStore interface {
	ListRates(ctx context.Context) ([]models.ExchangeRate, error)
	UpsertRate(ctx context.Context, rate models.ExchangeRate) error
	OldestRateFetch(ctx context.Context) (time.Time, int, error)
}

// RateFetcher pulls one directed pair from the FX feed. Pairs are fetched
// independently; nothing reconciles them against each other.
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to models.Currency) (decimal.Decimal, error)
}

// RateService hands out the six-pair rate table, reusing rates younger than
// the TTL via an in-memory cache in front of the store. Two concurrent
// refreshes may race; last write wins.
type RateService struct {
	store   RateStore
	fetcher RateFetcher
	cache   *gocache.Cache
	ttl     time.Duration
	log     *logrus.Logger
}

func NewRateService(store RateStore, fetcher RateFetcher, ttl time.Duration, log *logrus.Logger) *RateService {
	return &RateService{
		store:   store,
		fetcher: fetcher,
		cache:   gocache.New(ttl, 10*time.Minute),
		ttl:     ttl,
		log:     log,
	}
}

// Table returns the current rate table, refreshing stale or missing pairs
// from the feed first. A partially refreshed table is still returned: a
// missing pair only means callers fall back to snapshot values.
func (s *RateService) Table(ctx context.Context) (valuation.RateTable, error) {
	if cached, ok := s.cache.Get(rateTableKey); ok {
		return cached.(valuation.RateTable), nil
	}

	oldest, n, err := s.store.OldestRateFetch(ctx)
	if err != nil {
		return nil, err
	}
	want := len(models.Currencies) * (len(models.Currencies) - 1)
	if n < want || time.Since(oldest) > s.ttl {
		s.refresh(ctx)
	}

	rows, err := s.store.ListRates(ctx)
	if err != nil {
		return nil, err
	}
	table := make(valuation.RateTable, len(rows))
	for _, row := range rows {
		table[valuation.PairKey(row.FromCurrency, row.ToCurrency)] = row.Rate
	}
	s.cache.Set(rateTableKey, table, s.ttl)
	return table, nil
}

// Refresh forces a feed fetch and drops the cached table.
func (s *RateService) Refresh(ctx context.Context) {
	s.refresh(ctx)
	s.cache.Delete(rateTableKey)
}

// SetManual stores a user-supplied rate and invalidates the cache so the next
// table read sees it.
func (s *RateService) SetManual(ctx context.Context, from, to models.Currency, value decimal.Decimal) error {
	err := s.store.UpsertRate(ctx, models.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         value,
		Source:       "manual",
		FetchedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	s.cache.Delete(rateTableKey)
	return nil
}

// refresh walks the six directed pairs, storing whatever the feed returns and
// logging the rest. No retry; a pair that fails stays at its stored value.
func (s *RateService) refresh(ctx context.Context) {
	now := time.Now().UTC()
	for _, from := range models.Currencies {
		for _, to := range models.Currencies {
			if from == to {
				continue
			}
			value, err := s.fetcher.FetchRate(ctx, from, to)
			if err != nil {
				s.log.Warnf("rate fetch %s→%s failed: %v", from, to, err)
				continue
			}
			err = s.store.UpsertRate(ctx, models.ExchangeRate{
				FromCurrency: from,
				ToCurrency:   to,
				Rate:         value,
				Source:       "api",
				FetchedAt:    now,
			})
			if err != nil {
				s.log.Warnf("rate store %s→%s failed: %v", from, to, err)
			}
		}
	}
}

// HTTPRateFetcher hits a JSON FX endpoint per pair.
type HTTPRateFetcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPRateFetcher(baseURL string) *HTTPRateFetcher {
	return &HTTPRateFetcher{baseURL: baseURL, httpClient: &http.Client{Timeout: defaultQuoteTimeout}}
}

type fxResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (f *HTTPRateFetcher) FetchRate(ctx context.Context, from, to models.Currency) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/latest?base=%s&symbols=%s", f.baseURL, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx fetch %s→%s: %w", from, to, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fx fetch %s→%s: status %d", from, to, resp.StatusCode)
	}
	var body fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("fx decode %s→%s: %w", from, to, err)
	}
	value, ok := body.Rates[string(to)]
	if !ok || value.IsZero() {
		return decimal.Zero, fmt.Errorf("fx fetch %s→%s: pair missing from response", from, to)
	}
	return value, nil
}
