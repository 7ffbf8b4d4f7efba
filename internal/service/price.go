package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/database"
	"folio/internal/models"
)

// PriceRefresher walks priced holdings on a timer, fetching a fresh quote
// per symbol and rewriting the current price and the three currency
// snapshots. Symbols are refreshed sequentially; the quote client's limiter
// paces the calls. A failed symbol gets one recorded reason and no retry.
type PriceRefresher struct {
	repo   *database.Repo
	quotes QuoteSource
	rates  *RateService
	log    *logrus.Logger
	userID string
}

func NewPriceRefresher(repo *database.Repo, quotes QuoteSource, rates *RateService, log *logrus.Logger) *PriceRefresher {
	return &PriceRefresher{repo: repo, quotes: quotes, rates: rates, log: log, userID: database.DefaultUserID}
}

func (p *PriceRefresher) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.log.Info("price refresher stopping")
				return
			case <-ticker.C:
				p.RefreshAll(ctx)
			}
		}
	}()
}

// RefreshAll runs one refresh cycle over every holding that has a quantity.
// Cash-like rows keep their manually entered snapshot values.
func (p *PriceRefresher) RefreshAll(ctx context.Context) {
	holdings, err := p.repo.ListHoldings(ctx, p.userID)
	if err != nil {
		p.log.Warnf("refresh: list holdings failed: %v", err)
		return
	}
	table, err := p.rates.Table(ctx)
	if err != nil {
		p.log.Warnf("refresh: rate table unavailable, snapshots will reuse stored values: %v", err)
		table = nil
	}

	for _, h := range holdings {
		if h.Quantity == nil {
			continue
		}
		price, err := p.quotes.Quote(ctx, h.Symbol, h.EntryCurrency)
		if err != nil {
			p.log.Warnf("refresh %s: %v", h.Symbol, err)
			if dbErr := p.repo.RecordRefreshFailure(ctx, p.userID, h.ID, err.Error()); dbErr != nil {
				p.log.Warnf("refresh %s: record failure: %v", h.Symbol, dbErr)
			}
			continue
		}

		raw := h.Quantity.Mul(price)
		values := map[models.Currency]decimal.Decimal{}
		for _, c := range models.Currencies {
			converted, err := table.Convert(raw, h.EntryCurrency, c)
			if err != nil {
				// keep the stored snapshot when the pair is unavailable
				converted = h.Snapshot(c)
			}
			values[c] = converted
		}

		err = p.repo.UpdateHoldingPrice(ctx, p.userID, h.ID, price,
			values[models.SGD], values[models.USD], values[models.INR], time.Now().UTC())
		if err != nil {
			p.log.Warnf("refresh %s: write price: %v", h.Symbol, err)
		}
	}
}

// Snapshot recomputation is also exposed for one-off use by the manual
// refresh endpoint.
func (p *PriceRefresher) RefreshOne(ctx context.Context, id string) error {
	h, err := p.repo.GetHolding(ctx, p.userID, id)
	if err != nil {
		return err
	}
	if h.Quantity == nil {
		return nil
	}
	price, err := p.quotes.Quote(ctx, h.Symbol, h.EntryCurrency)
	if err != nil {
		if dbErr := p.repo.RecordRefreshFailure(ctx, p.userID, h.ID, err.Error()); dbErr != nil {
			p.log.Warnf("refresh %s: record failure: %v", h.Symbol, dbErr)
		}
		return err
	}
	table, tErr := p.rates.Table(ctx)
	if tErr != nil {
		table = nil
	}
	raw := h.Quantity.Mul(price)
	values := map[models.Currency]decimal.Decimal{}
	for _, c := range models.Currencies {
		converted, cErr := table.Convert(raw, h.EntryCurrency, c)
		if cErr != nil {
			converted = h.Snapshot(c)
		}
		values[c] = converted
	}
	return p.repo.UpdateHoldingPrice(ctx, p.userID, h.ID, price,
		values[models.SGD], values[models.USD], values[models.INR], time.Now().UTC())
}
