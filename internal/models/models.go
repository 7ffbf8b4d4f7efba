package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one of the supported display/entry currencies.
type Currency string

const (
	SGD Currency = "SGD"
	USD Currency = "USD"
	INR Currency = "INR"
)

// Currencies lists every supported currency.
var Currencies = []Currency{SGD, USD, INR}

func (c Currency) Supported() bool {
	for _, s := range Currencies {
		if c == s {
			return true
		}
	}
	return false
}

// Category is one of the fixed allocation buckets. Other catches holdings
// whose stored category is not recognized so totals still reconcile.
type Category string

const (
	CategoryCore      Category = "Core"
	CategoryGrowth    Category = "Growth"
	CategoryHedge     Category = "Hedge"
	CategoryLiquidity Category = "Liquidity"
	CategoryOther     Category = "Other"
)

// Categories lists the four buckets a strategy allocates across; Other is
// excluded because it never carries a target.
var Categories = []Category{CategoryCore, CategoryGrowth, CategoryHedge, CategoryLiquidity}

func (c Category) Recognized() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Holding is one position. Quantity and prices are null for cash-like rows;
// the three Value fields are cached snapshots refreshed by the price loop and
// used as a fallback when live quantity×price data is missing.
type Holding struct {
	ID             string           `db:"id" json:"id"`
	Symbol         string           `db:"symbol" json:"symbol"`
	Name           string           `db:"name" json:"name"`
	Category       Category         `db:"category" json:"category"`
	Location       string           `db:"location" json:"location"`
	EntryCurrency  Currency         `db:"entry_currency" json:"entry_currency"`
	Quantity       *decimal.Decimal `db:"quantity" json:"quantity,omitempty"`
	UnitCost       *decimal.Decimal `db:"unit_cost" json:"unit_cost,omitempty"`
	CurrentPrice   *decimal.Decimal `db:"current_price" json:"current_price,omitempty"`
	ValueSGD       decimal.Decimal  `db:"value_sgd" json:"value_sgd"`
	ValueUSD       decimal.Decimal  `db:"value_usd" json:"value_usd"`
	ValueINR       decimal.Decimal  `db:"value_inr" json:"value_inr"`
	PriceUpdatedAt *time.Time       `db:"price_updated_at" json:"price_updated_at,omitempty"`
	RefreshError   *string          `db:"refresh_error" json:"refresh_error,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// Snapshot returns the cached value for the given display currency.
func (h Holding) Snapshot(c Currency) decimal.Decimal {
	switch c {
	case USD:
		return h.ValueUSD
	case INR:
		return h.ValueINR
	default:
		return h.ValueSGD
	}
}

// ExchangeRate is one directed pair. The six SGD/USD/INR pairs are stored
// independently; mutual consistency is not enforced.
type ExchangeRate struct {
	FromCurrency Currency        `db:"from_currency" json:"from_currency"`
	ToCurrency   Currency        `db:"to_currency" json:"to_currency"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	Source       string          `db:"source" json:"source"` // "api" or "manual"
	FetchedAt    time.Time       `db:"fetched_at" json:"fetched_at"`
}

// YearlyData is one row per calendar year backing the net-worth trend.
type YearlyData struct {
	Year            int             `db:"year" json:"year"`
	Income          decimal.Decimal `db:"income" json:"income"`
	Expenses        decimal.Decimal `db:"expenses" json:"expenses"`
	Savings         decimal.Decimal `db:"savings" json:"savings"`
	SRSContribution decimal.Decimal `db:"srs_contribution" json:"srs_contribution"`
	NetWorth        decimal.Decimal `db:"net_worth" json:"net_worth"`
	MarketGains     decimal.Decimal `db:"market_gains" json:"market_gains"`
	ReturnPercent   decimal.Decimal `db:"return_percent" json:"return_percent"`
}

// PortfolioStrategy is one version of the target allocation. Old versions are
// deactivated, never deleted.
type PortfolioStrategy struct {
	ID                 string          `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	TargetCore         decimal.Decimal `db:"target_core" json:"target_core"`
	TargetGrowth       decimal.Decimal `db:"target_growth" json:"target_growth"`
	TargetHedge        decimal.Decimal `db:"target_hedge" json:"target_hedge"`
	TargetLiquidity    decimal.Decimal `db:"target_liquidity" json:"target_liquidity"`
	RebalanceThreshold decimal.Decimal `db:"rebalance_threshold" json:"rebalance_threshold"`
	Active             bool            `db:"active" json:"active"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// Targets returns the per-category target percentages.
func (s PortfolioStrategy) Targets() map[Category]decimal.Decimal {
	return map[Category]decimal.Decimal{
		CategoryCore:      s.TargetCore,
		CategoryGrowth:    s.TargetGrowth,
		CategoryHedge:     s.TargetHedge,
		CategoryLiquidity: s.TargetLiquidity,
	}
}
