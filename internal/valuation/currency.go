package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"folio/internal/models"
)

// ErrNoRate is returned when the rate table has no direct entry for a pair.
var ErrNoRate = fmt.Errorf("no direct exchange rate for pair")

// RateTable is an immutable snapshot of directed conversion rates keyed by
// PairKey. Six pairs cover the supported currencies; cross-rate triangulation
// is never attempted.
type RateTable map[string]decimal.Decimal

func PairKey(from, to models.Currency) string {
	return string(from) + "_" + string(to)
}

// Convert multiplies amount by the direct from→to rate. Identity when the
// currencies match, so that path needs no table at all.
func (t RateTable) Convert(amount decimal.Decimal, from, to models.Currency) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, ok := t[PairKey(from, to)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s→%s", ErrNoRate, from, to)
	}
	return amount.Mul(rate), nil
}
