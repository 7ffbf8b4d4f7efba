package valuation

import (
	"github.com/shopspring/decimal"

	"folio/internal/models"
)

// Breakdown is the result of valuing a holding set in one display currency.
// Total always equals the sum over PerCategory: holdings with an unrecognized
// category land in the Other bucket instead of vanishing from the breakdown.
type Breakdown struct {
	Total       decimal.Decimal
	PerHolding  map[string]decimal.Decimal
	PerCategory map[models.Category]decimal.Decimal
}

// Aggregate values every holding and groups the results by category.
func (v *Valuator) Aggregate(holdings []models.Holding, display models.Currency, rates RateTable) Breakdown {
	b := Breakdown{
		Total:       decimal.Zero,
		PerHolding:  make(map[string]decimal.Decimal, len(holdings)),
		PerCategory: make(map[models.Category]decimal.Decimal),
	}
	for _, h := range holdings {
		val := v.Value(h, display, rates)
		b.Total = b.Total.Add(val)
		b.PerHolding[h.ID] = val

		cat := h.Category
		if !cat.Recognized() {
			v.log.Warnf("holding %s: unrecognized category %q, counting under %s", h.Symbol, h.Category, models.CategoryOther)
			cat = models.CategoryOther
		}
		b.PerCategory[cat] = b.PerCategory[cat].Add(val)
	}
	return b
}
