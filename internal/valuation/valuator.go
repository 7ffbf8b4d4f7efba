package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/models"
)

// driftTolerance is how far a live-computed value may sit from the stored
// snapshot before the drift warning fires.
var driftTolerance = decimal.NewFromFloat(0.01)

// Valuator prices a single holding in a display currency. The logger only
// carries drift warnings; it never affects the returned value.
type Valuator struct {
	log *logrus.Logger
}

func NewValuator(log *logrus.Logger) *Valuator {
	return &Valuator{log: log}
}

// Value resolves a holding's worth in the display currency.
//
// Preference order: live quantity×price in the entry currency, converted via
// the rate table when the currencies differ; the stored snapshot value
// otherwise. A nil or incomplete table is not an error — the snapshot is the
// fallback for any pair it cannot serve. When quantity or price is missing
// the snapshot is the only source.
func (v *Valuator) Value(h models.Holding, display models.Currency, rates RateTable) decimal.Decimal {
	snapshot := h.Snapshot(display)

	if h.Quantity == nil || h.CurrentPrice == nil {
		return snapshot
	}
	raw := h.Quantity.Mul(*h.CurrentPrice)

	var live decimal.Decimal
	if h.EntryCurrency == display {
		live = raw
	} else {
		converted, err := rates.Convert(raw, h.EntryCurrency, display)
		if err != nil {
			return snapshot
		}
		live = converted
	}

	if live.Sub(snapshot).Abs().GreaterThan(driftTolerance) {
		v.log.Warnf("holding %s: live value %s drifted from stored %s snapshot %s",
			h.Symbol, live.StringFixed(4), display, snapshot.StringFixed(4))
	}
	return live
}
