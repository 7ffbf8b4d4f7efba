package tax

import "github.com/shopspring/decimal"

// Bracket is one step of a marginal rate table. UpTo is the inclusive upper
// bound of chargeable income for the step; a nil UpTo marks the open top
// bracket.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal
}

// BracketTable is an ordered marginal rate table for one jurisdiction and
// year. The estimator only ever asks it for a single marginal rate, so
// swapping in next year's constants never touches the estimator logic.
type BracketTable []Bracket

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func pct(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// SingaporeResidentBrackets is the resident rate schedule used for the
// marginal estimate (YA 2024 onwards).
var SingaporeResidentBrackets = BracketTable{
	{UpTo: bound(20000), Rate: pct(0)},
	{UpTo: bound(30000), Rate: pct(2)},
	{UpTo: bound(40000), Rate: pct(3.5)},
	{UpTo: bound(80000), Rate: pct(7)},
	{UpTo: bound(120000), Rate: pct(11.5)},
	{UpTo: bound(160000), Rate: pct(15)},
	{UpTo: bound(200000), Rate: pct(18)},
	{UpTo: bound(240000), Rate: pct(19)},
	{UpTo: bound(280000), Rate: pct(19.5)},
	{UpTo: bound(320000), Rate: pct(20)},
	{UpTo: bound(500000), Rate: pct(22)},
	{UpTo: bound(1000000), Rate: pct(23)},
	{UpTo: nil, Rate: pct(24)},
}

// MarginalRate returns the percentage rate of the bracket the income falls
// into. Non-positive income sits in the zero bracket.
func (t BracketTable) MarginalRate(income decimal.Decimal) decimal.Decimal {
	for _, b := range t {
		if b.UpTo == nil || income.LessThanOrEqual(*b.UpTo) {
			return b.Rate
		}
	}
	return decimal.Zero
}
