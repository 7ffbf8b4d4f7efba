package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"folio/internal/models"
)

// Allocation status values. Classification is by completion percent: a
// category sitting at 95–105% of its target is balanced, below is
// underweight, above is excess.
const (
	StatusUnderweight = "underweight"
	StatusBalanced    = "balanced"
	StatusExcess      = "excess"
)

var (
	hundred        = decimal.NewFromInt(100)
	completionLow  = decimal.NewFromInt(95)
	completionHigh = decimal.NewFromInt(105)
	bandSlight     = decimal.NewFromInt(5)
	bandSevere     = decimal.NewFromInt(20)
)

// CategoryReport compares one category's share of the portfolio against its
// target. WithinThreshold reflects the strategy's rebalance threshold and
// governs whether the callout suggests acting at all; the status label itself
// is always completion-based.
type CategoryReport struct {
	Category          models.Category `json:"category"`
	CurrentValue      decimal.Decimal `json:"current_value"`
	CurrentPercent    decimal.Decimal `json:"current_percent"`
	TargetPercent     decimal.Decimal `json:"target_percent"`
	GapPercent        decimal.Decimal `json:"gap_percent"`
	GapAmount         decimal.Decimal `json:"gap_amount"`
	CompletionPercent decimal.Decimal `json:"completion_percent"`
	Status            string          `json:"status"`
	WithinThreshold   bool            `json:"within_threshold"`
	Callout           string          `json:"callout"`
}

// AnalyzeAllocation produces one report per fixed category. Zero portfolio
// total and zero targets short-circuit to zero percentages rather than
// dividing.
func AnalyzeAllocation(perCategory map[models.Category]decimal.Decimal, total decimal.Decimal, targets map[models.Category]decimal.Decimal, rebalanceThreshold decimal.Decimal) []CategoryReport {
	reports := make([]CategoryReport, 0, len(models.Categories))
	for _, cat := range models.Categories {
		current := perCategory[cat]
		target := targets[cat]

		rep := CategoryReport{
			Category:       cat,
			CurrentValue:   current,
			TargetPercent:  target,
			CurrentPercent: decimal.Zero,
		}
		if total.IsPositive() {
			rep.CurrentPercent = current.Div(total).Mul(hundred)
		}
		rep.GapPercent = rep.CurrentPercent.Sub(target)
		rep.GapAmount = rep.GapPercent.Div(hundred).Mul(total)
		if target.IsPositive() {
			rep.CompletionPercent = rep.CurrentPercent.Div(target).Mul(hundred)
		}

		switch {
		case rep.CompletionPercent.LessThan(completionLow):
			rep.Status = StatusUnderweight
		case rep.CompletionPercent.GreaterThan(completionHigh):
			rep.Status = StatusExcess
		default:
			rep.Status = StatusBalanced
		}
		rep.WithinThreshold = rep.GapPercent.Abs().LessThanOrEqual(rebalanceThreshold)
		rep.Callout = callout(rep)
		reports = append(reports, rep)
	}
	return reports
}

// callout renders the suggestion text in three severity bands per direction.
func callout(rep CategoryReport) string {
	gap := rep.GapPercent.Abs()
	switch rep.Status {
	case StatusUnderweight:
		switch {
		case gap.GreaterThan(bandSevere):
			return fmt.Sprintf("%s is far below target: add about %s to close a %s%% shortfall", rep.Category, rep.GapAmount.Abs().StringFixed(2), gap.StringFixed(1))
		case gap.GreaterThanOrEqual(bandSlight):
			return fmt.Sprintf("%s is below target: consider adding %s over coming months", rep.Category, rep.GapAmount.Abs().StringFixed(2))
		default:
			return fmt.Sprintf("%s is slightly below target; no action needed yet", rep.Category)
		}
	case StatusExcess:
		switch {
		case gap.GreaterThan(bandSevere):
			return fmt.Sprintf("%s is far above target: trim about %s to rebalance a %s%% excess", rep.Category, rep.GapAmount.Abs().StringFixed(2), gap.StringFixed(1))
		case gap.GreaterThanOrEqual(bandSlight):
			return fmt.Sprintf("%s is above target: redirect new contributions elsewhere", rep.Category)
		default:
			return fmt.Sprintf("%s is slightly above target; no action needed yet", rep.Category)
		}
	default:
		return fmt.Sprintf("%s is on target", rep.Category)
	}
}
