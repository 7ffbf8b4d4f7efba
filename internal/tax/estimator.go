package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus selects the SRS contribution ceiling.
type EmploymentStatus string

const (
	StatusEmploymentPass EmploymentStatus = "EmploymentPass"
	StatusCitizen        EmploymentStatus = "Citizen"
	StatusPR             EmploymentStatus = "PR"
)

// Annual SRS contribution ceilings: foreigners on an Employment Pass get the
// higher cap.
var (
	ceilingForeigner = decimal.NewFromInt(35700)
	ceilingResident  = decimal.NewFromInt(15300)
)

// Urgency levels for the contribution deadline.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

// Report is a simplified single-bracket SRS optimization estimate. It is a
// planning aid, not a tax computation: one marginal rate, SRS as the only
// relief, one income source.
type Report struct {
	MarginalRatePercent decimal.Decimal `json:"marginal_rate_percent"`
	ContributionCeiling decimal.Decimal `json:"contribution_ceiling"`
	RemainingRoom       decimal.Decimal `json:"remaining_room"`
	PotentialTaxSavings decimal.Decimal `json:"potential_tax_savings"`
	DaysToDeadline      int             `json:"days_to_deadline"`
	MonthlyTarget       decimal.Decimal `json:"monthly_target"`
	Urgency             string          `json:"urgency"`
}

// Estimator pairs the bracket constants with the deadline math. Callers own
// the clock: now is always passed in.
type Estimator struct {
	Brackets BracketTable
}

func NewEstimator() *Estimator {
	return &Estimator{Brackets: SingaporeResidentBrackets}
}

// Ceiling returns the SRS cap for the employment status.
func Ceiling(status EmploymentStatus) decimal.Decimal {
	if status == StatusEmploymentPass {
		return ceilingForeigner
	}
	return ceilingResident
}

// Estimate computes remaining SRS room, the tax saved by filling it at the
// marginal rate, and how urgently the Dec 31 contribution deadline looms.
func (e *Estimator) Estimate(annualIncome, currentSRS decimal.Decimal, status EmploymentStatus, now time.Time) Report {
	rate := e.Brackets.MarginalRate(annualIncome)
	ceiling := Ceiling(status)

	room := ceiling.Sub(currentSRS)
	if room.IsNegative() {
		room = decimal.Zero
	}

	deadline := time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, now.Location())
	days := int(deadline.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}

	months := (days + 29) / 30
	if months < 1 {
		months = 1
	}

	rep := Report{
		MarginalRatePercent: rate,
		ContributionCeiling: ceiling,
		RemainingRoom:       room,
		PotentialTaxSavings: room.Mul(rate).Div(decimal.NewFromInt(100)),
		DaysToDeadline:      days,
		MonthlyTarget:       room.Div(decimal.NewFromInt(int64(months))),
		Urgency:             urgency(days, room),
	}
	return rep
}

// urgency collapses to low once there is no room left to contribute.
func urgency(days int, room decimal.Decimal) string {
	if room.IsZero() {
		return UrgencyLow
	}
	switch {
	case days < 60:
		return UrgencyCritical
	case days < 120:
		return UrgencyHigh
	case days < 240:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
