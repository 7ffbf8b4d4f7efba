package tax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMarginalRate(t *testing.T) {
	cases := []struct {
		income string
		rate   string
	}{
		{"0", "0"},
		{"20000", "0"},
		{"20001", "2"},
		{"80000", "7"},
		{"120000", "11.5"},
		{"120001", "15"},
		{"320001", "22"},
		{"2000000", "24"},
	}
	for _, c := range cases {
		got := SingaporeResidentBrackets.MarginalRate(dec(c.income))
		assert.True(t, got.Equal(dec(c.rate)), "income %s: got %s want %s", c.income, got, c.rate)
	}
}

func TestEstimateEmploymentPassExample(t *testing.T) {
	e := NewEstimator()
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	rep := e.Estimate(dec("120000"), decimal.Zero, StatusEmploymentPass, now)

	assert.True(t, rep.MarginalRatePercent.Equal(dec("11.5")))
	assert.True(t, rep.ContributionCeiling.Equal(dec("35700")))
	assert.True(t, rep.RemainingRoom.Equal(dec("35700")))
	assert.True(t, rep.PotentialTaxSavings.Equal(dec("4105.5")), "got %s", rep.PotentialTaxSavings)
}

func TestCeilingByStatus(t *testing.T) {
	assert.True(t, Ceiling(StatusEmploymentPass).Equal(dec("35700")))
	assert.True(t, Ceiling(StatusCitizen).Equal(dec("15300")))
	assert.True(t, Ceiling(StatusPR).Equal(dec("15300")))
}

func TestRemainingRoomClampsAtZero(t *testing.T) {
	e := NewEstimator()
	now := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	rep := e.Estimate(dec("200000"), dec("20000"), StatusCitizen, now)

	assert.True(t, rep.RemainingRoom.IsZero())
	assert.True(t, rep.PotentialTaxSavings.IsZero())
	// full room would make mid-November critical, but an exhausted ceiling is always low
	assert.Equal(t, UrgencyLow, rep.Urgency)
}

func TestUrgencyTiers(t *testing.T) {
	e := NewEstimator()
	income, srs := dec("120000"), decimal.Zero

	cases := []struct {
		now     time.Time
		urgency string
	}{
		{time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC), UrgencyCritical},
		{time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), UrgencyHigh},
		{time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), UrgencyMedium},
		{time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), UrgencyLow},
	}
	for _, c := range cases {
		rep := e.Estimate(income, srs, StatusEmploymentPass, c.now)
		assert.Equal(t, c.urgency, rep.Urgency, "now=%s days=%d", c.now, rep.DaysToDeadline)
	}
}

func TestMonthlyTarget(t *testing.T) {
	e := NewEstimator()
	// 46 full days to Dec 31, so two 30-day months of runway
	now := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	rep := e.Estimate(dec("120000"), dec("15700"), StatusEmploymentPass, now)

	require.Equal(t, 46, rep.DaysToDeadline)
	assert.True(t, rep.RemainingRoom.Equal(dec("20000")))
	assert.True(t, rep.MonthlyTarget.Equal(dec("10000")), "got %s", rep.MonthlyTarget)
}

func TestEstimateAfterDeadline(t *testing.T) {
	e := NewEstimator()
	// late on Dec 31: zero days left, still one month of runway for the division
	now := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	rep := e.Estimate(dec("120000"), decimal.Zero, StatusEmploymentPass, now)
	assert.Equal(t, 0, rep.DaysToDeadline)
	assert.Equal(t, UrgencyCritical, rep.Urgency)
	assert.True(t, rep.MonthlyTarget.Equal(rep.RemainingRoom))
}
