package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/tax"
	"folio/internal/valuation"
)

// defaultAnnualIncome is the conservative fallback used when no yearly row
// exists yet; the estimator itself never assumes an income.
var defaultAnnualIncome = decimal.NewFromInt(120000)

type holdingValue struct {
	models.Holding
	Value string `json:"value"`
}

// GetDashboard values the whole portfolio in the requested display currency
// and attaches the net-worth trend.
func (h *Handler) GetDashboard(c *gin.Context) {
	currency, err := displayCurrency(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	holdings, err := h.repo.ListHoldings(ctx, h.userID)
	if err != nil {
		h.log.Errorf("dashboard: list holdings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	table, err := h.rates.Table(ctx)
	if err != nil {
		h.log.Warnf("dashboard: rate table unavailable, using snapshots: %v", err)
		table = nil
	}

	breakdown := h.valuator.Aggregate(holdings, currency, table)

	rows := make([]holdingValue, 0, len(holdings))
	for _, hl := range holdings {
		rows = append(rows, holdingValue{Holding: hl, Value: breakdown.PerHolding[hl.ID].StringFixed(2)})
	}

	perCategory := map[string]string{}
	for cat, v := range breakdown.PerCategory {
		perCategory[string(cat)] = v.StringFixed(2)
	}

	trend, err := h.repo.ListYearly(ctx, h.userID)
	if err != nil {
		h.log.Warnf("dashboard: yearly trend unavailable: %v", err)
		trend = []models.YearlyData{}
	}

	c.JSON(http.StatusOK, gin.H{
		"currency":     currency,
		"total":        breakdown.Total.StringFixed(2),
		"holdings":     rows,
		"per_category": perCategory,
		"trend":        trend,
	})
}

// GetIntelligence composes the allocation-gap reports with the SRS tax
// estimate into one insight payload.
func (h *Handler) GetIntelligence(c *gin.Context) {
	currency, err := displayCurrency(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := tax.EmploymentStatus(c.DefaultQuery("status", string(tax.StatusEmploymentPass)))
	switch status {
	case tax.StatusEmploymentPass, tax.StatusCitizen, tax.StatusPR:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown employment status"})
		return
	}
	ctx := c.Request.Context()

	holdings, err := h.repo.ListHoldings(ctx, h.userID)
	if err != nil {
		h.log.Errorf("intelligence: list holdings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	table, err := h.rates.Table(ctx)
	if err != nil {
		h.log.Warnf("intelligence: rate table unavailable, using snapshots: %v", err)
		table = nil
	}
	breakdown := h.valuator.Aggregate(holdings, currency, table)

	strategy, err := h.repo.ActiveStrategy(ctx, h.userID)
	if err != nil {
		if !database.ErrNotFound(err) {
			h.log.Errorf("intelligence: strategy lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		strategy = defaultStrategy()
	}
	reports := valuation.AnalyzeAllocation(breakdown.PerCategory, breakdown.Total, strategy.Targets(), strategy.RebalanceThreshold)

	income := defaultAnnualIncome
	srs := decimal.Zero
	if latest, err := h.repo.LatestYearly(ctx, h.userID); err == nil {
		if latest.Income.IsPositive() {
			income = latest.Income
		}
		srs = latest.SRSContribution
	} else if !database.ErrNotFound(err) {
		h.log.Warnf("intelligence: yearly lookup failed, using default income: %v", err)
	}
	taxReport := h.estimator.Estimate(income, srs, status, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"currency":   currency,
		"total":      breakdown.Total.StringFixed(2),
		"allocation": reports,
		"tax":        taxReport,
	})
}
