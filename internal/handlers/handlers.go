package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/tax"
	"folio/internal/valuation"
)

type Handler struct {
	repo      *database.Repo
	rates     *service.RateService
	refresher *service.PriceRefresher
	valuator  *valuation.Valuator
	estimator *tax.Estimator
	log       *logrus.Logger
	userID    string
}

func NewHandler(r *database.Repo, rates *service.RateService, refresher *service.PriceRefresher, v *valuation.Valuator, e *tax.Estimator, log *logrus.Logger) *Handler {
	return &Handler{
		repo:      r,
		rates:     rates,
		refresher: refresher,
		valuator:  v,
		estimator: e,
		log:       log,
		userID:    database.DefaultUserID,
	}
}

// HoldingRequest carries decimals as strings so the client controls
// precision; empty means absent (cash-like rows have no quantity).
type HoldingRequest struct {
	Symbol        string `json:"symbol" binding:"required"`
	Name          string `json:"name"`
	Category      string `json:"category" binding:"required"`
	Location      string `json:"location"`
	EntryCurrency string `json:"entry_currency" binding:"required"`
	Quantity      string `json:"quantity"`
	UnitCost      string `json:"unit_cost"`
	CurrentPrice  string `json:"current_price"`
	ValueSGD      string `json:"value_sgd"`
	ValueUSD      string `json:"value_usd"`
	ValueINR      string `json:"value_inr"`
}

func (req HoldingRequest) toModel() (models.Holding, error) {
	h := models.Holding{
		Symbol:        req.Symbol,
		Name:          req.Name,
		Category:      models.Category(req.Category),
		Location:      req.Location,
		EntryCurrency: models.Currency(req.EntryCurrency),
	}
	if !h.EntryCurrency.Supported() {
		return h, errUnsupportedCurrency
	}
	var err error
	if h.Quantity, err = optionalDecimal(req.Quantity); err != nil {
		return h, err
	}
	if h.UnitCost, err = optionalDecimal(req.UnitCost); err != nil {
		return h, err
	}
	if h.CurrentPrice, err = optionalDecimal(req.CurrentPrice); err != nil {
		return h, err
	}
	if h.ValueSGD, err = requiredOrZero(req.ValueSGD); err != nil {
		return h, err
	}
	if h.ValueUSD, err = requiredOrZero(req.ValueUSD); err != nil {
		return h, err
	}
	if h.ValueINR, err = requiredOrZero(req.ValueINR); err != nil {
		return h, err
	}
	return h, nil
}

func (h *Handler) PostHolding(c *gin.Context) {
	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid holding body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !m.Category.Recognized() {
		h.log.Warnf("holding %s created with unrecognized category %q", m.Symbol, m.Category)
	}
	id, err := h.repo.CreateHolding(c.Request.Context(), h.userID, m)
	if err != nil {
		h.log.Errorf("create holding failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) ListHoldings(c *gin.Context) {
	rows, err := h.repo.ListHoldings(c.Request.Context(), h.userID)
	if err != nil {
		h.log.Errorf("list holdings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) PutHolding(c *gin.Context) {
	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid holding body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = c.Param("id")
	kept, err := h.repo.UpdateHolding(c.Request.Context(), h.userID, m)
	if err != nil {
		if database.ErrNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
			return
		}
		h.log.Errorf("update holding failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !kept {
		c.JSON(http.StatusOK, gin.H{"id": m.ID, "status": "deleted", "reason": "quantity reached zero"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": m.ID, "status": "updated"})
}

func (h *Handler) DeleteHolding(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.DeleteHolding(c.Request.Context(), h.userID, id); err != nil {
		if database.ErrNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
			return
		}
		h.log.Errorf("delete holding failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *Handler) RefreshHolding(c *gin.Context) {
	id := c.Param("id")
	if err := h.refresher.RefreshOne(c.Request.Context(), id); err != nil {
		if database.ErrNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
			return
		}
		h.log.Warnf("refresh holding %s failed: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "price refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "refreshed"})
}

// --- exchange rates ---

func (h *Handler) GetRates(c *gin.Context) {
	rows, err := h.repo.ListRates(c.Request.Context())
	if err != nil {
		h.log.Errorf("list rates failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type RateRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
	Rate string `json:"rate" binding:"required"`
}

func (h *Handler) PutRate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to := models.Currency(req.From), models.Currency(req.To)
	if !from.Supported() || !to.Supported() || from == to {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency pair"})
		return
	}
	value, err := decimal.NewFromString(req.Rate)
	if err != nil || !value.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate value"})
		return
	}
	if err := h.rates.SetManual(c.Request.Context(), from, to, value); err != nil {
		h.log.Errorf("manual rate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stored"})
}

func (h *Handler) RefreshRates(c *gin.Context) {
	h.rates.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// --- yearly data ---

func (h *Handler) ListYearly(c *gin.Context) {
	rows, err := h.repo.ListYearly(c.Request.Context(), h.userID)
	if err != nil {
		h.log.Errorf("list yearly failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type YearlyRequest struct {
	Income          string `json:"income"`
	Expenses        string `json:"expenses"`
	Savings         string `json:"savings"`
	SRSContribution string `json:"srs_contribution"`
	NetWorth        string `json:"net_worth"`
	MarketGains     string `json:"market_gains"`
	ReturnPercent   string `json:"return_percent"`
}

func (h *Handler) PutYearly(c *gin.Context) {
	year, err := atoiParam(c, "year")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	var req YearlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	y := models.YearlyData{Year: year}
	fields := []struct {
		src string
		dst *decimal.Decimal
	}{
		{req.Income, &y.Income},
		{req.Expenses, &y.Expenses},
		{req.Savings, &y.Savings},
		{req.SRSContribution, &y.SRSContribution},
		{req.NetWorth, &y.NetWorth},
		{req.MarketGains, &y.MarketGains},
		{req.ReturnPercent, &y.ReturnPercent},
	}
	for _, f := range fields {
		v, err := requiredOrZero(f.src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		*f.dst = v
	}
	if err := h.repo.UpsertYearly(c.Request.Context(), h.userID, y); err != nil {
		h.log.Errorf("upsert yearly failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "status": "stored"})
}

// --- strategy ---

func (h *Handler) GetStrategy(c *gin.Context) {
	s, err := h.repo.ActiveStrategy(c.Request.Context(), h.userID)
	if err != nil {
		if database.ErrNotFound(err) {
			c.JSON(http.StatusOK, defaultStrategy())
			return
		}
		h.log.Errorf("get strategy failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, s)
}

type StrategyRequest struct {
	Name               string `json:"name"`
	TargetCore         string `json:"target_core" binding:"required"`
	TargetGrowth       string `json:"target_growth" binding:"required"`
	TargetHedge        string `json:"target_hedge" binding:"required"`
	TargetLiquidity    string `json:"target_liquidity" binding:"required"`
	RebalanceThreshold string `json:"rebalance_threshold" binding:"required"`
}

func (h *Handler) PutStrategy(c *gin.Context) {
	var req StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := models.PortfolioStrategy{Name: req.Name}
	fields := []struct {
		src string
		dst *decimal.Decimal
	}{
		{req.TargetCore, &s.TargetCore},
		{req.TargetGrowth, &s.TargetGrowth},
		{req.TargetHedge, &s.TargetHedge},
		{req.TargetLiquidity, &s.TargetLiquidity},
		{req.RebalanceThreshold, &s.RebalanceThreshold},
	}
	for _, f := range fields {
		v, err := requiredOrZero(f.src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		*f.dst = v
	}
	sum := s.TargetCore.Add(s.TargetGrowth).Add(s.TargetHedge).Add(s.TargetLiquidity)
	if !sum.Equal(decimal.NewFromInt(100)) {
		h.log.Warnf("strategy targets sum to %s, not 100; storing anyway", sum.String())
	}
	id, err := h.repo.ActivateStrategy(c.Request.Context(), h.userID, s)
	if err != nil {
		h.log.Errorf("activate strategy failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "activated", "targets_sum": sum.String()})
}
