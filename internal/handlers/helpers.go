package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"folio/internal/models"
)

var errUnsupportedCurrency = errors.New("unsupported currency")

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", s)
	}
	return &d, nil
}

func requiredOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}

func atoiParam(c *gin.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func displayCurrency(c *gin.Context) (models.Currency, error) {
	cur := models.Currency(c.DefaultQuery("currency", string(models.SGD)))
	if !cur.Supported() {
		return cur, errUnsupportedCurrency
	}
	return cur, nil
}

// defaultStrategy is the target set used before the user has saved one.
func defaultStrategy() models.PortfolioStrategy {
	return models.PortfolioStrategy{
		Name:               "default",
		TargetCore:         decimal.NewFromInt(40),
		TargetGrowth:       decimal.NewFromInt(30),
		TargetHedge:        decimal.NewFromInt(20),
		TargetLiquidity:    decimal.NewFromInt(10),
		RebalanceThreshold: decimal.NewFromInt(5),
	}
}
