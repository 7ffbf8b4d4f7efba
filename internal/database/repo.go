package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/models"
)

// DefaultUserID owns every row in the single-user deployment.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

func (r *Repo) EnsureUserExists(ctx context.Context, userID, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, userID, name)
	return err
}

// --- holdings ---

func (r *Repo) CreateHolding(ctx context.Context, userID string, h models.Holding) (string, error) {
	id := uuid.NewString()
	q := `INSERT INTO holdings (id, user_id, symbol, name, category, location, entry_currency, quantity, unit_cost, current_price, value_sgd, value_usd, value_inr, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err := r.db.ExecContext(ctx, q, id, userID, h.Symbol, h.Name, h.Category, h.Location, h.EntryCurrency,
		decimalArg(h.Quantity), decimalArg(h.UnitCost), decimalArg(h.CurrentPrice),
		h.ValueSGD.String(), h.ValueUSD.String(), h.ValueINR.String())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) GetHolding(ctx context.Context, userID, id string) (models.Holding, error) {
	var h models.Holding
	err := r.db.GetContext(ctx, &h, `SELECT id, symbol, name, category, location, entry_currency, quantity, unit_cost, current_price, value_sgd, value_usd, value_inr, price_updated_at, refresh_error, created_at, updated_at FROM holdings WHERE user_id = $1 AND id = $2`, userID, id)
	return h, err
}

func (r *Repo) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT id, symbol, name, category, location, entry_currency, quantity, unit_cost, current_price, value_sgd, value_usd, value_inr, price_updated_at, refresh_error, created_at, updated_at FROM holdings WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := rows.StructScan(&h); err != nil {
			r.log.Warnf("scan holding failed: %v", err)
			continue
		}
		res = append(res, h)
	}
	return res, nil
}

// UpdateHolding rewrites the editable fields. An edit that drives quantity to
// zero or below removes the position instead; the returned flag reports
// whether the row still exists.
func (r *Repo) UpdateHolding(ctx context.Context, userID string, h models.Holding) (bool, error) {
	if h.Quantity != nil && !h.Quantity.IsPositive() {
		if err := r.DeleteHolding(ctx, userID, h.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	q := `UPDATE holdings SET symbol=$3, name=$4, category=$5, location=$6, entry_currency=$7, quantity=$8, unit_cost=$9, current_price=$10, value_sgd=$11, value_usd=$12, value_inr=$13, updated_at=now()
	      WHERE user_id=$1 AND id=$2`
	res, err := r.db.ExecContext(ctx, q, userID, h.ID, h.Symbol, h.Name, h.Category, h.Location, h.EntryCurrency,
		decimalArg(h.Quantity), decimalArg(h.UnitCost), decimalArg(h.CurrentPrice),
		h.ValueSGD.String(), h.ValueUSD.String(), h.ValueINR.String())
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, sql.ErrNoRows
	}
	return true, nil
}

func (r *Repo) DeleteHolding(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateHoldingPrice writes one price-refresh result: the live price plus the
// three recomputed snapshot values, clearing any previous failure note.
func (r *Repo) UpdateHoldingPrice(ctx context.Context, userID, id string, price, valueSGD, valueUSD, valueINR decimal.Decimal, ts time.Time) error {
	q := `UPDATE holdings SET current_price=$3::numeric, value_sgd=$4::numeric, value_usd=$5::numeric, value_inr=$6::numeric, price_updated_at=$7, refresh_error=NULL, updated_at=now()
	      WHERE user_id=$1 AND id=$2`
	_, err := r.db.ExecContext(ctx, q, userID, id, price.String(), valueSGD.StringFixed(4), valueUSD.StringFixed(4), valueINR.StringFixed(4), ts)
	return err
}

// RecordRefreshFailure keeps one failure reason per holding; the next
// successful refresh clears it.
func (r *Repo) RecordRefreshFailure(ctx context.Context, userID, id, reason string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE holdings SET refresh_error=$3, updated_at=now() WHERE user_id=$1 AND id=$2`, userID, id, reason)
	return err
}

// --- exchange rates ---

func (r *Repo) UpsertRate(ctx context.Context, rate models.ExchangeRate) error {
	q := `INSERT INTO exchange_rates (from_currency, to_currency, rate, source, fetched_at) VALUES ($1, $2, $3::numeric, $4, $5)
	      ON CONFLICT (from_currency, to_currency) DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at`
	_, err := r.db.ExecContext(ctx, q, rate.FromCurrency, rate.ToCurrency, rate.Rate.String(), rate.Source, rate.FetchedAt)
	return err
}

func (r *Repo) ListRates(ctx context.Context) ([]models.ExchangeRate, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT from_currency, to_currency, rate, source, fetched_at FROM exchange_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []models.ExchangeRate{}
	for rows.Next() {
		var e models.ExchangeRate
		if err := rows.StructScan(&e); err != nil {
			r.log.Warnf("scan exchange rate failed: %v", err)
			continue
		}
		res = append(res, e)
	}
	return res, nil
}

// OldestRateFetch reports when the stalest stored pair was fetched, so the
// rate service can decide whether the whole table is still fresh.
func (r *Repo) OldestRateFetch(ctx context.Context) (time.Time, int, error) {
	var row struct {
		Oldest sql.NullTime `db:"oldest"`
		N      int          `db:"n"`
	}
	if err := r.db.GetContext(ctx, &row, `SELECT MIN(fetched_at) AS oldest, COUNT(*) AS n FROM exchange_rates`); err != nil {
		return time.Time{}, 0, err
	}
	if !row.Oldest.Valid {
		return time.Time{}, row.N, nil
	}
	return row.Oldest.Time, row.N, nil
}

// --- yearly data ---

func (r *Repo) UpsertYearly(ctx context.Context, userID string, y models.YearlyData) error {
	q := `INSERT INTO yearly_data (user_id, year, income, expenses, savings, srs_contribution, net_worth, market_gains, return_percent)
	      VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric)
	      ON CONFLICT (user_id, year) DO UPDATE SET income=EXCLUDED.income, expenses=EXCLUDED.expenses, savings=EXCLUDED.savings, srs_contribution=EXCLUDED.srs_contribution, net_worth=EXCLUDED.net_worth, market_gains=EXCLUDED.market_gains, return_percent=EXCLUDED.return_percent`
	_, err := r.db.ExecContext(ctx, q, userID, y.Year, y.Income.String(), y.Expenses.String(), y.Savings.String(), y.SRSContribution.String(), y.NetWorth.String(), y.MarketGains.String(), y.ReturnPercent.String())
	return err
}

func (r *Repo) ListYearly(ctx context.Context, userID string) ([]models.YearlyData, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT year, income, expenses, savings, srs_contribution, net_worth, market_gains, return_percent FROM yearly_data WHERE user_id = $1 ORDER BY year ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []models.YearlyData{}
	for rows.Next() {
		var y models.YearlyData
		if err := rows.StructScan(&y); err != nil {
			r.log.Warnf("scan yearly row failed: %v", err)
			continue
		}
		res = append(res, y)
	}
	return res, nil
}

func (r *Repo) LatestYearly(ctx context.Context, userID string) (models.YearlyData, error) {
	var y models.YearlyData
	err := r.db.GetContext(ctx, &y, `SELECT year, income, expenses, savings, srs_contribution, net_worth, market_gains, return_percent FROM yearly_data WHERE user_id = $1 ORDER BY year DESC LIMIT 1`, userID)
	return y, err
}

// --- portfolio strategies ---

func (r *Repo) ActiveStrategy(ctx context.Context, userID string) (models.PortfolioStrategy, error) {
	var s models.PortfolioStrategy
	err := r.db.GetContext(ctx, &s, `SELECT id, name, target_core, target_growth, target_hedge, target_liquidity, rebalance_threshold, active, created_at FROM portfolio_strategies WHERE user_id = $1 AND active ORDER BY created_at DESC LIMIT 1`, userID)
	return s, err
}

// ActivateStrategy deactivates the current version and inserts the new one in
// a single transaction. History is retained, never deleted.
func (r *Repo) ActivateStrategy(ctx context.Context, userID string, s models.PortfolioStrategy) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE portfolio_strategies SET active = FALSE WHERE user_id = $1 AND active`, userID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	q := `INSERT INTO portfolio_strategies (id, user_id, name, target_core, target_growth, target_hedge, target_liquidity, rebalance_threshold, active, created_at)
	      VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, TRUE, now())`
	if _, err := tx.ExecContext(ctx, q, id, userID, s.Name, s.TargetCore.String(), s.TargetGrowth.String(), s.TargetHedge.String(), s.TargetLiquidity.String(), s.RebalanceThreshold.String()); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// decimalArg renders an optional decimal as a nullable SQL argument.
func decimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// ErrNotFound reports whether err means the row was absent.
func ErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
