package database

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"folio/internal/models"
)

func setupDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	files := []string{"../../migrations/0001_init.up.sql"}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read migration %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Logf("exec migration %s: %v", f, err)
		}
	}
	return db
}

func setupRepo(t *testing.T) (*Repo, *sqlx.DB) {
	db := setupDB(t)
	logger := logrus.New()
	r := New(db, logger)
	if err := r.EnsureUserExists(context.Background(), DefaultUserID, "test"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	return r, db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestHoldingLifecycle(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-LIFECYCLE'`, DefaultUserID)

	h := models.Holding{
		Symbol:        "TEST-LIFECYCLE",
		Name:          "lifecycle fixture",
		Category:      models.CategoryGrowth,
		Location:      "IBKR",
		EntryCurrency: models.USD,
		Quantity:      decp("10"),
		UnitCost:      decp("100"),
		CurrentPrice:  decp("120"),
		ValueUSD:      dec("1200"),
	}
	id, err := r.CreateHolding(ctx, DefaultUserID, h)
	if err != nil {
		t.Fatalf("create holding: %v", err)
	}

	got, err := r.GetHolding(ctx, DefaultUserID, id)
	if err != nil {
		t.Fatalf("get holding: %v", err)
	}
	if got.Symbol != "TEST-LIFECYCLE" || got.Quantity == nil || !got.Quantity.Equal(dec("10")) {
		t.Fatalf("unexpected holding back: %+v", got)
	}

	got.Name = "renamed"
	kept, err := r.UpdateHolding(ctx, DefaultUserID, got)
	if err != nil {
		t.Fatalf("update holding: %v", err)
	}
	if !kept {
		t.Fatal("expected holding kept after rename")
	}

	// an edit driving quantity to zero removes the position
	got.Quantity = decp("0")
	kept, err = r.UpdateHolding(ctx, DefaultUserID, got)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if kept {
		t.Fatal("expected holding removed when quantity reached zero")
	}
	if _, err := r.GetHolding(ctx, DefaultUserID, id); !ErrNotFound(err) {
		t.Fatalf("expected not-found after zero-quantity edit, got %v", err)
	}
}

func TestUpdateHoldingPriceClearsFailure(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-REFRESH'`, DefaultUserID)
	id, err := r.CreateHolding(ctx, DefaultUserID, models.Holding{
		Symbol: "TEST-REFRESH", Category: models.CategoryCore, EntryCurrency: models.USD,
		Quantity: decp("5"), CurrentPrice: decp("10"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.RecordRefreshFailure(ctx, DefaultUserID, id, "feed timeout"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	got, _ := r.GetHolding(ctx, DefaultUserID, id)
	if got.RefreshError == nil || *got.RefreshError != "feed timeout" {
		t.Fatalf("expected stored failure reason, got %+v", got.RefreshError)
	}

	err = r.UpdateHoldingPrice(ctx, DefaultUserID, id, dec("11"), dec("74.25"), dec("55"), dec("4611.75"), got.UpdatedAt)
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	got, _ = r.GetHolding(ctx, DefaultUserID, id)
	if got.RefreshError != nil {
		t.Fatal("expected failure reason cleared by successful refresh")
	}
	if !got.ValueSGD.Equal(dec("74.25")) {
		t.Fatalf("snapshot not updated: %s", got.ValueSGD)
	}

	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-REFRESH'`, DefaultUserID)
}

func TestRateUpsertOverwrites(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	first := models.ExchangeRate{FromCurrency: models.USD, ToCurrency: models.SGD, Rate: dec("1.30"), Source: "api"}
	if err := r.UpsertRate(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second := first
	second.Rate = dec("1.35")
	second.Source = "manual"
	if err := r.UpsertRate(ctx, second); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	rows, err := r.ListRates(ctx)
	if err != nil {
		t.Fatalf("list rates: %v", err)
	}
	for _, row := range rows {
		if row.FromCurrency == models.USD && row.ToCurrency == models.SGD {
			if !row.Rate.Equal(dec("1.35")) || row.Source != "manual" {
				t.Fatalf("expected overwritten rate, got %+v", row)
			}
			return
		}
	}
	t.Fatal("USD→SGD pair missing")
}

func TestActivateStrategyKeepsSingleActive(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	s := models.PortfolioStrategy{
		Name:       "first",
		TargetCore: dec("40"), TargetGrowth: dec("30"),
		TargetHedge: dec("20"), TargetLiquidity: dec("10"),
		RebalanceThreshold: dec("5"),
	}
	if _, err := r.ActivateStrategy(ctx, DefaultUserID, s); err != nil {
		t.Fatalf("activate first: %v", err)
	}
	s.Name = "second"
	s.TargetCore, s.TargetGrowth = dec("50"), dec("20")
	id2, err := r.ActivateStrategy(ctx, DefaultUserID, s)
	if err != nil {
		t.Fatalf("activate second: %v", err)
	}

	active, err := r.ActiveStrategy(ctx, DefaultUserID)
	if err != nil {
		t.Fatalf("active strategy: %v", err)
	}
	if active.ID != id2 || active.Name != "second" {
		t.Fatalf("expected second strategy active, got %+v", active)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM portfolio_strategies WHERE user_id = $1 AND active`, DefaultUserID); err != nil {
		t.Fatalf("count active: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one active strategy, got %d", n)
	}
	var total int
	if err := db.Get(&total, `SELECT COUNT(*) FROM portfolio_strategies WHERE user_id = $1`, DefaultUserID); err != nil {
		t.Fatalf("count all: %v", err)
	}
	if total < 2 {
		t.Fatalf("expected history retained, got %d rows", total)
	}
}

func TestYearlyUpsertAndLatest(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	y := models.YearlyData{Year: 2030, Income: dec("150000"), SRSContribution: dec("10000"), NetWorth: dec("400000")}
	if err := r.UpsertYearly(ctx, DefaultUserID, y); err != nil {
		t.Fatalf("upsert yearly: %v", err)
	}
	y.Income = dec("160000")
	if err := r.UpsertYearly(ctx, DefaultUserID, y); err != nil {
		t.Fatalf("upsert yearly replay: %v", err)
	}

	latest, err := r.LatestYearly(ctx, DefaultUserID)
	if err != nil {
		t.Fatalf("latest yearly: %v", err)
	}
	if latest.Year != 2030 || !latest.Income.Equal(dec("160000")) {
		t.Fatalf("unexpected latest row: %+v", latest)
	}
}
