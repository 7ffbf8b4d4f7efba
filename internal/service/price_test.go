package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"

	"folio/internal/database"
	"folio/internal/models"
)

func setupRepo(t *testing.T) (*database.Repo, *sqlx.DB) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	b, err := os.ReadFile("../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		t.Logf("exec migration: %v", err)
	}
	logger, _ := test.NewNullLogger()
	r := database.New(db, logger)
	if err := r.EnsureUserExists(context.Background(), database.DefaultUserID, "test"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	return r, db
}

type stubQuotes struct {
	price decimal.Decimal
	fail  bool
}

func (s stubQuotes) Quote(ctx context.Context, symbol string, currency models.Currency) (decimal.Decimal, error) {
	if s.fail {
		return decimal.Zero, fmt.Errorf("feed unavailable for %s", symbol)
	}
	return s.price, nil
}

func TestRefreshAllWritesPriceAndSnapshots(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-PRICE'`, database.DefaultUserID)

	qty := decimal.NewFromInt(10)
	id, err := repo.CreateHolding(ctx, database.DefaultUserID, models.Holding{
		Symbol: "TEST-PRICE", Category: models.CategoryCore, EntryCurrency: models.USD, Quantity: &qty,
	})
	if err != nil {
		t.Fatalf("create holding: %v", err)
	}

	store := newFakeRateStore()
	fetcher := &fakeFetcher{rate: decimal.NewFromFloat(1.35)}
	logger, _ := test.NewNullLogger()
	rates := NewRateService(store, fetcher, time.Hour, logger)

	p := NewPriceRefresher(repo, stubQuotes{price: decimal.NewFromInt(5)}, rates, logger)
	p.RefreshAll(ctx)

	got, err := repo.GetHolding(ctx, database.DefaultUserID, id)
	if err != nil {
		t.Fatalf("get holding: %v", err)
	}
	if got.CurrentPrice == nil || !got.CurrentPrice.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("price not written: %+v", got.CurrentPrice)
	}
	if !got.ValueUSD.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("USD snapshot: %s", got.ValueUSD)
	}
	// the fake feed quotes 1.35 for every pair
	if !got.ValueSGD.Equal(decimal.NewFromFloat(67.5)) {
		t.Fatalf("SGD snapshot: %s", got.ValueSGD)
	}
	if got.RefreshError != nil {
		t.Fatalf("unexpected failure note: %s", *got.RefreshError)
	}

	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-PRICE'`, database.DefaultUserID)
}

func TestRefreshAllRecordsFailureReason(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-FAIL'`, database.DefaultUserID)

	qty := decimal.NewFromInt(3)
	id, err := repo.CreateHolding(ctx, database.DefaultUserID, models.Holding{
		Symbol: "TEST-FAIL", Category: models.CategoryGrowth, EntryCurrency: models.SGD, Quantity: &qty,
	})
	if err != nil {
		t.Fatalf("create holding: %v", err)
	}

	store := newFakeRateStore()
	fetcher := &fakeFetcher{rate: decimal.NewFromInt(1)}
	logger, _ := test.NewNullLogger()
	rates := NewRateService(store, fetcher, time.Hour, logger)

	p := NewPriceRefresher(repo, stubQuotes{fail: true}, rates, logger)
	p.RefreshAll(ctx)

	got, err := repo.GetHolding(ctx, database.DefaultUserID, id)
	if err != nil {
		t.Fatalf("get holding: %v", err)
	}
	if got.RefreshError == nil {
		t.Fatal("expected failure reason recorded")
	}
	if got.CurrentPrice != nil {
		t.Fatalf("price should stay unset on failure, got %s", got.CurrentPrice)
	}

	_, _ = db.Exec(`DELETE FROM holdings WHERE user_id = $1 AND symbol = 'TEST-FAIL'`, database.DefaultUserID)
}
