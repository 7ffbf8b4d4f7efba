package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds a demo portfolio: one user, a few holdings across the four buckets,
// the six exchange-rate pairs and two yearly rows.
func main() {
	godotenv.Load()
	dbURL := os.Getenv("POSTGRES_URL")
	if dbURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userID := "00000000-0000-0000-0000-000000000001"

	if _, err := db.ExecContext(ctx, `INSERT INTO users (id, name) VALUES ($1, 'owner') ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		log.Fatalf("seed user: %v", err)
	}

	rates := []struct {
		from, to, rate string
	}{
		{"SGD", "USD", "0.7407"},
		{"USD", "SGD", "1.3500"},
		{"SGD", "INR", "62.10"},
		{"INR", "SGD", "0.0161"},
		{"USD", "INR", "83.85"},
		{"INR", "USD", "0.0119"},
	}
	for _, r := range rates {
		_, err := db.ExecContext(ctx, `INSERT INTO exchange_rates (from_currency, to_currency, rate, source, fetched_at) VALUES ($1, $2, $3::numeric, 'manual', $4)
			ON CONFLICT (from_currency, to_currency) DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at`,
			r.from, r.to, r.rate, time.Now().UTC())
		if err != nil {
			fmt.Printf("Warning: could not seed rate %s→%s: %v\n", r.from, r.to, err)
		}
	}

	holdings := []struct {
		symbol, name, category, location, currency string
		quantity, price                            string
		sgd, usd, inr                              string
	}{
		{"VWRA.L", "Vanguard FTSE All-World", "Core", "IBKR", "USD", "120", "145.20", "23522.40", "17424.00", "1461002.40"},
		{"ES3.SI", "STI ETF", "Core", "DBS Vickers", "SGD", "5000", "3.45", "17250.00", "12777.50", "1071225.00"},
		{"NVDA", "NVIDIA", "Growth", "IBKR", "USD", "40", "178.50", "9639.00", "7140.00", "598689.00"},
		{"GOLD-SG", "Gold savings account", "Hedge", "UOB", "SGD", "50", "95.00", "4750.00", "3518.33", "294975.00"},
		{"SGD-CASH", "SGD savings", "Liquidity", "DBS", "SGD", "", "", "25000.00", "18517.50", "1552500.00"},
		{"INR-FD", "India fixed deposit", "Liquidity", "ICICI", "INR", "", "", "8050.00", "5963.00", "500000.00"},
	}
	for _, h := range holdings {
		var qty, price interface{}
		if h.quantity != "" {
			qty, price = h.quantity, h.price
		}
		_, err := db.ExecContext(ctx, `INSERT INTO holdings (id, user_id, symbol, name, category, location, entry_currency, quantity, current_price, value_sgd, value_usd, value_inr)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric)`,
			uuid.NewString(), userID, h.symbol, h.name, h.category, h.location, h.currency, qty, price, h.sgd, h.usd, h.inr)
		if err != nil {
			fmt.Printf("Warning: could not seed holding %s: %v\n", h.symbol, err)
		}
	}

	years := []struct {
		year                                int
		income, expenses, savings, srs, net string
	}{
		{2024, "150000", "60000", "90000", "15300", "380000"},
		{2025, "162000", "63000", "99000", "10000", "465000"},
	}
	for _, y := range years {
		_, err := db.ExecContext(ctx, `INSERT INTO yearly_data (user_id, year, income, expenses, savings, srs_contribution, net_worth)
			VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric)
			ON CONFLICT (user_id, year) DO UPDATE SET income=EXCLUDED.income, expenses=EXCLUDED.expenses, savings=EXCLUDED.savings, srs_contribution=EXCLUDED.srs_contribution, net_worth=EXCLUDED.net_worth`,
			userID, y.year, y.income, y.expenses, y.savings, y.srs, y.net)
		if err != nil {
			fmt.Printf("Warning: could not seed year %d: %v\n", y.year, err)
		}
	}

	_, err = db.ExecContext(ctx, `INSERT INTO portfolio_strategies (id, user_id, name, target_core, target_growth, target_hedge, target_liquidity, rebalance_threshold, active)
		VALUES ($1, $2, 'balanced growth', 40, 30, 20, 10, 5, TRUE)
		ON CONFLICT DO NOTHING`, uuid.NewString(), userID)
	if err != nil {
		fmt.Printf("Warning: could not seed strategy: %v\n", err)
	}

	fmt.Println("Backfill complete.")
}
