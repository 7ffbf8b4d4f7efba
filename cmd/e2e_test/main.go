package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", nil, 200)

	// 2. Create Holding
	holdingID := createHolding()
	fmt.Printf("Created Holding ID: %s\n", holdingID)

	// 3. List Holdings
	checkEndpoint("GET", "/holdings", nil, 200)

	// 4. Manual Rate
	checkEndpoint("PUT", "/rates", map[string]string{"from": "USD", "to": "SGD", "rate": "1.35"}, 200)
	checkEndpoint("GET", "/rates", nil, 200)

	// 5. Yearly Data
	checkEndpoint("PUT", "/yearly/2025", map[string]string{"income": "150000", "srs_contribution": "10000", "net_worth": "400000"}, 200)
	checkEndpoint("GET", "/yearly", nil, 200)

	// 6. Strategy
	checkEndpoint("PUT", "/strategy", map[string]string{
		"name": "e2e", "target_core": "40", "target_growth": "30",
		"target_hedge": "20", "target_liquidity": "10", "rebalance_threshold": "5",
	}, 200)
	checkEndpoint("GET", "/strategy", nil, 200)

	// 7. Dashboard and Intelligence
	checkEndpoint("GET", "/dashboard?currency=SGD", nil, 200)
	checkEndpoint("GET", "/intelligence?currency=SGD&status=EmploymentPass", nil, 200)

	// 8. Delete Holding
	checkEndpoint("DELETE", "/holdings/"+holdingID, nil, 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != expectedStatus {
		b, _ := io.ReadAll(resp.Body)
		log.Fatalf("%s %s: expected %d got %d: %s", method, path, expectedStatus, resp.StatusCode, string(b))
	}
}

func createHolding() string {
	payload := map[string]string{
		"symbol":         "VWRA.L",
		"name":           "Vanguard FTSE All-World",
		"category":       "Core",
		"location":       "IBKR",
		"entry_currency": "USD",
		"quantity":       "10",
		"current_price":  "145.20",
	}
	jsonBody, _ := json.Marshal(payload)
	resp, err := http.Post(baseURL+"/holdings", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Fatalf("create holding failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		log.Fatalf("create holding: got %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode create response: %v", err)
	}
	return out.ID
}
