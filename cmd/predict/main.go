// Retention - Customer churn risk, segmentation and retention actions.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

// Command predict sends one customer record to a running retention server
// and prints the prediction.
//
// Usage:
//
//	go run ./cmd/predict -recency 10 -spending 2500 -web 5 -store 5 -catalog 5 \
//	    -deals 1 -visits 3 -income 60000 -age 40
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/opensource-finance/retention/internal/api"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Retention base URL")
	recency := flag.Int("recency", 0, "Days since last purchase")
	spending := flag.Float64("spending", 0, "Total spending")
	web := flag.Int("web", 0, "Web purchases")
	store := flag.Int("store", 0, "Store purchases")
	catalog := flag.Int("catalog", 0, "Catalog purchases")
	deals := flag.Int("deals", 0, "Deals purchases")
	visits := flag.Int("visits", 0, "Web visits per month")
	income := flag.Float64("income", 10000, "Income")
	age := flag.Int("age", 18, "Age")
	raw := flag.Bool("json", false, "Print the raw JSON response")
	flag.Parse()

	req := api.PredictRequest{
		Recency:             recency,
		TotalSpending:       spending,
		NumWebPurchases:     web,
		NumStorePurchases:   store,
		NumCatalogPurchases: catalog,
		NumDealsPurchases:   deals,
		NumWebVisitsMonth:   visits,
		Income:              income,
		Age:                 age,
	}

	client := &http.Client{Timeout: 10 * time.Second}

	body, status, err := predict(client, *baseURL, &req)
	if err != nil {
		fmt.Printf("ERROR: retention not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure the server is running:")
		fmt.Println("  go run ./cmd/retention")
		os.Exit(1)
	}

	if *raw {
		os.Stdout.Write(body)
		return
	}

	if status != http.StatusOK {
		fmt.Printf("ERROR: status %d\n", status)
		printError(body)
		os.Exit(1)
	}

	var resp api.PredictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Printf("ERROR: failed to decode response: %v\n", err)
		os.Exit(1)
	}

	printResult(&resp)
}

func predict(client *http.Client, baseURL string, req *api.PredictRequest) ([]byte, int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, 0, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func printError(body []byte) {
	var e struct {
		Error      string   `json:"error"`
		Fields     []string `json:"fields"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Printf("  %s\n", e.Error)
	for _, f := range e.Fields {
		fmt.Printf("    - %s\n", f)
	}
	for _, v := range e.Violations {
		fmt.Printf("    - %s: %s\n", v.Field, v.Message)
	}
}

func printResult(r *api.PredictResponse) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      PREDICTION RESULT                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n   Cluster:          %d\n", r.ClusterID)
	fmt.Printf("   RFM Score:        %s\n", r.RFMScoreDisplay)
	fmt.Printf("   Risk Percentage:  %s\n", r.RiskPercentageDisplay)

	fmt.Printf("\nRISK LEVEL\n")
	fmt.Printf("   %s\n", r.RiskTier)

	fmt.Printf("\nCUSTOMER SEGMENT\n")
	fmt.Printf("   %s\n", r.Segment)

	fmt.Printf("\nCLUSTER DESCRIPTION\n")
	fmt.Printf("   %s\n", r.Description)

	fmt.Printf("\nRECOMMENDED RETENTION ACTION\n")
	fmt.Printf("   %s\n", r.Action)

	fmt.Printf("\n   Model %s, %dms\n\n", r.Metadata.ModelVersion, r.Metadata.TotalMs)
}
