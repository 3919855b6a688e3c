package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"Okto-Agent/sdk/go/oktoagent"
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(oktoagent.MessageOutcome{
				Capability: "OKTO_TRANSFER",
				Result: &oktoagent.CapabilityResult{
					Success:  true,
					Response: "okto transfer successful",
					Text:     "✅ Okto Transfer successful.\nOrder ID: order-demo",
					OrderID:  "order-demo",
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/capabilities", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]oktoagent.Capability{
			{Name: "OKTO_TRANSFER", Description: "Perform token transfers using Okto"},
			{Name: "OKTO_GET_PORTFOLIO", Description: "Get Okto portfolio"},
		})
	})
	mux.HandleFunc("/api/v1/journal", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]oktoagent.JournalEntry{
			{ID: "e-demo", Capability: "OKTO_TRANSFER", Success: true, OrderID: "order-demo"},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := oktoagent.NewClient(srv.URL, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	capabilities, err := client.Capabilities(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("agent exposes %d capabilities\n", len(capabilities))

	outcome, err := client.SubmitMessage(ctx, oktoagent.MessageSubmission{
		Text: "transfer 0.01 POL to 0xF638D541943213D42751F6BFa323ebe6e0fbEaA1 on Polygon amoy testnet",
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("handled by %s (order=%s)\n", outcome.Capability, outcome.Result.OrderID)

	entries, err := client.Journal(ctx, 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("journal holds %d entries\n", len(entries))
}
