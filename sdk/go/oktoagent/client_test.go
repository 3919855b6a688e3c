package oktoagent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubmitMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var submission MessageSubmission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			t.Fatalf("unexpected body: %v", err)
		}
		if submission.Text != "show me my okto wallets" {
			t.Fatalf("unexpected text: %q", submission.Text)
		}
		_ = json.NewEncoder(w).Encode(MessageOutcome{
			Capability: "OKTO_GET_WALLETS",
			Result:     &CapabilityResult{Success: true, Response: "okto get wallets successful", Text: "ok"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	outcome, err := client.SubmitMessage(context.Background(), MessageSubmission{Text: "show me my okto wallets"})
	if err != nil {
		t.Fatalf("submit message: %v", err)
	}
	if outcome.Capability != "OKTO_GET_WALLETS" || outcome.Result == nil || !outcome.Result.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/capabilities" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Capability{
			{Name: "OKTO_TRANSFER", Description: "Perform token transfers using Okto"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	capabilities, err := client.Capabilities(context.Background())
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	if len(capabilities) != 1 || capabilities[0].Name != "OKTO_TRANSFER" {
		t.Fatalf("unexpected capabilities: %+v", capabilities)
	}
}

func TestJournalPassesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/journal" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Fatalf("unexpected limit: %q", r.URL.Query().Get("limit"))
		}
		_ = json.NewEncoder(w).Encode([]JournalEntry{{ID: "e-1", Capability: "OKTO_TRANSFER"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	entries, err := client.Journal(context.Background(), 5)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e-1" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "未注册的能力", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	_, err := client.SubmitMessage(context.Background(), MessageSubmission{Capability: "OKTO_MINT", Text: "mint"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status code: %d", apiErr.StatusCode)
	}
}
