package okto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	xerrors "Okto-Agent/internal/errors"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session, err := NewSession(Config{
		APIKey:          "test-key",
		BuildType:       BuildSandbox,
		BaseURL:         server.URL,
		PollInterval:    5 * time.Millisecond,
		PollMaxAttempts: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return session, server
}

func authenticate(t *testing.T, session *Session) {
	t.Helper()
	done := make(chan error, 1)
	session.Authenticate(context.Background(), "id-token", func(result *AuthResult, err error) {
		done <- err
	})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("authenticate callback never fired")
	}
}

func TestNewSessionRequiresAPIKey(t *testing.T) {
	if _, err := NewSession(Config{}); !xerrors.IsCode(err, xerrors.CodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
	if _, err := NewSession(Config{APIKey: "k", BuildType: "testing"}); !xerrors.IsCode(err, xerrors.CodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error for bad build type, got %v", err)
	}
}

func TestAuthenticateStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/authenticate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["id_token"] != "id-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"user_id": "u-1", "auth_token": "session-token"},
		})
	})
	session, _ := newTestSession(t, mux)

	if session.Authenticated() {
		t.Fatalf("session should not be authenticated before login")
	}
	authenticate(t, session)
	if !session.Authenticated() {
		t.Fatalf("session should be authenticated after login")
	}
}

func TestCallsFailBeforeAuthentication(t *testing.T) {
	session, _ := newTestSession(t, http.NewServeMux())

	_, err := session.GetPortfolio(context.Background())
	if !xerrors.IsCode(err, xerrors.CodeVendorFailure) {
		t.Fatalf("expected VENDOR_FAILURE before auth, got %v", err)
	}
}

func TestTransferTokensReturnsOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/authenticate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"auth_token": "session-token"}})
	})
	mux.HandleFunc("/api/v1/transfer/tokens/execute", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload TransferPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.NetworkName != "POLYGON_TESTNET_AMOY" || payload.Quantity != "0.01" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"order_id": "ord-42"}})
	})
	session, _ := newTestSession(t, mux)
	authenticate(t, session)

	order, err := session.TransferTokens(context.Background(), TransferPayload{
		NetworkName:      "POLYGON_TESTNET_AMOY",
		TokenAddress:     "",
		RecipientAddress: "0xF638D541943213D42751F6BFa323ebe6e0fbEaA1",
		Quantity:         "0.01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != "ord-42" {
		t.Fatalf("unexpected order id: %s", order.OrderID)
	}
}

func TestVendorErrorIsDecoded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/authenticate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"auth_token": "session-token"}})
	})
	mux.HandleFunc("/api/v1/portfolio", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UPSTREAM", "message": "settlement engine unavailable"},
		})
	})
	session, _ := newTestSession(t, mux)
	authenticate(t, session)

	_, err := session.GetPortfolio(context.Background())
	if !xerrors.IsCode(err, xerrors.CodeVendorFailure) {
		t.Fatalf("expected VENDOR_FAILURE, got %v", err)
	}
}

func TestWaitForOrderStopsOnTerminalStatus(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/authenticate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"auth_token": "session-token"}})
	})
	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		status := OrderStatusPending
		if calls.Add(1) >= 2 {
			status = OrderStatusSuccess
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"jobs": []OrderRecord{{
				OrderID: r.URL.Query().Get("order_id"),
				Status:  status,
			}}},
		})
	})
	session, _ := newTestSession(t, mux)
	authenticate(t, session)

	wait, err := session.WaitForOrder(context.Background(), "ord-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wait.Pending {
		t.Fatalf("expected terminal order, still pending")
	}
	if wait.Record.Status != OrderStatusSuccess {
		t.Fatalf("unexpected status: %s", wait.Record.Status)
	}
}

func TestWaitForOrderReportsPendingAfterWindow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/authenticate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"auth_token": "session-token"}})
	})
	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"jobs": []OrderRecord{{OrderID: "ord-8", Status: OrderStatusPending}}},
		})
	})
	session, _ := newTestSession(t, mux)
	authenticate(t, session)

	wait, err := session.WaitForOrder(context.Background(), "ord-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wait.Pending {
		t.Fatalf("expected pending condition after exhausting the polling window")
	}
}

func TestSwapContractIsNotGuessed(t *testing.T) {
	session, _ := newTestSession(t, http.NewServeMux())

	if _, err := session.GetQuote(context.Background(), QuoteRequest{}); err == nil {
		t.Fatalf("expected quote call to be rejected")
	}
	if _, err := session.ExecuteSwap(context.Background(), Quote{}); err == nil {
		t.Fatalf("expected swap execution to be rejected")
	}
}
