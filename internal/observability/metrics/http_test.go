package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareRecordsStatusAndLatency(t *testing.T) {
	wrapped := Middleware("unit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/unit", nil)
	wrapped(httptest.NewRecorder(), req)
	Observe("unit", http.MethodGet, http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `oktoagent_http_requests_total{handler="unit",method="POST",code="400"} 1`) {
		t.Fatalf("missing request counter:\n%s", body)
	}
	if !strings.Contains(body, `oktoagent_http_requests_total{handler="unit",method="GET",code="200"} 1`) {
		t.Fatalf("missing observed counter:\n%s", body)
	}
	if !strings.Contains(body, `oktoagent_http_request_duration_seconds_count{handler="unit"} 2`) {
		t.Fatalf("missing histogram count:\n%s", body)
	}
}
