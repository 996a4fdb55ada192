package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{name: "healthy", result: Healthy("ok"), wantCode: http.StatusOK, wantBody: "OK"},
		{name: "degraded", result: Degraded("slow"), wantCode: http.StatusOK, wantBody: "DEGRADED"},
		{name: "unhealthy", result: Unhealthy("down", errors.New("x")), wantCode: http.StatusServiceUnavailable, wantBody: "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(time.Second)
			agg.Register(fixed("store", tt.result))

			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("readiness = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register(fixed("store", Unhealthy("ping failed", errors.New("connection refused"))))
	agg.Register(fixed("signing_key", Healthy("signing key loaded")))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", report.Status)
	}
	if got := report.Checks["store"]; got.Status != "unhealthy" || got.Error != "connection refused" {
		t.Errorf("store check = %+v", got)
	}
	if got := report.Checks["signing_key"]; got.Status != "healthy" {
		t.Errorf("signing_key check = %+v", got)
	}
}
