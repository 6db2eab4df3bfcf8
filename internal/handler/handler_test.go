package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
)

func TestHandler_Root(t *testing.T) {
	t.Parallel()

	h := New()
	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["message"] != "Hello, world!" {
		t.Errorf("unexpected message: %s", response["message"])
	}
	if response["version"] != Version {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handle  func(http.ResponseWriter, *http.Request)
		method  string
		code    int
		message string
	}{
		{"not found", New().NotFound, http.MethodGet, http.StatusNotFound, "resource not found"},
		{"method not allowed", New().MethodNotAllowed, http.MethodDelete, http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.handle(rec, httptest.NewRequest(tt.method, "/nowhere", nil))

			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			var response map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["error"] != tt.message {
				t.Errorf("unexpected error message: %s", response["error"])
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	m := metrics.NewInMemory()
	m.IncAuthVerified("basic")
	m.IncAuthRejected("unauthorized")
	m.ObserveAuthDuration(1500 * time.Millisecond)
	m.IncUserRegistered()

	rec := httptest.NewRecorder()
	NewMetricsHandler(m).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`thingful_auth_verified_total{scheme="basic"} 1`,
		`thingful_auth_rejected_total{reason="unauthorized"} 1`,
		`thingful_auth_duration_seconds_sum 1.500000`,
		`thingful_registrations_total{status="created"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in output:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
