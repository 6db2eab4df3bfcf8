package handler

import (
	"fmt"
	"net/http"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "thingful_auth_verified_total{scheme=\"basic\"} %d\n", snap.AuthVerifiedBasic)
	writeMetric(w, "thingful_auth_verified_total{scheme=\"bearer\"} %d\n", snap.AuthVerifiedBearer)
	writeMetric(w, "thingful_auth_rejected_total{reason=\"missing_credentials\"} %d\n", snap.AuthRejectedMissing)
	writeMetric(w, "thingful_auth_rejected_total{reason=\"unauthorized\"} %d\n", snap.AuthRejectedUnauthorized)
	writeMetric(w, "thingful_auth_errors_total %d\n", snap.AuthErrors)
	writeMetric(w, "thingful_auth_duration_seconds_count %d\n", snap.AuthDurationCount)
	writeMetric(w, "thingful_auth_duration_seconds_sum %.6f\n", float64(snap.AuthDurationTotalNs)/1e9)

	writeMetric(w, "thingful_thing_not_found_total %d\n", snap.ThingNotFound)

	writeMetric(w, "thingful_registrations_total{status=\"created\"} %d\n", snap.UsersRegistered)
	writeMetric(w, "thingful_registrations_total{status=\"rejected\"} %d\n", snap.RegistrationsRejected)
	writeMetric(w, "thingful_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "thingful_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "thingful_rate_limited_total %d\n", snap.RateLimited)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
