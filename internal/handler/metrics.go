package handler

import (
	"fmt"
	"net/http"

	"github.com/rosterd/rosterd/internal/metrics"
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

	writeMetric(w, "rosterd_students_created_total %d\n", snap.StudentsCreated)
	writeMetric(w, "rosterd_students_updated_total %d\n", snap.StudentsUpdated)
	writeMetric(w, "rosterd_students_deleted_total %d\n", snap.StudentsDeleted)

	writeMetric(w, "rosterd_student_lists_total %d\n", snap.StudentsListed)
	writeMetric(w, "rosterd_student_list_duration_seconds_count %d\n", snap.ListDurationCount)
	writeMetric(w, "rosterd_student_list_duration_seconds_sum %.6f\n", float64(snap.ListDurationTotalNs)/1e9)

	writeMetric(w, "rosterd_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "rosterd_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
