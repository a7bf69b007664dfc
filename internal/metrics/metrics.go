// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Record management metrics
	IncStudentCreated()
	IncStudentUpdated()
	IncStudentDeleted()

	// Read path metrics
	IncStudentListed()
	ObserveListDuration(duration time.Duration)

	// Auth metrics
	IncLoginSuccess()
	IncLoginFailure()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	StudentsCreated int64 `json:"students_created"`
	StudentsUpdated int64 `json:"students_updated"`
	StudentsDeleted int64 `json:"students_deleted"`
	StudentsListed  int64 `json:"students_listed"`

	// List latency as a count/sum pair, suitable for exposition-format
	// _count and _sum series.
	ListDurationCount   int64 `json:"list_duration_count"`
	ListDurationTotalNs int64 `json:"list_duration_total_ns"`

	LoginSuccesses int64 `json:"login_successes"`
	LoginFailures  int64 `json:"login_failures"`
}
