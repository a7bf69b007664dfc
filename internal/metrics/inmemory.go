package metrics

import (
	"sync/atomic"
	"time"
)

// InMemoryRecorder implements Recorder with atomic counters.
// Durations are accumulated as count/sum pairs, not bucketed.
type InMemoryRecorder struct {
	created int64
	updated int64
	deleted int64
	listed  int64

	listDurationCount   int64
	listDurationTotalNs int64

	loginOK   int64
	loginFail int64
}

// NewInMemory returns a Recorder backed by process-local counters.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

func (m *InMemoryRecorder) IncStudentCreated() { atomic.AddInt64(&m.created, 1) }
func (m *InMemoryRecorder) IncStudentUpdated() { atomic.AddInt64(&m.updated, 1) }
func (m *InMemoryRecorder) IncStudentDeleted() { atomic.AddInt64(&m.deleted, 1) }
func (m *InMemoryRecorder) IncStudentListed()  { atomic.AddInt64(&m.listed, 1) }

func (m *InMemoryRecorder) ObserveListDuration(d time.Duration) {
	atomic.AddInt64(&m.listDurationCount, 1)
	atomic.AddInt64(&m.listDurationTotalNs, d.Nanoseconds())
}

func (m *InMemoryRecorder) IncLoginSuccess() { atomic.AddInt64(&m.loginOK, 1) }
func (m *InMemoryRecorder) IncLoginFailure() { atomic.AddInt64(&m.loginFail, 1) }

// Snapshot returns the current counter values.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		StudentsCreated: atomic.LoadInt64(&m.created),
		StudentsUpdated: atomic.LoadInt64(&m.updated),
		StudentsDeleted: atomic.LoadInt64(&m.deleted),
		StudentsListed:  atomic.LoadInt64(&m.listed),

		ListDurationCount:   atomic.LoadInt64(&m.listDurationCount),
		ListDurationTotalNs: atomic.LoadInt64(&m.listDurationTotalNs),

		LoginSuccesses: atomic.LoadInt64(&m.loginOK),
		LoginFailures:  atomic.LoadInt64(&m.loginFail),
	}
}
