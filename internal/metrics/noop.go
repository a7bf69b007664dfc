package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncStudentCreated is a no-op.
func (n *NoopRecorder) IncStudentCreated() {}

// IncStudentUpdated is a no-op.
func (n *NoopRecorder) IncStudentUpdated() {}

// IncStudentDeleted is a no-op.
func (n *NoopRecorder) IncStudentDeleted() {}

// IncStudentListed is a no-op.
func (n *NoopRecorder) IncStudentListed() {}

// ObserveListDuration is a no-op.
func (n *NoopRecorder) ObserveListDuration(duration time.Duration) {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}
