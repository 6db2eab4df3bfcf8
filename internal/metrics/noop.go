package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncAuthVerified(string) {}
func (n *NoopRecorder) IncAuthRejected(string) {}
func (n *NoopRecorder) IncAuthError() {}
func (n *NoopRecorder) ObserveAuthDuration(time.Duration) {}
func (n *NoopRecorder) IncThingNotFound() {}
func (n *NoopRecorder) IncUserRegistered() {}
func (n *NoopRecorder) IncRegistrationRejected() {}
func (n *NoopRecorder) IncLoginSucceeded() {}
func (n *NoopRecorder) IncLoginFailed() {}
func (n *NoopRecorder) IncRateLimited() {}
