// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication gate
	IncAuthVerified(scheme string) // scheme: "basic" or "bearer"
	IncAuthRejected(reason string) // reason: "missing_credentials" or "unauthorized"
	IncAuthError()
	ObserveAuthDuration(duration time.Duration)

	// Existence gate
	IncThingNotFound()

	// Accounts
	IncUserRegistered()
	IncRegistrationRejected()
	IncLoginSucceeded()
	IncLoginFailed()

	// Rate limiting
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
