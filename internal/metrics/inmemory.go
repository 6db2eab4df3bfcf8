package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthVerifiedBasic        uint64
	AuthVerifiedBearer       uint64
	AuthRejectedMissing      uint64
	AuthRejectedUnauthorized uint64
	AuthErrors               uint64
	AuthDurationCount        uint64
	AuthDurationTotalNs      int64
	ThingNotFound            uint64
	UsersRegistered          uint64
	RegistrationsRejected    uint64
	LoginsSucceeded          uint64
	LoginsFailed             uint64
	RateLimited              uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	authVerifiedBasic        atomic.Uint64
	authVerifiedBearer       atomic.Uint64
	authRejectedMissing      atomic.Uint64
	authRejectedUnauthorized atomic.Uint64
	authErrors               atomic.Uint64
	authDurationCount        atomic.Uint64
	authDurationTotalNs      atomic.Int64
	thingNotFound            atomic.Uint64
	usersRegistered          atomic.Uint64
	registrationsRejected    atomic.Uint64
	loginsSucceeded          atomic.Uint64
	loginsFailed             atomic.Uint64
	rateLimited              atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AuthVerifiedBasic:        m.authVerifiedBasic.Load(),
		AuthVerifiedBearer:       m.authVerifiedBearer.Load(),
		AuthRejectedMissing:      m.authRejectedMissing.Load(),
		AuthRejectedUnauthorized: m.authRejectedUnauthorized.Load(),
		AuthErrors:               m.authErrors.Load(),
		AuthDurationCount:        m.authDurationCount.Load(),
		AuthDurationTotalNs:      m.authDurationTotalNs.Load(),
		ThingNotFound:            m.thingNotFound.Load(),
		UsersRegistered:          m.usersRegistered.Load(),
		RegistrationsRejected:    m.registrationsRejected.Load(),
		LoginsSucceeded:          m.loginsSucceeded.Load(),
		LoginsFailed:             m.loginsFailed.Load(),
		RateLimited:              m.rateLimited.Load(),
	}
}

// IncAuthVerified counts a successful authentication by scheme.
func (m *InMemoryRecorder) IncAuthVerified(scheme string) {
	if scheme == "bearer" {
		m.authVerifiedBearer.Add(1)
		return
	}
	m.authVerifiedBasic.Add(1)
}

// IncAuthRejected counts a rejected authentication by reason.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	if reason == "missing_credentials" {
		m.authRejectedMissing.Add(1)
		return
	}
	m.authRejectedUnauthorized.Add(1)
}

// IncAuthError counts authentications that failed on a store error.
func (m *InMemoryRecorder) IncAuthError() {
	m.authErrors.Add(1)
}

// ObserveAuthDuration records how long the gate took.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	m.authDurationCount.Add(1)
	m.authDurationTotalNs.Add(duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncThingNotFound()        { m.thingNotFound.Add(1) }
func (m *InMemoryRecorder) IncUserRegistered()       { m.usersRegistered.Add(1) }
func (m *InMemoryRecorder) IncRegistrationRejected() { m.registrationsRejected.Add(1) }
func (m *InMemoryRecorder) IncLoginSucceeded()       { m.loginsSucceeded.Add(1) }
func (m *InMemoryRecorder) IncLoginFailed()          { m.loginsFailed.Add(1) }
func (m *InMemoryRecorder) IncRateLimited()          { m.rateLimited.Add(1) }
