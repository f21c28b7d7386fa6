package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// HealthCheckFunction reports whether the guarded upstream answers again.
type HealthCheckFunction func() bool

// CircuitBreaker stops calls to an upstream after repeated failures and lets a
// single trial call through once the reset timeout (or a passing health check) allows it.
type CircuitBreaker struct {
	name                string
	state               CircuitState
	failureCount        int
	failureThreshold    int
	resetTimeout        time.Duration
	nextRetryTime       time.Time
	nextHealthCheckTime time.Time
	healthCheckInterval time.Duration
	isHealthChecking    bool
	healthCheckFn       HealthCheckFunction
	now                 func() time.Time
	logger              *zap.Logger
	mu                  sync.Mutex
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Name                string
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheck         HealthCheckFunction
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	return &CircuitBreaker{
		name:                cfg.Name,
		state:               CircuitStateClosed,
		failureThreshold:    cfg.FailureThreshold,
		resetTimeout:        cfg.ResetTimeout,
		healthCheckInterval: cfg.HealthCheckInterval,
		healthCheckFn:       cfg.HealthCheck,
		now:                 time.Now,
		logger:              LoggerOrNop(logger),
	}
}

// GetState returns the current state, moving OPEN to HALF_OPEN when the retry
// time has passed (or kicking off a health check when one is configured).
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateOpen {
		now := cb.now()
		switch {
		case cb.healthCheckFn != nil:
			if now.After(cb.nextHealthCheckTime) && !cb.isHealthChecking {
				cb.isHealthChecking = true
				go cb.runHealthCheck()
			}
		case !now.Before(cb.nextRetryTime):
			cb.transitionTo(CircuitStateHalfOpen)
		}
	}

	return cb.state
}

// CanExecute reports whether a call may be attempted.
func (cb *CircuitBreaker) CanExecute() bool {
	return cb.GetState() != CircuitStateOpen
}

// RetryAfter returns how long callers should wait while the circuit is open.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != CircuitStateOpen {
		return 0
	}
	if d := cb.nextRetryTime.Sub(cb.now()); d > 0 {
		return d
	}
	return 0
}

// RecordSuccess closes a half-open circuit and clears the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: upstream recovered", zap.String("name", cb.name))
		cb.failureCount = 0
		cb.transitionTo(CircuitStateClosed)
		return
	}
	cb.failureCount = 0
}

// RecordFailure counts a failure; customTimeout overrides the reset timeout when positive.
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	timeout := cb.resetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: failure recorded",
		zap.String("name", cb.name),
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.open(timeout)
	}
}

// GetStatus returns a snapshot for diagnostics.
func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failureCount,
	}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}
	return status
}

// must be called with lock held
func (cb *CircuitBreaker) open(timeout time.Duration) {
	now := cb.now()
	cb.nextRetryTime = now.Add(timeout)
	if cb.healthCheckFn != nil {
		cb.nextHealthCheckTime = now.Add(cb.healthCheckInterval)
	}
	cb.transitionTo(CircuitStateOpen)
}

func (cb *CircuitBreaker) runHealthCheck() {
	healthy := cb.healthCheckFn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.isHealthChecking = false
	if healthy {
		cb.transitionTo(CircuitStateHalfOpen)
		return
	}
	cb.logger.Warn("Circuit Breaker: health check failed", zap.String("name", cb.name))
	cb.nextHealthCheckTime = cb.now().Add(cb.healthCheckInterval)
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	if oldState == newState {
		return
	}

	cb.logger.Info("Circuit Breaker: state transition",
		zap.String("name", cb.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	)
}

// CircuitBreakerStatus represents the circuit breaker status
type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}
