package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"  Pikachu ":  "pikachu",
		"Mr. Mime":    "mr-mime",
		"Farfetch'd":  "farfetchd",
		"Nidoran♀":    "nidoran-f",
		"tapu   koko": "tapu-koko",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeQuery(in), in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Special Attack", DisplayName("special-attack"))
	assert.Equal(t, "Charizard", DisplayName("charizard"))
}

func TestTruncateStringCountsRunes(t *testing.T) {
	assert.Equal(t, "피카츄", TruncateString("피카츄", 3))
	assert.Equal(t, "피카...", TruncateString("피카츄", 2))
}

func TestClampAndMin(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3, 1, 10))
	assert.Equal(t, 10, Clamp(42, 1, 10))
	assert.Equal(t, 5, Clamp(5, 1, 10))
	assert.Equal(t, 2, Min(2, 7))
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	}, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	assert.True(t, cb.CanExecute())

	cb.RecordFailure(0)
	assert.False(t, cb.CanExecute())
	assert.Equal(t, time.Minute, cb.RetryAfter())
	assert.Equal(t, 2, cb.GetStatus().FailureCount)

	now = now.Add(time.Minute)
	assert.Equal(t, CircuitStateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, cb.GetState())
	assert.Nil(t, cb.GetStatus().NextRetryTime)
}

func TestCircuitBreakerCustomTimeout(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 5, ResetTimeout: time.Minute}, nil)
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordFailure(10 * time.Minute)

	assert.Equal(t, CircuitStateOpen, cb.GetState())
	assert.Equal(t, 10*time.Minute, cb.RetryAfter())
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, err := NewLogger("warn", path)
	require.NoError(t, err)
	logger.Info("dropped below level")
	logger.Warn("kept", zap.String("room", "r1"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, " | WARN | ")
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "dropped below level")
}

func TestNewLoggerRejectsUnwritablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewLogger("info", filepath.Join(blocker, "bot.log"))
	assert.Error(t, err)
}
