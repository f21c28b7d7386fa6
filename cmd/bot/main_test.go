package main

import (
	"context"
	stdErrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	startErr    error
	shutdownErr error
	started     chan struct{}
	shutdowns   atomic.Int32
	sawDeadline atomic.Bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan struct{})}
}

func (f *fakeRunner) Start(ctx context.Context) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeRunner) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	_, ok := ctx.Deadline()
	f.sawDeadline.Store(ok)
	return f.shutdownErr
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newFakeRunner()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, r, time.Second, zap.NewNop()) }()

	<-r.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.Equal(t, int32(1), r.shutdowns.Load())
	assert.True(t, r.sawDeadline.Load())
}

func TestServeReturnsStartFailure(t *testing.T) {
	r := newFakeRunner()
	r.startErr = stdErrors.New("websocket refused")

	err := serve(context.Background(), r, time.Second, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, r.startErr)
	assert.Equal(t, int32(1), r.shutdowns.Load())
}

func TestServeReportsShutdownFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newFakeRunner()
	r.shutdownErr = stdErrors.New("stores still busy")

	err := serve(ctx, r, time.Second, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, r.shutdownErr)
	assert.Contains(t, err.Error(), "shutdown")
}
