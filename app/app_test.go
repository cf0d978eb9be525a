package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	startErr error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (s *fakeServer) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := &fakeServer{}
	var order []int
	a := New("test", nil,
		WithServer(srv),
		WithCleanup(func() { order = append(order, 1) }),
		WithCleanup(func() { order = append(order, 2) }),
		WithShutdownTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, srv.started.Load, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, srv.stopped.Load())
	assert.Equal(t, []int{2, 1}, order)
}

func TestRunReturnsServerFailure(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeServer{startErr: boom}
	healthy := &fakeServer{}

	err := New("test", nil, WithServer(failing, healthy)).Run(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestHealthy(t *testing.T) {
	assert.NoError(t, New("test", nil).Healthy())

	down := errors.New("cache down")
	a := New("test", nil,
		WithHealthChecker(func() error { return nil }),
		WithHealthChecker(func() error { return down }),
		WithHealthChecker(nil),
	)
	assert.ErrorIs(t, a.Healthy(), down)
}
