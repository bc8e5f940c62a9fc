package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) (*domain.Snapshot, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.Snapshot{Statuses: []domain.PlatformStatus{{Platform: domain.PlatformKalshi, Error: "down"}}}, nil
}

type stubLocks struct {
	err      error
	released int
}

func (s *stubLocks) Acquire(context.Context, string, time.Duration) (func(), error) {
	if s.err != nil {
		return nil, s.err
	}
	return func() { s.released++ }, nil
}

func TestPollerRunWithLock(t *testing.T) {
	r := &countingRefresher{}
	locks := &stubLocks{}
	p := NewPoller(r, locks, time.Minute, discardLogger())

	require.NoError(t, p.Run(context.Background()))
	assert.EqualValues(t, 1, r.calls.Load())
	assert.Equal(t, 1, locks.released)
}

func TestPollerSkipsWhenLockHeld(t *testing.T) {
	r := &countingRefresher{}
	p := NewPoller(r, &stubLocks{err: domain.ErrLockHeld}, time.Minute, discardLogger())

	require.NoError(t, p.Run(context.Background()))
	assert.Zero(t, r.calls.Load())

	p = NewPoller(r, &stubLocks{err: errors.New("redis down")}, time.Minute, discardLogger())
	assert.Error(t, p.Run(context.Background()))
}

func TestPollerRunLoopStopsOnCancel(t *testing.T) {
	r := &countingRefresher{}
	p := NewPoller(r, nil, 0, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.RunLoop(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunLoop did not stop")
	}
}

type stubArchiver struct {
	before time.Time
	n      int64
}

func (s *stubArchiver) ArchiveSnapshots(_ context.Context, before time.Time) (int64, error) {
	s.before = before
	return s.n, nil
}

func TestArchiverRunUsesRetention(t *testing.T) {
	blob := &stubArchiver{n: 3}
	a := NewArchiver(blob, 30, discardLogger())
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, now.Add(-30*24*time.Hour), blob.before)
}

func TestNextCronTime(t *testing.T) {
	after := time.Date(2025, 1, 1, 10, 7, 30, 0, time.UTC)

	next, err := nextCronTime("0 3 * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), next)

	next, err = nextCronTime("*/15 * * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC), next)

	next, err = nextCronTime("0 9-17/4 * * 1-5", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC), next, "Jan 1 2025 is a Wednesday")

	_, err = nextCronTime("0 3 * *", after)
	assert.Error(t, err)
	_, err = nextCronTime("61 * * * *", after)
	assert.Error(t, err)
}

func TestOrchestratorStopsCleanly(t *testing.T) {
	r := &countingRefresher{}
	o := NewOrchestrator(NewPoller(r, nil, 0, discardLogger()), nil, time.Hour, "", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()
	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop")
	}
}
