package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakeExpirer) ExpireNotifications(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestExpirySchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	out := &syncBuffer{}
	expirer := &fakeExpirer{n: 3}
	s := NewExpiryScheduler(expirer, log.New(out, "", 0), 10*time.Millisecond)

	stop := s.Start(context.Background())
	require.Eventually(t, func() bool { return expirer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	assert.Contains(t, out.String(), "deactivated 3 expired notifications")
}

func TestExpirySchedulerStops(t *testing.T) {
	expirer := &fakeExpirer{}
	s := NewExpiryScheduler(expirer, log.New(&syncBuffer{}, "", 0), 5*time.Millisecond)

	stop := s.Start(context.Background())
	require.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, time.Second, time.Millisecond)
	stop()

	// allow an in-flight tick to finish
	time.Sleep(20 * time.Millisecond)
	settled := expirer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, expirer.calls.Load())
}

func TestExpirySchedulerLogsFailures(t *testing.T) {
	out := &syncBuffer{}
	expirer := &fakeExpirer{err: errors.New("db down")}
	s := NewExpiryScheduler(expirer, log.New(out, "", 0), time.Hour)

	stop := s.Start(context.Background())
	defer stop()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("expire notifications failed: db down"))
	}, time.Second, 5*time.Millisecond)
}

func TestNewExpirySchedulerDefaults(t *testing.T) {
	s := NewExpiryScheduler(&fakeExpirer{}, nil, 0)
	assert.Equal(t, time.Minute, s.interval)
	assert.Equal(t, 30*time.Second, s.timeout)
	assert.NotNil(t, s.logger)
}
