package ctxwatch_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgpipe/internal/ctxwatch"
	"github.com/stretchr/testify/assert"
)

func TestContextWatcherContextCancelled(t *testing.T) {
	canceledChan := make(chan struct{})
	var cleanupCalled int64
	cw := ctxwatch.NewContextWatcher(
		func() { canceledChan <- struct{}{} },
		func() { atomic.StoreInt64(&cleanupCalled, 1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	cw.Watch(ctx)
	cancel()

	select {
	case <-canceledChan:
	case <-time.After(time.Second):
		t.Fatal("onCancel was not called")
	}

	cw.Unwatch()
	assert.EqualValues(t, 1, atomic.LoadInt64(&cleanupCalled))
}

func TestContextWatcherUnwatchedBeforeCancel(t *testing.T) {
	var onCancelCalled int64
	cw := ctxwatch.NewContextWatcher(
		func() { atomic.StoreInt64(&onCancelCalled, 1) },
		func() {},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cw.Watch(ctx)
	cw.Unwatch()
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt64(&onCancelCalled))
}

func TestContextWatcherBackgroundContextIsNoop(t *testing.T) {
	cw := ctxwatch.NewContextWatcher(func() {}, func() {})

	// Background has no Done channel: Watch and Unwatch are no-ops and can
	// repeat indefinitely.
	for i := 0; i < 100; i++ {
		cw.Watch(context.Background())
		cw.Unwatch()
	}
}
