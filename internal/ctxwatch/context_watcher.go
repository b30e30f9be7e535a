// Package ctxwatch interrupts in-flight socket I/O when the context
// governing the current operation is canceled.
package ctxwatch

import (
	"context"
)

// ContextWatcher watches the context of the connection's current operation.
// When the watched context is canceled, onCancel pokes the socket deadline so
// the blocked read or write returns immediately; onUnwatchAfterCancel undoes
// the poke once the operation has observed the failure. A connection runs one
// operation at a time, so at most one context is ever watched.
type ContextWatcher struct {
	onCancel             func()
	onUnwatchAfterCancel func()

	watching bool
	release  chan struct{}
	canceled chan bool
}

// NewContextWatcher returns a ContextWatcher. onCancel will be called when a
// watched context is canceled. onUnwatchAfterCancel will be called when
// Unwatch is called and the watched context had already been canceled and
// onCancel called.
func NewContextWatcher(onCancel func(), onUnwatchAfterCancel func()) *ContextWatcher {
	return &ContextWatcher{
		onCancel:             onCancel,
		onUnwatchAfterCancel: onUnwatchAfterCancel,
	}
}

// Watch starts watching ctx for the duration of one operation, until Unwatch.
// A context that can never be canceled costs nothing: no goroutine is
// started. Watch must not be called again before Unwatch.
func (cw *ContextWatcher) Watch(ctx context.Context) {
	if cw.watching {
		panic("Watch already in progress")
	}
	if ctx.Done() == nil {
		return
	}

	cw.watching = true
	cw.release = make(chan struct{})
	cw.canceled = make(chan bool, 1)

	go func(release chan struct{}, canceled chan bool) {
		select {
		case <-ctx.Done():
			cw.onCancel()
			canceled <- true
		case <-release:
			canceled <- false
		}
	}(cw.release, cw.canceled)
}

// Unwatch stops watching the previously watched context and releases its
// goroutine. If the onCancel function passed to NewContextWatcher was called
// then onUnwatchAfterCancel will also be called, before Unwatch returns.
func (cw *ContextWatcher) Unwatch() {
	if !cw.watching {
		return
	}
	cw.watching = false

	close(cw.release)
	if <-cw.canceled {
		cw.onUnwatchAfterCancel()
	}
}
