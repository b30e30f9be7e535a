package pgpipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeToRetry(t *testing.T) {
	// Nothing reached the wire.
	assert.True(t, SafeToRetry(&transportError{err: errors.New("dial refused"), safeToRetry: true}))

	// The request was at least partially written.
	assert.False(t, SafeToRetry(&transportError{err: errors.New("broken pipe")}))

	// Errors that carry no retry knowledge are not safe.
	assert.False(t, SafeToRetry(errors.New("plain")))
	assert.False(t, SafeToRetry(&Error{Code: ErrExecServerError}))
	assert.False(t, SafeToRetry(nil))
}

func TestTimeoutHelper(t *testing.T) {
	assert.True(t, Timeout(&errTimeout{err: context.DeadlineExceeded}))

	// Timeout sees through the transport wrapper.
	assert.True(t, Timeout(&transportError{err: &errTimeout{err: context.DeadlineExceeded}}))

	// A bare context error was not produced by a pgpipe timeout.
	assert.False(t, Timeout(context.DeadlineExceeded))
	assert.False(t, Timeout(context.Canceled))
	assert.False(t, Timeout(errors.New("plain")))
}

func TestErrTimeoutSafeToRetryDelegates(t *testing.T) {
	inner := &transportError{err: errors.New("write failed"), safeToRetry: true}
	assert.True(t, SafeToRetry(&errTimeout{err: inner}))
	assert.False(t, SafeToRetry(&errTimeout{err: errors.New("plain")}))
}
