package pgpipe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgpipe/internal/ctxwatch"
	"github.com/jackc/pgpipe/pgwire"
)

// Conn is a connection to a PostgreSQL server. It is not safe for concurrent
// use: one operation at a time, driven to completion.
type Conn struct {
	cfg  *Config
	conn net.Conn
	st   *connState

	ctxWatcher *ctxwatch.ContextWatcher
}

// Connect establishes a connection using a connection string. See
// ParseConfig for the accepted formats.
func Connect(ctx context.Context, connString string) (*Conn, error) {
	cfg, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	return ConnectConfig(ctx, cfg)
}

// ConnectConfig establishes a connection using cfg, which must have been
// created by ParseConfig. Connect is single-shot: a Conn that failed to
// connect cannot be retried, build a new one.
func ConnectConfig(ctx context.Context, cfg *Config) (*Conn, error) {
	if !cfg.createdByParseConfig {
		panic("config must be created by ParseConfig")
	}

	if cfg.ConnectTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	c := &Conn{
		cfg: cfg.Copy(),
		st:  newConnState(),
	}
	c.ctxWatcher = ctxwatch.NewContextWatcher(
		func() {
			if conn := c.conn; conn != nil {
				conn.SetDeadline(time.Date(1, 1, 1, 1, 1, 1, 1, time.UTC))
			}
		},
		func() {
			if conn := c.conn; conn != nil {
				conn.SetDeadline(time.Time{})
			}
		},
	)

	fsm := newStartupFSM(c.cfg)
	err := c.drive(ctx, func(ioErr error, n int) step { return fsm.Resume(c.st, ioErr, n) })
	if err != nil {
		if c.conn != nil {
			c.conn.Close()
		}
		c.st.phase = phaseClosed
		if c.cfg.shouldLog(LogLevelError) {
			c.cfg.Logger.Log(ctx, LogLevelError, "connect failed", map[string]any{"err": err, "host": c.cfg.Host})
		}
		return nil, normalizeTimeoutError(ctx, err)
	}

	if c.cfg.shouldLog(LogLevelInfo) {
		c.cfg.Logger.Log(ctx, LogLevelInfo, "connection established", map[string]any{"host": c.cfg.Host, "pid": c.st.keyData.ProcessID})
	}
	return c, nil
}

// drive performs the steps a state machine requests until it reports done.
func (c *Conn) drive(ctx context.Context, resume func(ioErr error, n int) step) error {
	var ioErr error
	var n int

	for {
		s := resume(ioErr, n)
		ioErr, n = nil, 0

		switch s.kind {
		case stepConnect:
			dial := c.cfg.DialFunc
			if dial == nil {
				d := &net.Dialer{}
				dial = d.DialContext
			}
			network, address := c.cfg.NetworkAddress()
			conn, err := dial(ctx, network, address)
			if err != nil {
				ioErr = err
				continue
			}
			c.conn = conn
			c.ctxWatcher.Watch(ctx)

		case stepWrite:
			_, err := c.conn.Write(s.data)
			ioErr = err

		case stepRead:
			n, ioErr = c.conn.Read(c.st.readSpace())

		case stepClose:
			c.ctxWatcher.Unwatch()
			c.conn.Close()
			c.conn = nil

		case stepDone:
			if c.conn != nil {
				c.ctxWatcher.Unwatch()
			}
			return s.err
		}
	}
}

// Exec writes the whole request payload and dispatches the backend's answers
// to the response handler chain. A nil resp ignores all results and fails
// only on a server error.
//
// A server error inside the request does not desynchronize the connection:
// the failing handler carries the diagnostics, subsequent handlers of the
// same sync group report step_skipped, and the connection is usable again
// when Exec returns. A transport error — including cancellation of ctx —
// leaves the connection unusable.
func (c *Conn) Exec(ctx context.Context, req *Request, resp *Response) error {
	switch c.st.phase {
	case phaseReadyForQuery:
	case phaseBusy:
		return &Error{Code: ErrOperationInProgress}
	default:
		return &Error{Code: ErrConnectionUnusable}
	}

	c.st.phase = phaseBusy
	if resp == nil {
		resp = ignoreAll()
	}

	c.ctxWatcher.Watch(ctx)
	fsm := newExecFSM(req, resp, c.cfg)
	ioErr := c.driveExec(func(ioErr error, n int) step { return fsm.Resume(c.st, ioErr, n) })
	c.ctxWatcher.Unwatch()

	if ioErr != nil {
		if fsm.wrote {
			// The stream position is unknown: the connection cannot be
			// reused.
			c.st.phase = phaseFailed
			c.st.resetBuffer()
			c.conn.Close()
			c.conn = nil
		} else {
			// Nothing reached the wire: the connection is untouched.
			c.st.phase = phaseReadyForQuery
		}
		ioErr = &transportError{err: normalizeTimeoutError(ctx, ioErr), safeToRetry: !fsm.wrote}
	} else {
		c.st.phase = phaseReadyForQuery
	}

	err := fsm.result(ioErr)
	if c.cfg.shouldLog(LogLevelInfo) {
		data := map[string]any{"messages": len(req.Tags())}
		if err != nil {
			data["err"] = err
		}
		c.cfg.Logger.Log(ctx, LogLevelInfo, "exec", data)
	}
	return err
}

// driveExec is drive without the connect step handling.
func (c *Conn) driveExec(resume func(ioErr error, n int) step) error {
	var ioErr error
	var n int

	for {
		s := resume(ioErr, n)
		ioErr, n = nil, 0

		switch s.kind {
		case stepWrite:
			_, err := c.conn.Write(s.data)
			ioErr = err

		case stepRead:
			n, ioErr = c.conn.Read(c.st.readSpace())

		case stepDone:
			return s.err
		}
	}
}

// normalizeTimeoutError translates the opaque deadline error of an
// interrupted socket operation into the error of the context that caused the
// interruption, marking genuine timeouts so Timeout can recognize them.
func normalizeTimeoutError(ctx context.Context, err error) error {
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		return err
	}

	if ctx.Err() == context.Canceled {
		// The context watcher poked the deadline because ctx was canceled.
		return context.Canceled
	} else if ctx.Err() == context.DeadlineExceeded {
		return &errTimeout{err: ctx.Err()}
	}
	return &errTimeout{err: netErr}
}

// Close sends Terminate and closes the socket. It is safe to call in any
// phase.
func (c *Conn) Close(ctx context.Context) error {
	if c.st.phase == phaseClosed {
		return nil
	}
	c.st.phase = phaseClosed

	if c.conn == nil {
		return nil
	}

	if buf, err := (&pgwire.Terminate{}).Encode(nil); err == nil {
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		c.conn.Write(buf)
	}
	return c.conn.Close()
}

// IsClosed reports whether the connection has been closed or has failed.
func (c *Conn) IsClosed() bool {
	return c.st.phase == phaseClosed || c.st.phase == phaseFailed
}

// ParameterStatus returns the last reported value of a run-time server
// parameter, such as server_version or client_encoding.
func (c *Conn) ParameterStatus(key string) string {
	return c.st.parameterStatuses[key]
}

// ServerVersion parses the server_version parameter reported at startup.
func (c *Conn) ServerVersion() (*semver.Version, error) {
	raw := c.ParameterStatus("server_version")
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		raw = raw[:i]
	}
	return semver.NewVersion(raw)
}

// PID returns the backend process ID reported at startup. Together with
// SecretKey it parameterizes an out-of-band CancelRequest.
func (c *Conn) PID() uint32 { return c.st.keyData.ProcessID }

// SecretKey returns the backend secret key reported at startup.
func (c *Conn) SecretKey() uint32 { return c.st.keyData.SecretKey }
