package pgpipe

import (
	"encoding/binary"

	"github.com/jackc/pgpipe/pgwire"
)

// phase is the protocol phase of a connection. Outside an outstanding
// operation the phase is always phaseReadyForQuery or phaseClosed (or
// phaseFailed after a protocol desync).
type phase int8

const (
	phaseIdle phase = iota
	phaseStartup
	phaseAuthenticating
	phaseReadyForQuery
	phaseBusy
	phaseFailed
	phaseClosed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "Idle"
	case phaseStartup:
		return "Startup"
	case phaseAuthenticating:
		return "Authenticating"
	case phaseReadyForQuery:
		return "ReadyForQuery"
	case phaseBusy:
		return "Busy"
	case phaseFailed:
		return "Failed"
	case phaseClosed:
		return "Closed"
	default:
		return "invalid"
	}
}

const minReadBufSize = 8192

// connState is the protocol-level state a connection owns across operations:
// the growable read buffer with its two cursors, the reusable server
// diagnostic slot, and the protocol phase. It is reused between operations to
// avoid reallocation.
type connState struct {
	phase phase

	buf     []byte
	written int // bytes received from the socket
	parsed  int // bytes already framed into messages

	sharedDiag *PgError

	decoder pgwire.BackendDecoder

	parameterStatuses map[string]string
	keyData           pgwire.BackendKeyData
}

func newConnState() *connState {
	return &connState{
		phase:             phaseIdle,
		buf:               make([]byte, minReadBufSize),
		parameterStatuses: make(map[string]string),
	}
}

// nextMessage frames one backend message from the buffer. It returns ok=false
// when the buffered bytes do not contain a complete message yet.
func (st *connState) nextMessage() (msgType byte, body []byte, ok bool, err error) {
	avail := st.written - st.parsed
	if avail < 5 {
		return 0, nil, false, nil
	}

	bodyLen := int(int32(binary.BigEndian.Uint32(st.buf[st.parsed+1:]))) - 4
	if bodyLen < 0 {
		return 0, nil, false, ErrProtocolValueError
	}
	if avail < bodyLen+5 {
		return 0, nil, false, nil
	}

	msgType = st.buf[st.parsed]
	body = st.buf[st.parsed+5 : st.parsed+5+bodyLen : st.parsed+5+bodyLen]
	st.parsed += bodyLen + 5
	return msgType, body, true, nil
}

// prepareRead makes room for more socket bytes: parsed bytes are compacted to
// the front, and the buffer grows geometrically when the pending message is
// larger than the current capacity.
func (st *connState) prepareRead() {
	if st.parsed > 0 {
		copy(st.buf, st.buf[st.parsed:st.written])
		st.written -= st.parsed
		st.parsed = 0
	}

	if st.written == len(st.buf) {
		need := len(st.buf) * 2
		if avail := st.written - st.parsed; avail >= 5 {
			if bodyLen := int(int32(binary.BigEndian.Uint32(st.buf[st.parsed+1:]))); bodyLen+1 > need {
				need = bodyLen + 1
			}
		}
		newBuf := make([]byte, need)
		copy(newBuf, st.buf[:st.written])
		st.buf = newBuf
	}
}

// readSpace is the slice the next socket read fills.
func (st *connState) readSpace() []byte { return st.buf[st.written:] }

// resetBuffer discards all buffered bytes. Used when the protocol stream is
// no longer trustworthy.
func (st *connState) resetBuffer() {
	st.written = 0
	st.parsed = 0
}

// hasBuffered reports whether unframed bytes remain.
func (st *connState) hasBuffered() bool { return st.written > st.parsed }

// Step intentions returned by the protocol state machines. The I/O driver
// performs the requested operation and resumes the machine with the outcome.
type stepKind int8

const (
	stepConnect stepKind = iota
	stepWrite
	stepRead
	stepClose
	stepDone
)

type step struct {
	kind stepKind
	data []byte // payload for stepWrite
	err  error  // result for stepDone
}

func connectStep() step          { return step{kind: stepConnect} }
func writeStep(data []byte) step { return step{kind: stepWrite, data: data} }
func readStep() step             { return step{kind: stepRead} }
func closeStep() step            { return step{kind: stepClose} }
func doneStep(err error) step    { return step{kind: stepDone, err: err} }
