package pgpipe

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/jackc/pgpipe/pgwire"
)

type startupState int8

const (
	startupInitial startupState = iota
	startupConnecting
	startupWritingStartup
	startupReading
	startupWritingPassword
	startupClosing
	startupDone
)

// startupFSM drives connection establishment from the TCP connect through
// authentication until the first ReadyForQuery. It owns no I/O: each Resume
// returns the next step intention and the driver performs it.
type startupFSM struct {
	cfg   *Config
	state startupState

	wbuf        []byte
	pendingDone error // delivered after a close step
}

func newStartupFSM(cfg *Config) *startupFSM {
	return &startupFSM{cfg: cfg}
}

// Resume advances the machine. ioErr and n are the outcome of the previously
// requested step: the transport error, if any, and the bytes transferred by a
// read.
func (f *startupFSM) Resume(st *connState, ioErr error, n int) step {
	if ioErr != nil && f.state != startupClosing {
		f.state = startupDone
		return doneStep(ioErr)
	}

	switch f.state {
	case startupInitial:
		f.state = startupConnecting
		return connectStep()

	case startupConnecting:
		st.phase = phaseStartup
		msg := &pgwire.StartupMessage{
			ProtocolVersion: pgwire.ProtocolVersionNumber,
			Parameters:      f.cfg.startupParameters(),
		}
		wbuf, err := msg.Encode(f.wbuf[:0])
		if err != nil {
			f.state = startupDone
			return doneStep(err)
		}
		f.wbuf = wbuf
		f.state = startupWritingStartup
		return writeStep(f.wbuf)

	case startupWritingStartup:
		st.phase = phaseAuthenticating
		f.state = startupReading
		st.prepareRead()
		return readStep()

	case startupWritingPassword:
		f.state = startupReading
		st.prepareRead()
		return readStep()

	case startupReading:
		st.written += n
		return f.processBuffered(st)

	case startupClosing:
		f.state = startupDone
		return doneStep(f.pendingDone)

	default:
		return doneStep(ErrConnectionUnusable)
	}
}

// processBuffered consumes every complete backend message in the buffer and
// decides the next step.
func (f *startupFSM) processBuffered(st *connState) step {
	for {
		msgType, body, ok, err := st.nextMessage()
		if err != nil {
			f.state = startupDone
			return doneStep(err)
		}
		if !ok {
			st.prepareRead()
			return readStep()
		}

		msg, err := st.decoder.Decode(msgType, body)
		if err != nil {
			f.state = startupDone
			return doneStep(err)
		}
		if msg == nil {
			// Unknown message type: skipped.
			continue
		}

		switch msg := msg.(type) {
		case *pgwire.AuthenticationOk:
			// Keep reading until ReadyForQuery.

		case *pgwire.AuthenticationCleartextPassword:
			return f.sendPassword(f.cfg.Password)

		case *pgwire.AuthenticationMD5Password:
			digested := "md5" + hexMD5(hexMD5(f.cfg.Password+f.cfg.User)+string(msg.Salt[:]))
			return f.sendPassword(digested)

		case pgwire.AuthenticationResponseMessage:
			// SASL (SCRAM) and the other mechanisms are not implemented.
			f.pendingDone = &Error{Code: ErrUnsupportedAuthMethod}
			f.state = startupClosing
			return closeStep()

		case *pgwire.ErrorResponse:
			st.sharedDiag = errorResponseToPgError(msg)
			f.pendingDone = &Error{Code: ErrServerStartupError, Diag: st.sharedDiag}
			f.state = startupClosing
			return closeStep()

		case *pgwire.ParameterStatus:
			st.parameterStatuses[msg.Name] = msg.Value

		case *pgwire.BackendKeyData:
			st.keyData = *msg

		case *pgwire.NoticeResponse:
			if f.cfg.OnNotice != nil {
				f.cfg.OnNotice(errorResponseToPgError((*pgwire.ErrorResponse)(msg)))
			}

		case *pgwire.ReadyForQuery:
			st.phase = phaseReadyForQuery
			f.state = startupDone
			return doneStep(nil)

		default:
			// NegotiateProtocolVersion and friends are absorbed.
		}
	}
}

func (f *startupFSM) sendPassword(password string) step {
	msg := &pgwire.PasswordMessage{Password: password}
	wbuf, err := msg.Encode(f.wbuf[:0])
	if err != nil {
		f.state = startupDone
		return doneStep(err)
	}
	f.wbuf = wbuf
	f.state = startupWritingPassword
	return writeStep(f.wbuf)
}

func hexMD5(s string) string {
	hash := md5.New()
	io.WriteString(hash, s)
	return hex.EncodeToString(hash.Sum(nil))
}
