package pgpipe

import (
	"github.com/jackc/pgpipe/pgwire"
)

// readResponseFSM streams backend messages out of the connection's read
// buffer one at a time, hands each to the handler whose range covers the
// request message being answered, and terminates when every request message
// has been answered.
//
// The frontendCursor tracks which request message the incoming backend
// messages belong to. The protocol defines which backend messages close the
// answer to which frontend messages; the cursor advances on those
// boundaries. When the server reports an error the remaining messages of the
// sync group are never sent, so the cursor skips ahead to the next Sync,
// delivering a MessageSkipped sentinel for each unattended request message,
// and the following ReadyForQuery resynchronizes the stream.
type readResponseFSM struct {
	req  *Request
	resp *Response
	cfg  *Config

	frontendCursor int
	truncating     bool
	finished       bool
}

func newReadResponseFSM(req *Request, resp *Response, cfg *Config) readResponseFSM {
	return readResponseFSM{req: req, resp: resp, cfg: cfg}
}

// Resume advances the machine with the outcome of the previously requested
// read.
func (f *readResponseFSM) Resume(st *connState, ioErr error, n int) step {
	if ioErr != nil {
		return doneStep(ioErr)
	}
	st.written += n

	for {
		if f.finished {
			return doneStep(nil)
		}

		msgType, body, ok, err := st.nextMessage()
		if err != nil {
			return doneStep(err)
		}
		if !ok {
			st.prepareRead()
			return readStep()
		}

		msg, err := st.decoder.Decode(msgType, body)
		if err != nil {
			return doneStep(err)
		}
		if msg == nil {
			// Unknown message type: payload discarded.
			continue
		}

		f.process(st, msg)
	}
}

// process dispatches one backend message and advances the frontend cursor.
func (f *readResponseFSM) process(st *connState, msg pgwire.BackendMessage) {
	tags := f.req.Tags()

	switch msg := msg.(type) {
	case *pgwire.ParameterStatus:
		st.parameterStatuses[msg.Name] = msg.Value
		return

	case *pgwire.NoticeResponse:
		if f.cfg != nil && f.cfg.OnNotice != nil {
			f.cfg.OnNotice(errorResponseToPgError((*pgwire.ErrorResponse)(msg)))
		}
		return

	case *pgwire.NotificationResponse:
		// Received and dropped; there is no delivery mechanism.
		return

	case *pgwire.ReadyForQuery:
		// Closes the Sync — or the implicit sync of a simple Query — at the
		// cursor, and resynchronizes after an error.
		f.truncating = false
		if f.frontendCursor < len(tags) && (tags[f.frontendCursor] == TagSync || tags[f.frontendCursor] == TagQuery) {
			f.frontendCursor++
		}
		if f.frontendCursor >= len(tags) {
			f.finished = true
		}
		return

	case *pgwire.ErrorResponse:
		if f.frontendCursor >= len(tags) {
			return
		}
		st.sharedDiag = errorResponseToPgError(msg)
		f.resp.onMessage(msg, f.frontendCursor)
		f.truncating = true

		// The rest of the sync group will never be answered. A simple Query
		// recovers on its own ReadyForQuery without skipping anything.
		if tags[f.frontendCursor] != TagQuery {
			f.frontendCursor++
			for f.frontendCursor < len(tags) && tags[f.frontendCursor] != TagSync {
				f.resp.onMessage(MessageSkipped{}, f.frontendCursor)
				f.frontendCursor++
			}
		}
		return
	}

	if f.truncating || f.frontendCursor >= len(tags) {
		return
	}

	f.resp.onMessage(msg, f.frontendCursor)

	cur := tags[f.frontendCursor]
	switch msg.(type) {
	case *pgwire.ParseComplete, *pgwire.BindComplete, *pgwire.CloseComplete:
		f.frontendCursor++

	case *pgwire.RowDescription, *pgwire.NoData:
		// Answers a Describe. Within a simple Query the metadata belongs to
		// the Query itself and does not advance.
		if cur == TagDescribe {
			f.frontendCursor++
		}

	case *pgwire.ParameterDescription:
		// First half of a statement Describe; RowDescription or NoData
		// still follows.

	case *pgwire.CommandComplete, *pgwire.EmptyQueryResponse, *pgwire.PortalSuspended:
		// Closes an Execute. A simple Query may produce several of these;
		// only its ReadyForQuery advances.
		if cur == TagExecute {
			f.frontendCursor++
		}
	}

	if f.frontendCursor >= len(tags) {
		f.finished = true
	}
}
