package pgpipe

import (
	"github.com/jackc/pgpipe/pgwire"
)

// MessageSkipped is not a real backend message. It is delivered to a handler
// once for each of its expected messages that the server skipped because an
// earlier statement in the same sync group failed.
type MessageSkipped struct{}

// Backend marks MessageSkipped as deliverable where backend messages are.
func (MessageSkipped) Backend() {}

// Decode implements pgwire.Message. MessageSkipped has no wire form.
func (MessageSkipped) Decode([]byte) error { return nil }

// Encode implements pgwire.Message. MessageSkipped has no wire form.
func (MessageSkipped) Encode(dst []byte) ([]byte, error) { return dst, nil }

// ResponseHandler consumes the backend messages that answer a contiguous
// range of a Request's messages.
//
// Setup is called once before the request is written. offset is the index of
// the first request message the handler covers; the return value is the
// exclusive upper bound, i.e. the offset at which the next handler takes
// over. A handler that cannot serve the message sequence returns an error.
//
// OnMessage delivers one backend message together with the index of the
// request message it answers. Messages that alias the connection's read
// buffer (DataRow, CommandComplete) are only valid for the duration of the
// call.
//
// Result returns the handler's outcome after the exec completes; nil is
// success.
type ResponseHandler interface {
	Setup(req *Request, offset int) (int, error)
	OnMessage(msg pgwire.BackendMessage, offset int)
	Result() *Error
}

// Response is a chain of handlers covering a whole Request, in order. It is
// bound to one Exec call at a time and must not be shared between concurrent
// calls.
type Response struct {
	handlers []ResponseHandler
	offsets  []int
	current  int
}

// NewResponse builds a Response from handlers. The handlers together must
// cover every message of the request the Response is executed with.
func NewResponse(handlers ...ResponseHandler) *Response {
	return &Response{
		handlers: handlers,
		offsets:  make([]int, len(handlers)),
	}
}

// setup runs the Setup pass over the chain. It returns the offset after the
// last handler's range.
func (r *Response) setup(req *Request, offset int) (int, error) {
	r.current = 0
	for i, h := range r.handlers {
		next, err := h.Setup(req, offset)
		if err != nil {
			return 0, err
		}
		r.offsets[i] = next
		offset = next
	}
	return offset, nil
}

// onMessage hands msg to the handler whose range covers offset.
func (r *Response) onMessage(msg pgwire.BackendMessage, offset int) {
	for r.current < len(r.handlers) && offset >= r.offsets[r.current] {
		r.current++
	}
	if r.current >= len(r.handlers) {
		return
	}
	r.handlers[r.current].OnMessage(msg, offset)
}

// Result returns the first non-nil handler result, in slot order.
func (r *Response) Result() *Error {
	for _, h := range r.handlers {
		if res := h.Result(); res != nil {
			return res
		}
	}
	return nil
}

// Handlers returns the handler chain.
func (r *Response) Handlers() []ResponseHandler { return r.handlers }
