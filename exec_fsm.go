package pgpipe

type execState int8

const (
	execInitial execState = iota
	execWriting
	execReading
	execDone
)

// execFSM combines "write the whole request payload" with "read responses
// until every handler has been answered" into one resumable operation.
type execFSM struct {
	req   *Request
	resp  *Response
	state execState
	read  readResponseFSM

	// wrote reports whether any bytes reached the socket. Failures before
	// the first write leave the connection untouched and reusable.
	wrote bool
}

func newExecFSM(req *Request, resp *Response, cfg *Config) *execFSM {
	return &execFSM{
		req:  req,
		resp: resp,
		read: newReadResponseFSM(req, resp, cfg),
	}
}

// Resume advances the machine with the outcome of the previously requested
// step.
func (f *execFSM) Resume(st *connState, ioErr error, n int) step {
	switch f.state {
	case execInitial:
		if err := f.req.Err(); err != nil {
			f.state = execDone
			return doneStep(err)
		}

		end, err := f.resp.setup(f.req, 0)
		if err != nil {
			f.state = execDone
			return doneStep(&Error{Code: err})
		}
		if end != len(f.req.Tags()) {
			// The handler chain does not cover the whole request.
			f.state = execDone
			return doneStep(&Error{Code: ErrIncompatibleResponseType})
		}

		if len(f.req.Payload()) == 0 {
			f.state = execDone
			return doneStep(nil)
		}

		f.state = execWriting
		f.wrote = true
		return writeStep(f.req.Payload())

	case execWriting:
		if ioErr != nil {
			f.state = execDone
			return doneStep(ioErr)
		}
		f.state = execReading
		return f.read.Resume(st, nil, 0)

	case execReading:
		s := f.read.Resume(st, ioErr, n)
		if s.kind == stepDone {
			f.state = execDone
		}
		return s

	default:
		return doneStep(ErrConnectionUnusable)
	}
}

// result resolves the overall outcome of the exec: the transport error when
// one occurred, otherwise the handler chain's aggregate result.
func (f *execFSM) result(ioErr error) error {
	if ioErr != nil {
		return ioErr
	}
	if res := f.resp.Result(); res != nil {
		return res
	}
	return nil
}
