package pgpipe

import (
	"reflect"

	"github.com/jackc/pgpipe/pgtype"
	"github.com/jackc/pgpipe/pgwire"
)

// resultsetSetup walks the request tag stream starting at offset and returns
// the exclusive upper bound of one resultset-producing step. The step is
// either a single simple Query, or an extended-query group of optional
// Parse/Bind/Flush messages, exactly one Describe, and exactly one Execute.
// Leading and trailing Sync/Flush messages are claimed by the step.
func resultsetSetup(req *Request, offset int) (int, error) {
	tags := req.Tags()
	i := offset

	for i < len(tags) && (tags[i] == TagSync || tags[i] == TagFlush) {
		i++
	}
	if i >= len(tags) {
		return 0, ErrIncompatibleResponseType
	}

	if tags[i] == TagQuery {
		return i + 1, nil
	}

	describeFound, executeFound := false, false
	for ; i < len(tags) && !executeFound; i++ {
		switch tags[i] {
		case TagSync, TagFlush, TagParse, TagBind:
		case TagDescribe:
			if describeFound {
				return 0, ErrIncompatibleResponseType
			}
			describeFound = true
		case TagExecute:
			if !describeFound {
				return 0, ErrIncompatibleResponseType
			}
			executeFound = true
		default:
			return 0, ErrIncompatibleResponseType
		}
	}
	if !executeFound {
		return 0, ErrIncompatibleResponseType
	}

	for i < len(tags) && (tags[i] == TagSync || tags[i] == TagFlush) {
		i++
	}

	return i, nil
}

type resultsetState int8

const (
	parsingMeta resultsetState = iota
	parsingData
	resultsetDone
)

// Resultset decodes one resultset — RowDescription, DataRows, and the
// completion message — into values of T, invoking a callback for each row.
// Destination fields are matched to columns by name, not position.
type Resultset[T any] struct {
	cb      func(T)
	typeMap *pgtype.Map

	state    resultsetState
	plan     *pgtype.StructPlan
	bindings []pgtype.ColumnBinding
	err      *Error
}

// OnRow returns a handler that invokes cb with each decoded row. The row
// value does not alias the connection's read buffer and may be retained.
func OnRow[T any](cb func(T)) *Resultset[T] {
	return &Resultset[T]{cb: cb, typeMap: pgtype.DefaultMap()}
}

// Into returns a handler that appends each decoded row to *dst.
func Into[T any](dst *[]T) *Resultset[T] {
	return OnRow(func(row T) { *dst = append(*dst, row) })
}

// WithTypeMap makes the handler resolve destination field codecs from m
// instead of the default map.
func (h *Resultset[T]) WithTypeMap(m *pgtype.Map) *Resultset[T] {
	h.typeMap = m
	return h
}

func (h *Resultset[T]) storeErr(code error) {
	if h.err == nil {
		h.err = &Error{Code: code}
	}
}

// Setup implements ResponseHandler. It also resolves the decode plan for T,
// so an unsupported destination type fails before anything is written.
func (h *Resultset[T]) Setup(req *Request, offset int) (int, error) {
	h.state = parsingMeta
	h.err = nil
	h.bindings = nil

	if h.plan == nil {
		var sample T
		plan, err := h.typeMap.PlanStruct(reflect.TypeOf(sample))
		if err != nil {
			return 0, err
		}
		h.plan = plan
	}

	return resultsetSetup(req, offset)
}

// OnMessage implements ResponseHandler.
func (h *Resultset[T]) OnMessage(msg pgwire.BackendMessage, offset int) {
	switch msg := msg.(type) {
	case *pgwire.ParseComplete, *pgwire.BindComplete:
		// May or may not appear depending on the step shape.

	case *pgwire.RowDescription:
		// We now expect the rows and the completion message.
		h.state = parsingData

		bindings, err := h.plan.BindColumns(msg.Fields)
		if err != nil {
			// Metadata mismatch: rows are consumed but not parsed.
			h.storeErr(err)
			return
		}
		h.bindings = bindings

	case *pgwire.DataRow:
		if h.state != parsingData {
			h.storeErr(ErrIncompatibleResponseType)
			return
		}
		// If metadata resolution failed the bindings are not safe to use,
		// but the rows still need to be consumed to stay in sync.
		if h.err != nil {
			return
		}

		var row T
		if err := h.plan.ScanRow(h.bindings, msg.Columns, &row); err != nil {
			h.storeErr(err)
			return
		}
		h.cb(row)

	case *pgwire.CommandComplete, *pgwire.EmptyQueryResponse:
		h.state = resultsetDone

	case *pgwire.PortalSuspended:
		// The row limit stopped the portal. Treated as completion; there is
		// no API yet to resume the portal.
		h.state = resultsetDone

	case *pgwire.ErrorResponse:
		if h.err == nil {
			h.err = &Error{Code: ErrExecServerError, Diag: errorResponseToPgError(msg)}
		}
		h.state = resultsetDone

	case MessageSkipped:
		h.storeErr(ErrStepSkipped)

	default:
		// We shouldn't get any other message kinds.
		h.storeErr(ErrIncompatibleResponseType)
	}
}

// Result implements ResponseHandler.
func (h *Resultset[T]) Result() *Error { return h.err }

// ignoreHandler consumes one step's backend messages without decoding them.
type ignoreHandler struct {
	claimAll bool
	err      *Error
}

// IgnoreResults returns a handler that accepts whatever backend messages one
// request step produces and reports success unless the server answered with
// an error.
func IgnoreResults() ResponseHandler {
	return &ignoreHandler{}
}

// ignoreAll is the implicit response used when Exec is called without one: a
// single handler claiming the whole request.
func ignoreAll() *Response {
	return NewResponse(&ignoreHandler{claimAll: true})
}

func (h *ignoreHandler) Setup(req *Request, offset int) (int, error) {
	h.err = nil
	if h.claimAll {
		return len(req.Tags()), nil
	}

	// Claim one sync group: everything up to and including the next Sync,
	// or a single simple Query.
	tags := req.Tags()
	i := offset

	for i < len(tags) && (tags[i] == TagSync || tags[i] == TagFlush) {
		i++
	}
	if i >= len(tags) {
		return 0, ErrIncompatibleResponseType
	}

	if tags[i] == TagQuery {
		return i + 1, nil
	}

	for i < len(tags) && tags[i] != TagSync && tags[i] != TagQuery {
		i++
	}
	for i < len(tags) && (tags[i] == TagSync || tags[i] == TagFlush) {
		i++
	}
	return i, nil
}

func (h *ignoreHandler) OnMessage(msg pgwire.BackendMessage, offset int) {
	if msg, ok := msg.(*pgwire.ErrorResponse); ok {
		if h.err == nil {
			h.err = &Error{Code: ErrExecServerError, Diag: errorResponseToPgError(msg)}
		}
	}
}

func (h *ignoreHandler) Result() *Error { return h.err }
