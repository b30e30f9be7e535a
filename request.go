package pgpipe

import (
	"fmt"

	"github.com/jackc/pgpipe/pgwire"
)

// RequestTag identifies the kind of one frontend message in a Request.
type RequestTag int8

const (
	TagBind RequestTag = iota
	TagClose
	TagDescribe
	TagExecute
	TagFlush
	TagParse
	TagQuery
	TagSync
)

func (t RequestTag) String() string {
	switch t {
	case TagBind:
		return "Bind"
	case TagClose:
		return "Close"
	case TagDescribe:
		return "Describe"
	case TagExecute:
		return "Execute"
	case TagFlush:
		return "Flush"
	case TagParse:
		return "Parse"
	case TagQuery:
		return "Query"
	case TagSync:
		return "Sync"
	default:
		return fmt.Sprintf("invalid tag %d", int8(t))
	}
}

// QueryOptions adjusts how AddQuery and AddExecute encode a statement.
type QueryOptions struct {
	// ParamFormat selects text or per-parameter best encoding.
	ParamFormat ParamFormat

	// ResultFormat is pgwire.TextFormat or pgwire.BinaryFormat and applies
	// to every result column.
	ResultFormat int16

	// MaxRows limits the rows returned by the Execute; 0 is unlimited. When
	// the limit stops the portal early the server answers PortalSuspended.
	MaxRows uint32
}

// Request accumulates frontend messages into one contiguous payload. Payload
// and Tags grow in lockstep: every message appended adds exactly one tag.
//
// When autosync is enabled (the default), the builder helpers that complete a
// logical step append a Sync after the step. Autosync may be disabled to
// build custom pipeline patterns with manually placed Syncs; this changes
// which later statements a server error skips.
//
// A Request is not bound to a connection; the same Request may be executed
// any number of times, on any connection.
type Request struct {
	buf      []byte
	tags     []RequestTag
	autosync bool
	err      error
}

// NewRequest returns an empty Request with autosync enabled.
func NewRequest() *Request {
	return &Request{autosync: true}
}

// Autosync reports whether the builder appends a Sync after each logical
// step.
func (r *Request) Autosync() bool { return r.autosync }

// SetAutosync changes the autosync behavior for subsequently added steps.
func (r *Request) SetAutosync(v bool) { r.autosync = v }

// Payload returns the serialized frontend messages. The slice is owned by the
// Request and valid until the next Add call.
func (r *Request) Payload() []byte { return r.buf }

// Tags returns one tag per serialized message, in payload order.
func (r *Request) Tags() []RequestTag { return r.tags }

// Err returns the first serialization error encountered by any builder call,
// or nil. A Request with a non-nil Err cannot be executed.
func (r *Request) Err() error { return r.err }

// add serializes msg and records its tag. Serialization failures are sticky.
func (r *Request) add(msg pgwire.FrontendMessage, tag RequestTag) *Request {
	if r.err != nil {
		return r
	}

	buf, err := msg.Encode(r.buf)
	if err != nil {
		r.err = err
		return r
	}
	r.buf = buf
	r.tags = append(r.tags, tag)
	return r
}

func (r *Request) maybeAddSync() *Request {
	if r.autosync {
		return r.add(&pgwire.Sync{}, TagSync)
	}
	return r
}

// AddSimpleQuery adds a simple-protocol query (PQsendQuery). No Sync is
// appended: the Query message carries its own implicit sync.
func (r *Request) AddSimpleQuery(sql string) *Request {
	return r.add(&pgwire.Query{String: sql}, TagQuery)
}

// AddQuery adds a parameterized query using the extended protocol
// (PQsendQueryParams): Parse of the unnamed statement, Bind, Describe of the
// unnamed portal, and Execute. A nil opts selects best parameter format, text
// results, and no row limit.
func (r *Request) AddQuery(sql string, params []Param, opts *QueryOptions) *Request {
	if opts == nil {
		opts = &QueryOptions{ParamFormat: ParamFormatBest}
	}

	r.add(&pgwire.Parse{Query: sql}, TagParse)
	r.addBindDescribeExecute("", params, opts)
	return r.maybeAddSync()
}

// AddPrepare prepares a named statement (PQsendPrepare). paramOIDs may
// declare parameter types; zero or absent OIDs leave the type unspecified.
func (r *Request) AddPrepare(sql, statementName string, paramOIDs ...uint32) *Request {
	r.add(&pgwire.Parse{Name: statementName, Query: sql, ParameterOIDs: paramOIDs}, TagParse)
	return r.maybeAddSync()
}

// AddPrepareStatement prepares stmt's SQL under stmt's name, declaring its
// parameter type OIDs.
func (r *Request) AddPrepareStatement(sql string, stmt Statement) *Request {
	return r.AddPrepare(sql, stmt.Name, stmt.ParamOIDs...)
}

// AddExecute executes a named prepared statement (PQsendQueryPrepared): Bind
// of the unnamed portal, Describe of the portal, and Execute. A nil opts
// selects text parameter format — binary would require the statement to have
// been prepared with explicit type OIDs — plus text results and no row limit.
func (r *Request) AddExecute(statementName string, params []Param, opts *QueryOptions) *Request {
	if opts == nil {
		opts = &QueryOptions{ParamFormat: ParamFormatText}
	}

	r.addBindDescribeExecute(statementName, params, opts)
	return r.maybeAddSync()
}

// AddExecuteBound executes a bound statement with best parameter format.
func (r *Request) AddExecuteBound(b Bound, opts *QueryOptions) *Request {
	if opts == nil {
		opts = &QueryOptions{ParamFormat: ParamFormatBest}
	}
	return r.AddExecute(b.Name, b.Params, opts)
}

func (r *Request) addBindDescribeExecute(statementName string, params []Param, opts *QueryOptions) {
	formatCodes, values := encodeParams(params, opts.ParamFormat)

	r.add(&pgwire.Bind{
		PreparedStatement:    statementName,
		ParameterFormatCodes: formatCodes,
		Parameters:           values,
		ResultFormatCodes:    []int16{opts.ResultFormat},
	}, TagBind)
	r.add(&pgwire.Describe{ObjectType: pgwire.ObjectPortal}, TagDescribe)
	r.add(&pgwire.Execute{MaxRows: opts.MaxRows}, TagExecute)
}

// AddDescribeStatement describes a named prepared statement
// (PQsendDescribePrepared).
func (r *Request) AddDescribeStatement(statementName string) *Request {
	r.add(&pgwire.Describe{ObjectType: pgwire.ObjectStatement, Name: statementName}, TagDescribe)
	return r.maybeAddSync()
}

// AddDescribePortal describes a named portal (PQsendDescribePortal).
func (r *Request) AddDescribePortal(portalName string) *Request {
	r.add(&pgwire.Describe{ObjectType: pgwire.ObjectPortal, Name: portalName}, TagDescribe)
	return r.maybeAddSync()
}

// AddCloseStatement closes a named prepared statement (PQsendClosePrepared).
func (r *Request) AddCloseStatement(statementName string) *Request {
	r.add(&pgwire.Close{ObjectType: pgwire.ObjectStatement, Name: statementName}, TagClose)
	return r.maybeAddSync()
}

// AddClosePortal closes a named portal (PQsendClosePortal).
func (r *Request) AddClosePortal(portalName string) *Request {
	r.add(&pgwire.Close{ObjectType: pgwire.ObjectPortal, Name: portalName}, TagClose)
	return r.maybeAddSync()
}

// AddBind binds params to a named prepared statement without executing it.
func (r *Request) AddBind(statementName string, params []Param, portalName string, fmt ParamFormat, resultFormat int16) *Request {
	formatCodes, values := encodeParams(params, fmt)

	r.add(&pgwire.Bind{
		DestinationPortal:    portalName,
		PreparedStatement:    statementName,
		ParameterFormatCodes: formatCodes,
		Parameters:           values,
		ResultFormatCodes:    []int16{resultFormat},
	}, TagBind)
	return r.maybeAddSync()
}

// Add appends exactly the given message with no automatic Sync. Only the
// eight request message kinds are accepted.
func (r *Request) Add(msg pgwire.FrontendMessage) *Request {
	var tag RequestTag
	switch msg.(type) {
	case *pgwire.Bind:
		tag = TagBind
	case *pgwire.Close:
		tag = TagClose
	case *pgwire.Describe:
		tag = TagDescribe
	case *pgwire.Execute:
		tag = TagExecute
	case *pgwire.Flush:
		tag = TagFlush
	case *pgwire.Parse:
		tag = TagParse
	case *pgwire.Query:
		tag = TagQuery
	case *pgwire.Sync:
		tag = TagSync
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%T is not a request message", msg)
		}
		return r
	}
	return r.add(msg, tag)
}

// AddSync appends a Sync message.
func (r *Request) AddSync() *Request { return r.add(&pgwire.Sync{}, TagSync) }

// AddFlush appends a Flush message.
func (r *Request) AddFlush() *Request { return r.add(&pgwire.Flush{}, TagFlush) }

// Statement names a prepared statement together with the parameter type OIDs
// it was prepared with.
type Statement struct {
	Name      string
	ParamOIDs []uint32
}

// Bind pairs the statement with parameter values for AddExecuteBound.
func (s Statement) Bind(params ...Param) Bound {
	return Bound{Name: s.Name, Params: params}
}

// Bound is a named prepared statement with bound parameter values.
type Bound struct {
	Name   string
	Params []Param
}
