package pgpipe

import (
	"testing"

	"github.com/jackc/pgpipe/pgwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHandler claims a fixed number of request messages and records every
// message it is handed.
type mockHandler struct {
	numMsgs int
	msgs    []pgwire.BackendMessage
	offsets []int
	err     *Error
}

func (h *mockHandler) Setup(req *Request, offset int) (int, error) {
	return offset + h.numMsgs, nil
}

func (h *mockHandler) OnMessage(msg pgwire.BackendMessage, offset int) {
	h.msgs = append(h.msgs, msg)
	h.offsets = append(h.offsets, offset)
}

func (h *mockHandler) Result() *Error { return h.err }

func TestResponseDispatchesByOffset(t *testing.T) {
	req := NewRequest().AddQuery("SELECT 1", nil, nil)

	h1 := &mockHandler{numMsgs: 2}
	h2 := &mockHandler{numMsgs: 3}
	resp := NewResponse(h1, h2)

	end, err := resp.setup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, end)

	// The 1st handler covers the first 2 request messages, the 2nd handler
	// the rest.
	resp.onMessage(&pgwire.ParseComplete{}, 0)
	resp.onMessage(&pgwire.BindComplete{}, 1)
	resp.onMessage(&pgwire.RowDescription{}, 2)
	resp.onMessage(&pgwire.DataRow{}, 3)
	resp.onMessage(&pgwire.CommandComplete{}, 3)

	assert.Nil(t, resp.Result())
	assert.Equal(t, []int{0, 1}, h1.offsets)
	assert.Equal(t, []int{2, 3, 3}, h2.offsets)
}

func TestResponseResultFirstErrorWins(t *testing.T) {
	h1 := &mockHandler{numMsgs: 1}
	h2 := &mockHandler{numMsgs: 1, err: &Error{Code: ErrFieldNotFound}}
	h3 := &mockHandler{numMsgs: 1, err: &Error{Code: ErrIncompatibleFieldType}}
	resp := NewResponse(h1, h2, h3)

	res := resp.Result()
	require.NotNil(t, res)
	assert.Equal(t, ErrFieldNotFound, res.Code)
}

func TestResultsetSetupSimpleQuery(t *testing.T) {
	req := NewRequest().AddSimpleQuery("SELECT 1").AddSimpleQuery("SELECT 2")

	next, err := resultsetSetup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	next, err = resultsetSetup(req, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestResultsetSetupExtendedGroup(t *testing.T) {
	req := NewRequest().AddQuery("SELECT $1", nil, nil)

	next, err := resultsetSetup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, next) // Parse Bind Describe Execute Sync
}

func TestResultsetSetupSkipsLeadingSync(t *testing.T) {
	req := NewRequest().AddSync().AddSimpleQuery("SELECT 1")

	next, err := resultsetSetup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestResultsetSetupRejectsIncompatibleSequences(t *testing.T) {
	// Describe without Execute.
	req := NewRequest().AddDescribeStatement("s")
	_, err := resultsetSetup(req, 0)
	assert.ErrorIs(t, err, ErrIncompatibleResponseType)

	// Close cannot produce a resultset.
	req = NewRequest().AddCloseStatement("s")
	_, err = resultsetSetup(req, 0)
	assert.ErrorIs(t, err, ErrIncompatibleResponseType)

	// Execute with no Describe: no metadata would be available.
	req = NewRequest()
	req.SetAutosync(false)
	req.Add(&pgwire.Parse{Query: "SELECT 1"}).Add(&pgwire.Bind{}).Add(&pgwire.Execute{}).AddSync()
	_, err = resultsetSetup(req, 0)
	assert.ErrorIs(t, err, ErrIncompatibleResponseType)

	// Empty request.
	_, err = resultsetSetup(NewRequest(), 0)
	assert.ErrorIs(t, err, ErrIncompatibleResponseType)
}

func TestResultsetHandlerDecodesRows(t *testing.T) {
	type countRow struct {
		Amount int64
	}

	req := NewRequest().AddSimpleQuery("select count(*) as amount from t")

	var rows []countRow
	h := Into(&rows)
	next, err := h.Setup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	h.OnMessage(&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
		{Name: "amount", DataTypeOID: 20, Format: pgwire.TextFormat},
	}}, 0)
	h.OnMessage(&pgwire.DataRow{Columns: [][]byte{[]byte("15")}}, 0)
	h.OnMessage(&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")}, 0)

	require.Nil(t, h.Result())
	require.Len(t, rows, 1)
	assert.EqualValues(t, 15, rows[0].Amount)
}

func TestResultsetHandlerFieldNotFound(t *testing.T) {
	type countRow struct {
		Amount int64
	}

	req := NewRequest().AddSimpleQuery("select count(*) from t")

	var rows []countRow
	h := Into(&rows)
	_, err := h.Setup(req, 0)
	require.NoError(t, err)

	h.OnMessage(&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
		{Name: "count", DataTypeOID: 20, Format: pgwire.TextFormat},
	}}, 0)
	// Rows are still consumed without parsing.
	h.OnMessage(&pgwire.DataRow{Columns: [][]byte{[]byte("15")}}, 0)
	h.OnMessage(&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")}, 0)

	res := h.Result()
	require.NotNil(t, res)
	assert.Equal(t, ErrFieldNotFound, res.Code)
	assert.Empty(t, rows)
}

func TestResultsetHandlerRowErrorDropsRowAndContinues(t *testing.T) {
	type row struct {
		N int32
	}

	req := NewRequest().AddSimpleQuery("select n from t")

	var rows []row
	h := Into(&rows)
	_, err := h.Setup(req, 0)
	require.NoError(t, err)

	h.OnMessage(&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
		{Name: "n", DataTypeOID: 23, Format: pgwire.TextFormat},
	}}, 0)
	h.OnMessage(&pgwire.DataRow{Columns: [][]byte{[]byte("bad")}}, 0)
	h.OnMessage(&pgwire.DataRow{Columns: [][]byte{[]byte("2")}}, 0)
	h.OnMessage(&pgwire.CommandComplete{CommandTag: []byte("SELECT 2")}, 0)

	// The first error is kept; later rows are consumed without decoding and
	// the handler still reaches the completion message.
	res := h.Result()
	require.NotNil(t, res)
	assert.Equal(t, ErrProtocolValueError, res.Code)
	require.Len(t, rows, 0)
	assert.Equal(t, resultsetDone, h.state)
}

func TestResultsetHandlerServerError(t *testing.T) {
	type row struct {
		N int32
	}

	req := NewRequest().AddQuery("select n from t", nil, nil)

	var rows []row
	h := Into(&rows)
	_, err := h.Setup(req, 0)
	require.NoError(t, err)

	h.OnMessage(&pgwire.ParseComplete{}, 0)
	h.OnMessage(&pgwire.ErrorResponse{Severity: "ERROR", Code: "42P01", Message: "relation does not exist"}, 0)

	res := h.Result()
	require.NotNil(t, res)
	assert.Equal(t, ErrExecServerError, res.Code)
	require.NotNil(t, res.Diag)
	assert.Equal(t, "42P01", res.Diag.Code)
}

func TestResultsetHandlerMessageSkipped(t *testing.T) {
	type row struct {
		N int32
	}

	req := NewRequest().AddQuery("select n from t", nil, nil)

	var rows []row
	h := Into(&rows)
	_, err := h.Setup(req, 0)
	require.NoError(t, err)

	h.OnMessage(MessageSkipped{}, 0)

	res := h.Result()
	require.NotNil(t, res)
	assert.Equal(t, ErrStepSkipped, res.Code)
}

func TestIgnoreResultsClaimsOneGroup(t *testing.T) {
	req := NewRequest().
		AddPrepare("SELECT $1", "s").
		AddExecute("s", nil, nil)

	h := IgnoreResults()
	next, err := h.Setup(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, next) // Parse + Sync

	h2 := IgnoreResults()
	next, err = h2.Setup(req, next)
	require.NoError(t, err)
	assert.Equal(t, 6, next) // Bind Describe Execute Sync
}
