package pgpipe

import (
	"encoding/binary"
	"testing"

	"github.com/jackc/pgpipe/pgwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countMessages walks the serialized payload and returns the number of framed
// frontend messages.
func countMessages(t *testing.T, payload []byte) int {
	t.Helper()
	count := 0
	for len(payload) > 0 {
		require.GreaterOrEqual(t, len(payload), 5)
		msgLen := int(binary.BigEndian.Uint32(payload[1:])) + 1
		require.GreaterOrEqual(t, len(payload), msgLen)
		payload = payload[msgLen:]
		count++
	}
	return count
}

func TestRequestTagsMatchPayload(t *testing.T) {
	req := NewRequest().
		AddSimpleQuery("SELECT 1").
		AddQuery("SELECT $1", []Param{Int32Param(1)}, nil).
		AddPrepare("SELECT $1", "stmt").
		AddExecute("stmt", []Param{StringParam("x")}, nil).
		AddDescribeStatement("stmt").
		AddCloseStatement("stmt")

	require.NoError(t, req.Err())
	assert.Equal(t, len(req.Tags()), countMessages(t, req.Payload()))
}

func TestRequestAddSimpleQueryNoSync(t *testing.T) {
	req := NewRequest().AddSimpleQuery("SELECT 1")
	require.NoError(t, req.Err())
	assert.Equal(t, []RequestTag{TagQuery}, req.Tags())
}

func TestRequestAddQueryTags(t *testing.T) {
	req := NewRequest().AddQuery("SELECT $1", []Param{Int32Param(1)}, nil)
	require.NoError(t, req.Err())
	assert.Equal(t, []RequestTag{TagParse, TagBind, TagDescribe, TagExecute, TagSync}, req.Tags())
}

func TestRequestAutosyncDisabled(t *testing.T) {
	req := NewRequest()
	req.SetAutosync(false)
	req.AddQuery("SELECT $1", nil, nil).AddQuery("SELECT $2", nil, nil).AddSync()
	require.NoError(t, req.Err())

	assert.Equal(t, []RequestTag{
		TagParse, TagBind, TagDescribe, TagExecute,
		TagParse, TagBind, TagDescribe, TagExecute,
		TagSync,
	}, req.Tags())
}

func TestRequestBuilderTags(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*Request) *Request
		expected []RequestTag
	}{
		{"prepare", func(r *Request) *Request { return r.AddPrepare("SELECT 1", "s") }, []RequestTag{TagParse, TagSync}},
		{"execute", func(r *Request) *Request { return r.AddExecute("s", nil, nil) }, []RequestTag{TagBind, TagDescribe, TagExecute, TagSync}},
		{"describe statement", func(r *Request) *Request { return r.AddDescribeStatement("s") }, []RequestTag{TagDescribe, TagSync}},
		{"describe portal", func(r *Request) *Request { return r.AddDescribePortal("p") }, []RequestTag{TagDescribe, TagSync}},
		{"close statement", func(r *Request) *Request { return r.AddCloseStatement("s") }, []RequestTag{TagClose, TagSync}},
		{"close portal", func(r *Request) *Request { return r.AddClosePortal("p") }, []RequestTag{TagClose, TagSync}},
		{"bind", func(r *Request) *Request { return r.AddBind("s", nil, "", ParamFormatText, pgwire.TextFormat) }, []RequestTag{TagBind, TagSync}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.build(NewRequest())
			require.NoError(t, req.Err())
			assert.Equal(t, tt.expected, req.Tags())
			assert.Equal(t, len(tt.expected), countMessages(t, req.Payload()))
		})
	}
}

func TestRequestAddRawNoSync(t *testing.T) {
	req := NewRequest().
		Add(&pgwire.Parse{Query: "SELECT 1"}).
		Add(&pgwire.Bind{}).
		Add(&pgwire.Describe{ObjectType: pgwire.ObjectPortal}).
		Add(&pgwire.Execute{}).
		Add(&pgwire.Flush{})

	require.NoError(t, req.Err())
	assert.Equal(t, []RequestTag{TagParse, TagBind, TagDescribe, TagExecute, TagFlush}, req.Tags())
}

func TestRequestAddRejectsNonRequestMessage(t *testing.T) {
	req := NewRequest().Add(&pgwire.PasswordMessage{Password: "x"})
	assert.Error(t, req.Err())
	assert.Empty(t, req.Tags())
}

func TestRequestParamFormatSelection(t *testing.T) {
	req := NewRequest().AddQuery("SELECT $1, $2", []Param{Int32Param(7), StringParam("x")}, nil)
	require.NoError(t, req.Err())

	// Skip over Parse to the Bind message and decode it.
	payload := req.Payload()
	parseLen := int(binary.BigEndian.Uint32(payload[1:])) + 1
	bindBody := payload[parseLen+5 : parseLen+1+int(binary.BigEndian.Uint32(payload[parseLen+1:]))]

	var bind pgwire.Bind
	require.NoError(t, bind.Decode(bindBody))

	// select_best: the int has a binary encoding, the string does not.
	assert.Equal(t, []int16{pgwire.BinaryFormat, pgwire.TextFormat}, bind.ParameterFormatCodes)
	assert.Equal(t, []byte{0, 0, 0, 7}, bind.Parameters[0])
	assert.Equal(t, []byte("x"), bind.Parameters[1])
}

func TestRequestParamFormatForceText(t *testing.T) {
	req := NewRequest().AddQuery("SELECT $1", []Param{Int64Param(42)}, &QueryOptions{ParamFormat: ParamFormatText})
	require.NoError(t, req.Err())

	payload := req.Payload()
	parseLen := int(binary.BigEndian.Uint32(payload[1:])) + 1
	bindBody := payload[parseLen+5 : parseLen+1+int(binary.BigEndian.Uint32(payload[parseLen+1:]))]

	var bind pgwire.Bind
	require.NoError(t, bind.Decode(bindBody))
	assert.Equal(t, []int16{pgwire.TextFormat}, bind.ParameterFormatCodes)
	assert.Equal(t, []byte("42"), bind.Parameters[0])
}

func TestRequestNullParam(t *testing.T) {
	req := NewRequest().AddQuery("SELECT $1", []Param{NullParam()}, nil)
	require.NoError(t, req.Err())

	payload := req.Payload()
	parseLen := int(binary.BigEndian.Uint32(payload[1:])) + 1
	bindBody := payload[parseLen+5 : parseLen+1+int(binary.BigEndian.Uint32(payload[parseLen+1:]))]

	var bind pgwire.Bind
	require.NoError(t, bind.Decode(bindBody))
	require.Len(t, bind.Parameters, 1)
	assert.Nil(t, bind.Parameters[0])
}

func TestRequestReusableAcrossExecs(t *testing.T) {
	req := NewRequest().AddSimpleQuery("SELECT 1")
	payload1 := append([]byte(nil), req.Payload()...)

	// The request is read-only for consumers: building another one from the
	// same content yields the same bytes.
	req2 := NewRequest().AddSimpleQuery("SELECT 1")
	assert.Equal(t, payload1, req2.Payload())
}

func TestStatementBind(t *testing.T) {
	stmt := Statement{Name: "s", ParamOIDs: []uint32{23}}
	bound := stmt.Bind(Int32Param(5))
	assert.Equal(t, "s", bound.Name)
	require.Len(t, bound.Params, 1)

	req := NewRequest().AddPrepareStatement("SELECT $1", stmt).AddExecuteBound(bound, nil)
	require.NoError(t, req.Err())
	assert.Equal(t, []RequestTag{TagParse, TagSync, TagBind, TagDescribe, TagExecute, TagSync}, req.Tags())
}
