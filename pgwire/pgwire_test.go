package pgwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupMessageEncode(t *testing.T) {
	msg := &StartupMessage{
		ProtocolVersion: ProtocolVersionNumber,
		Parameters:      map[string]string{"user": "jack"},
	}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)

	expected := []byte{
		0x00, 0x00, 0x00, 0x13, // length: 19
		0x00, 0x03, 0x00, 0x00, // protocol 3.0
		'u', 's', 'e', 'r', 0,
		'j', 'a', 'c', 'k', 0,
		0,
	}
	assert.Equal(t, expected, buf)
}

func TestStartupMessageRoundTrip(t *testing.T) {
	msg := &StartupMessage{
		ProtocolVersion: ProtocolVersionNumber,
		Parameters:      map[string]string{"user": "jack", "database": "app", "application_name": "test"},
	}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)

	var decoded StartupMessage
	require.NoError(t, decoded.Decode(buf[4:]))
	assert.Equal(t, msg.ProtocolVersion, decoded.ProtocolVersion)
	assert.Equal(t, msg.Parameters, decoded.Parameters)
}

func TestQueryEncode(t *testing.T) {
	buf, err := (&Query{String: "SELECT 1"}).Encode(nil)
	require.NoError(t, err)

	expected := []byte{
		'Q',
		0x00, 0x00, 0x00, 0x0D,
		'S', 'E', 'L', 'E', 'C', 'T', ' ', '1', 0,
	}
	assert.Equal(t, expected, buf)
}

func TestParseRoundTrip(t *testing.T) {
	msg := &Parse{Name: "stmt", Query: "SELECT $1", ParameterOIDs: []uint32{25}}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 'P', buf[0])

	var decoded Parse
	require.NoError(t, decoded.Decode(buf[5:]))
	assert.Equal(t, *msg, decoded)
}

func TestBindRoundTrip(t *testing.T) {
	msg := &Bind{
		DestinationPortal:    "",
		PreparedStatement:    "stmt",
		ParameterFormatCodes: []int16{TextFormat, BinaryFormat},
		Parameters:           [][]byte{[]byte("1977-06-21"), {0x00, 0x2A}},
		ResultFormatCodes:    []int16{BinaryFormat},
	}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 'B', buf[0])

	var decoded Bind
	require.NoError(t, decoded.Decode(buf[5:]))
	assert.Equal(t, *msg, decoded)
}

func TestBindNullParameter(t *testing.T) {
	msg := &Bind{Parameters: [][]byte{nil}}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)

	var decoded Bind
	require.NoError(t, decoded.Decode(buf[5:]))
	require.Len(t, decoded.Parameters, 1)
	assert.Nil(t, decoded.Parameters[0])
}

func TestDescribeCloseExecuteEncode(t *testing.T) {
	buf, err := (&Describe{ObjectType: ObjectPortal, Name: ""}).Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{'D', 0, 0, 0, 6, 'P', 0}, buf)

	buf, err = (&Close{ObjectType: ObjectStatement, Name: "s1"}).Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{'C', 0, 0, 0, 8, 'S', 's', '1', 0}, buf)

	buf, err = (&Execute{MaxRows: 10}).Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{'E', 0, 0, 0, 9, 0, 0, 0, 0, 10}, buf)
}

func TestEmptyBodyMessagesEncode(t *testing.T) {
	tests := []struct {
		msg      FrontendMessage
		expected []byte
	}{
		{&Sync{}, []byte{'S', 0, 0, 0, 4}},
		{&Flush{}, []byte{'H', 0, 0, 0, 4}},
		{&Terminate{}, []byte{'X', 0, 0, 0, 4}},
	}

	for _, tt := range tests {
		buf, err := tt.msg.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, buf)
	}
}

func TestRowDescriptionRoundTrip(t *testing.T) {
	msg := &RowDescription{Fields: []FieldDescription{
		{
			Name:                 "amount",
			TableOID:             16384,
			TableAttributeNumber: 1,
			DataTypeOID:          20,
			DataTypeSize:         8,
			TypeModifier:         -1,
			Format:               TextFormat,
		},
	}}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 'T', buf[0])

	var decoded RowDescription
	require.NoError(t, decoded.Decode(buf[5:]))
	assert.Equal(t, msg.Fields, decoded.Fields)
}

func TestDataRowDecodeDistinguishesNullAndEmpty(t *testing.T) {
	msg := &DataRow{Columns: [][]byte{nil, {}, []byte("x")}}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)

	var decoded DataRow
	require.NoError(t, decoded.Decode(buf[5:]))
	require.Len(t, decoded.Columns, 3)
	assert.Nil(t, decoded.Columns[0])
	assert.NotNil(t, decoded.Columns[1])
	assert.Empty(t, decoded.Columns[1])
	assert.Equal(t, []byte("x"), decoded.Columns[2])
}

func TestErrorResponseRoundTrip(t *testing.T) {
	msg := &ErrorResponse{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: "t_pkey",
		TableName:      "t",
		File:           "nbtinsert.c",
		Line:           563,
		Routine:        "_bt_check_unique",
	}

	buf, err := msg.Encode(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 'E', buf[0])

	var decoded ErrorResponse
	require.NoError(t, decoded.Decode(buf[5:]))
	assert.Equal(t, *msg, decoded)
}

func TestAuthenticationDecode(t *testing.T) {
	msg, err := decodeAuthentication([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	assert.IsType(t, &AuthenticationOk{}, msg)

	msg, err = decodeAuthentication([]byte{0, 0, 0, 3})
	require.NoError(t, err)
	assert.IsType(t, &AuthenticationCleartextPassword{}, msg)

	msg, err = decodeAuthentication([]byte{0, 0, 0, 5, 'a', 'b', 'c', 'd'})
	require.NoError(t, err)
	md5Msg := msg.(*AuthenticationMD5Password)
	assert.Equal(t, [4]byte{'a', 'b', 'c', 'd'}, md5Msg.Salt)

	msg, err = decodeAuthentication([]byte{0, 0, 0, 10, 'S', 'C', 'R', 'A', 'M', '-', 'S', 'H', 'A', '-', '2', '5', '6', 0, 0})
	require.NoError(t, err)
	saslMsg := msg.(*AuthenticationSASL)
	assert.Equal(t, []string{"SCRAM-SHA-256"}, saslMsg.AuthMechanisms)
}

func TestBackendDecoderSkipsUnknownMessages(t *testing.T) {
	var d BackendDecoder
	msg, err := d.Decode('!', []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestBackendDecoderDecodesKnownMessages(t *testing.T) {
	var d BackendDecoder

	msg, err := d.Decode('Z', []byte{'I'})
	require.NoError(t, err)
	rfq := msg.(*ReadyForQuery)
	assert.EqualValues(t, TxStatusIdle, rfq.TxStatus)

	msg, err = d.Decode('C', []byte("SELECT 1\x00"))
	require.NoError(t, err)
	cc := msg.(*CommandComplete)
	assert.Equal(t, []byte("SELECT 1"), cc.CommandTag)

	msg, err = d.Decode('K', []byte{0, 0, 0, 42, 0, 0, 16, 146})
	require.NoError(t, err)
	kd := msg.(*BackendKeyData)
	assert.EqualValues(t, 42, kd.ProcessID)
	assert.EqualValues(t, 4242, kd.SecretKey)
}

func TestPasswordMessageEncode(t *testing.T) {
	buf, err := (&PasswordMessage{Password: "secret"}).Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{'p', 0, 0, 0, 11, 's', 'e', 'c', 'r', 'e', 't', 0}, buf)
}

func TestCancelRequestEncode(t *testing.T) {
	buf, err := (&CancelRequest{ProcessID: 42, SecretKey: 4242}).Encode(nil)
	require.NoError(t, err)

	expected := []byte{
		0x00, 0x00, 0x00, 0x10,
		0x04, 0xD2, 0x16, 0x2E,
		0x00, 0x00, 0x00, 0x2A,
		0x00, 0x00, 0x10, 0x92,
	}
	assert.Equal(t, expected, buf)
}
