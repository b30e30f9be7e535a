package pgtype

import (
	"testing"

	"github.com/jackc/pgpipe/pgwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textField(oid uint32) pgwire.FieldDescription {
	return pgwire.FieldDescription{DataTypeOID: oid, Format: pgwire.TextFormat}
}

func binaryField(oid uint32) pgwire.FieldDescription {
	return pgwire.FieldDescription{DataTypeOID: oid, Format: pgwire.BinaryFormat}
}

func TestIntCompatibility(t *testing.T) {
	assert.NoError(t, Int2Codec{}.CompatibleWith(textField(Int2OID)))
	assert.ErrorIs(t, Int2Codec{}.CompatibleWith(textField(Int4OID)), pgwire.ErrIncompatibleFieldType)
	assert.ErrorIs(t, Int2Codec{}.CompatibleWith(textField(Int8OID)), pgwire.ErrIncompatibleFieldType)

	assert.NoError(t, Int4Codec{}.CompatibleWith(textField(Int2OID)))
	assert.NoError(t, Int4Codec{}.CompatibleWith(textField(Int4OID)))
	assert.ErrorIs(t, Int4Codec{}.CompatibleWith(textField(Int8OID)), pgwire.ErrIncompatibleFieldType)

	assert.NoError(t, Int8Codec{}.CompatibleWith(textField(Int2OID)))
	assert.NoError(t, Int8Codec{}.CompatibleWith(textField(Int4OID)))
	assert.NoError(t, Int8Codec{}.CompatibleWith(textField(Int8OID)))

	assert.ErrorIs(t, Int8Codec{}.CompatibleWith(textField(TextOID)), pgwire.ErrIncompatibleFieldType)
}

func TestIntScanText(t *testing.T) {
	var n16 int16
	require.NoError(t, Int2Codec{}.Scan(textField(Int2OID), []byte("-42"), &n16))
	assert.EqualValues(t, -42, n16)

	var n64 int64
	require.NoError(t, Int8Codec{}.Scan(textField(Int8OID), []byte("9223372036854775807"), &n64))
	assert.EqualValues(t, int64(9223372036854775807), n64)

	// Widening: an int2 column scans into int64.
	require.NoError(t, Int8Codec{}.Scan(textField(Int2OID), []byte("7"), &n64))
	assert.EqualValues(t, 7, n64)
}

func TestIntScanTextErrors(t *testing.T) {
	var n32 int32

	assert.ErrorIs(t, Int4Codec{}.Scan(textField(Int4OID), []byte("12x"), &n32), pgwire.ErrExtraBytes)
	assert.ErrorIs(t, Int4Codec{}.Scan(textField(Int4OID), []byte("x"), &n32), pgwire.ErrProtocolValueError)
	assert.ErrorIs(t, Int4Codec{}.Scan(textField(Int4OID), []byte(""), &n32), pgwire.ErrProtocolValueError)
	assert.ErrorIs(t, Int4Codec{}.Scan(textField(Int4OID), []byte("99999999999"), &n32), pgwire.ErrProtocolValueError)
	assert.ErrorIs(t, Int4Codec{}.Scan(textField(Int4OID), nil, &n32), pgwire.ErrUnexpectedNull)
}

func TestIntScanBinary(t *testing.T) {
	var n16 int16
	require.NoError(t, Int2Codec{}.Scan(binaryField(Int2OID), []byte{0xFF, 0xD6}, &n16))
	assert.EqualValues(t, -42, n16)

	var n64 int64
	require.NoError(t, Int8Codec{}.Scan(binaryField(Int4OID), []byte{0x00, 0x00, 0x00, 0x2A}, &n64))
	assert.EqualValues(t, 42, n64)
}

func TestIntScanBinarySizeStrict(t *testing.T) {
	var n16 int16
	assert.ErrorIs(t, Int2Codec{}.Scan(binaryField(Int2OID), []byte{1}, &n16), pgwire.ErrProtocolValueError)

	var n64 int64
	assert.ErrorIs(t, Int8Codec{}.Scan(binaryField(Int8OID), []byte{1, 2, 3, 4}, &n64), pgwire.ErrProtocolValueError)
	// The value width follows the column OID, not the destination width.
	assert.ErrorIs(t, Int8Codec{}.Scan(binaryField(Int4OID), []byte{1, 2, 3, 4, 5, 6, 7, 8}, &n64), pgwire.ErrProtocolValueError)
}

func TestTextScanAnyOID(t *testing.T) {
	var s string
	require.NoError(t, TextCodec{}.Scan(textField(Int8OID), []byte("15"), &s))
	assert.Equal(t, "15", s)

	require.NoError(t, TextCodec{}.Scan(binaryField(UnknownOID), []byte{0x01, 0x02}, &s))
	assert.Equal(t, "\x01\x02", s)

	assert.NoError(t, TextCodec{}.CompatibleWith(textField(TimestampOID)))
	assert.ErrorIs(t, TextCodec{}.Scan(textField(TextOID), nil, &s), pgwire.ErrUnexpectedNull)
}
