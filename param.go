package pgpipe

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/jackc/pgpipe/pgtype"
	"github.com/jackc/pgpipe/pgwire"
)

// ParamFormat selects how the builder encodes query parameters on the wire.
type ParamFormat int8

const (
	// ParamFormatText forces the text encoding for every parameter.
	ParamFormatText ParamFormat = iota

	// ParamFormatBest encodes each parameter in binary when its variant has
	// a binary encoding, and text otherwise.
	ParamFormatBest
)

type paramKind int8

const (
	paramNull paramKind = iota
	paramInt16
	paramInt32
	paramInt64
	paramFloat32
	paramFloat64
	paramString
	paramRaw
)

// Param is a value used as a query parameter: NULL, a signed integer, a
// float, a string, or raw bytes with an explicit type OID and format.
type Param struct {
	kind   paramKind
	i      int64
	f      float64
	s      string
	raw    []byte
	oid    uint32
	format int16
}

// NullParam returns a NULL parameter.
func NullParam() Param { return Param{kind: paramNull} }

// Int16Param returns an int2 parameter.
func Int16Param(v int16) Param { return Param{kind: paramInt16, i: int64(v)} }

// Int32Param returns an int4 parameter.
func Int32Param(v int32) Param { return Param{kind: paramInt32, i: int64(v)} }

// Int64Param returns an int8 parameter.
func Int64Param(v int64) Param { return Param{kind: paramInt64, i: v} }

// Float32Param returns a float4 parameter.
func Float32Param(v float32) Param { return Param{kind: paramFloat32, f: float64(v)} }

// Float64Param returns a float8 parameter.
func Float64Param(v float64) Param { return Param{kind: paramFloat64, f: v} }

// StringParam returns a text parameter.
func StringParam(v string) Param { return Param{kind: paramString, s: v} }

// RawParam returns a parameter sent verbatim with the given type OID and
// format code.
func RawParam(value []byte, oid uint32, format int16) Param {
	return Param{kind: paramRaw, raw: value, oid: oid, format: format}
}

// OID returns the PostgreSQL type OID the parameter declares, or zero to
// leave the type unspecified.
func (p Param) OID() uint32 {
	switch p.kind {
	case paramInt16:
		return pgtype.Int2OID
	case paramInt32:
		return pgtype.Int4OID
	case paramInt64:
		return pgtype.Int8OID
	case paramFloat32:
		return pgtype.Float4OID
	case paramFloat64:
		return pgtype.Float8OID
	case paramRaw:
		return p.oid
	default:
		return 0
	}
}

// hasBinary reports whether the variant carries a binary encoding.
func (p Param) hasBinary() bool {
	switch p.kind {
	case paramInt16, paramInt32, paramInt64, paramFloat32, paramFloat64:
		return true
	case paramRaw:
		return p.format == pgwire.BinaryFormat
	default:
		return false
	}
}

// wireFormat resolves the format code the parameter uses under fmt.
func (p Param) wireFormat(fmt ParamFormat) int16 {
	if p.kind == paramRaw {
		return p.format
	}
	if fmt == ParamFormatBest && p.hasBinary() {
		return pgwire.BinaryFormat
	}
	return pgwire.TextFormat
}

// encode appends the parameter value in the given wire format. A NULL
// parameter returns nil.
func (p Param) encode(format int16) []byte {
	switch p.kind {
	case paramNull:
		return nil
	case paramInt16:
		if format == pgwire.BinaryFormat {
			var buf [2]byte
			binary.BigEndian.PutUint16(buf[:], uint16(int16(p.i)))
			return buf[:]
		}
		return []byte(strconv.FormatInt(p.i, 10))
	case paramInt32:
		if format == pgwire.BinaryFormat {
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(int32(p.i)))
			return buf[:]
		}
		return []byte(strconv.FormatInt(p.i, 10))
	case paramInt64:
		if format == pgwire.BinaryFormat {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(p.i))
			return buf[:]
		}
		return []byte(strconv.FormatInt(p.i, 10))
	case paramFloat32:
		if format == pgwire.BinaryFormat {
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(p.f)))
			return buf[:]
		}
		return []byte(strconv.FormatFloat(p.f, 'g', -1, 32))
	case paramFloat64:
		if format == pgwire.BinaryFormat {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(p.f))
			return buf[:]
		}
		return []byte(strconv.FormatFloat(p.f, 'g', -1, 64))
	case paramString:
		return []byte(p.s)
	case paramRaw:
		if p.raw == nil {
			return []byte{}
		}
		return p.raw
	default:
		return nil
	}
}

// encodeParams resolves format codes and values for a Bind message.
func encodeParams(params []Param, fmt ParamFormat) (formatCodes []int16, values [][]byte) {
	if len(params) == 0 {
		return nil, nil
	}

	formatCodes = make([]int16, len(params))
	values = make([][]byte, len(params))
	for i, p := range params {
		formatCodes[i] = p.wireFormat(fmt)
		values[i] = p.encode(formatCodes[i])
	}
	return formatCodes, values
}
