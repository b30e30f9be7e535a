package pgtype

import (
	"encoding/binary"
	"strings"

	"github.com/jackc/pgio"
	"github.com/jackc/pgpipe/pgwire"
)

// Timetz corresponds to the PostgreSQL timetz type. UTCOffsetSeconds is
// seconds east of UTC; the wire stores seconds west, so the value is negated
// on load and store.
type Timetz struct {
	Microseconds     int64
	UTCOffsetSeconds int32
}

// DecodeText parses the text encoding "HH:MM:SS[.ffffff]±HH[:MM]".
func (dst *Timetz) DecodeText(src []byte) error {
	if len(src) == 0 {
		return pgwire.ErrProtocolValueError
	}

	usec, rest, err := parseTimePrefix(strings.TrimSpace(string(src)), true)
	if err != nil {
		return err
	}
	offset, err := parseTZSuffix(rest)
	if err != nil {
		return err
	}

	*dst = Timetz{Microseconds: usec, UTCOffsetSeconds: offset}
	return nil
}

// DecodeBinary parses the binary encoding: a big-endian int64 of microseconds
// since midnight followed by a big-endian int32 of seconds west of UTC.
func (dst *Timetz) DecodeBinary(src []byte) error {
	if len(src) != 12 {
		return pgwire.ErrProtocolValueError
	}

	usec := int64(binary.BigEndian.Uint64(src))
	offsetWest := int32(binary.BigEndian.Uint32(src[8:]))

	*dst = Timetz{Microseconds: usec, UTCOffsetSeconds: -offsetWest}
	return nil
}

// EncodeText appends the text encoding of src to buf.
func (src Timetz) EncodeText(buf []byte) ([]byte, error) {
	buf = appendTimeOfDay(buf, src.Microseconds)
	buf = appendTZOffset(buf, src.UTCOffsetSeconds)
	return buf, nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Timetz) EncodeBinary(buf []byte) ([]byte, error) {
	buf = pgio.AppendInt64(buf, src.Microseconds)
	buf = pgio.AppendInt32(buf, -src.UTCOffsetSeconds)
	return buf, nil
}

// TimetzCodec decodes timetz columns into Timetz.
type TimetzCodec struct{}

// CompatibleWith implements Codec.
func (TimetzCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != TimetzOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (TimetzCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Timetz](dst)
	if err != nil {
		return err
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}
	if fd.Format == pgwire.TextFormat {
		return p.DecodeText(src)
	}
	return p.DecodeBinary(src)
}
