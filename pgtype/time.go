package pgtype

import (
	"encoding/binary"
	"strings"

	"github.com/jackc/pgio"
	"github.com/jackc/pgpipe/pgwire"
)

// Time corresponds to the PostgreSQL time type: microseconds since midnight.
// The range is 00:00:00 through 24:00:00 inclusive.
type Time struct {
	Microseconds int64
}

// DecodeText parses the text encoding "HH:MM:SS[.ffffff]".
func (dst *Time) DecodeText(src []byte) error {
	if len(src) == 0 {
		return pgwire.ErrProtocolValueError
	}

	usec, rest, err := parseTimePrefix(strings.TrimSpace(string(src)), true)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rest) != "" {
		return pgwire.ErrProtocolValueError
	}

	*dst = Time{Microseconds: usec}
	return nil
}

// DecodeBinary parses the binary encoding: a big-endian int64 of microseconds
// since midnight.
func (dst *Time) DecodeBinary(src []byte) error {
	if len(src) != 8 {
		return pgwire.ErrProtocolValueError
	}

	usec := int64(binary.BigEndian.Uint64(src))
	if usec < 0 || usec > microsecondsPerDay {
		return pgwire.ErrProtocolValueError
	}

	*dst = Time{Microseconds: usec}
	return nil
}

// EncodeText appends the text encoding of src to buf.
func (src Time) EncodeText(buf []byte) ([]byte, error) {
	return appendTimeOfDay(buf, src.Microseconds), nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Time) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt64(buf, src.Microseconds), nil
}

// TimeCodec decodes time columns into Time.
type TimeCodec struct{}

// CompatibleWith implements Codec.
func (TimeCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != TimeOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (TimeCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Time](dst)
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
