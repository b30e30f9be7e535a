package pgtype

import (
	"time"

	"github.com/jackc/pgpipe/pgwire"
)

// Timestamptz corresponds to the PostgreSQL timestamptz type: an absolute UTC
// instant. The wire encodings are the same as timestamp except the text form
// carries a timezone suffix.
type Timestamptz struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// DecodeText parses the text encoding and normalizes to UTC.
func (dst *Timestamptz) DecodeText(src []byte) error {
	s := string(src)

	if im, ok := parseInfinity(s); ok {
		*dst = Timestamptz{InfinityModifier: im}
		return nil
	}

	t, err := parseTimestampText(s, true)
	if err != nil {
		return err
	}
	*dst = Timestamptz{Time: t}
	return nil
}

// DecodeBinary parses the binary encoding.
func (dst *Timestamptz) DecodeBinary(src []byte) error {
	t, im, err := decodeTimestampBinary(src)
	if err != nil {
		return err
	}
	*dst = Timestamptz{Time: t, InfinityModifier: im}
	return nil
}

// EncodeText appends the text encoding of src to buf with a +00 suffix.
func (src Timestamptz) EncodeText(buf []byte) ([]byte, error) {
	switch src.InfinityModifier {
	case Infinity:
		return append(buf, "infinity"...), nil
	case NegativeInfinity:
		return append(buf, "-infinity"...), nil
	}
	buf, bc := appendTimestampText(buf, src.Time.UTC())
	buf = append(buf, "+00"...)
	if bc {
		buf = append(buf, " BC"...)
	}
	return buf, nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Timestamptz) EncodeBinary(buf []byte) ([]byte, error) {
	return encodeTimestampBinary(buf, src.Time, src.InfinityModifier)
}

// TimestamptzCodec decodes timestamptz columns into Timestamptz.
type TimestamptzCodec struct{}

// CompatibleWith implements Codec.
func (TimestamptzCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != TimestamptzOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (TimestamptzCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Timestamptz](dst)
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
