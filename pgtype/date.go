package pgtype

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/jackc/pgio"
	"github.com/jackc/pgpipe/pgwire"
)

const (
	infinityDayOffset         = math.MaxInt32
	negativeInfinityDayOffset = math.MinInt32
)

// Date corresponds to the PostgreSQL date type. Time holds midnight UTC of
// the civil date when the value is finite.
type Date struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// DecodeText parses the text encoding "YYYY-MM-DD" with an optional trailing
// " BC", or the special values infinity and -infinity.
func (dst *Date) DecodeText(src []byte) error {
	s := string(src)

	if im, ok := parseInfinity(s); ok {
		*dst = Date{InfinityModifier: im}
		return nil
	}

	s, bc := consumeBC(s)
	year, month, day, err := parseDateParts(s)
	if err != nil {
		return err
	}
	if bc {
		year = 1 - year
	}
	if !validateYMD(year, month, day) {
		return pgwire.ErrProtocolValueError
	}

	*dst = Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
	return nil
}

// DecodeBinary parses the binary encoding: a big-endian int32 of days since
// 2000-01-01.
func (dst *Date) DecodeBinary(src []byte) error {
	if len(src) != 4 {
		return pgwire.ErrProtocolValueError
	}

	dayOffset := int32(binary.BigEndian.Uint32(src))
	switch dayOffset {
	case infinityDayOffset:
		*dst = Date{InfinityModifier: Infinity}
		return nil
	case negativeInfinityDayOffset:
		*dst = Date{InfinityModifier: NegativeInfinity}
		return nil
	}

	year, month, day := civilFromDays(daysFromUnixEpochToY2K + int64(dayOffset))
	*dst = Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
	return nil
}

// EncodeText appends the text encoding of src to buf.
func (src Date) EncodeText(buf []byte) ([]byte, error) {
	switch src.InfinityModifier {
	case Infinity:
		return append(buf, "infinity"...), nil
	case NegativeInfinity:
		return append(buf, "-infinity"...), nil
	}

	year, month, day := src.Time.Date()
	bc := false
	if year <= 0 {
		year = 1 - year
		bc = true
	}

	buf = appendPadded(buf, year, 4)
	buf = append(buf, '-')
	buf = appendPadded(buf, int(month), 2)
	buf = append(buf, '-')
	buf = appendPadded(buf, day, 2)
	if bc {
		buf = append(buf, " BC"...)
	}
	return buf, nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Date) EncodeBinary(buf []byte) ([]byte, error) {
	switch src.InfinityModifier {
	case Infinity:
		return pgio.AppendInt32(buf, infinityDayOffset), nil
	case NegativeInfinity:
		return pgio.AppendInt32(buf, negativeInfinityDayOffset), nil
	}

	year, month, day := src.Time.Date()
	dayOffset := daysFromCivil(year, int(month), day) - daysFromUnixEpochToY2K
	if dayOffset > math.MaxInt32 || dayOffset < math.MinInt32 {
		return nil, pgwire.ErrProtocolValueError
	}
	return pgio.AppendInt32(buf, int32(dayOffset)), nil
}

// DateCodec decodes date columns into Date.
type DateCodec struct{}

// CompatibleWith implements Codec.
func (DateCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != DateOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (DateCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Date](dst)
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
