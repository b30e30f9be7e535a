package pgtype

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgio"
	"github.com/jackc/pgpipe/pgwire"
)

// parseTimestampText parses "YYYY-MM-DD HH:MM:SS[.ffffff]" with optional BC
// marker. When withTZ is true a trailing timezone suffix is parsed and
// subtracted so the result is a UTC instant; otherwise trailing bytes are an
// error.
func parseTimestampText(s string, withTZ bool) (time.Time, error) {
	s = strings.TrimSpace(s)

	s, bc := consumeBC(s)
	s = strings.TrimSpace(s)

	sep := strings.IndexAny(s, " T")
	if sep < 0 {
		return time.Time{}, pgwire.ErrProtocolValueError
	}
	dateStr := s[:sep]
	timeStr := strings.TrimSpace(s[sep+1:])

	year, month, day, err := parseDateParts(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	if bc {
		year = 1 - year
	}
	if !validateYMD(year, month, day) {
		return time.Time{}, pgwire.ErrProtocolValueError
	}

	usec, rest, err := parseTimePrefix(timeStr, true)
	if err != nil {
		return time.Time{}, err
	}

	var offset int32
	if withTZ {
		offset, err = parseTZSuffix(rest)
		if err != nil {
			return time.Time{}, err
		}
	} else if strings.TrimSpace(rest) != "" {
		return time.Time{}, pgwire.ErrProtocolValueError
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	t = t.Add(time.Duration(usec) * time.Microsecond)
	t = t.Add(-time.Duration(offset) * time.Second)
	return t, nil
}

// decodeTimestampBinary parses the binary encoding shared by timestamp and
// timestamptz: a big-endian int64 of microseconds since 2000-01-01 00:00:00,
// with int64 extrema as the infinity sentinels.
func decodeTimestampBinary(src []byte) (time.Time, InfinityModifier, error) {
	if len(src) != 8 {
		return time.Time{}, Finite, pgwire.ErrProtocolValueError
	}

	microsecSinceY2K := int64(binary.BigEndian.Uint64(src))
	switch microsecSinceY2K {
	case math.MaxInt64:
		return time.Time{}, Infinity, nil
	case math.MinInt64:
		return time.Time{}, NegativeInfinity, nil
	}

	microsecSinceUnixEpoch := microsecFromUnixEpochToY2K + microsecSinceY2K
	t := time.Unix(
		microsecSinceUnixEpoch/microsecondsPerSecond,
		microsecSinceUnixEpoch%microsecondsPerSecond*1000,
	).UTC()
	return t, Finite, nil
}

// encodeTimestampBinary is the inverse of decodeTimestampBinary.
func encodeTimestampBinary(buf []byte, t time.Time, im InfinityModifier) ([]byte, error) {
	switch im {
	case Infinity:
		return pgio.AppendInt64(buf, math.MaxInt64), nil
	case NegativeInfinity:
		return pgio.AppendInt64(buf, math.MinInt64), nil
	}

	t = t.UTC()
	year, month, day := t.Date()
	days := daysFromCivil(year, int(month), day)
	usecOfDay := int64(t.Hour())*microsecondsPerHour +
		int64(t.Minute())*microsecondsPerMinute +
		int64(t.Second())*microsecondsPerSecond +
		int64(t.Nanosecond())/1000
	microsecSinceY2K := (days-daysFromUnixEpochToY2K)*microsecondsPerDay + usecOfDay
	return pgio.AppendInt64(buf, microsecSinceY2K), nil
}

// appendTimestampText appends "YYYY-MM-DD HH:MM:SS[.ffffff]" and reports
// whether the year is BC so the caller can place the marker after any
// timezone suffix.
func appendTimestampText(buf []byte, t time.Time) ([]byte, bool) {
	year, month, day := t.Date()
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
	buf = append(buf, ' ')

	usecOfDay := int64(t.Hour())*microsecondsPerHour +
		int64(t.Minute())*microsecondsPerMinute +
		int64(t.Second())*microsecondsPerSecond +
		int64(t.Nanosecond())/1000
	buf = appendTimeOfDay(buf, usecOfDay)

	return buf, bc
}

// Timestamp corresponds to the PostgreSQL timestamp type: a civil date and
// time without timezone. Time holds the value with a UTC location.
type Timestamp struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// DecodeText parses the text encoding.
func (dst *Timestamp) DecodeText(src []byte) error {
	s := string(src)

	if im, ok := parseInfinity(s); ok {
		*dst = Timestamp{InfinityModifier: im}
		return nil
	}

	t, err := parseTimestampText(s, false)
	if err != nil {
		return err
	}
	*dst = Timestamp{Time: t}
	return nil
}

// DecodeBinary parses the binary encoding.
func (dst *Timestamp) DecodeBinary(src []byte) error {
	t, im, err := decodeTimestampBinary(src)
	if err != nil {
		return err
	}
	*dst = Timestamp{Time: t, InfinityModifier: im}
	return nil
}

// EncodeText appends the text encoding of src to buf.
func (src Timestamp) EncodeText(buf []byte) ([]byte, error) {
	switch src.InfinityModifier {
	case Infinity:
		return append(buf, "infinity"...), nil
	case NegativeInfinity:
		return append(buf, "-infinity"...), nil
	}
	buf, bc := appendTimestampText(buf, src.Time.UTC())
	if bc {
		buf = append(buf, " BC"...)
	}
	return buf, nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Timestamp) EncodeBinary(buf []byte) ([]byte, error) {
	return encodeTimestampBinary(buf, src.Time, src.InfinityModifier)
}

// TimestampCodec decodes timestamp columns into Timestamp.
type TimestampCodec struct{}

// CompatibleWith implements Codec.
func (TimestampCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != TimestampOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (TimestampCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Timestamp](dst)
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
