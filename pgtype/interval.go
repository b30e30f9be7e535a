package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/jackc/pgpipe/pgwire"
)

// Interval corresponds to the PostgreSQL interval type. Months, days and
// microseconds are independent components and are not normalized into each
// other.
type Interval struct {
	Microseconds int64
	Days         int32
	Months       int32
}

// DecodeText parses the postgres verbose-free ISO-ish output, e.g.
// "1 year 2 mons 3 days 04:05:06.000007". Units combine additively. A sign
// preceding the HH:MM:SS component applies to the whole component.
func (dst *Interval) DecodeText(src []byte) error {
	if len(src) == 0 {
		return pgwire.ErrProtocolValueError
	}

	var out Interval
	s := string(src)
	pos := 0

	skipWS := func() {
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
			pos++
		}
	}

	for {
		skipWS()
		if pos >= len(s) {
			break
		}

		end := strings.IndexAny(s[pos:], " \t")
		if end < 0 {
			end = len(s)
		} else {
			end += pos
		}
		part := s[pos:end]

		if strings.ContainsRune(part, ':') {
			// Signed time component
			sign := int64(1)
			if part[0] == '-' {
				sign = -1
				part = part[1:]
			} else if part[0] == '+' {
				part = part[1:]
			}

			usec, rest, err := parseTimePrefix(part, false)
			if err != nil {
				return err
			}
			if rest != "" {
				return pgwire.ErrProtocolValueError
			}
			out.Microseconds += sign * usec
			pos = end
			continue
		}

		// "value unit" pair
		val, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return pgwire.ErrProtocolValueError
		}
		pos = end

		skipWS()
		unitStart := pos
		for pos < len(s) && s[pos] >= 'a' && s[pos] <= 'z' {
			pos++
		}
		unit := s[unitStart:pos]

		switch unit {
		case "year", "years":
			out.Months += int32(val * 12)
		case "mon", "mons":
			out.Months += int32(val)
		case "day", "days":
			out.Days += int32(val)
		case "hour", "hours":
			out.Microseconds += val * microsecondsPerHour
		case "minute", "minutes":
			out.Microseconds += val * microsecondsPerMinute
		case "second", "seconds":
			out.Microseconds += val * microsecondsPerSecond
		default:
			return pgwire.ErrProtocolValueError
		}
	}

	*dst = out
	return nil
}

// DecodeBinary parses the binary encoding: a big-endian int64 of microseconds
// followed by int32 days and int32 months.
func (dst *Interval) DecodeBinary(src []byte) error {
	if len(src) != 16 {
		return pgwire.ErrProtocolValueError
	}

	dst.Microseconds = int64(binary.BigEndian.Uint64(src))
	dst.Days = int32(binary.BigEndian.Uint32(src[8:]))
	dst.Months = int32(binary.BigEndian.Uint32(src[12:]))
	return nil
}

// EncodeText appends the text encoding of src to buf.
func (src Interval) EncodeText(buf []byte) ([]byte, error) {
	wrote := false

	if src.Months != 0 {
		years := src.Months / 12
		months := src.Months % 12
		if years != 0 {
			buf = strconv.AppendInt(buf, int64(years), 10)
			buf = append(buf, " year "...)
		}
		buf = strconv.AppendInt(buf, int64(months), 10)
		buf = append(buf, " mons "...)
		wrote = true
	}

	if src.Days != 0 {
		buf = strconv.AppendInt(buf, int64(src.Days), 10)
		buf = append(buf, " days "...)
		wrote = true
	}

	usec := src.Microseconds
	if usec != 0 || !wrote {
		if usec < 0 {
			buf = append(buf, '-')
			usec = -usec
		}
		buf = appendTimeOfDay(buf, usec)
	} else {
		// Trim the trailing space left by the unit writers.
		buf = buf[:len(buf)-1]
	}

	return buf, nil
}

// EncodeBinary appends the binary encoding of src to buf.
func (src Interval) EncodeBinary(buf []byte) ([]byte, error) {
	buf = pgio.AppendInt64(buf, src.Microseconds)
	buf = pgio.AppendInt32(buf, src.Days)
	buf = pgio.AppendInt32(buf, src.Months)
	return buf, nil
}

// IntervalCodec decodes interval columns into Interval.
type IntervalCodec struct{}

// CompatibleWith implements Codec.
func (IntervalCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != IntervalOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (IntervalCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[Interval](dst)
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
