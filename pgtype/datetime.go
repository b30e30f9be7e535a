package pgtype

import (
	"strings"
	"time"

	"github.com/jackc/pgpipe/pgwire"
)

// Shared parsing helpers for the date/time family. The text encodings are
// described in https://www.postgresql.org/docs/current/datatype-datetime.html;
// only the ISO output style is produced by the server on the wire.

const (
	microsecondsPerSecond = 1000000
	microsecondsPerMinute = 60 * microsecondsPerSecond
	microsecondsPerHour   = 60 * microsecondsPerMinute
	microsecondsPerDay    = 24 * microsecondsPerHour

	// Microseconds between the Unix epoch and the PostgreSQL epoch
	// 2000-01-01 00:00:00.
	microsecFromUnixEpochToY2K = 946684800 * 1000000

	// Days between the Unix epoch and 2000-01-01.
	daysFromUnixEpochToY2K = 10957
)

// consumeBC strips a trailing "BC" marker, case-insensitively.
func consumeBC(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || !strings.EqualFold(s[len(s)-2:], "BC") {
		return s, false
	}
	return strings.TrimSpace(s[:len(s)-2]), true
}

// parseInfinity recognizes the special values infinity and -infinity.
func parseInfinity(s string) (InfinityModifier, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "infinity") {
		return Infinity, true
	}
	if strings.EqualFold(s, "-infinity") {
		return NegativeInfinity, true
	}
	return Finite, false
}

// parseUint reads a run of decimal digits starting at s[pos]. It returns the
// value, the position after the digits, and whether at least one digit was
// read.
func parseUint(s string, pos int) (int, int, bool) {
	start := pos
	n := 0
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		n = n*10 + int(s[pos]-'0')
		pos++
	}
	return n, pos, pos > start
}

// parseDateParts parses "YYYY-MM-DD", consuming the whole string.
func parseDateParts(s string) (year, month, day int, err error) {
	s = strings.TrimSpace(s)

	var ok bool
	pos := 0
	year, pos, ok = parseUint(s, pos)
	if !ok || pos >= len(s) || s[pos] != '-' {
		return 0, 0, 0, pgwire.ErrProtocolValueError
	}
	pos++

	month, pos, ok = parseUint(s, pos)
	if !ok || pos >= len(s) || s[pos] != '-' {
		return 0, 0, 0, pgwire.ErrProtocolValueError
	}
	pos++

	day, pos, ok = parseUint(s, pos)
	if !ok || pos != len(s) {
		return 0, 0, 0, pgwire.ErrProtocolValueError
	}

	return year, month, day, nil
}

// validateYMD reports whether the civil date exists.
func validateYMD(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	y, m, d := t.Date()
	return y == year && int(m) == month && d == day
}

// parseFraction scales a run of fractional-second digits to microseconds.
// Digits beyond microsecond precision are dropped.
func parseFraction(digits string) int64 {
	var frac int64
	for _, c := range []byte(digits) {
		frac = frac*10 + int64(c-'0')
	}
	n := len(digits)
	if n > 6 {
		for i := 0; i < n-6; i++ {
			frac /= 10
		}
	} else {
		for i := 0; i < 6-n; i++ {
			frac *= 10
		}
	}
	return frac
}

// parseTimePrefix parses "HH:MM:SS[.ffffff]" starting at the beginning of s
// and returns the microseconds since midnight and the rest of the string.
// When capHours is true, hours are limited to 0-24 with 24:00:00 only allowed
// exactly; interval time parts pass false and have no hour limit.
func parseTimePrefix(s string, capHours bool) (usec int64, rest string, err error) {
	pos := 0

	hours, pos, ok := parseUint(s, pos)
	if !ok || pos >= len(s) || s[pos] != ':' {
		return 0, "", pgwire.ErrProtocolValueError
	}
	pos++

	minutes, pos, ok := parseUint(s, pos)
	if !ok || pos >= len(s) || s[pos] != ':' {
		return 0, "", pgwire.ErrProtocolValueError
	}
	pos++

	seconds, pos, ok := parseUint(s, pos)
	if !ok {
		return 0, "", pgwire.ErrProtocolValueError
	}

	var frac int64
	if pos < len(s) && s[pos] == '.' {
		pos++
		start := pos
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			pos++
		}
		if pos == start {
			return 0, "", pgwire.ErrProtocolValueError
		}
		frac = parseFraction(s[start:pos])
	}

	if minutes > 59 || seconds > 59 {
		return 0, "", pgwire.ErrProtocolValueError
	}
	if capHours {
		if hours > 24 {
			return 0, "", pgwire.ErrProtocolValueError
		}
		if hours == 24 && (minutes != 0 || seconds != 0 || frac != 0) {
			return 0, "", pgwire.ErrProtocolValueError
		}
	}

	usec = int64(hours)*microsecondsPerHour +
		int64(minutes)*microsecondsPerMinute +
		int64(seconds)*microsecondsPerSecond +
		frac
	return usec, s[pos:], nil
}

// parseTZSuffix parses a timezone suffix: empty (UTC), "Z"/"UTC"/"UT"/"GMT",
// or ±HH, ±HHMM, ±HH:MM limited to ±15:59. It consumes the whole string and
// returns the offset in seconds east of UTC.
func parseTZSuffix(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.EqualFold(s, "Z") || strings.EqualFold(s, "UTC") ||
		strings.EqualFold(s, "UT") || strings.EqualFold(s, "GMT") {
		return 0, nil
	}

	if s[0] != '+' && s[0] != '-' {
		return 0, pgwire.ErrProtocolValueError
	}
	sign := int32(1)
	if s[0] == '-' {
		sign = -1
	}
	pos := 1

	hours := 0
	digits := 0
	for pos < len(s) && digits < 2 && s[pos] >= '0' && s[pos] <= '9' {
		hours = hours*10 + int(s[pos]-'0')
		pos++
		digits++
	}
	if digits == 0 {
		return 0, pgwire.ErrProtocolValueError
	}

	minutes := 0
	switch {
	case pos == len(s):
	case s[pos] == ':':
		pos++
		if len(s)-pos != 2 || s[pos] < '0' || s[pos] > '9' || s[pos+1] < '0' || s[pos+1] > '9' {
			return 0, pgwire.ErrProtocolValueError
		}
		minutes = int(s[pos]-'0')*10 + int(s[pos+1]-'0')
		pos += 2
	case s[pos] >= '0' && s[pos] <= '9':
		// HHMM format
		if len(s)-pos != 2 {
			return 0, pgwire.ErrProtocolValueError
		}
		minutes = int(s[pos]-'0')*10 + int(s[pos+1]-'0')
		pos += 2
	default:
		return 0, pgwire.ErrProtocolValueError
	}

	if pos != len(s) {
		return 0, pgwire.ErrProtocolValueError
	}
	if hours > 15 || minutes > 59 {
		return 0, pgwire.ErrProtocolValueError
	}

	return sign * int32(hours*3600+minutes*60), nil
}

// appendTimeOfDay appends HH:MM:SS and, when the value has sub-second
// precision, a six digit fraction.
func appendTimeOfDay(buf []byte, usec int64) []byte {
	hours := usec / microsecondsPerHour
	usec -= hours * microsecondsPerHour
	minutes := usec / microsecondsPerMinute
	usec -= minutes * microsecondsPerMinute
	seconds := usec / microsecondsPerSecond
	frac := usec - seconds*microsecondsPerSecond

	buf = appendPadded(buf, int(hours), 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, int(minutes), 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, int(seconds), 2)
	if frac != 0 {
		buf = append(buf, '.')
		buf = appendPadded(buf, int(frac), 6)
	}
	return buf
}

// appendTZOffset appends ±HH or ±HH:MM for an offset in seconds east of UTC.
func appendTZOffset(buf []byte, offsetSeconds int32) []byte {
	if offsetSeconds < 0 {
		buf = append(buf, '-')
		offsetSeconds = -offsetSeconds
	} else {
		buf = append(buf, '+')
	}
	hours := offsetSeconds / 3600
	minutes := offsetSeconds % 3600 / 60
	buf = appendPadded(buf, int(hours), 2)
	if minutes != 0 {
		buf = append(buf, ':')
		buf = appendPadded(buf, int(minutes), 2)
	}
	return buf
}

// appendPadded appends n as decimal with at least width digits.
func appendPadded(buf []byte, n int, width int) []byte {
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	for len(tmp)-i < width {
		i--
		tmp[i] = '0'
	}
	return append(buf, tmp[i:]...)
}

// daysFromCivil converts a civil date to days since the Unix epoch.
func daysFromCivil(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	var era int64
	if y >= 0 {
		era = int64(y) / 400
	} else {
		era = (int64(y) - 399) / 400
	}
	yoe := int64(y) - era*400 // [0, 399]
	var mp int64
	if m > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1        // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy    // [0, 146096]
	return era*146097 + doe - 719468
}

// civilFromDays converts days since the Unix epoch to a civil date.
func civilFromDays(z int64) (y, m, d int) {
	z += 719468
	var era int64
	if z >= 0 {
		era = z / 146097
	} else {
		era = (z - 146096) / 146097
	}
	doe := z - era*146097                                    // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365   // [0, 399]
	yy := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)                 // [0, 365]
	mp := (5*doy + 2) / 153                                  // [0, 11]
	d = int(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		m = int(mp + 3)
	} else {
		m = int(mp - 9)
	}
	if m <= 2 {
		yy++
	}
	return int(yy), m, d
}
