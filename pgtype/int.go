package pgtype

import (
	"encoding/binary"
	"strconv"

	"github.com/jackc/pgpipe/pgwire"
)

// parseTextInt parses a decimal integer that must fill the whole of src.
// Trailing bytes after a valid integer are reported as pgwire.ErrExtraBytes;
// out-of-range and malformed values as pgwire.ErrProtocolValueError.
func parseTextInt(src []byte, bitSize int) (int64, error) {
	i := 0
	if i < len(src) && (src[i] == '+' || src[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return 0, pgwire.ErrProtocolValueError
	}

	n, err := strconv.ParseInt(string(src[:i]), 10, bitSize)
	if err != nil {
		return 0, pgwire.ErrProtocolValueError
	}
	if i != len(src) {
		return 0, pgwire.ErrExtraBytes
	}
	return n, nil
}

// decodeInt decodes a column of any integer OID into an int64, honoring the
// column's wire format. Binary values must have exactly the width implied by
// the OID.
func decodeInt(fd pgwire.FieldDescription, src []byte) (int64, error) {
	if fd.Format == pgwire.TextFormat {
		switch fd.DataTypeOID {
		case Int2OID:
			return parseTextInt(src, 16)
		case Int4OID:
			return parseTextInt(src, 32)
		default:
			return parseTextInt(src, 64)
		}
	}

	switch fd.DataTypeOID {
	case Int2OID:
		if len(src) != 2 {
			return 0, pgwire.ErrProtocolValueError
		}
		return int64(int16(binary.BigEndian.Uint16(src))), nil
	case Int4OID:
		if len(src) != 4 {
			return 0, pgwire.ErrProtocolValueError
		}
		return int64(int32(binary.BigEndian.Uint32(src))), nil
	case Int8OID:
		if len(src) != 8 {
			return 0, pgwire.ErrProtocolValueError
		}
		return int64(binary.BigEndian.Uint64(src)), nil
	default:
		return 0, pgwire.ErrProtocolValueError
	}
}

// Int2Codec decodes int2 columns into int16.
type Int2Codec struct{}

// CompatibleWith implements Codec.
func (Int2Codec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != Int2OID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements Codec.
func (Int2Codec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[int16](dst)
	if err != nil {
		return err
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}
	n, err := decodeInt(fd, src)
	if err != nil {
		return err
	}
	*p = int16(n)
	return nil
}

// Int4Codec decodes int2 and int4 columns into int32. Narrowing OIDs are
// rejected at compatibility time.
type Int4Codec struct{}

// CompatibleWith implements Codec.
func (Int4Codec) CompatibleWith(fd pgwire.FieldDescription) error {
	switch fd.DataTypeOID {
	case Int2OID, Int4OID:
		return nil
	}
	return pgwire.ErrIncompatibleFieldType
}

// Scan implements Codec.
func (Int4Codec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[int32](dst)
	if err != nil {
		return err
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}
	n, err := decodeInt(fd, src)
	if err != nil {
		return err
	}
	*p = int32(n)
	return nil
}

// Int8Codec decodes int2, int4 and int8 columns into int64.
type Int8Codec struct{}

// CompatibleWith implements Codec.
func (Int8Codec) CompatibleWith(fd pgwire.FieldDescription) error {
	switch fd.DataTypeOID {
	case Int2OID, Int4OID, Int8OID:
		return nil
	}
	return pgwire.ErrIncompatibleFieldType
}

// Scan implements Codec.
func (Int8Codec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[int64](dst)
	if err != nil {
		return err
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}
	n, err := decodeInt(fd, src)
	if err != nil {
		return err
	}
	*p = n
	return nil
}
