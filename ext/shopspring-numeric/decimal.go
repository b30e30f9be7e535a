// Package numeric registers a pgtype codec that decodes the PostgreSQL
// numeric type into github.com/shopspring/decimal.Decimal destination fields.
package numeric

import (
	"encoding/binary"

	"github.com/jackc/pgpipe/pgtype"
	"github.com/jackc/pgpipe/pgwire"
	"github.com/shopspring/decimal"
)

// Register adds the Decimal codec to m.
func Register(m *pgtype.Map) {
	m.RegisterCodec(decimal.Decimal{}, Codec{})
}

// Codec decodes numeric columns into decimal.Decimal.
type Codec struct{}

// CompatibleWith implements pgtype.Codec.
func (Codec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != pgtype.NumericOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements pgtype.Codec.
func (Codec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, ok := dst.(*decimal.Decimal)
	if !ok {
		return pgwire.ErrIncompatibleFieldType
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}

	if fd.Format == pgwire.TextFormat {
		d, err := decimal.NewFromString(string(src))
		if err != nil {
			return pgwire.ErrProtocolValueError
		}
		*p = d
		return nil
	}

	return decodeBinary(src, p)
}

const (
	signPositive = 0x0000
	signNegative = 0x4000
	signNaN      = 0xC000
)

// decodeBinary parses the numeric binary format: a header of ndigits, weight,
// sign and dscale, followed by ndigits base-10000 digits.
func decodeBinary(src []byte, dst *decimal.Decimal) error {
	if len(src) < 8 {
		return pgwire.ErrProtocolValueError
	}

	ndigits := int(binary.BigEndian.Uint16(src))
	weight := int(int16(binary.BigEndian.Uint16(src[2:])))
	sign := binary.BigEndian.Uint16(src[4:])

	if len(src) != 8+ndigits*2 {
		return pgwire.ErrProtocolValueError
	}
	if sign == signNaN {
		// decimal.Decimal has no NaN representation.
		return pgwire.ErrProtocolValueError
	}

	tenK := decimal.New(10000, 0)
	acc := decimal.New(0, 0)
	for i := 0; i < ndigits; i++ {
		digit := int64(binary.BigEndian.Uint16(src[8+i*2:]))
		if digit > 9999 {
			return pgwire.ErrProtocolValueError
		}
		acc = acc.Mul(tenK).Add(decimal.New(digit, 0))
	}

	// Each base-10000 digit covers 4 decimal places; weight is the exponent
	// of the first digit in base-10000 terms.
	exp := 4 * (weight + 1 - ndigits)
	acc = acc.Shift(int32(exp))

	if sign == signNegative {
		acc = acc.Neg()
	} else if sign != signPositive {
		return pgwire.ErrProtocolValueError
	}

	*dst = acc
	return nil
}
