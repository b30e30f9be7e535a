// Package pgtype decodes PostgreSQL text and binary value encodings into Go
// destination types and maps resultset columns onto the fields of destination
// structs. Each supported destination type registers a Codec into a Map; the
// Map is consulted once per resultset to build a decode plan that is reused
// for every row.
package pgtype

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgpipe/pgwire"
)

// PostgreSQL type OIDs understood out of the box.
const (
	Int8OID        = 20
	Int2OID        = 21
	Int4OID        = 23
	TextOID        = 25
	Float4OID      = 700
	Float8OID      = 701
	UnknownOID     = 705
	BPCharOID      = 1042
	VarcharOID     = 1043
	DateOID        = 1082
	TimeOID        = 1083
	TimestampOID   = 1114
	TimestamptzOID = 1184
	IntervalOID    = 1186
	TimetzOID      = 1266
	NumericOID     = 1700
	UUIDOID        = 2950
)

// InfinityModifier marks a date or timestamp value as one of the special
// values infinity or -infinity.
type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	Finite           InfinityModifier = 0
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case Finite:
		return "finite"
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "-infinity"
	default:
		return "invalid"
	}
}

// Codec decodes wire values into one destination Go type.
type Codec interface {
	// CompatibleWith reports whether a column with the given description can
	// be decoded into this codec's destination type. It returns nil or
	// pgwire.ErrIncompatibleFieldType.
	CompatibleWith(fd pgwire.FieldDescription) error

	// Scan decodes src into dst, which must be a pointer to the codec's
	// destination type. A nil src is a NULL value.
	Scan(fd pgwire.FieldDescription, src []byte, dst any) error
}

// Map holds the Codec registered for each destination Go type.
type Map struct {
	byType map[reflect.Type]Codec
}

// NewMap returns a Map with every built-in destination type registered.
func NewMap() *Map {
	m := &Map{byType: make(map[reflect.Type]Codec)}

	m.RegisterCodec(int16(0), Int2Codec{})
	m.RegisterCodec(int32(0), Int4Codec{})
	m.RegisterCodec(int64(0), Int8Codec{})
	m.RegisterCodec("", TextCodec{})
	m.RegisterCodec(Date{}, DateCodec{})
	m.RegisterCodec(Time{}, TimeCodec{})
	m.RegisterCodec(Timetz{}, TimetzCodec{})
	m.RegisterCodec(Timestamp{}, TimestampCodec{})
	m.RegisterCodec(Timestamptz{}, TimestamptzCodec{})
	m.RegisterCodec(Interval{}, IntervalCodec{})

	return m
}

// RegisterCodec makes codec the decoder for destination fields with the same
// type as sample.
func (m *Map) RegisterCodec(sample any, codec Codec) {
	m.byType[reflect.TypeOf(sample)] = codec
}

// CodecFor returns the codec registered for t.
func (m *Map) CodecFor(t reflect.Type) (Codec, bool) {
	c, ok := m.byType[t]
	return c, ok
}

var (
	defaultMapOnce sync.Once
	defaultMap     *Map
)

// DefaultMap returns the shared Map of built-in codecs. It must be treated as
// read-only; register custom codecs into a Map of your own.
func DefaultMap() *Map {
	defaultMapOnce.Do(func() {
		defaultMap = NewMap()
	})
	return defaultMap
}

func scanTarget[T any](dst any) (*T, error) {
	p, ok := dst.(*T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("cannot scan into %T, expected %T", dst, &zero)
	}
	return p, nil
}
