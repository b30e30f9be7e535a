// Package uuid registers a pgtype codec that decodes the PostgreSQL uuid
// type into github.com/gofrs/uuid.UUID destination fields.
package uuid

import (
	"github.com/gofrs/uuid"
	"github.com/jackc/pgpipe/pgtype"
	"github.com/jackc/pgpipe/pgwire"
)

// Register adds the UUID codec to m.
func Register(m *pgtype.Map) {
	m.RegisterCodec(uuid.UUID{}, Codec{})
}

// Codec decodes uuid columns into uuid.UUID.
type Codec struct{}

// CompatibleWith implements pgtype.Codec.
func (Codec) CompatibleWith(fd pgwire.FieldDescription) error {
	if fd.DataTypeOID != pgtype.UUIDOID {
		return pgwire.ErrIncompatibleFieldType
	}
	return nil
}

// Scan implements pgtype.Codec.
func (Codec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, ok := dst.(*uuid.UUID)
	if !ok {
		return pgwire.ErrIncompatibleFieldType
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}

	if fd.Format == pgwire.TextFormat {
		u, err := uuid.FromString(string(src))
		if err != nil {
			return pgwire.ErrProtocolValueError
		}
		*p = u
		return nil
	}

	if len(src) != 16 {
		return pgwire.ErrProtocolValueError
	}
	u, err := uuid.FromBytes(src)
	if err != nil {
		return pgwire.ErrProtocolValueError
	}
	*p = u
	return nil
}
