package pgtype

import (
	"github.com/jackc/pgpipe/pgwire"
)

// TextCodec decodes a column of any OID into a string. Text-format values are
// taken as UTF-8; binary-format values are the raw bytes.
type TextCodec struct{}

// CompatibleWith implements Codec. Strings accept every column type.
func (TextCodec) CompatibleWith(fd pgwire.FieldDescription) error {
	return nil
}

// Scan implements Codec.
func (TextCodec) Scan(fd pgwire.FieldDescription, src []byte, dst any) error {
	p, err := scanTarget[string](dst)
	if err != nil {
		return err
	}
	if src == nil {
		return pgwire.ErrUnexpectedNull
	}
	*p = string(src)
	return nil
}
