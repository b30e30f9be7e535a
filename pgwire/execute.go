package pgwire

import (
	"bytes"
	"encoding/binary"

	"github.com/jackc/pgio"
)

// Execute runs a portal. MaxRows of 0 fetches all rows.
type Execute struct {
	Portal  string
	MaxRows uint32
}

// Frontend identifies this message as sendable by the frontend.
func (*Execute) Frontend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *Execute) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx < 0 {
		return &invalidMessageFormatErr{messageType: "Execute", details: "unterminated portal name"}
	}
	dst.Portal = string(src[:idx])
	rp := idx + 1

	if len(src[rp:]) != 4 {
		return &invalidMessageFormatErr{messageType: "Execute", details: "missing max rows"}
	}
	dst.MaxRows = binary.BigEndian.Uint32(src[rp:])

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Execute) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'E')
	dst = append(dst, src.Portal...)
	dst = append(dst, 0)
	dst = pgio.AppendUint32(dst, src.MaxRows)
	return finishMessage(dst, sp)
}
