package pgwire

import (
	"bytes"
	"encoding/binary"

	"github.com/jackc/pgio"
)

// Parse creates a prepared statement. An empty Name selects the unnamed
// prepared statement. A zero in ParameterOIDs leaves that parameter type
// unspecified.
type Parse struct {
	Name          string
	Query         string
	ParameterOIDs []uint32
}

// Frontend identifies this message as sendable by the frontend.
func (*Parse) Frontend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *Parse) Decode(src []byte) error {
	*dst = Parse{}

	idx := bytes.IndexByte(src, 0)
	if idx < 0 {
		return &invalidMessageFormatErr{messageType: "Parse", details: "unterminated statement name"}
	}
	dst.Name = string(src[:idx])
	rp := idx + 1

	idx = bytes.IndexByte(src[rp:], 0)
	if idx < 0 {
		return &invalidMessageFormatErr{messageType: "Parse", details: "unterminated query"}
	}
	dst.Query = string(src[rp : rp+idx])
	rp += idx + 1

	if len(src[rp:]) < 2 {
		return &invalidMessageFormatErr{messageType: "Parse", details: "missing parameter count"}
	}
	parameterOIDCount := int(binary.BigEndian.Uint16(src[rp:]))
	rp += 2

	if len(src[rp:]) < parameterOIDCount*4 {
		return &invalidMessageFormatErr{messageType: "Parse", details: "missing parameter OIDs"}
	}
	for i := 0; i < parameterOIDCount; i++ {
		dst.ParameterOIDs = append(dst.ParameterOIDs, binary.BigEndian.Uint32(src[rp:]))
		rp += 4
	}

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Parse) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'P')

	dst = append(dst, src.Name...)
	dst = append(dst, 0)
	dst = append(dst, src.Query...)
	dst = append(dst, 0)

	dst = pgio.AppendUint16(dst, uint16(len(src.ParameterOIDs)))
	for _, oid := range src.ParameterOIDs {
		dst = pgio.AppendUint32(dst, oid)
	}

	return finishMessage(dst, sp)
}
