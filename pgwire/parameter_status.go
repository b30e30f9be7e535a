package pgwire

import (
	"bytes"
)

// ParameterStatus reports the value of a run-time server parameter such as
// server_version or client_encoding.
type ParameterStatus struct {
	Name  string
	Value string
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*ParameterStatus) Backend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *ParameterStatus) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx < 0 {
		return &invalidMessageFormatErr{messageType: "ParameterStatus", details: "unterminated name"}
	}
	dst.Name = string(src[:idx])
	rp := idx + 1

	idx = bytes.IndexByte(src[rp:], 0)
	if idx != len(src[rp:])-1 {
		return &invalidMessageFormatErr{messageType: "ParameterStatus", details: "unterminated value"}
	}
	dst.Value = string(src[rp : rp+idx])

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *ParameterStatus) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'S')
	dst = append(dst, src.Name...)
	dst = append(dst, 0)
	dst = append(dst, src.Value...)
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}
