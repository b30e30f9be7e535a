package pgwire

import (
	"bytes"
)

// Close releases a prepared statement or portal on the server.
type Close struct {
	ObjectType byte // 'S' = prepared statement, 'P' = portal
	Name       string
}

// Frontend identifies this message as sendable by the frontend.
func (*Close) Frontend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *Close) Decode(src []byte) error {
	if len(src) < 2 {
		return &invalidMessageFormatErr{messageType: "Close", details: "too short"}
	}

	dst.ObjectType = src[0]
	rp := 1

	idx := bytes.IndexByte(src[rp:], 0)
	if idx != len(src[rp:])-1 {
		return &invalidMessageFormatErr{messageType: "Close", details: "unterminated name"}
	}
	dst.Name = string(src[rp : rp+idx])

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Close) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'C')
	dst = append(dst, src.ObjectType)
	dst = append(dst, src.Name...)
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}
