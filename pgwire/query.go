package pgwire

import (
	"bytes"
)

// Query is a simple-protocol query. The server answers it with zero or more
// resultsets followed by ReadyForQuery.
type Query struct {
	String string
}

// Frontend identifies this message as sendable by the frontend.
func (*Query) Frontend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *Query) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx != len(src)-1 {
		return &invalidMessageFormatErr{messageType: "Query", details: "unterminated string"}
	}
	dst.String = string(src[:idx])
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Query) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'Q')
	dst = append(dst, src.String...)
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}
