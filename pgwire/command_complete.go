package pgwire

import (
	"bytes"
)

// CommandComplete reports that a statement finished. CommandTag is the
// completion tag, e.g. "SELECT 5". It aliases the read buffer.
type CommandComplete struct {
	CommandTag []byte
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*CommandComplete) Backend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *CommandComplete) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx == -1 {
		return &invalidMessageFormatErr{messageType: "CommandComplete", details: "unterminated tag"}
	}
	if idx != len(src)-1 {
		return &invalidMessageFormatErr{messageType: "CommandComplete", details: "trailing bytes"}
	}

	dst.CommandTag = src[:idx]

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *CommandComplete) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'C')
	dst = append(dst, src.CommandTag...)
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}
