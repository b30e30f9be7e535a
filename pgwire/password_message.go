package pgwire

import (
	"bytes"
)

// PasswordMessage carries a cleartext or md5-digested password.
type PasswordMessage struct {
	Password string
}

// Frontend identifies this message as sendable by the frontend.
func (*PasswordMessage) Frontend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *PasswordMessage) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx != len(src)-1 {
		return &invalidMessageFormatErr{messageType: "PasswordMessage", details: "unterminated string"}
	}
	dst.Password = string(src[:idx])
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *PasswordMessage) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'p')
	dst = append(dst, src.Password...)
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}
