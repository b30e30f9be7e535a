package pgwire

// Terminate announces a clean connection shutdown. The server closes the
// socket after receiving it.
type Terminate struct{}

// Frontend identifies this message as sendable by the frontend.
func (*Terminate) Frontend() {}

// Decode decodes src into dst.
func (dst *Terminate) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "Terminate", expectedLen: 0, actualLen: len(src)}
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Terminate) Encode(dst []byte) ([]byte, error) {
	return append(dst, 'X', 0, 0, 0, 4), nil
}
