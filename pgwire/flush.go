package pgwire

// Flush asks the server to deliver any pending output without closing the
// extended-query group.
type Flush struct{}

// Frontend identifies this message as sendable by the frontend.
func (*Flush) Frontend() {}

// Decode decodes src into dst.
func (dst *Flush) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "Flush", expectedLen: 0, actualLen: len(src)}
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Flush) Encode(dst []byte) ([]byte, error) {
	return append(dst, 'H', 0, 0, 0, 4), nil
}
