package pgwire

// Sync closes an extended-query group. The server answers it with
// ReadyForQuery after discarding any error state from the group.
type Sync struct{}

// Frontend identifies this message as sendable by the frontend.
func (*Sync) Frontend() {}

// Decode decodes src into dst.
func (dst *Sync) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "Sync", expectedLen: 0, actualLen: len(src)}
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *Sync) Encode(dst []byte) ([]byte, error) {
	return append(dst, 'S', 0, 0, 0, 4), nil
}
