package pgwire

import (
	"encoding/binary"

	"github.com/jackc/pgio"
)

const cancelRequestCode = 80877102

// CancelRequest is sent on a dedicated connection to ask the server to cancel
// the query currently running on another connection. It has no type byte.
type CancelRequest struct {
	ProcessID uint32
	SecretKey uint32
}

// Frontend identifies this message as sendable by the frontend.
func (*CancelRequest) Frontend() {}

// Decode decodes src into dst. src must contain the complete message starting
// after the 4 byte message length.
func (dst *CancelRequest) Decode(src []byte) error {
	if len(src) != 12 {
		return &invalidMessageLenErr{messageType: "CancelRequest", expectedLen: 12, actualLen: len(src)}
	}

	requestCode := binary.BigEndian.Uint32(src)
	if requestCode != cancelRequestCode {
		return &invalidMessageFormatErr{messageType: "CancelRequest", details: "bad cancel request code"}
	}

	dst.ProcessID = binary.BigEndian.Uint32(src[4:])
	dst.SecretKey = binary.BigEndian.Uint32(src[8:])

	return nil
}

// Encode encodes src into dst, including the length field.
func (src *CancelRequest) Encode(dst []byte) ([]byte, error) {
	dst = pgio.AppendInt32(dst, 16)
	dst = pgio.AppendInt32(dst, cancelRequestCode)
	dst = pgio.AppendUint32(dst, src.ProcessID)
	dst = pgio.AppendUint32(dst, src.SecretKey)
	return dst, nil
}
