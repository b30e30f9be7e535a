package pgwire

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/jackc/pgio"
)

// ProtocolVersionNumber is protocol version 3.0.
const ProtocolVersionNumber = 196608

// StartupMessage is the first message sent on a connection. It has no type
// byte; the body begins directly with the length field.
type StartupMessage struct {
	ProtocolVersion uint32
	Parameters      map[string]string
}

// Frontend identifies this message as sendable by the frontend.
func (*StartupMessage) Frontend() {}

// Decode decodes src into dst. src must contain the complete message starting
// after the 4 byte message length.
func (dst *StartupMessage) Decode(src []byte) error {
	if len(src) < 4 {
		return &invalidMessageFormatErr{messageType: "StartupMessage", details: "too short"}
	}

	dst.ProtocolVersion = binary.BigEndian.Uint32(src)
	rp := 4

	if dst.ProtocolVersion != ProtocolVersionNumber {
		return &invalidMessageFormatErr{messageType: "StartupMessage", details: "bad protocol version"}
	}

	dst.Parameters = make(map[string]string)
	for {
		if len(src[rp:]) == 1 {
			if src[rp] != 0 {
				return &invalidMessageFormatErr{messageType: "StartupMessage", details: "bad terminator"}
			}
			break
		}

		idx := bytes.IndexByte(src[rp:], 0)
		if idx < 0 {
			return &invalidMessageFormatErr{messageType: "StartupMessage", details: "unterminated key"}
		}
		key := string(src[rp : rp+idx])
		rp += idx + 1

		idx = bytes.IndexByte(src[rp:], 0)
		if idx < 0 {
			return &invalidMessageFormatErr{messageType: "StartupMessage", details: "unterminated value"}
		}
		value := string(src[rp : rp+idx])
		rp += idx + 1

		dst.Parameters[key] = value
	}

	return nil
}

// Encode encodes src into dst. Parameters are written in sorted key order so
// the output is deterministic.
func (src *StartupMessage) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = pgio.AppendInt32(dst, -1)

	dst = pgio.AppendUint32(dst, src.ProtocolVersion)

	keys := make([]string, 0, len(src.Parameters))
	for k := range src.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		dst = append(dst, k...)
		dst = append(dst, 0)
		dst = append(dst, src.Parameters[k]...)
		dst = append(dst, 0)
	}
	dst = append(dst, 0)

	if len(dst[sp:]) > maxMessageBodyLen {
		return nil, ErrSerializationOverflow
	}
	pgio.SetInt32(dst[sp:], int32(len(dst[sp:])))

	return dst, nil
}
