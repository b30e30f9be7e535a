// Package pgwire is an encoder and decoder for the PostgreSQL wire protocol
// version 3. It is a low-level building block: every frontend and backend
// message is a struct that can serialize itself into a caller-supplied buffer
// and parse itself from a message body. Framing, connection state, and
// dispatch live in the layers above.
package pgwire

import (
	"fmt"
	"math"

	"github.com/jackc/pgio"
)

// Message is the interface implemented by an object that can decode and encode
// a particular PostgreSQL message.
type Message interface {
	// Decode is allowed and expected to retain a reference to data after
	// returning (unlike encoding.BinaryUnmarshaler).
	Decode(data []byte) error

	// Encode appends itself to dst and returns the new buffer.
	Encode(dst []byte) ([]byte, error)
}

// FrontendMessage is a message sent by the frontend (i.e. the client).
type FrontendMessage interface {
	Message
	Frontend() // no-op method to distinguish frontend from backend methods
}

// BackendMessage is a message sent by the backend (i.e. the server).
type BackendMessage interface {
	Message
	Backend() // no-op method to distinguish frontend from backend methods
}

// Format codes for parameter and result values.
const (
	TextFormat   = 0
	BinaryFormat = 1
)

// maxMessageBodyLen is the maximum length of a message body in bytes. This is
// 4 bytes less than the maximum int32 value because the message length field
// includes itself.
const maxMessageBodyLen = math.MaxInt32 - 4

type invalidMessageLenErr struct {
	messageType string
	expectedLen int
	actualLen   int
}

func (e *invalidMessageLenErr) Error() string {
	return fmt.Sprintf("%s body must have length of %d, but it is %d", e.messageType, e.expectedLen, e.actualLen)
}

type invalidMessageFormatErr struct {
	messageType string
	details     string
}

func (e *invalidMessageFormatErr) Error() string {
	return fmt.Sprintf("%s body is invalid %s", e.messageType, e.details)
}

// beginMessage appends the message type byte and a length placeholder. It
// returns the buffer and the position of the length field for finishMessage.
func beginMessage(dst []byte, t byte) ([]byte, int) {
	dst = append(dst, t)
	sp := len(dst)
	dst = pgio.AppendInt32(dst, -1)
	return dst, sp
}

// finishMessage backfills the length field started by beginMessage.
func finishMessage(dst []byte, sp int) ([]byte, error) {
	messageBodyLen := len(dst[sp:])
	if messageBodyLen > maxMessageBodyLen {
		return nil, ErrSerializationOverflow
	}
	pgio.SetInt32(dst[sp:], int32(messageBodyLen))
	return dst, nil
}
