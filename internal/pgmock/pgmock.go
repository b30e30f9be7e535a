// Package pgmock provides the server side of the wire protocol for tests: it
// reads frontend messages off a net.Conn and writes scripted backend
// responses.
package pgmock

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/jackc/chunkreader/v2"
	"github.com/jackc/pgpipe/pgwire"
)

// Server speaks the backend half of the protocol over conn.
type Server struct {
	conn net.Conn
	cr   *chunkreader.ChunkReader
}

// NewServer wraps conn.
func NewServer(conn net.Conn) *Server {
	return &Server{conn: conn, cr: chunkreader.New(conn)}
}

// Close closes the underlying connection.
func (s *Server) Close() error { return s.conn.Close() }

// ReceiveStartup reads and decodes the StartupMessage.
func (s *Server) ReceiveStartup() (*pgwire.StartupMessage, error) {
	header, err := s.cr.Next(4)
	if err != nil {
		return nil, err
	}
	msgSize := int(binary.BigEndian.Uint32(header)) - 4

	body, err := s.cr.Next(msgSize)
	if err != nil {
		return nil, err
	}

	msg := &pgwire.StartupMessage{}
	if err := msg.Decode(body); err != nil {
		return nil, err
	}
	return msg, nil
}

// Receive reads and decodes one frontend message.
func (s *Server) Receive() (pgwire.FrontendMessage, error) {
	header, err := s.cr.Next(5)
	if err != nil {
		return nil, err
	}
	msgType := header[0]
	bodyLen := int(binary.BigEndian.Uint32(header[1:])) - 4

	body, err := s.cr.Next(bodyLen)
	if err != nil {
		return nil, err
	}

	var msg pgwire.FrontendMessage
	switch msgType {
	case 'B':
		msg = &pgwire.Bind{}
	case 'C':
		msg = &pgwire.Close{}
	case 'D':
		msg = &pgwire.Describe{}
	case 'E':
		msg = &pgwire.Execute{}
	case 'H':
		msg = &pgwire.Flush{}
	case 'P':
		msg = &pgwire.Parse{}
	case 'p':
		msg = &pgwire.PasswordMessage{}
	case 'Q':
		msg = &pgwire.Query{}
	case 'S':
		msg = &pgwire.Sync{}
	case 'X':
		msg = &pgwire.Terminate{}
	default:
		return nil, fmt.Errorf("unknown message type: %c", msgType)
	}

	if err := msg.Decode(body); err != nil {
		return nil, err
	}
	return msg, nil
}

// ReceiveN reads n frontend messages.
func (s *Server) ReceiveN(n int) ([]pgwire.FrontendMessage, error) {
	msgs := make([]pgwire.FrontendMessage, 0, n)
	for i := 0; i < n; i++ {
		msg, err := s.Receive()
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Send encodes and writes msgs in one socket write.
func (s *Server) Send(msgs ...pgwire.BackendMessage) error {
	var buf []byte
	var err error
	for _, msg := range msgs {
		buf, err = msg.Encode(buf)
		if err != nil {
			return err
		}
	}
	_, err = s.conn.Write(buf)
	return err
}

// AcceptStartup performs a trust-auth startup handshake: it reads the
// StartupMessage and answers with AuthenticationOk, the given parameter
// statuses, BackendKeyData and ReadyForQuery.
func (s *Server) AcceptStartup(parameters map[string]string) error {
	if _, err := s.ReceiveStartup(); err != nil {
		return err
	}

	msgs := []pgwire.BackendMessage{&pgwire.AuthenticationOk{}}
	for k, v := range parameters {
		msgs = append(msgs, &pgwire.ParameterStatus{Name: k, Value: v})
	}
	msgs = append(msgs,
		&pgwire.BackendKeyData{ProcessID: 42, SecretKey: 4242},
		&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
	)
	return s.Send(msgs...)
}
