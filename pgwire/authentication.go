package pgwire

import (
	"bytes"
	"encoding/binary"

	"github.com/jackc/pgio"
)

// Authentication request subtypes carried in the 'R' message.
const (
	AuthTypeOk                = 0
	AuthTypeCleartextPassword = 3
	AuthTypeMD5Password       = 5
	AuthTypeSCMCreds          = 6
	AuthTypeGSS               = 7
	AuthTypeGSSCont           = 8
	AuthTypeSSPI              = 9
	AuthTypeSASL              = 10
	AuthTypeSASLContinue      = 11
	AuthTypeSASLFinal         = 12
)

// AuthenticationResponseMessage is implemented by every decoded 'R' message.
type AuthenticationResponseMessage interface {
	BackendMessage
	AuthType() uint32
}

// AuthenticationOk reports that authentication succeeded.
type AuthenticationOk struct{}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*AuthenticationOk) Backend() {}

// AuthType returns the authentication subtype.
func (*AuthenticationOk) AuthType() uint32 { return AuthTypeOk }

// Decode decodes src into dst. src must contain the complete message body
// after the authentication subtype.
func (dst *AuthenticationOk) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "AuthenticationOk", expectedLen: 0, actualLen: len(src)}
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *AuthenticationOk) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'R')
	dst = pgio.AppendUint32(dst, AuthTypeOk)
	return finishMessage(dst, sp)
}

// AuthenticationCleartextPassword asks for the password in cleartext.
type AuthenticationCleartextPassword struct{}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*AuthenticationCleartextPassword) Backend() {}

// AuthType returns the authentication subtype.
func (*AuthenticationCleartextPassword) AuthType() uint32 { return AuthTypeCleartextPassword }

// Decode decodes src into dst. src must contain the complete message body
// after the authentication subtype.
func (dst *AuthenticationCleartextPassword) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "AuthenticationCleartextPassword", expectedLen: 0, actualLen: len(src)}
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *AuthenticationCleartextPassword) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'R')
	dst = pgio.AppendUint32(dst, AuthTypeCleartextPassword)
	return finishMessage(dst, sp)
}

// AuthenticationMD5Password asks for the password digested with MD5 and the
// given salt.
type AuthenticationMD5Password struct {
	Salt [4]byte
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*AuthenticationMD5Password) Backend() {}

// AuthType returns the authentication subtype.
func (*AuthenticationMD5Password) AuthType() uint32 { return AuthTypeMD5Password }

// Decode decodes src into dst. src must contain the complete message body
// after the authentication subtype.
func (dst *AuthenticationMD5Password) Decode(src []byte) error {
	if len(src) != 4 {
		return &invalidMessageLenErr{messageType: "AuthenticationMD5Password", expectedLen: 4, actualLen: len(src)}
	}
	copy(dst.Salt[:], src)
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *AuthenticationMD5Password) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'R')
	dst = pgio.AppendUint32(dst, AuthTypeMD5Password)
	dst = append(dst, src.Salt[:]...)
	return finishMessage(dst, sp)
}

// AuthenticationSASL starts a SASL negotiation. It is decoded so the startup
// sequence can refuse it by name; no SASL mechanism is implemented.
type AuthenticationSASL struct {
	AuthMechanisms []string
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*AuthenticationSASL) Backend() {}

// AuthType returns the authentication subtype.
func (*AuthenticationSASL) AuthType() uint32 { return AuthTypeSASL }

// Decode decodes src into dst. src must contain the complete message body
// after the authentication subtype.
func (dst *AuthenticationSASL) Decode(src []byte) error {
	dst.AuthMechanisms = nil
	rp := 0
	for len(src[rp:]) > 1 {
		idx := bytes.IndexByte(src[rp:], 0)
		if idx < 0 {
			return &invalidMessageFormatErr{messageType: "AuthenticationSASL", details: "unterminated mechanism"}
		}
		dst.AuthMechanisms = append(dst.AuthMechanisms, string(src[rp:rp+idx]))
		rp += idx + 1
	}
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *AuthenticationSASL) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'R')
	dst = pgio.AppendUint32(dst, AuthTypeSASL)
	for _, m := range src.AuthMechanisms {
		dst = append(dst, m...)
		dst = append(dst, 0)
	}
	dst = append(dst, 0)
	return finishMessage(dst, sp)
}

// AuthenticationUnknown stands in for any authentication subtype this library
// does not implement (GSS, SSPI, SCM credentials, SASL continuations).
type AuthenticationUnknown struct {
	Type uint32
	Data []byte
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*AuthenticationUnknown) Backend() {}

// AuthType returns the authentication subtype.
func (src *AuthenticationUnknown) AuthType() uint32 { return src.Type }

// Decode decodes src into dst.
func (dst *AuthenticationUnknown) Decode(src []byte) error {
	dst.Data = src
	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *AuthenticationUnknown) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'R')
	dst = pgio.AppendUint32(dst, src.Type)
	dst = append(dst, src.Data...)
	return finishMessage(dst, sp)
}

// decodeAuthentication decodes the body of an 'R' message, which begins with
// the authentication subtype.
func decodeAuthentication(src []byte) (BackendMessage, error) {
	if len(src) < 4 {
		return nil, &invalidMessageFormatErr{messageType: "Authentication", details: "missing subtype"}
	}
	authType := binary.BigEndian.Uint32(src)
	body := src[4:]

	var msg BackendMessage
	switch authType {
	case AuthTypeOk:
		msg = &AuthenticationOk{}
	case AuthTypeCleartextPassword:
		msg = &AuthenticationCleartextPassword{}
	case AuthTypeMD5Password:
		msg = &AuthenticationMD5Password{}
	case AuthTypeSASL:
		msg = &AuthenticationSASL{}
	default:
		msg = &AuthenticationUnknown{Type: authType}
	}

	if err := msg.Decode(body); err != nil {
		return nil, err
	}
	return msg, nil
}
