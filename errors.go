package pgpipe

import (
	"errors"
	"fmt"

	"github.com/jackc/pgpipe/pgwire"
)

// ClientError is a stable error code generated by the client library itself.
// The codes are defined in package pgwire and re-exported here for
// convenience.
type ClientError = pgwire.ClientError

// Re-exported client error codes. See the pgwire package for documentation.
const (
	ErrUnexpectedNull           = pgwire.ErrUnexpectedNull
	ErrIncompatibleFieldType    = pgwire.ErrIncompatibleFieldType
	ErrFieldNotFound            = pgwire.ErrFieldNotFound
	ErrExtraBytes               = pgwire.ErrExtraBytes
	ErrProtocolValueError       = pgwire.ErrProtocolValueError
	ErrIncompatibleResponseType = pgwire.ErrIncompatibleResponseType
	ErrStepSkipped              = pgwire.ErrStepSkipped
	ErrExecServerError          = pgwire.ErrExecServerError
	ErrServerStartupError       = pgwire.ErrServerStartupError
	ErrSerializationOverflow    = pgwire.ErrSerializationOverflow
	ErrUnsupportedAuthMethod    = pgwire.ErrUnsupportedAuthMethod
	ErrConnectionUnusable       = pgwire.ErrConnectionUnusable
	ErrOperationInProgress      = pgwire.ErrOperationInProgress
)

// PgError represents the diagnostic fields of an ErrorResponse or
// NoticeResponse reported by the PostgreSQL server. See
// https://www.postgresql.org/docs/current/protocol-error-fields.html for
// detailed field descriptions.
type PgError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

func (pe *PgError) Error() string {
	return pe.Severity + ": " + pe.Message + " (SQLSTATE " + pe.Code + ")"
}

// SQLState returns the SQLSTATE of the error.
func (pe *PgError) SQLState() string {
	return pe.Code
}

// errorResponseToPgError copies the diagnostic fields of msg. The copy does
// not alias the read buffer and may be retained.
func errorResponseToPgError(msg *pgwire.ErrorResponse) *PgError {
	return &PgError{
		Severity:         msg.Severity,
		Code:             msg.Code,
		Message:          msg.Message,
		Detail:           msg.Detail,
		Hint:             msg.Hint,
		Position:         msg.Position,
		InternalPosition: msg.InternalPosition,
		InternalQuery:    msg.InternalQuery,
		Where:            msg.Where,
		SchemaName:       msg.SchemaName,
		TableName:        msg.TableName,
		ColumnName:       msg.ColumnName,
		DataTypeName:     msg.DataTypeName,
		ConstraintName:   msg.ConstraintName,
		File:             msg.File,
		Line:             msg.Line,
		Routine:          msg.Routine,
	}
}

// Error pairs an error code with the server diagnostics that accompanied it,
// when any. Code is a ClientError or a pass-through transport error. Diag is
// non-nil only when the server sent an ErrorResponse.
type Error struct {
	Code error
	Diag *PgError
}

func (e *Error) Error() string {
	if e.Diag != nil {
		return e.Code.Error() + ": " + e.Diag.Error()
	}
	return e.Code.Error()
}

// Unwrap returns the error code so errors.Is matches the ClientError
// constants.
func (e *Error) Unwrap() error { return e.Code }

// SQLState returns the SQLSTATE of the server diagnostics, or the empty
// string when there are none.
func (e *Error) SQLState() string {
	if e.Diag == nil {
		return ""
	}
	return e.Diag.Code
}

// SafeToRetry reports whether the operation that produced err is safe to
// retry because no bytes of it reached the wire.
func SafeToRetry(err error) bool {
	if e, ok := err.(interface{ SafeToRetry() bool }); ok {
		return e.SafeToRetry()
	}
	return false
}

// Timeout checks if err was caused by a timeout. To be specific, it is true
// if err was caused within pgpipe by a context.DeadlineExceeded or an
// implementer of net.Error where Timeout() is true.
func Timeout(err error) bool {
	var timeoutErr *errTimeout
	return errors.As(err, &timeoutErr)
}

// transportError wraps the failure of an Exec and records whether any bytes
// of the operation reached the wire. A failure before the first write left
// the server untouched, so the operation is safe to retry.
type transportError struct {
	err         error
	safeToRetry bool
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) SafeToRetry() bool { return e.safeToRetry }

func (e *transportError) Unwrap() error { return e.err }

// errTimeout occurs when an error was caused by a timeout. Specifically, it
// wraps an error which is context.DeadlineExceeded or an implementer of
// net.Error where Timeout() is true.
type errTimeout struct {
	err error
}

func (e *errTimeout) Error() string { return fmt.Sprintf("timeout: %s", e.err.Error()) }

func (e *errTimeout) SafeToRetry() bool { return SafeToRetry(e.err) }

func (e *errTimeout) Unwrap() error { return e.err }
