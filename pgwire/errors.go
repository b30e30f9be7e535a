package pgwire

// ClientError is a stable error code generated by the client library itself,
// as opposed to an error reported by the server or the transport. The string
// value of a ClientError never changes; callers may match on it with
// errors.Is.
type ClientError string

func (e ClientError) Error() string { return string(e) }

const (
	// ErrUnexpectedNull means a destination field is non-nullable but the
	// column value was NULL.
	ErrUnexpectedNull = ClientError("unexpected_null")

	// ErrIncompatibleFieldType means the column type OID is not acceptable
	// for the destination field type.
	ErrIncompatibleFieldType = ClientError("incompatible_field_type")

	// ErrFieldNotFound means a destination field name is absent from the
	// row returned by the server.
	ErrFieldNotFound = ClientError("field_not_found")

	// ErrExtraBytes means a text value had trailing bytes after a
	// successful parse.
	ErrExtraBytes = ClientError("extra_bytes")

	// ErrProtocolValueError means a text or binary value was malformed.
	ErrProtocolValueError = ClientError("protocol_value_error")

	// ErrIncompatibleResponseType means the request message sequence is not
	// compatible with the response handler it was paired with.
	ErrIncompatibleResponseType = ClientError("incompatible_response_type")

	// ErrStepSkipped means the messages a handler expected were skipped
	// because an earlier statement in the pipeline failed.
	ErrStepSkipped = ClientError("step_skipped")

	// ErrExecServerError means the server answered a statement with
	// ErrorResponse. The server diagnostics accompany the error.
	ErrExecServerError = ClientError("exec_server_error")

	// ErrServerStartupError means the server rejected the startup sequence.
	ErrServerStartupError = ClientError("server_startup_error")

	// ErrSerializationOverflow means a frontend message length would exceed
	// 2^31-1 bytes.
	ErrSerializationOverflow = ClientError("serialization_overflow")

	// ErrUnsupportedAuthMethod means the server requested an authentication
	// method this library does not implement.
	ErrUnsupportedAuthMethod = ClientError("unsupported_auth_method")

	// ErrConnectionUnusable means the connection is in the Failed or Closed
	// state and must be discarded.
	ErrConnectionUnusable = ClientError("connection_unusable")

	// ErrOperationInProgress means an operation was attempted while another
	// one was outstanding on the same connection.
	ErrOperationInProgress = ClientError("operation_in_progress")
)
