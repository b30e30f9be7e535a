package pgwire

// BackendDecoder translates framed backend message bodies into message
// structs. It reuses a flyweight of each message type, so a decoded message is
// only valid until the next Decode call; consumers must finish with a message
// before decoding the next one.
type BackendDecoder struct {
	backendKeyData       BackendKeyData
	bindComplete         BindComplete
	closeComplete        CloseComplete
	commandComplete      CommandComplete
	dataRow              DataRow
	emptyQueryResponse   EmptyQueryResponse
	errorResponse        ErrorResponse
	noData               NoData
	noticeResponse       NoticeResponse
	notificationResponse NotificationResponse
	parameterDescription ParameterDescription
	parameterStatus      ParameterStatus
	parseComplete        ParseComplete
	portalSuspended      PortalSuspended
	readyForQuery        ReadyForQuery
	rowDescription       RowDescription
}

// Decode decodes the body of the backend message identified by msgType. body
// must not include the type byte or the length field. An unknown message type
// returns (nil, nil); the caller skips the payload.
func (d *BackendDecoder) Decode(msgType byte, body []byte) (BackendMessage, error) {
	var msg BackendMessage
	switch msgType {
	case 'R':
		return decodeAuthentication(body)
	case 'K':
		msg = &d.backendKeyData
	case 'S':
		msg = &d.parameterStatus
	case 'Z':
		msg = &d.readyForQuery
	case 'T':
		msg = &d.rowDescription
	case 'D':
		msg = &d.dataRow
	case 'C':
		msg = &d.commandComplete
	case 'I':
		msg = &d.emptyQueryResponse
	case 's':
		msg = &d.portalSuspended
	case '1':
		msg = &d.parseComplete
	case '2':
		msg = &d.bindComplete
	case '3':
		msg = &d.closeComplete
	case 't':
		msg = &d.parameterDescription
	case 'n':
		msg = &d.noData
	case 'E':
		msg = &d.errorResponse
	case 'N':
		msg = &d.noticeResponse
	case 'A':
		msg = &d.notificationResponse
	default:
		return nil, nil
	}

	if err := msg.Decode(body); err != nil {
		return nil, err
	}
	return msg, nil
}
