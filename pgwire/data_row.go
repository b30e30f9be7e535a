package pgwire

import (
	"encoding/binary"

	"github.com/jackc/pgio"
)

// DataRow carries one row of a resultset. A nil element of Columns is a NULL
// value; a non-nil empty element is a zero-length value.
//
// Decode retains references into src: the column values alias the read buffer
// and are only valid until the buffer is next written to. Consumers that need
// a value beyond the current message dispatch must copy it.
type DataRow struct {
	Columns [][]byte
}

// Backend identifies this message as sendable by the PostgreSQL backend.
func (*DataRow) Backend() {}

// Decode decodes src into dst. src must contain the complete message body with
// the exception of the initial 1 byte message type identifier and 4 byte
// message length.
func (dst *DataRow) Decode(src []byte) error {
	if len(src) < 2 {
		return &invalidMessageFormatErr{messageType: "DataRow", details: "missing column count"}
	}
	rp := 0
	columnCount := int(binary.BigEndian.Uint16(src[rp:]))
	rp += 2

	// If the capacity of the Columns slice is large enough, reuse it.
	// Otherwise allocate to double the columnCount to avoid allocations in
	// the near future.
	if cap(dst.Columns) < columnCount {
		newCap := 32
		if newCap < columnCount*2 {
			newCap = columnCount * 2
		}
		dst.Columns = make([][]byte, columnCount, newCap)
	} else {
		dst.Columns = dst.Columns[0:columnCount]
	}

	for i := 0; i < columnCount; i++ {
		if len(src[rp:]) < 4 {
			return &invalidMessageFormatErr{messageType: "DataRow", details: "missing column length"}
		}
		valueLen := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4

		if valueLen == -1 {
			dst.Columns[i] = nil
			continue
		}

		if len(src[rp:]) < valueLen {
			return &invalidMessageFormatErr{messageType: "DataRow", details: "truncated column value"}
		}
		dst.Columns[i] = src[rp : rp+valueLen : rp+valueLen]
		rp += valueLen
	}

	return nil
}

// Encode encodes src into dst, including the type byte and length.
func (src *DataRow) Encode(dst []byte) ([]byte, error) {
	dst, sp := beginMessage(dst, 'D')

	dst = pgio.AppendUint16(dst, uint16(len(src.Columns)))
	for _, col := range src.Columns {
		if col == nil {
			dst = pgio.AppendInt32(dst, -1)
			continue
		}

		dst = pgio.AppendInt32(dst, int32(len(col)))
		dst = append(dst, col...)
	}

	return finishMessage(dst, sp)
}
