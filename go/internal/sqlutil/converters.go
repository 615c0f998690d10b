package sqlutil

import (
	"encoding/json"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for moving JSON documents in and out of JSONB columns

// ToNullRawMessage wraps a JSON document for a JSONB parameter; empty input becomes NULL
func ToNullRawMessage(val []byte) pqtype.NullRawMessage {
	if len(val) == 0 {
		return pqtype.NullRawMessage{Valid: false}
	}
	return pqtype.NullRawMessage{RawMessage: json.RawMessage(val), Valid: true}
}

// NewNullRawMessage returns a scan destination for a JSONB column
func NewNullRawMessage() *pqtype.NullRawMessage {
	return &pqtype.NullRawMessage{}
}

// FromNullRawMessage unwraps a scanned JSONB value, NULL becomes nil
func FromNullRawMessage(val pqtype.NullRawMessage) []byte {
	if !val.Valid {
		return nil
	}
	return []byte(val.RawMessage)
}
