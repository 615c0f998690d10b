// Package events defines the notifications the match engine emits.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names an event kind; it is also the last token of the publish subject.
type Type string

const (
	TypeFoulRecorded       Type = "foul_recorded"
	TypeFoulLimitAlerts    Type = "foul_limit_alerts"
	TypeBuzzer             Type = "buzzer"
	TypeShotClockViolation Type = "shot_clock_violation"
	TypePeriodStarted      Type = "period_started"
	TypeNoteAppended       Type = "note_appended"
	TypeMatchReset         Type = "match_reset"
)

// Event is one notification with a JSON payload
type Event struct {
	ID        uuid.UUID       `json:"eventId"`
	Type      Type            `json:"eventType"`
	MatchID   uuid.UUID       `json:"matchId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New builds an event, marshalling payload
func New(matchID uuid.UUID, typ Type, at time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:        uuid.New(),
		Type:      typ,
		MatchID:   matchID,
		Timestamp: at.UTC(),
		Payload:   raw,
	}, nil
}

// Decode unmarshals the payload into dst
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
