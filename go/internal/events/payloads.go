package events

import (
	"github.com/mcdev12/courtside/go/internal/models"
)

// Event payload types shared between the match engine and the notifiers

// FoulRecordedPayload is the payload for a FoulRecorded event
type FoulRecordedPayload struct {
	PlayerID      string              `json:"player_id"`
	Team          models.Side         `json:"team"`
	Category      models.FoulCategory `json:"category"`
	Delta         int                 `json:"delta"`
	PersonalTotal int                 `json:"personal_total"`
	TeamFouls     int                 `json:"team_fouls"`
	Bonus         bool                `json:"bonus"`
}

// FoulLimitAlertsPayload carries every alert raised by one foul change
type FoulLimitAlertsPayload struct {
	Alerts []models.FoulAlert `json:"alerts"`
}

// Messages renders each alert as a line of text
func (p FoulLimitAlertsPayload) Messages() []string {
	out := make([]string, len(p.Alerts))
	for i, a := range p.Alerts {
		out[i] = a.String()
	}
	return out
}

// BuzzerPayload is the payload for a Buzzer event
type BuzzerPayload struct {
	Clock  string `json:"clock"`
	Reason string `json:"reason"`
}

// ShotClockViolationPayload is the payload for a ShotClockViolation event
type ShotClockViolationPayload struct {
	Offender      models.Side `json:"offender"`
	NewPossession models.Side `json:"new_possession"`
	Manual        bool        `json:"manual"`
}

// PeriodStartedPayload is the payload for a PeriodStarted event
type PeriodStartedPayload struct {
	Period   int   `json:"period"`
	TotalMs  int64 `json:"total_ms"`
	Overtime bool  `json:"overtime"`
	Expired  bool  `json:"expired"` // true when the game clock ran out, false for a manual change
}

// NoteAppendedPayload is the payload for a NoteAppended event
type NoteAppendedPayload struct {
	Note models.Note `json:"note"`
}

// MatchResetPayload is the payload for a MatchReset event
type MatchResetPayload struct {
	PreviousMatchID string `json:"previous_match_id"`
}
