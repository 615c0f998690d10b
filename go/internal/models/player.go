package models

import (
	"fmt"
	"strings"
)

// PlayerID builds the roster key of a player, e.g. "home#7"
func PlayerID(team Side, number string) string {
	return string(team) + "#" + number
}

// ParsePlayerID splits a roster key back into team and number
func ParsePlayerID(id string) (Side, string, error) {
	team, number, ok := strings.Cut(id, "#")
	if !ok || !Side(team).Valid() || number == "" {
		return "", "", fmt.Errorf("malformed player id %q", id)
	}
	return Side(team), number, nil
}

// FoulCounts holds a player's subcount per foul category
type FoulCounts struct {
	Common          int `json:"common"`
	Offensive       int `json:"offensive"`
	Technical       int `json:"technical"`
	Unsportsmanlike int `json:"unsportsmanlike"`
}

// Get returns the subcount for c
func (f FoulCounts) Get(c FoulCategory) int {
	switch c {
	case FoulCommon:
		return f.Common
	case FoulOffensive:
		return f.Offensive
	case FoulTechnical:
		return f.Technical
	case FoulUnsportsmanlike:
		return f.Unsportsmanlike
	}
	return 0
}

// Set overwrites the subcount for c
func (f *FoulCounts) Set(c FoulCategory, n int) {
	switch c {
	case FoulCommon:
		f.Common = n
	case FoulOffensive:
		f.Offensive = n
	case FoulTechnical:
		f.Technical = n
	case FoulUnsportsmanlike:
		f.Unsportsmanlike = n
	}
}

// Total is the personal foul total across every category
func (f FoulCounts) Total() int {
	return f.Common + f.Offensive + f.Technical + f.Unsportsmanlike
}

// AlertFlags remember which limit alerts have already fired for a player.
// They never clear once set.
type AlertFlags struct {
	PersonalLimit        bool `json:"personal_limit"`
	TechnicalLimit       bool `json:"technical_limit"`
	UnsportsmanlikeLimit bool `json:"unsportsmanlike_limit"`
}

// PlayerRecord is a roster entry with its live game counters
type PlayerRecord struct {
	ID            string     `json:"id"`
	Team          Side       `json:"team"`
	Number        string     `json:"number"`
	Name          string     `json:"name"`
	Position      string     `json:"position,omitempty"`
	Points        int        `json:"points"`
	Fouls         FoulCounts `json:"fouls"`
	PersonalTotal int        `json:"personal_total"`
	OnCourt       bool       `json:"on_court"`
	PlayTimeMs    int64      `json:"play_time_ms"`
	Alerted       AlertFlags `json:"alerted"`
}

// NewPlayerRecord creates an empty record for a player identity
func NewPlayerRecord(team Side, number, name string) PlayerRecord {
	return PlayerRecord{
		ID:     PlayerID(team, number),
		Team:   team,
		Number: number,
		Name:   name,
	}
}

// Label is a short human description used in alerts and notes
func (p PlayerRecord) Label() string {
	if p.Name == "" {
		return fmt.Sprintf("%s #%s", p.Team, p.Number)
	}
	return fmt.Sprintf("%s #%s %s", p.Team, p.Number, p.Name)
}
