package models

import "fmt"

// LimitKind names the foul limit an alert refers to
type LimitKind string

const (
	LimitPersonal        LimitKind = "personal"
	LimitTechnical       LimitKind = "technical"
	LimitUnsportsmanlike LimitKind = "unsportsmanlike"
)

// FoulAlert is raised once per player and limit kind when the limit is first reached
type FoulAlert struct {
	PlayerID string    `json:"player_id"`
	Team     Side      `json:"team"`
	Number   string    `json:"number"`
	Name     string    `json:"name,omitempty"`
	Kind     LimitKind `json:"kind"`
	Count    int       `json:"count"`
	Limit    int       `json:"limit"`
}

func (a FoulAlert) String() string {
	who := fmt.Sprintf("%s #%s", a.Team, a.Number)
	if a.Name != "" {
		who += " " + a.Name
	}
	return fmt.Sprintf("%s reached the %s foul limit (%d/%d)", who, a.Kind, a.Count, a.Limit)
}
