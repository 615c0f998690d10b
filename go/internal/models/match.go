package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ShotClockFullMs is a full possession on the shot clock.
	ShotClockFullMs int64 = 24_000
	// ShotClockOffensiveReboundMs is the reset value after an offensive rebound.
	ShotClockOffensiveReboundMs int64 = 14_000
	// DefaultRegulationMs is the length of a regulation period.
	DefaultRegulationMs int64 = 12 * 60 * 1000
	// OvertimeMs is the length of every overtime period.
	OvertimeMs int64 = 5 * 60 * 1000

	RegulationPeriods = 4
	DefaultTimeouts   = 6
	// BonusThreshold is the team foul count at which the opponent shoots bonus free throws.
	BonusThreshold = 5
)

// Side identifies one of the two teams
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Valid reports whether s is home or away
func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// Opposite returns the other team
func (s Side) Opposite() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// TeamState is the per-team part of the scoreboard
type TeamState struct {
	Score     int `json:"score"`
	Timeouts  int `json:"timeouts"`
	TeamFouls int `json:"team_fouls"`
}

// InBonus reports whether the team has committed enough fouls to put the opponent in the bonus.
func (t TeamState) InBonus() bool {
	return t.TeamFouls >= BonusThreshold
}

// Referees holds the officiating crew names
type Referees struct {
	CrewChief string `json:"crew_chief"`
	Umpire1   string `json:"umpire_1"`
	Umpire2   string `json:"umpire_2"`
}

// Note is one timestamped entry of the match log
type Note struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// MatchState is the root aggregate of a match in progress
type MatchState struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Period       int        `json:"period"`
	Home         TeamState  `json:"home"`
	Away         TeamState  `json:"away"`
	Rules        RuleConfig `json:"rules"`
	Referees     Referees   `json:"referees"`
	GameClock    ClockState `json:"game_clock"`
	ShotClock    ClockState `json:"shot_clock"`
	Notes        []Note     `json:"notes"`
	View         string     `json:"view"`
	RegulationMs int64      `json:"regulation_ms"`
}

// DefaultMatchState returns the state of a freshly opened scoresheet
func DefaultMatchState() MatchState {
	return MatchState{
		ID:     uuid.New(),
		Period: 1,
		Home:   TeamState{Timeouts: DefaultTimeouts},
		Away:   TeamState{Timeouts: DefaultTimeouts},
		Rules:  DefaultRuleConfig(),
		GameClock: ClockState{
			RemainingMs: DefaultRegulationMs,
			TotalMs:     DefaultRegulationMs,
		},
		ShotClock: ClockState{
			RemainingMs: ShotClockFullMs,
			Possession:  SideHome,
		},
		Notes:        []Note{},
		View:         "score",
		RegulationMs: DefaultRegulationMs,
	}
}

// Team returns a pointer to the named team's state
func (m *MatchState) Team(side Side) *TeamState {
	if side == SideAway {
		return &m.Away
	}
	return &m.Home
}

// AdjustTeamFouls changes a team's foul count, floored at zero, and returns the new count
func (m *MatchState) AdjustTeamFouls(side Side, delta int) int {
	t := m.Team(side)
	t.TeamFouls = max(0, t.TeamFouls+delta)
	return t.TeamFouls
}

// PeriodLengthMs returns the game clock length for the given period
func (m *MatchState) PeriodLengthMs(period int) int64 {
	if period > RegulationPeriods {
		return OvertimeMs
	}
	if m.RegulationMs > 0 {
		return m.RegulationMs
	}
	return DefaultRegulationMs
}

// Clone returns a deep copy that shares no memory with m
func (m MatchState) Clone() MatchState {
	out := m
	out.GameClock = m.GameClock.Clone()
	out.ShotClock = m.ShotClock.Clone()
	out.Notes = make([]Note, len(m.Notes))
	copy(out.Notes, m.Notes)
	return out
}
