package models

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned for a foul category name that does not exist
var ErrUnknownCategory = errors.New("unknown foul category")

// FoulCategory is one of the four kinds of personal foul tracked per player
type FoulCategory string

const (
	FoulCommon          FoulCategory = "common"
	FoulOffensive       FoulCategory = "offensive"
	FoulTechnical       FoulCategory = "technical"
	FoulUnsportsmanlike FoulCategory = "unsportsmanlike"
)

// FoulCategories lists every category in display order
var FoulCategories = []FoulCategory{FoulCommon, FoulOffensive, FoulTechnical, FoulUnsportsmanlike}

// ParseFoulCategory validates a category name
func ParseFoulCategory(s string) (FoulCategory, error) {
	switch c := FoulCategory(s); c {
	case FoulCommon, FoulOffensive, FoulTechnical, FoulUnsportsmanlike:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// TeamFoulCategories selects which categories are added to the team foul count
type TeamFoulCategories struct {
	Common          bool `json:"common" yaml:"common"`
	Offensive       bool `json:"offensive" yaml:"offensive"`
	Technical       bool `json:"technical" yaml:"technical"`
	Unsportsmanlike bool `json:"unsportsmanlike" yaml:"unsportsmanlike"`
}

// FoulLimits are the per-player thresholds that raise an alert.
// A limit of zero or less disables the alert.
type FoulLimits struct {
	Personal        int `json:"personal" yaml:"personal"`
	Technical       int `json:"technical" yaml:"technical"`
	Unsportsmanlike int `json:"unsportsmanlike" yaml:"unsportsmanlike"`
}

// RuleConfig controls team foul counting and player foul limits
type RuleConfig struct {
	CountsTowardTeam TeamFoulCategories `json:"counts_toward_team" yaml:"counts_toward_team"`
	Limits           FoulLimits         `json:"limits" yaml:"limits"`
}

// DefaultRuleConfig mirrors FIBA: common and unsportsmanlike fouls count toward the team, disqualification on five.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		CountsTowardTeam: TeamFoulCategories{Common: true, Unsportsmanlike: true},
		Limits:           FoulLimits{Personal: 5, Technical: 2, Unsportsmanlike: 2},
	}
}

// CountsTowardTeamFouls reports whether a foul of category c changes the team foul count
func (r RuleConfig) CountsTowardTeamFouls(c FoulCategory) bool {
	switch c {
	case FoulCommon:
		return r.CountsTowardTeam.Common
	case FoulOffensive:
		return r.CountsTowardTeam.Offensive
	case FoulTechnical:
		return r.CountsTowardTeam.Technical
	case FoulUnsportsmanlike:
		return r.CountsTowardTeam.Unsportsmanlike
	}
	return false
}
