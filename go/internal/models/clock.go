package models

import "time"

// ClockState is the persisted state of one countdown clock.
// TotalMs and Linked are only meaningful for the game clock, Possession only for the shot clock.
type ClockState struct {
	RemainingMs    int64      `json:"remaining_ms"`
	TotalMs        int64      `json:"total_ms,omitempty"`
	Running        bool       `json:"running"`
	LastTickAnchor *time.Time `json:"last_tick_anchor,omitempty"`
	Linked         bool       `json:"linked,omitempty"`
	Possession     Side       `json:"possession,omitempty"`
}

// Clone returns a copy with its own anchor
func (c ClockState) Clone() ClockState {
	out := c
	if c.LastTickAnchor != nil {
		anchor := *c.LastTickAnchor
		out.LastTickAnchor = &anchor
	}
	return out
}
