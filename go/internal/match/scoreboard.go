package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/rules"
)

// AddScore changes a team's score, floored at zero
func (e *Engine) AddScore(ctx context.Context, side models.Side, delta int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if err := validSide(side); err != nil {
			return err
		}
		t := e.state.Team(side)
		t.Score = max(0, t.Score+delta)
		return nil
	})
}

// AddTeamFouls changes a team's foul count, floored at zero
func (e *Engine) AddTeamFouls(ctx context.Context, side models.Side, delta int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if err := validSide(side); err != nil {
			return err
		}
		e.state.AdjustTeamFouls(side, delta)
		return nil
	})
}

// ResetTeamFouls clears both teams' foul counts
func (e *Engine) ResetTeamFouls(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.Home.TeamFouls = 0
		e.state.Away.TeamFouls = 0
		return nil
	})
}

// AddTimeouts changes a team's remaining timeouts, floored at zero
func (e *Engine) AddTimeouts(ctx context.Context, side models.Side, delta int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if err := validSide(side); err != nil {
			return err
		}
		t := e.state.Team(side)
		t.Timeouts = max(0, t.Timeouts+delta)
		return nil
	})
}

// ChangePeriod moves the period by delta (+1 or -1; larger values are one step)
// with the same resets as a period rollover. The period never goes below 1.
func (e *Engine) ChangePeriod(ctx context.Context, delta int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		switch {
		case delta > 0:
			e.changePeriodLocked(1, false)
		case delta < 0:
			e.changePeriodLocked(-1, false)
		}
		return nil
	})
}

// UpdateRules replaces the foul rules. Limits below one are raised to one.
func (e *Engine) UpdateRules(ctx context.Context, rc models.RuleConfig) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.Rules = rules.Normalize(rc)
		return nil
	})
}

// ApplyPreset replaces the foul rules with a named preset
func (e *Engine) ApplyPreset(ctx context.Context, name string) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		p, err := e.presets.Lookup(name)
		if err != nil {
			return err
		}
		e.state.Rules = p.Rules
		return nil
	})
}

// Presets lists the available rule presets
func (e *Engine) Presets() []rules.Preset {
	return e.presets.All()
}

// SetReferees replaces the officiating crew
func (e *Engine) SetReferees(ctx context.Context, refs models.Referees) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.Referees = models.Referees{
			CrewChief: strings.TrimSpace(refs.CrewChief),
			Umpire1:   strings.TrimSpace(refs.Umpire1),
			Umpire2:   strings.TrimSpace(refs.Umpire2),
		}
		return nil
	})
}

// SetTitle sets the match title
func (e *Engine) SetTitle(ctx context.Context, title string) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.Title = strings.TrimSpace(title)
		return nil
	})
}

// SetView records which screen the operator has open
func (e *Engine) SetView(ctx context.Context, view string) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.View = view
		return nil
	})
}

// AppendNote adds a timestamped line to the match log. Blank text is ignored.
func (e *Engine) AppendNote(ctx context.Context, text string) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		e.appendNoteLocked(text)
		return nil
	})
}

// RecordFreeThrows credits side with the made free throws and logs the trip.
// attempts is raised to at least one and made is clamped into [0, attempts].
func (e *Engine) RecordFreeThrows(ctx context.Context, side models.Side, attempts, made int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if err := validSide(side); err != nil {
			return err
		}
		attempts = max(1, attempts)
		made = min(max(0, made), attempts)
		t := e.state.Team(side)
		t.Score += made
		e.appendNoteLocked(fmt.Sprintf("%s free throws: %d of %d made", sideLabel(side), made, attempts))
		return nil
	})
}
