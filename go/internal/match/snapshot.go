package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/clock"
	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/rules"
)

// ResumePolicy decides what happens to the time a running clock spent offline
type ResumePolicy string

const (
	// ResumeReanchor restarts running clocks from the saved remaining time.
	ResumeReanchor ResumePolicy = "reanchor"
	// ResumeCatchUp takes the time since the saved anchor off running clocks first.
	ResumeCatchUp ResumePolicy = "catch_up"
)

// ParseResumePolicy validates a policy name
func ParseResumePolicy(s string) (ResumePolicy, error) {
	switch p := ResumePolicy(s); p {
	case ResumeReanchor, ResumeCatchUp:
		return p, nil
	case "":
		return ResumeReanchor, nil
	}
	return "", fmt.Errorf("%w: unknown resume policy %q", ErrInvalidArgument, s)
}

// LoadReport describes what Load restored
type LoadReport struct {
	// Fresh is true when no snapshot existed and a default match was created.
	Fresh   bool         `json:"fresh"`
	Policy  ResumePolicy `json:"policy"`
	Resumed []clock.Kind `json:"resumed,omitempty"`
	// GapMs is the longest offline gap of a resumed clock, measured from its saved anchor.
	GapMs int64 `json:"gap_ms"`
	// DiscardedMs is the part of the gap that was not taken off any clock.
	DiscardedMs int64 `json:"discarded_ms"`
}

// Load restores the saved match, merging it over a default match so that
// fields missing from an older snapshot get their defaults. Clocks saved as
// running are resumed according to the resume policy.
func (e *Engine) Load(ctx context.Context) (LoadReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := LoadReport{Policy: e.resume}
	data, err := e.store.Get(ctx, kvstore.BucketGame, SnapshotKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		report.Fresh = true
		e.replaceLocked(e.freshState())
		log.Info().Str("match_id", e.state.ID.String()).Msg("no saved match, starting fresh")
		_, err := e.commitLocked(ctx)
		return report, err
	}
	if err != nil {
		return report, fmt.Errorf("failed to load match state: %w", err)
	}

	st := e.freshState()
	if err := json.Unmarshal(data, &st); err != nil {
		return report, fmt.Errorf("failed to decode match state: %w", err)
	}
	normalize(&st)

	e.game.Halt()
	e.shot.Halt()
	e.state = st

	e.inCommand = true
	now := e.clock.Now()
	for _, c := range []struct {
		kind  clock.Kind
		state *models.ClockState
		cd    *clock.Countdown
	}{
		{clock.KindShot, &e.state.ShotClock, e.shot},
		{clock.KindGame, &e.state.GameClock, e.game},
	} {
		if !c.state.Running {
			continue
		}
		var gap int64
		if c.state.LastTickAnchor != nil {
			gap = max(0, now.Sub(*c.state.LastTickAnchor).Milliseconds())
		}
		report.GapMs = max(report.GapMs, gap)
		if e.resume == ResumeCatchUp {
			c.state.RemainingMs = max(0, c.state.RemainingMs-gap)
		} else {
			report.DiscardedMs = max(report.DiscardedMs, gap)
		}
		report.Resumed = append(report.Resumed, c.kind)
		c.cd.Resume()
	}
	e.inCommand = false

	log.Info().
		Str("match_id", e.state.ID.String()).
		Int("period", e.state.Period).
		Str("policy", string(e.resume)).
		Int64("gap_ms", report.GapMs).
		Int("resumed", len(report.Resumed)).
		Msg("match state loaded")

	_, err = e.commitLocked(ctx)
	return report, err
}

// ClearMatch replaces the match with a fresh one and empties the roster
func (e *Engine) ClearMatch(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		previous := e.state.ID
		if err := e.players.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear roster: %w", err)
		}
		e.replaceLocked(e.freshState())
		e.emit(events.TypeMatchReset, events.MatchResetPayload{PreviousMatchID: previous.String()})
		log.Info().
			Str("previous_match_id", previous.String()).
			Str("match_id", e.state.ID.String()).
			Msg("match cleared")
		return nil
	})
}

// Close stops both tick schedules and saves the state as it is, so clocks saved
// as running resume on the next Load.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.game.Halt()
	e.shot.Halt()
	e.cancel()
	return e.saveLocked(ctx)
}

// replaceLocked swaps in a new state after stopping both schedules
func (e *Engine) replaceLocked(st models.MatchState) {
	e.game.Halt()
	e.shot.Halt()
	e.state = st
}

// normalize repairs a decoded snapshot so every invariant holds
func normalize(st *models.MatchState) {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	st.Period = max(1, st.Period)
	if st.RegulationMs <= 0 {
		st.RegulationMs = models.DefaultRegulationMs
	}
	for _, t := range []*models.TeamState{&st.Home, &st.Away} {
		t.Score = max(0, t.Score)
		t.Timeouts = max(0, t.Timeouts)
		t.TeamFouls = max(0, t.TeamFouls)
	}
	st.Rules = rules.Normalize(st.Rules)

	gc := &st.GameClock
	if gc.TotalMs <= 0 {
		gc.TotalMs = st.PeriodLengthMs(st.Period)
	}
	gc.RemainingMs = max(0, gc.RemainingMs)
	sc := &st.ShotClock
	sc.RemainingMs = min(max(0, sc.RemainingMs), models.ShotClockFullMs)
	if !sc.Possession.Valid() {
		sc.Possession = models.SideHome
	}
	for _, c := range []*models.ClockState{gc, sc} {
		if !c.Running {
			c.LastTickAnchor = nil
		}
	}
	if st.Notes == nil {
		st.Notes = []models.Note{}
	}
}
