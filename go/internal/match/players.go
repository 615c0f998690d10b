package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/fouls"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
)

// FoulEventKind is a common game situation that produces a foul
type FoulEventKind string

const (
	FoulEventDefensive       FoulEventKind = "defensive"
	FoulEventOffensive       FoulEventKind = "offensive"
	FoulEventShootingTwo     FoulEventKind = "shooting_two"
	FoulEventShootingThree   FoulEventKind = "shooting_three"
	FoulEventAndOne          FoulEventKind = "and_one"
	FoulEventTechnical       FoulEventKind = "technical"
	FoulEventUnsportsmanlike FoulEventKind = "unsportsmanlike"
)

type foulEventRule struct {
	category   models.FoulCategory
	freeThrows int
	label      string
}

var foulEventRules = map[FoulEventKind]foulEventRule{
	FoulEventDefensive:       {models.FoulCommon, 2, "defensive foul"},
	FoulEventOffensive:       {models.FoulOffensive, 0, "offensive foul"},
	FoulEventShootingTwo:     {models.FoulCommon, 2, "shooting foul"},
	FoulEventShootingThree:   {models.FoulCommon, 3, "shooting foul on a three"},
	FoulEventAndOne:          {models.FoulCommon, 1, "and-one foul"},
	FoulEventTechnical:       {models.FoulTechnical, 1, "technical foul"},
	FoulEventUnsportsmanlike: {models.FoulUnsportsmanlike, 2, "unsportsmanlike foul"},
}

// FreeThrowAward tells the operator which team shoots and how many
type FreeThrowAward struct {
	Side     models.Side `json:"side"`
	Attempts int         `json:"attempts"`
}

// FoulOutcome is the result of a foul command
type FoulOutcome struct {
	Snapshot   Snapshot        `json:"snapshot"`
	Foul       fouls.Result    `json:"foul"`
	FreeThrows *FreeThrowAward `json:"free_throws,omitempty"`
}

// RecordFoul adds or removes one foul of category for a player. A player that
// is not on the roster is reported with fouls.ErrPlayerNotFound and nothing changes.
func (e *Engine) RecordFoul(ctx context.Context, playerID string, category models.FoulCategory, delta int) (FoulOutcome, error) {
	var res fouls.Result
	snap, err := e.mutate(ctx, func() error {
		var err error
		res, err = e.recordFoulLocked(ctx, playerID, category, delta)
		return err
	})
	if err != nil && res.Player.ID == "" {
		return FoulOutcome{}, err
	}
	return FoulOutcome{Snapshot: snap, Foul: res}, err
}

// RecordFoulEvent records the foul a game situation implies and applies its
// consequences: the note, the possession change for an offensive foul, and the
// free throws the opponent is awarded.
func (e *Engine) RecordFoulEvent(ctx context.Context, playerID string, kind FoulEventKind) (FoulOutcome, error) {
	rule, ok := foulEventRules[kind]
	if !ok {
		return FoulOutcome{}, fmt.Errorf("%w: unknown foul event %q", ErrInvalidArgument, kind)
	}

	var (
		res   fouls.Result
		award *FreeThrowAward
	)
	snap, err := e.mutate(ctx, func() error {
		var err error
		res, err = e.recordFoulLocked(ctx, playerID, rule.category, 1)
		if err != nil {
			return err
		}
		offender := res.Player.Team
		text := fmt.Sprintf("%s #%s %s", sideLabel(offender), res.Player.Number, rule.label)
		if rule.freeThrows > 0 {
			award = &FreeThrowAward{Side: offender.Opposite(), Attempts: rule.freeThrows}
			text += fmt.Sprintf(", %s shoots %d", sideLabel(award.Side), award.Attempts)
		}
		e.appendNoteLocked(text)

		if kind == FoulEventOffensive {
			e.swapPossessionLocked()
			e.resetShotLocked(models.ShotClockFullMs, true)
		}
		return nil
	})
	if err != nil && res.Player.ID == "" {
		return FoulOutcome{}, err
	}
	return FoulOutcome{Snapshot: snap, Foul: res, FreeThrows: award}, err
}

func (e *Engine) recordFoulLocked(ctx context.Context, playerID string, category models.FoulCategory, delta int) (fouls.Result, error) {
	res, err := e.fouls.Record(ctx, e.state.Rules, &e.state, playerID, category, delta)
	if err != nil {
		return fouls.Result{}, err
	}
	if delta == 0 {
		return res, nil
	}
	team := e.state.Team(res.Player.Team)
	e.emit(events.TypeFoulRecorded, events.FoulRecordedPayload{
		PlayerID:      res.Player.ID,
		Team:          res.Player.Team,
		Category:      category,
		Delta:         sign(delta),
		PersonalTotal: res.Player.PersonalTotal,
		TeamFouls:     team.TeamFouls,
		Bonus:         team.InBonus(),
	})
	if len(res.Alerts) > 0 {
		e.emit(events.TypeFoulLimitAlerts, events.FoulLimitAlertsPayload{Alerts: res.Alerts})
	}
	return res, nil
}

// UpsertPlayer creates a roster entry or updates its identity, keeping its counters
func (e *Engine) UpsertPlayer(ctx context.Context, p roster.PlayerIdentity) (models.PlayerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.Save(ctx, p)
}

// ImportPlayers upserts a batch of roster entries
func (e *Engine) ImportPlayers(ctx context.Context, ps []roster.PlayerIdentity) ([]models.PlayerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.Import(ctx, ps)
}

// SetOnCourt marks whether a player accrues play time
func (e *Engine) SetOnCourt(ctx context.Context, playerID string, onCourt bool) (models.PlayerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.SetOnCourt(ctx, playerID, onCourt)
}

// AddPlayerPoints credits a player with points and adds them to the team score
func (e *Engine) AddPlayerPoints(ctx context.Context, playerID string, delta int) (models.PlayerRecord, Snapshot, error) {
	var rec models.PlayerRecord
	snap, err := e.mutate(ctx, func() error {
		before, err := e.players.Get(ctx, playerID)
		if err != nil {
			return err
		}
		rec, err = e.players.AddPoints(ctx, playerID, delta)
		if err != nil {
			return err
		}
		t := e.state.Team(rec.Team)
		t.Score = max(0, t.Score+rec.Points-before.Points)
		return nil
	})
	return rec, snap, err
}

// RemovePlayer deletes a roster entry
func (e *Engine) RemovePlayer(ctx context.Context, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.Remove(ctx, strings.TrimSpace(playerID))
}

// Players lists the roster, home first and then by jersey number
func (e *Engine) Players(ctx context.Context) ([]models.PlayerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.List(ctx)
}

// Player returns one roster entry
func (e *Engine) Player(ctx context.Context, playerID string) (models.PlayerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players.Get(ctx, playerID)
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
