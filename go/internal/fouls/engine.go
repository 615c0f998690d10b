// Package fouls applies personal foul changes and evaluates foul limits.
package fouls

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/metrics"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
)

// ErrPlayerNotFound is returned when a foul targets a player with no roster record
var ErrPlayerNotFound = roster.ErrPlayerNotFound

// PlayerRepository defines what the engine needs from the roster
type PlayerRepository interface {
	GetByID(ctx context.Context, id string) (models.PlayerRecord, error)
	Upsert(ctx context.Context, p models.PlayerRecord) error
}

// TeamFoulLedger applies team foul changes; *models.MatchState satisfies it.
type TeamFoulLedger interface {
	AdjustTeamFouls(side models.Side, delta int) int
}

// Result describes what one foul change did
type Result struct {
	Player models.PlayerRecord `json:"player"`
	// TeamFouls is the team's count after the change, or -1 when the category does not count.
	TeamFouls int                `json:"team_fouls"`
	Alerts    []models.FoulAlert `json:"alerts,omitempty"`
}

// CountedTowardTeam reports whether the change touched the team foul count
func (r Result) CountedTowardTeam() bool { return r.TeamFouls >= 0 }

// Engine mutates foul subcounts and raises one-shot limit alerts
type Engine struct {
	players PlayerRepository
	metrics metrics.Collector
}

// NewEngine creates a foul engine
func NewEngine(players PlayerRepository, collector metrics.Collector) *Engine {
	if collector == nil {
		collector = metrics.NoOp{}
	}
	return &Engine{players: players, metrics: collector}
}

// Record adds (delta > 0) or removes (delta < 0) one foul of category for the player.
// Larger deltas are treated as a single step. A zero delta only reads the record.
func (e *Engine) Record(
	ctx context.Context,
	rules models.RuleConfig,
	teams TeamFoulLedger,
	playerID string,
	category models.FoulCategory,
	delta int,
) (Result, error) {
	if _, err := models.ParseFoulCategory(string(category)); err != nil {
		return Result{}, err
	}

	rec, err := e.players.GetByID(ctx, playerID)
	if errors.Is(err, roster.ErrPlayerNotFound) {
		log.Warn().
			Str("player_id", playerID).
			Str("category", string(category)).
			Msg("foul for unknown player ignored")
		return Result{}, err
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load player: %w", err)
	}

	step := sign(delta)
	res := Result{TeamFouls: -1}
	if step == 0 {
		res.Player = rec
		return res, nil
	}

	rec.Fouls.Set(category, max(0, rec.Fouls.Get(category)+step))
	rec.PersonalTotal = rec.Fouls.Total()

	res.Alerts = evaluateLimits(&rec, rules.Limits)

	// The team count only moves once the player record is stored.
	if err := e.players.Upsert(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("failed to save player: %w", err)
	}
	res.Player = rec

	if rules.CountsTowardTeamFouls(category) {
		res.TeamFouls = teams.AdjustTeamFouls(rec.Team, step)
	}

	e.metrics.RecordFoul(string(category), step)
	for _, a := range res.Alerts {
		e.metrics.RecordAlert(string(a.Kind))
	}

	log.Info().
		Str("player_id", rec.ID).
		Str("category", string(category)).
		Int("delta", step).
		Int("personal_total", rec.PersonalTotal).
		Int("team_fouls", res.TeamFouls).
		Int("alerts", len(res.Alerts)).
		Msg("foul recorded")

	return res, nil
}

// evaluateLimits sets the alert flag of every limit the record has reached for
// the first time and returns one alert per newly set flag.
func evaluateLimits(rec *models.PlayerRecord, limits models.FoulLimits) []models.FoulAlert {
	var alerts []models.FoulAlert
	check := func(kind models.LimitKind, count, limit int, flag *bool) {
		if limit <= 0 || count < limit || *flag {
			return
		}
		*flag = true
		alerts = append(alerts, models.FoulAlert{
			PlayerID: rec.ID,
			Team:     rec.Team,
			Number:   rec.Number,
			Name:     rec.Name,
			Kind:     kind,
			Count:    count,
			Limit:    limit,
		})
	}
	check(models.LimitPersonal, rec.PersonalTotal, limits.Personal, &rec.Alerted.PersonalLimit)
	check(models.LimitTechnical, rec.Fouls.Technical, limits.Technical, &rec.Alerted.TechnicalLimit)
	check(models.LimitUnsportsmanlike, rec.Fouls.Unsportsmanlike, limits.Unsportsmanlike, &rec.Alerted.UnsportsmanlikeLimit)
	return alerts
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
