package match

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/clock"
	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/models"
)

// StartGameClock starts the game clock. With the clocks linked an idle shot clock starts too.
func (e *Engine) StartGameClock(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if e.game.Start() && e.state.GameClock.Linked && !e.shot.Running() {
			e.shot.Start()
		}
		return nil
	})
}

// PauseGameClock pauses the game clock. With the clocks linked a running shot clock pauses too.
func (e *Engine) PauseGameClock(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.game.Pause()
		if e.state.GameClock.Linked && e.shot.Running() {
			e.shot.Pause()
		}
		return nil
	})
}

// ResetGameClock puts the game clock back to the full length of the period
func (e *Engine) ResetGameClock(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.game.Reset(e.state.GameClock.TotalMs)
		return nil
	})
}

// AdjustGameClock moves the game clock by deltaMs, never below zero
func (e *Engine) AdjustGameClock(ctx context.Context, deltaMs int64) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.game.Adjust(deltaMs)
		return nil
	})
}

// MaxGameLengthMinutes is the longest period SetGameLength accepts
const MaxGameLengthMinutes = 99

// SetGameLength sets the period length in minutes, within [1, 99], and resets
// the game clock to it. A running clock keeps running from the new length.
func (e *Engine) SetGameLength(ctx context.Context, minutes int) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		ms := int64(min(max(1, minutes), MaxGameLengthMinutes)) * 60 * 1000
		e.state.RegulationMs = ms
		e.state.GameClock.TotalMs = ms
		e.game.Reset(ms)
		return nil
	})
}

// SetLinked turns clock linking on or off
func (e *Engine) SetLinked(ctx context.Context, linked bool) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.GameClock.Linked = linked
		return nil
	})
}

// ToggleLink flips clock linking
func (e *Engine) ToggleLink(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.state.GameClock.Linked = !e.state.GameClock.Linked
		return nil
	})
}

// StartShotClock starts the shot clock
func (e *Engine) StartShotClock(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.shot.Start()
		return nil
	})
}

// PauseShotClock pauses the shot clock
func (e *Engine) PauseShotClock(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.shot.Pause()
		return nil
	})
}

// ResetShotClock sets the shot clock to ms, capped at 24 seconds. While linked
// with a running game clock, a stopped shot clock starts.
func (e *Engine) ResetShotClock(ctx context.Context, ms int64) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.resetShotLocked(ms, true)
		return nil
	})
}

// AdjustShotClock moves the shot clock by deltaMs within [0, 24s]
func (e *Engine) AdjustShotClock(ctx context.Context, deltaMs int64) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.shot.Adjust(deltaMs)
		return nil
	})
}

// SwapPossession gives the ball to the other team without touching the shot clock
func (e *Engine) SwapPossession(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.swapPossessionLocked()
		return nil
	})
}

// SetPossession gives the ball to side
func (e *Engine) SetPossession(ctx context.Context, side models.Side) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		if err := validSide(side); err != nil {
			return err
		}
		e.state.ShotClock.Possession = side
		return nil
	})
}

// ChangePossession swaps possession and resets the shot clock to 24 seconds
func (e *Engine) ChangePossession(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.swapPossessionLocked()
		e.resetShotLocked(models.ShotClockFullMs, true)
		return nil
	})
}

// ShotClockViolation is the manual violation: the shot clock stops, the buzzer
// sounds and the same transition as an expiry follows.
func (e *Engine) ShotClockViolation(ctx context.Context) (Snapshot, error) {
	return e.mutate(ctx, func() error {
		e.shot.Pause()
		e.buzz(clock.KindShot, "violation")
		e.violationLocked(true)
		return nil
	})
}

func (e *Engine) swapPossessionLocked() {
	e.state.ShotClock.Possession = e.state.ShotClock.Possession.Opposite()
}

// resetShotLocked resets the shot clock. With autoRun, a stopped shot clock is
// started when the clocks are linked and the game clock is running.
func (e *Engine) resetShotLocked(ms int64, autoRun bool) {
	e.shot.Reset(ms)
	if autoRun && e.state.GameClock.Linked && e.game.Running() && !e.shot.Running() {
		e.shot.Start()
	}
}

func (e *Engine) violationLocked(manual bool) {
	offender := e.state.ShotClock.Possession
	if !offender.Valid() {
		offender = models.SideHome
	}
	e.appendNoteLocked(fmt.Sprintf("%s shot clock violation", sideLabel(offender)))
	e.state.ShotClock.Possession = offender.Opposite()
	e.resetShotLocked(models.ShotClockFullMs, true)

	e.emit(events.TypeShotClockViolation, events.ShotClockViolationPayload{
		Offender:      offender,
		NewPossession: offender.Opposite(),
		Manual:        manual,
	})
	log.Info().
		Str("match_id", e.state.ID.String()).
		Str("offender", string(offender)).
		Bool("manual", manual).
		Msg("shot clock violation")
}

// changePeriodLocked moves to period+step (never below 1) and resets the game
// clock, both teams' fouls and the shot clock.
func (e *Engine) changePeriodLocked(step int, expired bool) {
	next := max(1, e.state.Period+step)
	if next == e.state.Period {
		return
	}
	e.state.Period = next
	total := e.state.PeriodLengthMs(next)
	e.state.GameClock.TotalMs = total
	e.game.Reset(total)
	e.state.Home.TeamFouls = 0
	e.state.Away.TeamFouls = 0
	e.resetShotLocked(models.ShotClockFullMs, true)

	e.metrics.RecordPeriod(next)
	e.emit(events.TypePeriodStarted, events.PeriodStartedPayload{
		Period:   next,
		TotalMs:  total,
		Overtime: next > models.RegulationPeriods,
		Expired:  expired,
	})
	log.Info().
		Str("match_id", e.state.ID.String()).
		Int("period", next).
		Int64("total_ms", total).
		Bool("expired", expired).
		Msg("period started")
}

func (e *Engine) buzz(kind clock.Kind, reason string) {
	e.emit(events.TypeBuzzer, events.BuzzerPayload{Clock: string(kind), Reason: reason})
}

func (e *Engine) onGameTick(consumedMs int64) {
	e.metrics.RecordTick(string(clock.KindGame), consumedMs)
	e.metrics.RecordClockRemaining(string(clock.KindGame), e.state.GameClock.RemainingMs)

	if _, err := e.players.AccruePlayTime(e.ctx, consumedMs); err != nil {
		log.Error().Err(err).Int64("ms", consumedMs).Msg("failed to accrue play time")
	}
	e.afterTickLocked(clock.KindGame, clock.FormatGame(e.state.GameClock.RemainingMs))
}

func (e *Engine) onShotTick(consumedMs int64) {
	e.metrics.RecordTick(string(clock.KindShot), consumedMs)
	e.metrics.RecordClockRemaining(string(clock.KindShot), e.state.ShotClock.RemainingMs)
	e.afterTickLocked(clock.KindShot, clock.FormatShot(e.state.ShotClock.RemainingMs))
}

func (e *Engine) onShotExpire() {
	e.metrics.RecordExpiry(string(clock.KindShot))
	e.buzz(clock.KindShot, "expired")
	e.violationLocked(false)
	e.afterTransitionLocked(clock.KindShot)
}

func (e *Engine) onGameExpire() {
	e.metrics.RecordExpiry(string(clock.KindGame))
	e.buzz(clock.KindGame, "expired")
	if e.state.GameClock.Linked && e.shot.Running() {
		e.shot.Pause()
	}
	e.changePeriodLocked(1, true)
	e.afterTransitionLocked(clock.KindGame)
}
