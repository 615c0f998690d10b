// Package match owns the state of one game and every command that changes it.
//
// All mutation goes through a single mutex shared with both countdowns, so a
// tick and a command never interleave. Every command persists the snapshot
// before it returns and then hands the new state to the render hook.
package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/clock"
	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/fouls"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/metrics"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
	"github.com/mcdev12/courtside/go/internal/rules"
)

// SnapshotKey is the key of the match snapshot in kvstore.BucketGame
const SnapshotKey = "state"

// ErrInvalidArgument is returned for commands whose arguments cannot be clamped into range
var ErrInvalidArgument = errors.New("invalid argument")

// Publisher accepts events for asynchronous delivery. Enqueue must not block.
type Publisher interface {
	Enqueue(event events.Event)
}

// RenderFunc receives the state after every change. It is called with the
// engine lock held and must not block or call back into the engine.
type RenderFunc func(Snapshot)

// Snapshot is a read-only copy of the match with display values precomputed
type Snapshot struct {
	State       models.MatchState `json:"state"`
	GameDisplay string            `json:"game_display"`
	ShotDisplay string            `json:"shot_display"`
	HomeBonus   bool              `json:"home_bonus"`
	AwayBonus   bool              `json:"away_bonus"`
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the time source
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithScheduler sets the tick source for both clocks
func WithScheduler(s clock.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithPublisher sets where events are sent
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithRenderer sets the render hook
func WithRenderer(fn RenderFunc) Option {
	return func(e *Engine) { e.render = fn }
}

// WithMetrics sets the metrics collector
func WithMetrics(c metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithResumePolicy sets how running clocks are resumed by Load
func WithResumePolicy(p ResumePolicy) Option {
	return func(e *Engine) { e.resume = p }
}

// WithPresets sets the preset registry and, when name is not empty, the
// preset applied to every fresh match.
func WithPresets(reg *rules.Registry, name string) Option {
	return func(e *Engine) {
		e.presets = reg
		e.defaultPreset = name
	}
}

// Engine runs one match
type Engine struct {
	mu    sync.Mutex
	state models.MatchState
	game  *clock.Countdown
	shot  *clock.Countdown

	store   kvstore.Store
	players *roster.App
	fouls   *fouls.Engine

	clock         clockwork.Clock
	sched         clock.Scheduler
	publisher     Publisher
	render        RenderFunc
	metrics       metrics.Collector
	resume        ResumePolicy
	presets       *rules.Registry
	defaultPreset string

	// inCommand is set while a command holds the lock; tick side effects
	// that the command will commit anyway are skipped.
	inCommand bool
	shown     map[clock.Kind]string
	// ctx is used for work started by ticks, which have no caller context.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an engine over store with a default match. Call Load to restore a saved one.
func New(store kvstore.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   store,
		metrics: metrics.NoOp{},
		resume:  ResumeReanchor,
		shown:   make(map[clock.Kind]string, 2),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.sched == nil {
		e.sched = clock.NewTickerScheduler(e.clock)
	}
	if e.presets == nil {
		reg, err := rules.Builtin()
		if err != nil {
			return nil, err
		}
		e.presets = reg
	}
	if e.defaultPreset != "" {
		if _, err := e.presets.Lookup(e.defaultPreset); err != nil {
			return nil, err
		}
	}

	repo := roster.NewRepository(store)
	e.players = roster.NewApp(repo)
	e.fouls = fouls.NewEngine(repo, e.metrics)
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.state = e.freshState()
	e.game = clock.New(&e.state.GameClock, clock.Config{
		Kind:      clock.KindGame,
		Cadence:   clock.GameCadence,
		Clock:     e.clock,
		Scheduler: e.sched,
		Guard:     &e.mu,
		Hooks: clock.Hooks{
			OnTick:   e.onGameTick,
			OnExpire: e.onGameExpire,
			OnRearm:  func(d time.Duration) { e.metrics.RecordRearm(string(clock.KindGame), d) },
		},
	})
	e.shot = clock.New(&e.state.ShotClock, clock.Config{
		Kind:      clock.KindShot,
		CapMs:     models.ShotClockFullMs,
		Cadence:   clock.ShotCadence,
		Clock:     e.clock,
		Scheduler: e.sched,
		Guard:     &e.mu,
		Hooks: clock.Hooks{
			OnTick:   e.onShotTick,
			OnExpire: e.onShotExpire,
			OnRearm:  func(d time.Duration) { e.metrics.RecordRearm(string(clock.KindShot), d) },
		},
	})
	return e, nil
}

// Snapshot returns a copy of the current state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Save persists the current state
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

// ArmedIntervals reports the tick interval of each running clock
func (e *Engine) ArmedIntervals() (game, shot time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.ArmedInterval(), e.shot.ArmedInterval()
}

func (e *Engine) freshState() models.MatchState {
	s := models.DefaultMatchState()
	if e.defaultPreset != "" {
		if p, err := e.presets.Lookup(e.defaultPreset); err == nil {
			s.Rules = p.Rules
		}
	}
	return s
}

// mutate runs fn as one command: under the lock, then persisted and rendered.
func (e *Engine) mutate(ctx context.Context, fn func() error) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inCommand = true
	err := fn()
	e.inCommand = false
	if err != nil {
		return Snapshot{}, err
	}
	return e.commitLocked(ctx)
}

// commitLocked saves, renders and returns the new state. A failed save is
// returned to the caller; the in-memory state stays as it is.
func (e *Engine) commitLocked(ctx context.Context) (Snapshot, error) {
	err := e.saveLocked(ctx)
	snap := e.snapshotLocked()
	e.shown[clock.KindGame] = snap.GameDisplay
	e.shown[clock.KindShot] = snap.ShotDisplay
	if e.render != nil {
		e.render(snap)
	}
	return snap, err
}

func (e *Engine) saveLocked(ctx context.Context) error {
	start := time.Now()
	data, err := json.Marshal(e.state.Clone())
	if err == nil {
		err = e.store.Put(ctx, kvstore.BucketGame, SnapshotKey, data)
	}
	e.metrics.RecordSnapshot(err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to save match state: %w", err)
	}
	return nil
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:       e.state.Clone(),
		GameDisplay: clock.FormatGame(e.state.GameClock.RemainingMs),
		ShotDisplay: clock.FormatShot(e.state.ShotClock.RemainingMs),
		HomeBonus:   e.state.Home.InBonus(),
		AwayBonus:   e.state.Away.InBonus(),
	}
}

// afterTickLocked persists and renders when a tick changed what a display shows.
func (e *Engine) afterTickLocked(kind clock.Kind, display string) {
	if e.inCommand || e.shown[kind] == display {
		return
	}
	if _, err := e.commitLocked(e.ctx); err != nil {
		log.Error().Err(err).Str("clock", string(kind)).Msg("failed to persist after tick")
	}
}

// afterTransitionLocked commits an expiry cascade that was not started by a command.
func (e *Engine) afterTransitionLocked(kind clock.Kind) {
	if e.inCommand {
		return
	}
	if _, err := e.commitLocked(e.ctx); err != nil {
		log.Error().Err(err).Str("clock", string(kind)).Msg("failed to persist after expiry")
	}
}

func (e *Engine) emit(typ events.Type, payload any) {
	if e.publisher == nil {
		return
	}
	event, err := events.New(e.state.ID, typ, e.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
		return
	}
	e.publisher.Enqueue(event)
}

func (e *Engine) appendNoteLocked(text string) models.Note {
	note := models.Note{At: e.clock.Now().UTC(), Text: text}
	e.state.Notes = append(e.state.Notes, note)
	e.emit(events.TypeNoteAppended, events.NoteAppendedPayload{Note: note})
	return note
}

func sideLabel(s models.Side) string {
	if s == models.SideAway {
		return "AWAY"
	}
	return "HOME"
}

func validSide(s models.Side) error {
	if !s.Valid() {
		return fmt.Errorf("%w: side must be home or away, got %q", ErrInvalidArgument, s)
	}
	return nil
}
