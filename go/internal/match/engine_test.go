package match

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtside/go/internal/clock"
	"github.com/mcdev12/courtside/go/internal/clock/clocktest"
	"github.com/mcdev12/courtside/go/internal/events"
	"github.com/mcdev12/courtside/go/internal/fouls"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Enqueue(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(typ events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	engine  *Engine
	fc      *clockwork.FakeClock
	sched   *clocktest.ManualScheduler
	store   kvstore.Store
	events  *recorder
	renders int
}

func newHarness(t *testing.T, store kvstore.Store, opts ...Option) *harness {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemory()
	}
	h := &harness{
		fc:     clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)),
		sched:  clocktest.NewManualScheduler(),
		store:  store,
		events: &recorder{},
	}
	opts = append([]Option{
		WithClock(h.fc),
		WithScheduler(h.sched),
		WithPublisher(h.events),
		WithRenderer(func(Snapshot) { h.renders++ }),
	}, opts...)
	e, err := New(store, opts...)
	require.NoError(t, err)
	h.engine = e
	return h
}

func (h *harness) step(d time.Duration) {
	h.sched.Step(h.fc, d)
}

func TestLinkedStartAndPause(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.SetLinked(ctx, true)
	require.NoError(t, err)

	snap, err := h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.GameClock.Running)
	assert.True(t, snap.State.ShotClock.Running)

	game, shot := h.engine.ArmedIntervals()
	assert.Equal(t, 250*time.Millisecond, game)
	assert.Equal(t, 200*time.Millisecond, shot)

	h.step(250 * time.Millisecond)

	snap, err = h.engine.PauseGameClock(ctx)
	require.NoError(t, err)
	assert.False(t, snap.State.GameClock.Running)
	assert.False(t, snap.State.ShotClock.Running)
	assert.Nil(t, snap.State.GameClock.LastTickAnchor)
	assert.Nil(t, snap.State.ShotClock.LastTickAnchor)
	assert.Equal(t, models.DefaultRegulationMs-250, snap.State.GameClock.RemainingMs)
	assert.Equal(t, models.ShotClockFullMs-250, snap.State.ShotClock.RemainingMs)
	assert.Empty(t, h.sched.Active())
}

func TestUnlinkedClocksAreIndependent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	snap, err := h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.GameClock.Running)
	assert.False(t, snap.State.ShotClock.Running)

	_, err = h.engine.StartShotClock(ctx)
	require.NoError(t, err)
	snap, err = h.engine.PauseGameClock(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.ShotClock.Running)
}

func TestShotClockExpiryViolationRestartsWhenLinked(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.SetLinked(ctx, true)
	require.NoError(t, err)
	_, err = h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	snap, err := h.engine.AdjustShotClock(ctx, -23_000)
	require.NoError(t, err)
	require.Equal(t, int64(1000), snap.State.ShotClock.RemainingMs)
	require.Equal(t, models.SideHome, snap.State.ShotClock.Possession)

	h.step(1000 * time.Millisecond)

	snap = h.engine.Snapshot()
	sc := snap.State.ShotClock
	assert.Equal(t, models.ShotClockFullMs, sc.RemainingMs)
	assert.True(t, sc.Running)
	assert.Equal(t, models.SideAway, sc.Possession)
	require.NotEmpty(t, snap.State.Notes)
	assert.Equal(t, "HOME shot clock violation", snap.State.Notes[len(snap.State.Notes)-1].Text)

	violations := h.events.ofType(events.TypeShotClockViolation)
	require.Len(t, violations, 1)
	var p events.ShotClockViolationPayload
	require.NoError(t, violations[0].Decode(&p))
	assert.Equal(t, models.SideHome, p.Offender)
	assert.False(t, p.Manual)
	assert.Len(t, h.events.ofType(events.TypeBuzzer), 1)

	// the expiry was committed by the tick itself
	raw, err := h.store.Get(ctx, kvstore.BucketGame, SnapshotKey)
	require.NoError(t, err)
	var saved models.MatchState
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, models.SideAway, saved.ShotClock.Possession)
}

func TestShotClockExpiryStaysStoppedWhenUnlinked(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.ResetShotClock(ctx, 500)
	require.NoError(t, err)
	_, err = h.engine.StartShotClock(ctx)
	require.NoError(t, err)

	h.step(600 * time.Millisecond)

	sc := h.engine.Snapshot().State.ShotClock
	assert.Equal(t, models.ShotClockFullMs, sc.RemainingMs)
	assert.False(t, sc.Running)
	assert.Equal(t, models.SideAway, sc.Possession)
}

func TestManualViolation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.StartShotClock(ctx)
	require.NoError(t, err)
	h.step(200 * time.Millisecond)

	snap, err := h.engine.ShotClockViolation(ctx)
	require.NoError(t, err)
	assert.False(t, snap.State.ShotClock.Running)
	assert.Equal(t, models.ShotClockFullMs, snap.State.ShotClock.RemainingMs)
	assert.Equal(t, models.SideAway, snap.State.ShotClock.Possession)

	violations := h.events.ofType(events.TypeShotClockViolation)
	require.Len(t, violations, 1)
	var p events.ShotClockViolationPayload
	require.NoError(t, violations[0].Decode(&p))
	assert.True(t, p.Manual)
}

func TestPeriodRolloverIntoOvertime(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	for i := 0; i < 3; i++ {
		_, err := h.engine.ChangePeriod(ctx, 1)
		require.NoError(t, err)
	}
	_, err := h.engine.AddTeamFouls(ctx, models.SideHome, 4)
	require.NoError(t, err)
	_, err = h.engine.AddTeamFouls(ctx, models.SideAway, 6)
	require.NoError(t, err)
	_, err = h.engine.AdjustShotClock(ctx, -10_000)
	require.NoError(t, err)
	snap, err := h.engine.AdjustGameClock(ctx, -(models.DefaultRegulationMs - 100))
	require.NoError(t, err)
	require.Equal(t, 4, snap.State.Period)
	require.Equal(t, int64(100), snap.State.GameClock.RemainingMs)
	assert.True(t, snap.AwayBonus)

	_, err = h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	h.step(50 * time.Millisecond)
	h.step(50 * time.Millisecond)

	st := h.engine.Snapshot().State
	assert.Equal(t, 5, st.Period)
	assert.Equal(t, models.OvertimeMs, st.GameClock.TotalMs)
	assert.Equal(t, models.OvertimeMs, st.GameClock.RemainingMs)
	assert.False(t, st.GameClock.Running)
	assert.Zero(t, st.Home.TeamFouls)
	assert.Zero(t, st.Away.TeamFouls)
	assert.Equal(t, models.ShotClockFullMs, st.ShotClock.RemainingMs)
	assert.False(t, st.ShotClock.Running)

	periods := h.events.ofType(events.TypePeriodStarted)
	require.NotEmpty(t, periods)
	var p events.PeriodStartedPayload
	require.NoError(t, periods[len(periods)-1].Decode(&p))
	assert.Equal(t, 5, p.Period)
	assert.True(t, p.Overtime)
	assert.True(t, p.Expired)
}

func TestChangePeriod(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	snap, err := h.engine.ChangePeriod(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Period)

	_, err = h.engine.SetGameLength(ctx, 10)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		snap, err = h.engine.ChangePeriod(ctx, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, snap.State.Period)
	assert.Equal(t, models.OvertimeMs, snap.State.GameClock.TotalMs)

	snap, err = h.engine.ChangePeriod(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.State.Period)
	assert.Equal(t, int64(10*60*1000), snap.State.GameClock.TotalMs)
	assert.Equal(t, int64(10*60*1000), snap.State.GameClock.RemainingMs)
}

func TestSetGameLengthKeepsRunningClockRunning(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	h.step(250 * time.Millisecond)

	snap, err := h.engine.SetGameLength(ctx, 5)
	require.NoError(t, err)
	assert.True(t, snap.State.GameClock.Running)
	assert.Equal(t, int64(300_000), snap.State.GameClock.RemainingMs)
	assert.Len(t, h.sched.Active(), 1)

	snap, err = h.engine.SetGameLength(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(60_000), snap.State.GameClock.TotalMs)

	snap, err = h.engine.SetGameLength(ctx, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxGameLengthMinutes*60_000), snap.State.GameClock.TotalMs)
	assert.Equal(t, int64(MaxGameLengthMinutes*60_000), snap.State.RegulationMs)
}

func TestPlayTimeAccruesForOnCourtPlayers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.ImportPlayers(ctx, []roster.PlayerIdentity{
		{Team: models.SideHome, Number: "7"},
		{Team: models.SideAway, Number: "12"},
	})
	require.NoError(t, err)
	_, err = h.engine.SetOnCourt(ctx, "home#7", true)
	require.NoError(t, err)

	_, err = h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		h.step(250 * time.Millisecond)
	}
	_, err = h.engine.PauseGameClock(ctx)
	require.NoError(t, err)

	p7, err := h.engine.Player(ctx, "home#7")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p7.PlayTimeMs)
	p12, err := h.engine.Player(ctx, "away#12")
	require.NoError(t, err)
	assert.Zero(t, p12.PlayTimeMs)
}

func TestPlayTimeStopsAtZero(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideHome, Number: "1"})
	require.NoError(t, err)
	_, err = h.engine.SetOnCourt(ctx, "home#1", true)
	require.NoError(t, err)
	_, err = h.engine.AdjustGameClock(ctx, -(models.DefaultRegulationMs - 100))
	require.NoError(t, err)
	_, err = h.engine.StartGameClock(ctx)
	require.NoError(t, err)

	h.step(400 * time.Millisecond)

	p, err := h.engine.Player(ctx, "home#1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.PlayTimeMs)
}

func TestRecordFoulUpdatesTeamAndAlerts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideAway, Number: "9", Name: "Chen"})
	require.NoError(t, err)

	var out FoulOutcome
	for i := 0; i < 5; i++ {
		out, err = h.engine.RecordFoul(ctx, "away#9", models.FoulCommon, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, out.Foul.Player.PersonalTotal)
	assert.Equal(t, 5, out.Snapshot.State.Away.TeamFouls)
	assert.True(t, out.Snapshot.AwayBonus)
	require.Len(t, out.Foul.Alerts, 1)
	assert.Equal(t, models.LimitPersonal, out.Foul.Alerts[0].Kind)

	assert.Len(t, h.events.ofType(events.TypeFoulRecorded), 5)
	assert.Len(t, h.events.ofType(events.TypeFoulLimitAlerts), 1)

	out, err = h.engine.RecordFoul(ctx, "away#9", models.FoulOffensive, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Foul.Player.PersonalTotal)
	assert.Equal(t, 5, out.Snapshot.State.Away.TeamFouls)
	assert.Empty(t, out.Foul.Alerts)
}

func TestRecordFoulUnknownPlayer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.RecordFoul(ctx, "home#99", models.FoulCommon, 1)
	assert.ErrorIs(t, err, fouls.ErrPlayerNotFound)
	assert.Zero(t, h.engine.Snapshot().State.Home.TeamFouls)
	assert.Empty(t, h.events.ofType(events.TypeFoulRecorded))
}

func TestRecordFoulEvent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideHome, Number: "23"})
	require.NoError(t, err)

	out, err := h.engine.RecordFoulEvent(ctx, "home#23", FoulEventShootingThree)
	require.NoError(t, err)
	require.NotNil(t, out.FreeThrows)
	assert.Equal(t, FreeThrowAward{Side: models.SideAway, Attempts: 3}, *out.FreeThrows)
	assert.Equal(t, 1, out.Foul.Player.Fouls.Common)
	notes := out.Snapshot.State.Notes
	assert.Equal(t, "HOME #23 shooting foul on a three, AWAY shoots 3", notes[len(notes)-1].Text)

	_, err = h.engine.ResetShotClock(ctx, 9_000)
	require.NoError(t, err)
	out, err = h.engine.RecordFoulEvent(ctx, "home#23", FoulEventOffensive)
	require.NoError(t, err)
	assert.Nil(t, out.FreeThrows)
	assert.Equal(t, 1, out.Foul.Player.Fouls.Offensive)
	assert.Equal(t, models.SideAway, out.Snapshot.State.ShotClock.Possession)
	assert.Equal(t, models.ShotClockFullMs, out.Snapshot.State.ShotClock.RemainingMs)

	_, err = h.engine.RecordFoulEvent(ctx, "home#23", "flagrant")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecordFreeThrows(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	snap, err := h.engine.RecordFreeThrows(ctx, models.SideAway, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Away.Score)
	assert.Equal(t, "AWAY free throws: 2 of 2 made", snap.State.Notes[0].Text)

	_, err = h.engine.RecordFreeThrows(ctx, "bench", 2, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScoreboardCommandsClamp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	snap, err := h.engine.AddScore(ctx, models.SideHome, -3)
	require.NoError(t, err)
	assert.Zero(t, snap.State.Home.Score)

	snap, err = h.engine.AddTimeouts(ctx, models.SideAway, -10)
	require.NoError(t, err)
	assert.Zero(t, snap.State.Away.Timeouts)

	snap, err = h.engine.AdjustShotClock(ctx, 10_000)
	require.NoError(t, err)
	assert.Equal(t, models.ShotClockFullMs, snap.State.ShotClock.RemainingMs)

	snap, err = h.engine.AdjustGameClock(ctx, -10*models.DefaultRegulationMs)
	require.NoError(t, err)
	assert.Zero(t, snap.State.GameClock.RemainingMs)

	snap, err = h.engine.UpdateRules(ctx, models.RuleConfig{Limits: models.FoulLimits{Personal: 0, Technical: 2, Unsportsmanlike: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Rules.Limits.Personal)

	snap, err = h.engine.ApplyPreset(ctx, "nba")
	require.NoError(t, err)
	assert.Equal(t, 6, snap.State.Rules.Limits.Personal)
}

func TestAddPlayerPointsMovesTeamScore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideAway, Number: "3"})
	require.NoError(t, err)

	rec, snap, err := h.engine.AddPlayerPoints(ctx, "away#3", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Points)
	assert.Equal(t, 3, snap.State.Away.Score)

	rec, snap, err = h.engine.AddPlayerPoints(ctx, "away#3", -5)
	require.NoError(t, err)
	assert.Zero(t, rec.Points)
	assert.Zero(t, snap.State.Away.Score)
}

type failingStore struct {
	kvstore.Store
	fail bool
	// bucket is the bucket whose writes fail, kvstore.BucketGame when empty.
	bucket string
}

func (f *failingStore) Put(ctx context.Context, bucket, key string, value []byte) error {
	target := f.bucket
	if target == "" {
		target = kvstore.BucketGame
	}
	if f.fail && bucket == target {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, bucket, key, value)
}

func TestSaveFailureSurfacesButKeepsState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kvstore.NewMemory()}
	h := newHarness(t, store)

	store.fail = true
	snap, err := h.engine.AddScore(ctx, models.SideHome, 2)
	assert.Error(t, err)
	assert.Equal(t, 2, snap.State.Home.Score)
	assert.Equal(t, 2, h.engine.Snapshot().State.Home.Score)
}

func TestRecordFoulRetryAfterFailedPlayerWrite(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kvstore.NewMemory(), bucket: kvstore.BucketPlayers}
	h := newHarness(t, store)

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideHome, Number: "7", Name: "Lin"})
	require.NoError(t, err)

	store.fail = true
	_, err = h.engine.RecordFoul(ctx, "home#7", models.FoulCommon, 1)
	require.Error(t, err)
	assert.Zero(t, h.engine.Snapshot().State.Home.TeamFouls)
	assert.Empty(t, h.events.ofType(events.TypeFoulRecorded))

	store.fail = false
	out, err := h.engine.RecordFoul(ctx, "home#7", models.FoulCommon, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Foul.Player.Fouls.Common)
	assert.Equal(t, 1, out.Foul.TeamFouls)
	assert.Equal(t, 1, out.Snapshot.State.Home.TeamFouls)
	assert.Equal(t, 1, h.engine.Snapshot().State.Home.TeamFouls)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Put(ctx, kvstore.BucketGame, SnapshotKey,
		[]byte(`{"period":3,"home":{"score":41},"shot_clock":{"remaining_ms":99000,"possession":"nobody"}}`)))

	h := newHarness(t, store)
	report, err := h.engine.Load(ctx)
	require.NoError(t, err)
	assert.False(t, report.Fresh)
	assert.Empty(t, report.Resumed)

	st := h.engine.Snapshot().State
	assert.Equal(t, 3, st.Period)
	assert.Equal(t, 41, st.Home.Score)
	assert.Equal(t, models.DefaultTimeouts, st.Home.Timeouts)
	assert.Equal(t, models.DefaultRuleConfig(), st.Rules)
	assert.Equal(t, models.ShotClockFullMs, st.ShotClock.RemainingMs)
	assert.Equal(t, models.SideHome, st.ShotClock.Possession)
	assert.Equal(t, models.DefaultRegulationMs, st.GameClock.TotalMs)
}

func TestLoadFresh(t *testing.T) {
	h := newHarness(t, nil)
	report, err := h.engine.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Fresh)
	_, err = h.store.Get(context.Background(), kvstore.BucketGame, SnapshotKey)
	assert.NoError(t, err)
}

func savedRunningGame(t *testing.T, store kvstore.Store, anchor time.Time, remaining int64) {
	t.Helper()
	st := models.DefaultMatchState()
	st.GameClock.Running = true
	st.GameClock.RemainingMs = remaining
	st.GameClock.LastTickAnchor = &anchor
	raw, err := json.Marshal(st)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), kvstore.BucketGame, SnapshotKey, raw))
}

func TestLoadResumePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("reanchor discards the gap", func(t *testing.T) {
		store := kvstore.NewMemory()
		h := newHarness(t, store)
		savedRunningGame(t, store, h.fc.Now().Add(-5*time.Second), 400_000)

		report, err := h.engine.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, ResumeReanchor, report.Policy)
		assert.Equal(t, []clock.Kind{clock.KindGame}, report.Resumed)
		assert.Equal(t, int64(5000), report.GapMs)
		assert.Equal(t, int64(5000), report.DiscardedMs)

		st := h.engine.Snapshot().State
		assert.True(t, st.GameClock.Running)
		assert.Equal(t, int64(400_000), st.GameClock.RemainingMs)
		assert.Equal(t, h.fc.Now(), *st.GameClock.LastTickAnchor)
		assert.Len(t, h.sched.Active(), 1)
	})

	t.Run("catch up subtracts the gap", func(t *testing.T) {
		store := kvstore.NewMemory()
		h := newHarness(t, store, WithResumePolicy(ResumeCatchUp))
		savedRunningGame(t, store, h.fc.Now().Add(-5*time.Second), 400_000)

		report, err := h.engine.Load(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.DiscardedMs)
		st := h.engine.Snapshot().State
		assert.Equal(t, int64(395_000), st.GameClock.RemainingMs)
		assert.True(t, st.GameClock.Running)
	})

	t.Run("catch up past zero rolls the period", func(t *testing.T) {
		store := kvstore.NewMemory()
		h := newHarness(t, store, WithResumePolicy(ResumeCatchUp))
		savedRunningGame(t, store, h.fc.Now().Add(-time.Minute), 2_000)

		_, err := h.engine.Load(ctx)
		require.NoError(t, err)
		st := h.engine.Snapshot().State
		assert.Equal(t, 2, st.Period)
		assert.False(t, st.GameClock.Running)
		assert.Equal(t, models.DefaultRegulationMs, st.GameClock.RemainingMs)
	})
}

func TestCloseThenLoadResumes(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	h := newHarness(t, store)

	_, err := h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	h.step(250 * time.Millisecond)
	require.NoError(t, h.engine.Close(ctx))
	assert.Empty(t, h.sched.Active())

	next := newHarness(t, store)
	report, err := next.engine.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []clock.Kind{clock.KindGame}, report.Resumed)
	assert.Equal(t, models.DefaultRegulationMs-250, next.engine.Snapshot().State.GameClock.RemainingMs)
}

func TestClearMatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, WithPresets(nil, ""))

	_, err := h.engine.UpsertPlayer(ctx, roster.PlayerIdentity{Team: models.SideHome, Number: "5"})
	require.NoError(t, err)
	_, err = h.engine.StartGameClock(ctx)
	require.NoError(t, err)
	before := h.engine.Snapshot().State.ID

	snap, err := h.engine.ClearMatch(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before, snap.State.ID)
	assert.False(t, snap.State.GameClock.Running)
	assert.Empty(t, h.sched.Active())

	players, err := h.engine.Players(ctx)
	require.NoError(t, err)
	assert.Empty(t, players)
	assert.Len(t, h.events.ofType(events.TypeMatchReset), 1)
}

func TestDefaultPresetAppliesToFreshMatch(t *testing.T) {
	h := newHarness(t, nil, WithPresets(nil, "nba"))
	assert.Equal(t, 6, h.engine.Snapshot().State.Rules.Limits.Personal)
}

func TestRenderHookSeesEveryCommand(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.engine.SetTitle(ctx, "  Finals G7 ")
	require.NoError(t, err)
	snap, err := h.engine.SetReferees(ctx, models.Referees{CrewChief: " Wu "})
	require.NoError(t, err)
	assert.Equal(t, "Finals G7", snap.State.Title)
	assert.Equal(t, "Wu", snap.State.Referees.CrewChief)
	assert.Equal(t, 2, h.renders)

	_, err = h.engine.AppendNote(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, h.engine.Snapshot().State.Notes)
}
