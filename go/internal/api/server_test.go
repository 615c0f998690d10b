package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtside/go/internal/clock/clocktest"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/metrics"
	"github.com/mcdev12/courtside/go/internal/models"
)

type testServer struct {
	handler http.Handler
	engine  *match.Engine
	prom    *metrics.Prometheus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	engine, err := match.New(kvstore.NewMemory(),
		match.WithClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC))),
		match.WithScheduler(clocktest.NewManualScheduler()),
	)
	require.NoError(t, err)
	prom := metrics.NewPrometheus()
	return &testServer{
		engine: engine,
		prom:   prom,
		handler: NewRouter(Deps{
			Engine:         engine,
			Buzzer:         []byte("RIFFxxxxWAVE"),
			Metrics:        prom,
			MetricsHandler: prom.Handler(),
		}),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) match.Snapshot {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap match.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestClockCommands(t *testing.T) {
	s := newTestServer(t)

	snap := decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/link", `{"linked":true}`))
	assert.True(t, snap.State.GameClock.Linked)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/start", ""))
	assert.True(t, snap.State.GameClock.Running)
	assert.True(t, snap.State.ShotClock.Running)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/pause", ""))
	assert.False(t, snap.State.ShotClock.Running)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/shot/reset", `{"ms":14000}`))
	assert.Equal(t, models.ShotClockOffensiveReboundMs, snap.State.ShotClock.RemainingMs)
	assert.Equal(t, "14", snap.ShotDisplay)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/shot/reset", ""))
	assert.Equal(t, models.ShotClockFullMs, snap.State.ShotClock.RemainingMs)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/length", `{"minutes":10}`))
	assert.Equal(t, "10:00", snap.GameDisplay)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/link", ""))
	assert.False(t, snap.State.GameClock.Linked)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/game/adjust", `{"delta_ms":-9223372036854775808}`))
	assert.Equal(t, int64(0), snap.State.GameClock.RemainingMs)
}

func TestScoreboardCommands(t *testing.T) {
	s := newTestServer(t)

	snap := decodeSnapshot(t, s.do(t, http.MethodPost, "/api/score", `{"side":"away","delta":3}`))
	assert.Equal(t, 3, snap.State.Away.Score)

	rec := s.do(t, http.MethodPost, "/api/score", `{"side":"bench","delta":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/score", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/period", `{"delta":1}`))
	assert.Equal(t, 2, snap.State.Period)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/rules/preset", `{"name":"nba"}`))
	assert.Equal(t, 6, snap.State.Rules.Limits.Personal)

	rec = s.do(t, http.MethodPost, "/api/rules/preset", `{"name":"euroleague"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	snap = decodeSnapshot(t, s.do(t, http.MethodPost, "/api/notes", `{"text":"Timeout HOME"}`))
	require.Len(t, snap.State.Notes, 1)
	assert.Equal(t, "Timeout HOME", snap.State.Notes[0].Text)
}

func TestPlayerAndFoulFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/players", `{"team":"home","number":"7","name":"Lin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/players/home/7/on-court", `{"on_court":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.PlayerRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.OnCourt)

	rec = s.do(t, http.MethodPost, "/api/foul-events", `{"player_id":"home#7","kind":"shooting_two"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out match.FoulOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.FreeThrows)
	assert.Equal(t, models.SideAway, out.FreeThrows.Side)
	assert.Equal(t, 1, out.Snapshot.State.Home.TeamFouls)

	rec = s.do(t, http.MethodPost, "/api/fouls", `{"player_id":"home#7","category":"elbow","delta":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/fouls", `{"player_id":"away#1","category":"common","delta":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/players", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []models.PlayerRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.Equal(t, 1, players[0].Fouls.Common)

	rec = s.do(t, http.MethodPost, "/api/fouls", `{"player_id":"7","category":"common","delta":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/foul-events", `{"player_id":"bench#7","kind":"defensive"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/players/bench/7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/players/home/7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/players/home/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuzzerAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/buzzer.wav", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))

	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "courtside_http_requests_total")
}
