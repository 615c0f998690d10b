package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtside/go/internal/models"
)

func TestNew_EnvelopeShape(t *testing.T) {
	matchID := uuid.New()
	at := time.Date(2025, 3, 1, 19, 30, 0, 0, time.FixedZone("CST", 8*3600))

	e, err := New(matchID, TypeShotClockViolation, at, ShotClockViolationPayload{
		Offender:      models.SideHome,
		NewPossession: models.SideAway,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "shot_clock_violation", env["eventType"])
	assert.Equal(t, matchID.String(), env["matchId"])
	assert.Equal(t, "2025-03-01T11:30:00Z", env["timestamp"])
	assert.NotEmpty(t, env["eventId"])

	var p ShotClockViolationPayload
	require.NoError(t, e.Decode(&p))
	assert.Equal(t, models.SideAway, p.NewPossession)
}

func TestFoulLimitAlertsPayload_Messages(t *testing.T) {
	p := FoulLimitAlertsPayload{Alerts: []models.FoulAlert{
		{Team: models.SideHome, Number: "7", Kind: models.LimitPersonal, Count: 5, Limit: 5},
		{Team: models.SideAway, Number: "12", Name: "Wu", Kind: models.LimitTechnical, Count: 2, Limit: 2},
	}}
	assert.Equal(t, []string{
		"home #7 reached the personal foul limit (5/5)",
		"away #12 Wu reached the technical foul limit (2/2)",
	}, p.Messages())
}
