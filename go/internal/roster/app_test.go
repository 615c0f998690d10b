package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/models"
)

func newTestApp() (*App, *Repository) {
	repo := NewRepository(kvstore.NewMemory())
	return NewApp(repo), repo
}

func TestApp_SaveKeepsCounters(t *testing.T) {
	ctx := context.Background()
	app, repo := newTestApp()

	rec, err := app.Save(ctx, PlayerIdentity{Team: models.SideHome, Number: " 7 ", Name: "Lin"})
	require.NoError(t, err)
	assert.Equal(t, "home#7", rec.ID)

	rec.Fouls.Common = 3
	rec.PersonalTotal = 3
	rec.PlayTimeMs = 90_000
	rec.Alerted.TechnicalLimit = true
	require.NoError(t, repo.Upsert(ctx, rec))

	rec, err = app.Save(ctx, PlayerIdentity{Team: models.SideHome, Number: "7", Name: "Lin Shu-Hao", Position: "G"})
	require.NoError(t, err)
	assert.Equal(t, "Lin Shu-Hao", rec.Name)
	assert.Equal(t, 3, rec.Fouls.Common)
	assert.Equal(t, int64(90_000), rec.PlayTimeMs)
	assert.True(t, rec.Alerted.TechnicalLimit)
}

func TestApp_SaveValidates(t *testing.T) {
	app, _ := newTestApp()
	_, err := app.Save(context.Background(), PlayerIdentity{Team: "bench", Number: "1"})
	assert.ErrorIs(t, err, ErrInvalidPlayer)
	_, err = app.Save(context.Background(), PlayerIdentity{Team: models.SideAway, Number: ""})
	assert.Error(t, err)
}

func TestApp_ListOrdersHomeFirstByNumber(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp()

	_, err := app.Import(ctx, []PlayerIdentity{
		{Team: models.SideAway, Number: "3"},
		{Team: models.SideHome, Number: "23"},
		{Team: models.SideHome, Number: "4"},
		{Team: models.SideAway, Number: "11"},
	})
	require.NoError(t, err)

	players, err := app.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"home#4", "home#23", "away#3", "away#11"}, ids)
}

func TestApp_OnCourtAndRemove(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp()
	_, err := app.Import(ctx, []PlayerIdentity{
		{Team: models.SideHome, Number: "1"},
		{Team: models.SideHome, Number: "2"},
	})
	require.NoError(t, err)

	_, err = app.SetOnCourt(ctx, "home#2", true)
	require.NoError(t, err)
	on, err := app.OnCourt(ctx)
	require.NoError(t, err)
	require.Len(t, on, 1)
	assert.Equal(t, "home#2", on[0].ID)

	_, err = app.SetOnCourt(ctx, "home#9", true)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	require.NoError(t, app.Remove(ctx, "home#2"))
	_, err = app.Get(ctx, "home#2")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	require.NoError(t, app.Clear(ctx))
	players, err := app.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestApp_AddPointsFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp()
	_, err := app.Save(ctx, PlayerIdentity{Team: models.SideAway, Number: "0"})
	require.NoError(t, err)

	rec, err := app.AddPoints(ctx, "away#0", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Points)

	rec, err = app.AddPoints(ctx, "away#0", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Points)
}

type failingUpsert struct {
	*Repository
	failID string
}

func (f failingUpsert) Upsert(ctx context.Context, p models.PlayerRecord) error {
	if p.ID == f.failID {
		return errors.New("disk full")
	}
	return f.Repository.Upsert(ctx, p)
}

func TestApp_AccruePlayTimeSkipsFailures(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemory())
	for _, n := range []string{"4", "5", "6"} {
		p := models.NewPlayerRecord(models.SideHome, n, "")
		p.OnCourt = n != "6"
		require.NoError(t, repo.Upsert(ctx, p))
	}
	app := NewApp(failingUpsert{Repository: repo, failID: "home#4"})

	updated, err := app.AccruePlayTime(ctx, 250)
	assert.Error(t, err)
	assert.Equal(t, 1, updated)

	p5, err := repo.GetByID(ctx, "home#5")
	require.NoError(t, err)
	assert.Equal(t, int64(250), p5.PlayTimeMs)

	p6, err := repo.GetByID(ctx, "home#6")
	require.NoError(t, err)
	assert.Zero(t, p6.PlayTimeMs)

	updated, err = app.AccruePlayTime(ctx, 0)
	assert.NoError(t, err)
	assert.Zero(t, updated)
}
