package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mcdev12/courtside/go/internal/models"
)

// RosterRepository defines what the app layer needs from the repository
type RosterRepository interface {
	GetAll(ctx context.Context) ([]models.PlayerRecord, error)
	GetByID(ctx context.Context, id string) (models.PlayerRecord, error)
	Upsert(ctx context.Context, p models.PlayerRecord) error
	UpsertMany(ctx context.Context, players []models.PlayerRecord) error
	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context) error
}

// PlayerIdentity is the editable part of a roster entry
type PlayerIdentity struct {
	Team     models.Side `json:"team"`
	Number   string      `json:"number"`
	Name     string      `json:"name"`
	Position string      `json:"position,omitempty"`
}

// App handles roster business logic
type App struct {
	repo RosterRepository
}

// NewApp creates a new roster App
func NewApp(repo RosterRepository) *App {
	return &App{repo: repo}
}

// Save creates a player or updates the identity of an existing one.
// Foul counts, alert flags, points and play time of an existing record are kept.
func (a *App) Save(ctx context.Context, req PlayerIdentity) (models.PlayerRecord, error) {
	if err := validateIdentity(&req); err != nil {
		return models.PlayerRecord{}, fmt.Errorf("%w: %v", ErrInvalidPlayer, err)
	}

	id := models.PlayerID(req.Team, req.Number)
	rec, err := a.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		rec = models.NewPlayerRecord(req.Team, req.Number, req.Name)
	case err != nil:
		return models.PlayerRecord{}, err
	}
	rec.Name = req.Name
	rec.Position = req.Position

	if err := a.repo.Upsert(ctx, rec); err != nil {
		return models.PlayerRecord{}, err
	}
	return rec, nil
}

// Import saves a batch of identities in one write
func (a *App) Import(ctx context.Context, reqs []PlayerIdentity) ([]models.PlayerRecord, error) {
	existing, err := a.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.PlayerRecord, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	out := make([]models.PlayerRecord, 0, len(reqs))
	for i := range reqs {
		req := reqs[i]
		if err := validateIdentity(&req); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidPlayer, i, err)
		}
		id := models.PlayerID(req.Team, req.Number)
		rec, ok := byID[id]
		if !ok {
			rec = models.NewPlayerRecord(req.Team, req.Number, req.Name)
		}
		rec.Name = req.Name
		rec.Position = req.Position
		byID[id] = rec
		out = append(out, rec)
	}

	if err := a.repo.UpsertMany(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetOnCourt marks a player as on or off the floor
func (a *App) SetOnCourt(ctx context.Context, id string, onCourt bool) (models.PlayerRecord, error) {
	rec, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return models.PlayerRecord{}, err
	}
	rec.OnCourt = onCourt
	if err := a.repo.Upsert(ctx, rec); err != nil {
		return models.PlayerRecord{}, err
	}
	return rec, nil
}

// AddPoints changes a player's points, floored at zero
func (a *App) AddPoints(ctx context.Context, id string, delta int) (models.PlayerRecord, error) {
	rec, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return models.PlayerRecord{}, err
	}
	rec.Points = max(0, rec.Points+delta)
	if err := a.repo.Upsert(ctx, rec); err != nil {
		return models.PlayerRecord{}, err
	}
	return rec, nil
}

// AccruePlayTime adds ms of playing time to every on-court player and saves each record.
// A failing record is skipped and reported in the joined error; it never stops the others.
func (a *App) AccruePlayTime(ctx context.Context, ms int64) (int, error) {
	if ms <= 0 {
		return 0, nil
	}
	players, err := a.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load roster: %w", err)
	}
	var (
		updated int
		errs    []error
	)
	for _, p := range players {
		if !p.OnCourt {
			continue
		}
		p.PlayTimeMs += ms
		if err := a.repo.Upsert(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", p.ID, err))
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

// Get returns one player
func (a *App) Get(ctx context.Context, id string) (models.PlayerRecord, error) {
	return a.repo.GetByID(ctx, id)
}

// List returns the roster with home players first, each team ordered by jersey number
func (a *App) List(ctx context.Context) ([]models.PlayerRecord, error) {
	players, err := a.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	SortPlayers(players)
	return players, nil
}

// OnCourt returns the players currently on the floor
func (a *App) OnCourt(ctx context.Context) ([]models.PlayerRecord, error) {
	players, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	out := players[:0]
	for _, p := range players {
		if p.OnCourt {
			out = append(out, p)
		}
	}
	return out, nil
}

// Remove deletes a player from the roster
func (a *App) Remove(ctx context.Context, id string) error {
	return a.repo.Remove(ctx, id)
}

// Clear deletes every player
func (a *App) Clear(ctx context.Context) error {
	return a.repo.RemoveAll(ctx)
}

// SortPlayers orders home before away, then by jersey number
func SortPlayers(players []models.PlayerRecord) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Team != b.Team {
			return a.Team == models.SideHome
		}
		na, errA := strconv.Atoi(a.Number)
		nb, errB := strconv.Atoi(b.Number)
		if errA == nil && errB == nil && na != nb {
			return na < nb
		}
		return a.Number < b.Number
	})
}

func validateIdentity(req *PlayerIdentity) error {
	req.Number = strings.TrimSpace(req.Number)
	req.Name = strings.TrimSpace(req.Name)
	if !req.Team.Valid() {
		return fmt.Errorf("team must be home or away, got %q", req.Team)
	}
	if req.Number == "" {
		return errors.New("jersey number is required")
	}
	if strings.Contains(req.Number, "#") {
		return fmt.Errorf("jersey number %q may not contain '#'", req.Number)
	}
	return nil
}
