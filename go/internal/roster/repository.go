package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/models"
)

// ErrPlayerNotFound is returned when no record exists for a player id
var ErrPlayerNotFound = errors.New("player not found")

// ErrInvalidPlayer is returned when a roster identity fails validation
var ErrInvalidPlayer = errors.New("invalid player")

// Repository persists PlayerRecords in the players bucket of a kvstore.Store
type Repository struct {
	store kvstore.Store
}

// NewRepository creates a roster repository on top of store
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

// GetAll returns every record, ordered by id
func (r *Repository) GetAll(ctx context.Context) ([]models.PlayerRecord, error) {
	entries, err := r.store.List(ctx, kvstore.BucketPlayers)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	out := make([]models.PlayerRecord, 0, len(entries))
	for _, e := range entries {
		var p models.PlayerRecord
		if err := json.Unmarshal(e.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode player %s: %w", e.Key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// GetByID returns one record or ErrPlayerNotFound
func (r *Repository) GetByID(ctx context.Context, id string) (models.PlayerRecord, error) {
	raw, err := r.store.Get(ctx, kvstore.BucketPlayers, id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return models.PlayerRecord{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if err != nil {
		return models.PlayerRecord{}, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	var p models.PlayerRecord
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.PlayerRecord{}, fmt.Errorf("failed to decode player %s: %w", id, err)
	}
	return p, nil
}

// Upsert writes a record under its id
func (r *Repository) Upsert(ctx context.Context, p models.PlayerRecord) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode player %s: %w", p.ID, err)
	}
	if err := r.store.Put(ctx, kvstore.BucketPlayers, p.ID, raw); err != nil {
		return fmt.Errorf("failed to save player %s: %w", p.ID, err)
	}
	return nil
}

// UpsertMany writes several records in one batch
func (r *Repository) UpsertMany(ctx context.Context, players []models.PlayerRecord) error {
	entries := make([]kvstore.Entry, 0, len(players))
	for _, p := range players {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode player %s: %w", p.ID, err)
		}
		entries = append(entries, kvstore.Entry{Key: p.ID, Value: raw})
	}
	if err := r.store.PutMany(ctx, kvstore.BucketPlayers, entries); err != nil {
		return fmt.Errorf("failed to save players: %w", err)
	}
	return nil
}

// Remove deletes a record; removing a missing record is not an error
func (r *Repository) Remove(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, kvstore.BucketPlayers, id); err != nil {
		return fmt.Errorf("failed to remove player %s: %w", id, err)
	}
	return nil
}

// RemoveAll clears the roster
func (r *Repository) RemoveAll(ctx context.Context) error {
	if err := r.store.DeleteAll(ctx, kvstore.BucketPlayers); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}
	return nil
}
