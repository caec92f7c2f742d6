package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/storage"
)

// SaveRepository persists campaign saves in the saves table, one row per
// save name. The full state travels as a JSONB payload; the summary columns
// exist so listings never decode payloads.
//
// Invariant: save names are unique, so saving an existing name overwrites.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Save upserts the state under name. An empty name derives
// "<character>_<timestamp>".
//
// Postcondition: gs.LastUpdated is set to the save time.
func (r *SaveRepository) Save(ctx context.Context, gs *state.GameState, name string) (storage.SaveInfo, error) {
	if gs == nil {
		return storage.SaveInfo{}, storage.ErrNilState
	}

	now := time.Now()
	gs.LastUpdated = now
	if name == "" {
		name = storage.DeriveName(gs, now)
	}

	payload, err := json.Marshal(gs)
	if err != nil {
		return storage.SaveInfo{}, fmt.Errorf("encoding game state: %w", err)
	}

	var level int
	if gs.Character != nil {
		level = gs.Character.Level
	}

	var savedAt time.Time
	err = r.db.QueryRow(ctx, `
		INSERT INTO saves
			(name, slot, character_name, level, location, playtime_minutes, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (name) DO UPDATE SET
			slot             = EXCLUDED.slot,
			character_name   = EXCLUDED.character_name,
			level            = EXCLUDED.level,
			location         = EXCLUDED.location,
			playtime_minutes = EXCLUDED.playtime_minutes,
			payload          = EXCLUDED.payload,
			updated_at       = NOW()
		RETURNING updated_at`,
		name, gs.SaveSlot, storage.CharacterName(gs), level,
		gs.CurrentLocation, gs.PlaytimeMinutes, payload,
	).Scan(&savedAt)
	if err != nil {
		return storage.SaveInfo{}, fmt.Errorf("upserting save: %w", err)
	}

	return storage.SaveInfo{Name: name, Slot: gs.SaveSlot, SavedAt: savedAt}, nil
}

// SaveToSlot upserts the state into a numbered slot. The row name is fixed
// per slot and character, so repeated slot saves overwrite.
func (r *SaveRepository) SaveToSlot(ctx context.Context, gs *state.GameState, slot int) (storage.SaveInfo, error) {
	if gs == nil {
		return storage.SaveInfo{}, storage.ErrNilState
	}
	if !storage.ValidSlot(slot) {
		return storage.SaveInfo{}, fmt.Errorf("%w: %d", storage.ErrInvalidSlot, slot)
	}
	gs.SaveSlot = &slot
	return r.Save(ctx, gs, storage.SlotName(slot, gs))
}

// Load retrieves the save with the given name.
//
// Postcondition: Returns the decoded state or storage.ErrSaveNotFound.
func (r *SaveRepository) Load(ctx context.Context, name string) (*state.GameState, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM saves WHERE name = $1`, name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", storage.ErrSaveNotFound, name)
		}
		return nil, fmt.Errorf("querying save: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(payload, &gs); err != nil {
		return nil, fmt.Errorf("decoding save %q: %w", name, err)
	}
	return &gs, nil
}

// LoadSlot retrieves the most recently written save in the slot.
func (r *SaveRepository) LoadSlot(ctx context.Context, slot int) (*state.GameState, error) {
	if !storage.ValidSlot(slot) {
		return nil, fmt.Errorf("%w: %d", storage.ErrInvalidSlot, slot)
	}

	var name string
	err := r.db.QueryRow(ctx, `
		SELECT name FROM saves WHERE slot = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, slot,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: slot %d is empty", storage.ErrSaveNotFound, slot)
		}
		return nil, fmt.Errorf("querying slot: %w", err)
	}
	return r.Load(ctx, name)
}

// List returns summaries of every save, most recently updated first.
func (r *SaveRepository) List(ctx context.Context) ([]storage.SaveSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, slot, character_name, level, location, playtime_minutes, updated_at
		FROM saves
		ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	return scanSummaries(rows)
}

// ListSlot returns summaries of the saves occupying the slot, most recently
// updated first.
func (r *SaveRepository) ListSlot(ctx context.Context, slot int) ([]storage.SaveSummary, error) {
	if !storage.ValidSlot(slot) {
		return nil, fmt.Errorf("%w: %d", storage.ErrInvalidSlot, slot)
	}

	rows, err := r.db.Query(ctx, `
		SELECT name, slot, character_name, level, location, playtime_minutes, updated_at
		FROM saves
		WHERE slot = $1
		ORDER BY updated_at DESC, id DESC`, slot)
	if err != nil {
		return nil, fmt.Errorf("listing slot saves: %w", err)
	}
	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]storage.SaveSummary, error) {
	defer rows.Close()

	summaries := make([]storage.SaveSummary, 0)
	for rows.Next() {
		var s storage.SaveSummary
		if err := rows.Scan(
			&s.Name, &s.Slot, &s.Character, &s.Level,
			&s.Location, &s.PlaytimeMinutes, &s.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
