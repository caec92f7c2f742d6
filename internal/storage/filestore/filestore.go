// Package filestore persists campaign saves as JSON documents in a
// directory, one file per save.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/storage"
)

const saveExt = ".json"

// Store is a file-backed save store.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates the save directory if needed and returns a Store.
//
// Precondition: logger must not be nil.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding the save files.
func (s *Store) Dir() string { return s.dir }

// Save writes the state as an indented JSON file. An empty name derives
// "<character>_<timestamp>"; the .json extension is appended when missing.
//
// Postcondition: gs.LastUpdated is set to the save time.
func (s *Store) Save(_ context.Context, gs *state.GameState, name string) (storage.SaveInfo, error) {
	if gs == nil {
		return storage.SaveInfo{}, storage.ErrNilState
	}

	now := time.Now()
	gs.LastUpdated = now
	if name == "" {
		name = storage.DeriveName(gs, now)
	}
	if !strings.HasSuffix(name, saveExt) {
		name += saveExt
	}

	raw, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return storage.SaveInfo{}, fmt.Errorf("encoding game state: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return storage.SaveInfo{}, fmt.Errorf("writing save file: %w", err)
	}

	s.logger.Info("game saved",
		zap.String("file", name),
		zap.String("character", storage.CharacterName(gs)),
	)
	return storage.SaveInfo{Name: name, Path: path, Slot: gs.SaveSlot, SavedAt: now}, nil
}

// SaveToSlot writes the state into a numbered slot. The file name is fixed
// per slot and character, so repeated slot saves overwrite.
func (s *Store) SaveToSlot(ctx context.Context, gs *state.GameState, slot int) (storage.SaveInfo, error) {
	if gs == nil {
		return storage.SaveInfo{}, storage.ErrNilState
	}
	if !storage.ValidSlot(slot) {
		return storage.SaveInfo{}, fmt.Errorf("%w: %d", storage.ErrInvalidSlot, slot)
	}
	gs.SaveSlot = &slot
	return s.Save(ctx, gs, storage.SlotName(slot, gs))
}

// Load reads and decodes the named save file. The .json extension is
// appended when missing.
func (s *Store) Load(_ context.Context, name string) (*state.GameState, error) {
	if !strings.HasSuffix(name, saveExt) {
		name += saveExt
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", storage.ErrSaveNotFound, name)
		}
		return nil, fmt.Errorf("reading save file: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return nil, fmt.Errorf("decoding save file %q: %w", name, err)
	}

	s.logger.Info("game loaded",
		zap.String("file", name),
		zap.String("character", storage.CharacterName(&gs)),
	)
	return &gs, nil
}

// LoadSlot loads the most recently written save in the slot.
func (s *Store) LoadSlot(ctx context.Context, slot int) (*state.GameState, error) {
	summaries, err := s.ListSlot(ctx, slot)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: slot %d is empty", storage.ErrSaveNotFound, slot)
	}
	return s.Load(ctx, summaries[0].Name)
}

// List summarises every .json file in the save directory, most recently
// updated first. Files that cannot be decoded appear as Unknown entries at
// the end of the listing.
func (s *Store) List(_ context.Context) ([]storage.SaveSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	summaries := make([]storage.SaveSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), saveExt) {
			continue
		}
		summaries = append(summaries, s.summarize(entry.Name()))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})
	return summaries, nil
}

// ListSlot filters the listing down to one slot. Undecodable files carry no
// slot and never match.
func (s *Store) ListSlot(ctx context.Context, slot int) ([]storage.SaveSummary, error) {
	if !storage.ValidSlot(slot) {
		return nil, fmt.Errorf("%w: %d", storage.ErrInvalidSlot, slot)
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]storage.SaveSummary, 0, len(all))
	for _, summary := range all {
		if summary.Slot != nil && *summary.Slot == slot {
			matched = append(matched, summary)
		}
	}
	return matched, nil
}

func (s *Store) summarize(name string) storage.SaveSummary {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err == nil {
		var gs state.GameState
		if err = json.Unmarshal(raw, &gs); err == nil {
			summary := storage.SaveSummary{
				Name:            name,
				Character:       "Unknown",
				Location:        gs.CurrentLocation,
				Slot:            gs.SaveSlot,
				PlaytimeMinutes: gs.PlaytimeMinutes,
				LastUpdated:     gs.LastUpdated,
			}
			if gs.Character != nil {
				summary.Character = gs.Character.Name
				summary.Level = gs.Character.Level
			}
			return summary
		}
	}

	s.logger.Warn("unreadable save file", zap.String("file", name), zap.Error(err))
	return storage.SaveSummary{Name: name, Character: "Unknown", Location: "Unknown"}
}
