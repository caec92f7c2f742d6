package filestore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/storage"
	"github.com/emberfall/gamemaster/internal/storage/filestore"
)

func newStore(t *testing.T) *filestore.Store {
	t.Helper()
	s, err := filestore.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func newGameState(name string, level int) *state.GameState {
	m := state.NewManager()
	return m.NewInitialState(&character.Sheet{
		Name:  name,
		Class: "fighter",
		Level: level,
		HP:    character.HitPoints{Current: 10, Max: 10},
	})
}

// writeRaw drops a save file directly into the store directory, bypassing
// Save, so tests can control LastUpdated exactly.
func writeRaw(t *testing.T, s *filestore.Store, name string, gs *state.GameState) {
	t.Helper()
	raw, err := json.Marshal(gs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name), raw, 0o644))
}

func TestSave_DerivesNameFromCharacterAndTime(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, newGameState("Aria", 1), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.Name, "Aria_"), "name %q", info.Name)
	assert.True(t, strings.HasSuffix(info.Name, ".json"), "name %q", info.Name)
	assert.WithinDuration(t, time.Now(), info.SavedAt, time.Minute)

	_, err = os.Stat(info.Path)
	assert.NoError(t, err)
}

func TestSave_AppendsExtension(t *testing.T) {
	s := newStore(t)

	info, err := s.Save(context.Background(), newGameState("Aria", 1), "my_save")
	require.NoError(t, err)
	assert.Equal(t, "my_save.json", info.Name)
}

func TestSave_NilStateRejected(t *testing.T) {
	s := newStore(t)

	_, err := s.Save(context.Background(), nil, "anything")
	assert.ErrorIs(t, err, storage.ErrNilState)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	gs := newGameState("Aria", 3)
	gs.CurrentLocation = "The Rusty Tankard"
	gs.StoryContext = "hunting the bandit chief"
	gs.SessionHistory = append(gs.SessionHistory, state.HistoryEntry{
		Timestamp: time.Now(), Entry: "entered the tavern",
	})

	_, err := s.Save(ctx, gs, "roundtrip")
	require.NoError(t, err)

	loaded, err := s.Load(ctx, "roundtrip")
	require.NoError(t, err)

	assert.Equal(t, "Aria", loaded.Character.Name)
	assert.Equal(t, 3, loaded.Character.Level)
	assert.Equal(t, "The Rusty Tankard", loaded.CurrentLocation)
	assert.Equal(t, "hunting the bandit chief", loaded.StoryContext)
	require.Len(t, loaded.SessionHistory, 1)
	assert.Equal(t, "entered the tavern", loaded.SessionHistory[0].Entry)
	assert.False(t, loaded.LastUpdated.IsZero())
}

func TestLoad_MissingFile(t *testing.T) {
	s := newStore(t)

	_, err := s.Load(context.Background(), "never_saved")
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestSaveToSlot_NamesFileAndStampsSlot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	gs := newGameState("Aria", 2)
	info, err := s.SaveToSlot(ctx, gs, 3)
	require.NoError(t, err)

	assert.Equal(t, "save_slot_03_Aria.json", info.Name)
	require.NotNil(t, gs.SaveSlot)
	assert.Equal(t, 3, *gs.SaveSlot)

	loaded, err := s.Load(ctx, info.Name)
	require.NoError(t, err)
	require.NotNil(t, loaded.SaveSlot)
	assert.Equal(t, 3, *loaded.SaveSlot)
}

func TestSaveToSlot_RejectsOutOfRangeSlots(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	gs := newGameState("Aria", 1)

	for _, slot := range []int{0, -1, 11} {
		_, err := s.SaveToSlot(ctx, gs, slot)
		assert.ErrorIs(t, err, storage.ErrInvalidSlot, "slot %d", slot)
	}
}

func TestSaveToSlot_SameSlotOverwrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	gs := newGameState("Aria", 1)
	_, err := s.SaveToSlot(ctx, gs, 5)
	require.NoError(t, err)

	gs.Character.Level = 4
	_, err = s.SaveToSlot(ctx, gs, 5)
	require.NoError(t, err)

	summaries, err := s.ListSlot(ctx, 5)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].Level)
}

func TestList_SortsMostRecentFirst(t *testing.T) {
	s := newStore(t)

	older := newGameState("Old Hand", 9)
	older.LastUpdated = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	writeRaw(t, s, "older.json", older)

	newer := newGameState("Newcomer", 1)
	newer.LastUpdated = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	writeRaw(t, s, "newer.json", newer)

	summaries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer.json", summaries[0].Name)
	assert.Equal(t, "Newcomer", summaries[0].Character)
	assert.Equal(t, "older.json", summaries[1].Name)
}

func TestList_UnreadableFileBecomesUnknownEntry(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, newGameState("Aria", 1), "good")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "corrupt.json"), []byte("{not json"), 0o644))

	summaries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// The undecodable file sorts last and reads as Unknown.
	assert.Equal(t, "good.json", summaries[0].Name)
	assert.Equal(t, "corrupt.json", summaries[1].Name)
	assert.Equal(t, "Unknown", summaries[1].Character)
	assert.True(t, summaries[1].LastUpdated.IsZero())

	// It carries no slot, so slot listings never include it.
	for slot := storage.MinSlot; slot <= storage.MaxSlot; slot++ {
		matched, err := s.ListSlot(ctx, slot)
		require.NoError(t, err)
		assert.Empty(t, matched, "slot %d", slot)
	}
}

func TestList_IgnoresNonSaveFiles(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("not a save"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "backup.json"), 0o755))

	summaries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestLoadSlot_PicksMostRecentInSlot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	slot := 7

	older := newGameState("Aria", 1)
	older.SaveSlot = &slot
	older.LastUpdated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	writeRaw(t, s, "save_slot_07_Aria.json", older)

	newer := newGameState("Brynn", 5)
	newer.SaveSlot = &slot
	newer.LastUpdated = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	writeRaw(t, s, "save_slot_07_Brynn.json", newer)

	loaded, err := s.LoadSlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, "Brynn", loaded.Character.Name)
}

func TestLoadSlot_EmptySlot(t *testing.T) {
	s := newStore(t)

	_, err := s.LoadSlot(context.Background(), 2)
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestLoadSlot_InvalidSlot(t *testing.T) {
	s := newStore(t)

	_, err := s.LoadSlot(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrInvalidSlot)
}
