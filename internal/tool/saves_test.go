package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/storage"
	"github.com/emberfall/gamemaster/internal/storage/filestore"
	"github.com/emberfall/gamemaster/internal/tool"
)

func newStore(t *testing.T) *filestore.Store {
	t.Helper()
	store, err := filestore.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveGame_WritesCheckpointedState(t *testing.T) {
	f := newFixture()
	f.begin()
	f.camp.Reputation().AdjustFaction("guards", 20, "helped at the gate")
	store := newStore(t)

	h := tool.NewSaveGame(f.camp, store)
	payload := invoke(t, h, `{"name":"alpha"}`)

	assert.Equal(t, "alpha.json", payload["name"])
	assert.Contains(t, payload["message"], "alpha.json")
	assert.NotContains(t, payload, "slot")

	// The file carries the tracker snapshot, proving the checkpoint ran.
	loaded, err := store.Load(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.Reputation.Factions["guards"])
	assert.Equal(t, "Aria", loaded.Character.Name)
}

func TestSaveGame_SlotRoundTrip(t *testing.T) {
	f := newFixture()
	f.begin()
	store := newStore(t)

	h := tool.NewSaveGame(f.camp, store)
	payload := invoke(t, h, `{"slot":3}`)

	assert.Equal(t, 3, payload["slot"])

	loaded, err := store.LoadSlot(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Aria", loaded.Character.Name)
}

func TestSaveGame_RequiresState(t *testing.T) {
	f := newFixture()
	h := tool.NewSaveGame(f.camp, newStore(t))

	_, err := h.Invoke(context.Background(), json.RawMessage(`{"name":"alpha"}`))
	assert.ErrorIs(t, err, state.ErrNoState)
}

func TestSaveGame_InvalidSlotFails(t *testing.T) {
	f := newFixture()
	f.begin()
	h := tool.NewSaveGame(f.camp, newStore(t))

	_, err := h.Invoke(context.Background(), json.RawMessage(`{"slot":99}`))
	assert.ErrorIs(t, err, storage.ErrInvalidSlot)
}

func TestLoadGame_RestoresCampaign(t *testing.T) {
	store := newStore(t)

	saved := newFixture()
	gs := saved.begin()
	gs.Character.Gold = 75
	saved.camp.Reputation().AdjustFaction("guards", 40, "patrol duty")
	invoke(t, tool.NewSaveGame(saved.camp, store), `{"name":"alpha"}`)

	f := newFixture()
	h := tool.NewLoadGame(f.camp, store)
	payload := invoke(t, h, `{"name":"alpha"}`)

	assert.Equal(t, "Aria", payload["character"])
	assert.Equal(t, 1, payload["level"])
	assert.Equal(t, "unknown", payload["location"])
	assert.Equal(t, 0, payload["active_quests"])
	assert.Equal(t, "Game loaded: Aria at unknown", payload["message"])
	assert.Equal(t, "alpha", payload["name"])

	require.NotNil(t, f.camp.States().Current())
	assert.Equal(t, 75, f.camp.States().Current().Character.Gold)
	assert.Equal(t, 40, f.camp.Reputation().Faction("guards"))
}

func TestLoadGame_BySlot(t *testing.T) {
	store := newStore(t)

	saved := newFixture()
	saved.begin()
	invoke(t, tool.NewSaveGame(saved.camp, store), `{"slot":2}`)

	f := newFixture()
	payload := invoke(t, tool.NewLoadGame(f.camp, store), `{"slot":2}`)

	assert.Equal(t, "Aria", payload["character"])
	assert.Equal(t, 2, payload["slot"])
}

func TestLoadGame_RequiresNameOrSlot(t *testing.T) {
	f := newFixture()
	h := tool.NewLoadGame(f.camp, newStore(t))

	_, err := h.Invoke(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name or slot")
}

func TestLoadGame_MissingSaveFails(t *testing.T) {
	f := newFixture()
	h := tool.NewLoadGame(f.camp, newStore(t))

	_, err := h.Invoke(context.Background(), json.RawMessage(`{"name":"ghost"}`))
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}
