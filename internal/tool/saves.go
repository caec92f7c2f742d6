package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/storage"
)

type saveGame struct {
	camp  *session.Campaign
	store storage.Store
}

// NewSaveGame builds the save_game handler. It checkpoints the campaign
// before writing, so the saved state carries current tracker and encounter
// snapshots.
func NewSaveGame(camp *session.Campaign, store storage.Store) Handler {
	return &saveGame{camp: camp, store: store}
}

func (h *saveGame) Spec() Spec {
	return Spec{
		Name:        SaveGame,
		Description: "Save the current game state. Use after important story beats.",
		Properties: map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Save name (optional; derived from the character and time when omitted)",
			},
			"slot": map[string]any{
				"type":        "integer",
				"description": "Quick-save slot 1-10 (optional; overwrites the character's previous save in the slot)",
			},
		},
	}
}

func (h *saveGame) Invoke(ctx context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Name string `json:"name"`
		Slot int    `json:"slot"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs, err := h.camp.Checkpoint()
	if err != nil {
		return nil, err
	}

	var info storage.SaveInfo
	if in.Slot != 0 {
		info, err = h.store.SaveToSlot(ctx, gs, in.Slot)
	} else {
		info, err = h.store.Save(ctx, gs, in.Name)
	}
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"name":     info.Name,
		"saved_at": info.SavedAt,
		"message":  fmt.Sprintf("Game saved as %q", info.Name),
	}
	if info.Path != "" {
		payload["path"] = info.Path
	}
	if info.Slot != nil {
		payload["slot"] = *info.Slot
	}
	return payload, nil
}

type loadGame struct {
	camp  *session.Campaign
	store storage.Store
}

// NewLoadGame builds the load_game handler. A successful load replaces the
// campaign's live state; the result is a compact summary, not the full
// state document.
func NewLoadGame(camp *session.Campaign, store storage.Store) Handler {
	return &loadGame{camp: camp, store: store}
}

func (h *loadGame) Spec() Spec {
	return Spec{
		Name:        LoadGame,
		Description: "Load a previously saved game by name or quick-save slot.",
		Properties: map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Save name to load",
			},
			"slot": map[string]any{
				"type":        "integer",
				"description": "Quick-save slot 1-10; loads the most recent save in the slot",
			},
		},
	}
}

func (h *loadGame) Invoke(ctx context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Name string `json:"name"`
		Slot int    `json:"slot"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	var (
		gs  *state.GameState
		err error
	)
	switch {
	case in.Name != "":
		gs, err = h.store.Load(ctx, in.Name)
	case in.Slot != 0:
		gs, err = h.store.LoadSlot(ctx, in.Slot)
	default:
		return nil, errors.New("a save name or slot is required")
	}
	if err != nil {
		return nil, err
	}

	h.camp.Restore(gs)

	payload := map[string]any{
		"character":        storage.CharacterName(gs),
		"location":         gs.CurrentLocation,
		"active_quests":    len(gs.ActiveQuests),
		"playtime_minutes": gs.PlaytimeMinutes,
		"message":          fmt.Sprintf("Game loaded: %s at %s", storage.CharacterName(gs), gs.CurrentLocation),
	}
	if gs.Character != nil {
		payload["level"] = gs.Character.Level
	}
	if in.Name != "" {
		payload["name"] = in.Name
	}
	if in.Slot != 0 {
		payload["slot"] = in.Slot
	}
	return payload, nil
}
