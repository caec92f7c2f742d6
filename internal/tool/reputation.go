package tool

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/emberfall/gamemaster/internal/game/reputation"
	"github.com/emberfall/gamemaster/internal/game/session"
)

type modifyReputation struct {
	camp *session.Campaign
}

// NewModifyReputation builds the modify_reputation handler. Exactly one of
// faction or npc_name selects the target; faction wins when both are set.
func NewModifyReputation(camp *session.Campaign) Handler {
	return &modifyReputation{camp: camp}
}

func (h *modifyReputation) Spec() Spec {
	return Spec{
		Name:        ModifyReputation,
		Description: "Change the player's reputation with a faction or an NPC. Use when the player's actions affect how others see them.",
		Properties: map[string]any{
			"faction": map[string]any{
				"type":        "string",
				"description": "Faction name (use this or npc_name, not both)",
			},
			"npc_name": map[string]any{
				"type":        "string",
				"description": "NPC name (use this or faction, not both)",
			},
			"amount": map[string]any{
				"type":        "integer",
				"description": "Reputation change, positive or negative",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Reason for the change",
			},
		},
		Required: []string{"amount"},
	}
}

func (h *modifyReputation) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Faction string `json:"faction"`
		NPCName string `json:"npc_name"`
		Amount  int    `json:"amount"`
		Reason  string `json:"reason"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	switch {
	case in.Faction != "":
		adj := h.camp.Reputation().AdjustFaction(in.Faction, in.Amount, in.Reason)
		return map[string]any{
			"faction":        adj.Target,
			"old_reputation": adj.Old,
			"new_reputation": adj.Standing,
			"change":         adj.Delta,
			"level":          reputation.Level(adj.Standing),
		}, nil

	case in.NPCName != "":
		adj := h.camp.Reputation().AdjustNPC(in.NPCName, in.Amount, in.Reason)
		return map[string]any{
			"npc":            adj.Target,
			"old_reputation": adj.Old,
			"new_reputation": adj.Standing,
			"change":         adj.Delta,
			"level":          reputation.Level(adj.Standing),
			"reaction":       h.camp.Reputation().NPCReaction(adj.Target),
		}, nil

	default:
		return nil, errors.New("must specify faction or npc_name")
	}
}
