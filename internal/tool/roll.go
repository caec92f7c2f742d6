package tool

import (
	"context"
	"encoding/json"

	"github.com/emberfall/gamemaster/internal/game/dice"
)

type rollDice struct {
	roller *dice.Roller
}

// NewRollDice builds the roll_dice handler over roller.
func NewRollDice(roller *dice.Roller) Handler {
	return &rollDice{roller: roller}
}

func (h *rollDice) Spec() Spec {
	return Spec{
		Name:        RollDice,
		Description: "Roll dice using D&D notation (e.g., '1d20', '2d6+3'). Use this for all random checks, attacks, and skill checks.",
		Properties: map[string]any{
			"notation": map[string]any{
				"type":        "string",
				"description": "Dice notation (e.g., '1d20', '2d6+3', '1d8-1')",
			},
		},
		Required: []string{"notation"},
	}
}

func (h *rollDice) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Notation string `json:"notation"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	expr, err := dice.Parse(in.Notation)
	if err != nil {
		return nil, err
	}
	roll := h.roller.Roll(expr)

	out := map[string]any{
		"notation": in.Notation,
		"count":    expr.Count,
		"sides":    expr.Sides,
		"modifier": expr.Modifier,
		"rolls":    roll.Dice,
		"total":    roll.Total(),
	}
	if len(roll.Dropped) > 0 {
		out["dropped"] = roll.Dropped
	}
	return out, nil
}

// rollPayload is the nested roll object embedded in attack and skill-check
// results.
func rollPayload(r dice.RollResult) map[string]any {
	return map[string]any{
		"notation": r.Expression,
		"rolls":    r.Dice,
		"modifier": r.Modifier,
		"total":    r.Total(),
	}
}
