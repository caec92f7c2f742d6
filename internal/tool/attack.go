package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
)

type performAttack struct {
	camp *session.Campaign
}

// NewPerformAttack builds the perform_attack handler. The attack always
// comes from the campaign's player character and targets an enemy in the
// active encounter by name.
func NewPerformAttack(camp *session.Campaign) Handler {
	return &performAttack{camp: camp}
}

func (h *performAttack) Spec() Spec {
	return Spec{
		Name:        PerformAttack,
		Description: "Attack an enemy as the player character. Resolves the attack roll and damage against the named target in the active combat encounter.",
		Properties: map[string]any{
			"target": map[string]any{
				"type":        "string",
				"description": "Name of the enemy to attack",
			},
			"weapon": map[string]any{
				"type":        "string",
				"description": "Weapon name (optional, defaults to the equipped weapon)",
			},
		},
		Required: []string{"target"},
	}
}

func (h *performAttack) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Target string `json:"target"`
		Weapon string `json:"weapon"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}

	res, err := h.camp.Engine().PlayerAttack(gs.Character, in.Target, in.Weapon)
	if err != nil {
		return nil, err
	}

	payload := attackPayload(res.AttackResult)
	payload["target_defeated"] = res.TargetDefeated

	var newly []string
	if res.Hit && res.Critical {
		_, unlocked, _ := h.camp.Achievements().Advance(achievement.MilestoneCriticalHits, 1)
		newly = append(newly, unlockedNames(unlocked)...)
	}
	if res.TargetDefeated {
		_, unlocked, _ := h.camp.Achievements().Advance(achievement.MilestoneEnemiesDefeated, 1)
		newly = append(newly, unlockedNames(unlocked)...)
		_ = h.camp.States().AddHistory(fmt.Sprintf("%s defeated %s", res.Attacker, res.Defender))
	}
	if len(newly) > 0 {
		payload["achievements_unlocked"] = newly
	}
	return payload, nil
}

// attackPayload renders one attack resolution as plain nested data.
func attackPayload(res combat.AttackResult) map[string]any {
	payload := map[string]any{
		"attacker":     res.Attacker,
		"defender":     res.Defender,
		"weapon":       res.Weapon,
		"attack_roll":  rollPayload(res.AttackRoll),
		"attack_bonus": res.AttackBonus,
		"attack_total": res.AttackTotal,
		"defender_ac":  res.DefenderAC,
		"hit":          res.Hit,
		"critical":     res.Critical,
		"damage":       res.Damage,
	}
	if res.DamageRoll != nil {
		payload["damage_roll"] = rollPayload(*res.DamageRoll)
	}
	return payload
}
