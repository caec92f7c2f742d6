package tool

import (
	"context"
	"encoding/json"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/dice"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/skill"
	"github.com/emberfall/gamemaster/internal/game/state"
)

type skillCheck struct {
	camp *session.Campaign
	src  dice.Source
}

// NewSkillCheck builds the skill_check handler. Checks roll for the
// campaign's player character.
func NewSkillCheck(camp *session.Campaign, src dice.Source) Handler {
	return &skillCheck{camp: camp, src: src}
}

func (h *skillCheck) Spec() Spec {
	return Spec{
		Name:        SkillCheck,
		Description: "Perform a skill check for the player character against a difficulty class (DC). Use for perception, stealth, persuasion, etc.",
		Properties: map[string]any{
			"skill": map[string]any{
				"type":        "string",
				"description": "Skill name (e.g., 'perception', 'stealth', 'persuasion')",
			},
			"difficulty": map[string]any{
				"type":        "integer",
				"description": "Difficulty class (DC) to beat",
			},
		},
		Required: []string{"skill", "difficulty"},
	}
}

func (h *skillCheck) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Skill      string `json:"skill"`
		Difficulty int    `json:"difficulty"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}

	res := skill.Check(h.src, gs.Character, in.Skill, in.Difficulty)

	// The check outcome is "passed"; "success" stays the protocol flag.
	payload := map[string]any{
		"skill":            res.Skill,
		"difficulty":       res.Difficulty,
		"roll":             rollPayload(res.Roll),
		"stat_modifier":    res.StatModifier,
		"total":            res.Total,
		"passed":           res.Success,
		"critical_success": res.CriticalSuccess,
		"critical_failure": res.CriticalFailure,
	}
	if res.Success {
		_, unlocked, _ := h.camp.Achievements().Advance(achievement.MilestoneSkillChecksPassed, 1)
		if names := unlockedNames(unlocked); len(names) > 0 {
			payload["achievements_unlocked"] = names
		}
	}
	return payload, nil
}
