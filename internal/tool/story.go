package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/content"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
)

type generateNPC struct {
	camp *session.Campaign
	gen  *content.Generator
}

// NewGenerateNPC builds the generate_npc handler. Generated NPCs are
// recorded as met on the campaign state.
func NewGenerateNPC(camp *session.Campaign, gen *content.Generator) Handler {
	return &generateNPC{camp: camp, gen: gen}
}

func (h *generateNPC) Spec() Spec {
	return Spec{
		Name:        GenerateNPC,
		Description: "Generate an NPC with personality and dialogue. Use when introducing new characters.",
		Properties: map[string]any{
			"context": map[string]any{
				"type":        "string",
				"description": "Story context for the NPC",
			},
			"role": map[string]any{
				"type":        "string",
				"description": "NPC role (e.g., 'tavern_owner', 'guard', 'merchant')",
			},
		},
		Required: []string{"context", "role"},
	}
}

func (h *generateNPC) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Context string `json:"context"`
		Role    string `json:"role"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil {
		return nil, state.ErrNoState
	}

	npc := h.gen.GenerateNPC(in.Context, in.Role)
	_, known := gs.NPCsMet[npc.Name]
	if err := h.camp.States().MeetNPC(npc); err != nil {
		return nil, err
	}
	npc.Met = true

	payload := map[string]any{"npc": npc}
	if !known {
		_, unlocked, _ := h.camp.Achievements().Advance(achievement.MilestoneNPCsMet, 1)
		if names := unlockedNames(unlocked); len(names) > 0 {
			payload["achievements_unlocked"] = names
		}
	}
	return payload, nil
}

type createQuest struct {
	camp *session.Campaign
	gen  *content.Generator
}

// NewCreateQuest builds the create_quest handler. Created quests start
// active on the campaign state with StartedAt stamped.
func NewCreateQuest(camp *session.Campaign, gen *content.Generator) Handler {
	return &createQuest{camp: camp, gen: gen}
}

func (h *createQuest) Spec() Spec {
	return Spec{
		Name:        CreateQuest,
		Description: "Create a new quest. Use when the player receives a quest.",
		Properties: map[string]any{
			"difficulty": map[string]any{
				"type":        "string",
				"description": "Quest difficulty ('easy', 'medium', 'hard')",
			},
			"theme": map[string]any{
				"type":        "string",
				"description": "Quest theme or template name",
			},
		},
		Required: []string{"difficulty", "theme"},
	}
}

func (h *createQuest) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Difficulty string `json:"difficulty"`
		Theme      string `json:"theme"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	if h.camp.States().Current() == nil {
		return nil, state.ErrNoState
	}

	quest := h.gen.CreateQuest(in.Difficulty, in.Theme)
	now := time.Now()
	quest.StartedAt = &now
	if err := h.camp.States().AddQuest(quest); err != nil {
		return nil, err
	}
	return map[string]any{"quest": quest}, nil
}

type completeQuest struct {
	camp *session.Campaign
}

// NewCompleteQuest builds the complete_quest handler. Completion moves the
// quest off the active list and pays out its rewards to the character.
func NewCompleteQuest(camp *session.Campaign) Handler {
	return &completeQuest{camp: camp}
}

func (h *completeQuest) Spec() Spec {
	return Spec{
		Name:        CompleteQuest,
		Description: "Complete an active quest and award its rewards. Use when the player finishes a quest's objectives.",
		Properties: map[string]any{
			"quest": map[string]any{
				"type":        "string",
				"description": "Quest id or title",
			},
		},
		Required: []string{"quest"},
	}
}

func (h *completeQuest) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Quest string `json:"quest"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}

	quest, err := h.camp.States().CompleteQuest(in.Quest)
	if err != nil {
		return nil, err
	}

	sheet := gs.Character
	var newly []string

	sheet.Gold += quest.Rewards.Gold
	newly = append(newly, creditGoldEarned(h.camp, quest.Rewards.Gold)...)
	sheet.Inventory = append(sheet.Inventory, quest.Rewards.Items...)

	leveledUp, newLevel := sheet.AddExperience(quest.Rewards.Experience)
	if leveledUp {
		newly = append(newly, syncLevelMilestone(h.camp, newLevel)...)
	}

	_, unlocked, _ := h.camp.Achievements().Advance(achievement.MilestoneQuestsCompleted, 1)
	newly = append(newly, unlockedNames(unlocked)...)

	_ = h.camp.States().AddHistory(fmt.Sprintf("Completed quest: %s", quest.Title))

	payload := map[string]any{
		"quest":   quest,
		"rewards": quest.Rewards,
		"gold":    sheet.Gold,
	}
	if leveledUp {
		payload["leveled_up"] = true
		payload["level"] = newLevel
	}
	if len(newly) > 0 {
		payload["achievements_unlocked"] = newly
	}
	return payload, nil
}
