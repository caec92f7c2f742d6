// Package tool defines the closed set of game-mechanics tools the game
// master model may call, and the registry that dispatches those calls into
// the game subsystems. Tool results are plain nested data with a boolean
// "success" flag; errors never cross the dispatch boundary.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberfall/gamemaster/internal/game/achievement"
)

// ErrUnknownTool is returned for tool names outside the closed set.
var ErrUnknownTool = errors.New("unknown tool")

// Name identifies one tool in the closed set.
type Name string

// The complete tool set. Registration and dispatch both reject any name
// outside it.
const (
	RollDice            Name = "roll_dice"
	PerformAttack       Name = "perform_attack"
	SkillCheck          Name = "skill_check"
	UpdateCharacterStat Name = "update_character_stat"
	SaveGame            Name = "save_game"
	LoadGame            Name = "load_game"
	GenerateNPC         Name = "generate_npc"
	CreateQuest         Name = "create_quest"
	CompleteQuest       Name = "complete_quest"
	ModifyReputation    Name = "modify_reputation"
	StartCombat         Name = "start_combat"
	NextTurn            Name = "next_turn"
	EnemyTurn           Name = "enemy_turn"
	CheckCombatStatus   Name = "check_combat_status"
	EndCombat           Name = "end_combat"
)

// all fixes the canonical ordering used by All and the registry.
var all = []Name{
	RollDice,
	PerformAttack,
	SkillCheck,
	UpdateCharacterStat,
	SaveGame,
	LoadGame,
	GenerateNPC,
	CreateQuest,
	CompleteQuest,
	ModifyReputation,
	StartCombat,
	NextTurn,
	EnemyTurn,
	CheckCombatStatus,
	EndCombat,
}

// All returns every tool name in canonical order.
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all)
	return out
}

// Valid reports whether n names a tool in the set.
func Valid(n Name) bool {
	for _, known := range all {
		if n == known {
			return true
		}
	}
	return false
}

// Spec describes one tool to the model: a prose description plus the
// JSON-schema shape of its input object.
type Spec struct {
	Name        Name
	Description string
	// Properties is the JSON-schema properties object for the input.
	Properties map[string]any
	// Required lists the property names the model must always supply.
	Required []string
}

// Handler executes one tool. Each handler decodes its own input schema and
// returns the result payload the model sees.
type Handler interface {
	// Spec returns the tool's name, description, and input schema.
	Spec() Spec

	// Invoke runs the tool against the decoded input. The returned map
	// becomes the result payload; a returned error is folded into a
	// failure payload by the registry rather than propagating.
	Invoke(ctx context.Context, input json.RawMessage) (map[string]any, error)
}

// Result is one dispatched tool call, ready to feed back to the model.
//
// Invariant: Body is valid JSON carrying a boolean "success" equal to OK.
type Result struct {
	Tool Name
	OK   bool
	Body json.RawMessage
}

// decode parses a handler input, treating an absent body as empty input.
func decode(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("parsing tool input: %w", err)
	}
	return nil
}

// unlockedNames flattens newly unlocked achievements into their display
// names for tool payloads.
func unlockedNames(unlocked []achievement.Achievement) []string {
	names := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		names = append(names, a.Name)
	}
	return names
}
