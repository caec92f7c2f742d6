package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/enemy"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
)

type startCombat struct {
	camp    *session.Campaign
	enemies *enemy.Factory
}

// NewStartCombat builds the start_combat handler. Enemies are built from
// registered templates and scaled against the player at encounter start.
func NewStartCombat(camp *session.Campaign, enemies *enemy.Factory) Handler {
	return &startCombat{camp: camp, enemies: enemies}
}

func (h *startCombat) Spec() Spec {
	return Spec{
		Name:        StartCombat,
		Description: "Start a combat encounter against one or more enemies. Rolls initiative and scales the enemies to the player's level.",
		Properties: map[string]any{
			"enemies": map[string]any{
				"type":        "array",
				"description": "Enemies joining the encounter",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Enemy display name",
						},
						"type": map[string]any{
							"type":        "string",
							"description": "Enemy type (e.g., 'goblin', 'skeleton', 'orc')",
						},
						"level": map[string]any{
							"type":        "integer",
							"description": "Base enemy level (defaults to the player's level)",
						},
					},
					"required": []string{"name", "type"},
				},
			},
			"difficulty": map[string]any{
				"type":        "string",
				"description": "Encounter difficulty ('easy', 'medium', 'hard'; defaults to 'medium')",
			},
		},
		Required: []string{"enemies"},
	}
}

func (h *startCombat) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Enemies []struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Level int    `json:"level"`
		} `json:"enemies"`
		Difficulty string `json:"difficulty"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}
	if len(in.Enemies) == 0 {
		return nil, errors.New("at least one enemy is required")
	}
	if in.Difficulty == "" {
		in.Difficulty = "medium"
	}

	sheets := make([]*character.Sheet, 0, len(in.Enemies))
	for _, e := range in.Enemies {
		level := e.Level
		if level <= 0 {
			level = gs.Character.Level
		}
		sheets = append(sheets, h.enemies.New(e.Name, e.Type, level, in.Difficulty))
	}

	sess := h.camp.Engine().StartCombat(gs.Character, sheets, in.Difficulty)
	_ = h.camp.States().AddHistory(fmt.Sprintf("Combat started: %d enemies, %s difficulty", len(sheets), in.Difficulty))

	order := make([]map[string]any, 0, len(sess.Order))
	for _, c := range sess.Order {
		order = append(order, map[string]any{
			"name":       c.Name(),
			"type":       c.Kind.String(),
			"initiative": c.Initiative,
		})
	}
	return map[string]any{
		"combat_started":   true,
		"round":            sess.Round,
		"initiative_order": order,
		"current_turn":     sess.Order[0].Name(),
	}, nil
}

type nextTurn struct {
	camp *session.Campaign
}

// NewNextTurn builds the next_turn handler. Advancing a turn also ticks the
// active conditions on the combatant whose turn begins.
func NewNextTurn(camp *session.Campaign) Handler {
	return &nextTurn{camp: camp}
}

func (h *nextTurn) Spec() Spec {
	return Spec{
		Name:        NextTurn,
		Description: "Advance combat to the next turn in the initiative order. Conditions on the new combatant tick once.",
		Properties:  map[string]any{},
	}
}

func (h *nextTurn) Invoke(_ context.Context, _ json.RawMessage) (map[string]any, error) {
	engine := h.camp.Engine()
	info, err := engine.NextTurn()
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"round": info.Round, "turn": info.Turn}
	if info.Combatant == nil {
		payload["current_combatant"] = nil
		return payload, nil
	}
	payload["current_combatant"] = info.Combatant.Name()
	payload["type"] = info.Combatant.Kind.String()
	payload["can_act"] = engine.Conditions().CanAct(info.Combatant.ID)

	report := engine.Conditions().Process(info.Combatant.ID, info.Combatant.Sheet)
	if len(report.Effects) > 0 {
		payload["condition_effects"] = report.Effects
		payload["condition_damage"] = report.DamageTaken
	}
	return payload, nil
}

type enemyTurn struct {
	camp *session.Campaign
}

// NewEnemyTurn builds the enemy_turn handler: the named enemy, or the one
// whose turn it is, attacks the player.
func NewEnemyTurn(camp *session.Campaign) Handler {
	return &enemyTurn{camp: camp}
}

func (h *enemyTurn) Spec() Spec {
	return Spec{
		Name:        EnemyTurn,
		Description: "Resolve an enemy's turn: it attacks the player. Use when the initiative order reaches an enemy.",
		Properties: map[string]any{
			"attacker": map[string]any{
				"type":        "string",
				"description": "Enemy name (defaults to the combatant whose turn it is)",
			},
		},
	}
}

func (h *enemyTurn) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Attacker string `json:"attacker"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}
	engine := h.camp.Engine()
	sess := engine.Session()
	if sess == nil || !sess.Active {
		return nil, combat.ErrNoActiveSession
	}

	var attacker *character.Sheet
	if in.Attacker != "" {
		for _, c := range sess.Enemies() {
			if !c.IsDown() && c.Sheet.Name == in.Attacker {
				attacker = c.Sheet
				break
			}
		}
		if attacker == nil {
			return nil, fmt.Errorf("%w: %q", combat.ErrTargetNotFound, in.Attacker)
		}
	} else {
		cur := engine.CurrentCombatant()
		if cur == nil || cur.Kind != combat.KindEnemy {
			return nil, errors.New("attacker required: it is not an enemy's turn")
		}
		attacker = cur.Sheet
	}

	res, err := engine.EnemyTurn(attacker, gs.Character)
	if err != nil {
		return nil, err
	}

	payload := attackPayload(res.AttackResult)
	payload["player_hp"] = res.PlayerHP
	payload["player_defeated"] = res.PlayerDefeated
	return payload, nil
}

type checkCombatStatus struct {
	camp *session.Campaign
}

// NewCheckCombatStatus builds the check_combat_status handler.
func NewCheckCombatStatus(camp *session.Campaign) Handler {
	return &checkCombatStatus{camp: camp}
}

func (h *checkCombatStatus) Spec() Spec {
	return Spec{
		Name:        CheckCombatStatus,
		Description: "Check whether the combat encounter has been won or lost, or is still going.",
		Properties:  map[string]any{},
	}
}

func (h *checkCombatStatus) Invoke(_ context.Context, _ json.RawMessage) (map[string]any, error) {
	engine := h.camp.Engine()
	if engine.Session() == nil {
		return nil, combat.ErrNoActiveSession
	}

	report := engine.CheckStatus()
	if report.Active {
		return map[string]any{
			"combat_active":     true,
			"players_remaining": report.PlayersRemaining,
			"enemies_remaining": report.EnemiesRemaining,
		}, nil
	}
	return map[string]any{
		"combat_active": false,
		"victory":       report.Victory,
		"message":       report.Message,
	}, nil
}

type endCombat struct {
	camp *session.Campaign
}

// NewEndCombat builds the end_combat handler, the manual termination path
// distinct from victory and defeat detection.
func NewEndCombat(camp *session.Campaign) Handler {
	return &endCombat{camp: camp}
}

func (h *endCombat) Spec() Spec {
	return Spec{
		Name:        EndCombat,
		Description: "End the combat encounter, for example when enemies flee or the player retreats.",
		Properties:  map[string]any{},
	}
}

func (h *endCombat) Invoke(_ context.Context, _ json.RawMessage) (map[string]any, error) {
	h.camp.Engine().EndCombat()
	return map[string]any{"combat_ended": true}, nil
}
