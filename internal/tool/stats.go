package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
)

// ErrUnknownStatPath is returned for stat paths outside the closed set.
var ErrUnknownStatPath = errors.New("unknown stat path")

type updateCharacterStat struct {
	camp *session.Campaign
}

// NewUpdateCharacterStat builds the update_character_stat handler. It
// mutates the campaign's player character through a closed set of stat
// paths; arbitrary field writes are rejected.
func NewUpdateCharacterStat(camp *session.Campaign) Handler {
	return &updateCharacterStat{camp: camp}
}

func (h *updateCharacterStat) Spec() Spec {
	return Spec{
		Name:        UpdateCharacterStat,
		Description: "Update one of the player character's tracked stats. Use to apply damage, healing, rewards, experience, and level changes.",
		Properties: map[string]any{
			"stat": map[string]any{
				"type":        "string",
				"description": "Stat path: 'hp.current', 'hp.max', 'gold', 'experience', 'level', 'stats.<ability>' (e.g., 'stats.strength'), 'inventory.add', or 'inventory.remove'",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "New value or adjustment for numeric stats (e.g., '50', '+10', '-5'); the item name for inventory paths",
			},
		},
		Required: []string{"stat", "value"},
	}
}

func (h *updateCharacterStat) Invoke(_ context.Context, input json.RawMessage) (map[string]any, error) {
	var in struct {
		Stat  string `json:"stat"`
		Value string `json:"value"`
	}
	if err := decode(input, &in); err != nil {
		return nil, err
	}

	gs := h.camp.States().Current()
	if gs == nil || gs.Character == nil {
		return nil, state.ErrNoState
	}
	sheet := gs.Character

	path := strings.ToLower(strings.TrimSpace(in.Stat))
	payload := map[string]any{"updated_stat": path, "value": in.Value}

	// Inventory paths take the item name as the value.
	switch path {
	case "inventory.add":
		item := strings.TrimSpace(in.Value)
		if item == "" {
			return nil, errors.New("item name required")
		}
		sheet.Inventory = append(sheet.Inventory, item)
		payload["new_value"] = item
		payload["inventory"] = sheet.Inventory
		return payload, nil

	case "inventory.remove":
		item := strings.TrimSpace(in.Value)
		for i, held := range sheet.Inventory {
			if strings.EqualFold(held, item) {
				sheet.Inventory = append(sheet.Inventory[:i], sheet.Inventory[i+1:]...)
				payload["new_value"] = item
				payload["inventory"] = sheet.Inventory
				return payload, nil
			}
		}
		return nil, fmt.Errorf("item %q not in inventory", item)
	}

	n, isDelta, err := parseAdjustment(in.Value)
	if err != nil {
		return nil, err
	}

	var newly []string
	switch {
	case path == "hp.current":
		switch {
		case !isDelta:
			sheet.HP.SetCurrent(n)
		case n >= 0:
			sheet.HP.Heal(n)
		default:
			sheet.HP.Damage(-n)
		}
		payload["new_value"] = sheet.HP.Current

	case path == "hp.max":
		if isDelta {
			sheet.HP.Max += n
		} else {
			sheet.HP.Max = n
		}
		if sheet.HP.Max < 1 {
			sheet.HP.Max = 1
		}
		sheet.HP.SetCurrent(sheet.HP.Current)
		payload["new_value"] = sheet.HP.Max

	case path == "gold":
		old := sheet.Gold
		if isDelta {
			sheet.Gold += n
		} else {
			sheet.Gold = n
		}
		if sheet.Gold < 0 {
			sheet.Gold = 0
		}
		newly = append(newly, creditGoldEarned(h.camp, sheet.Gold-old)...)
		payload["new_value"] = sheet.Gold

	case path == "experience":
		if !isDelta {
			sheet.Experience = n
			n = 0
		}
		leveledUp, newLevel := sheet.AddExperience(n)
		if sheet.Experience < 0 {
			sheet.Experience = 0
		}
		payload["new_value"] = sheet.Experience
		if leveledUp {
			payload["leveled_up"] = true
			payload["level"] = newLevel
			newly = append(newly, syncLevelMilestone(h.camp, newLevel)...)
		}

	case path == "level":
		old := sheet.Level
		target := n
		if isDelta {
			target = old + n
		}
		if target < 1 {
			target = 1
		}
		if target > character.MaxLevel {
			target = character.MaxLevel
		}
		for sheet.Level < target {
			sheet.LevelUp()
		}
		sheet.Level = target
		payload["new_value"] = sheet.Level
		if sheet.Level > old {
			payload["leveled_up"] = true
			newly = append(newly, syncLevelMilestone(h.camp, sheet.Level)...)
		}

	case strings.HasPrefix(path, "stats."):
		ability := strings.TrimPrefix(path, "stats.")
		old, ok := sheet.Abilities.Score(ability)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatPath, in.Stat)
		}
		if isDelta {
			sheet.Abilities.Boost(ability, n)
		} else {
			sheet.Abilities.Boost(ability, n-old)
		}
		score, _ := sheet.Abilities.Score(ability)
		payload["new_value"] = score

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatPath, in.Stat)
	}

	if len(newly) > 0 {
		payload["achievements_unlocked"] = newly
	}
	return payload, nil
}

// parseAdjustment reads a stat value: a leading '+' or '-' marks a relative
// adjustment, a bare integer an absolute assignment. "-5" is always the
// adjustment minus-five, never the absolute value.
func parseAdjustment(value string) (n int, isDelta bool, err error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, false, errors.New("empty stat value")
	}
	isDelta = v[0] == '+' || v[0] == '-'
	n, convErr := strconv.Atoi(v)
	if convErr != nil {
		return 0, false, fmt.Errorf("invalid stat value %q", value)
	}
	return n, isDelta, nil
}

// syncLevelMilestone raises the level milestone counter up to the
// character's level so "reach level N" achievements unlock at level N.
func syncLevelMilestone(camp *session.Campaign, level int) []string {
	current := camp.Achievements().Milestone(achievement.MilestoneLevelsGained)
	if level <= current {
		return nil
	}
	_, unlocked, _ := camp.Achievements().Advance(achievement.MilestoneLevelsGained, level-current)
	return unlockedNames(unlocked)
}

// creditGoldEarned advances the cumulative gold-earned milestone. Spending
// and losses never reduce it.
func creditGoldEarned(camp *session.Campaign, earned int) []string {
	if earned <= 0 {
		return nil
	}
	_, unlocked, _ := camp.Achievements().Advance(achievement.MilestoneGoldEarned, earned)
	return unlockedNames(unlocked)
}
