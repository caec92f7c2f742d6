package enemy

import (
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

var difficultyMultipliers = map[string]float64{
	"easy":   0.8,
	"medium": 1.0,
	"hard":   1.3,
}

// multiplier returns the scaling factor for a difficulty label.
// Unrecognized labels scale at 1.0.
func multiplier(difficulty string) float64 {
	if m, ok := difficultyMultipliers[difficulty]; ok {
		return m
	}
	return 1.0
}

// floorDiv divides rounding toward negative infinity. Level deltas can be
// negative when an encounter scales enemies down.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Factory builds enemy sheets from registered templates.
type Factory struct {
	registry *Registry
	src      dice.Source
}

// NewFactory creates a Factory rolling gold from src.
// Precondition: reg must contain a "goblin" template; DefaultRegistry and
// LoadDirectory both guarantee it.
func NewFactory(reg *Registry, src dice.Source) *Factory {
	return &Factory{registry: reg, src: src}
}

// New builds a combat-ready enemy from the template for enemyType, scaled by
// level and difficulty. Unrecognized types fall back to the goblin template;
// the sheet keeps the requested type label either way.
//
// Scaling: scaledLevel = max(1, floor(level * multiplier)); every ability
// score gains floor((scaledLevel - 1) / 2); max HP =
// floor(hitDie * scaledLevel * multiplier) + constitution modifier; gold is
// 5-15 per scaled level.
func (f *Factory) New(name, enemyType string, level int, difficulty string) *character.Sheet {
	tmpl, ok := f.registry.Get(enemyType)
	if !ok {
		tmpl, _ = f.registry.Get(fallbackType)
	}

	mult := multiplier(difficulty)
	scaledLevel := int(float64(level) * mult)
	if scaledLevel < 1 {
		scaledLevel = 1
	}

	abilities := tmpl.Abilities
	abilities.AddAll((scaledLevel - 1) / 2)

	conMod := character.Modifier(abilities.Constitution)
	maxHP := int(float64(tmpl.HitDie*scaledLevel)*mult) + conMod

	return &character.Sheet{
		Name:       name,
		Type:       enemyType,
		Level:      scaledLevel,
		BaseLevel:  level,
		Difficulty: difficulty,
		HP:         character.HitPoints{Current: maxHP, Max: maxHP},
		ArmorClass: tmpl.ArmorClass,
		Abilities:  abilities,
		Inventory:  []string{},
		Gold:       (f.src.Intn(11) + 5) * scaledLevel,
		HitDie:     tmpl.HitDie,
	}
}

// ScaleForEncounter rescales already-built enemies against the player's level
// at encounter start. Each enemy's ability scores shift by
// floor((scaledLevel - baseLevel) / 2) from their current values, where
// baseLevel is the enemy's level going in, and max HP is recomputed as
// hitDie * scaledLevel + the new constitution modifier. This pass is distinct
// from Factory.New scaling and applies no multiplier to HP.
//
// Postcondition: every sheet's Level equals max(1, floor(playerLevel *
// multiplier)) and its HP is full.
func ScaleForEncounter(enemies []*character.Sheet, playerLevel int, difficulty string) {
	mult := multiplier(difficulty)
	scaledLevel := int(float64(playerLevel) * mult)
	if scaledLevel < 1 {
		scaledLevel = 1
	}

	for _, e := range enemies {
		baseLevel := e.Level
		if baseLevel == 0 {
			baseLevel = 1
		}
		e.Level = scaledLevel
		e.Abilities.AddAll(floorDiv(scaledLevel-baseLevel, 2))

		hitDie := e.HitDie
		if hitDie == 0 {
			hitDie = 8
		}
		maxHP := hitDie*scaledLevel + character.Modifier(e.Abilities.Constitution)
		e.HP = character.HitPoints{Current: maxHP, Max: maxHP}
	}
}
