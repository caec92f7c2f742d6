package combat

import (
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

var d20 = dice.MustParse("1d20")

// RollInitiative rolls 1d20 + dexterity modifier for every combatant and sets
// the Initiative field.
//
// Precondition: combatants and roller must be non-nil.
func RollInitiative(combatants []*Combatant, roller *dice.Roller) {
	for _, c := range combatants {
		roll := roller.Roll(d20)
		c.Initiative = roll.Total() + character.Modifier(c.Sheet.Abilities.Dexterity)
	}
}

// sortByInitiativeDesc sorts combatants in place, highest initiative first.
// The insertion sort is stable, so ties keep their existing order.
func sortByInitiativeDesc(combatants []*Combatant) {
	n := len(combatants)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && combatants[j].Initiative > combatants[j-1].Initiative; j-- {
			combatants[j], combatants[j-1] = combatants[j-1], combatants[j]
		}
	}
}
