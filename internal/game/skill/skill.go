// Package skill implements ability-based skill checks against a difficulty class.
package skill

import (
	"strings"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

// skillAbilities maps each of the named skills to its governing ability.
var skillAbilities = map[string]string{
	"athletics":       "strength",
	"acrobatics":      "dexterity",
	"stealth":         "dexterity",
	"sleight_of_hand": "dexterity",
	"arcana":          "intelligence",
	"history":         "intelligence",
	"investigation":   "intelligence",
	"nature":          "intelligence",
	"religion":        "intelligence",
	"insight":         "wisdom",
	"medicine":        "wisdom",
	"perception":      "wisdom",
	"survival":        "wisdom",
	"deception":       "charisma",
	"intimidation":    "charisma",
	"performance":     "charisma",
	"persuasion":      "charisma",
}

var d20 = dice.MustParse("1d20")

// Ability returns the governing ability for a skill name, case-insensitively.
// Unknown skills default to "intelligence".
func Ability(skillName string) string {
	if a, ok := skillAbilities[strings.ToLower(skillName)]; ok {
		return a
	}
	return "intelligence"
}

// Result carries the full outcome of one skill check.
//
// Success follows the DC comparison alone. CriticalSuccess and
// CriticalFailure are flagged from the raw die face independently, so a raw
// 20 that still totals under the DC reports Success=false alongside
// CriticalSuccess=true.
type Result struct {
	Skill           string
	Difficulty      int
	Roll            dice.RollResult
	StatModifier    int
	Total           int
	Success         bool
	CriticalSuccess bool
	CriticalFailure bool
}

// Check rolls a d20 skill check for subject against dc.
//
// Stat modifier = ability modifier of the skill's governing ability, plus
// the subject's proficiency bonus when the skill is in its proficient list
// (case-insensitive).
//
// Precondition: src and subject must be non-nil.
// Postcondition: Result.Total == Result.Roll.Total() + Result.StatModifier.
func Check(src dice.Source, subject *character.Sheet, skillName string, dc int) Result {
	score, _ := subject.Abilities.Score(Ability(skillName))
	statMod := character.Modifier(score)
	if subject.IsProficient(skillName) {
		statMod += character.ProficiencyBonus(subject.Level)
	}

	roll := dice.Roll(d20, src)
	raw := roll.Dice[0]
	total := roll.Total() + statMod

	return Result{
		Skill:           skillName,
		Difficulty:      dc,
		Roll:            roll,
		StatModifier:    statMod,
		Total:           total,
		Success:         total >= dc,
		CriticalSuccess: raw == 20,
		CriticalFailure: raw == 1,
	}
}
