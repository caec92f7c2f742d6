// Package character defines the actor sheet shared by player characters and
// enemies, ability-score math, and level progression.
package character

import (
	"fmt"
	"strings"
)

// AbilityScores holds the six ability score values for an actor.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// abilityOrder fixes the iteration order for name lookups, boosts, and
// highest-score ties.
var abilityOrder = []string{
	"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma",
}

// Modifier computes the ability modifier floor((score - 10) / 2), using
// floor-toward-negative-infinity division so a score of 9 yields -1, not 0.
//
// Postcondition: Returns floor((score - 10) / 2).
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ProficiencyBonus returns the level-derived proficiency bonus: level/4 + 1.
//
// Precondition: level >= 1.
func ProficiencyBonus(level int) int {
	return level/4 + 1
}

// Score returns the named ability score, case-insensitively.
// Unknown names return (0, false).
func (a AbilityScores) Score(name string) (int, bool) {
	switch strings.ToLower(name) {
	case "strength":
		return a.Strength, true
	case "dexterity":
		return a.Dexterity, true
	case "constitution":
		return a.Constitution, true
	case "intelligence":
		return a.Intelligence, true
	case "wisdom":
		return a.Wisdom, true
	case "charisma":
		return a.Charisma, true
	}
	return 0, false
}

// Boost raises the named ability by delta. Unknown names are ignored.
func (a *AbilityScores) Boost(name string, delta int) {
	switch strings.ToLower(name) {
	case "strength":
		a.Strength += delta
	case "dexterity":
		a.Dexterity += delta
	case "constitution":
		a.Constitution += delta
	case "intelligence":
		a.Intelligence += delta
	case "wisdom":
		a.Wisdom += delta
	case "charisma":
		a.Charisma += delta
	}
}

// AddAll adds delta to all six ability scores. delta may be negative.
func (a *AbilityScores) AddAll(delta int) {
	a.Strength += delta
	a.Dexterity += delta
	a.Constitution += delta
	a.Intelligence += delta
	a.Wisdom += delta
	a.Charisma += delta
}

// Highest returns the name of the highest ability score. Ties resolve to the
// earlier name in the fixed order strength, dexterity, constitution,
// intelligence, wisdom, charisma.
func (a AbilityScores) Highest() string {
	best := abilityOrder[0]
	bestVal := a.Strength
	for _, name := range abilityOrder[1:] {
		if v, _ := a.Score(name); v > bestVal {
			best, bestVal = name, v
		}
	}
	return best
}

// HitPoints tracks current and maximum hit points.
//
// Invariant: 0 <= Current <= Max.
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Damage reduces Current by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Current >= 0.
func (h *HitPoints) Damage(amount int) {
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
}

// Heal raises Current by amount, capped at Max.
//
// Precondition: amount >= 0.
// Postcondition: Current <= Max.
func (h *HitPoints) Heal(amount int) {
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
}

// SetCurrent assigns Current, clamped to [0, Max].
func (h *HitPoints) SetCurrent(v int) {
	switch {
	case v < 0:
		h.Current = 0
	case v > h.Max:
		h.Current = h.Max
	default:
		h.Current = v
	}
}

// IsDown reports whether Current has reached zero.
func (h HitPoints) IsDown() bool { return h.Current <= 0 }

// Equipment is the actor's equipped weapon and armor.
type Equipment struct {
	Weapon string `json:"weapon"`
	Armor  string `json:"armor"`
}

// SkillSet lists the skills an actor is trained in.
type SkillSet struct {
	Proficient []string `json:"proficient"`
	Expertise  []string `json:"expertise"`
}

// Sheet is the shared actor sheet. Player characters populate Race, Class,
// Experience and the skill/equipment fields; enemies populate Type,
// BaseLevel, and Difficulty instead.
//
// Ownership: a combat session mutates hit points through the sheet for its
// duration; identity and persistence belong to the save-state layer.
type Sheet struct {
	Name       string        `json:"name"`
	Race       string        `json:"race,omitempty"`
	Class      string        `json:"class,omitempty"`
	Type       string        `json:"type,omitempty"`
	Level      int           `json:"level"`
	BaseLevel  int           `json:"base_level,omitempty"`
	Difficulty string        `json:"difficulty,omitempty"`
	Experience int           `json:"experience"`
	HP         HitPoints     `json:"hp"`
	ArmorClass int           `json:"ac"`
	Abilities  AbilityScores `json:"stats"`
	Skills     SkillSet      `json:"skills"`
	Inventory  []string      `json:"inventory"`
	Equipped   Equipment     `json:"equipped"`
	Gold       int           `json:"gold"`
	Background string        `json:"background,omitempty"`
	HitDie     int           `json:"hit_die,omitempty"`
}

// EffectiveAC returns the armor class used by attack resolution: the stored
// value when set, else 10 + dexterity modifier.
func (s *Sheet) EffectiveAC() int {
	if s.ArmorClass != 0 {
		return s.ArmorClass
	}
	return 10 + Modifier(s.Abilities.Dexterity)
}

// IsDefeated reports whether the actor's hit points have reached zero.
func (s *Sheet) IsDefeated() bool { return s.HP.IsDown() }

// IsProficient reports whether skill (case-insensitive) is in the sheet's
// proficient-skill list.
func (s *Sheet) IsProficient(skill string) bool {
	for _, p := range s.Skills.Proficient {
		if strings.EqualFold(p, skill) {
			return true
		}
	}
	return false
}

// Summary returns a formatted sheet for display.
func (s *Sheet) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", s.Name)
	fmt.Fprintf(&b, "Race: %s\n", s.Race)
	fmt.Fprintf(&b, "Class: %s\n", s.Class)
	fmt.Fprintf(&b, "Level: %d\n", s.Level)
	fmt.Fprintf(&b, "HP: %d/%d\n", s.HP.Current, s.HP.Max)
	fmt.Fprintf(&b, "AC: %d\n\n", s.EffectiveAC())
	fmt.Fprintf(&b, "Stats:\n")
	fmt.Fprintf(&b, "  STR: %d  DEX: %d\n", s.Abilities.Strength, s.Abilities.Dexterity)
	fmt.Fprintf(&b, "  CON: %d  INT: %d\n", s.Abilities.Constitution, s.Abilities.Intelligence)
	fmt.Fprintf(&b, "  WIS: %d  CHA: %d\n\n", s.Abilities.Wisdom, s.Abilities.Charisma)
	fmt.Fprintf(&b, "Experience: %d\n", s.Experience)
	fmt.Fprintf(&b, "Gold: %d\n\n", s.Gold)
	fmt.Fprintf(&b, "Equipment: %s\n", strings.Join(s.Inventory, ", "))
	return b.String()
}
