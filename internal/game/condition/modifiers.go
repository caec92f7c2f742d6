package condition

// acAffectedPenalty is the flat AC reduction while any AC-affecting condition
// is active. It is applied once, never once per condition.
const acAffectedPenalty = 2

// Modifiers is the net effect of a combatant's active conditions on combat math.
type Modifiers struct {
	AttackBonus   int `json:"attack_bonus"`   // >= 0
	AttackPenalty int `json:"attack_penalty"` // <= 0
	ACModifier    int `json:"ac_modifier"`    // 0 or -2
}

// Net returns the combined attack modifier.
func (m Modifiers) Net() int {
	return m.AttackBonus + m.AttackPenalty
}

// Modifiers aggregates attack and AC adjustments across the combatant's active
// conditions. Attack bonuses and penalties sum per instance; the AC modifier
// is a fixed -2 whenever at least one active condition carries an AC penalty,
// regardless of how many do.
func (t *Tracker) Modifiers(combatantID string) Modifiers {
	var mods Modifiers
	acAffected := false
	for _, ac := range t.active[combatantID] {
		mods.AttackBonus += ac.Def.AttackBonus
		mods.AttackPenalty -= ac.Def.AttackPenalty
		if ac.Def.ACPenalty > 0 {
			acAffected = true
		}
	}
	if acAffected {
		mods.ACModifier = -acAffectedPenalty
	}
	return mods
}

// CanAct reports whether the combatant is free of action-disabling conditions.
func (t *Tracker) CanAct(combatantID string) bool {
	for _, ac := range t.active[combatantID] {
		if ac.Def.DisablesActions {
			return false
		}
	}
	return true
}
