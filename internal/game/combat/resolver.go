package combat

import (
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

var (
	damageDie    = dice.MustParse("1d8")
	criticalDice = dice.MustParse("2d8")
)

// AttackResult carries every intermediate of one attack resolution, not just
// the totals, so callers can narrate or audit the math.
type AttackResult struct {
	Attacker    string
	Defender    string
	Weapon      string
	AttackRoll  dice.RollResult
	AttackBonus int
	AttackTotal int
	DefenderAC  int
	Hit         bool
	Critical    bool
	Damage      int
	DamageRoll  *dice.RollResult // nil when the attack misses
}

// ResolveAttack rolls one attack of attacker versus defender.
//
// Attack bonus = max(strength mod, dexterity mod) + attacker level. Hit iff
// 1d20 + bonus meets the defender's effective AC. Critical iff the raw d20
// face is 20; a critical never turns a miss into a hit, it only changes the
// damage formula. Hit damage is 1d8 + the attack stat modifier; a critical
// hit recomputes it as 2d8 + twice the modifier rather than doubling the
// first roll. Misses roll no damage dice at all.
//
// Precondition: roller, attacker, and defender must be non-nil.
func ResolveAttack(roller *dice.Roller, attacker, defender *character.Sheet, weapon string) AttackResult {
	strMod := character.Modifier(attacker.Abilities.Strength)
	dexMod := character.Modifier(attacker.Abilities.Dexterity)
	attackMod := strMod
	if dexMod > attackMod {
		attackMod = dexMod
	}
	level := attacker.Level
	if level == 0 {
		level = 1
	}
	attackBonus := attackMod + level

	attackRoll := roller.Roll(d20)
	attackTotal := attackRoll.Total() + attackBonus

	result := AttackResult{
		Attacker:    attacker.Name,
		Defender:    defender.Name,
		Weapon:      weaponName(attacker, weapon),
		AttackRoll:  attackRoll,
		AttackBonus: attackBonus,
		AttackTotal: attackTotal,
		DefenderAC:  defender.EffectiveAC(),
		Hit:         attackTotal >= defender.EffectiveAC(),
		Critical:    attackRoll.Dice[0] == 20,
	}
	if !result.Hit {
		return result
	}

	damageRoll := roller.Roll(damageDie)
	result.Damage = damageRoll.Total() + attackMod
	if result.Critical {
		damageRoll = roller.Roll(criticalDice)
		result.Damage = damageRoll.Total() + attackMod*2
	}
	result.DamageRoll = &damageRoll
	return result
}

// weaponName picks the explicit weapon, falling back to the attacker's
// equipped weapon, then to unarmed.
func weaponName(attacker *character.Sheet, weapon string) string {
	if weapon != "" {
		return weapon
	}
	if attacker.Equipped.Weapon != "" {
		return attacker.Equipped.Weapon
	}
	return "unarmed"
}
