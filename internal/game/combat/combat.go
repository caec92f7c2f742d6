// Package combat implements the turn-based encounter engine: initiative,
// attack resolution, condition ticking, and victory/defeat detection.
package combat

import (
	"github.com/emberfall/gamemaster/internal/game/character"
)

// Kind distinguishes the player side from the enemy side.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns the wire label for the kind.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Combatant is one participant in an encounter. The ID is generated at
// StartCombat and stays stable for the whole encounter; the display name on
// the sheet is not unique and never used as a key.
type Combatant struct {
	ID         string
	Kind       Kind
	Sheet      *character.Sheet
	Initiative int
}

// IsPlayer reports whether this combatant fights on the player side.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// Name returns the display name from the underlying sheet.
func (c *Combatant) Name() string { return c.Sheet.Name }

// IsDown reports whether the combatant's hit points are exhausted.
func (c *Combatant) IsDown() bool { return c.Sheet.IsDefeated() }
