// Package dice provides dice-expression parsing, rolling, and the
// randomness abstraction used by the encounter engine.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier. Dropped never contributes
// to the total.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // die results that count toward the total
	Dropped    []int  // dice discarded by keep-highest, nil otherwise
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//	"4d6kh3 → [6 4 3] (dropped [1]) +0 = 13"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	head := fmt.Sprintf("%s → %v", r.Expression, r.Dice)
	if len(r.Dropped) > 0 {
		head += fmt.Sprintf(" (dropped %v)", r.Dropped)
	}
	return fmt.Sprintf("%s %+d = %d", head, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
