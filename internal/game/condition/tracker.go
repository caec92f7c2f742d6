package condition

import (
	"fmt"

	"github.com/emberfall/gamemaster/internal/game/character"
)

// ActiveCondition is one applied instance of a condition on a combatant.
type ActiveCondition struct {
	Def       *Definition
	Remaining int // rounds left; removed once it reaches 0
}

// ActiveState is the persistence form of an ActiveCondition.
type ActiveState struct {
	ID        string `json:"id"`
	Remaining int    `json:"remaining"`
}

// Tracker holds the active conditions of every combatant in one encounter,
// keyed by combatant ID. Display names are not identifiers; two combatants
// with the same name never share conditions.
// It is not safe for concurrent use; the caller must serialise access.
type Tracker struct {
	registry *Registry
	active   map[string][]*ActiveCondition
}

// NewTracker creates an empty Tracker backed by reg.
// Precondition: reg must not be nil.
func NewTracker(reg *Registry) *Tracker {
	return &Tracker{
		registry: reg,
		active:   make(map[string][]*ActiveCondition),
	}
}

// Apply puts the condition on the combatant. If an instance of the same
// condition is already active, its remaining duration is refreshed to the new
// value instead of stacking a duplicate. A duration of 0 or less selects the
// definition's default.
//
// Postcondition: exactly one instance of conditionID is active for the
// combatant, with Remaining set to the effective duration.
func (t *Tracker) Apply(combatantID, conditionID string, duration int) (*ActiveCondition, error) {
	def, ok := t.registry.Get(conditionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, conditionID)
	}

	effective := duration
	if effective <= 0 {
		effective = def.Duration
	}
	if effective <= 0 {
		effective = 1
	}

	for _, ac := range t.active[combatantID] {
		if ac.Def.ID == def.ID {
			ac.Remaining = effective
			return ac, nil
		}
	}

	ac := &ActiveCondition{Def: def, Remaining: effective}
	t.active[combatantID] = append(t.active[combatantID], ac)
	return ac, nil
}

// Remove deletes the condition from the combatant. Not-present is a no-op.
func (t *Tracker) Remove(combatantID, conditionID string) {
	instances := t.active[combatantID]
	kept := instances[:0]
	for _, ac := range instances {
		if ac.Def.ID != conditionID {
			kept = append(kept, ac)
		}
	}
	if len(kept) == 0 {
		delete(t.active, combatantID)
		return
	}
	t.active[combatantID] = kept
}

// Report summarises one Process tick for a combatant.
type Report struct {
	Effects     []string
	DamageTaken int
	Removed     []string
}

// Process ticks every active condition on the combatant once: durations drop
// by 1, per-turn damage accumulates (a condition still deals damage on the
// tick that expires it), and instances at 0 are removed. The accumulated
// damage is applied to the sheet's current hit points, floored at 0.
//
// Postcondition: no instance with Remaining <= 0 survives the call.
func (t *Tracker) Process(combatantID string, sheet *character.Sheet) Report {
	instances, ok := t.active[combatantID]
	if !ok {
		return Report{Effects: []string{}, Removed: []string{}}
	}

	report := Report{Effects: []string{}, Removed: []string{}}
	for _, ac := range instances {
		ac.Remaining--
		if ac.Def.DamagePerTurn > 0 {
			report.DamageTaken += ac.Def.DamagePerTurn
			report.Effects = append(report.Effects, fmt.Sprintf("%s: %d damage", ac.Def.ID, ac.Def.DamagePerTurn))
		}
		if ac.Remaining <= 0 {
			report.Removed = append(report.Removed, ac.Def.ID)
		}
	}

	for _, id := range report.Removed {
		t.Remove(combatantID, id)
		report.Effects = append(report.Effects, fmt.Sprintf("%s expired", id))
	}

	if report.DamageTaken > 0 && sheet != nil {
		sheet.HP.Damage(report.DamageTaken)
	}
	return report
}

// ActiveFor returns the combatant's active conditions in application order.
// The slice is a new allocation; the pointed-to instances are shared.
func (t *Tracker) ActiveFor(combatantID string) []*ActiveCondition {
	instances := t.active[combatantID]
	out := make([]*ActiveCondition, len(instances))
	copy(out, instances)
	return out
}

// Has reports whether the combatant currently has the condition.
func (t *Tracker) Has(combatantID, conditionID string) bool {
	for _, ac := range t.active[combatantID] {
		if ac.Def.ID == conditionID {
			return true
		}
	}
	return false
}

// Reset drops every active condition for every combatant.
func (t *Tracker) Reset() {
	t.active = make(map[string][]*ActiveCondition)
}

// Snapshot returns the tracker contents as plain data for persistence.
func (t *Tracker) Snapshot() map[string][]ActiveState {
	out := make(map[string][]ActiveState, len(t.active))
	for id, instances := range t.active {
		states := make([]ActiveState, 0, len(instances))
		for _, ac := range instances {
			states = append(states, ActiveState{ID: ac.Def.ID, Remaining: ac.Remaining})
		}
		out[id] = states
	}
	return out
}

// Restore replaces the tracker contents from a Snapshot.
// Precondition: every condition id in snap must be registered.
func (t *Tracker) Restore(snap map[string][]ActiveState) error {
	restored := make(map[string][]*ActiveCondition, len(snap))
	for combatantID, states := range snap {
		for _, st := range states {
			def, ok := t.registry.Get(st.ID)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownCondition, st.ID)
			}
			restored[combatantID] = append(restored[combatantID], &ActiveCondition{
				Def:       def,
				Remaining: st.Remaining,
			})
		}
	}
	t.active = restored
	return nil
}
