// Package reputation tracks the player's standing with factions and
// individual NPCs on a -100..100 scale, with a ledger of every change.
package reputation

// Standing bounds. Adjustments clamp into this range.
const (
	MinStanding = -100
	MaxStanding = 100
)

// Change is one ledger entry recording an applied adjustment.
type Change struct {
	Kind     string `json:"type"` // "faction" or "npc"
	Target   string `json:"target"`
	Delta    int    `json:"change"`
	Standing int    `json:"new_reputation"`
	Reason   string `json:"reason"`
}

// State is the serializable form of a Tracker.
type State struct {
	Factions map[string]int `json:"faction_reputations"`
	NPCs     map[string]int `json:"npc_reputations"`
	History  []Change       `json:"reputation_history"`
}

// Tracker holds faction and NPC standings. Unknown targets read as zero and
// spring into existence on first adjustment.
type Tracker struct {
	factions map[string]int
	npcs     map[string]int
	history  []Change
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		factions: make(map[string]int),
		npcs:     make(map[string]int),
	}
}

// Faction returns the standing with the named faction, zero if never met.
func (t *Tracker) Faction(name string) int { return t.factions[name] }

// NPC returns the standing with the named NPC, zero if never met.
func (t *Tracker) NPC(name string) int { return t.npcs[name] }

// Adjustment reports one applied standing change.
type Adjustment struct {
	Target   string `json:"target"`
	Old      int    `json:"old_reputation"`
	Standing int    `json:"new_reputation"`
	Delta    int    `json:"change"`
}

// AdjustFaction applies delta to the faction's standing, clamped to
// [MinStanding, MaxStanding], and appends a ledger entry.
//
// Postcondition: Faction(name) is within the standing bounds.
func (t *Tracker) AdjustFaction(name string, delta int, reason string) Adjustment {
	return t.adjust("faction", t.factions, name, delta, reason)
}

// AdjustNPC applies delta to the NPC's standing, clamped to
// [MinStanding, MaxStanding], and appends a ledger entry.
//
// Postcondition: NPC(name) is within the standing bounds.
func (t *Tracker) AdjustNPC(name string, delta int, reason string) Adjustment {
	return t.adjust("npc", t.npcs, name, delta, reason)
}

func (t *Tracker) adjust(kind string, standings map[string]int, name string, delta int, reason string) Adjustment {
	old := standings[name]
	next := clamp(old + delta)
	standings[name] = next

	t.history = append(t.history, Change{
		Kind:     kind,
		Target:   name,
		Delta:    delta,
		Standing: next,
		Reason:   reason,
	})
	return Adjustment{Target: name, Old: old, Standing: next, Delta: delta}
}

func clamp(v int) int {
	if v < MinStanding {
		return MinStanding
	}
	if v > MaxStanding {
		return MaxStanding
	}
	return v
}

// History returns a copy of the ledger in application order.
func (t *Tracker) History() []Change {
	out := make([]Change, len(t.history))
	copy(out, t.history)
	return out
}

// Level names the standing band for a reputation value. Note that a fresh
// standing of zero reads as Unfriendly; Neutral starts at 20.
func Level(standing int) string {
	switch {
	case standing >= 80:
		return "Revered"
	case standing >= 50:
		return "Friendly"
	case standing >= 20:
		return "Neutral"
	case standing >= -20:
		return "Unfriendly"
	case standing >= -50:
		return "Hostile"
	default:
		return "Hated"
	}
}

// Reaction describes how an NPC treats the player at a standing level.
type Reaction struct {
	Standing          int     `json:"reputation"`
	Level             string  `json:"level"`
	DialogueModifier  int     `json:"dialogue_modifier"`
	WillingnessToHelp float64 `json:"willingness_to_help"`
	Discount          float64 `json:"discount"`
	Description       string  `json:"description"`
}

var reactionByLevel = map[string]Reaction{
	"Revered": {
		DialogueModifier:  10,
		WillingnessToHelp: 1.0,
		Discount:          0.5,
		Description:       "They trust you completely and will go out of their way to help.",
	},
	"Friendly": {
		DialogueModifier:  5,
		WillingnessToHelp: 0.8,
		Discount:          0.2,
		Description:       "They like you and are generally helpful.",
	},
	"Neutral": {
		WillingnessToHelp: 0.5,
		Description:       "They don't know you well, neutral attitude.",
	},
	"Unfriendly": {
		DialogueModifier:  -5,
		WillingnessToHelp: 0.3,
		Description:       "They're wary of you and less helpful.",
	},
	"Hostile": {
		DialogueModifier:  -10,
		WillingnessToHelp: 0.1,
		Description:       "They dislike you and may refuse to help.",
	},
	"Hated": {
		DialogueModifier:  -20,
		Description:       "They despise you and may attack on sight.",
	},
}

// NPCReaction returns the reaction the named NPC has toward the player,
// derived from the current standing.
func (t *Tracker) NPCReaction(name string) Reaction {
	standing := t.NPC(name)
	level := Level(standing)
	reaction := reactionByLevel[level]
	reaction.Standing = standing
	reaction.Level = level
	return reaction
}

// State returns a deep copy of the tracker for persistence.
func (t *Tracker) State() State {
	s := State{
		Factions: make(map[string]int, len(t.factions)),
		NPCs:     make(map[string]int, len(t.npcs)),
		History:  t.History(),
	}
	for k, v := range t.factions {
		s.Factions[k] = v
	}
	for k, v := range t.npcs {
		s.NPCs[k] = v
	}
	return s
}

// Restore replaces the tracker's contents with the persisted state.
// Nil maps restore as empty.
func (t *Tracker) Restore(s State) {
	t.factions = make(map[string]int, len(s.Factions))
	for k, v := range s.Factions {
		t.factions[k] = v
	}
	t.npcs = make(map[string]int, len(s.NPCs))
	for k, v := range s.NPCs {
		t.npcs[k] = v
	}
	t.history = make([]Change, len(s.History))
	copy(t.history, s.History)
}
