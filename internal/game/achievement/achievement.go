// Package achievement tracks unlocked achievements and the milestone
// counters that trigger them automatically.
package achievement

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyUnlocked is returned when an achievement ID is unlocked twice.
	ErrAlreadyUnlocked = errors.New("achievement already unlocked")
	// ErrUnknownMilestone is returned for counter names outside the fixed set.
	ErrUnknownMilestone = errors.New("unknown milestone")
)

// Milestone counter names. The set is fixed; Advance rejects anything else.
const (
	MilestoneEnemiesDefeated     = "enemies_defeated"
	MilestoneQuestsCompleted     = "quests_completed"
	MilestoneNPCsMet             = "npcs_met"
	MilestoneLocationsDiscovered = "locations_discovered"
	MilestoneGoldEarned          = "gold_earned"
	MilestoneLevelsGained        = "levels_gained"
	MilestoneCriticalHits        = "critical_hits"
	MilestoneSkillChecksPassed   = "skill_checks_passed"
)

func defaultMilestones() map[string]int {
	return map[string]int{
		MilestoneEnemiesDefeated:     0,
		MilestoneQuestsCompleted:     0,
		MilestoneNPCsMet:             0,
		MilestoneLocationsDiscovered: 0,
		MilestoneGoldEarned:          0,
		MilestoneLevelsGained:        0,
		MilestoneCriticalHits:        0,
		MilestoneSkillChecksPassed:   0,
	}
}

// Achievement is one unlocked achievement.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// State is the serializable form of a Tracker.
type State struct {
	Unlocked   []Achievement  `json:"achievements"`
	Milestones map[string]int `json:"milestones"`
}

// threshold ties a counter value to the achievement it unlocks.
type threshold struct {
	at          int
	id          string
	name        string
	description string
}

var milestoneThresholds = map[string][]threshold{
	MilestoneEnemiesDefeated: {
		{1, "first_blood", "First Blood", "Defeat your first enemy"},
		{10, "warrior", "Warrior", "Defeat 10 enemies"},
		{50, "slayer", "Slayer", "Defeat 50 enemies"},
		{100, "legend", "Legend", "Defeat 100 enemies"},
	},
	MilestoneQuestsCompleted: {
		{1, "adventurer", "Adventurer", "Complete your first quest"},
		{5, "hero", "Hero", "Complete 5 quests"},
		{10, "champion", "Champion", "Complete 10 quests"},
		{25, "master", "Master", "Complete 25 quests"},
	},
	MilestoneNPCsMet: {
		{5, "social", "Social Butterfly", "Meet 5 NPCs"},
		{15, "networker", "Networker", "Meet 15 NPCs"},
		{30, "diplomat", "Diplomat", "Meet 30 NPCs"},
	},
	MilestoneGoldEarned: {
		{100, "wealthy", "Wealthy", "Earn 100 gold"},
		{500, "rich", "Rich", "Earn 500 gold"},
		{1000, "tycoon", "Tycoon", "Earn 1000 gold"},
	},
	MilestoneLevelsGained: {
		{2, "rising", "Rising Star", "Reach level 2"},
		{5, "experienced", "Experienced", "Reach level 5"},
		{10, "veteran", "Veteran", "Reach level 10"},
	},
}

// Tracker records unlocks in order and keeps the milestone counters.
// Not safe for concurrent use.
type Tracker struct {
	unlocked   []Achievement
	milestones map[string]int
}

// NewTracker creates a Tracker with all milestone counters at zero.
func NewTracker() *Tracker {
	return &Tracker{milestones: defaultMilestones()}
}

// Unlock records an achievement. An empty category defaults to "general".
// Unlocking the same ID twice returns ErrAlreadyUnlocked.
func (t *Tracker) Unlock(id, name, description, category string) (Achievement, error) {
	if t.isUnlocked(id) {
		return Achievement{}, fmt.Errorf("%w: %q", ErrAlreadyUnlocked, id)
	}
	if category == "" {
		category = "general"
	}
	a := Achievement{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		UnlockedAt:  time.Now(),
	}
	t.unlocked = append(t.unlocked, a)
	return a, nil
}

func (t *Tracker) isUnlocked(id string) bool {
	for _, a := range t.unlocked {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Advance adds amount to the named milestone counter and unlocks every
// threshold achievement the new value has reached. It returns the new value
// and any achievements unlocked by this call.
func (t *Tracker) Advance(milestone string, amount int) (int, []Achievement, error) {
	v, ok := t.milestones[milestone]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %q", ErrUnknownMilestone, milestone)
	}
	v += amount
	t.milestones[milestone] = v

	var newly []Achievement
	for _, th := range milestoneThresholds[milestone] {
		if v >= th.at && !t.isUnlocked(th.id) {
			a, err := t.Unlock(th.id, th.name, th.description, "milestone")
			if err != nil {
				continue
			}
			newly = append(newly, a)
		}
	}
	return v, newly, nil
}

// Milestone returns the named counter's value; unknown names read as zero.
func (t *Tracker) Milestone(name string) int { return t.milestones[name] }

// Unlocked returns a copy of all unlocked achievements in unlock order,
// optionally filtered by category ("" returns all).
func (t *Tracker) Unlocked(category string) []Achievement {
	out := make([]Achievement, 0, len(t.unlocked))
	for _, a := range t.unlocked {
		if category == "" || a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Statistics summarizes the tracker for display.
type Statistics struct {
	Total      int            `json:"total_achievements"`
	ByCategory map[string]int `json:"by_category"`
	Milestones map[string]int `json:"milestones"`
}

// Statistics returns unlock counts by category plus a copy of the counters.
func (t *Tracker) Statistics() Statistics {
	stats := Statistics{
		Total:      len(t.unlocked),
		ByCategory: make(map[string]int),
		Milestones: make(map[string]int, len(t.milestones)),
	}
	for _, a := range t.unlocked {
		stats.ByCategory[a.Category]++
	}
	for k, v := range t.milestones {
		stats.Milestones[k] = v
	}
	return stats
}

// State returns a deep copy of the tracker for persistence.
func (t *Tracker) State() State {
	s := State{
		Unlocked:   make([]Achievement, len(t.unlocked)),
		Milestones: make(map[string]int, len(t.milestones)),
	}
	copy(s.Unlocked, t.unlocked)
	for k, v := range t.milestones {
		s.Milestones[k] = v
	}
	return s
}

// Restore replaces the tracker's contents with the persisted state. A nil
// milestone map restores to the default zeroed counters.
func (t *Tracker) Restore(s State) {
	t.unlocked = make([]Achievement, len(s.Unlocked))
	copy(t.unlocked, s.Unlocked)
	if s.Milestones == nil {
		t.milestones = defaultMilestones()
		return
	}
	t.milestones = make(map[string]int, len(s.Milestones))
	for k, v := range s.Milestones {
		t.milestones[k] = v
	}
}
