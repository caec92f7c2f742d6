// Package state defines the persistent campaign snapshot and the manager
// that owns the live copy between saves.
package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/content"
	"github.com/emberfall/gamemaster/internal/game/reputation"
)

var (
	// ErrNoState is returned by manager operations before a state exists.
	ErrNoState = errors.New("no active game state")
	// ErrQuestNotFound is returned when no active quest matches an id or title.
	ErrQuestNotFound = errors.New("quest not found")
)

// HistoryEntry is one line of the session log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Entry     string    `json:"entry"`
}

// GameState is the complete snapshot of one campaign. Every field is plain
// nested data, so the whole state marshals to JSON for the save stores.
type GameState struct {
	Character       *character.Sheet       `json:"character"`
	CurrentLocation string                 `json:"current_location"`
	StoryContext    string                 `json:"story_context"`
	ActiveQuests    []content.Quest        `json:"active_quests"`
	CompletedQuests []content.Quest        `json:"completed_quests"`
	NPCsMet         map[string]content.NPC `json:"npcs_met"`
	WorldState      map[string]any         `json:"world_state"`
	CombatActive    bool                   `json:"combat_active"`
	// Combat carries the encounter snapshot when a save happens mid-fight.
	Combat          *combat.SessionState `json:"combat,omitempty"`
	SessionHistory  []HistoryEntry       `json:"session_history"`
	Reputation      reputation.State     `json:"reputation"`
	Achievements    achievement.State    `json:"achievements"`
	SaveSlot        *int                 `json:"save_slot"`
	PlaytimeMinutes int                  `json:"playtime_minutes"`
	CreatedAt       time.Time            `json:"created_at"`
	LastUpdated     time.Time            `json:"last_updated"`
}

// Manager owns the live GameState between saves. Not safe for concurrent
// use; one manager belongs to one session.
type Manager struct {
	current *GameState
}

// NewManager creates a Manager with no state.
func NewManager() *Manager { return &Manager{} }

// NewInitialState builds a fresh campaign state around the character sheet
// and makes it current.
//
// Precondition: sheet must not be nil.
// Postcondition: Current() returns the new state.
func (m *Manager) NewInitialState(sheet *character.Sheet) *GameState {
	now := time.Now()
	m.current = &GameState{
		Character:       sheet,
		CurrentLocation: "unknown",
		ActiveQuests:    []content.Quest{},
		CompletedQuests: []content.Quest{},
		NPCsMet:         map[string]content.NPC{},
		WorldState:      map[string]any{},
		SessionHistory:  []HistoryEntry{},
		Reputation:      reputation.NewTracker().State(),
		Achievements:    achievement.NewTracker().State(),
		CreatedAt:       now,
		LastUpdated:     now,
	}
	return m.current
}

// Current returns the live state, or nil before NewInitialState or Set.
func (m *Manager) Current() *GameState { return m.current }

// Set replaces the live state, as after loading a save.
func (m *Manager) Set(gs *GameState) { m.current = gs }

// Clear drops the live state.
func (m *Manager) Clear() { m.current = nil }

// AddHistory appends a timestamped entry to the session log.
func (m *Manager) AddHistory(entry string) error {
	if m.current == nil {
		return ErrNoState
	}
	m.current.SessionHistory = append(m.current.SessionHistory, HistoryEntry{
		Timestamp: time.Now(),
		Entry:     entry,
	})
	return nil
}

// SetLocation moves the campaign to a new location.
func (m *Manager) SetLocation(location string) error {
	if m.current == nil {
		return ErrNoState
	}
	m.current.CurrentLocation = location
	m.touch()
	return nil
}

// AddQuest records a newly created quest as active.
func (m *Manager) AddQuest(q content.Quest) error {
	if m.current == nil {
		return ErrNoState
	}
	m.current.ActiveQuests = append(m.current.ActiveQuests, q)
	m.touch()
	return nil
}

// CompleteQuest moves the active quest matching key off the active list:
// its status flips to completed, CompletedAt is stamped, and it joins the
// completed list. The key matches a quest ID exactly or a title
// case-insensitively, first match wins.
//
// Postcondition: on success the quest appears in CompletedQuests and no
// longer in ActiveQuests.
func (m *Manager) CompleteQuest(key string) (content.Quest, error) {
	if m.current == nil {
		return content.Quest{}, ErrNoState
	}
	for i, q := range m.current.ActiveQuests {
		if q.ID != key && !strings.EqualFold(q.Title, key) {
			continue
		}
		now := time.Now()
		q.Status = content.QuestStatusCompleted
		q.CompletedAt = &now
		m.current.ActiveQuests = append(m.current.ActiveQuests[:i], m.current.ActiveQuests[i+1:]...)
		m.current.CompletedQuests = append(m.current.CompletedQuests, q)
		m.touch()
		return q, nil
	}
	return content.Quest{}, fmt.Errorf("%w: %q", ErrQuestNotFound, key)
}

// MeetNPC records the NPC as met, keyed by display name. Meeting the same
// name again replaces the stored profile.
func (m *Manager) MeetNPC(npc content.NPC) error {
	if m.current == nil {
		return ErrNoState
	}
	npc.Met = true
	m.current.NPCsMet[npc.Name] = npc
	m.touch()
	return nil
}

func (m *Manager) touch() {
	m.current.LastUpdated = time.Now()
}
