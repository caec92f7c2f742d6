// Package storage defines the save-game contract shared by the file and
// PostgreSQL backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberfall/gamemaster/internal/game/state"
)

// Slot bounds for numbered quick-save slots.
const (
	MinSlot = 1
	MaxSlot = 10
)

// ErrInvalidSlot is returned when a slot number is outside [MinSlot, MaxSlot].
var ErrInvalidSlot = errors.New("invalid save slot")

// ErrSaveNotFound is returned when no save matches a name or slot.
var ErrSaveNotFound = errors.New("save not found")

// ErrNilState is returned when a save is attempted with no game state.
var ErrNilState = errors.New("no game state to save")

// ValidSlot reports whether slot is a usable quick-save slot number.
func ValidSlot(slot int) bool {
	return slot >= MinSlot && slot <= MaxSlot
}

// SaveInfo describes a written save.
type SaveInfo struct {
	// Name is the backend-assigned save name, usable with Load.
	Name string `json:"name"`
	// Path is the file location for file-backed saves, empty otherwise.
	Path string `json:"path,omitempty"`
	// Slot is set when the save occupies a quick-save slot.
	Slot    *int      `json:"slot,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveSummary is one row of a save listing.
type SaveSummary struct {
	Name            string    `json:"name"`
	Character       string    `json:"character"`
	Level           int       `json:"level"`
	Location        string    `json:"location"`
	Slot            *int      `json:"slot,omitempty"`
	PlaytimeMinutes int       `json:"playtime_minutes"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Store persists campaign states.
//
// Invariant: Save stamps LastUpdated on the state before writing, so a
// loaded state always carries the time of its last save.
type Store interface {
	// Save writes the state under name. An empty name derives one from the
	// character and the current time.
	//
	// Precondition: gs must not be nil.
	Save(ctx context.Context, gs *state.GameState, name string) (SaveInfo, error)

	// SaveToSlot writes the state into a numbered slot, stamping the slot
	// into the state before writing.
	//
	// Precondition: slot must satisfy ValidSlot.
	SaveToSlot(ctx context.Context, gs *state.GameState, slot int) (SaveInfo, error)

	// Load reads the save with the given name.
	//
	// Postcondition: Returns the state or ErrSaveNotFound.
	Load(ctx context.Context, name string) (*state.GameState, error)

	// LoadSlot reads the most recently written save in the slot.
	//
	// Postcondition: Returns the state or ErrSaveNotFound when the slot is
	// empty.
	LoadSlot(ctx context.Context, slot int) (*state.GameState, error)

	// List returns summaries of every save, most recently updated first.
	// Saves that cannot be decoded still appear, marked Unknown.
	List(ctx context.Context) ([]SaveSummary, error)

	// ListSlot returns summaries of the saves occupying the slot, most
	// recently updated first.
	ListSlot(ctx context.Context, slot int) ([]SaveSummary, error)
}

// CharacterName extracts the character's name from the state, or "unknown"
// when no character is attached.
func CharacterName(gs *state.GameState) string {
	if gs == nil || gs.Character == nil || gs.Character.Name == "" {
		return "unknown"
	}
	return gs.Character.Name
}

// DeriveName builds the automatic save name "<character>_<timestamp>".
func DeriveName(gs *state.GameState, at time.Time) string {
	return fmt.Sprintf("%s_%s", CharacterName(gs), at.Format("20060102_150405"))
}

// SlotName builds the well-known save name for a quick-save slot, so
// saving the same character to the same slot overwrites the previous save.
func SlotName(slot int, gs *state.GameState) string {
	return fmt.Sprintf("save_slot_%02d_%s", slot, CharacterName(gs))
}
