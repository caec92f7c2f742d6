// Package content generates NPCs, quests, locations, combat encounters, and
// puzzles for the game master to weave into the story. Generation draws on
// YAML role and theme templates when they are registered and falls back to
// built-in tables when they are not.
package content

import (
	"strings"
	"unicode"

	"github.com/emberfall/gamemaster/internal/game/dice"
)

// Generator produces game content. Randomness comes from the injected
// Source so generation is deterministic under test.
type Generator struct {
	npcs   map[string]NPCTemplate
	quests map[string]QuestTemplate
	src    dice.Source
}

// NewGenerator creates a Generator with no templates registered.
//
// Precondition: src must be non-nil.
func NewGenerator(src dice.Source) *Generator {
	return &Generator{
		npcs:   make(map[string]NPCTemplate),
		quests: make(map[string]QuestTemplate),
		src:    src,
	}
}

// RegisterNPCTemplate adds or replaces the template for its role.
// Lookup is case-insensitive.
func (g *Generator) RegisterNPCTemplate(t NPCTemplate) {
	g.npcs[strings.ToLower(t.Role)] = t
}

// RegisterQuestTemplate adds or replaces the template for its theme.
// Lookup is case-insensitive.
func (g *Generator) RegisterQuestTemplate(t QuestTemplate) {
	g.quests[strings.ToLower(t.Theme)] = t
}

// choose returns a uniformly random element of options.
func (g *Generator) choose(options []string) string {
	return options[g.src.Intn(len(options))]
}

// valueOr returns v unless it is empty.
func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// titleWords upper-cases the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
