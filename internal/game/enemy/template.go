// Package enemy provides enemy archetype templates and the factory that turns
// them into combat-ready sheets with difficulty scaling.
package enemy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/emberfall/gamemaster/internal/game/character"
)

// fallbackType is the template used when an unrecognized type is requested.
const fallbackType = "goblin"

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	Type       string                  `yaml:"type"`
	Abilities  character.AbilityScores `yaml:"stats"`
	HitDie     int                     `yaml:"hit_die"`
	ArmorClass int                     `yaml:"ac"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff Type is non-empty, HitDie >= 1, and
// ArmorClass >= 1; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("enemy template: type must not be empty")
	}
	if t.HitDie < 1 {
		return fmt.Errorf("enemy template %q: hit_die must be >= 1", t.Type)
	}
	if t.ArmorClass < 1 {
		return fmt.Errorf("enemy template %q: ac must be >= 1", t.Type)
	}
	return nil
}

// Registry holds enemy templates keyed by lowercased type.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// DefaultRegistry returns a Registry seeded with the built-in bestiary.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, tmpl := range []*Template{
		{
			Type: "goblin",
			Abilities: character.AbilityScores{
				Strength: 8, Dexterity: 14, Constitution: 10,
				Intelligence: 10, Wisdom: 8, Charisma: 8,
			},
			HitDie:     7,
			ArmorClass: 15,
		},
		{
			Type: "skeleton",
			Abilities: character.AbilityScores{
				Strength: 10, Dexterity: 14, Constitution: 15,
				Intelligence: 6, Wisdom: 8, Charisma: 5,
			},
			HitDie:     9,
			ArmorClass: 13,
		},
		{
			Type: "orc",
			Abilities: character.AbilityScores{
				Strength: 16, Dexterity: 12, Constitution: 16,
				Intelligence: 7, Wisdom: 11, Charisma: 10,
			},
			HitDie:     15,
			ArmorClass: 13,
		},
		{
			Type: "animated_furniture",
			Abilities: character.AbilityScores{
				Strength: 14, Dexterity: 8, Constitution: 16,
				Intelligence: 1, Wisdom: 3, Charisma: 1,
			},
			HitDie:     10,
			ArmorClass: 12,
		},
	} {
		reg.Register(tmpl)
	}
	return reg
}

// Register adds tmpl to the registry, overwriting any entry with the same type.
// Precondition: tmpl must not be nil and tmpl.Type must not be empty.
func (r *Registry) Register(tmpl *Template) {
	r.templates[strings.ToLower(tmpl.Type)] = tmpl
}

// Get returns the template for enemyType, or (nil, false) if not found.
// Lookup is case-insensitive.
func (r *Registry) Get(enemyType string) (*Template, bool) {
	t, ok := r.templates[strings.ToLower(enemyType)]
	return t, ok
}

// All returns the registered templates sorted by type.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadDirectory reads all *.yaml files in dir and registers each parsed
// template on top of the built-in bestiary.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry or an error on the first parse
// or validate failure; on error, the partial result is discarded.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}

	reg := DefaultRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(tmpl)
	}
	return reg, nil
}
