// Package condition implements the status-effect catalog and the per-combatant
// tracker the encounter engine ticks each turn.
package condition

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCondition is returned when a condition id is not in the registry.
var ErrUnknownCondition = errors.New("unknown condition")

// Definition is the static description of a condition, loaded from YAML or
// seeded by DefaultRegistry. Penalty magnitudes are stored positive; the
// tracker applies the sign when aggregating modifiers.
type Definition struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	DamagePerTurn   int    `yaml:"damage_per_turn"`
	AttackBonus     int    `yaml:"attack_bonus"`
	AttackPenalty   int    `yaml:"attack_penalty"`
	ACPenalty       int    `yaml:"ac_penalty"`
	DisablesActions bool   `yaml:"disables_actions"`
	Duration        int    `yaml:"duration"` // default duration in rounds
}

// Validate checks that the definition is internally consistent.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition is missing an id")
	}
	if d.DamagePerTurn < 0 {
		return fmt.Errorf("condition %q: damage_per_turn must not be negative", d.ID)
	}
	if d.Duration < 0 {
		return fmt.Errorf("condition %q: duration must not be negative", d.ID)
	}
	return nil
}

// Registry holds all known Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// DefaultRegistry returns a Registry seeded with the built-in catalog.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, def := range []*Definition{
		{
			ID:            "poisoned",
			Name:          "Poisoned",
			Description:   "Takes damage at the start of each turn",
			DamagePerTurn: 1,
			Duration:      3,
		},
		{
			ID:              "stunned",
			Name:            "Stunned",
			Description:     "Cannot take actions, attacks have advantage against them",
			ACPenalty:       2,
			DisablesActions: true,
			Duration:        1,
		},
		{
			ID:            "bleeding",
			Name:          "Bleeding",
			Description:   "Takes damage at the end of each turn",
			DamagePerTurn: 2,
			Duration:      2,
		},
		{
			ID:          "blessed",
			Name:        "Blessed",
			Description: "Gains advantage on attack rolls",
			AttackBonus: 2,
			Duration:    3,
		},
		{
			ID:            "cursed",
			Name:          "Cursed",
			Description:   "Suffers disadvantage on attack rolls",
			AttackPenalty: 2,
			Duration:      3,
		},
	} {
		reg.Register(def)
	}
	return reg
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[strings.ToLower(def.ID)] = def
}

// Get returns the Definition for id, or (nil, false) if not found.
// Lookup is case-insensitive.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[strings.ToLower(id)]
	return d, ok
}

// All returns a snapshot slice of all registered Definitions.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and registers it on top of the built-in catalog.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
