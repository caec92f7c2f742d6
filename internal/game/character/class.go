package character

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Class describes a playable class template. Templates drive starting
// abilities, hit dice, and equipment at character creation.
type Class struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	HitDie            int      `yaml:"hit_die"`
	PrimaryStats      []string `yaml:"primary_stats"`
	StartingSkills    []string `yaml:"starting_skills"`
	StartingEquipment []string `yaml:"starting_equipment"`
}

// Validate checks the class template invariants.
func (c *Class) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("class id must not be empty")
	}
	if c.HitDie < 1 {
		return fmt.Errorf("class %q: hit_die must be >= 1, got %d", c.ID, c.HitDie)
	}
	return nil
}

// Registry resolves class templates by id, case-insensitively.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry returns an empty class Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// DefaultRegistry returns a Registry seeded with the built-in classes:
// fighter, wizard, rogue, cleric, and ranger.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range builtinClasses {
		cc := c
		r.classes[cc.ID] = &cc
	}
	return r
}

var builtinClasses = []Class{
	{
		ID:                "fighter",
		Name:              "Fighter",
		Description:       "A master of martial combat, skilled with a variety of weapons and armor.",
		HitDie:            10,
		PrimaryStats:      []string{"strength", "constitution"},
		StartingSkills:    []string{"athletics", "intimidation"},
		StartingEquipment: []string{"longsword", "chain mail", "shield"},
	},
	{
		ID:                "wizard",
		Name:              "Wizard",
		Description:       "A scholarly magic-user capable of manipulating the structures of reality.",
		HitDie:            6,
		PrimaryStats:      []string{"intelligence"},
		StartingSkills:    []string{"arcana", "history"},
		StartingEquipment: []string{"quarterstaff", "robes", "spellbook"},
	},
	{
		ID:                "rogue",
		Name:              "Rogue",
		Description:       "A scoundrel who uses stealth and trickery to overcome obstacles.",
		HitDie:            8,
		PrimaryStats:      []string{"dexterity"},
		StartingSkills:    []string{"stealth", "sleight_of_hand", "deception"},
		StartingEquipment: []string{"dagger", "leather armor", "thieves' tools"},
	},
	{
		ID:                "cleric",
		Name:              "Cleric",
		Description:       "A priestly champion who wields divine magic in service of a higher power.",
		HitDie:            8,
		PrimaryStats:      []string{"wisdom"},
		StartingSkills:    []string{"religion", "medicine", "insight"},
		StartingEquipment: []string{"mace", "scale mail", "holy symbol"},
	},
	{
		ID:                "ranger",
		Name:              "Ranger",
		Description:       "A warrior of the wilderness, at home tracking prey through forest and fen.",
		HitDie:            10,
		PrimaryStats:      []string{"dexterity", "wisdom"},
		StartingSkills:    []string{"survival", "nature", "perception"},
		StartingEquipment: []string{"shortbow", "leather armor", "quiver"},
	},
}

// Get returns the class template for id (case-insensitive).
func (r *Registry) Get(id string) (*Class, bool) {
	c, ok := r.classes[strings.ToLower(id)]
	return c, ok
}

// Register adds or replaces a class template.
//
// Precondition: c must pass Validate.
func (r *Registry) Register(c *Class) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.classes[strings.ToLower(c.ID)] = c
	return nil
}

// All returns every registered class sorted by id.
func (r *Registry) All() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads all .yaml files in dir and registers each as a Class,
// replacing any built-in with the same id.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns nil and all files registered, or a non-nil error.
func (r *Registry) LoadDirectory(dir string) error {
	files, err := yamlFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if err := r.Register(&c); err != nil {
			return fmt.Errorf("registering class from %s: %w", path, err)
		}
	}
	return nil
}

// yamlFiles lists the .yaml/.yml files directly inside dir.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
