package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NPC is a generated non-player character. Met and Interactions start empty
// and are filled in by the session as the player deals with them.
type NPC struct {
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Personality   string   `json:"personality"`
	Description   string   `json:"description"`
	Motivation    string   `json:"motivation"`
	DialogueStyle string   `json:"dialogue_style"`
	Context       string   `json:"context"`
	Met           bool     `json:"met"`
	Interactions  []string `json:"interactions"`
}

// NPCTemplate seeds generation for one role, loaded from YAML.
type NPCTemplate struct {
	Role          string `yaml:"role"`
	Name          string `yaml:"name"`
	Personality   string `yaml:"personality"`
	Description   string `yaml:"description"`
	Motivation    string `yaml:"motivation"`
	DialogueStyle string `yaml:"dialogue_style"`
}

// Validate checks that the template names a role.
func (t *NPCTemplate) Validate() error {
	if t.Role == "" {
		return fmt.Errorf("npc template: role must not be empty")
	}
	return nil
}

// Tables used when no template covers a role.
var (
	npcNames = []string{
		"Aldric", "Brenna", "Cedric", "Dara", "Ewan", "Fiona",
		"Gareth", "Helena", "Ivor", "Jenna", "Kael", "Luna",
	}
	npcDemeanors = []string{"kind", "stern", "mysterious", "cheerful"}
)

// GenerateNPC builds an NPC for the given role. A registered template
// supplies the profile, with per-field fallbacks for anything it leaves
// blank; roles with no template get a random name and demeanor instead.
func (g *Generator) GenerateNPC(storyContext, role string) NPC {
	tmpl, ok := g.npcs[strings.ToLower(role)]
	npc := NPC{
		Name:          valueOr(tmpl.Name, "Unknown "+role),
		Role:          role,
		Personality:   valueOr(tmpl.Personality, "Neutral"),
		Description:   valueOr(tmpl.Description, "A mysterious figure"),
		Motivation:    valueOr(tmpl.Motivation, "Unknown"),
		DialogueStyle: valueOr(tmpl.DialogueStyle, "Normal"),
		Context:       storyContext,
		Interactions:  []string{},
	}
	if !ok {
		npc.Name = g.choose(npcNames)
		npc.Description = fmt.Sprintf("A %s with a %s demeanor",
			strings.ReplaceAll(role, "_", " "), g.choose(npcDemeanors))
	}
	return npc
}

// LoadNPCTemplates reads all *.yaml files in dir, one template per file,
// and registers each.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error on the first parse or validate failure;
// templates registered before the failure remain registered.
func (g *Generator) LoadNPCTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}

		var tmpl NPCTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		g.RegisterNPCTemplate(tmpl)
	}
	return nil
}
