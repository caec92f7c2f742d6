package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Quest status values. Every quest starts active; the session moves it to
// completed when its objectives are done.
const (
	QuestStatusActive    = "active"
	QuestStatusCompleted = "completed"
)

// QuestRewards is the payout for completing a quest.
type QuestRewards struct {
	Experience int      `json:"experience" yaml:"experience"`
	Gold       int      `json:"gold" yaml:"gold"`
	Items      []string `json:"items" yaml:"items"`
}

// Quest is a generated quest. StartedAt and CompletedAt stay nil until the
// session marks the transitions.
type Quest struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Difficulty          string       `json:"difficulty"`
	Status              string       `json:"status"`
	Objectives          []string     `json:"objectives"`
	CompletedObjectives []string     `json:"completed_objectives"`
	Rewards             QuestRewards `json:"rewards"`
	Locations           []string     `json:"locations"`
	StartedAt           *time.Time   `json:"started_at"`
	CompletedAt         *time.Time   `json:"completed_at"`
}

// QuestTemplate seeds generation for one theme, loaded from YAML.
type QuestTemplate struct {
	Theme       string       `yaml:"theme"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Objectives  []string     `yaml:"objectives"`
	Rewards     QuestRewards `yaml:"rewards"`
	Locations   []string     `yaml:"locations"`
}

// Validate checks that the template names a theme.
func (t *QuestTemplate) Validate() error {
	if t.Theme == "" {
		return fmt.Errorf("quest template: theme must not be empty")
	}
	return nil
}

// rewardMultipliers scales base rewards by quest difficulty. Unknown
// difficulties scale at 1.0.
var rewardMultipliers = map[string]float64{
	"easy":   0.7,
	"medium": 1.0,
	"hard":   1.5,
}

// CreateQuest builds a quest for the given theme. A registered template
// supplies title, objectives, rewards, and locations; unregistered themes
// get a generic title and the base 100 XP / 50 gold reward. Experience and
// gold scale by the difficulty multiplier, truncated toward zero.
func (g *Generator) CreateQuest(difficulty, theme string) Quest {
	tmpl := g.quests[strings.ToLower(theme)]

	rewards := tmpl.Rewards
	if rewards.Experience == 0 && rewards.Gold == 0 && len(rewards.Items) == 0 {
		rewards = QuestRewards{Experience: 100, Gold: 50}
	}
	mult, ok := rewardMultipliers[strings.ToLower(difficulty)]
	if !ok {
		mult = 1.0
	}
	rewards.Experience = int(float64(rewards.Experience) * mult)
	rewards.Gold = int(float64(rewards.Gold) * mult)
	if rewards.Items == nil {
		rewards.Items = []string{}
	}

	title := tmpl.Title
	if title == "" {
		title = titleWords(strings.ReplaceAll(theme, "_", " ")) + " Quest"
	}
	description := tmpl.Description
	if description == "" {
		description = fmt.Sprintf("A %s quest", difficulty)
	}

	return Quest{
		ID:                  uuid.NewString(),
		Title:               title,
		Description:         description,
		Difficulty:          difficulty,
		Status:              QuestStatusActive,
		Objectives:          append([]string{}, tmpl.Objectives...),
		CompletedObjectives: []string{},
		Rewards:             rewards,
		Locations:           append([]string{}, tmpl.Locations...),
	}
}

// LoadQuestTemplates reads all *.yaml files in dir, one template per file,
// and registers each.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error on the first parse or validate failure;
// templates registered before the failure remain registered.
func (g *Generator) LoadQuestTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading quest dir %q: %w", dir, err)
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

		var tmpl QuestTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		g.RegisterQuestTemplate(tmpl)
	}
	return nil
}
