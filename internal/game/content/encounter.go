package content

import (
	"fmt"
	"strings"
)

// EncounterStatusPending is the status every encounter starts in.
const EncounterStatusPending = "pending"

// EncounterEnemy names one enemy in a generated encounter. The combat
// engine turns these into full sheets through the enemy factory.
type EncounterEnemy struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Level int    `json:"level"`
}

// Encounter is a generated combat setup.
type Encounter struct {
	Difficulty string           `json:"difficulty"`
	Location   string           `json:"location"`
	Enemies    []EncounterEnemy `json:"enemies"`
	Status     string           `json:"status"`
}

var encounterEnemyTypes = []string{"goblin", "skeleton", "orc", "animated_furniture", "bandit"}

// countRange is an inclusive enemy-count range.
type countRange struct{ min, max int }

var encounterCounts = map[string]countRange{
	"easy":   {1, 2},
	"medium": {2, 3},
	"hard":   {3, 5},
}

// GenerateEncounter builds a combat encounter: the enemy count rolls within
// the difficulty's range, each enemy type rolls from the standard table, and
// each level jitters within one of playerLevel, floored at 1. Unknown
// difficulties use the easy count range.
func (g *Generator) GenerateEncounter(difficulty, location string, playerLevel int) Encounter {
	bounds, ok := encounterCounts[strings.ToLower(difficulty)]
	if !ok {
		bounds = countRange{1, 2}
	}
	count := bounds.min + g.src.Intn(bounds.max-bounds.min+1)

	enemies := make([]EncounterEnemy, 0, count)
	for i := 0; i < count; i++ {
		enemyType := g.choose(encounterEnemyTypes)
		level := playerLevel + g.src.Intn(3) - 1
		if level < 1 {
			level = 1
		}
		enemies = append(enemies, EncounterEnemy{
			Name:  fmt.Sprintf("%s %d", titleWords(strings.ReplaceAll(enemyType, "_", " ")), i+1),
			Type:  enemyType,
			Level: level,
		})
	}

	return Encounter{
		Difficulty: difficulty,
		Location:   location,
		Enemies:    enemies,
		Status:     EncounterStatusPending,
	}
}
