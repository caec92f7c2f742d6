package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/emberfall/gamemaster/internal/game/content"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

// seqSrc replays a fixed sequence of Intn results.
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(n int) int {
	if s.i >= len(s.vals) {
		panic("seqSrc exhausted")
	}
	v := s.vals[s.i] % n
	s.i++
	return v
}

func newGenerator(vals ...int) *content.Generator {
	return content.NewGenerator(&seqSrc{vals: vals})
}

func TestGenerateLocation_Builtin(t *testing.T) {
	loc := newGenerator().GenerateLocation("tavern", "first night in Millbrook")

	assert.Equal(t, "tavern", loc.Type)
	assert.Equal(t, "The Rusty Tankard", loc.Name)
	assert.Contains(t, loc.Description, "smells of ale")
	assert.Equal(t, []string{"bar", "tables", "fireplace", "stairs"}, loc.Features)
	assert.Equal(t, "warm but tense", loc.Atmosphere)
	assert.Equal(t, "first night in Millbrook", loc.Context)
	assert.False(t, loc.Explored)
	assert.NotNil(t, loc.NPCs)
	assert.NotNil(t, loc.Items)
}

func TestGenerateLocation_UnknownTypeGetsGenericProfile(t *testing.T) {
	loc := newGenerator().GenerateLocation("swamp", "")

	assert.Equal(t, "Swamp", loc.Name)
	assert.Equal(t, "A swamp", loc.Description)
	assert.Empty(t, loc.Features)
	assert.Equal(t, "neutral", loc.Atmosphere)
}

func TestGenerateLocation_TypeCaseInsensitive(t *testing.T) {
	loc := newGenerator().GenerateLocation("Dungeon", "")
	assert.Equal(t, "Ancient Dungeon", loc.Name)
}

func TestGenerateEncounter(t *testing.T) {
	// Count roll 1 on medium gives 3 enemies; then type and level rolls per
	// enemy: goblin +1, skeleton -1, animated_furniture +0.
	g := newGenerator(1, 0, 2, 1, 0, 3, 1)
	enc := g.GenerateEncounter("medium", "old fort", 2)

	assert.Equal(t, "medium", enc.Difficulty)
	assert.Equal(t, "old fort", enc.Location)
	assert.Equal(t, content.EncounterStatusPending, enc.Status)
	require.Len(t, enc.Enemies, 3)

	assert.Equal(t, content.EncounterEnemy{Name: "Goblin 1", Type: "goblin", Level: 3}, enc.Enemies[0])
	assert.Equal(t, content.EncounterEnemy{Name: "Skeleton 2", Type: "skeleton", Level: 1}, enc.Enemies[1])
	assert.Equal(t, content.EncounterEnemy{Name: "Animated Furniture 3", Type: "animated_furniture", Level: 2}, enc.Enemies[2])
}

func TestGenerateEncounter_LevelFloorsAtOne(t *testing.T) {
	// A level 1 player rolling the -1 jitter still faces a level 1 enemy.
	g := newGenerator(0, 0, 0)
	enc := g.GenerateEncounter("easy", "roadside", 1)

	require.Len(t, enc.Enemies, 1)
	assert.Equal(t, 1, enc.Enemies[0].Level)
}

func TestGenerateEncounter_UnknownDifficultyUsesEasyRange(t *testing.T) {
	g := newGenerator(1, 4, 1, 4, 1)
	enc := g.GenerateEncounter("nightmare", "crypt", 3)
	assert.Len(t, enc.Enemies, 2)
}

func TestGeneratePuzzle_Riddle(t *testing.T) {
	p := newGenerator(1).GeneratePuzzle("riddle")

	assert.Equal(t, "riddle", p.Type)
	assert.Contains(t, p.Question, "The more you take")
	assert.Equal(t, "footsteps", p.Answer)
	assert.Len(t, p.Hints, 2)
	assert.False(t, p.Solved)
}

func TestGeneratePuzzle_NonRiddleGetsLogicPuzzle(t *testing.T) {
	p := newGenerator().GeneratePuzzle("logic")

	assert.Contains(t, p.Question, "roses")
	assert.Equal(t, "no", p.Answer)
	assert.Len(t, p.Hints, 2)
}

func TestPropertyGenerateEncounter_CountAndLevelsInBounds(t *testing.T) {
	ranges := map[string][2]int{"easy": {1, 2}, "medium": {2, 3}, "hard": {3, 5}}

	rapid.Check(t, func(rt *rapid.T) {
		difficulty := rapid.SampledFrom([]string{"easy", "medium", "hard"}).Draw(rt, "difficulty")
		playerLevel := rapid.IntRange(1, 10).Draw(rt, "playerLevel")

		g := content.NewGenerator(dice.NewCryptoSource())
		enc := g.GenerateEncounter(difficulty, "field", playerLevel)

		bounds := ranges[difficulty]
		if len(enc.Enemies) < bounds[0] || len(enc.Enemies) > bounds[1] {
			rt.Fatalf("%s encounter has %d enemies, want %d..%d",
				difficulty, len(enc.Enemies), bounds[0], bounds[1])
		}
		for _, e := range enc.Enemies {
			if e.Level < 1 || e.Level < playerLevel-1 || e.Level > playerLevel+1 {
				rt.Fatalf("enemy level %d outside jitter of player level %d", e.Level, playerLevel)
			}
		}
	})
}
