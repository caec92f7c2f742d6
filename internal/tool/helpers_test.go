package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/condition"
	"github.com/emberfall/gamemaster/internal/game/dice"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/tool"
)

// seqSrc returns scripted values so every roll in a test is predictable.
// Value v produces die face v%sides + 1.
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

// fixture assembles a campaign around a scripted dice source. The same
// source feeds the roller, the combat engine, and any handler that draws
// randomness directly, so scripts read in consumption order.
type fixture struct {
	camp   *session.Campaign
	roller *dice.Roller
}

func newFixture(vals ...int) *fixture {
	roller := dice.NewLoggedRoller(&seqSrc{vals: vals}, zap.NewNop())
	engine := combat.NewEngine(roller, condition.DefaultRegistry(), zap.NewNop())
	return &fixture{
		camp:   session.NewCampaign(state.NewManager(), engine),
		roller: roller,
	}
}

// begin starts a campaign for the standard test character and returns its
// live state.
func (f *fixture) begin() *state.GameState {
	return f.camp.Begin(testSheet("Aria"))
}

// invoke runs the handler on raw JSON input and fails the test on error.
func invoke(t *testing.T, h tool.Handler, input string) map[string]any {
	t.Helper()
	payload, err := h.Invoke(context.Background(), json.RawMessage(input))
	require.NoError(t, err)
	return payload
}

func testSheet(name string) *character.Sheet {
	return &character.Sheet{
		Name:  name,
		Class: "fighter",
		Level: 1,
		HP:    character.HitPoints{Current: 12, Max: 12},
		Abilities: character.AbilityScores{
			Strength: 14, Dexterity: 12, Constitution: 12,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
		Inventory: []string{},
	}
}

func testEnemy(name string) *character.Sheet {
	return &character.Sheet{
		Name:       name,
		Type:       "bandit",
		Level:      1,
		HitDie:     6,
		ArmorClass: 10,
		Abilities: character.AbilityScores{
			Strength: 10, Dexterity: 10, Constitution: 10,
			Intelligence: 10, Wisdom: 8, Charisma: 8,
		},
	}
}
