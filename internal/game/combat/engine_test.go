package combat_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/condition"
	"github.com/emberfall/gamemaster/internal/game/dice"
)

func newEngine(vals ...int) *combat.Engine {
	roller := dice.NewLoggedRoller(&seqSrc{vals: vals}, zap.NewNop())
	return combat.NewEngine(roller, condition.DefaultRegistry(), zap.NewNop())
}

// testPlayer has str 16 (+3), dex 10, AC 10, and 20 hit points, so at level 1
// an attack roll of raw 10 totals 14.
func testPlayer(name string, level int) *character.Sheet {
	return &character.Sheet{
		Name:       name,
		Class:      "fighter",
		Level:      level,
		HP:         character.HitPoints{Current: 20, Max: 20},
		ArmorClass: 10,
		Abilities: character.AbilityScores{
			Strength: 16, Dexterity: 10, Constitution: 10,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
	}
}

// testEnemy scales to hit points equal to its hit die when the player is
// level 1 on medium difficulty (all modifiers zero).
func testEnemy(name string, hitDie int) *character.Sheet {
	return &character.Sheet{
		Name:       name,
		Type:       "bandit",
		Level:      1,
		HitDie:     hitDie,
		ArmorClass: 10,
		Abilities: character.AbilityScores{
			Strength: 10, Dexterity: 10, Constitution: 10,
			Intelligence: 10, Wisdom: 8, Charisma: 8,
		},
	}
}

func TestStartCombat_OrdersByInitiativeAndScalesEnemies(t *testing.T) {
	eng := newEngine(14, 9) // player rolls 15, goblin rolls 10
	player := testPlayer("Aria", 4)
	goblin := testEnemy("Grik", 7)

	sess := eng.StartCombat(player, []*character.Sheet{goblin}, "medium")

	require.NotNil(t, sess)
	assert.True(t, sess.Active)
	assert.Equal(t, 1, sess.Round)
	require.Len(t, sess.Order, 2)

	assert.Equal(t, combat.KindPlayer, sess.Order[0].Kind)
	assert.Equal(t, 15, sess.Order[0].Initiative)
	assert.Equal(t, combat.KindEnemy, sess.Order[1].Kind)
	assert.Equal(t, 10, sess.Order[1].Initiative)

	// Against a level 4 player the goblin is raised to level 4: +1 to every
	// stat and hit points recomputed as 7*4 with a zero con modifier.
	assert.Equal(t, 4, goblin.Level)
	assert.Equal(t, 11, goblin.Abilities.Dexterity)
	assert.Equal(t, character.HitPoints{Current: 28, Max: 28}, goblin.HP)

	assert.NotEmpty(t, sess.Order[0].ID)
	assert.NotEmpty(t, sess.Order[1].ID)
	assert.NotEqual(t, sess.Order[0].ID, sess.Order[1].ID)

	assert.Same(t, sess.Order[0], eng.CurrentCombatant())
	assert.Same(t, sess.Order[0], sess.Player())
	assert.Len(t, sess.Enemies(), 1)
}

func TestStartCombat_EqualInitiativeKeepsJoinOrder(t *testing.T) {
	eng := newEngine(9, 9, 9) // all total 10
	player := testPlayer("Aria", 1)
	first := testEnemy("Bandit One", 4)
	second := testEnemy("Bandit Two", 4)

	sess := eng.StartCombat(player, []*character.Sheet{first, second}, "medium")

	require.Len(t, sess.Order, 3)
	assert.Equal(t, "Aria", sess.Order[0].Name())
	assert.Equal(t, "Bandit One", sess.Order[1].Name())
	assert.Equal(t, "Bandit Two", sess.Order[2].Name())
}

func TestStartCombat_ReplacesSessionAndDropsConditions(t *testing.T) {
	eng := newEngine(14, 9, 14, 9)
	player := testPlayer("Aria", 1)

	sess := eng.StartCombat(player, []*character.Sheet{testEnemy("Grik", 4)}, "medium")
	playerID := sess.Player().ID
	_, err := eng.Conditions().Apply(playerID, "poisoned", 0)
	require.NoError(t, err)

	next := eng.StartCombat(player, []*character.Sheet{testEnemy("Grak", 4)}, "medium")

	assert.NotSame(t, sess, next)
	assert.Same(t, next, eng.Session())
	assert.False(t, eng.Conditions().Has(playerID, "poisoned"))
}

func TestNextTurn_WrapsIntoNewRound(t *testing.T) {
	eng := newEngine(14, 9)
	player := testPlayer("Aria", 1)
	eng.StartCombat(player, []*character.Sheet{testEnemy("Grik", 4)}, "medium")

	info, err := eng.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, info.Round)
	assert.Equal(t, 2, info.Turn)
	assert.Equal(t, "Grik", info.Combatant.Name())

	info, err = eng.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Round)
	assert.Equal(t, 1, info.Turn)
	assert.Equal(t, "Aria", info.Combatant.Name())
}

func TestEngine_OperationsRequireActiveSession(t *testing.T) {
	eng := newEngine()
	player := testPlayer("Aria", 1)

	_, err := eng.NextTurn()
	assert.ErrorIs(t, err, combat.ErrNoActiveSession)

	_, err = eng.PlayerAttack(player, "Grik", "")
	assert.ErrorIs(t, err, combat.ErrNoActiveSession)

	_, err = eng.EnemyTurn(testEnemy("Grik", 4), player)
	assert.ErrorIs(t, err, combat.ErrNoActiveSession)
}

func TestPlayerAttack_DamagesAndRemovesDefeatedTarget(t *testing.T) {
	eng := newEngine(14, 9, 9, 0) // initiative, then attack 14 vs AC 10 for 4 damage
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 2) // 2 hit points after scaling
	sess := eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	result, err := eng.PlayerAttack(player, "Grik", "")
	require.NoError(t, err)

	assert.True(t, result.Hit)
	assert.Equal(t, 4, result.Damage)
	assert.True(t, result.TargetDefeated)
	assert.Equal(t, 0, grik.HP.Current)
	assert.Empty(t, sess.Enemies())
	assert.Len(t, sess.Order, 1)
}

func TestPlayerAttack_MissLeavesTargetAlone(t *testing.T) {
	eng := newEngine(14, 9, 0) // attack roll of raw 1 totals 5
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 4)
	sess := eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	result, err := eng.PlayerAttack(player, "Grik", "")
	require.NoError(t, err)

	assert.False(t, result.Hit)
	assert.False(t, result.TargetDefeated)
	assert.Equal(t, 4, grik.HP.Current)
	assert.Len(t, sess.Enemies(), 1)
}

func TestPlayerAttack_NonPositiveDamageIsNotApplied(t *testing.T) {
	eng := newEngine(14, 9, 13, 0) // hit at 12 vs AC 10, damage 1 - 3 = -2
	player := testPlayer("Aria", 1)
	player.Abilities.Strength = 4
	player.Abilities.Dexterity = 4
	grik := testEnemy("Grik", 4)
	eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	result, err := eng.PlayerAttack(player, "Grik", "")
	require.NoError(t, err)

	assert.True(t, result.Hit)
	assert.Equal(t, -2, result.Damage)
	assert.False(t, result.TargetDefeated)
	assert.Equal(t, 4, grik.HP.Current)
}

func TestPlayerAttack_UnknownTargetFails(t *testing.T) {
	eng := newEngine(14, 9)
	player := testPlayer("Aria", 1)
	eng.StartCombat(player, []*character.Sheet{testEnemy("Grik", 4)}, "medium")

	_, err := eng.PlayerAttack(player, "Bob", "")
	assert.ErrorIs(t, err, combat.ErrTargetNotFound)
	assert.ErrorContains(t, err, `"Bob"`)
}

func TestPlayerAttack_MatchesFirstLivingEnemyByName(t *testing.T) {
	eng := newEngine(14, 9, 4, 9, 0, 9, 0)
	player := testPlayer("Aria", 1)
	first := testEnemy("Bandit", 2)
	second := testEnemy("Bandit", 6)
	eng.StartCombat(player, []*character.Sheet{first, second}, "medium")

	result, err := eng.PlayerAttack(player, "Bandit", "")
	require.NoError(t, err)
	assert.True(t, result.TargetDefeated)
	assert.Equal(t, 0, first.HP.Current)
	assert.Equal(t, 6, second.HP.Current)

	result, err = eng.PlayerAttack(player, "Bandit", "")
	require.NoError(t, err)
	assert.False(t, result.TargetDefeated)
	assert.Equal(t, 2, second.HP.Current)
}

func TestPlayerAttack_RemovalAheadOfTurnIndexSkipsATurn(t *testing.T) {
	// Order: Bandit One (20), Aria (15), Bandit Two (10). Removing the entry
	// ahead of the turn index shifts the current combatant without an advance,
	// and the following advance wraps straight past Bandit Two.
	eng := newEngine(14, 19, 9, 9, 0)
	player := testPlayer("Aria", 1)
	first := testEnemy("Bandit One", 2)
	second := testEnemy("Bandit Two", 6)
	sess := eng.StartCombat(player, []*character.Sheet{first, second}, "medium")

	require.Equal(t, "Bandit One", eng.CurrentCombatant().Name())
	info, err := eng.NextTurn()
	require.NoError(t, err)
	require.Equal(t, "Aria", info.Combatant.Name())

	result, err := eng.PlayerAttack(player, "Bandit One", "")
	require.NoError(t, err)
	require.True(t, result.TargetDefeated)
	require.Len(t, sess.Order, 2)

	assert.Equal(t, "Bandit Two", eng.CurrentCombatant().Name())

	info, err = eng.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Round)
	assert.Equal(t, "Aria", info.Combatant.Name())
}

func TestEnemyTurn_AlwaysAttacksThePlayer(t *testing.T) {
	eng := newEngine(14, 9, 9, 5) // enemy rolls 10+1 vs AC 10, damage die 6
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 4)
	eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	result, err := eng.EnemyTurn(grik, player)
	require.NoError(t, err)

	assert.True(t, result.Hit)
	assert.Equal(t, 6, result.Damage)
	assert.Equal(t, 14, result.PlayerHP)
	assert.False(t, result.PlayerDefeated)
	assert.Equal(t, 14, player.HP.Current)
}

func TestEnemyTurn_ReportsPlayerDefeat(t *testing.T) {
	eng := newEngine(14, 9, 9, 5)
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 4)
	sess := eng.StartCombat(player, []*character.Sheet{grik}, "medium")
	player.HP.SetCurrent(3)

	result, err := eng.EnemyTurn(grik, player)
	require.NoError(t, err)

	assert.Equal(t, 0, result.PlayerHP)
	assert.True(t, result.PlayerDefeated)
	// Defeat never removes the player from the order.
	assert.Len(t, sess.Order, 2)

	status := eng.CheckStatus()
	assert.False(t, status.Active)
	assert.False(t, status.Victory)
	assert.Equal(t, "All players defeated", status.Message)
	assert.False(t, eng.Session().Active)
}

func TestCheckStatus_VictoryWhenLastEnemyFalls(t *testing.T) {
	eng := newEngine(14, 9, 9, 0)
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 2)
	eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	result, err := eng.PlayerAttack(player, "Grik", "")
	require.NoError(t, err)
	require.True(t, result.TargetDefeated)

	status := eng.CheckStatus()
	assert.False(t, status.Active)
	assert.True(t, status.Victory)
	assert.Equal(t, "All enemies defeated", status.Message)
	assert.False(t, eng.Session().Active)
}

func TestCheckStatus_PlayerDefeatOutranksEnemyDefeat(t *testing.T) {
	eng := newEngine(14, 9)
	player := testPlayer("Aria", 1)
	grik := testEnemy("Grik", 4)
	eng.StartCombat(player, []*character.Sheet{grik}, "medium")

	// Both sides at zero, as after a round of traded condition damage.
	player.HP.SetCurrent(0)
	grik.HP.SetCurrent(0)

	status := eng.CheckStatus()
	assert.False(t, status.Victory)
	assert.Equal(t, "All players defeated", status.Message)
}

func TestCheckStatus_OngoingReportsHeadcounts(t *testing.T) {
	eng := newEngine(14, 9, 4)
	player := testPlayer("Aria", 1)
	enemies := []*character.Sheet{testEnemy("Bandit One", 4), testEnemy("Bandit Two", 4)}
	eng.StartCombat(player, enemies, "medium")

	status := eng.CheckStatus()
	assert.True(t, status.Active)
	assert.Equal(t, 1, status.PlayersRemaining)
	assert.Equal(t, 2, status.EnemiesRemaining)
	assert.True(t, eng.Session().Active)
}

func TestCheckStatus_NoSessionReadsAsDefeat(t *testing.T) {
	// An empty combatant set has no living players, same as the terminal case.
	eng := newEngine()
	status := eng.CheckStatus()
	assert.False(t, status.Active)
	assert.False(t, status.Victory)
	assert.Equal(t, "All players defeated", status.Message)
}

func TestEndCombat_ConditionsSurviveUntilNextStart(t *testing.T) {
	eng := newEngine(14, 9, 14, 9)
	player := testPlayer("Aria", 1)

	sess := eng.StartCombat(player, []*character.Sheet{testEnemy("Grik", 4)}, "medium")
	playerID := sess.Player().ID
	_, err := eng.Conditions().Apply(playerID, "poisoned", 0)
	require.NoError(t, err)

	eng.EndCombat()
	assert.Nil(t, eng.Session())
	assert.True(t, eng.Conditions().Has(playerID, "poisoned"))

	eng.StartCombat(player, []*character.Sheet{testEnemy("Grak", 4)}, "medium")
	assert.False(t, eng.Conditions().Has(playerID, "poisoned"))
}

func TestSnapshot_CapturesOrderAndConditions(t *testing.T) {
	eng := newEngine(14, 9)
	player := testPlayer("Aria", 1)
	sess := eng.StartCombat(player, []*character.Sheet{testEnemy("Grik", 4)}, "medium")
	playerID := sess.Player().ID
	_, err := eng.Conditions().Apply(playerID, "poisoned", 0)
	require.NoError(t, err)

	snap := eng.Snapshot()

	assert.True(t, snap.Active)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 0, snap.TurnIndex)
	require.Len(t, snap.Order, 2)
	assert.Equal(t, "player", snap.Order[0].Kind)
	assert.Equal(t, "Aria", snap.Order[0].Name)
	assert.Equal(t, 15, snap.Order[0].Initiative)
	assert.Equal(t, character.HitPoints{Current: 20, Max: 20}, snap.Order[0].HP)
	assert.Equal(t, "enemy", snap.Order[1].Kind)

	require.Contains(t, snap.Conditions, playerID)
	assert.Equal(t, []condition.ActiveState{{ID: "poisoned", Remaining: 3}}, snap.Conditions[playerID])

	_, err = json.Marshal(snap)
	require.NoError(t, err)
}

func TestSnapshot_IdleEngine(t *testing.T) {
	snap := newEngine().Snapshot()

	assert.False(t, snap.Active)
	assert.Equal(t, 1, snap.Round)
	assert.Empty(t, snap.Order)
	assert.NotNil(t, snap.Conditions)
}

func TestPropertyStartCombat_OrderSortedStably(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "enemies")
		vals := rapid.SliceOfN(rapid.IntRange(0, 19), n+1, n+1).Draw(rt, "rolls")

		eng := newEngine(vals...)
		player := testPlayer("Aria", 1)
		enemies := make([]*character.Sheet, 0, n)
		for i := 0; i < n; i++ {
			enemies = append(enemies, testEnemy(fmt.Sprintf("Mob %d", i), 4))
		}

		sess := eng.StartCombat(player, enemies, "medium")
		if len(sess.Order) != n+1 {
			rt.Fatalf("order has %d entries, want %d", len(sess.Order), n+1)
		}

		joinIndex := make(map[*combat.Combatant]int, len(sess.Combatants))
		for i, c := range sess.Combatants {
			joinIndex[c] = i
		}
		for i := 1; i < len(sess.Order); i++ {
			prev, cur := sess.Order[i-1], sess.Order[i]
			if cur.Initiative > prev.Initiative {
				rt.Fatalf("order not descending at %d: %d before %d", i, prev.Initiative, cur.Initiative)
			}
			if cur.Initiative == prev.Initiative && joinIndex[cur] < joinIndex[prev] {
				rt.Fatalf("tie at initiative %d broke join order", cur.Initiative)
			}
		}
	})
}
