package condition_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/condition"
)

func newTracker() *condition.Tracker {
	return condition.NewTracker(condition.DefaultRegistry())
}

func sheetWithHP(current, max int) *character.Sheet {
	return &character.Sheet{Name: "Subject", HP: character.HitPoints{Current: current, Max: max}}
}

func TestTracker_Apply_DefaultDuration(t *testing.T) {
	tr := newTracker()
	ac, err := tr.Apply("c1", "poisoned", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, ac.Remaining)
	assert.True(t, tr.Has("c1", "poisoned"))
}

func TestTracker_Apply_CustomDuration(t *testing.T) {
	tr := newTracker()
	ac, err := tr.Apply("c1", "poisoned", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, ac.Remaining)
}

func TestTracker_Apply_Unknown(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "petrified", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, condition.ErrUnknownCondition))
}

func TestTracker_Apply_RefreshesWithoutStacking(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 3)
	require.NoError(t, err)

	tr.Process("c1", sheetWithHP(10, 10))

	active := tr.ActiveFor("c1")
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].Remaining)

	_, err = tr.Apply("c1", "poisoned", 3)
	require.NoError(t, err)

	active = tr.ActiveFor("c1")
	require.Len(t, active, 1, "re-applying must not create a duplicate instance")
	assert.Equal(t, 3, active[0].Remaining, "re-applying must refresh the remaining duration")
}

func TestTracker_Remove(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "blessed", 0)
	require.NoError(t, err)
	tr.Remove("c1", "blessed")
	assert.False(t, tr.Has("c1", "blessed"))
}

func TestTracker_Remove_NotPresent_NoOp(t *testing.T) {
	tr := newTracker()
	tr.Remove("c1", "blessed") // must not panic
	assert.False(t, tr.Has("c1", "blessed"))
}

func TestTracker_Process_DamageAndDecrement(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 3)
	require.NoError(t, err)

	sheet := sheetWithHP(10, 10)
	report := tr.Process("c1", sheet)

	assert.Equal(t, 1, report.DamageTaken)
	assert.Equal(t, []string{"poisoned: 1 damage"}, report.Effects)
	assert.Empty(t, report.Removed)
	assert.Equal(t, 9, sheet.HP.Current)

	active := tr.ActiveFor("c1")
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].Remaining)
}

func TestTracker_Process_DamageOnExpiringTick(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "bleeding", 1)
	require.NoError(t, err)

	sheet := sheetWithHP(10, 10)
	report := tr.Process("c1", sheet)

	assert.Equal(t, 2, report.DamageTaken, "the expiring tick still deals its damage")
	assert.Equal(t, []string{"bleeding: 2 damage", "bleeding expired"}, report.Effects)
	assert.Equal(t, []string{"bleeding"}, report.Removed)
	assert.Equal(t, 8, sheet.HP.Current)
	assert.False(t, tr.Has("c1", "bleeding"))
}

func TestTracker_Process_FloorsHPAtZero(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "bleeding", 2)
	require.NoError(t, err)

	sheet := sheetWithHP(1, 10)
	report := tr.Process("c1", sheet)

	assert.Equal(t, 2, report.DamageTaken)
	assert.Equal(t, 0, sheet.HP.Current)
}

func TestTracker_Process_MultipleConditions(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 2)
	require.NoError(t, err)
	_, err = tr.Apply("c1", "bleeding", 2)
	require.NoError(t, err)

	sheet := sheetWithHP(10, 10)
	report := tr.Process("c1", sheet)

	assert.Equal(t, 3, report.DamageTaken)
	assert.Equal(t, []string{"poisoned: 1 damage", "bleeding: 2 damage"}, report.Effects)
	assert.Equal(t, 7, sheet.HP.Current)
}

func TestTracker_Process_NonDamagingConditionStillExpires(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "stunned", 0)
	require.NoError(t, err)

	report := tr.Process("c1", sheetWithHP(10, 10))

	assert.Equal(t, 0, report.DamageTaken)
	assert.Equal(t, []string{"stunned expired"}, report.Effects)
	assert.Equal(t, []string{"stunned"}, report.Removed)
}

func TestTracker_Process_UnknownCombatant_EmptyReport(t *testing.T) {
	tr := newTracker()
	report := tr.Process("ghost", sheetWithHP(10, 10))
	assert.Empty(t, report.Effects)
	assert.Zero(t, report.DamageTaken)
	assert.Empty(t, report.Removed)
}

func TestTracker_IsolatesCombatants(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 3)
	require.NoError(t, err)
	_, err = tr.Apply("c2", "blessed", 3)
	require.NoError(t, err)

	assert.True(t, tr.Has("c1", "poisoned"))
	assert.False(t, tr.Has("c2", "poisoned"))

	sheet := sheetWithHP(10, 10)
	tr.Process("c2", sheet)
	assert.Equal(t, 10, sheet.HP.Current, "c1's poison must not tick on c2's turn")
}

func TestTracker_Reset(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 3)
	require.NoError(t, err)
	_, err = tr.Apply("c2", "cursed", 3)
	require.NoError(t, err)

	tr.Reset()

	assert.False(t, tr.Has("c1", "poisoned"))
	assert.False(t, tr.Has("c2", "cursed"))
}

func TestTracker_SnapshotRestore_RoundTrip(t *testing.T) {
	tr := newTracker()
	_, err := tr.Apply("c1", "poisoned", 2)
	require.NoError(t, err)
	_, err = tr.Apply("c1", "blessed", 3)
	require.NoError(t, err)

	snap := tr.Snapshot()

	restored := newTracker()
	require.NoError(t, restored.Restore(snap))

	active := restored.ActiveFor("c1")
	require.Len(t, active, 2)
	assert.Equal(t, "poisoned", active[0].Def.ID)
	assert.Equal(t, 2, active[0].Remaining)
	assert.Equal(t, "blessed", active[1].Def.ID)
	assert.Equal(t, 3, active[1].Remaining)
}

func TestTracker_Restore_UnknownCondition(t *testing.T) {
	tr := newTracker()
	err := tr.Restore(map[string][]condition.ActiveState{
		"c1": {{ID: "petrified", Remaining: 2}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, condition.ErrUnknownCondition))
}

// Property: a condition applied with duration d survives exactly d-1 full
// ticks and is removed on the d-th, never leaving a non-positive duration
// behind.
func TestPropertyTracker_ExpiresExactlyOnSchedule(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := rapid.IntRange(1, 10).Draw(rt, "duration")
		tr := newTracker()
		if _, err := tr.Apply("c1", "poisoned", duration); err != nil {
			rt.Fatal(err)
		}

		sheet := sheetWithHP(1000, 1000)
		for tick := 1; tick <= duration; tick++ {
			report := tr.Process("c1", sheet)
			if tick < duration {
				if len(report.Removed) != 0 {
					rt.Fatalf("tick %d of %d removed %v early", tick, duration, report.Removed)
				}
			} else if len(report.Removed) != 1 {
				rt.Fatalf("tick %d of %d should have expired the condition", tick, duration)
			}
			for _, ac := range tr.ActiveFor("c1") {
				if ac.Remaining <= 0 {
					rt.Fatalf("dangling instance with Remaining %d after tick %d", ac.Remaining, tick)
				}
			}
		}
		if tr.Has("c1", "poisoned") {
			rt.Fatalf("condition survived past its duration")
		}
	})
}
