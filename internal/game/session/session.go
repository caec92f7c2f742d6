// Package session ties the live subsystems of one playthrough together:
// the state manager, the combat engine, and the reputation and achievement
// trackers. A Campaign mediates between the live trackers and the plain
// GameState snapshot the save stores persist.
package session

import (
	"time"

	"github.com/emberfall/gamemaster/internal/game/achievement"
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/reputation"
	"github.com/emberfall/gamemaster/internal/game/state"
)

// Campaign owns the live subsystems of one playthrough. The state manager
// holds the persistent snapshot; the trackers and the engine hold live
// state that Checkpoint folds back into the snapshot before every save.
// Not safe for concurrent use; one campaign belongs to one session.
type Campaign struct {
	states       *state.Manager
	engine       *combat.Engine
	reputation   *reputation.Tracker
	achievements *achievement.Tracker

	// lastMark is the instant playtime was last folded into the state.
	lastMark time.Time
}

// NewCampaign assembles a Campaign around the manager and engine with fresh
// reputation and achievement trackers.
// Precondition: states and engine must be non-nil.
func NewCampaign(states *state.Manager, engine *combat.Engine) *Campaign {
	return &Campaign{
		states:       states,
		engine:       engine,
		reputation:   reputation.NewTracker(),
		achievements: achievement.NewTracker(),
	}
}

// States returns the campaign's state manager.
func (c *Campaign) States() *state.Manager { return c.states }

// Engine returns the campaign's combat engine.
func (c *Campaign) Engine() *combat.Engine { return c.engine }

// Reputation returns the live reputation tracker.
func (c *Campaign) Reputation() *reputation.Tracker { return c.reputation }

// Achievements returns the live achievement tracker.
func (c *Campaign) Achievements() *achievement.Tracker { return c.achievements }

// Begin starts a new campaign around the character sheet: a fresh initial
// state becomes current, both trackers reset, any running encounter closes,
// and the playtime clock restarts.
//
// Precondition: sheet must not be nil.
// Postcondition: States().Current() returns the new state.
func (c *Campaign) Begin(sheet *character.Sheet) *state.GameState {
	gs := c.states.NewInitialState(sheet)
	c.reputation.Restore(reputation.State{})
	c.achievements.Restore(achievement.State{})
	c.engine.EndCombat()
	c.engine.Conditions().Reset()
	c.lastMark = time.Now()
	return gs
}

// Checkpoint folds the live subsystems into the current state so it is
// complete for persistence: both tracker snapshots, the encounter snapshot
// when a fight is running, and the playtime accrued since the last
// checkpoint. Returns state.ErrNoState before Begin or Restore.
//
// Postcondition: the returned state is the manager's current state with
// Reputation, Achievements, CombatActive, Combat, and PlaytimeMinutes
// refreshed.
func (c *Campaign) Checkpoint() (*state.GameState, error) {
	gs := c.states.Current()
	if gs == nil {
		return nil, state.ErrNoState
	}

	gs.Reputation = c.reputation.State()
	gs.Achievements = c.achievements.State()

	snap := c.engine.Snapshot()
	gs.CombatActive = snap.Active
	if snap.Active {
		gs.Combat = &snap
	} else {
		gs.Combat = nil
	}

	c.accruePlaytime(gs, time.Now())
	return gs, nil
}

// accruePlaytime adds the whole minutes elapsed since lastMark to the state
// and advances the mark by exactly those minutes, so the sub-minute
// remainder counts toward the next checkpoint.
func (c *Campaign) accruePlaytime(gs *state.GameState, now time.Time) {
	if c.lastMark.IsZero() {
		c.lastMark = now
		return
	}
	minutes := int(now.Sub(c.lastMark) / time.Minute)
	if minutes <= 0 {
		return
	}
	gs.PlaytimeMinutes += minutes
	c.lastMark = c.lastMark.Add(time.Duration(minutes) * time.Minute)
}

// Restore makes a loaded state current and rehydrates the trackers from it.
// Any running encounter closes; a combat snapshot carried in the save stays
// on the state as narrative context, but the encounter itself does not
// resume.
//
// Precondition: gs must not be nil.
func (c *Campaign) Restore(gs *state.GameState) {
	c.states.Set(gs)
	c.reputation.Restore(gs.Reputation)
	c.achievements.Restore(gs.Achievements)
	c.engine.EndCombat()
	c.engine.Conditions().Reset()
	c.lastMark = time.Now()
}
