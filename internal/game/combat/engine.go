package combat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/condition"
	"github.com/emberfall/gamemaster/internal/game/dice"
	"github.com/emberfall/gamemaster/internal/game/enemy"
)

var (
	// ErrNoActiveSession is returned by turn and attack operations outside an encounter.
	ErrNoActiveSession = errors.New("no active combat session")
	// ErrTargetNotFound is returned when an attack names no living enemy.
	ErrTargetNotFound = errors.New("target not found")
)

// Session is the live state of one encounter. Every field is scoped to the
// owning Engine; two engines never share a session.
type Session struct {
	Round  int
	Active bool
	// Order is the initiative order, highest first. Defeated enemies are
	// removed from it mid-round without adjusting the turn index.
	Order []*Combatant
	// Combatants is the participant set in join order, player first.
	Combatants []*Combatant

	turnIndex int
}

// Player returns the player-side combatant, or nil if the session has none.
func (s *Session) Player() *Combatant {
	for _, c := range s.Combatants {
		if c.Kind == KindPlayer {
			return c
		}
	}
	return nil
}

// Enemies returns the enemy-side combatants still in the session.
func (s *Session) Enemies() []*Combatant {
	var out []*Combatant
	for _, c := range s.Combatants {
		if c.Kind == KindEnemy {
			out = append(out, c)
		}
	}
	return out
}

// Engine drives one encounter at a time. It owns its condition tracker and
// session; run concurrent encounters on separate Engine instances. Methods
// are not safe for concurrent use on a single Engine.
type Engine struct {
	roller     *dice.Roller
	conditions *condition.Tracker
	logger     *zap.Logger
	session    *Session
}

// NewEngine creates an idle Engine with a fresh condition tracker over reg.
// Precondition: roller, reg, and logger must be non-nil.
func NewEngine(roller *dice.Roller, reg *condition.Registry, logger *zap.Logger) *Engine {
	return &Engine{
		roller:     roller,
		conditions: condition.NewTracker(reg),
		logger:     logger,
	}
}

// Conditions returns the engine's condition tracker. The tracker keys on
// combatant IDs assigned by StartCombat.
func (e *Engine) Conditions() *condition.Tracker { return e.conditions }

// Session returns the live session, or nil outside an encounter.
func (e *Engine) Session() *Session { return e.session }

// StartCombat opens an encounter: enemies are rescaled against the player's
// level, every prior condition is dropped, and each combatant rolls
// 1d20 + dexterity modifier for initiative. The order sorts descending with
// ties keeping join order, the player joining first. Starting a new encounter
// replaces any session still active.
//
// Precondition: player must not be nil.
// Postcondition: the returned session is Active at round 1 with the turn on
// the first entry in the order.
func (e *Engine) StartCombat(player *character.Sheet, enemies []*character.Sheet, difficulty string) *Session {
	enemy.ScaleForEncounter(enemies, player.Level, difficulty)
	e.conditions.Reset()

	combatants := make([]*Combatant, 0, len(enemies)+1)
	combatants = append(combatants, &Combatant{ID: uuid.NewString(), Kind: KindPlayer, Sheet: player})
	for _, sheet := range enemies {
		combatants = append(combatants, &Combatant{ID: uuid.NewString(), Kind: KindEnemy, Sheet: sheet})
	}

	RollInitiative(combatants, e.roller)

	order := make([]*Combatant, len(combatants))
	copy(order, combatants)
	sortByInitiativeDesc(order)

	e.session = &Session{
		Round:      1,
		Active:     true,
		Order:      order,
		Combatants: combatants,
	}

	e.logger.Info("combat started",
		zap.String("difficulty", difficulty),
		zap.Int("enemies", len(enemies)),
		zap.String("first", order[0].Name()),
	)
	return e.session
}

// CurrentCombatant returns the combatant whose turn it is, or nil when no
// session is active, the order is empty, or a removal has left the turn index
// past the end of the order (the next NextTurn wrap heals the index).
func (e *Engine) CurrentCombatant() *Combatant {
	s := e.session
	if s == nil || !s.Active || s.turnIndex >= len(s.Order) {
		return nil
	}
	return s.Order[s.turnIndex]
}

// TurnInfo reports whose turn begins after an advance.
type TurnInfo struct {
	Round int
	Turn  int // 1-based position in the initiative order
	// Combatant is the new current actor; nil if the order has emptied.
	Combatant *Combatant
}

// NextTurn advances the rotation, wrapping to a new round past the end of the
// order. The index is not revalidated after mid-round removals, so removing
// an entry ahead of the current one makes the rotation skip a turn.
func (e *Engine) NextTurn() (TurnInfo, error) {
	s := e.session
	if s == nil || !s.Active {
		return TurnInfo{}, ErrNoActiveSession
	}

	s.turnIndex++
	if s.turnIndex >= len(s.Order) {
		s.turnIndex = 0
		s.Round++
	}

	info := TurnInfo{Round: s.Round, Turn: s.turnIndex + 1, Combatant: e.CurrentCombatant()}
	if info.Combatant != nil {
		e.logger.Debug("turn advanced",
			zap.Int("round", info.Round),
			zap.Int("turn", info.Turn),
			zap.String("combatant", info.Combatant.Name()),
		)
	}
	return info, nil
}

// PlayerAttackResult is an attack resolution plus its encounter side effects.
type PlayerAttackResult struct {
	AttackResult
	TargetDefeated bool
}

// PlayerAttack resolves the player's attack against the first living enemy
// whose name matches targetName. On a hit the damage comes off the target's
// hit points, floored at zero; a target brought to zero is removed from both
// the combatant set and the initiative order, leaving the turn index alone.
func (e *Engine) PlayerAttack(player *character.Sheet, targetName, weapon string) (PlayerAttackResult, error) {
	s := e.session
	if s == nil || !s.Active {
		return PlayerAttackResult{}, ErrNoActiveSession
	}

	var target *Combatant
	for _, c := range s.Combatants {
		if c.Kind == KindEnemy && !c.IsDown() && c.Sheet.Name == targetName {
			target = c
			break
		}
	}
	if target == nil {
		return PlayerAttackResult{}, fmt.Errorf("%w: %q", ErrTargetNotFound, targetName)
	}

	result := PlayerAttackResult{AttackResult: ResolveAttack(e.roller, player, target.Sheet, weapon)}
	if result.Hit && result.Damage > 0 {
		target.Sheet.HP.Damage(result.Damage)
		if target.Sheet.HP.Current == 0 {
			result.TargetDefeated = true
			s.remove(target)
		}
	}

	e.logger.Debug("player attack",
		zap.String("target", targetName),
		zap.Bool("hit", result.Hit),
		zap.Bool("critical", result.Critical),
		zap.Int("damage", result.Damage),
		zap.Bool("defeated", result.TargetDefeated),
	)
	return result, nil
}

// EnemyTurnResult is an enemy attack resolution plus its encounter side effects.
type EnemyTurnResult struct {
	AttackResult
	PlayerHP       int
	PlayerDefeated bool
}

// EnemyTurn runs an enemy's action: it always attacks the player. Damage
// comes off the player's hit points, floored at zero. The player is never
// removed from the order; defeat is reported by CheckStatus.
func (e *Engine) EnemyTurn(attacker, player *character.Sheet) (EnemyTurnResult, error) {
	s := e.session
	if s == nil || !s.Active {
		return EnemyTurnResult{}, ErrNoActiveSession
	}

	result := EnemyTurnResult{AttackResult: ResolveAttack(e.roller, attacker, player, "")}
	if result.Hit && result.Damage > 0 {
		player.HP.Damage(result.Damage)
		result.PlayerDefeated = player.HP.Current == 0
	}
	result.PlayerHP = player.HP.Current

	e.logger.Debug("enemy attack",
		zap.String("attacker", attacker.Name),
		zap.Bool("hit", result.Hit),
		zap.Int("damage", result.Damage),
		zap.Int("player_hp", result.PlayerHP),
	)
	return result, nil
}

// StatusReport is the verdict of CheckStatus.
type StatusReport struct {
	Active           bool
	Victory          bool
	Message          string
	PlayersRemaining int
	EnemiesRemaining int
}

// CheckStatus inspects the combatant set for a terminal outcome. The player
// side is checked first, so a round that wipes both sides is a defeat. On
// either terminal outcome the session deactivates; otherwise the report
// carries the remaining headcounts.
func (e *Engine) CheckStatus() StatusReport {
	var players, enemies []*Combatant
	if s := e.session; s != nil {
		for _, c := range s.Combatants {
			if c.Kind == KindPlayer {
				players = append(players, c)
			} else {
				enemies = append(enemies, c)
			}
		}
	}

	if len(players) == 0 || allDown(players) {
		e.deactivate(false)
		return StatusReport{Victory: false, Message: "All players defeated"}
	}
	if len(enemies) == 0 || allDown(enemies) {
		e.deactivate(true)
		return StatusReport{Victory: true, Message: "All enemies defeated"}
	}
	return StatusReport{
		Active:           true,
		PlayersRemaining: len(players),
		EnemiesRemaining: len(enemies),
	}
}

// EndCombat force-closes the session regardless of outcome. Active conditions
// survive until the next StartCombat drops them.
func (e *Engine) EndCombat() {
	if e.session != nil {
		e.logger.Info("combat ended", zap.Int("round", e.session.Round))
	}
	e.session = nil
}

// CombatantState is the persistence form of one initiative entry.
type CombatantState struct {
	ID         string              `json:"id"`
	Kind       string              `json:"kind"`
	Name       string              `json:"name"`
	Initiative int                 `json:"initiative"`
	HP         character.HitPoints `json:"hp"`
}

// SessionState is the persistence form of the engine's mutable state.
type SessionState struct {
	Active     bool                               `json:"active"`
	Round      int                                `json:"round"`
	TurnIndex  int                                `json:"turn_index"`
	Order      []CombatantState                   `json:"order"`
	Conditions map[string][]condition.ActiveState `json:"conditions"`
}

// Snapshot renders the round and turn counters, initiative order, and active
// conditions as plain nested data. Outside an encounter it reports an
// inactive round-1 state with an empty order.
func (e *Engine) Snapshot() SessionState {
	state := SessionState{
		Round:      1,
		Order:      []CombatantState{},
		Conditions: e.conditions.Snapshot(),
	}
	s := e.session
	if s == nil {
		return state
	}

	state.Active = s.Active
	state.Round = s.Round
	state.TurnIndex = s.turnIndex
	for _, c := range s.Order {
		state.Order = append(state.Order, CombatantState{
			ID:         c.ID,
			Kind:       c.Kind.String(),
			Name:       c.Sheet.Name,
			Initiative: c.Initiative,
			HP:         c.Sheet.HP,
		})
	}
	return state
}

// remove drops the combatant from both session lists by identity.
func (s *Session) remove(target *Combatant) {
	s.Combatants = removeCombatant(s.Combatants, target)
	s.Order = removeCombatant(s.Order, target)
}

func removeCombatant(list []*Combatant, target *Combatant) []*Combatant {
	out := list[:0]
	for _, c := range list {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func allDown(list []*Combatant) bool {
	for _, c := range list {
		if !c.IsDown() {
			return false
		}
	}
	return true
}

func (e *Engine) deactivate(victory bool) {
	if e.session != nil && e.session.Active {
		e.session.Active = false
		e.logger.Info("combat resolved", zap.Bool("victory", victory))
	}
}
