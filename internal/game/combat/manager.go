package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
	"github.com/emberfell/emberfell/internal/game/reward"
)

// Winner values reported when a combat ends.
const (
	WinnerPlayers   = "players"
	WinnerEnemies   = "enemies"
	WinnerUndecided = "undecided"
)

// Manager is the combat state machine: Idle until StartCombat, Active while
// turns execute, Ended once a side has no living members. It is the sole
// mutator of the rosters, round counter, and log; the Tracker and Resolver
// are collaborators it invokes, never concurrently. One Manager instance is
// one combat and must be confined to a single goroutine.
type Manager struct {
	cfg    config.CombatConfig
	src    dice.Source
	logger *zap.Logger

	players []*entity.Entity
	enemies []*entity.Entity
	// defeated collects enemies killed during the combat for reward
	// calculation; fled enemies are removed from the roster but never
	// defeated.
	defeated []*entity.Entity

	tracker  *Tracker
	resolver *Resolver
	calc     *reward.Calculator

	active  bool
	ended   bool
	winner  string
	current *entity.Entity
	log     []string
}

// NewManager builds an idle combat manager.
//
// Precondition: src and logger must be non-nil.
func NewManager(cfg config.CombatConfig, src dice.Source, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, src: src, logger: logger}
}

// StartCombat transitions Idle -> Active: stores the rosters, rolls the
// initiative order, and returns the first actor's name.
//
// Precondition: the manager is Idle; every entity is alive.
// Postcondition: Active; Round() == 1; the initiative order is fixed.
func (m *Manager) StartCombat(players, enemies []*entity.Entity) (string, error) {
	if m.active || m.ended {
		return "", fmt.Errorf("combat: already started")
	}
	if len(players) == 0 {
		return "", fmt.Errorf("combat: at least one player required")
	}

	m.players = append([]*entity.Entity(nil), players...)
	m.enemies = append([]*entity.Entity(nil), enemies...)
	m.resolver = NewResolver(m.cfg, m.src, m.logger)
	m.calc = reward.NewCalculator(m.src, m.logger)

	m.tracker = NewTracker(m.src, m.logger)
	m.tracker.Calculate(m.all())
	m.current = m.tracker.Current()
	m.active = true

	first := ""
	if m.current != nil {
		first = m.current.Name
	}
	m.appendLog(fmt.Sprintf("Combat begins: %d vs %d. %s acts first.",
		len(m.players), len(m.enemies), first))
	m.logger.Info("combat started",
		zap.Int("players", len(m.players)),
		zap.Int("enemies", len(m.enemies)),
		zap.Strings("initiative", m.tracker.Order()),
	)
	return first, nil
}

// ExecuteAction resolves the current actor's action and advances the combat.
// Gameplay failures return Success false without consuming the turn;
// configuration errors return a non-nil error and leave the combat Active.
//
// Postcondition: on CombatEnd the manager is Ended and Winner is set; when
// the players won, reward fields are populated.
func (m *Manager) ExecuteAction(action Action) (Result, error) {
	if !m.active || m.ended {
		return Result{Success: false, Message: "no active combat"}, nil
	}
	actor := m.current
	if actor == nil {
		return m.finish(Result{Success: true, Message: "nobody can act"}), nil
	}

	res, err := m.resolver.Resolve(action, actor, m.all())
	if err != nil {
		return Result{}, err
	}
	if !res.Success {
		// Failed actions consume nothing and do not advance the turn.
		return res, nil
	}
	m.appendLog(res.Message)

	if res.Fled {
		m.removeFromRosters(actor.UID)
	}

	if m.combatOver() {
		return m.finish(res), nil
	}
	return m.advance(res), nil
}

// advance moves to the next actor, running round-boundary turn-start
// processing, and re-checks the end condition afterwards since damage over
// time can kill.
func (m *Manager) advance(res Result) Result {
	next, newRound, msg := m.tracker.Advance(m.all())
	if newRound {
		for _, e := range m.all() {
			if e.IsAlive() {
				e.HandleTurnStart()
			}
		}
		if m.combatOver() {
			return m.finish(res)
		}
		if next != nil && !next.IsAlive() {
			next, _, msg = m.tracker.Advance(m.all())
		}
	}

	if next == nil {
		m.active = false
		m.ended = true
		m.winner = WinnerUndecided
		res.CombatEnd = true
		res.Winner = m.winner
		m.appendLog("Combat ends with no one left to act.")
		return res
	}

	m.current = next
	res.NextEntity = next.Name
	res.NewRound = newRound
	m.appendLog(msg)
	return res
}

// finish transitions Active -> Ended, decides the winner, and on a player
// victory rolls and distributes rewards.
func (m *Manager) finish(res Result) Result {
	m.active = false
	m.ended = true
	m.current = nil

	if anyAlive(m.players) {
		m.winner = WinnerPlayers
	} else {
		m.winner = WinnerEnemies
	}
	res.CombatEnd = true
	res.Winner = m.winner
	m.appendLog(fmt.Sprintf("Combat ends. Winner: %s.", m.winner))

	if m.winner == WinnerPlayers && len(m.defeated) > 0 {
		award := m.calc.Experience(m.defeated, m.players)
		loot := m.calc.Loot(m.defeated)
		dist := m.calc.Distribute(award, m.players)
		res.Experience = &award
		res.Loot = loot
		res.Distribution = &dist
		m.appendLog(fmt.Sprintf("The party gains %d experience each and %d loot drops.",
			award.PerPlayer, len(loot)))
	}

	m.logger.Info("combat ended",
		zap.String("winner", m.winner),
		zap.Int("rounds", m.tracker.Round()),
		zap.Int("defeated", len(m.defeated)),
	)
	return res
}

// combatOver reports whether either side has no living members, collecting
// newly dead enemies into the defeated list first.
func (m *Manager) combatOver() bool {
	for _, e := range m.enemies {
		if !e.IsAlive() && !containsUID(m.defeated, e.UID) {
			m.defeated = append(m.defeated, e)
		}
	}
	return !anyAlive(m.players) || !anyAlive(m.enemies)
}

// Active reports whether the combat is in progress.
func (m *Manager) Active() bool {
	return m.active
}

// Winner returns the winner once Ended, "" before.
func (m *Manager) Winner() string {
	return m.winner
}

// Round returns the current round number, 0 before StartCombat.
func (m *Manager) Round() int {
	if m.tracker == nil {
		return 0
	}
	return m.tracker.Round()
}

// Current returns the entity whose turn it is, nil outside an active combat.
func (m *Manager) Current() *entity.Entity {
	return m.current
}

// Players returns the current player roster.
func (m *Manager) Players() []*entity.Entity {
	return m.players
}

// Enemies returns the current enemy roster.
func (m *Manager) Enemies() []*entity.Entity {
	return m.enemies
}

// Statistics returns the per-combat statistics, nil before StartCombat.
func (m *Manager) Statistics() *Statistics {
	if m.resolver == nil {
		return nil
	}
	return m.resolver.Statistics()
}

// EntityStatus is one roster entry in a Summary.
type EntityStatus struct {
	Name          string
	ID            string
	UID           string
	CurrentHP     int
	MaxHP         int
	StatusEffects []string
}

// Summary is the read-only projection of the combat for UIs and telemetry.
type Summary struct {
	Active          bool
	Round           int
	Winner          string
	Players         []EntityStatus
	Enemies         []EntityStatus
	InitiativeOrder []string
	CurrentEntity   string
	Statistics      *Statistics
	// Log holds the most recent log entries, bounded by the configured tail.
	Log []string
}

// Summarize builds the current combat summary.
func (m *Manager) Summarize() Summary {
	s := Summary{
		Active:     m.active,
		Winner:     m.winner,
		Statistics: m.Statistics(),
	}
	if m.tracker != nil {
		s.Round = m.tracker.Round()
		s.InitiativeOrder = m.tracker.Order()
	}
	if m.current != nil {
		s.CurrentEntity = m.current.Name
	}
	for _, p := range m.players {
		s.Players = append(s.Players, statusOf(p))
	}
	for _, e := range m.enemies {
		s.Enemies = append(s.Enemies, statusOf(e))
	}
	tail := len(m.log) - m.cfg.LogTail
	if tail < 0 {
		tail = 0
	}
	s.Log = append([]string(nil), m.log[tail:]...)
	return s
}

func statusOf(e *entity.Entity) EntityStatus {
	st := EntityStatus{
		Name:      e.Name,
		ID:        e.ID,
		UID:       e.UID,
		CurrentHP: e.CurrentHP,
		MaxHP:     e.MaxHP,
	}
	for _, inst := range e.ActiveStatusEffects() {
		st.StatusEffects = append(st.StatusEffects, inst.Def.ID)
	}
	return st
}

func (m *Manager) all() []*entity.Entity {
	all := make([]*entity.Entity, 0, len(m.players)+len(m.enemies))
	all = append(all, m.players...)
	all = append(all, m.enemies...)
	return all
}

func (m *Manager) removeFromRosters(uid string) {
	m.players = removeUID(m.players, uid)
	m.enemies = removeUID(m.enemies, uid)
}

func (m *Manager) appendLog(msg string) {
	if msg != "" {
		m.log = append(m.log, msg)
	}
}

func removeUID(list []*entity.Entity, uid string) []*entity.Entity {
	for i, e := range list {
		if e.UID == uid {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func anyAlive(list []*entity.Entity) bool {
	for _, e := range list {
		if e.IsAlive() {
			return true
		}
	}
	return false
}

func containsUID(list []*entity.Entity, uid string) bool {
	for _, e := range list {
		if e.UID == uid {
			return true
		}
	}
	return false
}
