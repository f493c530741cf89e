package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/combat"
	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
	"github.com/emberfell/emberfell/internal/game/reward"
)

func newManager(src dice.Source) *combat.Manager {
	return combat.NewManager(config.Default().Combat, src, zap.NewNop())
}

func firstAlive(list []*entity.Entity) *entity.Entity {
	for _, e := range list {
		if e.IsAlive() {
			return e
		}
	}
	return nil
}

func TestExecuteAction_BeforeStart(t *testing.T) {
	m := newManager(&scriptedSource{})
	res, err := m.ExecuteAction(combat.Action{Type: combat.ActionAttack})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestStartCombat_FixesInitiativeAndFirstActor(t *testing.T) {
	src := &scriptedSource{ints: []int{10, 0}}
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := newManager(src)
	first, err := m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	require.NoError(t, err)
	assert.Equal(t, "Warrior", first)
	assert.True(t, m.Active())
	assert.Equal(t, 1, m.Round())

	_, err = m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	assert.Error(t, err, "a manager runs one combat")
}

func TestExecuteAction_NoEnemiesEndsImmediately(t *testing.T) {
	src := &scriptedSource{}
	deps := testDeps(t, src)
	c := spawn(t, deps, "cleric", entity.TypePlayer)

	m := newManager(src)
	_, err := m.StartCombat([]*entity.Entity{c}, nil)
	require.NoError(t, err)

	res, err := m.ExecuteAction(combat.Action{
		Type:    combat.ActionSkill,
		SkillID: "mend",
		Targets: []string{c.UID},
	})
	require.NoError(t, err)
	assert.True(t, res.CombatEnd)
	assert.Equal(t, combat.WinnerPlayers, res.Winner)
	assert.Nil(t, res.Experience, "nothing was defeated")
	assert.False(t, m.Active())
}

func TestExecuteAction_FullBattleWithRewards(t *testing.T) {
	src := &scriptedSource{}
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := newManager(src)
	_, err := m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	require.NoError(t, err)

	var final combat.Result
	for range 300 {
		actor := m.Current()
		require.NotNil(t, actor)
		var target *entity.Entity
		if actor.Type == entity.TypePlayer {
			target = firstAlive(m.Enemies())
		} else {
			target = firstAlive(m.Players())
		}
		res, err := m.ExecuteAction(combat.Action{Type: combat.ActionAttack, Target: target.UID})
		require.NoError(t, err)
		require.True(t, res.Success)
		if res.CombatEnd {
			final = res
			break
		}
	}

	require.True(t, final.CombatEnd, "battle must terminate")
	assert.Equal(t, combat.WinnerPlayers, final.Winner)
	assert.False(t, g.IsAlive())
	assert.True(t, w.IsAlive())

	require.NotNil(t, final.Experience)
	assert.Equal(t, 50, final.Experience.Total)
	assert.Equal(t, 50, final.Experience.PerPlayer)
	assert.Equal(t, 50, w.XP)

	// Loot chance 1.0 always drops the ear; gold is always appended.
	require.Len(t, final.Loot, 2)
	assert.Equal(t, "goblin_ear", final.Loot[0].ItemID)
	assert.Equal(t, reward.GoldItemID, final.Loot[1].ItemID)
	assert.Equal(t, 8, final.Loot[1].Quantity) // 10 * 0.8 factor floor

	require.NotNil(t, final.Distribution)
	assert.Equal(t, 50, final.Distribution.PerPlayer)
	assert.Empty(t, final.Distribution.LevelUps)

	stats := m.Statistics()
	assert.Equal(t, g.MaxHP, stats.DamageDealt[w.UID])
}

func TestExecuteAction_StunnedTurnIsConsumed(t *testing.T) {
	src := &scriptedSource{}
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := newManager(src)
	_, err := m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	require.NoError(t, err)
	require.NoError(t, g.AddStatusEffect("stun", 1, w.UID, nil))

	// Warrior acts, goblin is next.
	res, err := m.ExecuteAction(combat.Action{Type: combat.ActionAttack, Target: g.UID})
	require.NoError(t, err)
	assert.Equal(t, "Goblin", res.NextEntity)

	// The goblin's turn is consumed without an action; the round wraps and
	// the stun expires at its turn start.
	res, err = m.ExecuteAction(combat.Action{Type: combat.ActionAttack, Target: w.UID})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.True(t, res.NewRound)
	assert.Equal(t, "Warrior", res.NextEntity)
	assert.True(t, g.CanAct)
	assert.False(t, g.HasStatusEffect("stun"))
}

func TestExecuteAction_FleeRemovesFromRoster(t *testing.T) {
	src := &scriptedSource{ints: []int{15, 10, 0}}
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	c := spawn(t, deps, "cleric", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := newManager(src)
	first, err := m.StartCombat([]*entity.Entity{w, c}, []*entity.Entity{g})
	require.NoError(t, err)
	require.Equal(t, "Warrior", first)

	res, err := m.ExecuteAction(combat.Action{Type: combat.ActionFlee})
	require.NoError(t, err)
	assert.True(t, res.Fled)
	assert.False(t, res.CombatEnd)
	assert.Len(t, m.Players(), 1)
	assert.Equal(t, "Cleric", m.Players()[0].Name)
}

func TestSummarize(t *testing.T) {
	src := &scriptedSource{ints: []int{10, 0}}
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := newManager(src)
	_, err := m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	require.NoError(t, err)
	require.NoError(t, g.AddStatusEffect("burn", 2, w.UID, nil))

	s := m.Summarize()
	assert.True(t, s.Active)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, "Warrior", s.CurrentEntity)
	assert.Equal(t, []string{"Warrior", "Goblin"}, s.InitiativeOrder)
	require.Len(t, s.Enemies, 1)
	assert.Equal(t, []string{"burn"}, s.Enemies[0].StatusEffects)
	assert.NotEmpty(t, s.Log)
	assert.LessOrEqual(t, len(s.Log), config.Default().Combat.LogTail)
}

// runEpisode plays one seeded warrior-vs-goblin combat with an always-attack
// policy and reports the observable outcome.
func runEpisode(t *testing.T, seed int64) (string, int, []string) {
	t.Helper()
	src := dice.NewSeededSource(seed)
	deps := testDeps(t, src)
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	m := combat.NewManager(config.Default().Combat, src, zap.NewNop())
	_, err := m.StartCombat([]*entity.Entity{w}, []*entity.Entity{g})
	require.NoError(t, err)

	for range 2000 {
		actor := m.Current()
		require.NotNil(t, actor)
		var target *entity.Entity
		if actor.Type == entity.TypePlayer {
			target = firstAlive(m.Enemies())
		} else {
			target = firstAlive(m.Players())
		}
		res, err := m.ExecuteAction(combat.Action{Type: combat.ActionAttack, Target: target.UID})
		require.NoError(t, err)
		if res.CombatEnd {
			break
		}
	}
	s := m.Summarize()
	return m.Winner(), s.Round, s.Log
}

func TestSeededEpisode_IsReproducible(t *testing.T) {
	winner1, rounds1, log1 := runEpisode(t, 1337)
	winner2, rounds2, log2 := runEpisode(t, 1337)

	assert.NotEmpty(t, winner1)
	assert.Equal(t, winner1, winner2)
	assert.Equal(t, rounds1, rounds2)
	assert.Equal(t, log1, log2)
}
