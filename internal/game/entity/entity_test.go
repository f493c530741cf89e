package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// scriptedSource plays back queued rolls, then zeroes. Deterministic tests
// script the exact rolls they need.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

const (
	strikeYAML = `
id: strike
name: Strike
cost:
  type: stamina
  amount: 5
target: enemy
effects:
  - type: damage
    damage_type: physical
    base_value: weapon_damage
    scaling_attribute: strength
    scaling_formula: base + attribute_bonus * 2
`
	fireballYAML = `
id: fireball
name: Fireball
cost:
  type: mana
  amount: 10
target: all_enemies
effects:
  - type: damage
    damage_type: fire
    base_value: 10
    scaling_attribute: intelligence
    scaling_formula: base + attribute_bonus * 3
    secondary_targets_modifier: 0.5
`
	mendYAML = `
id: mend
name: Mend
cost:
  type: mana
  amount: 8
target: ally
effects:
  - type: healing
    base_value: 8
    scaling_formula: base + attribute_bonus * 2
`
	barrierYAML = `
id: barrier
name: Barrier
cost:
  type: mana
  amount: 12
target: ally
effects:
  - type: shield
    base_value: 10
    scaling_formula: base + attribute_bonus * 4
    duration: 2
`
	poisonStrikeYAML = `
id: poison_strike
name: Poison Strike
cost:
  type: stamina
  amount: 8
target: enemy
effects:
  - type: damage
    damage_type: physical
    base_value: weapon_damage
    scaling_formula: base
  - type: status
    status_effect: poison
    chance: 0.5
    duration: 2
`
	stunYAML = `
id: stun
name: Stunned
tags: [prevent_actions]
`
	poisonYAML = `
id: poison
name: Poisoned
tags: [damage_over_time]
damage_per_turn: 4
damage_type: magical
`
	slowYAML = `
id: slow
name: Slowed
tags: [reduce_initiative]
initiative_modifier: -3
`
	shieldYAML = `
id: shield
name: Shielded
tags: [shield]
`
	warriorYAML = `
id: warrior
name: Warrior
level: 1
class: warrior
attributes:
  strength: 14
  dexterity: 12
  intelligence: 8
  constitution: 12
  wisdom: 10
defenses:
  armor: 5
  magic_resistance: 2
resources:
  max_stamina: 100
known_skills: [strike, poison_strike]
growth_modifiers:
  strength: 1
`
	mageYAML = `
id: mage
name: Mage
level: 1
class: mage
attributes:
  strength: 8
  dexterity: 10
  intelligence: 16
  constitution: 8
  wisdom: 12
defenses:
  armor: 1
  magic_resistance: 6
resources:
  max_mana: 50
known_skills: [fireball, mend, barrier]
`
	goblinYAML = `
id: goblin
name: Goblin
level: 1
creature_type: humanoid
behavior: melee
attributes:
  strength: 10
  dexterity: 12
  intelligence: 6
  constitution: 6
  wisdom: 6
defenses:
  armor: 5
  magic_resistance: 0
resources:
  max_stamina: 40
known_skills: [strike]
resistances:
  fire: 0.5
vulnerabilities:
  holy: 0.5
experience_reward: 50
gold_reward: 10
loot:
  - item: goblin_ear
    chance: 0.75
    min_quantity: 1
    max_quantity: 3
`
)

func testLibrary(t *testing.T) *definitions.Library {
	t.Helper()
	var skills []*definitions.Skill
	for _, y := range []string{strikeYAML, fireballYAML, mendYAML, barrierYAML, poisonStrikeYAML} {
		sk, err := definitions.LoadSkillFromBytes([]byte(y))
		require.NoError(t, err)
		skills = append(skills, sk)
	}
	var effects []*definitions.StatusEffect
	for _, y := range []string{stunYAML, poisonYAML, slowYAML, shieldYAML} {
		eff, err := definitions.LoadStatusEffectFromBytes([]byte(y))
		require.NoError(t, err)
		effects = append(effects, eff)
	}
	var templates []*definitions.Template
	for _, y := range []string{warriorYAML, mageYAML, goblinYAML} {
		tmpl, err := definitions.LoadTemplateFromBytes([]byte(y))
		require.NoError(t, err)
		templates = append(templates, tmpl)
	}
	return definitions.NewLibrary(skills, effects, templates)
}

func testDeps(t *testing.T, src *scriptedSource) entity.Deps {
	t.Helper()
	cfg := config.Default()
	return entity.Deps{
		Library:     testLibrary(t),
		Source:      src,
		Logger:      zap.NewNop(),
		Combat:      cfg.Combat,
		Progression: cfg.Progression,
		Regen:       cfg.Regen,
	}
}

func spawn(t *testing.T, deps entity.Deps, templateID string, typ entity.Type) *entity.Entity {
	t.Helper()
	tmpl, err := deps.Library.(*definitions.Library).Template(templateID)
	require.NoError(t, err)
	e, err := entity.New(tmpl, typ, "", deps)
	require.NoError(t, err)
	return e
}

func TestNew_DerivesHPAndResources(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	w := spawn(t, deps, "warrior", entity.TypePlayer)

	assert.Equal(t, 110, w.MaxHP) // 50 + 12*5
	assert.Equal(t, w.MaxHP, w.CurrentHP)
	require.NotNil(t, w.Stamina)
	assert.Equal(t, 100, w.Stamina.Current)
	assert.Nil(t, w.Mana)
	assert.True(t, w.CanAct)
	assert.NotEmpty(t, w.UID)
	assert.Equal(t, 100, w.XPToNextLevel)
}

func TestNew_DistinctUIDsForSameTemplate(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	a := spawn(t, deps, "goblin", entity.TypeEnemy)
	b := spawn(t, deps, "goblin", entity.TypeEnemy)
	assert.NotEqual(t, a.UID, b.UID)
}

func TestAttributeBonus(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	w := spawn(t, deps, "warrior", entity.TypePlayer)

	tests := []struct {
		attr string
		want int
	}{
		{"strength", 2},     // 14
		{"dexterity", 1},    // 12
		{"intelligence", -1}, // 8, floor division
		{"constitution", 1}, // 12
		{"wisdom", 0},       // 10
		{"luck", 0},         // unknown
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, w.AttributeBonus(tc.attr), tc.attr)
	}
}

func TestTakeDamage_DefenseSelection(t *testing.T) {
	tests := []struct {
		name       string
		amount     int
		damageType string
		want       int
	}{
		{"physical vs armor", 12, "physical", 7},      // 12 - 5
		{"piercing halves armor", 12, "piercing", 10}, // 12 - 5/2
		{"fire resisted", 10, "fire", 5},              // 10*0.5 - 0
		{"holy vulnerable", 10, "holy", 15},           // 10*1.5 - 0
		{"untyped bypasses defenses", 9, "chaos", 9},
		{"floors at min damage", 3, "physical", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := testDeps(t, &scriptedSource{})
			g := spawn(t, deps, "goblin", entity.TypeEnemy)
			actual, crit := g.TakeDamage(tc.amount, tc.damageType)
			assert.Equal(t, tc.want, actual)
			assert.False(t, crit)
			assert.Equal(t, g.MaxHP-tc.want, g.CurrentHP)
		})
	}
}

func TestTakeDamage_Property_HPNeverNegativeAndDamageFloored(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		deps := testDeps(t, &scriptedSource{})
		g := spawn(t, deps, "goblin", entity.TypeEnemy)
		amount := rapid.IntRange(0, 500).Draw(rt, "amount")
		dt := rapid.SampledFrom([]string{"physical", "piercing", "fire", "frost", "holy", "chaos"}).Draw(rt, "damage_type")
		actual, _ := g.TakeDamage(amount, dt)
		assert.GreaterOrEqual(rt, actual, 1)
		assert.GreaterOrEqual(rt, g.CurrentHP, 0)
	})
}

func TestHeal_ClampsToMaxHP(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	w.CurrentHP = 100

	assert.Equal(t, 10, w.Heal(50))
	assert.Equal(t, w.MaxHP, w.CurrentHP)
	assert.Equal(t, 0, w.Heal(5))
}

func TestEffectiveValues_Floors(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	g := spawn(t, deps, "goblin", entity.TypeEnemy)

	g.ArmorModifier = -20
	assert.Equal(t, 0, g.EffectiveArmor())

	g.InitiativeModifier = -50
	assert.Equal(t, 1, g.EffectiveInitiative())
}

func TestHandleTurnStart_RegeneratesResources(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	w.Stamina.Current = 50

	w.HandleTurnStart()
	// Flat 5 plus constitution bonus 1 for players.
	assert.Equal(t, 56, w.Stamina.Current)

	g := spawn(t, deps, "goblin", entity.TypeEnemy)
	g.Stamina.Current = 10
	g.HandleTurnStart()
	assert.Equal(t, 15, g.Stamina.Current)
}

func TestHandleTurnStart_RegenClampsToMax(t *testing.T) {
	deps := testDeps(t, &scriptedSource{})
	w := spawn(t, deps, "warrior", entity.TypePlayer)
	w.Stamina.Current = 99
	w.HandleTurnStart()
	assert.Equal(t, 100, w.Stamina.Current)
}
