package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// scriptedSource plays back queued rolls, then zeroes: Intn yields 0 (d20
// roll of 1) and Float64 yields 0 (always hits, chances always land).
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

var fixtureSkills = []string{`
id: basic_strike_phys
name: Strike
target: enemy
effects:
  - type: damage
    damage_type: physical
    base_value: weapon_damage
    scaling_attribute: strength
    scaling_formula: base + attribute_bonus * 2
`, `
id: crushing_blow
name: Crushing Blow
cost:
  type: stamina
  amount: 10
target: enemy
effects:
  - type: damage
    damage_type: physical
    base_value: 12
    scaling_attribute: strength
    scaling_formula: base + attribute_bonus * 2
`, `
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
`}

var fixtureEffects = []string{`
id: stun
name: Stunned
tags: [prevent_actions]
`, `
id: burn
name: Burning
tags: [damage_over_time]
damage_per_turn: 4
damage_type: fire
`}

var fixtureTemplates = []string{`
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
known_skills: [basic_strike_phys, crushing_blow]
`, `
id: cleric
name: Cleric
level: 1
class: cleric
attributes:
  strength: 8
  dexterity: 10
  intelligence: 12
  constitution: 10
  wisdom: 16
defenses:
  armor: 2
  magic_resistance: 5
resources:
  max_mana: 60
known_skills: [basic_strike_phys, mend]
`, `
id: goblin
name: Goblin
level: 1
creature_type: humanoid
behavior: melee
attributes:
  strength: 10
  dexterity: 8
  intelligence: 6
  constitution: 6
  wisdom: 6
defenses:
  armor: 5
  magic_resistance: 0
known_skills: [basic_strike_phys]
experience_reward: 50
gold_reward: 10
loot:
  - item: goblin_ear
    chance: 1.0
    min_quantity: 1
    max_quantity: 3
`, `
id: ogre_boss
name: Ogre Warlord
level: 3
creature_type: humanoid
behavior: melee
boss: true
attributes:
  strength: 16
  dexterity: 6
  intelligence: 4
  constitution: 14
  wisdom: 6
defenses:
  armor: 8
  magic_resistance: 2
known_skills: [basic_strike_phys]
experience_reward: 200
gold_reward: 50
`}

func testLibrary(t *testing.T) *definitions.Library {
	t.Helper()
	var skills []*definitions.Skill
	for _, y := range fixtureSkills {
		sk, err := definitions.LoadSkillFromBytes([]byte(y))
		require.NoError(t, err)
		skills = append(skills, sk)
	}
	var effects []*definitions.StatusEffect
	for _, y := range fixtureEffects {
		eff, err := definitions.LoadStatusEffectFromBytes([]byte(y))
		require.NoError(t, err)
		effects = append(effects, eff)
	}
	var templates []*definitions.Template
	for _, y := range fixtureTemplates {
		tmpl, err := definitions.LoadTemplateFromBytes([]byte(y))
		require.NoError(t, err)
		templates = append(templates, tmpl)
	}
	return definitions.NewLibrary(skills, effects, templates)
}

func testDeps(t *testing.T, src dice.Source) entity.Deps {
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
