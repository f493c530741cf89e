// Package definitions provides the static game data the combat engine
// consumes: skill definitions, status-effect definitions, and entity
// templates, loaded from YAML and validated up front. The engine never
// fabricates defaults for a missing id — lookups fail with ErrNotFound.
package definitions

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Effect type discriminators for EffectSpec.Type.
const (
	EffectDamage  = "damage"
	EffectHealing = "healing"
	EffectShield  = "shield"
	EffectStatus  = "status"
)

// WeaponDamageSentinel is the base_value string that resolves to the
// configured base weapon damage at apply time.
const WeaponDamageSentinel = "weapon_damage"

// BaseValue is a skill effect's base value: either a fixed number or the
// weapon-damage sentinel.
type BaseValue struct {
	Fixed        int
	WeaponDamage bool
}

// UnmarshalYAML accepts either an integer or the string "weapon_damage".
func (b *BaseValue) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		b.Fixed = n
		b.WeaponDamage = false
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("base_value must be a number or %q", WeaponDamageSentinel)
	}
	if s != WeaponDamageSentinel {
		return fmt.Errorf("base_value string must be %q, got %q", WeaponDamageSentinel, s)
	}
	b.WeaponDamage = true
	return nil
}

// Cost is the resource cost of a skill.
type Cost struct {
	Type   string `yaml:"type"`   // "stamina" | "energy" | "mana" | "none"
	Amount int    `yaml:"amount"`
}

// EffectSpec is one effect in a skill's ordered effect list.
type EffectSpec struct {
	Type string `yaml:"type"` // damage | healing | shield | status

	// Damage / healing / shield fields.
	DamageType               string             `yaml:"damage_type"`
	BaseValue                BaseValue          `yaml:"base_value"`
	ScalingAttribute         string             `yaml:"scaling_attribute"`
	ScalingFormula           string             `yaml:"scaling_formula"`
	SecondaryTargetsModifier float64            `yaml:"secondary_targets_modifier"`
	CreatureTypeModifiers    map[string]float64 `yaml:"creature_type_modifiers"`

	// Status / shield fields.
	StatusEffect string  `yaml:"status_effect"`
	Duration     int     `yaml:"duration"`
	Chance       float64 `yaml:"chance"`

	// Params carries free-form designer data handed to the status-effect
	// instance on application (for example shield magnitudes).
	Params map[string]any `yaml:"params"`
}

// Skill defines one usable skill.
type Skill struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Cost        Cost         `yaml:"cost"`
	Target      string       `yaml:"target"` // "enemy" | "ally" | "self" | "all_enemies" | "all_allies"
	Effects     []EffectSpec `yaml:"effects"`
}

// Validate checks that the skill satisfies its invariants.
//
// Precondition: s must not be nil.
// Postcondition: Returns nil iff the skill is well formed; returns an error
// naming the first violation otherwise.
func (s *Skill) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("skill: id must not be empty")
	}
	if s.Name == "" {
		return fmt.Errorf("skill %q: name must not be empty", s.ID)
	}
	switch s.Cost.Type {
	case "stamina", "energy", "mana", "none":
	default:
		return fmt.Errorf("skill %q: cost.type must be one of [stamina, energy, mana, none], got %q", s.ID, s.Cost.Type)
	}
	if s.Cost.Amount < 0 {
		return fmt.Errorf("skill %q: cost.amount must be >= 0, got %d", s.ID, s.Cost.Amount)
	}
	if len(s.Effects) == 0 {
		return fmt.Errorf("skill %q: must declare at least one effect", s.ID)
	}
	for i, eff := range s.Effects {
		if err := eff.validate(); err != nil {
			return fmt.Errorf("skill %q: effect[%d]: %w", s.ID, i, err)
		}
	}
	return nil
}

func (e *EffectSpec) validate() error {
	switch e.Type {
	case EffectDamage:
		if e.DamageType == "" {
			return fmt.Errorf("damage effect must set damage_type")
		}
		if e.ScalingFormula == "" {
			return fmt.Errorf("damage effect must set scaling_formula")
		}
		if e.SecondaryTargetsModifier < 0 {
			return fmt.Errorf("secondary_targets_modifier must be >= 0, got %v", e.SecondaryTargetsModifier)
		}
	case EffectHealing, EffectShield:
		if e.ScalingFormula == "" {
			return fmt.Errorf("%s effect must set scaling_formula", e.Type)
		}
	case EffectStatus:
		if e.StatusEffect == "" {
			return fmt.Errorf("status effect must set status_effect")
		}
		if e.Chance < 0 || e.Chance > 1 {
			return fmt.Errorf("status chance must be in [0, 1], got %v", e.Chance)
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
	if e.Duration < 0 {
		return fmt.Errorf("duration must be >= 0, got %d", e.Duration)
	}
	return nil
}

// applyDefaults fills structural defaults the YAML may omit. These mirror the
// defaults the designers rely on and are applied once at load time, never
// inside the engine.
func (s *Skill) applyDefaults() {
	if s.Cost.Type == "" {
		s.Cost.Type = "none"
	}
	for i := range s.Effects {
		eff := &s.Effects[i]
		if eff.ScalingAttribute == "" {
			switch eff.Type {
			case EffectDamage:
				eff.ScalingAttribute = "strength"
			case EffectHealing:
				eff.ScalingAttribute = "wisdom"
			case EffectShield:
				eff.ScalingAttribute = "intelligence"
			}
		}
		if eff.Type == EffectStatus && eff.Chance == 0 {
			eff.Chance = 1.0
		}
		if (eff.Type == EffectShield || eff.Type == EffectStatus) && eff.Duration == 0 {
			eff.Duration = 1
		}
	}
}

// LoadSkillFromBytes parses a single skill definition from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Skill.
// Postcondition: Returns a validated *Skill with defaults applied, or an error.
func LoadSkillFromBytes(data []byte) (*Skill, error) {
	var sk Skill
	if err := strictUnmarshal(data, &sk); err != nil {
		return nil, fmt.Errorf("parsing skill YAML: %w", err)
	}
	sk.applyDefaults()
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	return &sk, nil
}

// LoadSkills reads all *.yaml files in dir and returns the parsed skills.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all skills or an error on the first parse or
// validation failure; on error, the partial result is discarded.
func LoadSkills(dir string) ([]*Skill, error) {
	var skills []*Skill
	err := loadDirectory(dir, func(path string, data []byte) error {
		sk, err := LoadSkillFromBytes(data)
		if err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		skills = append(skills, sk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skills, nil
}
