package definitions

import "fmt"

// Status-effect behavior tags. A status effect carries any combination; each
// tag drives one piece of the apply/tick/remove lifecycle.
const (
	TagPreventActions     = "prevent_actions"
	TagDamageOverTime     = "damage_over_time"
	TagReduceInitiative   = "reduce_initiative"
	TagIncreaseInitiative = "increase_initiative"
	TagReduceAccuracy     = "reduce_accuracy"
	TagIncreaseDefenses   = "increase_defenses"
	TagShield             = "shield"
)

// StatusEffect is the static definition of a timed modifier.
type StatusEffect struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	Tags        []string `yaml:"tags"`

	// Modifier magnitudes, interpreted per tag. Reduction values are
	// authored negative so apply always adds and remove always subtracts.
	InitiativeModifier   int `yaml:"initiative_modifier"`
	InitiativeBonus      int `yaml:"initiative_bonus"`
	AccuracyModifier     int `yaml:"accuracy_modifier"`
	ArmorBonus           int `yaml:"armor_bonus"`
	MagicResistanceBonus int `yaml:"magic_resistance_bonus"`

	// Damage-over-time fields, used when tagged damage_over_time.
	DamagePerTurn int    `yaml:"damage_per_turn"`
	DamageType    string `yaml:"damage_type"`
}

// HasTag reports whether the effect carries the given behavior tag.
func (e *StatusEffect) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks that the status effect satisfies its invariants.
//
// Precondition: e must not be nil.
// Postcondition: Returns nil iff the definition is well formed.
func (e *StatusEffect) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("status effect: id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("status effect %q: name must not be empty", e.ID)
	}
	known := map[string]bool{
		TagPreventActions:     true,
		TagDamageOverTime:     true,
		TagReduceInitiative:   true,
		TagIncreaseInitiative: true,
		TagReduceAccuracy:     true,
		TagIncreaseDefenses:   true,
		TagShield:             true,
	}
	for _, t := range e.Tags {
		if !known[t] {
			return fmt.Errorf("status effect %q: unknown tag %q", e.ID, t)
		}
	}
	if e.HasTag(TagDamageOverTime) {
		if e.DamagePerTurn < 1 {
			return fmt.Errorf("status effect %q: damage_per_turn must be >= 1 for damage_over_time", e.ID)
		}
		if e.DamageType == "" {
			return fmt.Errorf("status effect %q: damage_type must be set for damage_over_time", e.ID)
		}
	}
	return nil
}

// LoadStatusEffectFromBytes parses a single status-effect definition from raw
// YAML bytes.
//
// Postcondition: Returns a validated *StatusEffect or an error.
func LoadStatusEffectFromBytes(data []byte) (*StatusEffect, error) {
	var eff StatusEffect
	if err := strictUnmarshal(data, &eff); err != nil {
		return nil, fmt.Errorf("parsing status effect YAML: %w", err)
	}
	if err := eff.Validate(); err != nil {
		return nil, err
	}
	return &eff, nil
}

// LoadStatusEffects reads all *.yaml files in dir and returns the parsed
// status effects.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all effects or an error on the first failure.
func LoadStatusEffects(dir string) ([]*StatusEffect, error) {
	var effects []*StatusEffect
	err := loadDirectory(dir, func(path string, data []byte) error {
		eff, err := LoadStatusEffectFromBytes(data)
		if err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		effects = append(effects, eff)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return effects, nil
}
