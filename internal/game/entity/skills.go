package entity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/formula"
)

// EffectResult records one effect application on one target.
type EffectResult struct {
	Type         string
	DamageType   string
	Amount       int
	Critical     bool
	StatusEffect string
	Duration     int
	// Applied is false when a chance-based status effect was resisted.
	Applied bool
}

// SkillResult is the outcome of one skill use. Targets maps target UID to the
// ordered effect results applied to that target; applications on the same
// target append, they never overwrite.
type SkillResult struct {
	Success bool
	Message string
	Targets map[string][]EffectResult
}

// CanUseSkill checks whether the entity may use the named skill right now.
//
// Postcondition: Returns nil iff the entity can act and the skill is known
// and affordable; otherwise an error describing the first failed
// precondition. Unknown skill ids wrap definitions.ErrNotFound.
func (e *Entity) CanUseSkill(id string) error {
	if !e.CanAct {
		return fmt.Errorf("%s cannot act", e.Name)
	}
	if !e.knowsSkill(id) {
		return fmt.Errorf("%s does not know %s", e.Name, id)
	}
	sk, err := e.deps.Library.Skill(id)
	if err != nil {
		return err
	}
	if sk.Cost.Type != "none" {
		pool := e.Resource(sk.Cost.Type)
		if pool == nil {
			return fmt.Errorf("%s has no %s pool", e.Name, sk.Cost.Type)
		}
		if pool.Current < sk.Cost.Amount {
			return fmt.Errorf("%s needs %d %s, has %d", e.Name, sk.Cost.Amount, sk.Cost.Type, pool.Current)
		}
	}
	return nil
}

// UseSkill resolves the named skill against the given targets: the resource
// cost is deducted, then each effect in the skill's list is applied in order
// via its applier.
//
// Gameplay failures (unable to act, unknown to the entity, unaffordable)
// come back as a SkillResult with Success false. Configuration failures (missing
// definitions, malformed formulas) come back as a non-nil error; the combat
// must not continue past them.
//
// Precondition: len(targets) >= 1; all targets non-nil.
// Postcondition: On Success the cost was deducted exactly once and every
// effect was applied to every target in declaration order.
func (e *Entity) UseSkill(id string, targets []*Entity) (SkillResult, error) {
	if err := e.CanUseSkill(id); err != nil {
		if errors.Is(err, definitions.ErrNotFound) {
			return SkillResult{}, err
		}
		return SkillResult{Success: false, Message: err.Error()}, nil
	}
	sk, err := e.deps.Library.Skill(id)
	if err != nil {
		return SkillResult{}, err
	}

	if sk.Cost.Type != "none" {
		e.Resource(sk.Cost.Type).Add(-sk.Cost.Amount)
	}

	res := SkillResult{
		Success: true,
		Message: fmt.Sprintf("%s uses %s.", e.Name, sk.Name),
		Targets: make(map[string][]EffectResult),
	}
	for i := range sk.Effects {
		spec := &sk.Effects[i]
		applier, ok := appliers[spec.Type]
		if !ok {
			return SkillResult{}, fmt.Errorf("skill %q: no applier for effect type %q", id, spec.Type)
		}
		msg, err := applier.apply(e, spec, targets, &res)
		if err != nil {
			return SkillResult{}, fmt.Errorf("skill %q: %w", id, err)
		}
		if msg != "" {
			res.Message += " " + msg
		}
	}

	e.deps.Logger.Debug("skill used",
		zap.String("name", e.Name),
		zap.String("skill", id),
		zap.Int("targets", len(targets)),
	)
	return res, nil
}

// effectApplier resolves one EffectSpec kind against a target list. Appliers
// append EffectResults under each target's UID and return a message fragment.
type effectApplier interface {
	apply(src *Entity, spec *definitions.EffectSpec, targets []*Entity, res *SkillResult) (string, error)
}

var appliers = map[string]effectApplier{
	definitions.EffectDamage:  damageApplier{},
	definitions.EffectHealing: healingApplier{},
	definitions.EffectShield:  shieldApplier{},
	definitions.EffectStatus:  statusApplier{},
}

// scaledValue evaluates the effect's scaling formula with the source's
// attribute values bound.
func scaledValue(src *Entity, spec *definitions.EffectSpec) (int, error) {
	base := spec.BaseValue.Fixed
	if spec.BaseValue.WeaponDamage {
		base = src.deps.Combat.BaseWeaponDamage
	}
	attr, _ := src.Attributes.Value(spec.ScalingAttribute)
	return formula.EvalInt(spec.ScalingFormula, formula.Bindings{
		Base:           float64(base),
		Attribute:      float64(attr),
		AttributeBonus: float64(src.AttributeBonus(spec.ScalingAttribute)),
	})
}

type damageApplier struct{}

func (damageApplier) apply(src *Entity, spec *definitions.EffectSpec, targets []*Entity, res *SkillResult) (string, error) {
	value, err := scaledValue(src, spec)
	if err != nil {
		return "", err
	}
	var msg string
	for i, target := range targets {
		amount := value
		if i > 0 && spec.SecondaryTargetsModifier > 0 {
			amount = int(float64(amount) * spec.SecondaryTargetsModifier)
		}
		if mod, ok := spec.CreatureTypeModifiers[target.CreatureType]; ok {
			amount = int(float64(amount) * mod)
		}
		actual, crit := target.TakeDamage(amount, spec.DamageType)
		res.Targets[target.UID] = append(res.Targets[target.UID], EffectResult{
			Type:       definitions.EffectDamage,
			DamageType: spec.DamageType,
			Amount:     actual,
			Critical:   crit,
			Applied:    true,
		})
		msg += fmt.Sprintf("%s takes %d %s damage.", target.Name, actual, spec.DamageType)
		if i < len(targets)-1 {
			msg += " "
		}
	}
	return msg, nil
}

type healingApplier struct{}

func (healingApplier) apply(src *Entity, spec *definitions.EffectSpec, targets []*Entity, res *SkillResult) (string, error) {
	value, err := scaledValue(src, spec)
	if err != nil {
		return "", err
	}
	var msg string
	for i, target := range targets {
		healed := target.Heal(value)
		res.Targets[target.UID] = append(res.Targets[target.UID], EffectResult{
			Type:    definitions.EffectHealing,
			Amount:  healed,
			Applied: true,
		})
		msg += fmt.Sprintf("%s recovers %d HP.", target.Name, healed)
		if i < len(targets)-1 {
			msg += " "
		}
	}
	return msg, nil
}

// shieldApplier grants the shield status effect carrying the computed shield
// magnitude in its instance params.
type shieldApplier struct{}

func (shieldApplier) apply(src *Entity, spec *definitions.EffectSpec, targets []*Entity, res *SkillResult) (string, error) {
	value, err := scaledValue(src, spec)
	if err != nil {
		return "", err
	}
	var msg string
	for i, target := range targets {
		params := map[string]any{"shield_value": value}
		for k, v := range spec.Params {
			params[k] = v
		}
		if err := target.AddStatusEffect(definitions.TagShield, spec.Duration, src.UID, params); err != nil {
			return "", err
		}
		res.Targets[target.UID] = append(res.Targets[target.UID], EffectResult{
			Type:     definitions.EffectShield,
			Amount:   value,
			Duration: spec.Duration,
			Applied:  true,
		})
		msg += fmt.Sprintf("%s gains a shield (%d).", target.Name, value)
		if i < len(targets)-1 {
			msg += " "
		}
	}
	return msg, nil
}

type statusApplier struct{}

func (statusApplier) apply(src *Entity, spec *definitions.EffectSpec, targets []*Entity, res *SkillResult) (string, error) {
	var msg string
	for i, target := range targets {
		applied := src.deps.Source.Float64() <= spec.Chance
		if applied {
			// Each instance gets its own params map so nothing can mutate
			// the shared definition through it.
			params := make(map[string]any, len(spec.Params))
			for k, v := range spec.Params {
				params[k] = v
			}
			if err := target.AddStatusEffect(spec.StatusEffect, spec.Duration, src.UID, params); err != nil {
				return "", err
			}
			msg += fmt.Sprintf("%s is afflicted by %s.", target.Name, spec.StatusEffect)
		} else {
			msg += fmt.Sprintf("%s resists %s.", target.Name, spec.StatusEffect)
		}
		res.Targets[target.UID] = append(res.Targets[target.UID], EffectResult{
			Type:         definitions.EffectStatus,
			StatusEffect: spec.StatusEffect,
			Duration:     spec.Duration,
			Applied:      applied,
		})
		if i < len(targets)-1 {
			msg += " "
		}
	}
	return msg, nil
}
