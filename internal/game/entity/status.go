package entity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/game/definitions"
)

// StatusInstance is one active status effect on an entity: the static
// definition plus per-application state.
type StatusInstance struct {
	Def       *definitions.StatusEffect
	Duration  int
	SourceUID string
	// Params carries per-application data from the skill that applied the
	// effect, such as a shield magnitude.
	Params map[string]any
}

// HasStatusEffect reports whether the named effect is currently active.
func (e *Entity) HasStatusEffect(id string) bool {
	_, ok := e.statusEffects[id]
	return ok
}

// StatusEffect returns the active instance of the named effect, or nil.
func (e *Entity) StatusEffect(id string) *StatusInstance {
	return e.statusEffects[id]
}

// ActiveStatusEffects returns the active instances in application order.
func (e *Entity) ActiveStatusEffects() []*StatusInstance {
	out := make([]*StatusInstance, 0, len(e.statusOrder))
	for _, id := range e.statusOrder {
		if inst, ok := e.statusEffects[id]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// AddStatusEffect applies the named effect for the given duration. Reapplying
// an effect that is already active removes the old instance first, so
// modifiers never stack; the new duration replaces the remainder.
//
// Precondition: duration >= 1.
// Postcondition: The effect is active with the given duration, or an
// ErrNotFound-wrapped error is returned for an unknown id.
func (e *Entity) AddStatusEffect(id string, duration int, sourceUID string, params map[string]any) error {
	def, err := e.deps.Library.StatusEffect(id)
	if err != nil {
		return fmt.Errorf("applying status effect: %w", err)
	}
	if e.HasStatusEffect(id) {
		e.RemoveStatusEffect(id)
	}

	inst := &StatusInstance{
		Def:       def,
		Duration:  duration,
		SourceUID: sourceUID,
		Params:    params,
	}
	e.statusEffects[id] = inst
	e.statusOrder = append(e.statusOrder, id)
	inst.onApply(e)

	e.deps.Logger.Debug("status effect applied",
		zap.String("name", e.Name),
		zap.String("effect", id),
		zap.Int("duration", duration),
	)
	return nil
}

// RemoveStatusEffect removes the named effect and reverses its modifiers.
// Removing an effect that is not active is a no-op.
func (e *Entity) RemoveStatusEffect(id string) {
	inst, ok := e.statusEffects[id]
	if !ok {
		return
	}
	inst.onRemove(e)
	delete(e.statusEffects, id)
	for i, oid := range e.statusOrder {
		if oid == id {
			e.statusOrder = append(e.statusOrder[:i], e.statusOrder[i+1:]...)
			break
		}
	}
	e.deps.Logger.Debug("status effect removed",
		zap.String("name", e.Name),
		zap.String("effect", id),
	)
}

// onApply mutates the owning entity per the definition's tags.
func (s *StatusInstance) onApply(e *Entity) {
	def := s.Def
	if def.HasTag(definitions.TagPreventActions) {
		e.CanAct = false
	}
	if def.HasTag(definitions.TagReduceInitiative) {
		e.InitiativeModifier += def.InitiativeModifier
	}
	if def.HasTag(definitions.TagIncreaseInitiative) {
		e.InitiativeModifier += def.InitiativeBonus
	}
	if def.HasTag(definitions.TagReduceAccuracy) {
		e.AccuracyModifier += def.AccuracyModifier
	}
	if def.HasTag(definitions.TagIncreaseDefenses) {
		e.ArmorModifier += def.ArmorBonus
		e.MagicResistanceModifier += def.MagicResistanceBonus
	}
}

// onRemove reverses exactly what onApply did.
func (s *StatusInstance) onRemove(e *Entity) {
	def := s.Def
	if def.HasTag(definitions.TagPreventActions) {
		e.CanAct = true
	}
	if def.HasTag(definitions.TagReduceInitiative) {
		e.InitiativeModifier -= def.InitiativeModifier
	}
	if def.HasTag(definitions.TagIncreaseInitiative) {
		e.InitiativeModifier -= def.InitiativeBonus
	}
	if def.HasTag(definitions.TagReduceAccuracy) {
		e.AccuracyModifier -= def.AccuracyModifier
	}
	if def.HasTag(definitions.TagIncreaseDefenses) {
		e.ArmorModifier -= def.ArmorBonus
		e.MagicResistanceModifier -= def.MagicResistanceBonus
	}
}

// onTick runs the per-round effect at the owner's turn start: damage over
// time fires, then the duration decrements.
func (s *StatusInstance) onTick(e *Entity) {
	if s.Def.HasTag(definitions.TagDamageOverTime) {
		e.TakeDamage(s.Def.DamagePerTurn, s.Def.DamageType)
	}
	s.Duration--
}
