// Package ai chooses actions for AI-controlled combatants. A small strategy
// object per behavior id (melee, ranged, support) inspects the battlefield
// and the threat table and produces an Action for the actor's turn.
package ai

import (
	"github.com/emberfell/emberfell/internal/game/combat"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// Behavior ids recognized by the registry.
const (
	BehaviorMelee   = "melee"
	BehaviorRanged  = "ranged"
	BehaviorSupport = "support"
)

// fleeHPFraction is the health fraction below which non-boss enemies try to
// run instead of fighting.
const fleeHPFraction = 0.25

// Strategy picks an action for actor. allies are the actor's own side,
// opponents the other side; stats carries the combat's threat table.
type Strategy interface {
	ChooseAction(actor *entity.Entity, allies, opponents []*entity.Entity, stats *combat.Statistics) combat.Action
}

// Registry maps behavior ids to strategies. Unknown behaviors fall back to
// melee.
type Registry struct {
	strategies map[string]Strategy
	fallback   Strategy
}

// NewRegistry builds the standard strategy set over the given definitions.
//
// Precondition: lib must be non-nil.
func NewRegistry(lib entity.Library) *Registry {
	melee := &meleeStrategy{lib: lib}
	return &Registry{
		strategies: map[string]Strategy{
			BehaviorMelee:   melee,
			BehaviorRanged:  &rangedStrategy{lib: lib},
			BehaviorSupport: &supportStrategy{lib: lib, fallback: melee},
		},
		fallback: melee,
	}
}

// For returns the strategy for a behavior id, defaulting to melee.
func (r *Registry) For(behavior string) Strategy {
	if s, ok := r.strategies[behavior]; ok {
		return s
	}
	return r.fallback
}

// ChooseFor picks an action for actor using its template behavior.
func (r *Registry) ChooseFor(actor *entity.Entity, allies, opponents []*entity.Entity, stats *combat.Statistics) combat.Action {
	return r.For(actor.Behavior).ChooseAction(actor, allies, opponents, stats)
}

// meleeStrategy fights the highest-threat opponent, preferring a usable
// damage skill over the basic attack, and runs when badly hurt.
type meleeStrategy struct {
	lib entity.Library
}

func (s *meleeStrategy) ChooseAction(actor *entity.Entity, allies, opponents []*entity.Entity, stats *combat.Statistics) combat.Action {
	if shouldFlee(actor) {
		return combat.Action{Type: combat.ActionFlee}
	}
	target := highestThreatTarget(actor, opponents, stats)
	if target == nil {
		return combat.Action{Type: combat.ActionFlee}
	}
	if id := usableSkill(s.lib, actor, definitions.EffectDamage); id != "" {
		return combat.Action{Type: combat.ActionSkill, SkillID: id, Targets: []string{target.UID}}
	}
	return combat.Action{Type: combat.ActionAttack, Target: target.UID}
}

// rangedStrategy picks off the weakest opponent instead of the loudest.
type rangedStrategy struct {
	lib entity.Library
}

func (s *rangedStrategy) ChooseAction(actor *entity.Entity, allies, opponents []*entity.Entity, stats *combat.Statistics) combat.Action {
	if shouldFlee(actor) {
		return combat.Action{Type: combat.ActionFlee}
	}
	target := lowestHPTarget(opponents)
	if target == nil {
		return combat.Action{Type: combat.ActionFlee}
	}
	if id := usableSkill(s.lib, actor, definitions.EffectDamage); id != "" {
		return combat.Action{Type: combat.ActionSkill, SkillID: id, Targets: []string{target.UID}}
	}
	return combat.Action{Type: combat.ActionAttack, Target: target.UID}
}

// supportStrategy heals the most wounded ally when one is below half health
// and a healing skill is usable; otherwise it fights like melee.
type supportStrategy struct {
	lib      entity.Library
	fallback Strategy
}

func (s *supportStrategy) ChooseAction(actor *entity.Entity, allies, opponents []*entity.Entity, stats *combat.Statistics) combat.Action {
	wounded := lowestHPTarget(allies)
	if wounded != nil && wounded.CurrentHP*2 < wounded.MaxHP {
		if id := usableSkill(s.lib, actor, definitions.EffectHealing); id != "" {
			return combat.Action{Type: combat.ActionSkill, SkillID: id, Targets: []string{wounded.UID}}
		}
	}
	return s.fallback.ChooseAction(actor, allies, opponents, stats)
}

func shouldFlee(actor *entity.Entity) bool {
	if actor.Boss || actor.Type != entity.TypeEnemy {
		return false
	}
	return float64(actor.CurrentHP) < fleeHPFraction*float64(actor.MaxHP)
}

// highestThreatTarget picks the living opponent with the most accumulated
// threat on the actor, falling back to the first living opponent before any
// threat exists.
func highestThreatTarget(actor *entity.Entity, opponents []*entity.Entity, stats *combat.Statistics) *entity.Entity {
	var best *entity.Entity
	bestThreat := -1
	var threat map[string]int
	if stats != nil {
		threat = stats.ThreatOn(actor.UID)
	}
	for _, o := range opponents {
		if !o.IsAlive() {
			continue
		}
		if best == nil {
			best, bestThreat = o, threat[o.UID]
			continue
		}
		if threat[o.UID] > bestThreat {
			best, bestThreat = o, threat[o.UID]
		}
	}
	return best
}

func lowestHPTarget(list []*entity.Entity) *entity.Entity {
	var best *entity.Entity
	for _, e := range list {
		if !e.IsAlive() {
			continue
		}
		if best == nil || e.CurrentHP < best.CurrentHP {
			best = e
		}
	}
	return best
}

// usableSkill returns the first known skill the actor can pay for whose
// effect list contains the wanted effect type, "" when none qualifies.
func usableSkill(lib entity.Library, actor *entity.Entity, effectType string) string {
	for _, id := range actor.KnownSkills {
		sk, err := lib.Skill(id)
		if err != nil {
			continue
		}
		if sk.Cost.Type == "none" {
			// Free skills are the basic attacks; the attack action covers
			// them.
			continue
		}
		if !hasEffect(sk, effectType) {
			continue
		}
		if actor.CanUseSkill(id) == nil {
			return id
		}
	}
	return ""
}

func hasEffect(sk *definitions.Skill, effectType string) bool {
	for _, eff := range sk.Effects {
		if eff.Type == effectType {
			return true
		}
	}
	return false
}
