package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// Flee odds for enemies: chance = fleeBase - fleeHPFactor * (hp / maxHP), so
// a wounded enemy is more likely to run.
const (
	fleeBase     = 0.3
	fleeHPFactor = 0.2
)

// Resolver turns one Action into a Result, mutating the involved entities.
// It owns the per-combat Statistics. Gameplay failures (bad target, unknown
// action, unaffordable skill) are Results with Success false; only
// configuration errors (missing definitions) surface as Go errors.
type Resolver struct {
	cfg    config.CombatConfig
	src    dice.Source
	logger *zap.Logger
	stats  *Statistics
}

// NewResolver builds a Resolver with fresh statistics.
//
// Precondition: src and logger must be non-nil.
func NewResolver(cfg config.CombatConfig, src dice.Source, logger *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, src: src, logger: logger, stats: NewStatistics()}
}

// Statistics returns the accumulated per-combat statistics.
func (r *Resolver) Statistics() *Statistics {
	return r.stats
}

// Resolve executes actor's action against the combat roster. A stunned actor
// has their turn consumed with a skipped success result.
func (r *Resolver) Resolve(action Action, actor *entity.Entity, all []*entity.Entity) (Result, error) {
	if !actor.CanAct {
		return Result{
			Success:   true,
			Skipped:   true,
			EntityUID: actor.UID,
			Message:   fmt.Sprintf("%s is unable to act.", actor.Name),
		}, nil
	}

	switch action.Type {
	case ActionAttack:
		return r.resolveAttack(action, actor, all)
	case ActionSkill:
		return r.resolveSkill(action, actor, all)
	case ActionFlee:
		return r.resolveFlee(actor)
	case ActionItem:
		return Result{Success: false, Message: "items cannot be used in combat yet"}, nil
	default:
		return Result{Success: false, Message: fmt.Sprintf("unknown action type %q", action.Type)}, nil
	}
}

func (r *Resolver) resolveAttack(action Action, actor *entity.Entity, all []*entity.Entity) (Result, error) {
	target := findByUID(all, action.Target)
	if target == nil || !target.IsAlive() {
		return Result{Success: false, Message: fmt.Sprintf("invalid target %q", action.Target)}, nil
	}

	hitChance := r.hitChance(actor, target)
	if r.src.Float64() > hitChance {
		return Result{
			Success:   true,
			Hit:       false,
			EntityUID: actor.UID,
			Message:   fmt.Sprintf("%s attacks %s and misses.", actor.Name, target.Name),
		}, nil
	}

	skillID := r.basicAttackFor(actor)
	skillRes, err := actor.UseSkill(skillID, []*entity.Entity{target})
	if err != nil {
		return Result{}, fmt.Errorf("resolving basic attack %q: %w", skillID, err)
	}
	if !skillRes.Success {
		return Result{Success: false, Message: skillRes.Message}, nil
	}

	r.recordSkillStats(actor, &skillRes, all, threatPerAttack)
	return Result{
		Success:     true,
		Hit:         true,
		EntityUID:   actor.UID,
		Message:     skillRes.Message,
		SkillResult: &skillRes,
	}, nil
}

func (r *Resolver) resolveSkill(action Action, actor *entity.Entity, all []*entity.Entity) (Result, error) {
	uids := action.Targets
	if len(uids) == 0 && action.Target != "" {
		uids = []string{action.Target}
	}
	if len(uids) == 0 {
		return Result{Success: false, Message: "skill action requires at least one target"}, nil
	}
	targets := make([]*entity.Entity, 0, len(uids))
	for _, uid := range uids {
		t := findByUID(all, uid)
		if t == nil || !t.IsAlive() {
			return Result{Success: false, Message: fmt.Sprintf("invalid target %q", uid)}, nil
		}
		targets = append(targets, t)
	}

	skillRes, err := actor.UseSkill(action.SkillID, targets)
	if err != nil {
		return Result{}, err
	}
	if !skillRes.Success {
		return Result{Success: false, Message: skillRes.Message}, nil
	}

	r.recordSkillStats(actor, &skillRes, all, threatPerSkill)
	return Result{
		Success:     true,
		Hit:         true,
		EntityUID:   actor.UID,
		Message:     skillRes.Message,
		SkillResult: &skillRes,
	}, nil
}

func (r *Resolver) resolveFlee(actor *entity.Entity) (Result, error) {
	if actor.Type == entity.TypeEnemy {
		if actor.Boss {
			return Result{Success: false, Message: fmt.Sprintf("%s stands its ground.", actor.Name)}, nil
		}
		chance := fleeBase - fleeHPFactor*(float64(actor.CurrentHP)/float64(actor.MaxHP))
		if r.src.Float64() > chance {
			return Result{
				Success:   true,
				EntityUID: actor.UID,
				Message:   fmt.Sprintf("%s tries to flee but fails.", actor.Name),
			}, nil
		}
	}
	return Result{
		Success:   true,
		Fled:      true,
		EntityUID: actor.UID,
		Message:   fmt.Sprintf("%s flees from combat.", actor.Name),
	}, nil
}

// hitChance computes the clamped probability that actor lands a basic attack
// on target.
func (r *Resolver) hitChance(actor, target *entity.Entity) float64 {
	chance := r.cfg.HitChanceBase +
		r.cfg.HitChanceAccuracyFactor*float64(actor.HitChanceModifier()) -
		r.cfg.HitChanceEvasionFactor*float64(target.EvasionModifier())
	if chance < r.cfg.HitChanceMin {
		chance = r.cfg.HitChanceMin
	}
	if chance > r.cfg.HitChanceMax {
		chance = r.cfg.HitChanceMax
	}
	return chance
}

// basicAttackFor picks the configured basic-attack skill: player class first,
// then creature type, then the global default.
func (r *Resolver) basicAttackFor(actor *entity.Entity) string {
	if actor.Class != "" {
		if id, ok := r.cfg.BasicAttacks[actor.Class]; ok {
			return id
		}
	}
	if id, ok := r.cfg.BasicAttacks[actor.CreatureType]; ok {
		return id
	}
	return r.cfg.DefaultBasicAttack
}

// recordSkillStats folds a skill result into the statistics: damage dealt and
// taken, healing done, and threat against damaged enemies when the actor is a
// player.
func (r *Resolver) recordSkillStats(actor *entity.Entity, res *entity.SkillResult, all []*entity.Entity, threat int) {
	for uid, effects := range res.Targets {
		target := findByUID(all, uid)
		damaged := false
		for _, eff := range effects {
			switch eff.Type {
			case definitions.EffectDamage:
				r.stats.RecordDamage(actor.UID, uid, eff.Amount)
				damaged = true
			case definitions.EffectHealing:
				r.stats.RecordHealing(actor.UID, eff.Amount)
			}
		}
		if damaged && actor.Type == entity.TypePlayer && target != nil && target.Type == entity.TypeEnemy {
			r.stats.AddThreat(uid, actor.UID, threat)
		}
	}
}

func findByUID(all []*entity.Entity, uid string) *entity.Entity {
	for _, e := range all {
		if e.UID == uid {
			return e
		}
	}
	return nil
}
