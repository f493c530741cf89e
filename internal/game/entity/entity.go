// Package entity implements the combatant model for the Emberfell engine:
// attributes, resource pools, defenses, the damage/heal pipeline, the
// status-effect lifecycle, and skill use. Player, Enemy, and NPC are one
// struct distinguished by a role tag; role-specific behavior (resource
// regeneration, progression) hangs off strategy values selected by that tag.
package entity

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/dice"
)

// Type distinguishes the three combatant roles.
type Type int

const (
	TypePlayer Type = iota
	TypeEnemy
	TypeNPC
)

// String returns a human-readable role label.
func (t Type) String() string {
	switch t {
	case TypePlayer:
		return "player"
	case TypeEnemy:
		return "enemy"
	case TypeNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// HP derivation constants. MaxHP = baseHP + constitution*hpPerConstitution.
const (
	baseHP            = 50
	hpPerConstitution = 5
)

// Library is the definition lookup surface the entity layer consumes.
type Library interface {
	Skill(id string) (*definitions.Skill, error)
	StatusEffect(id string) (*definitions.StatusEffect, error)
}

// Deps bundles the collaborators every entity needs at combat time.
type Deps struct {
	Library     Library
	Source      dice.Source
	Logger      *zap.Logger
	Combat      config.CombatConfig
	Progression config.ProgressionConfig
	Regen       config.RegenConfig
}

// Pool is one resource pool (stamina, energy, or mana).
//
// Invariant: 0 <= Current <= Max.
type Pool struct {
	Current int
	Max     int
}

// Add adjusts Current by delta, clamping to [0, Max].
func (p *Pool) Add(delta int) {
	p.Current += delta
	if p.Current > p.Max {
		p.Current = p.Max
	}
	if p.Current < 0 {
		p.Current = 0
	}
}

// Resource pool names, matching skill cost types.
const (
	ResourceStamina = "stamina"
	ResourceEnergy  = "energy"
	ResourceMana    = "mana"
)

// Entity is one combat participant. It is created per combat from a template
// and discarded when the combat ends; nothing here persists across combats.
//
// Invariant: 0 <= CurrentHP <= MaxHP. An entity with CurrentHP == 0 is dead
// and takes no further turns.
type Entity struct {
	// ID is the template key ("warrior", "goblin"); UID is the per-combat
	// instance key.
	ID   string
	UID  string
	Type Type
	Name string

	Level      int
	Attributes definitions.Attributes

	MaxHP     int
	CurrentHP int

	Armor                   int
	MagicResistance         int
	ArmorModifier           int
	MagicResistanceModifier int

	// Initiative base is dexterity; the modifier is adjusted by status
	// effects.
	Initiative         int
	InitiativeModifier int
	AccuracyModifier   int
	CanAct             bool

	KnownSkills     []string
	Resistances     map[string]float64
	Vulnerabilities map[string]float64
	CreatureType    string
	Class           string
	Behavior        string
	Boss            bool

	// Resource pools; nil means the entity does not use that resource.
	Stamina *Pool
	Energy  *Pool
	Mana    *Pool

	// Progression state, meaningful for players.
	XP              int
	XPToNextLevel   int
	SkillPoints     int
	AttributePoints int
	GrowthModifiers map[string]float64

	// Reward data, meaningful for enemies.
	ExperienceReward int
	GoldReward       int
	Loot             []definitions.LootEntry

	statusEffects map[string]*StatusInstance
	// statusOrder preserves application order so turn-start ticks are
	// reproducible run to run.
	statusOrder []string

	regen RegenStrategy
	deps  Deps
}

// New creates an Entity of the given role from a validated template.
// name overrides the template name when non-empty (player-chosen names).
//
// Precondition: tmpl must have passed Validate; deps.Library, deps.Source,
// and deps.Logger must be non-nil.
// Postcondition: Returns a living entity at full HP and full resources.
func New(tmpl *definitions.Template, typ Type, name string, deps Deps) (*Entity, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("entity: template must not be nil")
	}
	if deps.Library == nil || deps.Source == nil || deps.Logger == nil {
		return nil, fmt.Errorf("entity: deps must provide library, source, and logger")
	}

	if name == "" {
		name = tmpl.Name
	}
	e := &Entity{
		ID:   tmpl.ID,
		UID:  uuid.New().String(),
		Type: typ,
		Name: name,

		Level:      tmpl.Level,
		Attributes: tmpl.Attributes,

		Armor:           tmpl.Defenses.Armor,
		MagicResistance: tmpl.Defenses.MagicResistance,

		Initiative: tmpl.Attributes.Dexterity,
		CanAct:     true,

		KnownSkills:     append([]string(nil), tmpl.KnownSkills...),
		Resistances:     copyFloatMap(tmpl.Resistances),
		Vulnerabilities: copyFloatMap(tmpl.Vulnerabilities),
		CreatureType:    tmpl.CreatureType,
		Class:           tmpl.Class,
		Behavior:        tmpl.Behavior,
		Boss:            tmpl.Boss,

		GrowthModifiers: copyFloatMap(tmpl.GrowthModifiers),

		ExperienceReward: tmpl.ExperienceReward,
		GoldReward:       tmpl.GoldReward,
		Loot:             append([]definitions.LootEntry(nil), tmpl.Loot...),

		statusEffects: make(map[string]*StatusInstance),
		deps:          deps,
	}

	e.MaxHP = baseHP + tmpl.Attributes.Constitution*hpPerConstitution
	e.CurrentHP = e.MaxHP

	if tmpl.Resources.MaxStamina != nil {
		e.Stamina = &Pool{Current: *tmpl.Resources.MaxStamina, Max: *tmpl.Resources.MaxStamina}
	}
	if tmpl.Resources.MaxEnergy != nil {
		e.Energy = &Pool{Current: *tmpl.Resources.MaxEnergy, Max: *tmpl.Resources.MaxEnergy}
	}
	if tmpl.Resources.MaxMana != nil {
		e.Mana = &Pool{Current: *tmpl.Resources.MaxMana, Max: *tmpl.Resources.MaxMana}
	}

	if typ == TypePlayer {
		e.XPToNextLevel = xpForNextLevel(e.Level, deps.Progression)
	}
	e.regen = regenFor(typ, deps.Regen)

	deps.Logger.Debug("entity created",
		zap.String("id", e.ID),
		zap.String("uid", e.UID),
		zap.String("type", typ.String()),
		zap.Int("level", e.Level),
		zap.Int("max_hp", e.MaxHP),
	)
	return e, nil
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AttributeBonus computes the bonus for the named attribute using floor
// division: floor((score - 10) / 2). Unknown attribute names yield 0.
//
// Postcondition: Returns floor((score - 10) / 2), or 0 for unknown names.
func (e *Entity) AttributeBonus(name string) int {
	score, ok := e.Attributes.Value(name)
	if !ok {
		e.deps.Logger.Warn("unknown attribute", zap.String("attribute", name))
		return 0
	}
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// EffectiveArmor returns armor including modifiers, floored at 0.
func (e *Entity) EffectiveArmor() int {
	return max(0, e.Armor+e.ArmorModifier)
}

// EffectiveMagicResistance returns magic resistance including modifiers,
// floored at 0.
func (e *Entity) EffectiveMagicResistance() int {
	return max(0, e.MagicResistance+e.MagicResistanceModifier)
}

// EffectiveInitiative returns initiative including modifiers, floored at 1.
func (e *Entity) EffectiveInitiative() int {
	return max(1, e.Initiative+e.InitiativeModifier)
}

// HitChanceModifier is the accuracy contribution to hit checks: dexterity
// bonus plus status-effect accuracy modifiers.
func (e *Entity) HitChanceModifier() int {
	return e.AttributeBonus("dexterity") + e.AccuracyModifier
}

// EvasionModifier is the evasion contribution to hit checks against this
// entity.
func (e *Entity) EvasionModifier() int {
	return e.AttributeBonus("dexterity")
}

// IsAlive reports whether the entity can still participate in combat.
func (e *Entity) IsAlive() bool {
	return e.CurrentHP > 0
}

// TakeDamage applies typed damage to the entity.
//
// Defense selection: physical and piercing damage are reduced by armor
// (piercing ignores half of it); magical, fire, frost, and holy damage are
// reduced by magic resistance; other types bypass defenses. Resistances
// subtract from and vulnerabilities add to a x1.0 multiplier.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0; returns (actual damage >= MinDamage,
// critical). Critical is always false until a critical-hit subsystem exists.
func (e *Entity) TakeDamage(amount int, damageType string) (int, bool) {
	var defense int
	switch damageType {
	case "physical", "piercing":
		defense = e.EffectiveArmor()
	case "magical", "fire", "frost", "holy":
		defense = e.EffectiveMagicResistance()
	default:
		defense = 0
	}
	if damageType == "piercing" {
		defense = defense / 2
	}

	modifier := 1.0
	if r, ok := e.Resistances[damageType]; ok {
		modifier -= r
	}
	if v, ok := e.Vulnerabilities[damageType]; ok {
		modifier += v
	}

	actual := max(e.deps.Combat.MinDamage, int(float64(amount)*modifier)-defense)

	e.CurrentHP -= actual
	if e.CurrentHP < 0 {
		e.CurrentHP = 0
	}

	e.deps.Logger.Debug("damage taken",
		zap.String("name", e.Name),
		zap.String("damage_type", damageType),
		zap.Int("amount", actual),
		zap.Int("current_hp", e.CurrentHP),
	)
	if e.CurrentHP == 0 {
		e.deps.Logger.Info("entity defeated", zap.String("name", e.Name), zap.String("uid", e.UID))
	}
	return actual, false
}

// Heal restores HP, clipped to MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= MaxHP; returns the HP actually restored.
func (e *Entity) Heal(amount int) int {
	old := e.CurrentHP
	e.CurrentHP = min(e.MaxHP, e.CurrentHP+amount)
	healed := e.CurrentHP - old
	if healed > 0 {
		e.deps.Logger.Debug("healed",
			zap.String("name", e.Name),
			zap.Int("amount", healed),
			zap.Int("current_hp", e.CurrentHP),
		)
	}
	return healed
}

// Resource returns the pool for the named resource, or nil if the entity
// does not use it.
func (e *Entity) Resource(kind string) *Pool {
	switch kind {
	case ResourceStamina:
		return e.Stamina
	case ResourceEnergy:
		return e.Energy
	case ResourceMana:
		return e.Mana
	default:
		return nil
	}
}

// HandleTurnStart processes the start of this entity's round: every active
// status effect ticks (damage over time fires, durations decrement), expired
// effects are removed, then resources regenerate.
//
// Postcondition: No remaining status effect has Duration <= 0.
func (e *Entity) HandleTurnStart() {
	// Tick in application order so repeated runs of a seeded episode stay
	// byte-for-byte identical.
	for _, id := range append([]string(nil), e.statusOrder...) {
		inst, ok := e.statusEffects[id]
		if !ok {
			continue
		}
		inst.onTick(e)
		if inst.Duration <= 0 {
			e.RemoveStatusEffect(id)
		}
	}
	e.regen.Regenerate(e)
}

func (e *Entity) knowsSkill(id string) bool {
	for _, s := range e.KnownSkills {
		if s == id {
			return true
		}
	}
	return false
}
