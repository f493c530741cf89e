package entity

import (
	"math"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
)

// LevelUp reports one level gained during GainExperience.
type LevelUp struct {
	OldLevel        int
	NewLevel        int
	HPIncrease      int
	StaminaIncrease int
	EnergyIncrease  int
	ManaIncrease    int
}

// ExperienceGain is the outcome of one experience award.
type ExperienceGain struct {
	Amount   int
	TotalXP  int
	LevelUps []LevelUp
}

// xpForNextLevel returns the experience needed to advance past the given
// level: ceil(base * factor^(level-1)).
func xpForNextLevel(level int, cfg config.ProgressionConfig) int {
	return int(math.Ceil(float64(cfg.XPLevelBase) * math.Pow(cfg.XPLevelFactor, float64(level-1))))
}

// GainExperience adds experience and applies every level-up it pays for.
// Leftover experience carries into the next level.
//
// Precondition: amount >= 0; the entity is a player.
// Postcondition: XP < XPToNextLevel; one LevelUp entry per level gained.
func (e *Entity) GainExperience(amount int) ExperienceGain {
	gain := ExperienceGain{Amount: amount}
	if e.Type != TypePlayer {
		return gain
	}

	e.XP += amount
	for e.XP >= e.XPToNextLevel {
		e.XP -= e.XPToNextLevel
		gain.LevelUps = append(gain.LevelUps, e.levelUp())
		e.XPToNextLevel = xpForNextLevel(e.Level, e.deps.Progression)
	}
	gain.TotalXP = e.XP

	e.deps.Logger.Info("experience gained",
		zap.String("name", e.Name),
		zap.Int("amount", amount),
		zap.Int("level", e.Level),
		zap.Int("xp_to_next", e.XPToNextLevel-e.XP),
	)
	return gain
}

// levelUp advances the entity one level: growth-modifier attribute gains,
// +5 HP per point of constitution, attribute-scaled resource maxima gains,
// full refill, and one attribute point plus one skill point.
func (e *Entity) levelUp() LevelUp {
	report := LevelUp{OldLevel: e.Level, NewLevel: e.Level + 1}
	e.Level++

	// Automatic attribute growth; fractional modifiers round to nearest.
	for attr, mod := range e.GrowthModifiers {
		gain := int(math.Round(mod))
		if gain <= 0 {
			continue
		}
		switch attr {
		case "strength":
			e.Attributes.Strength += gain
		case "dexterity":
			e.Attributes.Dexterity += gain
		case "intelligence":
			e.Attributes.Intelligence += gain
		case "constitution":
			e.Attributes.Constitution += gain
		case "wisdom":
			e.Attributes.Wisdom += gain
		}
	}

	oldMax := e.MaxHP
	e.MaxHP = baseHP + e.Attributes.Constitution*hpPerConstitution
	report.HPIncrease = e.MaxHP - oldMax
	e.CurrentHP = e.MaxHP

	if e.Stamina != nil {
		inc := 5 * max(0, e.AttributeBonus("constitution"))
		e.Stamina.Max += inc
		e.Stamina.Current = e.Stamina.Max
		report.StaminaIncrease = inc
	}
	if e.Energy != nil {
		inc := 5 * max(0, e.AttributeBonus("dexterity"))
		e.Energy.Max += inc
		e.Energy.Current = e.Energy.Max
		report.EnergyIncrease = inc
	}
	if e.Mana != nil {
		inc := 10 * max(0, e.AttributeBonus("intelligence")+e.AttributeBonus("wisdom"))
		e.Mana.Max += inc
		e.Mana.Current = e.Mana.Max
		report.ManaIncrease = inc
	}

	e.AttributePoints++
	e.SkillPoints++

	e.deps.Logger.Info("level up",
		zap.String("name", e.Name),
		zap.Int("level", e.Level),
		zap.Int("max_hp", e.MaxHP),
	)
	return report
}
