package entity

import "github.com/emberfell/emberfell/internal/config"

// RegenStrategy is the per-role resource regeneration policy run at the
// owner's turn start.
type RegenStrategy interface {
	Regenerate(e *Entity)
}

// regenFor selects the regeneration strategy for a role. Players regenerate
// with attribute bonuses on top of the flat rates; enemies and NPCs use the
// flat rates alone.
func regenFor(typ Type, cfg config.RegenConfig) RegenStrategy {
	if typ == TypePlayer {
		return attributeRegen{cfg: cfg}
	}
	return flatRegen{cfg: cfg}
}

type flatRegen struct {
	cfg config.RegenConfig
}

func (r flatRegen) Regenerate(e *Entity) {
	if e.Stamina != nil {
		e.Stamina.Add(r.cfg.Stamina)
	}
	if e.Energy != nil {
		e.Energy.Add(r.cfg.Energy)
	}
	if e.Mana != nil {
		e.Mana.Add(r.cfg.Mana)
	}
}

// attributeRegen adds the governing attribute bonus (floored at 0) to each
// flat rate: constitution for stamina, dexterity for energy, wisdom for mana.
type attributeRegen struct {
	cfg config.RegenConfig
}

func (r attributeRegen) Regenerate(e *Entity) {
	if e.Stamina != nil {
		e.Stamina.Add(r.cfg.Stamina + max(0, e.AttributeBonus("constitution")))
	}
	if e.Energy != nil {
		e.Energy.Add(r.cfg.Energy + max(0, e.AttributeBonus("dexterity")))
	}
	if e.Mana != nil {
		e.Mana.Add(r.cfg.Mana + max(0, e.AttributeBonus("wisdom")))
	}
}
