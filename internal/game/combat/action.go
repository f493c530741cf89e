// Package combat implements the turn-based combat state machine: initiative
// order fixed at combat start, per-turn action resolution, round-boundary
// status processing, end detection, and reward hand-off.
package combat

import (
	"github.com/emberfell/emberfell/internal/game/entity"
	"github.com/emberfell/emberfell/internal/game/reward"
)

// Action kinds accepted by ExecuteAction.
const (
	ActionAttack = "attack"
	ActionSkill  = "skill"
	ActionFlee   = "flee"
	ActionItem   = "item"
)

// Action is one combatant's chosen action for their turn. Target fields are
// entity UIDs.
type Action struct {
	Type    string
	Target  string
	SkillID string
	Targets []string
	ItemID  string
}

// Result is the outcome of one executed action. Gameplay failures come back
// with Success false and a reason in Message; they never surface as errors.
type Result struct {
	Success bool
	Message string

	// Hit is set for attack actions.
	Hit bool
	// Skipped marks a turn consumed by a stunned actor.
	Skipped bool
	// Fled marks a successful flee; EntityUID names who left.
	Fled      bool
	EntityUID string

	SkillResult *entity.SkillResult

	// Combat progression, filled in by the manager.
	CombatEnd  bool
	Winner     string
	NextEntity string
	NewRound   bool

	// Reward fields, set when the players win.
	Experience   *reward.ExperienceAward
	Loot         []reward.LootDrop
	Distribution *reward.Distribution
}
