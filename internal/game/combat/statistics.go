package combat

// Threat gains per action kind against an enemy.
const (
	threatPerAttack = 10
	threatPerSkill  = 15
)

// Statistics accumulates per-combat telemetry. All maps are keyed by entity
// UID; the threat table maps enemy UID to attacker UID to accumulated threat.
type Statistics struct {
	Threat      map[string]map[string]int
	DamageDealt map[string]int
	DamageTaken map[string]int
	HealingDone map[string]int
}

// NewStatistics returns an empty Statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		Threat:      make(map[string]map[string]int),
		DamageDealt: make(map[string]int),
		DamageTaken: make(map[string]int),
		HealingDone: make(map[string]int),
	}
}

// AddThreat raises attackerUID's threat on enemyUID.
func (s *Statistics) AddThreat(enemyUID, attackerUID string, amount int) {
	if s.Threat[enemyUID] == nil {
		s.Threat[enemyUID] = make(map[string]int)
	}
	s.Threat[enemyUID][attackerUID] += amount
}

// ThreatOn returns the threat table for one enemy; nil when nobody has
// generated threat yet.
func (s *Statistics) ThreatOn(enemyUID string) map[string]int {
	return s.Threat[enemyUID]
}

// RecordDamage accumulates damage dealt by source and taken by target.
func (s *Statistics) RecordDamage(sourceUID, targetUID string, amount int) {
	s.DamageDealt[sourceUID] += amount
	s.DamageTaken[targetUID] += amount
}

// RecordHealing accumulates healing done by source.
func (s *Statistics) RecordHealing(sourceUID string, amount int) {
	s.HealingDone[sourceUID] += amount
}
