package combat

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// Tracker owns the initiative order for one combat. The order is rolled once
// at combat start and never rerolled; it only shrinks as entities die or flee.
type Tracker struct {
	order     []*entity.Entity
	cursor    int
	round     int
	processed map[string]bool

	src    dice.Source
	logger *zap.Logger
}

// NewTracker builds an empty Tracker.
//
// Precondition: src and logger must be non-nil.
func NewTracker(src dice.Source, logger *zap.Logger) *Tracker {
	return &Tracker{src: src, logger: logger}
}

// Calculate rolls initiative for every entity (effective initiative plus a
// d20) and fixes the descending order for the whole combat. Ties preserve the
// input order. The cursor resets to the first entity and the round to 1.
//
// Postcondition: Order() is a permutation of entities; Round() == 1.
func (t *Tracker) Calculate(entities []*entity.Entity) {
	type rolled struct {
		e     *entity.Entity
		total int
	}
	rolls := make([]rolled, len(entities))
	for i, e := range entities {
		total := e.EffectiveInitiative() + dice.RollD20(t.src)
		rolls[i] = rolled{e: e, total: total}
		t.logger.Debug("initiative rolled",
			zap.String("name", e.Name),
			zap.Int("base", e.EffectiveInitiative()),
			zap.Int("total", total),
		)
	}
	sort.SliceStable(rolls, func(i, j int) bool { return rolls[i].total > rolls[j].total })

	t.order = make([]*entity.Entity, len(rolls))
	for i, r := range rolls {
		t.order[i] = r.e
	}
	t.cursor = 0
	t.round = 1
	t.processed = make(map[string]bool)
}

// Current returns the entity whose turn it is, or nil when the order is
// empty.
func (t *Tracker) Current() *entity.Entity {
	if t.cursor >= len(t.order) {
		return nil
	}
	return t.order[t.cursor]
}

// Round returns the current round number.
func (t *Tracker) Round() int {
	return t.round
}

// Order returns the names of the remaining initiative order.
func (t *Tracker) Order() []string {
	names := make([]string, len(t.order))
	for i, e := range t.order {
		names[i] = e.Name
	}
	return names
}

// Advance marks the current entity's turn as taken and moves to the next
// living, unprocessed entity. present lists the entities still in the combat;
// the stored order is first filtered down to those that are present and
// alive, preserving relative order. Crossing the end of the order starts a
// new round: the round counter increments and the processed set clears.
//
// Postcondition: Returns (nil, ...) iff no living entity remains; otherwise
// the returned entity is alive and had not acted this round.
func (t *Tracker) Advance(present []*entity.Entity) (*entity.Entity, bool, string) {
	alive := make(map[string]bool, len(present))
	for _, e := range present {
		if e.IsAlive() {
			alive[e.UID] = true
		}
	}
	filtered := t.order[:0:0]
	for _, e := range t.order {
		if alive[e.UID] {
			filtered = append(filtered, e)
		}
	}
	t.order = filtered
	if len(t.order) == 0 {
		return nil, false, "no entities remain in the initiative order"
	}

	newRound := false
	if t.cursor < len(t.order) {
		t.processed[t.order[t.cursor].UID] = true
	}
	t.cursor++
	if t.cursor >= len(t.order) {
		t.startRound()
		newRound = true
	}

	// Bounded: after at most one full wrap every living entity is
	// unprocessed again.
	for range 2 * len(t.order) {
		e := t.order[t.cursor]
		if e.IsAlive() && !t.processed[e.UID] {
			msg := fmt.Sprintf("%s is up", e.Name)
			if newRound {
				msg = fmt.Sprintf("round %d begins; %s is up", t.round, e.Name)
			}
			return e, newRound, msg
		}
		t.cursor++
		if t.cursor >= len(t.order) {
			t.startRound()
			newRound = true
		}
	}
	return nil, newRound, "no entity can act"
}

func (t *Tracker) startRound() {
	t.round++
	t.cursor = 0
	t.processed = make(map[string]bool)
	t.logger.Debug("new round", zap.Int("round", t.round))
}
