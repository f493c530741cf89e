// Package reward computes post-combat rewards: experience split among the
// party, loot rolled from defeated enemies' loot tables, and the distribution
// of experience that may level players up.
package reward

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
)

// GoldItemID is the loot-table item id used for rolled gold.
const GoldItemID = "gold"

// ExperienceAward is the experience payout for one combat.
type ExperienceAward struct {
	Total int
	// PerPlayer is Total integer-divided among the party; the remainder is
	// discarded.
	PerPlayer int
}

// LootDrop is one rolled loot entry. Gold uses GoldItemID.
type LootDrop struct {
	// InstanceID uniquely identifies this drop so an inventory collaborator
	// can track it.
	InstanceID string
	ItemID     string
	Quantity   int
	// SourceName is the defeated enemy the drop came from.
	SourceName string
}

// Distribution reports what each player received.
type Distribution struct {
	PerPlayer int
	// LevelUps maps player UID to the level-ups the award triggered.
	LevelUps map[string][]entity.LevelUp
}

// Calculator rolls and distributes combat rewards.
type Calculator struct {
	src    dice.Source
	logger *zap.Logger
}

// NewCalculator builds a Calculator drawing randomness from src.
//
// Precondition: src and logger must be non-nil.
func NewCalculator(src dice.Source, logger *zap.Logger) *Calculator {
	return &Calculator{src: src, logger: logger}
}

// Experience sums the defeated enemies' experience rewards and splits the
// total evenly among the players.
//
// Postcondition: PerPlayer = Total / len(players); 0 when there are no
// players.
func (c *Calculator) Experience(defeated, players []*entity.Entity) ExperienceAward {
	award := ExperienceAward{}
	for _, e := range defeated {
		award.Total += e.ExperienceReward
	}
	if len(players) > 0 {
		award.PerPlayer = award.Total / len(players)
	}
	return award
}

// Loot rolls every defeated enemy's loot table: each entry drops when a
// uniform draw lands within its chance, with a uniform quantity in
// [MinQuantity, MaxQuantity]. Each enemy always also drops gold scaled by a
// uniform factor in [0.8, 1.2).
func (c *Calculator) Loot(defeated []*entity.Entity) []LootDrop {
	var drops []LootDrop
	for _, e := range defeated {
		for _, entry := range e.Loot {
			if c.src.Float64() > entry.Chance {
				continue
			}
			drops = append(drops, LootDrop{
				InstanceID: uuid.New().String(),
				ItemID:     entry.ItemID,
				Quantity:   dice.RollRange(c.src, entry.MinQuantity, entry.MaxQuantity),
				SourceName: e.Name,
			})
		}
		drops = append(drops, LootDrop{
			InstanceID: uuid.New().String(),
			ItemID:     GoldItemID,
			Quantity:   dice.RollSpread(c.src, e.GoldReward, 0.8, 1.2),
			SourceName: e.Name,
		})
	}
	c.logger.Debug("loot rolled", zap.Int("defeated", len(defeated)), zap.Int("drops", len(drops)))
	return drops
}

// Distribute applies the per-player experience share to every player and
// reports any resulting level-ups. Handing loot to an inventory is the
// caller's job.
//
// Postcondition: every player gained exactly award.PerPlayer experience.
func (c *Calculator) Distribute(award ExperienceAward, players []*entity.Entity) Distribution {
	dist := Distribution{
		PerPlayer: award.PerPlayer,
		LevelUps:  make(map[string][]entity.LevelUp),
	}
	for _, p := range players {
		gain := p.GainExperience(award.PerPlayer)
		if len(gain.LevelUps) > 0 {
			dist.LevelUps[p.UID] = gain.LevelUps
		}
	}
	c.logger.Info("rewards distributed",
		zap.Int("per_player", award.PerPlayer),
		zap.Int("players", len(players)),
		zap.Int("level_ups", len(dist.LevelUps)),
	)
	return dist
}
