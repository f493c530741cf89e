// Package main provides the emberfell binary: it loads configuration and the
// definition content, assembles a party and an encounter from templates, and
// auto-resolves the combat with the built-in AI strategies, printing the
// combat log. A fixed seed replays the exact same battle.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/game/ai"
	"github.com/emberfell/emberfell/internal/game/combat"
	"github.com/emberfell/emberfell/internal/game/definitions"
	"github.com/emberfell/emberfell/internal/game/dice"
	"github.com/emberfell/emberfell/internal/game/entity"
	"github.com/emberfell/emberfell/internal/game/reward"
	"github.com/emberfell/emberfell/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/emberfell.yaml", "path to configuration file")
	definitionsDir := flag.String("definitions", "content/definitions", "path to definition YAML root")
	party := flag.String("party", "warrior,cleric", "comma-separated player template ids")
	encounter := flag.String("encounter", "goblin,goblin,goblin_shaman", "comma-separated enemy template ids")
	seed := flag.Int64("seed", 0, "RNG seed; 0 draws from the OS entropy source")
	maxActions := flag.Int("max-actions", 1000, "abort the battle after this many actions")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Info("using seeded RNG", zap.Int64("seed", *seed))
	} else {
		src = dice.NewCryptoSource()
	}

	lib, err := definitions.Load(*definitionsDir, logger)
	if err != nil {
		logger.Fatal("loading definitions", zap.Error(err))
	}

	deps := entity.Deps{
		Library:     lib,
		Source:      src,
		Logger:      logger,
		Combat:      cfg.Combat,
		Progression: cfg.Progression,
		Regen:       cfg.Regen,
	}
	players, err := buildSide(lib, *party, entity.TypePlayer, deps)
	if err != nil {
		logger.Fatal("building party", zap.Error(err))
	}
	enemies, err := buildSide(lib, *encounter, entity.TypeEnemy, deps)
	if err != nil {
		logger.Fatal("building encounter", zap.Error(err))
	}

	if err := runBattle(cfg, src, lib, logger, players, enemies, *maxActions); err != nil {
		logger.Fatal("running battle", zap.Error(err))
	}
}

func buildSide(lib *definitions.Library, ids string, typ entity.Type, deps entity.Deps) ([]*entity.Entity, error) {
	var side []*entity.Entity
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		tmpl, err := lib.Template(id)
		if err != nil {
			return nil, err
		}
		e, err := entity.New(tmpl, typ, "", deps)
		if err != nil {
			return nil, err
		}
		side = append(side, e)
	}
	return side, nil
}

func runBattle(cfg config.Config, src dice.Source, lib *definitions.Library, logger *zap.Logger, players, enemies []*entity.Entity, maxActions int) error {
	mgr := combat.NewManager(cfg.Combat, src, logger)
	reg := ai.NewRegistry(lib)

	first, err := mgr.StartCombat(players, enemies)
	if err != nil {
		return err
	}
	fmt.Printf("=== Combat begins: %s acts first ===\n", first)

	for i := 0; i < maxActions && mgr.Active(); i++ {
		actor := mgr.Current()
		if actor == nil {
			break
		}
		var action combat.Action
		if actor.Type == entity.TypePlayer {
			action = reg.ChooseFor(actor, mgr.Players(), mgr.Enemies(), mgr.Statistics())
		} else {
			action = reg.ChooseFor(actor, mgr.Enemies(), mgr.Players(), mgr.Statistics())
		}

		res, err := mgr.ExecuteAction(action)
		if err != nil {
			return err
		}
		if res.Message != "" {
			fmt.Println(res.Message)
		}
		if res.CombatEnd {
			printOutcome(res, mgr)
			return nil
		}
	}

	if mgr.Active() {
		fmt.Println("=== Battle aborted: action limit reached ===")
		os.Exit(1)
	}
	return nil
}

func printOutcome(res combat.Result, mgr *combat.Manager) {
	fmt.Printf("=== Combat over after %d rounds. Winner: %s ===\n", mgr.Round(), res.Winner)
	if res.Experience != nil {
		fmt.Printf("Experience: %d total, %d per player\n", res.Experience.Total, res.Experience.PerPlayer)
	}
	for _, drop := range res.Loot {
		if drop.ItemID == reward.GoldItemID {
			fmt.Printf("Loot: %d gold (from %s)\n", drop.Quantity, drop.SourceName)
		} else {
			fmt.Printf("Loot: %dx %s (from %s)\n", drop.Quantity, drop.ItemID, drop.SourceName)
		}
	}
	if res.Distribution != nil {
		for uid, ups := range res.Distribution.LevelUps {
			for _, p := range mgr.Players() {
				if p.UID == uid {
					fmt.Printf("%s reached level %d!\n", p.Name, ups[len(ups)-1].NewLevel)
				}
			}
		}
	}
}
