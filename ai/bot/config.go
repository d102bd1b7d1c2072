package bot

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/alphabeta"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/evaluator"
)

// NewMoveSelectorFromConfig builds a material-evaluating selector with the
// thread count, depth ceiling and seed taken from cfg.
func NewMoveSelectorFromConfig(cfg *config.Config) (*MoveSelector, error) {
	seed, seeded, err := cfg.Seed()
	if err != nil {
		return nil, err
	}
	var rng RandSource
	if seeded {
		log.Info().Msg("using-fixed-rand-seed")
		rng = NewSeededRand(seed)
	} else {
		rng = NewRand()
	}
	ms := NewMoveSelector(alphabeta.NewSolver(evaluator.Material{}), rng)
	ms.SetThreads(cfg.GetInt(config.ConfigSearchThreads))
	ms.SetMaxDepth(cfg.GetInt(config.ConfigMaxDepth))
	return ms, nil
}
