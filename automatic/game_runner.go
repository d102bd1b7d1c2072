// Package automatic plays computer-versus-computer games between two
// difficulty tiers and collects statistics about the results.
package automatic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/alphabeta"
	"github.com/domino14/caissa/evaluator"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/stats"
)

// StatusPlyLimit marks a game stopped at the ply cap. It counts as a draw.
const StatusPlyLimit game.Status = "ply_limit"

// DefaultMaxPlies stops runaway games; the seventy-five move rule would end
// them eventually anyway.
const DefaultMaxPlies = 300

// GameResult describes a finished game.
type GameResult struct {
	ID       string
	White    string
	Black    string
	Plies    int
	Status   game.Status
	Outcome  string
	FinalFEN string
}

// ResultFor returns the result for White, or for Black when white is false.
func (gr GameResult) ResultFor(white bool) stats.Result {
	switch gr.Outcome {
	case "1-0":
		if white {
			return stats.Win
		}
		return stats.Loss
	case "0-1":
		if white {
			return stats.Loss
		}
		return stats.Win
	}
	return stats.Draw
}

// GameRunner plays one game at a time between two tiers. Both sides share a
// seeded selector so a game is reproducible from its seed.
type GameRunner struct {
	game     *game.Game
	white    aibot.Difficulty
	black    aibot.Difficulty
	maxPlies int
	logchan  chan []string
}

// NewGameRunner returns a runner for white against black. logchan, if not
// nil, receives one CSV record per move.
func NewGameRunner(logchan chan []string, white, black string, seed [32]byte, maxPlies int) *GameRunner {
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}
	sel := aibot.NewMoveSelector(alphabeta.NewSolver(evaluator.Material{}),
		aibot.NewSeededRand(seed))
	return &GameRunner{
		game:     game.New(sel),
		white:    aibot.LookupDifficulty(white),
		black:    aibot.LookupDifficulty(black),
		maxPlies: maxPlies,
		logchan:  logchan,
	}
}

// PlayGame plays from the starting position until the game ends or the ply
// cap is reached.
func (r *GameRunner) PlayGame(ctx context.Context, gameID string) (GameResult, error) {
	st := r.game.Reset()
	res := GameResult{ID: gameID, White: r.white.Name, Black: r.black.Name}

	for !st.Over() {
		if len(st.History) >= r.maxPlies {
			res.Plies = len(st.History)
			res.Status = StatusPlyLimit
			res.Outcome = "1/2-1/2"
			res.FinalFEN = st.FEN
			log.Debug().Str("gameID", gameID).Msg("ply-limit-reached")
			return res, nil
		}
		diff := r.white
		if st.Turn == "black" {
			diff = r.black
		}
		var san string
		var err error
		st, san, err = r.game.PlayAIMove(ctx, diff.Name)
		if err != nil {
			return res, err
		}
		if r.logchan != nil {
			ply := len(st.History)
			r.logchan <- []string{gameID, strconv.Itoa(ply), colorToMove(ply), diff.Name, san, st.FEN}
		}
	}
	res.Plies = len(st.History)
	res.Status = st.Status
	res.Outcome = st.Outcome
	res.FinalFEN = st.FEN
	log.Debug().Str("gameID", gameID).Str("outcome", res.Outcome).
		Str("status", string(res.Status)).Int("plies", res.Plies).Msg("game-over")
	return res, nil
}

// colorToMove names the side that played ply n (1-based).
func colorToMove(n int) string {
	if n%2 == 1 {
		return "white"
	}
	return "black"
}

func gameID(i int) string {
	return fmt.Sprintf("g%05d", i)
}
