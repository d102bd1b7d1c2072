package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/caissa/alphabeta"
	"github.com/domino14/caissa/position"
)

var (
	ErrNoLegalMove   = errors.New("no legal moves in this position")
	ErrDepthTooLarge = errors.New("difficulty depth exceeds the maximum search depth")
)

// MoveProvider chooses a move for the side to move. The move is not played.
type MoveProvider interface {
	ChooseMove(ctx context.Context, pos *position.Position, difficulty string) (position.Move, error)
}

// Selection is the result of a root search.
type Selection struct {
	Move       position.Move
	SAN        string
	UCI        string
	Value      float64 // White's point of view, before noise
	Perturbed  float64 // mover's point of view, after noise
	Difficulty Difficulty
	Nodes      int64
}

// MoveSelector picks a move at a given difficulty: every root move is
// searched depth-1 plies deeper, noise is added, and the highest noisy score
// wins. Ties go to the earliest move in enumeration order.
type MoveSelector struct {
	solver   *alphabeta.Solver
	threads  int
	maxDepth int

	mu  sync.Mutex // guards rng
	rng RandSource
}

func NewMoveSelector(solver *alphabeta.Solver, rng RandSource) *MoveSelector {
	if solver == nil {
		solver = alphabeta.NewSolver(nil)
	}
	if rng == nil {
		rng = NewRand()
	}
	return &MoveSelector{solver: solver, rng: rng, threads: 1}
}

// SetThreads sets how many root moves are searched at once. The result does
// not depend on it.
func (ms *MoveSelector) SetThreads(t int) {
	if t < 1 {
		t = 1
	}
	ms.threads = t
}

// SetMaxDepth rejects difficulties that search deeper than d. 0 means no limit.
func (ms *MoveSelector) SetMaxDepth(d int) {
	ms.maxDepth = d
}

func (ms *MoveSelector) Solver() *alphabeta.Solver {
	return ms.solver
}

// SelectMove picks a move at the named difficulty.
func (ms *MoveSelector) SelectMove(pos *position.Position, difficulty string) (position.Move, error) {
	sel, err := ms.BestMove(context.Background(), pos, LookupDifficulty(difficulty))
	if err != nil {
		return position.Move{}, err
	}
	return sel.Move, nil
}

func (ms *MoveSelector) ChooseMove(ctx context.Context, pos *position.Position, difficulty string) (position.Move, error) {
	sel, err := ms.BestMove(ctx, pos, LookupDifficulty(difficulty))
	if err != nil {
		return position.Move{}, err
	}
	return sel.Move, nil
}

// BestMove searches every root move of pos at the given difficulty.
func (ms *MoveSelector) BestMove(ctx context.Context, pos *position.Position, diff Difficulty) (*Selection, error) {
	if ms.maxDepth > 0 && diff.Depth > ms.maxDepth {
		return nil, ErrDepthTooLarge
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMove
	}
	ms.solver.ResetNodes()

	values, err := ms.searchRoot(ctx, pos, moves, diff.Depth-1)
	if err != nil {
		return nil, err
	}

	// Scores are from White's side; flip them so the mover always maximizes.
	sign := 1.0
	if pos.Turn() == position.Black {
		sign = -1.0
	}

	ms.mu.Lock()
	best := -1
	bestPerturbed := alphabeta.NegInfinity
	for i, v := range values {
		perturbed := sign*v + (ms.rng.Float64()*2-1)*diff.Randomness
		if e := log.Debug(); e.Enabled() {
			e.Str("move", pos.SAN(moves[i])).Float64("value", v).
				Float64("perturbed", perturbed).Msg("root-move")
		}
		if best < 0 || perturbed > bestPerturbed {
			best = i
			bestPerturbed = perturbed
		}
	}
	ms.mu.Unlock()

	sel := &Selection{
		Move:       moves[best],
		SAN:        pos.SAN(moves[best]),
		UCI:        pos.UCI(moves[best]),
		Value:      values[best],
		Perturbed:  bestPerturbed,
		Difficulty: diff,
		Nodes:      ms.solver.Nodes(),
	}
	log.Debug().Str("difficulty", diff.Name).Str("move", sel.SAN).
		Float64("value", sel.Value).Int64("nodes", sel.Nodes).Msg("selected-move")
	return sel, nil
}

// searchRoot returns the value of every child of pos, in the order of moves.
func (ms *MoveSelector) searchRoot(ctx context.Context, pos *position.Position,
	moves []position.Move, depth int) ([]float64, error) {

	values := make([]float64, len(moves))
	// After the root move it is the other side's turn.
	childMaximizing := pos.Turn() == position.Black

	if ms.threads <= 1 {
		for i, m := range moves {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			values[i] = ms.solver.Search(pos.Apply(m), depth,
				alphabeta.NegInfinity, alphabeta.Infinity, childMaximizing)
		}
		return values, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ms.threads)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values[i] = ms.solver.Search(pos.Apply(m), depth,
				alphabeta.NegInfinity, alphabeta.Infinity, childMaximizing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
