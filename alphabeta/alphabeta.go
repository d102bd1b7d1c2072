// Package alphabeta implements a chess searcher using depth-limited
// minimax with alpha-beta pruning.
package alphabeta

import (
	"math"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/evaluator"
	"github.com/domino14/caissa/position"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
(* Initial call *)
alphabeta(origin, depth, −∞, +∞, TRUE)
**/
// Children are successor positions; nothing is played or unplayed.

var (
	Infinity    = math.Inf(1)
	NegInfinity = math.Inf(-1)
)

// Solver implements the minimax + alphabeta algorithm. It holds no position
// state, so one Solver may search from several goroutines at once.
type Solver struct {
	evaluator      evaluator.Evaluator
	disablePruning bool
	totalNodes     atomic.Int64
}

func NewSolver(e evaluator.Evaluator) *Solver {
	if e == nil {
		e = evaluator.Material{}
	}
	return &Solver{evaluator: e}
}

// SetPruningDisabled turns the search into plain full-width minimax.
func (s *Solver) SetPruningDisabled(d bool) {
	s.disablePruning = d
}

func (s *Solver) Evaluator() evaluator.Evaluator {
	return s.evaluator
}

// Nodes returns the number of positions visited since the last ResetNodes.
func (s *Solver) Nodes() int64 {
	return s.totalNodes.Load()
}

func (s *Solver) ResetNodes() {
	s.totalNodes.Store(0)
}

// Solve searches pos to the given depth with a full window, maximizing when
// White is to move.
func (s *Solver) Solve(pos *position.Position, depth int) float64 {
	s.ResetNodes()
	v := s.Search(pos, depth, NegInfinity, Infinity, pos.Turn() == position.White)
	log.Debug().Int("depth", depth).Int64("nodes", s.Nodes()).
		Float64("value", v).Str("fen", pos.FEN()).Msg("solve-done")
	return v
}

// Search returns the minimax value of pos searched depth plies deep. Scores
// are from White's point of view; maximizing is true when White is to move in
// the usual case. The result is fail-soft.
func (s *Solver) Search(pos *position.Position, depth int, α, β float64, maximizingPlayer bool) float64 {
	s.totalNodes.Add(1)
	if depth <= 0 || pos.IsTerminal() {
		return s.evaluator.Evaluate(pos)
	}
	if maximizingPlayer {
		value := NegInfinity
		for _, m := range pos.LegalMoves() {
			v := s.Search(pos.Apply(m), depth-1, α, β, false)
			value = math.Max(value, v)
			α = math.Max(α, v)
			if β <= α && !s.disablePruning {
				break
			}
		}
		return value
	}
	value := Infinity
	for _, m := range pos.LegalMoves() {
		v := s.Search(pos.Apply(m), depth-1, α, β, true)
		value = math.Min(value, v)
		β = math.Min(β, v)
		if β <= α && !s.disablePruning {
			break
		}
	}
	return value
}
