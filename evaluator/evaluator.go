// Package evaluator scores chess positions from White's point of view.
package evaluator

import "github.com/domino14/caissa/position"

// CheckmateScore is the magnitude of a decisive result. It is larger than any
// material total (all pieces of one side add up to 39).
const CheckmateScore = 1000.0

var PieceValues = map[position.PieceType]float64{
	position.Pawn:   1,
	position.Knight: 3,
	position.Bishop: 3,
	position.Rook:   5,
	position.Queen:  9,
	position.King:   0,
}

type Evaluator interface {
	Evaluate(p *position.Position) float64
}

// Material counts material only. Positive scores favour White.
type Material struct{}

func (Material) Evaluate(p *position.Position) float64 {
	if p.IsCheckmate() {
		// The side to move is the side that has been mated.
		if p.Turn() == position.White {
			return -CheckmateScore
		}
		return CheckmateScore
	}
	if p.IsStalemate() || p.IsInsufficientMaterial() || p.IsDrawByMoveCount() {
		return 0
	}
	score := 0.0
	p.ForEachPiece(func(_ position.Square, pc position.Piece) {
		v := PieceValues[pc.Type()]
		if pc.Color() == position.White {
			score += v
		} else {
			score -= v
		}
	})
	return score
}

// Func adapts a plain function to Evaluator.
type Func func(p *position.Position) float64

func (f Func) Evaluate(p *position.Position) float64 { return f(p) }
