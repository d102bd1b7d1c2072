package alphabeta

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/caissa/evaluator"
	"github.com/domino14/caissa/position"
)

// White mates with Ra8#, or can win a knight with Bxc3.
const mateInOneFEN = "6k1/5ppp/8/8/8/2n5/3B1PPP/R5K1 w - - 0 1"

func mustFEN(t *testing.T, fen string) *position.Position {
	t.Helper()
	p, err := position.FromFEN(fen)
	if err != nil {
		t.Fatalf("bad fen %q: %v", fen, err)
	}
	return p
}

func TestDepthZeroIsEvaluation(t *testing.T) {
	is := is.New(t)
	s := NewSolver(evaluator.Material{})
	p := mustFEN(t, "r3k3/pp6/8/8/8/1n6/PPP5/4K3 w - - 0 1")
	is.Equal(s.Search(p, 0, NegInfinity, Infinity, true), -7.0)
	is.Equal(s.Nodes(), int64(1))
}

func TestTerminalStopsSearch(t *testing.T) {
	is := is.New(t)
	s := NewSolver(evaluator.Material{})
	p := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	is.Equal(s.Search(p, 4, NegInfinity, Infinity, false), 0.0)
	is.Equal(s.Nodes(), int64(1))
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	is := is.New(t)
	s := NewSolver(nil)
	for _, fen := range []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		mateInOneFEN,
		"4k3/8/3p4/2n1p3/4P3/2N2B2/8/4K3 b - - 0 1",
	} {
		p := mustFEN(t, fen)
		before := p.FEN()
		s.Search(p, 2, NegInfinity, Infinity, p.Turn() == position.White)
		is.Equal(p.FEN(), before)
	}
}

func TestPruningMatchesMinimax(t *testing.T) {
	is := is.New(t)
	for _, fen := range []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"4k3/8/3p4/2n1p3/4P3/2N2B2/8/4K3 b - - 0 1",
		mateInOneFEN,
	} {
		p := mustFEN(t, fen)
		maximizing := p.Turn() == position.White

		pruned := NewSolver(evaluator.Material{})
		full := NewSolver(evaluator.Material{})
		full.SetPruningDisabled(true)

		pv := pruned.Search(p, 3, NegInfinity, Infinity, maximizing)
		fv := full.Search(p, 3, NegInfinity, Infinity, maximizing)
		is.Equal(pv, fv)
		is.True(pruned.Nodes() <= full.Nodes())
	}
}

func TestCheckmateDominatesMaterial(t *testing.T) {
	is := is.New(t)
	s := NewSolver(evaluator.Material{})
	p := mustFEN(t, mateInOneFEN)

	mate, err := p.ParseMove("Ra8")
	is.NoErr(err)
	after := p.Apply(mate)
	is.True(after.IsCheckmate())
	is.Equal(evaluator.Material{}.Evaluate(after), evaluator.CheckmateScore)

	grab, err := p.ParseMove("Bxc3")
	is.NoErr(err)
	is.Equal(evaluator.Material{}.Evaluate(p.Apply(grab)), 8.0)

	for depth := 1; depth <= 3; depth++ {
		is.Equal(s.Solve(p, depth), evaluator.CheckmateScore)
	}
}

func TestMinimizingFindsBlackMate(t *testing.T) {
	is := is.New(t)
	s := NewSolver(evaluator.Material{})
	// Black mates with ...Qh4#.
	p := mustFEN(t, "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	is.Equal(s.Search(p, 1, NegInfinity, Infinity, false), -evaluator.CheckmateScore)
}
