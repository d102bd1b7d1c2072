package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/alphabeta"
	"github.com/domino14/caissa/position"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type failingProvider struct{ err error }

func (f failingProvider) ChooseMove(context.Context, *position.Position, string) (position.Move, error) {
	return position.Move{}, f.err
}

func newGame() *Game {
	sel := bot.NewMoveSelector(alphabeta.NewSolver(nil),
		bot.NewSeededRand(bot.SeedFromString("game-test")))
	return New(sel)
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g := newGame()
	st := g.State()
	is.Equal(st.FEN, startFEN)
	is.Equal(st.Turn, "white")
	is.Equal(st.Status, StatusPlaying)
	is.Equal(st.Outcome, "*")
	is.Equal(len(st.History), 0)
}

func TestIllegalMoveLeavesGameAlone(t *testing.T) {
	is := is.New(t)
	g := newGame()
	_, err := g.PlayUserMove("e4")
	is.NoErr(err)
	before := g.State()

	for _, bad := range []string{"e4", "Ke2", "e7e4", "zz", ""} {
		_, err = g.PlayUserMove(bad)
		is.True(errors.Is(err, ErrIllegalMove))
		is.Equal(g.State(), before)
	}
}

func TestUserMoveInUCI(t *testing.T) {
	is := is.New(t)
	g := newGame()
	st, err := g.PlayUserMove("g1f3")
	is.NoErr(err)
	is.Equal(st.History, []string{"Nf3"})
	is.Equal(st.LastMove, "g1f3")

	_, err = g.PlayUserMove("b8c6")
	is.NoErr(err)
	st, err = g.PlayUserMove("b1c3")
	is.NoErr(err)
	is.Equal(st.History, []string{"Nf3", "Nc6", "Nc3"})

	before := st
	_, err = g.PlayUserMove("e2e5")
	is.True(errors.Is(err, ErrIllegalMove))
	is.Equal(g.State(), before)
}

func TestUserThenAI(t *testing.T) {
	is := is.New(t)
	g := newGame()
	st, err := g.PlayUserMove("e2e4")
	is.NoErr(err)
	is.Equal(st.Turn, "black")
	is.Equal(st.LastMove, "e2e4")

	st, san, err := g.PlayAIMove(context.Background(), "easy")
	is.NoErr(err)
	is.Equal(st.Turn, "white")
	is.Equal(len(st.History), 2)
	is.Equal(st.History[0], "e4")
	is.Equal(st.History[1], san)
}

func TestCheckmateEndsGame(t *testing.T) {
	is := is.New(t)
	g := newGame()
	var st State
	var err error
	for _, m := range []string{"f3", "e5", "g4", "Qh4#"} {
		st, err = g.PlayUserMove(m)
		is.NoErr(err)
	}
	is.Equal(st.Status, StatusCheckmate)
	is.Equal(st.Outcome, "0-1")
	is.True(st.Over())

	_, err = g.PlayUserMove("a3")
	is.Equal(err, ErrGameOver)
	_, _, err = g.PlayAIMove(context.Background(), "easy")
	is.Equal(err, ErrGameOver)

	st, err = g.Takeback(1)
	is.NoErr(err)
	is.Equal(st.Status, StatusPlaying)
	is.Equal(st.Turn, "black")
}

func TestTakeback(t *testing.T) {
	is := is.New(t)
	g := newGame()
	_, err := g.Takeback(1)
	is.Equal(err, ErrNothingToTakeBack)

	_, err = g.PlayUserMove("d4")
	is.NoErr(err)
	_, err = g.PlayUserMove("d5")
	is.NoErr(err)
	_, err = g.Takeback(3)
	is.Equal(err, ErrNothingToTakeBack)

	st, err := g.Takeback(2)
	is.NoErr(err)
	is.Equal(st.FEN, startFEN)
	is.Equal(len(st.History), 0)
}

func TestFivefoldRepetition(t *testing.T) {
	is := is.New(t)
	g := newGame()
	var st State
	var err error
	for i := 0; i < 4; i++ {
		for _, m := range []string{"Nf3", "Nf6", "Ng1", "Ng8"} {
			is.Equal(g.State().Status, StatusPlaying)
			st, err = g.PlayUserMove(m)
			is.NoErr(err)
		}
	}
	is.Equal(st.Status, StatusFivefoldRepetition)
	is.Equal(st.Outcome, "1/2-1/2")

	st, err = g.Takeback(1)
	is.NoErr(err)
	is.Equal(st.Status, StatusPlaying)
}

func TestSetFEN(t *testing.T) {
	is := is.New(t)
	g := newGame()
	_, err := g.SetFEN("nonsense")
	is.True(errors.Is(err, position.ErrInvalidFEN))
	is.Equal(g.State().FEN, startFEN)

	st, err := g.SetFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	is.NoErr(err)
	is.Equal(st.Status, StatusStalemate)
	is.Equal(st.Outcome, "1/2-1/2")

	st = g.Reset()
	is.Equal(st.FEN, startFEN)
}

func TestProviderErrorPropagates(t *testing.T) {
	is := is.New(t)
	g := New(failingProvider{err: bot.ErrNoLegalMove})
	_, _, err := g.PlayAIMove(context.Background(), "medium")
	is.True(errors.Is(err, bot.ErrNoLegalMove))
	is.Equal(g.State().FEN, startFEN)
}

func TestOnChange(t *testing.T) {
	is := is.New(t)
	g := newGame()
	var seen []State
	g.OnChange(func(s State) { seen = append(seen, s) })
	_, err := g.PlayUserMove("e4")
	is.NoErr(err)
	_, err = g.PlayUserMove("e4")
	is.True(err != nil)
	g.Reset()
	is.Equal(len(seen), 2)
	is.Equal(seen[0].LastMove, "e2e4")
	is.Equal(seen[1].FEN, startFEN)
}

func TestStateVersion(t *testing.T) {
	is := is.New(t)
	g := newGame()
	v := g.State().Version
	is.True(v > 0)

	st, err := g.PlayUserMove("e4")
	is.NoErr(err)
	is.Equal(st.Version, v+1)
	_, err = g.PlayUserMove("e4")
	is.True(err != nil)
	is.Equal(g.State().Version, v+1)

	st, err = g.Takeback(1)
	is.NoErr(err)
	is.Equal(st.Version, v+2)
	st, err = g.SetFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	is.NoErr(err)
	is.Equal(st.Version, v+3)
	is.Equal(g.Reset().Version, v+4)
}

func TestConcurrentAccess(t *testing.T) {
	is := is.New(t)
	g := newGame()
	var wg sync.WaitGroup
	var played atomic.Int64
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_ = g.State()
				if _, _, err := g.PlayAIMove(context.Background(), "easy"); err == nil {
					played.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	st := g.State()
	is.Equal(int64(len(st.History)), played.Load())
	p, err := position.FromFEN(st.FEN)
	is.NoErr(err)
	is.Equal(p.FEN(), g.Position().FEN())
}
