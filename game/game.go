// Package game owns the single live chess game. Every read and write of the
// game goes through Game, which serializes them with a mutex; a search for
// the AI's reply holds the lock too, so nothing can move the position out
// from under it.
package game

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/position"
)

// FivefoldRepetitions is the number of occurrences of one position that ends
// the game without a claim.
const FivefoldRepetitions = 5

var (
	ErrGameOver          = errors.New("game is over")
	ErrNothingToTakeBack = errors.New("nothing to take back")
	// ErrIllegalMove is returned when a user move does not parse to a legal
	// move. The game is left as it was.
	ErrIllegalMove = position.ErrIllegalMove
)

type ply struct {
	pos *position.Position
	san string
	uci string
}

// Game is an explicitly owned, single-writer game. The zero value is not
// usable; call New.
type Game struct {
	mu sync.Mutex

	provider bot.MoveProvider
	start    *position.Position
	// plies[i].pos is the position after the i-th move.
	plies       []ply
	repetitions map[uint64]int
	version     uint64
	listeners   []func(State)
}

func New(provider bot.MoveProvider) *Game {
	g := &Game{provider: provider}
	g.resetTo(position.Start())
	return g
}

// OnChange registers fn to receive the new state after every change. fn is
// called without the game lock held, so two changes made close together may
// reach fn out of order; compare State.Version.
func (g *Game) OnChange(fn func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Game) resetTo(p *position.Position) {
	g.start = p
	g.plies = g.plies[:0]
	g.version++
	g.repetitions = map[uint64]int{p.RepetitionKey(): 1}
}

func (g *Game) current() *position.Position {
	if len(g.plies) == 0 {
		return g.start
	}
	return g.plies[len(g.plies)-1].pos
}

func (g *Game) notify(st State) {
	g.mu.Lock()
	ls := append([]func(State){}, g.listeners...)
	g.mu.Unlock()
	for _, fn := range ls {
		fn(st)
	}
}

// Reset puts the game back at the standard starting position.
func (g *Game) Reset() State {
	g.mu.Lock()
	g.resetTo(position.Start())
	st := g.state()
	g.mu.Unlock()
	log.Info().Str("fen", st.FEN).Msg("game-reset")
	g.notify(st)
	return st
}

// SetFEN starts a new game from an arbitrary position.
func (g *Game) SetFEN(fen string) (State, error) {
	p, err := position.FromFEN(fen)
	if err != nil {
		return State{}, err
	}
	g.mu.Lock()
	g.resetTo(p)
	st := g.state()
	g.mu.Unlock()
	log.Info().Str("fen", st.FEN).Msg("game-set-position")
	g.notify(st)
	return st, nil
}

// Position returns the current position. Positions are immutable, so the
// caller may keep it.
func (g *Game) Position() *position.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current()
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) commit(m position.Move) ply {
	cur := g.current()
	p := ply{pos: cur.Apply(m), san: cur.SAN(m), uci: cur.UCI(m)}
	g.plies = append(g.plies, p)
	g.repetitions[p.pos.RepetitionKey()]++
	g.version++
	return p
}

// PlayUserMove plays a move given in SAN or UCI.
func (g *Game) PlayUserMove(notation string) (State, error) {
	g.mu.Lock()
	if g.status() != StatusPlaying {
		g.mu.Unlock()
		return State{}, ErrGameOver
	}
	m, err := g.current().ParseMove(notation)
	if err != nil {
		g.mu.Unlock()
		log.Debug().Err(err).Str("move", notation).Msg("illegal-user-move")
		return State{}, err
	}
	p := g.commit(m)
	st := g.state()
	g.mu.Unlock()

	log.Debug().Str("move", p.san).Str("fen", st.FEN).Msg("user-move")
	g.notify(st)
	return st, nil
}

// PlayAIMove asks the move provider for a move at the given difficulty and
// plays it. It returns the move in SAN.
func (g *Game) PlayAIMove(ctx context.Context, difficulty string) (State, string, error) {
	g.mu.Lock()
	if g.status() != StatusPlaying {
		g.mu.Unlock()
		return State{}, "", ErrGameOver
	}
	cur := g.current()
	m, err := g.provider.ChooseMove(ctx, cur, difficulty)
	if err != nil {
		g.mu.Unlock()
		return State{}, "", pkgerrors.Wrap(err, "choosing move")
	}
	p := g.commit(m)
	st := g.state()
	g.mu.Unlock()

	log.Debug().Str("difficulty", difficulty).Str("move", p.san).
		Str("fen", st.FEN).Msg("ai-move")
	g.notify(st)
	return st, p.san, nil
}

// Takeback undoes the last n moves.
func (g *Game) Takeback(n int) (State, error) {
	g.mu.Lock()
	if n < 1 || n > len(g.plies) {
		g.mu.Unlock()
		return State{}, ErrNothingToTakeBack
	}
	for i := 0; i < n; i++ {
		last := g.plies[len(g.plies)-1]
		g.repetitions[last.pos.RepetitionKey()]--
		g.plies = g.plies[:len(g.plies)-1]
	}
	g.version++
	st := g.state()
	g.mu.Unlock()

	log.Info().Int("plies", n).Str("fen", st.FEN).Msg("takeback")
	g.notify(st)
	return st, nil
}
