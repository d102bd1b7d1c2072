package game

import (
	"github.com/samber/lo"

	"github.com/domino14/caissa/position"
)

type Status string

const (
	StatusPlaying              Status = "playing"
	StatusCheckmate            Status = "checkmate"
	StatusStalemate            Status = "stalemate"
	StatusInsufficientMaterial Status = "insufficient_material"
	StatusSeventyFiveMoves     Status = "seventyfive_moves"
	StatusFivefoldRepetition   Status = "fivefold_repetition"
)

// State is a snapshot of the game, safe to hand to other goroutines.
// Version grows by one with every change, so listeners that receive
// snapshots out of order can tell which one is newest.
type State struct {
	Version  uint64   `json:"version"`
	FEN      string   `json:"fen"`
	Turn     string   `json:"turn"`
	Status   Status   `json:"status"`
	Outcome  string   `json:"outcome"`
	History  []string `json:"history"`
	LastMove string   `json:"last_move,omitempty"`
}

func (s State) Over() bool { return s.Status != StatusPlaying }

func colorName(c position.Color) string {
	if c == position.White {
		return "white"
	}
	return "black"
}

// status must be called with the lock held.
func (g *Game) status() Status {
	p := g.current()
	switch {
	case p.IsCheckmate():
		return StatusCheckmate
	case p.IsStalemate():
		return StatusStalemate
	case p.IsInsufficientMaterial():
		return StatusInsufficientMaterial
	case p.IsDrawByMoveCount():
		return StatusSeventyFiveMoves
	case g.repetitions[p.RepetitionKey()] >= FivefoldRepetitions:
		return StatusFivefoldRepetition
	}
	return StatusPlaying
}

func outcome(st Status, toMove position.Color) string {
	switch st {
	case StatusPlaying:
		return "*"
	case StatusCheckmate:
		if toMove == position.White {
			return "0-1"
		}
		return "1-0"
	}
	return "1/2-1/2"
}

// state must be called with the lock held.
func (g *Game) state() State {
	p := g.current()
	st := g.status()
	s := State{
		Version: g.version,
		FEN:     p.FEN(),
		Turn:    colorName(p.Turn()),
		Status:  st,
		Outcome: outcome(st, p.Turn()),
		History: lo.Map(g.plies, func(pl ply, _ int) string { return pl.san }),
	}
	if len(g.plies) > 0 {
		s.LastMove = g.plies[len(g.plies)-1].uci
	}
	return s
}
