package position

import (
	"testing"

	"github.com/matryer/is"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	// 1. f3 e5 2. g4 Qh4#, white to move and mated
	foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	stalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

func TestStart(t *testing.T) {
	is := is.New(t)
	p := Start()
	is.Equal(p.FEN(), startFEN)
	is.Equal(len(p.LegalMoves()), 20)
	is.Equal(p.Turn(), White)
	is.True(!p.IsTerminal())
}

func TestFromFENInvalid(t *testing.T) {
	is := is.New(t)
	_, err := FromFEN("not a fen")
	is.True(errors.Is(err, ErrInvalidFEN))
}

func TestApplyIsImmutable(t *testing.T) {
	is := is.New(t)
	p := Start()
	before := p.FEN()
	m, err := p.ParseMove("e4")
	is.NoErr(err)
	next := p.Apply(m)
	is.Equal(p.FEN(), before)
	is.Equal(next.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	is.Equal(next.Turn(), Black)
}

func TestParseMove(t *testing.T) {
	p := Start()
	cases := []struct {
		in  string
		uci string
		err bool
	}{
		{"e4", "e2e4", false},
		{"Nf3", "g1f3", false},
		{"g1f3", "g1f3", false},
		{"b1c3", "b1c3", false},
		{"f3", "f2f3", false},
		{"Nc3", "b1c3", false},
		{"E2E4", "e2e4", false},
		{"e5", "", true},
		{"Ke2", "", true},
		{"e2e5", "", true},
		{"g1e2", "", true},
		{"e2e4q", "", true},
		{"Ng1f3", "", true},
		{"", "", true},
		{"garbage", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			m, err := p.ParseMove(tc.in)
			if tc.err {
				assert.True(t, errors.Is(err, ErrIllegalMove))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.uci, m.String())
		})
	}
}

func TestParseMoveAfterReply(t *testing.T) {
	is := is.New(t)
	p := Start()
	for _, s := range []string{"e4", "d5"} {
		m, err := p.ParseMove(s)
		is.NoErr(err)
		p = p.Apply(m)
	}
	// the e-pawn left e2, so its old square names no move
	for _, s := range []string{"e2e5", "e2e4", "e2e3"} {
		_, err := p.ParseMove(s)
		is.True(errors.Is(err, ErrIllegalMove))
	}
	m, err := p.ParseMove("e4e5")
	is.NoErr(err)
	is.Equal(p.SAN(m), "e5")
	m, err = p.ParseMove("e4d5")
	is.NoErr(err)
	is.Equal(p.SAN(m), "exd5")
}

func TestParseMovePromotion(t *testing.T) {
	is := is.New(t)
	p, err := FromFEN("8/4P3/8/8/8/8/8/4K2k w - - 0 1")
	is.NoErr(err)
	m, err := p.ParseMove("e7e8n")
	is.NoErr(err)
	is.Equal(p.SAN(m), "e8=N")
	m, err = p.ParseMove("e8=Q")
	is.NoErr(err)
	is.Equal(m.String(), "e7e8q")
	_, err = p.ParseMove("e7e8")
	is.True(errors.Is(err, ErrIllegalMove))
}

func TestSANRoundTrip(t *testing.T) {
	is := is.New(t)
	p := Start()
	for _, m := range p.LegalMoves() {
		san := p.SAN(m)
		back, err := p.ParseMove(san)
		is.NoErr(err)
		is.True(back.Equal(m))
	}
}

func TestTerminalQueries(t *testing.T) {
	cases := []struct {
		name         string
		fen          string
		checkmate    bool
		stalemate    bool
		insufficient bool
		moveCount    bool
	}{
		{"fools mate", foolsMateFEN, true, false, false, false},
		{"stalemate", stalemateFEN, false, true, false, false},
		{"bare kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", false, false, true, false},
		{"king and knight", "8/8/4k3/8/8/3K4/8/6N1 w - - 0 1", false, false, true, false},
		{"same coloured bishops", "8/8/4k3/8/8/3K4/2b5/5B2 w - - 0 1", false, false, true, false},
		{"opposite coloured bishops", "8/8/4k3/8/8/3K4/3b4/5B2 w - - 0 1", false, false, false, false},
		{"two knights", "8/8/4k3/8/8/3K4/8/5NN1 w - - 0 1", false, false, false, false},
		{"rook", "8/8/4k3/8/8/3K4/8/7R w - - 0 1", false, false, false, false},
		{"seventy five moves", "8/8/4k3/8/8/3K4/8/7R w - - 150 120", false, false, false, true},
		{"seventy four and a half", "8/8/4k3/8/8/3K4/8/7R w - - 149 120", false, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := FromFEN(tc.fen)
			assert.NoError(t, err)
			assert.Equal(t, tc.checkmate, p.IsCheckmate())
			assert.Equal(t, tc.stalemate, p.IsStalemate())
			assert.Equal(t, tc.insufficient, p.IsInsufficientMaterial())
			assert.Equal(t, tc.moveCount, p.IsDrawByMoveCount())
			assert.Equal(t, tc.checkmate || tc.stalemate || tc.insufficient || tc.moveCount,
				p.IsTerminal())
		})
	}
}

func TestHalfMoveClock(t *testing.T) {
	is := is.New(t)
	p, err := FromFEN("4k3/8/8/8/8/8/4P3/4K1N1 w - - 10 30")
	is.NoErr(err)
	is.Equal(p.HalfMoveClock(), 10)

	m, err := p.ParseMove("Nf3")
	is.NoErr(err)
	p = p.Apply(m)
	is.Equal(p.HalfMoveClock(), 11)

	m, err = p.ParseMove("Kd7")
	is.NoErr(err)
	p = p.Apply(m)
	is.Equal(p.HalfMoveClock(), 12)
	is.Equal(p.FEN(), "8/3k4/8/8/8/5N2/4P3/4K3 w - - 12 31")

	m, err = p.ParseMove("e4")
	is.NoErr(err)
	p = p.Apply(m)
	is.Equal(p.HalfMoveClock(), 0)
}

func TestRepetitionKeyIgnoresClocks(t *testing.T) {
	is := is.New(t)
	a, err := FromFEN("4k3/8/8/8/8/8/8/4K1N1 w - - 0 1")
	is.NoErr(err)
	b, err := FromFEN("4k3/8/8/8/8/8/8/4K1N1 w - - 7 12")
	is.NoErr(err)
	c, err := FromFEN("4k3/8/8/8/8/8/8/4K1N1 b - - 0 1")
	is.NoErr(err)
	is.Equal(a.RepetitionKey(), b.RepetitionKey())
	is.True(a.RepetitionKey() != c.RepetitionKey())
}

func TestPieceAt(t *testing.T) {
	is := is.New(t)
	p := Start()
	pc, ok := p.PieceAt(Square(4)) // e1
	is.True(ok)
	is.Equal(pc.Type(), King)
	is.Equal(pc.Color(), White)
	_, ok = p.PieceAt(Square(28)) // e4
	is.True(!ok)

	count := 0
	p.ForEachPiece(func(Square, Piece) { count++ })
	is.Equal(count, 32)
}

func TestMirror(t *testing.T) {
	is := is.New(t)
	p, err := FromFEN("r3k2r/pp3ppp/8/3pP3/8/8/PPP2PPP/R3K2R w Kq d6 0 12")
	is.NoErr(err)
	m, err := p.Mirror()
	is.NoErr(err)
	is.Equal(m.FEN(), "r3k2r/ppp2ppp/8/8/3Pp3/8/PP3PPP/R3K2R b Qk d3 0 12")
	back, err := m.Mirror()
	is.NoErr(err)
	is.Equal(back.FEN(), p.FEN())
}
