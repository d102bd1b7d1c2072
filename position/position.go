// Package position adapts github.com/notnil/chess into the rules oracle used
// by the evaluator, the search and the live game. A Position is immutable:
// Apply returns a successor and never touches the receiver, so a search can
// hand positions to as many goroutines as it likes.
package position

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// SeventyFiveMoveHalfMoves is the halfmove clock value at which the game is
// drawn without a claim.
const SeventyFiveMoveHalfMoves = 150

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

type (
	Color     = chess.Color
	Piece     = chess.Piece
	PieceType = chess.PieceType
	Square    = chess.Square
)

const (
	White = chess.White
	Black = chess.Black

	King   = chess.King
	Queen  = chess.Queen
	Rook   = chess.Rook
	Bishop = chess.Bishop
	Knight = chess.Knight
	Pawn   = chess.Pawn
)

// Move is a legal move produced by LegalMoves or ParseMove.
type Move struct {
	m *chess.Move
}

func (m Move) IsZero() bool { return m.m == nil }

// String returns the move in UCI form, e.g. e7e8q.
func (m Move) String() string {
	if m.m == nil {
		return ""
	}
	return m.m.String()
}

func (m Move) IsCapture() bool {
	return m.m != nil && (m.m.HasTag(chess.Capture) || m.m.HasTag(chess.EnPassant))
}

func (m Move) Equal(o Move) bool {
	if m.m == nil || o.m == nil {
		return m.m == o.m
	}
	return m.m.S1() == o.m.S1() && m.m.S2() == o.m.S2() && m.m.Promo() == o.m.Promo()
}

type Position struct {
	pos       *chess.Position
	halfMoves int
}

// Start returns the standard initial position.
func Start() *Position {
	return &Position{pos: chess.NewGame().Position()}
}

func FromFEN(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFEN, "%q: %v", fen, err)
	}
	p := &Position{pos: chess.NewGame(opt).Position()}
	fields := strings.Fields(fen)
	if len(fields) >= 5 {
		p.halfMoves, err = strconv.Atoi(fields[4])
		if err != nil || p.halfMoves < 0 {
			return nil, errors.Wrapf(ErrInvalidFEN, "%q: bad halfmove clock", fen)
		}
	}
	return p, nil
}

// LegalMoves returns the legal moves in the rules engine's enumeration order.
// The order is stable for a given position.
func (p *Position) LegalMoves() []Move {
	valid := p.pos.ValidMoves()
	moves := make([]Move, len(valid))
	for i, m := range valid {
		moves[i] = Move{m: m}
	}
	return moves
}

// Apply returns the position reached by playing m. m must be legal here.
func (p *Position) Apply(m Move) *Position {
	hm := p.halfMoves + 1
	if m.IsCapture() || p.pos.Board().Piece(m.m.S1()).Type() == chess.Pawn {
		hm = 0
	}
	return &Position{pos: p.pos.Update(m.m), halfMoves: hm}
}

func (p *Position) Turn() Color { return p.pos.Turn() }

func (p *Position) HalfMoveClock() int { return p.halfMoves }

// PieceAt returns the piece on sq; ok is false for an empty square.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	pc := p.pos.Board().Piece(sq)
	return pc, pc != chess.NoPiece
}

// ForEachPiece calls fn for every occupied square, A1 through H8.
func (p *Position) ForEachPiece(fn func(sq Square, pc Piece)) {
	b := p.pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		if pc := b.Piece(sq); pc != chess.NoPiece {
			fn(sq, pc)
		}
	}
}

func (p *Position) IsCheckmate() bool { return p.pos.Status() == chess.Checkmate }

func (p *Position) IsStalemate() bool { return p.pos.Status() == chess.Stalemate }

// IsInsufficientMaterial reports a dead position: bare kings, a single minor
// piece, or any number of bishops all standing on squares of one colour.
func (p *Position) IsInsufficientMaterial() bool {
	knights := 0
	bishopSquareColors := map[int]bool{}
	bishops := 0
	dead := true
	p.ForEachPiece(func(sq Square, pc Piece) {
		switch pc.Type() {
		case chess.King:
		case chess.Knight:
			knights++
		case chess.Bishop:
			bishops++
			bishopSquareColors[(int(sq.File())+int(sq.Rank()))%2] = true
		default:
			dead = false
		}
	})
	if !dead {
		return false
	}
	if knights+bishops <= 1 {
		return true
	}
	return knights == 0 && len(bishopSquareColors) == 1
}

// IsDrawByMoveCount reports the seventy-five move rule.
func (p *Position) IsDrawByMoveCount() bool {
	return p.halfMoves >= SeventyFiveMoveHalfMoves
}

func (p *Position) IsTerminal() bool {
	return p.IsDrawByMoveCount() || p.IsInsufficientMaterial() ||
		p.pos.Status() != chess.NoMethod
}

func (p *Position) FEN() string {
	fields := strings.Fields(p.pos.String())
	if len(fields) == 6 {
		fields[4] = strconv.Itoa(p.halfMoves)
	}
	return strings.Join(fields, " ")
}

// RepetitionKey identifies the position for repetition counting: placement,
// side to move, castling rights and en passant square.
func (p *Position) RepetitionKey() uint64 {
	fields := strings.Fields(p.pos.String())
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return xxhash.Sum64String(strings.Join(fields, " "))
}

func (p *Position) SAN(m Move) string {
	return chess.AlgebraicNotation{}.Encode(p.pos, m.m)
}

func (p *Position) UCI(m Move) string {
	return chess.UCINotation{}.Encode(p.pos, m.m)
}

var uciMove = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ParseMove resolves s, in SAN or UCI, to one of the legal moves. Anything
// shaped like a UCI move is matched only against the legal moves' UCI form.
// SAN input must be the move's own SAN; check and mate suffixes are optional.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Move{}, errors.Wrap(ErrIllegalMove, "empty move")
	}
	if lower := strings.ToLower(s); uciMove.MatchString(lower) {
		if u, err := (chess.UCINotation{}).Decode(nil, lower); err == nil {
			for _, m := range p.pos.ValidMoves() {
				if m.S1() == u.S1() && m.S2() == u.S2() && m.Promo() == u.Promo() {
					return Move{m: m}, nil
				}
			}
		}
		return Move{}, errors.Wrapf(ErrIllegalMove, "%q in %s", s, p.FEN())
	}
	if m, err := (chess.AlgebraicNotation{}).Decode(p.pos, s); err == nil {
		mv := Move{m: m}
		if trimCheck(p.SAN(mv)) == trimCheck(s) {
			return mv, nil
		}
	}
	return Move{}, errors.Wrapf(ErrIllegalMove, "%q in %s", s, p.FEN())
}

func trimCheck(san string) string {
	return strings.TrimRight(san, "+#")
}

func (p *Position) Draw() string {
	return p.pos.Board().Draw()
}

func (p *Position) String() string { return p.FEN() }
