package position

import (
	"strings"
	"unicode"
)

// Mirror returns the colour-reversed position: the board flipped top to
// bottom, every piece changing sides, and the other side to move.
func (p *Position) Mirror() (*Position, error) {
	fields := strings.Fields(p.FEN())
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = castlingOrder(swapCase(fields[2]))
	}
	if ep := fields[3]; ep != "-" && len(ep) == 2 {
		fields[3] = string(ep[0]) + string('1'+'8'-rune(ep[1]))
	}
	return FromFEN(strings.Join(fields, " "))
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}

// castlingOrder puts castling rights back in KQkq order.
func castlingOrder(s string) string {
	var b strings.Builder
	for _, c := range "KQkq" {
		if strings.ContainsRune(s, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
