package board

import (
	"strings"
)

// SAN returns m in Standard Algebraic Notation for the current position.
func (p *Position) SAN(m Move) string {
	legal := p.GenerateLegalMoves()
	if found, ok := legal.Find(m); ok {
		return FormatSAN(found, legal.Slice())
	}
	return m.String()
}

// FormatSAN renders a generated move in Standard Algebraic Notation. legal
// must hold the legal moves of the position m was generated in; it is only
// consulted for disambiguation. Check and mate suffixes come from the
// move's own flags.
func FormatSAN(m Move, legal []Move) string {
	if m == NoMove {
		return "-"
	}
	if m.IsNull() {
		return "--"
	}

	var sb strings.Builder

	switch m.Kind() {
	case KindCastleShort:
		sb.WriteString("O-O")
	case KindCastleLong:
		sb.WriteString("O-O-O")
	default:
		pt := m.Piece()
		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(disambiguation(m, legal))
		}
		if m.IsCapture() {
			if pt == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(m.From().File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To().String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion().Letter())
		}
	}

	switch {
	case m.IsMate():
		sb.WriteByte('#')
	case m.IsCheck():
		sb.WriteByte('+')
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece class to the same square.
func disambiguation(m Move, legal []Move) string {
	from, to := m.From(), m.To()

	ambiguous := false
	sameFile := false
	sameRank := false
	for _, other := range legal {
		if other.To() != to || other.From() == from || other.Kind() != m.Kind() {
			continue
		}
		ambiguous = true
		if other.From().File() == from.File() {
			sameFile = true
		}
		if other.From().Rank() == from.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}
