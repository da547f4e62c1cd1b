package board

import (
	"fmt"
	"strings"
)

// Board holds piece placement only: one mask per piece class plus per-side
// and total occupancy. It has no rule knowledge. A square is set in at most
// one piece mask and AllOccupied is always Occupied[White]|Occupied[Black].
//
// Board is a plain value; copying it yields an independent scratch board.
type Board struct {
	Pieces      [6]Bitboard // indexed by PieceType, both colors
	Occupied    [2]Bitboard // all pieces of each color
	AllOccupied Bitboard
}

// AddPiece puts a piece on an empty square.
func (b *Board) AddPiece(pt PieceType, c Color, sq Square) {
	bb := SquareBB(sq)
	b.Pieces[pt] |= bb
	b.Occupied[c] |= bb
	b.AllOccupied |= bb
}

// RemovePiece takes a piece off its square.
func (b *Board) RemovePiece(pt PieceType, c Color, sq Square) {
	bb := SquareBB(sq)
	b.Pieces[pt] &^= bb
	b.Occupied[c] &^= bb
	b.AllOccupied &^= bb
}

// PieceTypeAt returns the class of the piece on sq, or NoPieceType.
func (b *Board) PieceTypeAt(sq Square) PieceType {
	bb := SquareBB(sq)
	if b.AllOccupied&bb == 0 {
		return NoPieceType
	}
	for pt := Pawn; pt <= King; pt++ {
		if b.Pieces[pt]&bb != 0 {
			return pt
		}
	}
	return NoPieceType
}

// ColorAt returns the side owning the piece on sq, or NoColor.
func (b *Board) ColorAt(sq Square) Color {
	bb := SquareBB(sq)
	switch {
	case b.Occupied[White]&bb != 0:
		return White
	case b.Occupied[Black]&bb != 0:
		return Black
	}
	return NoColor
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (b *Board) PieceAt(sq Square) Piece {
	return NewPiece(b.PieceTypeAt(sq), b.ColorAt(sq))
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.AllOccupied&SquareBB(sq) == 0
}

// PiecesOf returns the squares holding pieces of one class and side.
func (b *Board) PiecesOf(pt PieceType, c Color) Bitboard {
	return b.Pieces[pt] & b.Occupied[c]
}

// KingSquare returns the king square of a side, or NoSquare if it has none.
func (b *Board) KingSquare(c Color) Square {
	return b.PiecesOf(King, c).LSB()
}

// AttackersOf returns the pieces of side by that attack sq.
func (b *Board) AttackersOf(sq Square, by Color) Bitboard {
	return b.attackersOf(sq, by, b.AllOccupied)
}

func (b *Board) attackersOf(sq Square, by Color, occupied Bitboard) Bitboard {
	them := b.Occupied[by]
	diagonal := (b.Pieces[Bishop] | b.Pieces[Queen]) & them
	straight := (b.Pieces[Rook] | b.Pieces[Queen]) & them
	return (pawnAttacks[by.Other()][sq] & b.Pieces[Pawn] & them) |
		(knightAttacks[sq] & b.Pieces[Knight] & them) |
		(kingAttacks[sq] & b.Pieces[King] & them) |
		(BishopAttacks(sq, occupied) & diagonal) |
		(RookAttacks(sq, occupied) & straight)
}

// IsSquareAttacked reports whether side by attacks sq on the current
// occupancy. Squares behind the defending king along a checking line count
// as safe, so callers must rule out check first.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.AttackersOf(sq, by) != 0
}

// PinnedPieces returns the pieces of side c that stand alone between their
// king and an enemy slider aiming at it.
func (b *Board) PinnedPieces(c Color) Bitboard {
	ksq := b.KingSquare(c)
	if ksq == NoSquare {
		return Empty
	}
	them := b.Occupied[c.Other()]
	snipers := RookAttacks(ksq, Empty) & (b.Pieces[Rook] | b.Pieces[Queen]) & them
	snipers |= BishopAttacks(ksq, Empty) & (b.Pieces[Bishop] | b.Pieces[Queen]) & them

	pinned := Empty
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & b.AllOccupied
		if blockers.PopCount() == 1 && blockers&b.Occupied[c] != 0 {
			pinned |= blockers
		}
	}
	return pinned
}

// Validate checks the occupancy invariants and the king count.
func (b *Board) Validate() error {
	var union Bitboard
	for pt := Pawn; pt <= King; pt++ {
		if union&b.Pieces[pt] != 0 {
			return fmt.Errorf("square shared by two piece classes")
		}
		union |= b.Pieces[pt]
	}
	if b.Occupied[White]&b.Occupied[Black] != 0 {
		return fmt.Errorf("square owned by both sides")
	}
	if union != b.Occupied[White]|b.Occupied[Black] || b.AllOccupied != union {
		return fmt.Errorf("occupancy masks out of sync")
	}
	for c := White; c <= Black; c++ {
		if n := b.PiecesOf(King, c).PopCount(); n != 1 {
			return fmt.Errorf("%s must have exactly one king, has %d", c, n)
		}
	}
	if b.Pieces[Pawn]&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}
	return nil
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteString("  ")
		for file := 0; file < 8; file++ {
			piece := b.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}

// applyMove plays m on the board without touching any auxiliary state and
// returns the en-passant mask the move creates. The move is not validated;
// scratch boards use this to look one ply ahead.
func (b *Board) applyMove(m Move) Bitboard {
	us := m.Side()
	them := us.Other()
	from, to := m.From(), m.To()

	switch m.Kind() {
	case KindNull:
		return Empty
	case KindCastleShort, KindCastleLong:
		rookFrom, rookTo := m.CastlingRookSquares()
		b.RemovePiece(King, us, from)
		b.RemovePiece(Rook, us, rookFrom)
		b.AddPiece(King, us, to)
		b.AddPiece(Rook, us, rookTo)
		return Empty
	}

	if m.IsEnPassant() {
		b.RemovePiece(Pawn, them, m.EnPassantCaptureSquare())
	} else if captured := m.Captured(); captured != NoPieceType {
		b.RemovePiece(captured, them, to)
	}
	b.RemovePiece(m.Piece(), us, from)
	b.AddPiece(m.PlacedPiece(), us, to)

	if m.IsDoublePush() {
		return SquareBB(Square((int(from) + int(to)) / 2))
	}
	return Empty
}
