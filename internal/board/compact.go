package board

import (
	"encoding/binary"
	"fmt"
)

// CompactSize is the length of a compact position encoding: an 8-byte
// occupancy bitmap followed by one nibble for each of at most 32 pieces.
const CompactSize = 24

// Nibble codes of the compact encoding. Codes 0-4 and 8-12 are the plain
// piece classes; the rest fold side to move, castling and en passant into
// the pieces they concern.
const (
	compactWhiteKingToMove  = 5
	compactWhiteCastleRook  = 6
	compactWhiteKingWaiting = 7
	compactBlackBase        = 8
	compactBlackCastleRook  = 14
	compactEnPassantPawn    = 15
	compactMaxPieces        = 32
)

// EncodeCompact packs the placement, side to move, castling rights and
// en-passant state of p. Clocks are dropped. A rook counts as castling
// eligible when it stands on its home square and the matching right is
// held; rights without such a rook are lost.
func EncodeCompact(p *Position) ([CompactSize]byte, error) {
	var buf [CompactSize]byte
	occ := p.AllOccupied
	if n := occ.PopCount(); n > compactMaxPieces {
		return buf, fmt.Errorf("%w: %d pieces", ErrInvalidCompact, n)
	}
	binary.BigEndian.PutUint64(buf[:8], uint64(occ))

	epPawn := NoSquare
	if sq := p.EnPassantSquare(); sq != NoSquare {
		epPawn = sq + 8
		if sq.Rank() == 5 {
			epPawn = sq - 8
		}
	}

	i := 0
	for bb := occ; bb != 0; i++ {
		sq := bb.PopLSB()
		pt, c := p.PieceTypeAt(sq), p.ColorAt(sq)

		code := byte(pt)
		switch {
		case sq == epPawn && pt == Pawn:
			code = compactEnPassantPawn
		case pt == King && c == White:
			code = compactWhiteKingToMove
			if p.SideToMove == Black {
				code = compactWhiteKingWaiting
			}
		case pt == Rook && p.CastlingRights&rookHomeRight[sq] != 0 && sideOfRight(rookHomeRight[sq]) == c:
			code = compactWhiteCastleRook
			if c == Black {
				code = compactBlackCastleRook
			}
		case c == Black:
			code += compactBlackBase
		}

		if i%2 == 0 {
			buf[8+i/2] = code << 4
		} else {
			buf[8+i/2] |= code
		}
	}
	return buf, nil
}

func sideOfRight(cr CastlingRights) Color {
	if cr&(WhiteKingSideCastle|WhiteQueenSideCastle) != 0 {
		return White
	}
	return Black
}

// DecodeCompact rebuilds a position from its compact encoding. The halfmove
// clock is 0 and the fullmove number 1.
func DecodeCompact(data []byte) (*Position, error) {
	if len(data) != CompactSize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidCompact, len(data), CompactSize)
	}
	occ := Bitboard(binary.BigEndian.Uint64(data[:8]))
	if n := occ.PopCount(); n > compactMaxPieces {
		return nil, fmt.Errorf("%w: %d occupied squares", ErrInvalidCompact, n)
	}

	pos := &Position{FullMoveNumber: 1}
	sideSet := false

	i := 0
	for bb := occ; bb != 0; i++ {
		sq := bb.PopLSB()
		code := data[8+i/2] >> 4
		if i%2 == 1 {
			code = data[8+i/2] & 0x0F
		}

		switch code {
		case compactWhiteKingToMove, compactWhiteKingWaiting:
			if sideSet {
				return nil, fmt.Errorf("%w: two white kings", ErrInvalidCompact)
			}
			sideSet = true
			if code == compactWhiteKingWaiting {
				pos.SideToMove = Black
			}
			pos.AddPiece(King, White, sq)
		case compactWhiteCastleRook, compactBlackCastleRook:
			c := White
			if code == compactBlackCastleRook {
				c = Black
			}
			right := rookHomeRight[sq]
			if right == NoCastling || sideOfRight(right) != c {
				return nil, fmt.Errorf("%w: castling rook on %s", ErrInvalidCompact, sq)
			}
			pos.CastlingRights |= right
			pos.AddPiece(Rook, c, sq)
		case compactEnPassantPawn:
			if pos.EnPassant != 0 {
				return nil, fmt.Errorf("%w: two en passant pawns", ErrInvalidCompact)
			}
			switch sq.Rank() {
			case 3:
				pos.AddPiece(Pawn, White, sq)
				pos.EnPassant = SquareBB(sq - 8)
			case 4:
				pos.AddPiece(Pawn, Black, sq)
				pos.EnPassant = SquareBB(sq + 8)
			default:
				return nil, fmt.Errorf("%w: en passant pawn on %s", ErrInvalidCompact, sq)
			}
		default:
			c := White
			if code >= compactBlackBase {
				c = Black
				code -= compactBlackBase
			}
			pos.AddPiece(PieceType(code), c, sq)
		}
	}

	if !sideSet {
		return nil, fmt.Errorf("%w: white king missing", ErrInvalidCompact)
	}
	if pos.EnPassant != 0 {
		// The pawn that just moved belongs to the side not to move.
		pawnSide := White
		if pos.EnPassant.LSB().Rank() == 5 {
			pawnSide = Black
		}
		if pawnSide == pos.SideToMove {
			return nil, fmt.Errorf("%w: en passant pawn of the side to move", ErrInvalidCompact)
		}
		ep := pos.EnPassant.LSB()
		origin := ep - 8
		if pawnSide == Black {
			origin = ep + 8
		}
		if !pos.IsEmpty(ep) || !pos.IsEmpty(origin) {
			return nil, fmt.Errorf("%w: en passant target %s or the square behind it is occupied", ErrInvalidCompact, ep)
		}
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompact, err)
	}

	pos.hash = pos.baseHash()
	return pos, nil
}
