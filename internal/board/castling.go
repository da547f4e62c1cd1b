package board

import "strings"

// CastlingRights holds one bit per right, in FEN order KQkq.
type CastlingRights uint8

const (
	WhiteKingSideCastle CastlingRights = 1 << iota
	WhiteQueenSideCastle
	BlackKingSideCastle
	BlackQueenSideCastle

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = 1<<4 - 1
)

const castlingLetters = "KQkq"

// rookHomeRight maps a rook home square to the right that depends on it.
var rookHomeRight = [64]CastlingRights{
	A1: WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A8: BlackQueenSideCastle,
	H8: BlackKingSideCastle,
}

// String returns the FEN castling field, "-" when no right is held.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	buf := make([]byte, 0, len(castlingLetters))
	for i := range castlingLetters {
		if cr&(1<<i) != 0 {
			buf = append(buf, castlingLetters[i])
		}
	}
	return string(buf)
}

// castlingRight returns the single right for a side and direction.
func castlingRight(c Color, kingSide bool) CastlingRights {
	shift := 2 * c
	if !kingSide {
		shift++
	}
	return WhiteKingSideCastle << shift
}

// CanCastle reports whether c still holds the right on the given wing.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castlingRight(c, kingSide) != 0
}

// Without clears both rights of a side, as a king move does.
func (cr CastlingRights) Without(c Color) CastlingRights {
	return cr &^ (castlingRight(c, true) | castlingRight(c, false))
}

// WithoutRookSquare clears the right whose rook starts on sq. Used for rook
// moves from, and captures landing on, a rook home square.
func (cr CastlingRights) WithoutRookSquare(sq Square) CastlingRights {
	return cr &^ rookHomeRight[sq]
}

// parseCastlingRights reads the FEN castling field. Letters may appear in
// any order but only once each.
func parseCastlingRights(s string) (CastlingRights, error) {
	if s == "-" {
		return NoCastling, nil
	}
	if s == "" {
		return NoCastling, fenError("empty castling field")
	}

	cr := NoCastling
	for i := 0; i < len(s); i++ {
		bit := strings.IndexByte(castlingLetters, s[i])
		if bit < 0 {
			return NoCastling, fenError("invalid castling character %q", s[i])
		}
		right := CastlingRights(1) << bit
		if cr&right != 0 {
			return NoCastling, fenError("duplicate castling character %q", s[i])
		}
		cr |= right
	}
	return cr, nil
}
