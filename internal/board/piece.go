package board

import "strings"

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

// Other returns the opponent of c.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c > NoColor {
		c = NoColor
	}
	return [...]string{"White", "Black", "NoColor"}[c]
}

// PieceType is a piece class without colour.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

func (pt PieceType) String() string {
	if pt > NoPieceType {
		pt = NoPieceType
	}
	return [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}[pt]
}

// Letter returns the SAN letter of pt, 'P' for pawns and ' ' for none.
func (pt PieceType) Letter() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return pieceLetters[pt]
}

// pieceTypeFromLetter accepts either case.
func pieceTypeFromLetter(c byte) PieceType {
	if i := strings.IndexByte(pieceLetters[:6], c&^0x20); i >= 0 {
		return PieceType(i)
	}
	return NoPieceType
}

// Piece is a coloured piece, numbered in FEN letter order: white PNBRQK
// then black pnbrqk.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

const pieceLetters = "PNBRQKpnbrqk"

// NewPiece combines a class and a side. Out-of-range input gives NoPiece.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(c)*6 + Piece(pt)
}

// Type returns the class of p.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the side of p.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns the FEN letter of p.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return pieceLetters[p : p+1]
}

// PieceFromChar maps a FEN letter to its piece, or NoPiece.
func PieceFromChar(c byte) Piece {
	if i := strings.IndexByte(pieceLetters, c); i >= 0 {
		return Piece(i)
	}
	return NoPiece
}
