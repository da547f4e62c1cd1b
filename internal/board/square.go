// Package board implements the chess rules core: bitboard board state,
// attack tables, legal move generation, move application and undo,
// Zobrist hashing, FEN/SAN text and a compact binary position encoding.
package board

import "fmt"

// Square indexes the board rank by rank from a1 (0) to h8 (63).
type Square uint8

// One row of squares per rank, a1 first.
const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 8*iota + 0, 8*iota + 1, 8*iota + 2, 8*iota + 3, 8*iota + 4, 8*iota + 5, 8*iota + 6, 8*iota + 7
	A2, B2, C2, D2, E2, F2, G2, H2
	A3, B3, C3, D3, E3, F3, G3, H3
	A4, B4, C4, D4, E4, F4, G4, H4
	A5, B5, C5, D5, E5, F5, G5, H5
	A6, B6, C6, D6, E6, F6, G6, H6
	A7, B7, C7, D7, E7, F7, G7, H7
	A8, B8, C8, D8, E8, F8, G8, H8
)

// NoSquare marks an absent square, such as a missing king or no en passant target.
const NoSquare Square = 64

// File returns 0 for the a-file through 7 for the h-file.
func (sq Square) File() int {
	return int(sq % 8)
}

// Rank returns 0 for the first rank through 7 for the eighth.
func (sq Square) Rank() int {
	return int(sq / 8)
}

// RelativeRank counts ranks from c's own back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return 7 - sq.Rank()
	}
	return sq.Rank()
}

func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{"abcdefgh"[sq.File()], "12345678"[sq.Rank()]})
}

// NewSquare returns the square on file and rank, both counted from 0.
func NewSquare(file, rank int) Square {
	return Square(rank<<3 | file)
}

// ParseSquare reads a square name such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8' {
		return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
	}
	return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
}
