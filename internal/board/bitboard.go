package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, bit i standing for Square i (a1=0, h8=63).
type Bitboard uint64

const (
	Empty    Bitboard = 0
	Universe Bitboard = ^Empty

	FileA Bitboard = 0x0101010101010101
	FileE          = FileA << 4

	Rank1 Bitboard = 0xFF
	Rank8          = Rank1 << 56

	// a1 is dark, b1 light.
	LightSquares Bitboard = 0x55AA55AA55AA55AA
	DarkSquares           = ^LightSquares
)

// SquareBB returns the set holding only sq.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet reports whether sq is in b.
func (b Bitboard) IsSet(sq Square) bool {
	return b>>sq&1 != 0
}

// PopCount returns the number of squares in b.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest square in b, or NoSquare when b is empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes the lowest square from b and returns it.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Several reports whether b holds more than one square.
func (b Bitboard) Several() bool {
	return b&(b-1) != 0
}

// String draws b as an 8x8 grid, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		row := []byte("  . . . . . . . .\n")
		row[0] = byte('1' + rank)
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				row[2+2*file] = 'x'
			}
		}
		sb.Write(row)
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
