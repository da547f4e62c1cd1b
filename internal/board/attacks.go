package board

import "math/bits"

// Ray families indexing lineMasks.
const (
	rayRank = iota
	rayFile
	rayDiagonal
	rayAntiDiagonal
)

// lineMask splits the line through a square into the part below the square
// (lower indices) and the part above it. The square itself is in neither.
type lineMask struct {
	lower Bitboard
	upper Bitboard
	line  Bitboard
}

// Attack tables, filled by init and read-only afterwards.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	lineMasks [64][4]lineMask

	betweenBB [64][64]Bitboard // strictly between two aligned squares
	lineBB    [64][64]Bitboard // whole line through two aligned squares
)

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	raySteps    = [4][2]int{
		rayRank:         {1, 0},
		rayFile:         {0, 1},
		rayDiagonal:     {1, 1},
		rayAntiDiagonal: {-1, 1},
	}
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = leaperTargets(sq, knightSteps)
		kingAttacks[sq] = leaperTargets(sq, kingSteps)
		pawnAttacks[White][sq] = leaperTargets(sq, [][2]int{{-1, 1}, {1, 1}})
		pawnAttacks[Black][sq] = leaperTargets(sq, [][2]int{{-1, -1}, {1, -1}})

		for ray, st := range raySteps {
			lower, upper := walkRay(sq, -st[0], -st[1]), walkRay(sq, st[0], st[1])
			lineMasks[sq][ray] = lineMask{lower: lower, upper: upper, line: lower | upper}
		}
	}

	for a := A1; a <= H8; a++ {
		for ray, m := range lineMasks[a] {
			for rest := m.line; rest != 0; {
				b := rest.PopLSB()
				lineBB[a][b] = m.line | SquareBB(a)
				if b > a {
					betweenBB[a][b] = m.upper & lineMasks[b][ray].lower
				} else {
					betweenBB[a][b] = m.lower & lineMasks[b][ray].upper
				}
			}
		}
	}
}

// leaperTargets collects the on-board squares one step from sq.
func leaperTargets(sq Square, steps [][2]int) Bitboard {
	var bb Bitboard
	for _, st := range steps {
		f, r := sq.File()+st[0], sq.Rank()+st[1]
		if f >= 0 && f < 8 && r >= 0 && r < 8 {
			bb |= SquareBB(NewSquare(f, r))
		}
	}
	return bb
}

// walkRay collects the squares from sq (exclusive) to the board edge.
func walkRay(sq Square, df, dr int) Bitboard {
	var ray Bitboard
	for f, r := sq.File()+df, sq.Rank()+dr; f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f+df, r+dr {
		ray |= SquareBB(NewSquare(f, r))
	}
	return ray
}

// attacks returns the squares attacked along the line, up to and including
// the first blocker on each side, using the obstruction difference:
// the nearest lower blocker is the most significant bit of the lower half,
// and subtracting it from the upper blockers borrows up to the nearest upper
// blocker.
func (m *lineMask) attacks(occupied Bitboard) Bitboard {
	lower := m.lower & occupied
	upper := m.upper & occupied
	ms1b := Bitboard(1<<63) >> bits.LeadingZeros64(uint64(lower|1))
	odiff := upper ^ (upper - ms1b)
	return m.line & odiff
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// BishopAttacks returns the diagonal attacks from sq over occupied.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return lineMasks[sq][rayDiagonal].attacks(occupied) | lineMasks[sq][rayAntiDiagonal].attacks(occupied)
}

// RookAttacks returns the rank and file attacks from sq over occupied.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return lineMasks[sq][rayRank].attacks(occupied) | lineMasks[sq][rayFile].attacks(occupied)
}

// QueenAttacks is the union of rook and bishop attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between a and b, or Empty when they
// share no rank, file or diagonal.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Line returns the full board line through a and b, or Empty when they are
// not aligned.
func Line(a, b Square) Bitboard { return lineBB[a][b] }

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool { return lineBB[a][b].IsSet(c) }

// pieceAttacks returns the squares a piece of the given type and color on sq
// attacks with the given occupancy.
func pieceAttacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case King:
		return kingAttacks[sq]
	case Bishop, Rook, Queen:
		var bb Bitboard
		if pt != Rook {
			bb |= BishopAttacks(sq, occupied)
		}
		if pt != Bishop {
			bb |= RookAttacks(sq, occupied)
		}
		return bb
	}
	return Empty
}
