package board

import "testing"

// slowSlider walks each direction square by square.
func slowSlider(sq Square, occ Bitboard, dirs [][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occ.IsSet(s) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

var (
	rookDirs   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

func TestSliderAttacks(t *testing.T) {
	rng := newPRNG(0x1234)
	for i := 0; i < 2000; i++ {
		occ := Bitboard(rng.next() & rng.next())
		for sq := A1; sq <= H8; sq++ {
			if got, want := RookAttacks(sq, occ), slowSlider(sq, occ, rookDirs); got != want {
				t.Fatalf("RookAttacks(%v, %x) = %x, want %x", sq, uint64(occ), uint64(got), uint64(want))
			}
			if got, want := BishopAttacks(sq, occ), slowSlider(sq, occ, bishopDirs); got != want {
				t.Fatalf("BishopAttacks(%v, %x) = %x, want %x", sq, uint64(occ), uint64(got), uint64(want))
			}
		}
	}
}

func TestBetweenAndLine(t *testing.T) {
	tests := []struct {
		a, b    Square
		between Bitboard
	}{
		{A1, H8, SquareBB(B2) | SquareBB(C3) | SquareBB(D4) | SquareBB(E5) | SquareBB(F6) | SquareBB(G7)},
		{E1, E4, SquareBB(E2) | SquareBB(E3)},
		{H1, A1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1) | SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
		{B1, C3, Empty},
		{D4, E5, Empty},
	}
	for _, tc := range tests {
		if got := Between(tc.a, tc.b); got != tc.between {
			t.Errorf("Between(%v, %v) = %x, want %x", tc.a, tc.b, uint64(got), uint64(tc.between))
		}
	}

	if !Aligned(A1, D4, H8) || Aligned(A1, D4, H7) {
		t.Error("Aligned disagrees with the long diagonal")
	}
	if Line(B1, C3) != Empty {
		t.Error("Line of unaligned squares is not empty")
	}
	if Line(E1, E8) != FileE {
		t.Errorf("Line(e1, e8) = %x", uint64(Line(E1, E8)))
	}
}

func TestLeaperAttacks(t *testing.T) {
	if n := KnightAttacks(A1).PopCount(); n != 2 {
		t.Errorf("knight on a1 attacks %d squares", n)
	}
	if n := KnightAttacks(D4).PopCount(); n != 8 {
		t.Errorf("knight on d4 attacks %d squares", n)
	}
	if n := KingAttacks(H8).PopCount(); n != 3 {
		t.Errorf("king on h8 attacks %d squares", n)
	}
	if PawnAttacks(E4, White) != SquareBB(D5)|SquareBB(F5) {
		t.Error("white pawn on e4")
	}
	if PawnAttacks(A5, Black) != SquareBB(B4) {
		t.Error("black pawn on a5")
	}
}

func TestIsSquareAttacked(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/1n6/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		sq   Square
		by   Color
		want bool
	}{
		{A8, White, true},
		{D1, White, true},
		{F2, White, true},
		{B2, White, false},
		{D8, Black, true},
		{D3, Black, true},
		{C2, Black, true},
		{E1, Black, false},
		{B1, White, true},
	}
	for _, tc := range tests {
		if got := pos.IsSquareAttacked(tc.sq, tc.by); got != tc.want {
			t.Errorf("IsSquareAttacked(%v, %v) = %v, want %v", tc.sq, tc.by, got, tc.want)
		}
	}
}
