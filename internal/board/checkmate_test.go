package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: White Ka1, Ra8; Black Kh8 boxed in by g7/h7.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(pos)

	if !pos.InCheck() {
		t.Error("Expected black to be in check")
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Error("Expected no legal moves")
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.IsStalemate() {
		t.Error("Checkmate reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// The black king can take the checking rook.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	blackMoves := pos.GenerateLegalMoves()
	for i := 0; i < blackMoves.Len(); i++ {
		t.Log("  Move:", blackMoves.Get(i))
	}

	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
	if _, err := pos.MakeMoveUCI("h8g8"); err != nil {
		t.Errorf("Kxg8 should be legal: %v", err)
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !pos.IsStalemate() {
		t.Error("Expected stalemate")
	}
	if pos.IsCheckmate() {
		t.Error("Stalemate reported as checkmate")
	}
	if pos.HasLegalMoves() {
		t.Error("HasLegalMoves = true in stalemate")
	}
}

func TestMateFlag(t *testing.T) {
	pos, err := ParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := pos.MakeMoveUCI("a1a8")
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsCheck() || !m.IsMate() {
		t.Errorf("Ra8 flags: check=%v mate=%v, want both", m.IsCheck(), m.IsMate())
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate after Ra8")
	}

	pos.UndoMove()
	m, err = pos.MakeMoveUCI("a1a7")
	if err != nil {
		t.Fatal(err)
	}
	if m.IsCheck() || m.IsMate() {
		t.Errorf("Ra7 flagged check=%v mate=%v", m.IsCheck(), m.IsMate())
	}
}

func TestDiscoveredCheckFlag(t *testing.T) {
	// The bishop shields the black king from the rook on e1.
	pos, err := ParseFEN("4k3/8/8/8/8/8/4B3/4RK2 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		move  string
		check bool
	}{
		{"e2d3", true},  // discovered
		{"e2b5", true},  // direct and discovered
		{"f1g1", false}, // king move, rook still blocked
	}
	for _, tc := range tests {
		m, err := pos.MakeMoveUCI(tc.move)
		if err != nil {
			t.Fatalf("%s: %v", tc.move, err)
		}
		if m.IsCheck() != tc.check {
			t.Errorf("%s: check = %v, want %v", tc.move, m.IsCheck(), tc.check)
		}
		if m.IsMate() {
			t.Errorf("%s: flagged mate", tc.move)
		}
		if pos.InCheck() != tc.check {
			t.Errorf("%s: InCheck = %v after move", tc.move, pos.InCheck())
		}
		pos.UndoMove()
	}
	if pos.CheckState() != NoCheck {
		t.Errorf("CheckState = %v, want none", pos.CheckState())
	}
}

func TestCheckStates(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		state CheckState
		moves int
	}{
		// Rook e5 and bishop h4 both check; the knight's Nxe5 does not help.
		{"double", "k7/8/8/4r3/2N4b/8/8/4K3 w - - 0 1", DoubleCheck, 3},
		// Nxe5, Ne3 and four king steps.
		{"single", "k7/8/8/4r3/2N5/8/8/4K3 w - - 0 1", SingleCheck, 6},
		{"none", StartFEN, NoCheck, 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.CheckState(); got != tc.state {
				t.Errorf("CheckState = %v, want %v", got, tc.state)
			}
			if got := pos.GenerateLegalMoves().Len(); got != tc.moves {
				t.Errorf("legal moves = %d, want %d", got, tc.moves)
			}
			if n := pos.Checkers().PopCount(); n != int(tc.state) {
				t.Errorf("Checkers has %d pieces, want %d", n, tc.state)
			}
		})
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/1N2K3 w - - 0 1", true},
		{"5b2/8/8/4k3/8/8/8/2B1K3 w - - 0 1", true},  // both bishops on dark squares
		{"4b3/8/8/4k3/8/8/8/2B1K3 w - - 0 1", false}, // opposite colors
		{"8/8/8/4k3/8/8/8/1NN1K3 w - - 0 1", false},
		{"8/8/8/4k3/8/8/8/R3K3 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
	}

	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("%s: IsInsufficientMaterial = %v, want %v", tc.fen, got, tc.want)
		}
	}
}
