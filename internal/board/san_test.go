package board

import (
	"testing"

	"github.com/notnil/chess"
)

var sanFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbqkb1r/pp1p1ppp/2p5/4P3/2B5/8/PPP1NnPP/RNBQK2R w KQkq - 0 6",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"1k6/8/8/2N3N1/8/2N3N1/8/K7 w - - 0 1",
	"r3k3/1P6/8/8/8/8/8/4K2R w K - 0 1",
	"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
}

// TestSANAgainstReference compares the SAN of every legal move with the
// notation produced by an independent implementation.
func TestSANAgainstReference(t *testing.T) {
	for _, fen := range sanFENs {
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("reference FEN %q: %v", fen, err)
		}
		game := chess.NewGame(opt)
		ref := make(map[string]string)
		for _, mv := range game.ValidMoves() {
			uci := chess.UCINotation{}.Encode(game.Position(), mv)
			ref[uci] = chess.AlgebraicNotation{}.Encode(game.Position(), mv)
		}

		pos := mustParse(t, fen)
		moves := pos.GenerateLegalMoves()
		if moves.Len() != len(ref) {
			t.Errorf("%s: %d legal moves, reference has %d", fen, moves.Len(), len(ref))
		}
		for _, m := range moves.Slice() {
			want, ok := ref[m.String()]
			if !ok {
				t.Errorf("%s: move %v unknown to reference", fen, m)
				continue
			}
			if got := FormatSAN(m, moves.Slice()); got != want {
				t.Errorf("%s: SAN(%v) = %q, want %q", fen, m, got, want)
			}
		}
	}
}

func TestSANDisambiguation(t *testing.T) {
	pos := mustParse(t, "1k6/8/8/2N3N1/8/2N3N1/8/K7 w - - 0 1")
	tests := map[string]string{
		"c3e4": "Nc3e4",
		"g5e4": "Ng5e4",
		"c3a4": "N3a4",
		"c3e2": "Nce2",
		"c5e6": "Nce6",
		"c3d5": "Nd5",
		"c5d7": "Nd7+",
	}
	for uci, want := range tests {
		from, to, _, err := ParseMove(uci)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.SAN(NewMove(from, to, KindKnight)); got != want {
			t.Errorf("SAN(%s) = %q, want %q", uci, got, want)
		}
	}
}

func TestMakeMoveSANRoundTrip(t *testing.T) {
	for _, fen := range sanFENs {
		pos := mustParse(t, fen)
		moves := pos.GenerateLegalMoves()
		for _, m := range moves.Slice() {
			san := FormatSAN(m, moves.Slice())
			played, err := pos.MakeMoveSAN(san)
			if err != nil {
				t.Errorf("%s: MakeMoveSAN(%q): %v", fen, san, err)
				continue
			}
			if !played.Same(m) {
				t.Errorf("%s: %q played %v, want %v", fen, san, played, m)
			}
			pos.UndoMove()
		}
	}
}
