package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/storage"
)

func newTestShell(t *testing.T, store *storage.Storage) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(&out, store), &out
}

func run(sh *Shell, out *bytes.Buffer, lines ...string) string {
	out.Reset()
	for _, line := range lines {
		sh.Execute(line)
	}
	return out.String()
}

func TestPositionCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)

	got := run(sh, out, "position startpos moves e2e4 e7e5", "fen")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2\n"
	if got != want {
		t.Errorf("fen = %q, want %q", got, want)
	}

	got = run(sh, out, "position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves O-O", "fen")
	if !strings.HasPrefix(got, "4k3/8/8/8/8/8/8/5RK1 b - -") {
		t.Errorf("castled fen = %q", got)
	}
}

func TestPositionBadMoveKeepsPosition(t *testing.T) {
	sh, out := newTestShell(t, nil)
	run(sh, out, "position startpos moves e2e4")
	before := sh.Position().ToFEN()

	got := run(sh, out, "position startpos moves e2e5")
	if !strings.HasPrefix(got, "error: ") {
		t.Errorf("expected error, got %q", got)
	}
	if after := sh.Position().ToFEN(); after != before {
		t.Errorf("position changed to %s", after)
	}

	got = run(sh, out, "position fen not a fen")
	if !strings.HasPrefix(got, "error: ") {
		t.Errorf("expected FEN error, got %q", got)
	}
}

func TestMoveCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)

	got := run(sh, out, "move e4 e7e5 Nf3")
	for _, want := range []string{"played e4 (e2e4)", "played e5 (e7e5)", "played Nf3 (g1f3)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}

	got = run(sh, out, "move Ke2")
	if !strings.HasPrefix(got, "error: ") {
		t.Errorf("illegal move accepted: %q", got)
	}

	got = run(sh, out, "history")
	if got != "e4 e5 Nf3\n" {
		t.Errorf("history = %q", got)
	}
}

func TestCheckmateReported(t *testing.T) {
	sh, out := newTestShell(t, nil)
	got := run(sh, out, "move f3 e5 g4 Qh4#")
	if !strings.Contains(got, "checkmate, Black wins") {
		t.Errorf("output %q does not report mate", got)
	}
}

func TestUndoCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)
	run(sh, out, "move e4 e5", "null")

	got := run(sh, out, "undo 3", "fen")
	if !strings.HasSuffix(got, board.StartFEN+"\n") {
		t.Errorf("after undo: %q", got)
	}

	got = run(sh, out, "undo")
	if got != "error: no move to undo\n" {
		t.Errorf("undo on empty history = %q", got)
	}

	got = run(sh, out, "undo x")
	if !strings.HasPrefix(got, "error: bad undo count") {
		t.Errorf("bad count = %q", got)
	}
}

func TestLegalCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)

	if got := run(sh, out, "legal"); !strings.HasPrefix(got, "20: ") {
		t.Errorf("legal = %q", got)
	}

	got := run(sh, out, "legal n")
	if !strings.HasPrefix(got, "4: ") {
		t.Fatalf("legal n = %q", got)
	}
	for _, san := range []string{"Na3", "Nc3", "Nf3", "Nh3"} {
		if !strings.Contains(got, san) {
			t.Errorf("legal n %q missing %s", got, san)
		}
	}

	if got := run(sh, out, "legal z"); !strings.HasPrefix(got, "error: ") {
		t.Errorf("legal z = %q", got)
	}
}

func TestPerftCommands(t *testing.T) {
	sh, out := newTestShell(t, nil)

	if got := run(sh, out, "perft 3"); !strings.HasPrefix(got, "Nodes: 8,902\n") {
		t.Errorf("perft 3 = %q", got)
	}

	got := run(sh, out, "divide 1")
	if !strings.HasSuffix(got, "Moves: 20\nNodes: 20\n") {
		t.Errorf("divide 1 = %q", got)
	}
	if !strings.Contains(got, "e2e4: 1\n") {
		t.Errorf("divide 1 missing e2e4: %q", got)
	}

	if got := run(sh, out, "verify 2"); !strings.HasPrefix(got, "ok: depth 2") {
		t.Errorf("verify 2 = %q", got)
	}

	if got := run(sh, out, "perft 0"); !strings.HasPrefix(got, "error: bad depth") {
		t.Errorf("perft 0 = %q", got)
	}
}

func TestPerftUsesCache(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sh, out := newTestShell(t, store)
	if got := run(sh, out, "perft 2"); strings.Contains(got, "Cached") {
		t.Errorf("first run reported cached: %q", got)
	}
	got := run(sh, out, "perft 2")
	if !strings.HasPrefix(got, "Nodes: 400\nCached:") {
		t.Errorf("second run = %q", got)
	}
}

func TestStorageCommands(t *testing.T) {
	sh, out := newTestShell(t, nil)
	for _, cmd := range []string{"save", "load 1", "saved"} {
		if got := run(sh, out, cmd); got != "error: no database open\n" {
			t.Errorf("%s without store = %q", cmd, got)
		}
	}

	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sh, out = newTestShell(t, store)
	run(sh, out, "move d4 d5")
	fen := sh.Position().ToFEN()

	got := run(sh, out, "save")
	hash := strings.TrimSpace(strings.TrimPrefix(got, "saved "))
	if len(hash) != 16 {
		t.Fatalf("save = %q", got)
	}

	run(sh, out, "position startpos")
	if got := run(sh, out, "load "+hash); got != fen+"\n" {
		t.Errorf("load = %q, want %q", got, fen)
	}
	if got := run(sh, out, "saved"); !strings.HasSuffix(got, "1 positions\n") {
		t.Errorf("saved = %q", got)
	}
	if got := run(sh, out, "load 0123"); !strings.HasPrefix(got, "error: ") {
		t.Errorf("load of unknown hash = %q", got)
	}
}

func TestCompactCommands(t *testing.T) {
	sh, out := newTestShell(t, nil)

	got := strings.TrimSpace(run(sh, out, "compact"))
	if len(got) != 2*board.CompactSize || !strings.HasPrefix(got, "ffff00000000ffff") {
		t.Fatalf("compact = %q", got)
	}

	run(sh, out, "move e4")
	if got := run(sh, out, "decode "+got); got != board.StartFEN+"\n" {
		t.Errorf("decode = %q", got)
	}

	if got := run(sh, out, "decode zz"); !strings.HasPrefix(got, "error: ") {
		t.Errorf("decode zz = %q", got)
	}
}

func TestDiagramCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)
	path := filepath.Join(t.TempDir(), "board.png")

	got := run(sh, out, "diagram "+path+" 128")
	if !strings.HasPrefix(got, "wrote "+path) {
		t.Errorf("diagram = %q", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}

	if got := run(sh, out, "diagram "+path+" big"); !strings.HasPrefix(got, "error: bad size") {
		t.Errorf("bad size = %q", got)
	}
}

func TestDebugCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)
	defer func() { board.DebugMoveValidation = false }()

	run(sh, out, "debug on")
	if !board.DebugMoveValidation {
		t.Error("debug on did not enable validation")
	}
	got := run(sh, out, "position startpos")
	if !strings.Contains(got, "legal=20") {
		t.Errorf("debug position output = %q", got)
	}
	run(sh, out, "debug off")
	if board.DebugMoveValidation {
		t.Error("debug off did not disable validation")
	}
}

func TestRunStopsAtQuit(t *testing.T) {
	sh, out := newTestShell(t, nil)
	input := "# comment\n\nfen\nquit\nfen\n"
	if err := sh.Run(strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), board.StartFEN); got != 1 {
		t.Errorf("printed %d FENs, want 1", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	sh, out := newTestShell(t, nil)
	if got := run(sh, out, "bogus"); got != "error: unknown command \"bogus\"\n" {
		t.Errorf("bogus = %q", got)
	}
}
