package diagram

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chessrules/internal/board"
)

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2 && d(a.A, b.A) <= 2
}

// center returns the pixel color in the middle of a square on a board of
// 8*sq pixels drawn from white's side.
func center(t *testing.T, p *board.Position, s board.Square, sq int) color.RGBA {
	t.Helper()
	img, err := Render(p, sq*8)
	if err != nil {
		t.Fatal(err)
	}
	x, y := origin(s, sq, false)
	return img.RGBAAt(x+sq/2, y+sq/2)
}

func TestRenderSquares(t *testing.T) {
	pos := board.NewPosition()
	img, err := Render(pos, 256)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("bounds = %v", b)
	}

	if got := center(t, pos, board.E4, 32); !near(got, lightSquare) {
		t.Errorf("e4 = %v, want light %v", got, lightSquare)
	}
	if got := center(t, pos, board.D4, 32); !near(got, darkSquare) {
		t.Errorf("d4 = %v, want dark %v", got, darkSquare)
	}
}

func TestRenderSizeRounding(t *testing.T) {
	img, err := Render(board.NewPosition(), 250)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 248 {
		t.Errorf("width = %d, want 248", img.Bounds().Dx())
	}

	for _, size := range []int{0, MinSize - 1, MaxSize + 1} {
		if _, err := Render(board.NewPosition(), size); err == nil {
			t.Errorf("Render(%d) should fail", size)
		}
	}
}

func TestRenderLastMove(t *testing.T) {
	pos := board.NewPosition()
	if _, err := pos.MakeMoveUCI("e2e4"); err != nil {
		t.Fatal(err)
	}
	if got := center(t, pos, board.E2, 32); !near(got, lightHighlight) {
		t.Errorf("e2 = %v, want highlight %v", got, lightHighlight)
	}
	if got := center(t, pos, board.E3, 32); !near(got, darkSquare) {
		t.Errorf("e3 = %v, want plain dark %v", got, darkSquare)
	}

	img, err := RenderWith(pos, Options{Size: 256, HideLastMove: true})
	if err != nil {
		t.Fatal(err)
	}
	x, y := origin(board.E2, 32, false)
	if got := img.RGBAAt(x+16, y+16); !near(got, lightSquare) {
		t.Errorf("hidden last move: e2 = %v", got)
	}
}

func TestRenderFlipped(t *testing.T) {
	img, err := RenderWith(board.NewPosition(), Options{Size: 256, Flipped: true})
	if err != nil {
		t.Fatal(err)
	}
	// h8 sits in the bottom-left corner; sample its edge, away from the disc.
	x, y := origin(board.H8, 32, true)
	if x != 0 || y != 224 {
		t.Fatalf("origin(h8, flipped) = %d,%d", x, y)
	}
	if got := img.RGBAAt(x+30, y+2); !near(got, darkSquare) {
		t.Errorf("h8 edge = %v, want dark", got)
	}
}

func TestRenderCheck(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4RK2 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	img, err := Render(pos, 256)
	if err != nil {
		t.Fatal(err)
	}
	x, y := origin(board.E8, 32, false)
	if got := img.RGBAAt(x+2, y+2); !near(got, checkHighlight) {
		t.Errorf("king square edge = %v, want check highlight", got)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, board.NewPosition(), 128); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("decoded width %d", img.Bounds().Dx())
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"board.png", "board.bmp", "board.tiff"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, board.NewPosition(), 128); err != nil {
			t.Errorf("SaveFile(%s): %v", name, err)
			continue
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s not written", name)
		}
	}
	if err := SaveFile(filepath.Join(dir, "board.gif"), board.NewPosition(), 128); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("gif: err = %v", err)
	}
}
