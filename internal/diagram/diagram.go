// Package diagram renders board diagrams of a position as raster images.
package diagram

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"

	"github.com/hailam/chessrules/internal/board"
)

// Size limits of a rendered board, in pixels.
const (
	MinSize     = 64
	MaxSize     = 4096
	DefaultSize = 480
)

// ErrUnknownFormat is returned by SaveFile for unsupported file extensions.
var ErrUnknownFormat = errors.New("diagram: unknown image format")

// Board colors
var (
	lightSquare     = color.RGBA{0xF0, 0xD9, 0xB5, 0xFF}
	darkSquare      = color.RGBA{0xB5, 0x88, 0x63, 0xFF}
	lightHighlight  = color.RGBA{0xCD, 0xD2, 0x6A, 0xFF}
	darkHighlight   = color.RGBA{0xAA, 0xA2, 0x3A, 0xFF}
	checkHighlight  = color.RGBA{0xE0, 0x50, 0x50, 0xFF}
	whitePieceFill  = color.RGBA{0xFA, 0xFA, 0xFA, 0xFF}
	blackPieceFill  = color.RGBA{0x22, 0x22, 0x22, 0xFF}
	pieceOutline    = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	whitePieceLabel = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	blackPieceLabel = color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}
)

// Options control rendering.
type Options struct {
	Size         int  // board edge in pixels, rounded down to a multiple of 8
	Flipped      bool // draw from black's side
	HideLastMove bool
	HideCoords   bool
}

// Render draws p with default options at the given size.
func Render(p *board.Position, size int) (*image.RGBA, error) {
	return RenderWith(p, Options{Size: size})
}

// RenderWith draws p. Squares and piece discs are laid out as an SVG
// document and rasterized; piece letters and coordinates are drawn on top.
// The last move and a king in check are highlighted.
func RenderWith(p *board.Position, opts Options) (*image.RGBA, error) {
	if opts.Size < MinSize || opts.Size > MaxSize {
		return nil, fmt.Errorf("diagram: size %d outside [%d, %d]", opts.Size, MinSize, MaxSize)
	}
	sq := opts.Size / 8
	size := sq * 8

	icon, err := oksvg.ReadIconStream(strings.NewReader(boardSVG(p, sq, opts)))
	if err != nil {
		return nil, fmt.Errorf("diagram: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	drawLabels(rgba, p, sq, opts)
	return rgba, nil
}

// origin returns the top-left pixel of a square.
func origin(s board.Square, sq int, flipped bool) (x, y int) {
	file, rank := s.File(), s.Rank()
	if flipped {
		file, rank = 7-file, 7-rank
	}
	return file * sq, (7 - rank) * sq
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func boardSVG(p *board.Position, sq int, opts Options) string {
	size := sq * 8
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)

	var marked board.Bitboard
	if last := p.LastMove(); !opts.HideLastMove && last != board.NoMove && !last.IsNull() {
		marked = board.SquareBB(last.From()) | board.SquareBB(last.To())
	}
	var checked board.Bitboard
	if p.InCheck() {
		checked = board.SquareBB(p.KingSquare(p.SideToMove))
	}

	for s := board.A1; s <= board.H8; s++ {
		x, y := origin(s, sq, opts.Flipped)
		light := (s.File()+s.Rank())%2 == 1

		fill := darkSquare
		switch {
		case checked.IsSet(s):
			fill = checkHighlight
		case marked.IsSet(s) && light:
			fill = lightHighlight
		case marked.IsSet(s):
			fill = darkHighlight
		case light:
			fill = lightSquare
		}
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x, y, sq, sq, hexColor(fill))
	}

	stroke := float64(sq) / 24
	for occ := p.AllOccupied; occ != 0; {
		s := occ.PopLSB()
		x, y := origin(s, sq, opts.Flipped)
		fill := whitePieceFill
		if p.ColorAt(s) == board.Black {
			fill = blackPieceFill
		}
		fmt.Fprintf(&sb, `<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="%s" stroke-width="%g"/>`,
			float64(x)+float64(sq)/2, float64(y)+float64(sq)/2, float64(sq)*0.38,
			hexColor(fill), hexColor(pieceOutline), stroke)
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

func drawLabels(dst *image.RGBA, p *board.Position, sq int, opts Options) {
	if pieceFont != nil {
		face, err := newFace(pieceFont, float64(sq)*0.5)
		if err == nil {
			defer face.Close()
			for occ := p.AllOccupied; occ != 0; {
				s := occ.PopLSB()
				col := whitePieceLabel
				if p.ColorAt(s) == board.Black {
					col = blackPieceLabel
				}
				x, y := origin(s, sq, opts.Flipped)
				drawCentered(dst, face, string(p.PieceTypeAt(s).Letter()), col, x+sq/2, y+sq/2)
			}
		}
	}

	if opts.HideCoords || coordFont == nil {
		return
	}
	face, err := newFace(coordFont, float64(sq)*0.2)
	if err != nil {
		return
	}
	defer face.Close()

	pad := sq / 16
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		// Files along the bottom edge, ranks along the left edge.
		fileSq := board.NewSquare(i, 0)
		rankSq := board.NewSquare(0, i)
		if opts.Flipped {
			fileSq = board.NewSquare(7-i, 7)
			rankSq = board.NewSquare(7, 7-i)
		}

		x, y := origin(fileSq, sq, opts.Flipped)
		label := string(rune('a' + fileSq.File()))
		w := font.MeasureString(face, label).Ceil()
		drawText(dst, face, label, coordColor(fileSq), x+sq-w-pad, y+sq-pad)

		x, y = origin(rankSq, sq, opts.Flipped)
		drawText(dst, face, string(rune('1'+rankSq.Rank())), coordColor(rankSq), x+pad, y+pad+ascent)
	}
}

// coordColor contrasts with the square the label sits on.
func coordColor(s board.Square) color.RGBA {
	if (s.File()+s.Rank())%2 == 1 {
		return darkSquare
	}
	return lightSquare
}

func drawText(dst *image.RGBA, face font.Face, s string, col color.Color, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawCentered(dst *image.RGBA, face font.Face, s string, col color.Color, cx, cy int) {
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	drawText(dst, face, s, col, cx-w/2, cy-h/2+m.Ascent.Ceil())
}

// Write renders p and encodes it as PNG.
func Write(w io.Writer, p *board.Position, size int) error {
	img, err := Render(p, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SaveFile renders p into path, picking the encoder from the extension:
// .png, .bmp, .tif or .tiff.
func SaveFile(path string, p *board.Position, size int) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = png.Encode
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	img, err := Render(p, size)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
