package diagram

import (
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	pieceFont = loadFont("Go Bold", gobold.TTF)
	coordFont = loadFont("Go Regular", goregular.TTF)
)

// loadFont returns nil when ttf does not parse. Labels drawn with a nil
// font are skipped.
func loadFont(name string, ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		log.Printf("diagram: %s font unavailable: %v", name, err)
		return nil
	}
	return f
}

// newFace sizes f in pixels.
func newFace(f *opentype.Font, px float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
}
