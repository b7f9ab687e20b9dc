// Command atlasgen rasterizes the imdraw glyph layout into a paletted PNG.
//
// Each character of font.DefaultLayout is drawn into its 12x16 cell with a
// TrueType face; pixels with enough coverage get palette index
// font.InkIndex. By default the face is Go Mono.
//
//	go run ./cmd/atlasgen -o font/pixelfont.png
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/imdraw/font"
)

// paletteSize matches the palette of the embedded pixelfont.png.
const paletteSize = 32

func main() {
	var (
		output    = flag.String("o", "pixelfont.png", "output PNG file")
		fontPath  = flag.String("font", "", "TrueType font file (default Go Mono)")
		size      = flag.Float64("size", 13.5, "font size in pixels per em")
		baseline  = flag.Int("baseline", 12, "baseline offset inside a cell")
		threshold = flag.Int("threshold", 96, "minimum coverage (0-255) for an ink pixel")
	)
	flag.Parse()

	ttf := gomono.TTF
	if *fontPath != "" {
		data, err := os.ReadFile(*fontPath)
		if err != nil {
			log.Fatalf("Failed to read font: %v", err)
		}
		ttf = data
	}

	face, err := newFace(ttf, *size)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	defer func() { _ = face.Close() }()

	img, missing := render(face, font.DefaultLayout(), *baseline, uint8(*threshold))
	for _, r := range missing {
		log.Printf("Font has no glyph for %q", r)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to encode: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Atlas saved to %s (%dx%d)", *output, img.Bounds().Dx(), img.Bounds().Dy())
}

func newFace(ttf []byte, size float64) (xfont.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
}

// palette is a gray ramp with the ink entry set to opaque white.
func palette() color.Palette {
	p := make(color.Palette, paletteSize)
	for i := range p {
		v := uint8(i * 4)
		p[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	p[font.InkIndex] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	return p
}

// render draws every character of layout centered in its cell and returns
// the characters the face could not draw.
func render(face xfont.Face, layout font.Layout, baseline int, threshold uint8) (*image.Paletted, []rune) {
	bounds := layout.Bounds()
	img := image.NewPaletted(image.Rect(0, 0, int(bounds.W), int(bounds.H)), palette())
	cell := image.Rect(0, 0, int(layout.Cell.W), int(layout.Cell.H))
	mask := image.NewAlpha(cell)

	glyphs, err := layout.Glyphs()
	if err != nil {
		log.Fatalf("Invalid layout: %v", err)
	}

	var missing []rune
	for r, origin := range glyphs {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			missing = append(missing, r)
			continue
		}
		clear(mask.Pix)
		d := &xfont.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: face,
			Dot: fixed.Point26_6{
				X: (fixed.I(cell.Dx()) - advance) / 2,
				Y: fixed.I(baseline),
			},
		}
		d.DrawString(string(r))

		for y := range cell.Dy() {
			for x := range cell.Dx() {
				if mask.AlphaAt(x, y).A >= threshold {
					img.SetColorIndex(int(origin.X)+x, int(origin.Y)+y, font.InkIndex)
				}
			}
		}
	}
	return img, missing
}
