// Package font provides the bitmap glyph atlas used by imdraw to draw text.
//
// The atlas is a single texture holding fixed-size cells. Cell positions
// come from a hardcoded [Layout]; the embedded pixel font covers digits,
// common symbols, Latin and Cyrillic letters.
package font

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/imdraw"
)

//go:generate go run ../cmd/atlasgen -o pixelfont.png

// Embedded pixel font bitmap.
//
//go:embed pixelfont.png
var pixelFontPNG []byte

// TextureUploader creates textures from RGBA pixels. render.Renderer
// implements it.
type TextureUploader interface {
	CreateTexture(label string, width, height uint32, rgba []byte) (imdraw.Texture, error)
}

// Atlas maps characters to cells of one texture. It is immutable after
// construction and implements imdraw.GlyphSource.
type Atlas struct {
	texture  imdraw.Texture
	cell     imdraw.Size
	glyphs   map[rune]imdraw.Point
	fallback imdraw.Point
}

var _ imdraw.GlyphSource = (*Atlas)(nil)

// New creates an atlas over an already uploaded texture.
func New(tex imdraw.Texture, layout Layout) (*Atlas, error) {
	glyphs, err := layout.Glyphs()
	if err != nil {
		return nil, err
	}
	return &Atlas{
		texture:  tex,
		cell:     layout.Cell,
		glyphs:   glyphs,
		fallback: glyphs[layout.Fallback],
	}, nil
}

// Load decodes an atlas PNG, uploads it and builds the glyph table.
func Load(up TextureUploader, data []byte, layout Layout) (*Atlas, error) {
	bm, err := Decode(data)
	if err != nil {
		return nil, err
	}
	tex, err := up.CreateTexture("font_atlas", bm.Width, bm.Height, bm.Pix)
	if err != nil {
		return nil, fmt.Errorf("font: upload atlas: %w", err)
	}
	imdraw.Logger().Debug("font atlas loaded",
		"width", bm.Width, "height", bm.Height, "cell", layout.Cell)
	return New(tex, layout)
}

// LoadDefault loads the embedded pixel font.
func LoadDefault(up TextureUploader) (*Atlas, error) {
	return Load(up, pixelFontPNG, DefaultLayout())
}

// MustLoad loads the embedded pixel font and panics on failure. The font is
// part of the binary, so a failure here is a startup bug.
func MustLoad(up TextureUploader) *Atlas {
	a, err := LoadDefault(up)
	if err != nil {
		panic(err)
	}
	return a
}

// Texture returns the atlas texture.
func (a *Atlas) Texture() imdraw.Texture { return a.texture }

// CellSize returns the size of one glyph cell.
func (a *Atlas) CellSize() imdraw.Size { return a.cell }

// Cell returns the origin of r's cell, or the fallback cell and false.
func (a *Atlas) Cell(r rune) (imdraw.Point, bool) {
	if p, ok := a.glyphs[r]; ok {
		return p, true
	}
	return a.fallback, false
}

// Has reports whether r has its own cell.
func (a *Atlas) Has(r rune) bool {
	_, ok := a.glyphs[r]
	return ok
}

// Len returns the number of mapped characters.
func (a *Atlas) Len() int { return len(a.glyphs) }
