package imdraw

import (
	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/unicode/norm"
)

// GlyphSource maps characters to fixed-size cells of a texture atlas.
// font.Atlas is the implementation used by the renderer.
type GlyphSource interface {
	// Texture returns the atlas texture.
	Texture() Texture

	// CellSize returns the size of every cell; it is also the pen advance.
	CellSize() Size

	// Cell returns the atlas origin of r's cell. When r is not mapped it
	// returns the fallback cell and false.
	Cell(r rune) (Point, bool)
}

// DrawText draws text with the glyph source's texture, one cell per
// character, starting at the pixel position origin. The pen advances by
// the cell width per character and moves down one cell height per newline.
// Spaces advance without emitting a quad. The previously active texture is
// restored afterwards.
//
// Text is NFC-normalized and walked by grapheme cluster, so a base letter
// followed by a combining mark uses the precomposed cell when the atlas has
// one. DrawText returns the final pen position.
func (l *PrimitiveList) DrawText(glyphs GlyphSource, origin Point, text string) Point {
	saved := l.state.Texture
	l.state.Texture = glyphs.Texture()
	defer func() { l.state.Texture = saved }()

	cell := glyphs.CellSize()
	pen := origin
	walkText(text, func(r rune) {
		switch r {
		case '\n':
			pen.X = origin.X
			pen.Y += int32(cell.H)
		case ' ':
			pen.X += int32(cell.W)
		default:
			src, _ := glyphs.Cell(r)
			l.imageRect(pen, src, cell)
			pen.X += int32(cell.W)
		}
	})
	return pen
}

// MeasureText returns the pixel extent DrawText covers for text. Line
// breaks with nothing after them draw nothing and add no height, so "A\n"
// measures one line and "\n" measures zero.
func MeasureText(glyphs GlyphSource, text string) Size {
	cell := glyphs.CellSize()
	var cols, maxCols, breaks, lines uint32
	walkText(text, func(r rune) {
		if r == '\n' {
			breaks++
			cols = 0
			return
		}
		cols++
		maxCols = max(maxCols, cols)
		lines = breaks + 1
	})
	return Size{W: maxCols * cell.W, H: lines * cell.H}
}

// walkText calls fn with the leading rune of every grapheme cluster of the
// NFC form of text. Line breaks ("\n", "\r\n", "\r") are reported as '\n'.
func walkText(text string, fn func(r rune)) {
	var seg segmenter.Segmenter
	seg.InitWithString(norm.NFC.String(text))
	it := seg.GraphemeIterator()
	for it.Next() {
		g := it.Grapheme()
		if len(g.Text) == 0 {
			continue
		}
		r := g.Text[0]
		if r == '\r' {
			r = '\n'
		}
		fn(r)
	}
}
