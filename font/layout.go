package font

import (
	"errors"
	"fmt"

	"github.com/gogpu/imdraw"
)

// Layout errors.
var (
	// ErrDuplicateGlyph is returned when a character appears in two rows.
	ErrDuplicateGlyph = errors.New("font: duplicate glyph in layout")

	// ErrNoFallback is returned when the fallback character has no cell.
	ErrNoFallback = errors.New("font: fallback glyph not in layout")
)

// Row is one line of glyph cells in the atlas bitmap. Character i of Chars
// has its cell at x = Layout.OriginX + i*Cell.W, y = Y.
type Row struct {
	Y     int32
	Chars string
}

// Layout describes where glyph cells sit in the atlas bitmap.
type Layout struct {
	Cell     imdraw.Size
	OriginX  int32
	Rows     []Row
	Fallback rune
}

// DefaultLayout returns the layout of the embedded pixel font: digits and
// brackets, symbols, Cyrillic upper and lower case, Latin upper and lower
// case, in 12x16 cells starting at x = 16. Unmapped characters draw as '?'.
func DefaultLayout() Layout {
	return Layout{
		Cell:    imdraw.Size{W: 12, H: 16},
		OriginX: 16,
		Rows: []Row{
			{Y: 112, Chars: "0123456789()[]{}<>@#$"},
			{Y: 128, Chars: "+-*÷%=/\\|~^!?….,'\":;_"},
			{Y: 160, Chars: "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ"},
			{Y: 176, Chars: "абвгдеёжзийклмнопрстуфхцчшщъыьэюя"},
			{Y: 208, Chars: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
			{Y: 224, Chars: "abcdefghijklmnopqrstuvwxyz"},
		},
		Fallback: '?',
	}
}

// Glyphs builds the character to cell-origin table.
func (l Layout) Glyphs() (map[rune]imdraw.Point, error) {
	glyphs := make(map[rune]imdraw.Point)
	for _, row := range l.Rows {
		i := int32(0)
		for _, r := range row.Chars {
			if _, dup := glyphs[r]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateGlyph, r)
			}
			glyphs[r] = imdraw.Pt(l.OriginX+i*int32(l.Cell.W), row.Y)
			i++
		}
	}
	if _, ok := glyphs[l.Fallback]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoFallback, l.Fallback)
	}
	return glyphs, nil
}

// Bounds returns the smallest bitmap size that holds every cell.
func (l Layout) Bounds() imdraw.Size {
	var s imdraw.Size
	for _, row := range l.Rows {
		n := uint32(len([]rune(row.Chars)))
		s.W = max(s.W, uint32(l.OriginX)+n*l.Cell.W)
		s.H = max(s.H, uint32(row.Y)+l.Cell.H)
	}
	return s
}
