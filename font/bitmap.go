package font

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/bits"
)

// InkIndex is the palette index that marks glyph pixels in the atlas PNG.
const InkIndex = 21

// minTextureWidth is the narrowest atlas texture. Rows stay a multiple of
// the 256-byte copy alignment.
const minTextureWidth = 256

// Bitmap is a decoded atlas, padded to power-of-two dimensions. Ink pixels
// are opaque white, everything else transparent black.
type Bitmap struct {
	Width, Height uint32
	Pix           []byte // RGBA, Width*4 bytes per row
}

// Decode decodes an atlas PNG and classifies its pixels.
//
// For paletted images a pixel is ink when its palette index is InkIndex.
// Other images count a pixel as ink when it is bright and mostly opaque.
func Decode(data []byte) (*Bitmap, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font: decode atlas: %w", err)
	}

	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("font: decode atlas: empty image")
	}

	out := &Bitmap{
		Width:  max(ceilPow2(w), minTextureWidth),
		Height: ceilPow2(h),
	}
	out.Pix = make([]byte, 4*out.Width*out.Height)

	ink := inkFunc(img)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !ink(b.Min.X+x, b.Min.Y+y) {
				continue
			}
			off := (uint32(y)*out.Width + uint32(x)) * 4
			copy(out.Pix[off:off+4], []byte{255, 255, 255, 255})
		}
	}
	return out, nil
}

// Ink reports whether the pixel at (x, y) is ink.
func (b *Bitmap) Ink(x, y int) bool {
	if x < 0 || y < 0 || uint32(x) >= b.Width || uint32(y) >= b.Height {
		return false
	}
	return b.Pix[(uint32(y)*b.Width+uint32(x))*4+3] == 255
}

func inkFunc(img image.Image) func(x, y int) bool {
	if p, ok := img.(*image.Paletted); ok {
		return func(x, y int) bool {
			return p.ColorIndexAt(x, y) == InkIndex
		}
	}
	return func(x, y int) bool {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		g := color.GrayModel.Convert(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}).(color.Gray)
		return c.A >= 128 && g.Y >= 128
	}
}

// ceilPow2 returns the smallest power of two >= max(x, 1).
func ceilPow2(x uint32) uint32 {
	if x <= 1 {
		return 1
	}
	return 1 << (32 - bits.LeadingZeros32(x-1))
}
