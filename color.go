package imdraw

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
)

// ErrInvalidHex is returned by ParseHex for malformed color strings.
var ErrInvalidHex = errors.New("imdraw: invalid hex color")

// Color is a straight-alpha color with components in [0, 1].
// It is the per-vertex color written to the staging buffer.
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from all four components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Gray        = RGB(0.5, 0.5, 0.5)
	Transparent = RGBA(0, 0, 0, 0)
)

// FromColor converts a standard color.Color.
func FromColor(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float32(n.R) / 65535,
		G: float32(n.G) / 65535,
		B: float32(n.B) / 65535,
		A: float32(n.A) / 65535,
	}
}

// RGBA implements color.Color. The result is alpha-premultiplied as the
// interface requires.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}.RGBA()
}

// Array returns the components in vertex order.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Lerp performs linear interpolation between two colors.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Hex creates a color from a hex string, with or without a leading '#'.
// Supports "RGB", "RGBA", "RRGGBB" and "RRGGBBAA". Malformed input
// yields opaque black.
func Hex(hex string) Color {
	c, err := ParseHex(hex)
	if err != nil {
		return Black
	}
	return c
}

// ParseHex is like Hex but reports malformed input.
func ParseHex(hex string) (Color, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var v [4]uint32
	v[3] = 255
	switch len(s) {
	case 3, 4:
		for i := range len(s) {
			d, ok := hexDigit(s[i])
			if !ok {
				return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(s); i += 2 {
			hi, ok1 := hexDigit(s[i])
			lo, ok2 := hexDigit(s[i+1])
			if !ok1 || !ok2 {
				return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}

	return Color{
		R: float32(v[0]) / 255,
		G: float32(v[1]) / 255,
		B: float32(v[2]) / 255,
		A: float32(v[3]) / 255,
	}, nil
}

// String formats the color as "#RRGGBBAA".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// MarshalText implements encoding.TextMarshaler so colors read naturally in
// YAML and TOML configuration files.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	}
	return 0, false
}

func to8(x float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, x)) * 255))
}
