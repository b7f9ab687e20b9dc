package imdraw

// ToNDC converts a pixel position (origin top-left, Y down) to normalized
// device coordinates (origin center, Y up) for the given viewport.
// A zero-area viewport returns p unchanged.
func ToNDC(p Vec2, viewport Size) Vec2 {
	if viewport.Empty() {
		return p
	}
	return Vec2{
		X: p.X/float32(viewport.W)*2 - 1,
		Y: p.Y/float32(viewport.H)*-2 + 1,
	}
}

// FromNDC is the inverse of ToNDC.
func FromNDC(p Vec2, viewport Size) Vec2 {
	if viewport.Empty() {
		return p
	}
	return Vec2{
		X: (p.X + 1) / 2 * float32(viewport.W),
		Y: (1 - p.Y) / 2 * float32(viewport.H),
	}
}
