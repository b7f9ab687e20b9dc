package imdraw

// Texture is a handle to a texture owned by a renderer's texture registry.
// Handles compare by value; two handles are the same texture when their IDs
// match. The zero value is NoTexture.
//
// A PrimitiveList only borrows handles: it never creates or destroys the
// texture behind one.
type Texture struct {
	ID     uint32
	Width  uint32
	Height uint32
}

// NoTexture selects the renderer's 1x1 white fallback, which makes
// untextured fills and textured quads share one pipeline.
var NoTexture = Texture{}

// Valid reports whether t refers to a registered texture.
func (t Texture) Valid() bool {
	return t.ID != 0
}

// Size returns the texture dimensions in pixels.
func (t Texture) Size() Size {
	return Size{W: t.Width, H: t.Height}
}

// Same reports whether t and o are the same texture.
func (t Texture) Same(o Texture) bool {
	return t.ID == o.ID
}
