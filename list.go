package imdraw

import (
	"errors"
	"fmt"
)

// Primitive list errors.
var (
	// ErrNoTexture is returned by DrawImageRect when no texture is active.
	ErrNoTexture = errors.New("imdraw: no active texture")

	// ErrIncompleteTriangle is reported by Validate when a command's index
	// count is not a multiple of 3.
	ErrIncompleteTriangle = errors.New("imdraw: command ends with an incomplete triangle")

	// ErrIndexOutOfRange is reported by Validate when an index references a
	// vertex that does not exist.
	ErrIndexOutOfRange = errors.New("imdraw: index out of range")

	// ErrCommandGap is reported by Validate when command ranges do not
	// partition the index array.
	ErrCommandGap = errors.New("imdraw: command ranges do not partition indices")
)

// quadIndices is the triangle pattern for corners ordered TL, TR, BL, BR:
// (TL, TR, BL) and (BL, TR, BR), both with the same winding.
var quadIndices = [6]uint32{0, 1, 2, 2, 1, 3}

// State is the emission state applied to vertices as they are emitted.
// Changes affect subsequent vertices only.
type State struct {
	// Texture is bound to indices pushed from now on.
	Texture Texture

	// Color is written to every emitted vertex.
	Color Color

	// TexCoord is written to every vertex emitted by EmitVertex and FillRect.
	TexCoord Vec2

	// PixelSpace converts positions from pixels to NDC on emission.
	PixelSpace bool

	// AutoIndex makes EmitVertex push the new vertex's index.
	AutoIndex bool
}

// DefaultState returns the state a list starts each frame with: opaque
// white, normalized coordinates, no texture.
func DefaultState() State {
	return State{Color: White}
}

// PrimitiveList accumulates the vertices, indices and texture-keyed
// commands of one frame.
//
// A list is built on a single goroutine, consumed once by a renderer and
// then cleared for the next frame. No method blocks.
//
// Example:
//
//	list := imdraw.NewPrimitiveList(imdraw.Size{W: 800, H: 600})
//	list.SetPixelSpace(true)
//	list.SetColor(imdraw.White)
//	list.FillRect(imdraw.R(0, 0, 100, 100))
type PrimitiveList struct {
	vertices []Vertex
	indices  []uint32
	commands []Command

	state    State
	viewport Size
}

// NewPrimitiveList creates an empty list for the given viewport.
func NewPrimitiveList(viewport Size) *PrimitiveList {
	return &PrimitiveList{
		state:    DefaultState(),
		viewport: viewport,
	}
}

// Clear empties the list and resets the emission state. Allocated capacity
// and the viewport are kept.
func (l *PrimitiveList) Clear() {
	l.vertices = l.vertices[:0]
	l.indices = l.indices[:0]
	l.commands = l.commands[:0]
	l.state = DefaultState()
}

// State returns a copy of the current emission state.
func (l *PrimitiveList) State() State { return l.state }

// SetState replaces the emission state.
func (l *PrimitiveList) SetState(s State) { l.state = s }

// SetTexture sets the texture for subsequently pushed indices.
func (l *PrimitiveList) SetTexture(t Texture) { l.state.Texture = t }

// SetColor sets the color of subsequently emitted vertices.
func (l *PrimitiveList) SetColor(c Color) { l.state.Color = c }

// SetTexCoord sets the texture coordinate of subsequently emitted vertices.
func (l *PrimitiveList) SetTexCoord(uv Vec2) { l.state.TexCoord = uv }

// SetPixelSpace selects pixel (true) or normalized (false) positions.
func (l *PrimitiveList) SetPixelSpace(on bool) { l.state.PixelSpace = on }

// SetAutoIndex makes EmitVertex push each new vertex's index.
func (l *PrimitiveList) SetAutoIndex(on bool) { l.state.AutoIndex = on }

// SetViewport sets the pixel size used for pixel-space conversion.
func (l *PrimitiveList) SetViewport(s Size) { l.viewport = s }

// Viewport returns the pixel size used for pixel-space conversion.
func (l *PrimitiveList) Viewport() Size { return l.viewport }

// Vertices returns the emitted vertices. The slice is owned by the list and
// is only valid until the next Clear.
func (l *PrimitiveList) Vertices() []Vertex { return l.vertices }

// Indices returns the pushed indices.
func (l *PrimitiveList) Indices() []uint32 { return l.indices }

// Commands returns the draw commands in submission order.
func (l *PrimitiveList) Commands() []Command { return l.commands }

// Len returns the number of vertices and indices.
func (l *PrimitiveList) Len() (vertices, indices int) {
	return len(l.vertices), len(l.indices)
}

// EmitVertex appends a vertex at pos with the current color and texture
// coordinate and returns its index. With AutoIndex set the index is also
// pushed.
func (l *PrimitiveList) EmitVertex(pos Vec2) uint32 {
	i := l.appendVertex(pos, l.state.TexCoord)
	if l.state.AutoIndex {
		l.PushIndex(i)
	}
	return i
}

// PushIndex appends i to the index array under the current texture,
// starting a new command if the texture changed since the last non-empty
// one. It panics if i does not reference an emitted vertex.
func (l *PrimitiveList) PushIndex(i uint32) {
	if int(i) >= len(l.vertices) {
		panic(fmt.Sprintf("imdraw: PushIndex(%d) with %d vertices", i, len(l.vertices)))
	}
	l.commands = AppendCommand(l.commands, l.state.Texture)
	l.indices = append(l.indices, i)
	l.commands[len(l.commands)-1].IndexCount++
}

// FillRect emits a rectangle as two triangles using the current color and
// texture coordinate.
func (l *PrimitiveList) FillRect(r Rect) {
	uv := l.state.TexCoord
	l.emitQuad(r.Corners(), [4]Vec2{uv, uv, uv, uv})
}

// FillQuad emits four arbitrary corners, ordered TL, TR, BL, BR, as two
// triangles. Corner i gets texture coordinate uv[i].
func (l *PrimitiveList) FillQuad(corners, uv [4]Vec2) {
	l.emitQuad(corners, uv)
}

// DrawImageRect copies a size-sized region at src of the active texture to
// the pixel position dst. The quad is always placed in pixel space.
func (l *PrimitiveList) DrawImageRect(dst, src Point, size Size) error {
	if !l.state.Texture.Valid() {
		return ErrNoTexture
	}
	l.imageRect(dst, src, size)
	return nil
}

// Validate checks the committed-list invariants: command ranges partition
// the index array in order, each holds whole triangles, and every index
// references an emitted vertex.
func (l *PrimitiveList) Validate() error {
	var next uint32
	for i, c := range l.commands {
		if c.IndexOffset != next {
			return fmt.Errorf("%w: command %d starts at %d, want %d", ErrCommandGap, i, c.IndexOffset, next)
		}
		if c.IndexCount%3 != 0 {
			return fmt.Errorf("%w: command %d has %d indices", ErrIncompleteTriangle, i, c.IndexCount)
		}
		next = c.End()
	}
	if int(next) != len(l.indices) {
		return fmt.Errorf("%w: commands cover %d of %d indices", ErrCommandGap, next, len(l.indices))
	}
	for _, idx := range l.indices {
		if int(idx) >= len(l.vertices) {
			return fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, idx, len(l.vertices))
		}
	}
	return nil
}

func (l *PrimitiveList) imageRect(dst, src Point, size Size) {
	d := dst.Vec2()
	s := src.Vec2()
	ext := size.Vec2()
	tex := l.state.Texture.Size().Vec2()

	uv0 := s.Div(tex)
	uv1 := s.Add(ext).Div(tex)
	corners := R(d.X, d.Y, d.X+ext.X, d.Y+ext.Y).Corners()
	uv := [4]Vec2{
		{uv0.X, uv0.Y},
		{uv1.X, uv0.Y},
		{uv0.X, uv1.Y},
		{uv1.X, uv1.Y},
	}

	saved := l.state.PixelSpace
	l.state.PixelSpace = true
	l.emitQuad(corners, uv)
	l.state.PixelSpace = saved
}

func (l *PrimitiveList) emitQuad(corners, uv [4]Vec2) {
	base := l.appendVertex(corners[0], uv[0])
	for k := 1; k < 4; k++ {
		l.appendVertex(corners[k], uv[k])
	}
	for _, q := range quadIndices {
		l.PushIndex(base + q)
	}
}

func (l *PrimitiveList) appendVertex(pos, uv Vec2) uint32 {
	if l.state.PixelSpace {
		pos = ToNDC(pos, l.viewport)
	}
	i := uint32(len(l.vertices))
	l.vertices = append(l.vertices, Vertex{
		Pos:      pos.Array(),
		TexCoord: uv.Array(),
		Color:    l.state.Color.Array(),
	})
	return i
}
