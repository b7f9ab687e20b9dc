// Package demo holds the interactive scene drawn by cmd/imdemo: a
// draggable window over the glyph atlas, with YAML or TOML configuration.
package demo

import (
	"github.com/gogpu/imdraw"
)

// Scene draws the demo frame: the glyph atlas stretched over the top-right
// quadrant of the screen, tinted, and a draggable window with a caption.
type Scene struct {
	Window  *Window
	Caption string

	// Tint colors the atlas quad.
	Tint imdraw.Color

	// Frame and Panel color the window border and interior.
	Frame imdraw.Color
	Panel imdraw.Color

	// Text colors the caption.
	Text imdraw.Color
}

// NewScene creates the default scene for a viewport.
func NewScene(viewport imdraw.Size) *Scene {
	return &Scene{
		Window:  NewWindow(imdraw.R(120, 120, 360, 360), viewport),
		Caption: "imdraw",
		Tint:    imdraw.Red,
		Frame:   imdraw.White,
		Panel:   imdraw.Gray,
		Text:    imdraw.White,
	}
}

// Build clears list and records the scene into it.
func (s *Scene) Build(list *imdraw.PrimitiveList, glyphs imdraw.GlyphSource) {
	list.Clear()

	// Atlas quad in normalized coordinates, texture flipped vertically.
	list.SetTexture(glyphs.Texture())
	list.SetPixelSpace(false)
	list.SetColor(s.Tint)
	list.FillQuad(
		[4]imdraw.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		[4]imdraw.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}},
	)

	bounds := s.Window.Bounds()
	list.SetTexture(imdraw.NoTexture)
	list.SetPixelSpace(true)
	list.SetColor(s.Frame)
	list.FillRect(bounds)
	list.SetColor(s.Panel)
	inner := bounds.Inset(WindowPadding)
	list.FillRect(inner)

	if s.Caption == "" {
		return
	}
	list.SetColor(s.Text)
	origin := imdraw.Pt(int32(inner.X0)+WindowPadding, int32(inner.Y0)+WindowPadding)
	list.DrawText(glyphs, origin, s.Caption)
}
