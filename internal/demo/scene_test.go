package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/font"
)

func testAtlas(t *testing.T) *font.Atlas {
	t.Helper()
	a, err := font.New(imdraw.Texture{ID: 7, Width: 512, Height: 256}, font.DefaultLayout())
	require.NoError(t, err)
	return a
}

func TestSceneBuild(t *testing.T) {
	atlas := testAtlas(t)
	viewport := imdraw.Size{W: 800, H: 600}
	s := NewScene(viewport)
	list := imdraw.NewPrimitiveList(viewport)

	s.Build(list, atlas)
	require.NoError(t, list.Validate())

	caption := len([]rune(s.Caption))
	vertices, indices := list.Len()
	assert.Equal(t, 4*(3+caption), vertices)
	assert.Equal(t, 6*(3+caption), indices)

	cmds := list.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, imdraw.Command{Texture: atlas.Texture(), IndexOffset: 0, IndexCount: 6}, cmds[0])
	assert.Equal(t, imdraw.Command{Texture: imdraw.NoTexture, IndexOffset: 6, IndexCount: 12}, cmds[1])
	assert.Equal(t, imdraw.Command{Texture: atlas.Texture(), IndexOffset: 18, IndexCount: uint32(6 * caption)}, cmds[2])

	v := list.Vertices()
	// Atlas quad: normalized coordinates, flipped texture, tinted.
	assert.Equal(t, [2]float32{0, 0}, v[0].Pos)
	assert.Equal(t, [2]float32{0, 1}, v[0].TexCoord)
	assert.Equal(t, [2]float32{1, 1}, v[3].Pos)
	assert.Equal(t, [2]float32{1, 0}, v[3].TexCoord)
	assert.Equal(t, imdraw.Red.Array(), v[0].Color)

	// Window frame in pixel space.
	assert.True(t, imdraw.V2(v[4].Pos[0], v[4].Pos[1]).Approx(imdraw.ToNDC(imdraw.V2(120, 120), viewport), 1e-6))
	assert.Equal(t, imdraw.White.Array(), v[4].Color)
	assert.True(t, imdraw.V2(v[8].Pos[0], v[8].Pos[1]).Approx(imdraw.ToNDC(imdraw.V2(128, 128), viewport), 1e-6))
	assert.Equal(t, imdraw.Gray.Array(), v[8].Color)

	// Caption starts one padding inside the panel.
	assert.True(t, imdraw.V2(v[12].Pos[0], v[12].Pos[1]).Approx(imdraw.ToNDC(imdraw.V2(136, 136), viewport), 1e-6))
}

func TestSceneBuildFollowsWindow(t *testing.T) {
	atlas := testAtlas(t)
	viewport := imdraw.Size{W: 800, H: 600}
	s := NewScene(viewport)
	s.Caption = ""
	list := imdraw.NewPrimitiveList(viewport)

	s.Window.Press(122, 200)
	s.Window.Release(202, 200)
	s.Build(list, atlas)

	vertices, _ := list.Len()
	assert.Equal(t, 12, vertices, "no caption quads")
	assert.True(t, imdraw.V2(list.Vertices()[4].Pos[0], list.Vertices()[4].Pos[1]).
		Approx(imdraw.ToNDC(imdraw.V2(200, 120), viewport), 1e-6))

	// Build clears the previous frame.
	s.Build(list, atlas)
	vertices, _ = list.Len()
	assert.Equal(t, 12, vertices)
}
