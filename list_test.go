package imdraw

import (
	"errors"
	"testing"
)

func TestFillRectEndToEnd(t *testing.T) {
	l := NewPrimitiveList(Size{W: 800, H: 600})
	l.SetPixelSpace(true)
	l.SetColor(White)
	l.FillRect(R(0, 0, 100, 100))

	want := []Vec2{V2(-1, 1), V2(-0.75, 1), V2(-1, 0.667), V2(-0.75, 0.667)}
	verts := l.Vertices()
	if len(verts) != 4 {
		t.Fatalf("len(Vertices()) = %d, want 4", len(verts))
	}
	for i, v := range verts {
		got := V2(v.Pos[0], v.Pos[1])
		if !got.Approx(want[i], 1e-3) {
			t.Errorf("vertex %d = %v, want %v", i, got, want[i])
		}
		if v.Color != White.Array() {
			t.Errorf("vertex %d color = %v, want white", i, v.Color)
		}
	}

	wantIdx := []uint32{0, 1, 2, 2, 1, 3}
	idx := l.Indices()
	if len(idx) != len(wantIdx) {
		t.Fatalf("Indices() = %v, want %v", idx, wantIdx)
	}
	for i := range idx {
		if idx[i] != wantIdx[i] {
			t.Fatalf("Indices() = %v, want %v", idx, wantIdx)
		}
	}

	cmds := l.Commands()
	if len(cmds) != 1 || cmds[0].IndexOffset != 0 || cmds[0].IndexCount != 6 || cmds[0].Texture.Valid() {
		t.Errorf("Commands() = %+v, want one untextured command [0,6)", cmds)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFillRectNormalizedSpace(t *testing.T) {
	l := NewPrimitiveList(Size{W: 800, H: 600})
	l.FillRect(R(-0.5, -0.5, 0.5, 0.5))
	v := l.Vertices()[3]
	if v.Pos != [2]float32{0.5, 0.5} {
		t.Errorf("normalized FillRect BR = %v, want [0.5 0.5]", v.Pos)
	}
}

func TestCommandPartition(t *testing.T) {
	a := Texture{ID: 1, Width: 8, Height: 8}
	b := Texture{ID: 2, Width: 8, Height: 8}

	tests := []struct {
		name     string
		textures []Texture
	}{
		{"identical", []Texture{a, a, a, a}},
		{"alternating", []Texture{a, b, a, b, a}},
		{"runs", []Texture{NoTexture, NoTexture, a, a, b, NoTexture}},
		{"single", []Texture{b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewPrimitiveList(Size{W: 100, H: 100})
			switches := 0
			for i, tex := range tt.textures {
				if i > 0 && !tex.Same(tt.textures[i-1]) {
					switches++
				}
				l.SetTexture(tex)
				l.FillRect(R(0, 0, 1, 1))
			}

			cmds := l.Commands()
			if len(cmds) != switches+1 {
				t.Fatalf("len(Commands()) = %d, want %d", len(cmds), switches+1)
			}
			var next uint32
			k := 0
			for i, c := range cmds {
				if c.IndexOffset != next {
					t.Errorf("command %d offset = %d, want %d", i, c.IndexOffset, next)
				}
				if !c.Texture.Same(tt.textures[k]) {
					t.Errorf("command %d texture = %d, want %d", i, c.Texture.ID, tt.textures[k].ID)
				}
				k += int(c.IndexCount / 6)
				next = c.End()
			}
			if int(next) != len(l.Indices()) {
				t.Errorf("commands cover %d indices, want %d", next, len(l.Indices()))
			}
			if err := l.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestEmptyTailCommandReused(t *testing.T) {
	a := Texture{ID: 1, Width: 8, Height: 8}
	b := Texture{ID: 2, Width: 8, Height: 8}

	l := NewPrimitiveList(Size{W: 100, H: 100})
	l.SetTexture(a)
	l.FillRect(R(0, 0, 1, 1))
	// Switching twice without drawing must not leave an empty command behind.
	l.SetTexture(b)
	l.SetTexture(NoTexture)
	l.FillRect(R(0, 0, 1, 1))

	cmds := l.Commands()
	if len(cmds) != 2 {
		t.Fatalf("len(Commands()) = %d, want 2", len(cmds))
	}
	if cmds[1].Texture.Valid() {
		t.Errorf("second command texture = %d, want none", cmds[1].Texture.ID)
	}
}

func TestStateAppliesToLaterVerticesOnly(t *testing.T) {
	l := NewPrimitiveList(Size{W: 10, H: 10})
	l.SetColor(Red)
	l.SetTexCoord(V2(0, 1))
	first := l.EmitVertex(V2(0, 0))
	l.SetColor(Blue)
	l.SetTexCoord(V2(1, 0))
	second := l.EmitVertex(V2(1, 1))

	v := l.Vertices()
	if v[first].Color != Red.Array() || v[first].TexCoord != [2]float32{0, 1} {
		t.Errorf("first vertex = %+v, want red at uv (0,1)", v[first])
	}
	if v[second].Color != Blue.Array() || v[second].TexCoord != [2]float32{1, 0} {
		t.Errorf("second vertex = %+v, want blue at uv (1,0)", v[second])
	}
	if len(l.Indices()) != 0 || len(l.Commands()) != 0 {
		t.Error("EmitVertex without AutoIndex must not push indices")
	}
}

func TestAutoIndex(t *testing.T) {
	l := NewPrimitiveList(Size{W: 10, H: 10})
	l.SetAutoIndex(true)
	for range 3 {
		l.EmitVertex(V2(0, 0))
	}
	if got := l.Indices(); len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("Indices() = %v, want [0 1 2]", got)
	}
	if cmds := l.Commands(); len(cmds) != 1 || cmds[0].IndexCount != 3 {
		t.Errorf("Commands() = %+v, want one command of 3", cmds)
	}

	// Quads push their own indices even with AutoIndex on.
	l.FillRect(R(0, 0, 1, 1))
	if n := len(l.Indices()); n != 9 {
		t.Errorf("len(Indices()) after FillRect = %d, want 9", n)
	}
}

func TestPushIndexOutOfRangePanics(t *testing.T) {
	l := NewPrimitiveList(Size{W: 10, H: 10})
	defer func() {
		if recover() == nil {
			t.Error("PushIndex(0) on an empty list should panic")
		}
	}()
	l.PushIndex(0)
}

func TestClearResetsState(t *testing.T) {
	l := NewPrimitiveList(Size{W: 10, H: 10})
	l.SetTexture(Texture{ID: 3, Width: 1, Height: 1})
	l.SetColor(Red)
	l.SetPixelSpace(true)
	l.FillRect(R(0, 0, 1, 1))
	l.Clear()

	if v, i := l.Len(); v != 0 || i != 0 || len(l.Commands()) != 0 {
		t.Errorf("after Clear: %d vertices, %d indices, %d commands", v, i, len(l.Commands()))
	}
	if l.State() != DefaultState() {
		t.Errorf("after Clear State() = %+v, want %+v", l.State(), DefaultState())
	}
	if l.Viewport() != (Size{W: 10, H: 10}) {
		t.Errorf("Clear must keep the viewport, got %v", l.Viewport())
	}
}

func TestDrawImageRect(t *testing.T) {
	l := NewPrimitiveList(Size{W: 200, H: 100})
	if err := l.DrawImageRect(Pt(0, 0), Pt(0, 0), Size{W: 1, H: 1}); !errors.Is(err, ErrNoTexture) {
		t.Fatalf("DrawImageRect() without texture error = %v, want ErrNoTexture", err)
	}
	if v, _ := l.Len(); v != 0 {
		t.Fatalf("failed DrawImageRect emitted %d vertices", v)
	}

	tex := Texture{ID: 9, Width: 256, Height: 128}
	l.SetTexture(tex)
	if err := l.DrawImageRect(Pt(100, 50), Pt(64, 32), Size{W: 32, H: 16}); err != nil {
		t.Fatalf("DrawImageRect() error = %v", err)
	}

	v := l.Vertices()
	wantUV := [4][2]float32{{0.25, 0.25}, {0.375, 0.25}, {0.25, 0.375}, {0.375, 0.375}}
	wantPos := [4]Vec2{V2(0, 0), V2(0.32, 0), V2(0, -0.32), V2(0.32, -0.32)}
	for i := range 4 {
		if v[i].TexCoord != wantUV[i] {
			t.Errorf("vertex %d uv = %v, want %v", i, v[i].TexCoord, wantUV[i])
		}
		if !V2(v[i].Pos[0], v[i].Pos[1]).Approx(wantPos[i], 1e-5) {
			t.Errorf("vertex %d pos = %v, want %v", i, v[i].Pos, wantPos[i])
		}
	}
	if l.State().PixelSpace {
		t.Error("DrawImageRect must restore PixelSpace")
	}
	if cmds := l.Commands(); len(cmds) != 1 || !cmds[0].Texture.Same(tex) {
		t.Errorf("Commands() = %+v, want one command with the texture", cmds)
	}
}

func TestValidate(t *testing.T) {
	l := NewPrimitiveList(Size{W: 10, H: 10})
	a := l.EmitVertex(V2(0, 0))
	b := l.EmitVertex(V2(1, 0))
	l.PushIndex(a)
	l.PushIndex(b)
	if err := l.Validate(); !errors.Is(err, ErrIncompleteTriangle) {
		t.Errorf("Validate() error = %v, want ErrIncompleteTriangle", err)
	}
	l.PushIndex(b)
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func BenchmarkFillRect(b *testing.B) {
	l := NewPrimitiveList(Size{W: 1920, H: 1080})
	l.SetPixelSpace(true)
	b.ReportAllocs()
	for b.Loop() {
		l.Clear()
		l.SetPixelSpace(true)
		for i := range 1000 {
			f := float32(i)
			l.FillRect(R(f, f, f+10, f+10))
		}
	}
}
