package imdraw

import (
	"encoding/binary"
	"math"
)

// Wire sizes of one vertex and one index in the staging buffer.
//
// Vertex layout, tightly packed, little endian:
//
//	position  (vec2<f32>) = 8 bytes   offset 0   (location 0)
//	tex_coord (vec2<f32>) = 8 bytes   offset 8   (location 1)
//	color     (vec4<f32>) = 16 bytes  offset 16  (location 2)
//
// Indices are uint32.
const (
	VertexSize = 32
	IndexSize  = 4
)

// Vertex is one corner of a triangle in normalized device coordinates.
type Vertex struct {
	Pos      [2]float32
	TexCoord [2]float32
	Color    [4]float32
}

// PutVertex encodes v into the first VertexSize bytes of dst.
// It panics if dst is shorter than VertexSize.
func PutVertex(dst []byte, v Vertex) {
	_ = dst[VertexSize-1]
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v.Pos[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v.Pos[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v.TexCoord[0]))
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(v.TexCoord[1]))
	binary.LittleEndian.PutUint32(dst[16:], math.Float32bits(v.Color[0]))
	binary.LittleEndian.PutUint32(dst[20:], math.Float32bits(v.Color[1]))
	binary.LittleEndian.PutUint32(dst[24:], math.Float32bits(v.Color[2]))
	binary.LittleEndian.PutUint32(dst[28:], math.Float32bits(v.Color[3]))
}

// ReadVertex decodes a vertex written by PutVertex.
func ReadVertex(src []byte) Vertex {
	_ = src[VertexSize-1]
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
	}
	return Vertex{
		Pos:      [2]float32{f(0), f(4)},
		TexCoord: [2]float32{f(8), f(12)},
		Color:    [4]float32{f(16), f(20), f(24), f(28)},
	}
}

// PutIndex encodes i into the first IndexSize bytes of dst.
func PutIndex(dst []byte, i uint32) {
	binary.LittleEndian.PutUint32(dst, i)
}
