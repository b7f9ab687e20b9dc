// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/imdraw"
)

// Layout describes what Serialize wrote into a staging buffer.
type Layout struct {
	// VertexOffset is the byte offset of the first vertex (always 0).
	VertexOffset uint64
	// IndexOffset is the byte offset of the first index.
	IndexOffset uint64
	// End is one past the last written byte; the copy to the GPU buffer
	// covers [0, End).
	End uint64

	// Vertices and Indices are the written element counts.
	Vertices int
	Indices  int

	// Clamped reports that the list did not fit and was truncated.
	Clamped bool
}

// IndexCount returns the number of drawable indices.
func (l Layout) IndexCount() uint32 { return uint32(l.Indices) }

// Serialize packs a primitive list into dst: vertices first, indices
// directly after them. Only whole elements are written. When the list does
// not fit, vertices win and the index run is cut back to whole triangles
// that reference written vertices.
func Serialize(dst []byte, list *imdraw.PrimitiveList) Layout {
	verts := list.Vertices()
	idx := list.Indices()
	capacity := uint64(len(dst))

	var lay Layout
	nv := fit(0, len(verts), imdraw.VertexSize, capacity)
	lay.IndexOffset = uint64(nv) * imdraw.VertexSize
	ni := fit(lay.IndexOffset, len(idx), imdraw.IndexSize, capacity)
	lay.Clamped = nv < len(verts) || ni < len(idx)

	if nv < len(verts) {
		ni = wholeTriangles(idx[:ni], uint32(nv))
	}
	ni -= ni % 3

	for i := 0; i < nv; i++ {
		imdraw.PutVertex(dst[i*imdraw.VertexSize:], verts[i])
	}
	for i := 0; i < ni; i++ {
		imdraw.PutIndex(dst[lay.IndexOffset+uint64(i)*imdraw.IndexSize:], idx[i])
	}

	lay.Vertices = nv
	lay.Indices = ni
	lay.End = lay.IndexOffset + uint64(ni)*imdraw.IndexSize

	if lay.Clamped {
		imdraw.Logger().Warn("staging overflow",
			"capacity", capacity,
			"vertices", nv, "vertices_total", len(verts),
			"indices", ni, "indices_total", len(idx))
	}
	return lay
}

// fit returns how many elements of size bytes fit after off.
func fit(off uint64, n, size int, capacity uint64) int {
	if off >= capacity {
		return 0
	}
	room := (capacity - off) / uint64(size)
	if room < uint64(n) {
		return int(room)
	}
	return n
}

// wholeTriangles returns the length of the longest prefix of idx made of
// whole triangles whose indices are all below limit.
func wholeTriangles(idx []uint32, limit uint32) int {
	n := 0
	for n+3 <= len(idx) {
		if idx[n] >= limit || idx[n+1] >= limit || idx[n+2] >= limit {
			break
		}
		n += 3
	}
	return n
}
