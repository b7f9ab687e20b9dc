package demo

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/gogpu/imdraw"
)

const (
	// WindowPadding is the width of the draggable border band.
	WindowPadding = 8

	// GridStep is the snap grid used while Ctrl is held.
	GridStep = 8
)

// Edge is a bit mask of window edges being dragged.
type Edge uint8

// Window edges. Bit i selects corner coordinate i of the bounds:
// X0, Y0, X1, Y1.
const (
	EdgeLeft Edge = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

type drag struct {
	x, y float32
	mask Edge
}

// Window is a rectangle that can be moved or resized by dragging its
// border. Pressing inside the border band grabs the nearest edges; grabbing
// a corner drags two edges, and no interior press grabs anything. Moves
// apply the pointer delta to the grabbed edges relative to the bounds at
// press time; release commits.
//
// Window is safe for use from the event goroutine and the frame loop.
type Window struct {
	mu        sync.Mutex
	bounds    imdraw.Rect
	committed imdraw.Rect
	viewport  imdraw.Size
	drag      *drag
	snap      bool
}

// NewWindow creates a window with the given pixel bounds.
func NewWindow(bounds imdraw.Rect, viewport imdraw.Size) *Window {
	return &Window{bounds: bounds, committed: bounds, viewport: viewport}
}

// Bounds returns the current pixel bounds.
func (w *Window) Bounds() imdraw.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

// SetBounds replaces the bounds and cancels any drag.
func (w *Window) SetBounds(r imdraw.Rect) {
	w.mu.Lock()
	w.bounds, w.committed, w.drag = r, r, nil
	w.mu.Unlock()
}

// SetViewport sets the area the window is clamped to.
func (w *Window) SetViewport(s imdraw.Size) {
	w.mu.Lock()
	w.viewport = s
	w.mu.Unlock()
}

// SetSnap enables snapping grabbed edges to GridStep.
func (w *Window) SetSnap(on bool) {
	w.mu.Lock()
	w.snap = on
	w.mu.Unlock()
}

// Dragging reports whether a drag is in progress.
func (w *Window) Dragging() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.drag != nil
}

// Press starts a drag if (x, y) lies in the border band and returns the
// grabbed edges.
func (w *Window) Press(x, y float32) Edge {
	w.mu.Lock()
	defer w.mu.Unlock()

	mask := hitEdges(w.bounds, x, y)
	if mask != 0 {
		w.drag = &drag{x: x, y: y, mask: mask}
	}
	return mask
}

// Move updates the grabbed edges while dragging.
func (w *Window) Move(x, y float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.drag != nil {
		w.apply(x, y)
	}
}

// Release applies the final position and ends the drag.
func (w *Window) Release(x, y float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.drag == nil {
		return
	}
	w.apply(x, y)
	w.committed = w.bounds
	w.drag = nil
}

func (w *Window) apply(x, y float32) {
	delta := [2]float32{x - w.drag.x, y - w.drag.y}
	from := rectArray(w.committed)
	to := rectArray(w.bounds)
	for i := range 4 {
		if w.drag.mask&(1<<i) == 0 {
			continue
		}
		to[i] = from[i] + delta[i&1]
		if w.snap {
			to[i] = snapToGrid(to[i])
		}
	}
	to[0] = max(to[0], 0)
	to[1] = max(to[1], 0)
	if !w.viewport.Empty() {
		to[2] = min(to[2], float32(w.viewport.W))
		to[3] = min(to[3], float32(w.viewport.H))
	}
	w.bounds = imdraw.R(to[0], to[1], to[2], to[3])
}

// hitEdges returns the edges whose border band contains (x, y). The left
// band wins over the right and the top over the bottom on narrow windows.
// Points outside r hit nothing.
func hitEdges(r imdraw.Rect, x, y float32) Edge {
	if x < r.X0 || x > r.X1 || y < r.Y0 || y > r.Y1 {
		return 0
	}
	var mask Edge
	switch {
	case r.X0 <= x && x <= r.X0+WindowPadding:
		mask |= EdgeLeft
	case r.X1-WindowPadding <= x && x <= r.X1:
		mask |= EdgeRight
	}
	switch {
	case r.Y0 <= y && y <= r.Y0+WindowPadding:
		mask |= EdgeTop
	case r.Y1-WindowPadding <= y && y <= r.Y1:
		mask |= EdgeBottom
	}
	return mask
}

func snapToGrid(v float32) float32 {
	return math32.Round(v/GridStep) * GridStep
}

func rectArray(r imdraw.Rect) [4]float32 {
	return [4]float32{r.X0, r.Y0, r.X1, r.Y1}
}
