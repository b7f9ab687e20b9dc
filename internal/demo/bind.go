package demo

import (
	"github.com/gogpu/gpucontext"
)

// Bind drives w from a window's input events: left-button drags move or
// resize it and holding Ctrl snaps to the grid. Resize events are left to
// render.BindResize; the frame loop passes the new size to SetViewport.
func Bind(src gpucontext.EventSource, w *Window) {
	src.OnMousePress(func(button gpucontext.MouseButton, x, y float64) {
		if button == gpucontext.MouseButtonLeft {
			w.Press(float32(x), float32(y))
		}
	})
	src.OnMouseMove(func(x, y float64) {
		w.Move(float32(x), float32(y))
	})
	src.OnMouseRelease(func(button gpucontext.MouseButton, x, y float64) {
		if button == gpucontext.MouseButtonLeft {
			w.Release(float32(x), float32(y))
		}
	})
	src.OnKeyPress(func(key gpucontext.Key, mods gpucontext.Modifiers) {
		if isControl(key) || mods.HasControl() {
			w.SetSnap(true)
		}
	})
	src.OnKeyRelease(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if isControl(key) {
			w.SetSnap(false)
		}
	})
}

func isControl(k gpucontext.Key) bool {
	return k == gpucontext.KeyLeftControl || k == gpucontext.KeyRightControl
}
