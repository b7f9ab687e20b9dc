package main

import (
	"context"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/internal/demo"
	"github.com/gogpu/imdraw/render"
)

// hostEvents stands in for a window host's event source.
type hostEvents struct {
	gpucontext.NullEventSource
	press      func(gpucontext.MouseButton, float64, float64)
	release    func(gpucontext.MouseButton, float64, float64)
	move       func(float64, float64)
	keyPress   func(gpucontext.Key, gpucontext.Modifiers)
	keyRelease func(gpucontext.Key, gpucontext.Modifiers)
	resize     func(int, int)
}

func (h *hostEvents) OnMousePress(fn func(gpucontext.MouseButton, float64, float64)) {
	h.press = fn
}

func (h *hostEvents) OnMouseRelease(fn func(gpucontext.MouseButton, float64, float64)) {
	h.release = fn
}

func (h *hostEvents) OnMouseMove(fn func(float64, float64)) { h.move = fn }

func (h *hostEvents) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	h.keyPress = fn
}

func (h *hostEvents) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	h.keyRelease = fn
}

func (h *hostEvents) OnResize(fn func(int, int)) { h.resize = fn }

type windowFixture struct {
	app     *windowApp
	events  *hostEvents
	view    hal.TextureView
	reloads chan demo.SceneConfig
	redraws int
}

// newWindowFixture runs a windowApp on the noop backend. A texture output
// plays the host's surface.
func newWindowFixture(t *testing.T) *windowFixture {
	t.Helper()
	dev, err := render.Open(noop.API{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Close() })

	f := &windowFixture{events: &hostEvents{}, reloads: make(chan demo.SceneConfig, 1)}
	viewport := imdraw.Size{W: 800, H: 600}
	f.app = newWindowApp(context.Background(), demo.DefaultSceneConfig(), viewport, f.events, f.reloads)
	f.app.redraw = func() { f.redraws++ }

	r, err := render.NewFromProvider(dev)
	require.NoError(t, err)
	require.NoError(t, f.app.attach(r, 800, 600, viewport))
	t.Cleanup(f.app.close)

	device, queue, err := render.HalDevices(dev)
	require.NoError(t, err)
	surface, err := render.NewTextureOutput(device, queue, r.Config().Format, 800, 600)
	require.NoError(t, err)
	t.Cleanup(surface.Destroy)
	f.view, err = surface.Acquire()
	require.NoError(t, err)
	return f
}

func TestWindowStepDrawsFrames(t *testing.T) {
	f := newWindowFixture(t)
	for i := 0; i < 3; i++ {
		assert.True(t, f.app.step(imdraw.Size{W: 800, H: 600}, f.view, 800, 600), "frame %d", i)
	}
	assert.Equal(t, 3, f.app.frame)
	assert.NotEmpty(t, f.app.list.Commands())
}

func TestWindowDragFromInput(t *testing.T) {
	f := newWindowFixture(t)
	require.NotNil(t, f.events.press)
	require.NotNil(t, f.events.keyPress)

	f.events.keyPress(gpucontext.KeyLeftControl, gpucontext.ModControl)
	f.events.press(gpucontext.MouseButtonLeft, 122, 200)
	f.events.move(126.5, 200)
	require.True(t, f.app.step(imdraw.Size{W: 800, H: 600}, f.view, 800, 600))
	assert.Equal(t, float32(128), f.app.scene.Window.Bounds().X0, "snapped while Ctrl is held")

	f.events.keyRelease(gpucontext.KeyLeftControl, 0)
	f.events.release(gpucontext.MouseButtonLeft, 126.5, 200)
	assert.False(t, f.app.scene.Window.Dragging())
	assert.Equal(t, float32(124.5), f.app.scene.Window.Bounds().X0)
}

func TestWindowResizeClampsDrag(t *testing.T) {
	f := newWindowFixture(t)
	require.NotNil(t, f.events.resize)

	f.events.resize(640, 480)
	require.True(t, f.app.step(imdraw.Size{W: 640, H: 480}, f.view, 640, 480))
	assert.Equal(t, imdraw.Size{W: 640, H: 480}, f.app.output.Size())

	// The right edge cannot be dragged past the new viewport.
	f.events.press(gpucontext.MouseButtonLeft, 356, 200)
	f.events.move(700, 200)
	assert.Equal(t, float32(640), f.app.scene.Window.Bounds().X1)
}

func TestWindowStaleSurfaceRetries(t *testing.T) {
	f := newWindowFixture(t)

	assert.False(t, f.app.step(imdraw.Size{W: 800, H: 600}, nil, 1024, 768))
	assert.Equal(t, 1, f.redraws, "a stale surface asks for another frame")
	assert.Equal(t, 0, f.app.frame)
	assert.Equal(t, imdraw.Size{W: 1024, H: 768}, f.app.output.Size())

	assert.True(t, f.app.step(imdraw.Size{W: 800, H: 600}, f.view, 1024, 768))
	assert.Equal(t, 1, f.app.frame)
}

func TestWindowMinimizedSkipsFrame(t *testing.T) {
	f := newWindowFixture(t)
	assert.False(t, f.app.step(imdraw.Size{}, f.view, 0, 0))
	assert.Equal(t, 0, f.app.frame)
	assert.Equal(t, 0, f.redraws)
}

func TestWindowReload(t *testing.T) {
	f := newWindowFixture(t)
	cfg := demo.DefaultSceneConfig()
	cfg.Caption = "reloaded"
	cfg.Window = [4]float32{10, 10, 100, 100}
	f.reloads <- cfg

	require.True(t, f.app.step(imdraw.Size{W: 800, H: 600}, f.view, 800, 600))
	assert.Equal(t, "reloaded", f.app.scene.Caption)
	assert.Equal(t, imdraw.R(10, 10, 100, 100), f.app.scene.Window.Bounds())
}
