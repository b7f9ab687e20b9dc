package main

import (
	"context"
	"errors"
	"log"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/font"
	"github.com/gogpu/imdraw/internal/demo"
	"github.com/gogpu/imdraw/render"
)

// windowApp draws the scene into a host window. Mouse drags move the
// window edges, Ctrl snaps them to the grid.
type windowApp struct {
	ctx     context.Context
	scene   *demo.Scene
	resizes *render.PendingResize
	reloads <-chan demo.SceneConfig
	rcfg    demo.RendererConfig
	redraw  func()

	renderer *render.Renderer
	output   *render.HostOutput
	atlas    *font.Atlas
	list     *imdraw.PrimitiveList
	frame    int
}

// newWindowApp binds the scene to the host's input events.
func newWindowApp(ctx context.Context, cfg demo.SceneConfig, viewport imdraw.Size, events gpucontext.EventSource, reloads <-chan demo.SceneConfig) *windowApp {
	w := &windowApp{
		ctx:     ctx,
		scene:   demo.NewScene(viewport),
		reloads: reloads,
		rcfg:    cfg.Renderer,
		redraw:  func() {},
	}
	cfg.Apply(w.scene)
	demo.Bind(events, w.scene.Window)
	w.resizes = render.BindResize(events)
	return w
}

// runWindow opens a gogpu window and runs the interactive demo until the
// window closes or ctx is done.
func runWindow(ctx context.Context, cfg demo.SceneConfig, width, height int, reloads <-chan demo.SceneConfig) error {
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("imdraw demo").
		WithSize(width, height))

	w := newWindowApp(ctx, cfg, imdraw.Size{W: uint32(width), H: uint32(height)}, app.EventSource(), reloads)
	w.redraw = app.RequestRedraw

	app.OnDraw(func(dc *gogpu.Context) {
		if ctx.Err() != nil {
			app.Quit()
			return
		}
		sw, sh := dc.SurfaceSize()
		viewport := imdraw.Size{W: uint32(dc.Width()), H: uint32(dc.Height())}
		if w.renderer == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			r, err := render.NewFromProvider(provider, w.rcfg.Options()...)
			if err != nil {
				log.Fatalf("Failed to create renderer: %v", err)
			}
			if err := w.attach(r, sw, sh, viewport); err != nil {
				_ = r.Close()
				log.Fatalf("Failed to load font: %v", err)
			}
			log.Printf("Backend: %s, surface %dx%d %v", dc.Backend(), sw, sh, r.Config().Format)
		}

		var view hal.TextureView
		if sv := dc.SurfaceView(); sv != nil {
			view = sv.HalTextureView()
		}
		w.step(viewport, view, sw, sh)
	})
	app.OnClose(w.close)
	return app.Run()
}

// attach takes over r and prepares the per-frame state.
func (w *windowApp) attach(r *render.Renderer, sw, sh uint32, viewport imdraw.Size) error {
	atlas, err := font.LoadDefault(r)
	if err != nil {
		return err
	}
	w.renderer = r
	w.atlas = atlas
	w.output = render.NewHostOutput(r.Config().Format, sw, sh)
	w.list = imdraw.NewPrimitiveList(viewport)
	return nil
}

// step draws one frame into the host's surface view and reports whether
// it was submitted. viewport is the window size in the units input events
// use; sw and sh are the surface size in pixels. A nil view means the host
// could not acquire its surface; the output is reconfigured and the next
// frame retries.
func (w *windowApp) step(viewport imdraw.Size, view hal.TextureView, sw, sh uint32) bool {
	ctx := w.ctx

	select {
	case c := <-w.reloads:
		c.Apply(w.scene)
		log.Printf("Reloaded scene")
	default:
	}

	if _, err := w.resizes.Apply(ctx, w.renderer, w.output); err != nil {
		log.Printf("Resize: %v", err)
	}
	if viewport.Empty() {
		return false
	}
	w.scene.Window.SetViewport(viewport)
	w.list.SetViewport(viewport)
	w.scene.Build(w.list, w.atlas)
	w.output.SetView(view, sw, sh)

	_, err := w.renderer.Render(ctx, w.list, w.output)
	switch {
	case err == nil:
		w.frame++
		return true
	case errors.Is(err, render.ErrOutputStale):
		if sw > 0 && sh > 0 {
			if err := w.renderer.Resize(ctx, w.output, sw, sh); err != nil {
				log.Printf("Frame %d: reconfigure: %v", w.frame, err)
			}
		}
		w.redraw()
	default:
		log.Printf("Frame %d: %v", w.frame, err)
	}
	return false
}

func (w *windowApp) close() {
	if w.renderer == nil {
		return
	}
	if err := w.renderer.Close(); err != nil {
		log.Printf("Renderer close: %v", err)
	}
	w.renderer = nil
}
