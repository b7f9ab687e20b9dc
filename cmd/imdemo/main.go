// Command imdemo renders the imdraw demo scene.
//
// By default the scene is rendered offscreen and the last frame is written
// as a PNG. The window in the scene is dragged a little every frame, so
// rendering several frames exercises the staging ring. With -watch, the
// scene file is reloaded on change and a new PNG is written after every
// reload.
//
// With -window the scene is drawn into a gogpu window instead: drag the
// window edges with the left mouse button and hold Ctrl to snap them to an
// 8 pixel grid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/font"
	"github.com/gogpu/imdraw/internal/demo"
	"github.com/gogpu/imdraw/render"
)

// outputFormat is the offscreen texture format; ReadPixels returns it as is.
const outputFormat = gputypes.TextureFormatRGBA8Unorm

func main() {
	var (
		configPath = flag.String("config", "", "scene file (.yaml, .yml or .toml)")
		frames     = flag.Int("frames", 4, "number of frames to render")
		width      = flag.Int("width", 800, "output width")
		height     = flag.Int("height", 600, "output height")
		output     = flag.String("out", "imdemo.png", "output PNG file")
		backend    = flag.String("backend", "auto", "HAL backend: auto, vulkan, metal, dx12, gl, software or noop")
		watch      = flag.Bool("watch", false, "re-render whenever the scene file changes")
		windowed   = flag.Bool("window", false, "open an interactive window instead of rendering offscreen")
		verbose    = flag.Bool("v", false, "log renderer debug output")
	)
	flag.Parse()

	if *verbose {
		imdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if *width <= 0 || *height <= 0 {
		log.Fatalf("Invalid size %dx%d", *width, *height)
	}
	if *watch && *configPath == "" {
		log.Fatalf("-watch needs -config")
	}

	cfg := demo.DefaultSceneConfig()
	if *configPath != "" {
		var err error
		if cfg, err = demo.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reloads := make(chan demo.SceneConfig, 1)
	if *watch {
		go watchConfig(ctx, stop, *configPath, reloads)
	}

	if *windowed {
		if err := runWindow(ctx, cfg, *width, *height, reloads); err != nil {
			log.Fatalf("Window failed: %v", err)
		}
		return
	}

	b, err := selectBackend(*backend)
	if err != nil {
		log.Fatalf("Failed to select backend: %v", err)
	}
	dev, err := render.Open(b)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Close()
	log.Printf("Using %s (%v)", dev.Info().Name, b.Variant())

	app, err := newApp(dev, cfg, uint32(*width), uint32(*height))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer app.close()

	if err := app.run(ctx, *frames); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	if err := app.save(ctx, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d, %d frames)", *output, *width, *height, *frames)

	if !*watch {
		return
	}
	log.Printf("Watching %s, press Ctrl+C to stop", *configPath)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-reloads:
			app.apply(c)
			if err := app.run(ctx, 1); err != nil {
				log.Fatalf("Render failed: %v", err)
			}
			if err := app.save(ctx, *output); err != nil {
				log.Fatalf("Failed to save: %v", err)
			}
			log.Printf("Reloaded scene, saved %s", *output)
		}
	}
}

// watchConfig forwards valid scene reloads to the frame loop until ctx is
// done. A failed watch stops the program.
func watchConfig(ctx context.Context, stop context.CancelFunc, path string, reloads chan<- demo.SceneConfig) {
	err := demo.Watch(ctx, path, func(c demo.SceneConfig, err error) {
		if err != nil {
			log.Printf("Ignoring scene change: %v", err)
			return
		}
		select {
		case reloads <- c:
		default:
			// The frame loop is busy; it will pick up the next change.
		}
	})
	if err != nil {
		log.Printf("Watch stopped: %v", err)
		stop()
	}
}

func selectBackend(name string) (hal.Backend, error) {
	variants := map[string]gputypes.Backend{
		"vulkan":   gputypes.BackendVulkan,
		"metal":    gputypes.BackendMetal,
		"dx12":     gputypes.BackendDX12,
		"gl":       gputypes.BackendGL,
		"software": gputypes.BackendEmpty,
	}
	switch name = strings.ToLower(name); name {
	case "auto", "":
		return hal.SelectBestBackend()
	case "noop":
		return noop.API{}, nil
	}
	variant, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	b, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("backend %q is not available on this platform", name)
	}
	return b, nil
}

// app is the single-threaded frame loop state.
type app struct {
	renderer *render.Renderer
	output   *render.TextureOutput
	atlas    *font.Atlas
	scene    *demo.Scene
	list     *imdraw.PrimitiveList
	frame    int
}

func newApp(dev *render.Device, cfg demo.SceneConfig, width, height uint32) (*app, error) {
	opts := append([]render.Option{render.WithFormat(outputFormat)}, cfg.Renderer.Options()...)
	r, err := render.NewFromProvider(dev, opts...)
	if err != nil {
		return nil, err
	}
	device, queue, err := render.HalDevices(dev)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	out, err := render.NewTextureOutput(device, queue, outputFormat, width, height)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	atlas, err := font.LoadDefault(r)
	if err != nil {
		out.Destroy()
		_ = r.Close()
		return nil, err
	}

	a := &app{
		renderer: r,
		output:   out,
		atlas:    atlas,
		scene:    demo.NewScene(out.Size()),
		list:     imdraw.NewPrimitiveList(out.Size()),
	}
	a.apply(cfg)
	return a, nil
}

func (a *app) apply(cfg demo.SceneConfig) {
	cfg.Apply(a.scene)
}

// run renders n frames, dragging the window's left edge right by four
// pixels per frame.
func (a *app) run(ctx context.Context, n int) error {
	bounds := a.scene.Window.Bounds()
	grab := imdraw.V2(bounds.X0+1, (bounds.Y0+bounds.Y1)/2)
	a.scene.Window.Press(grab.X, grab.Y)

	for i := 0; i < n; i++ {
		a.scene.Window.Move(grab.X+float32(4*i), grab.Y)
		if err := a.render(ctx); err != nil {
			a.scene.Window.Release(grab.X, grab.Y)
			return err
		}
	}
	a.scene.Window.Release(grab.X+float32(4*max(n-1, 0)), grab.Y)
	return nil
}

func (a *app) render(ctx context.Context) error {
	a.list.SetViewport(a.output.Size())
	a.scene.Build(a.list, a.atlas)

	for attempt := 0; ; attempt++ {
		stats, err := a.renderer.Render(ctx, a.list, a.output)
		switch {
		case err == nil:
			a.frame++
			if stats.Clamped {
				log.Printf("Frame %d was clamped to %d vertices", a.frame, stats.Vertices)
			}
			return nil
		case errors.Is(err, render.ErrOutputStale) && attempt == 0:
			size := a.output.Size()
			if err := a.renderer.Resize(ctx, a.output, size.W, size.H); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func (a *app) save(ctx context.Context, path string) error {
	if err := a.renderer.Wait(ctx); err != nil {
		return err
	}
	img, err := a.output.ReadPixels(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (a *app) close() {
	if err := a.renderer.Close(); err != nil {
		log.Printf("Renderer close: %v", err)
	}
	a.output.Destroy()
}
