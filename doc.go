// Package imdraw is an immediate-mode 2D primitive renderer built on
// gogpu/wgpu.
//
// # Overview
//
// Each frame the caller fills a [PrimitiveList] with filled rectangles,
// textured quads and bitmap text. The list groups consecutive emissions that
// share a texture into one [Command]. A renderer from the render package then
// packs the list into a staging buffer, copies it to the GPU and issues one
// indexed draw per command.
//
// # Quick Start
//
//	r, err := render.New(device, queue)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	atlas := font.MustLoad(r)
//
//	list := imdraw.NewPrimitiveList(imdraw.Size{W: 800, H: 600})
//	for running {
//	    list.Clear()
//	    list.SetPixelSpace(true)
//	    list.SetColor(imdraw.White)
//	    list.FillRect(imdraw.R(120, 120, 360, 360))
//	    list.DrawText(atlas, imdraw.Pt(130, 130), "Hello")
//	    if _, err := r.Render(ctx, list, out); errors.Is(err, render.ErrOutputStale) {
//	        r.Resize(ctx, out, w, h)
//	    }
//	}
//
// # Coordinates
//
// Vertices are stored in normalized device coordinates. With pixel space
// enabled, positions are converted using the list's viewport: the origin is
// the top-left corner and Y grows downward. See [ToNDC].
//
// # Textures
//
// A [Texture] is a small value handle into the renderer's registry. Lists
// compare handles by ID and never own the textures they reference.
// [NoTexture] draws with a 1x1 white texture, so colored fills and textured
// quads go through the same pipeline.
//
// # Logging
//
// imdraw is silent by default. Use [SetLogger] to receive diagnostics such
// as staging buffer overflow warnings.
package imdraw
