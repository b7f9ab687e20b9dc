// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render submits imdraw primitive lists to the GPU through the
// gogpu/wgpu HAL.
//
// # Frames in flight
//
// The Renderer owns Config.FramesInFlight staging buffers and one GPU
// vertex/index buffer. Each frame:
//
//  1. waits until the slot's previous submission has completed,
//  2. maps the slot's staging buffer and serializes the list into it,
//  3. copies the staging bytes to the GPU buffer and records one indexed
//     draw per command, clearing to Config.ClearColor,
//  4. submits, remembers the submission index in the slot and presents.
//
// While the GPU executes frame N, frame N+1 is written into the other slot.
//
// # Quick start
//
//	dev, err := render.Open(noop.API{})
//	r, err := render.NewFromProvider(dev)
//	defer r.Close()
//
//	device, queue, err := render.HalDevices(dev)
//	out, err := render.NewTextureOutput(device, queue, r.Config().Format, 800, 600)
//	list := imdraw.NewPrimitiveList(out.Size())
//	list.FillRect(imdraw.R(-0.5, -0.5, 0.5, 0.5))
//	stats, err := r.Render(ctx, list, out)
//
// # Overflow
//
// A list larger than Config.StagingSize is truncated: whole vertices first,
// then whole triangles that only reference written vertices. The frame is
// still drawn and a "staging overflow" warning is logged.
//
// # Outputs
//
// SurfaceOutput renders to a window surface; outdated or lost surfaces
// surface as ErrOutputStale and the caller reconfigures. TextureOutput
// renders offscreen and supports ReadPixels.
package render
