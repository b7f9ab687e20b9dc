// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render_test

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/render"
)

// ExampleRenderer_Render draws one frame on the noop backend. With a real
// backend (see hal/allbackends) the code is the same.
func ExampleRenderer_Render() {
	dev, err := render.Open(noop.API{})
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer dev.Close()

	r, err := render.NewFromProvider(dev, render.WithFormat(gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		fmt.Println("renderer:", err)
		return
	}
	defer r.Close()

	device, queue, _ := render.HalDevices(dev)
	out, err := render.NewTextureOutput(device, queue, gputypes.TextureFormatRGBA8Unorm, 320, 240)
	if err != nil {
		fmt.Println("output:", err)
		return
	}
	defer out.Destroy()

	list := imdraw.NewPrimitiveList(out.Size())
	list.SetPixelSpace(true)
	list.SetColor(imdraw.RGB(1, 1, 1))
	list.FillRect(imdraw.R(10, 10, 110, 60))

	stats, err := r.Render(context.Background(), list, out)
	if err != nil {
		fmt.Println("render:", err)
		return
	}
	fmt.Printf("draws=%d vertices=%d indices=%d\n", stats.DrawCalls, stats.Vertices, stats.Indices)
	// Output: draws=1 vertices=4 indices=6
}

// ExamplePlanDraws shows how commands map to draw calls when the staging
// buffer held only part of the index data.
func ExamplePlanDraws() {
	a := imdraw.Texture{ID: 1, Width: 8, Height: 8}
	b := imdraw.Texture{ID: 2, Width: 8, Height: 8}
	cmds := []imdraw.Command{
		{Texture: a, IndexOffset: 0, IndexCount: 12},
		{Texture: b, IndexOffset: 12, IndexCount: 12},
	}
	for _, d := range render.PlanDraws(cmds, 18) {
		fmt.Printf("texture %d: first=%d count=%d\n", d.Texture.ID, d.First, d.Count)
	}
	// Output:
	// texture 1: first=0 count=12
	// texture 2: first=12 count=6
}
