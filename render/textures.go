// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdraw"
)

type textureEntry struct {
	handle imdraw.Texture
	tex    hal.Texture
	view   hal.TextureView
	group  hal.BindGroup
}

// textureRegistry owns every texture a primitive list can reference.
// Handles start at ID 1; ID 0 is imdraw.NoTexture and resolves to the
// white fallback.
type textureRegistry struct {
	device hal.Device
	queue  hal.Queue
	layout hal.BindGroupLayout
	sample hal.Sampler
	label  func(string) string

	nextID  uint32
	entries map[uint32]*textureEntry
	white   *textureEntry
}

func newTextureRegistry(device hal.Device, queue hal.Queue, p *primitivePipeline, cfg Config) (*textureRegistry, error) {
	r := &textureRegistry{
		device:  device,
		queue:   queue,
		layout:  p.bindLayout,
		sample:  p.sampler,
		label:   cfg.label,
		nextID:  1,
		entries: make(map[uint32]*textureEntry),
	}
	white, err := r.newEntry("white", 1, 1, []byte{255, 255, 255, 255})
	if err != nil {
		return nil, fmt.Errorf("create white texture: %w", err)
	}
	r.white = white
	return r, nil
}

// create uploads an RGBA8 texture and returns its handle.
func (r *textureRegistry) create(label string, w, h uint32, rgba []byte) (imdraw.Texture, error) {
	e, err := r.newEntry(label, w, h, rgba)
	if err != nil {
		return imdraw.Texture{}, err
	}
	e.handle.ID = r.nextID
	r.nextID++
	r.entries[e.handle.ID] = e
	return e.handle, nil
}

// update replaces the pixels of a registered texture.
func (r *textureRegistry) update(t imdraw.Texture, rgba []byte) error {
	e, ok := r.entries[t.ID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownTexture, t.ID)
	}
	return r.write(e, rgba)
}

// remove unregisters a texture and returns it so the caller can destroy it
// once the GPU no longer reads it.
func (r *textureRegistry) remove(t imdraw.Texture) (*textureEntry, error) {
	e, ok := r.entries[t.ID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownTexture, t.ID)
	}
	delete(r.entries, t.ID)
	return e, nil
}

// bindGroup resolves a handle to its bind group. Unknown and released
// handles draw with the white fallback.
func (r *textureRegistry) bindGroup(t imdraw.Texture) hal.BindGroup {
	if e, ok := r.entries[t.ID]; ok {
		return e.group
	}
	if t.Valid() {
		imdraw.Logger().Debug("draw with unknown texture", "id", t.ID)
	}
	return r.white.group
}

func (r *textureRegistry) len() int { return len(r.entries) }

func (r *textureRegistry) newEntry(label string, w, h uint32, rgba []byte) (*textureEntry, error) {
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: texture %q is %dx%d", ErrZeroSize, label, w, h)
	}
	if uint64(len(rgba)) != 4*uint64(w)*uint64(h) {
		return nil, fmt.Errorf("%w: texture %q %dx%d needs %d bytes, got %d",
			ErrTextureData, label, w, h, 4*w*h, len(rgba))
	}

	e := &textureEntry{handle: imdraw.Texture{Width: w, Height: h}}

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         r.label(label),
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}
	e.tex = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         r.label(label + "_view"),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyEntry(e)
		return nil, fmt.Errorf("create texture view %q: %w", label, err)
	}
	e.view = view

	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  r.label(label + "_bind_group"),
		Layout: r.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.sample.NativeHandle()}},
		},
	})
	if err != nil {
		r.destroyEntry(e)
		return nil, fmt.Errorf("create bind group %q: %w", label, err)
	}
	e.group = group

	if err := r.write(e, rgba); err != nil {
		r.destroyEntry(e)
		return nil, err
	}
	return e, nil
}

func (r *textureRegistry) write(e *textureEntry, rgba []byte) error {
	w, h := e.handle.Width, e.handle.Height
	if uint64(len(rgba)) != 4*uint64(w)*uint64(h) {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrTextureData, w, h, 4*w*h, len(rgba))
	}
	err := r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: e.tex, Aspect: gputypes.TextureAspectAll},
		rgba,
		&hal.ImageDataLayout{BytesPerRow: 4 * w, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture: %w", err)
	}
	return nil
}

// destroyEntry releases an entry's GPU objects in reverse creation order.
func (r *textureRegistry) destroyEntry(e *textureEntry) {
	if e.group != nil {
		r.device.DestroyBindGroup(e.group)
		e.group = nil
	}
	if e.view != nil {
		r.device.DestroyTextureView(e.view)
		e.view = nil
	}
	if e.tex != nil {
		r.device.DestroyTexture(e.tex)
		e.tex = nil
	}
}

func (r *textureRegistry) destroy() {
	for id, e := range r.entries {
		r.destroyEntry(e)
		delete(r.entries, id)
	}
	if r.white != nil {
		r.destroyEntry(r.white)
		r.white = nil
	}
}
