// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdraw"
)

// Output is where a frame is drawn.
//
// A frame calls Acquire once, records into the returned view, then calls
// either Present after submission or Discard when the frame is dropped.
type Output interface {
	// Acquire returns the view to render into. Errors wrapping
	// ErrOutputStale mean the output must be reconfigured.
	Acquire() (hal.TextureView, error)

	// Present shows the acquired image.
	Present(queue hal.Queue) error

	// Discard releases the acquired image without presenting it.
	Discard()

	// Configure resizes the output.
	Configure(width, height uint32) error

	// Size returns the configured size in pixels.
	Size() imdraw.Size

	// Format returns the color format of the views Acquire returns.
	Format() gputypes.TextureFormat
}

// SurfaceOutput renders into a window surface.
type SurfaceOutput struct {
	device  hal.Device
	surface hal.Surface
	format  gputypes.TextureFormat
	size    imdraw.Size

	current hal.SurfaceTexture
	view    hal.TextureView
}

var _ Output = (*SurfaceOutput)(nil)

// NewSurfaceOutput configures surface at the given size.
func NewSurfaceOutput(device hal.Device, surface hal.Surface, format gputypes.TextureFormat, width, height uint32) (*SurfaceOutput, error) {
	o := &SurfaceOutput{device: device, surface: surface, format: format}
	if err := o.Configure(width, height); err != nil {
		return nil, err
	}
	return o, nil
}

// Configure reconfigures the surface with FIFO presentation and opaque alpha.
func (o *SurfaceOutput) Configure(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: surface %dx%d", ErrZeroSize, width, height)
	}
	o.Discard()
	err := o.surface.Configure(o.device, &hal.SurfaceConfiguration{
		Width:       width,
		Height:      height,
		Format:      o.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	o.size = imdraw.Size{W: width, H: height}
	imdraw.Logger().Debug("surface configured", "width", width, "height", height)
	return nil
}

// Acquire gets the next surface texture.
func (o *SurfaceOutput) Acquire() (hal.TextureView, error) {
	acquired, err := o.surface.AcquireTexture(nil)
	if err != nil {
		return nil, surfaceError("acquire surface texture", err)
	}
	if acquired.Suboptimal {
		imdraw.Logger().Debug("surface texture is suboptimal")
	}
	view, err := o.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:         "imdraw_surface_view",
		Format:        o.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		o.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("create surface view: %w", err)
	}
	o.current = acquired.Texture
	o.view = view
	return view, nil
}

// Present queues the acquired texture for display.
func (o *SurfaceOutput) Present(queue hal.Queue) error {
	if o.current == nil {
		return nil
	}
	err := queue.Present(o.surface, o.current, nil)
	o.releaseView()
	o.current = nil
	if err != nil {
		return surfaceError("present", err)
	}
	return nil
}

// Discard drops the acquired texture.
func (o *SurfaceOutput) Discard() {
	if o.current == nil {
		return
	}
	o.releaseView()
	o.surface.DiscardTexture(o.current)
	o.current = nil
}

// Size returns the configured surface size.
func (o *SurfaceOutput) Size() imdraw.Size { return o.size }

// Format returns the surface format.
func (o *SurfaceOutput) Format() gputypes.TextureFormat { return o.format }

// Destroy unconfigures the surface. The surface itself belongs to the caller.
func (o *SurfaceOutput) Destroy() {
	o.Discard()
	o.surface.Unconfigure(o.device)
}

func (o *SurfaceOutput) releaseView() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
}

func surfaceError(op string, err error) error {
	if errors.Is(err, hal.ErrSurfaceOutdated) || errors.Is(err, hal.ErrSurfaceLost) {
		return fmt.Errorf("%s: %w: %w", op, ErrOutputStale, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// copyRowAlignment is the row pitch alignment of texture to buffer copies.
const copyRowAlignment = 256

// TextureOutput renders into an offscreen texture that can be read back.
type TextureOutput struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	size   imdraw.Size

	tex  hal.Texture
	view hal.TextureView

	// FenceTimeout bounds ReadPixels' wait for the GPU.
	FenceTimeout time.Duration
}

var _ Output = (*TextureOutput)(nil)

// NewTextureOutput creates an offscreen output. Only RGBA8Unorm and
// BGRA8Unorm formats can be read back.
func NewTextureOutput(device hal.Device, queue hal.Queue, format gputypes.TextureFormat, width, height uint32) (*TextureOutput, error) {
	o := &TextureOutput{
		device:       device,
		queue:        queue,
		format:       format,
		FenceTimeout: DefaultConfig().FenceTimeout,
	}
	if err := o.Configure(width, height); err != nil {
		return nil, err
	}
	return o, nil
}

// Configure recreates the texture at the given size.
func (o *TextureOutput) Configure(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: texture output %dx%d", ErrZeroSize, width, height)
	}
	o.Destroy()

	tex, err := o.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "imdraw_output",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        o.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create output texture: %w", err)
	}
	view, err := o.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "imdraw_output_view",
		Format:        o.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		o.device.DestroyTexture(tex)
		return fmt.Errorf("create output view: %w", err)
	}
	o.tex, o.view = tex, view
	o.size = imdraw.Size{W: width, H: height}
	return nil
}

// Acquire returns the output view.
func (o *TextureOutput) Acquire() (hal.TextureView, error) {
	if o.view == nil {
		return nil, fmt.Errorf("%w: texture output destroyed", ErrOutputStale)
	}
	return o.view, nil
}

// Present is a no-op; the texture keeps the frame until the next one.
func (o *TextureOutput) Present(hal.Queue) error { return nil }

// Discard is a no-op.
func (o *TextureOutput) Discard() {}

// Size returns the texture size.
func (o *TextureOutput) Size() imdraw.Size { return o.size }

// Format returns the texture format.
func (o *TextureOutput) Format() gputypes.TextureFormat { return o.format }

// Destroy releases the texture.
func (o *TextureOutput) Destroy() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.tex != nil {
		o.device.DestroyTexture(o.tex)
		o.tex = nil
	}
}

// ReadPixels copies the texture into an image after all submitted work
// has completed.
func (o *TextureOutput) ReadPixels(ctx context.Context) (*image.RGBA, error) {
	if o.tex == nil {
		return nil, fmt.Errorf("%w: texture output destroyed", ErrOutputStale)
	}
	if o.format != gputypes.TextureFormatRGBA8Unorm && o.format != gputypes.TextureFormatBGRA8Unorm {
		return nil, fmt.Errorf("render: cannot read back format %v", o.format)
	}

	w, h := o.size.W, o.size.H
	rowPitch := alignUp(4*w, copyRowAlignment)
	size := uint64(rowPitch) * uint64(h)

	buf, err := o.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "imdraw_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}
	defer o.device.DestroyBuffer(buf)

	encoder, err := o.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "imdraw_readback"})
	if err != nil {
		return nil, fmt.Errorf("create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("imdraw_readback"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin readback encoding: %w", err)
	}
	encoder.CopyTextureToBuffer(o.tex, buf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: rowPitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end readback encoding: %w", err)
	}
	defer o.device.FreeCommandBuffer(cmdBuf)

	token, err := o.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("submit readback: %w", err)
	}
	if err := waitCompleted(ctx, o.queue, token, o.FenceTimeout, DefaultConfig().PollInterval); err != nil {
		return nil, err
	}

	mapping, err := o.device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map readback buffer: %w", err)
	}
	defer func() { _ = o.device.UnmapBuffer(buf) }()
	src := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := uint32(0); y < h; y++ {
		row := src[uint64(y)*uint64(rowPitch):][:4*w]
		copy(img.Pix[int(y)*img.Stride:], row)
	}
	if o.format == gputypes.TextureFormatBGRA8Unorm {
		swapRedBlue(img.Pix)
	}
	return img, nil
}

// HostOutput renders into a view owned by a host framework such as gogpu.
// The host acquires and presents the surface; the frame loop hands the
// current view over with SetView before each frame.
type HostOutput struct {
	format gputypes.TextureFormat
	size   imdraw.Size
	view   hal.TextureView
}

var _ Output = (*HostOutput)(nil)

// NewHostOutput creates an output for host views of the given format.
func NewHostOutput(format gputypes.TextureFormat, width, height uint32) *HostOutput {
	return &HostOutput{format: format, size: imdraw.Size{W: width, H: height}}
}

// SetView sets the view the next frame renders into. A nil view means the
// host has no surface image this frame, and Acquire reports the output as
// stale.
func (o *HostOutput) SetView(view hal.TextureView, width, height uint32) {
	o.view = view
	if width > 0 && height > 0 {
		o.size = imdraw.Size{W: width, H: height}
	}
}

// Acquire returns the view set by SetView. Each view is used once.
func (o *HostOutput) Acquire() (hal.TextureView, error) {
	if o.view == nil {
		return nil, fmt.Errorf("%w: host has no surface view", ErrOutputStale)
	}
	v := o.view
	o.view = nil
	return v, nil
}

// Present is a no-op; the host presents.
func (o *HostOutput) Present(hal.Queue) error { return nil }

// Discard is a no-op; the host owns the view.
func (o *HostOutput) Discard() {}

// Configure records the new size. The host reconfigures its surface.
func (o *HostOutput) Configure(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrZeroSize
	}
	o.size = imdraw.Size{W: width, H: height}
	return nil
}

// Size returns the last known surface size.
func (o *HostOutput) Size() imdraw.Size { return o.size }

// Format returns the host surface format.
func (o *HostOutput) Format() gputypes.TextureFormat { return o.format }

func alignUp(x, a uint32) uint32 {
	return (x + a - 1) / a * a
}

func swapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
