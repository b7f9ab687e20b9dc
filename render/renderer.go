// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdraw"
)

var errFrameNotCurrent = errors.New("render: frame is not in progress")

// Stats describes one submitted frame.
type Stats struct {
	Slot      int
	Commands  int
	DrawCalls int
	Vertices  int
	Indices   int
	Clamped   bool
	Token     uint64
}

// DrawRange is one indexed draw derived from a command.
type DrawRange struct {
	Texture imdraw.Texture
	First   uint32
	Count   uint32
}

// PlanDraws turns commands into draws over the first written indices.
// Each command draws [min(written, off), min(written, off+count)); empty
// ranges are skipped.
func PlanDraws(cmds []imdraw.Command, written uint32) []DrawRange {
	draws := make([]DrawRange, 0, len(cmds))
	for _, c := range cmds {
		first := min(written, c.IndexOffset)
		end := min(written, c.End())
		if end <= first {
			continue
		}
		draws = append(draws, DrawRange{Texture: c.Texture, First: first, Count: end - first})
	}
	return draws
}

// Frame is a frame being recorded into one staging slot. It is valid from
// BeginFrame until SubmitFrame returns.
type Frame struct {
	slot       int
	data       []byte
	layout     Layout
	serialized bool
}

// Slot returns the staging slot index.
func (f *Frame) Slot() int { return f.slot }

// Layout returns the result of the last Serialize call.
func (f *Frame) Layout() Layout { return f.layout }

// Serialize writes list into the mapped staging buffer. It may be called
// more than once; the last call wins.
func (f *Frame) Serialize(list *imdraw.PrimitiveList) Layout {
	f.layout = Serialize(f.data, list)
	f.serialized = true
	return f.layout
}

// Renderer submits primitive lists to the GPU with a ring of staging
// buffers, so the CPU fills one slot while the GPU reads another.
//
// Renderer is not safe for concurrent use. Drive it from the frame loop.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	ring       *Ring
	staging    []hal.Buffer
	primitives hal.Buffer
	pipeline   *primitivePipeline
	textures   *textureRegistry

	frame  *Frame
	closed bool
}

// New creates a renderer on a HAL device. Creation errors are not
// recoverable; the device is unusable for drawing.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{device: device, queue: queue, cfg: cfg}
	if err := r.init(); err != nil {
		r.destroy()
		return nil, err
	}
	imdraw.Logger().Info("renderer created",
		"frames_in_flight", cfg.FramesInFlight,
		"staging_size", cfg.StagingSize,
		"format", cfg.Format)
	return r, nil
}

// NewFromProvider creates a renderer on a host's device. The host's
// surface format is used unless an option overrides it.
func NewFromProvider(h DeviceHandle, opts ...Option) (*Renderer, error) {
	device, queue, err := HalDevices(h)
	if err != nil {
		return nil, err
	}
	if f := h.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithFormat(f)}, opts...)
	}
	return New(device, queue, opts...)
}

func (r *Renderer) init() error {
	cfg := r.cfg
	r.ring = NewRing(cfg.FramesInFlight, r.queue, cfg.FenceTimeout, cfg.PollInterval)

	r.staging = make([]hal.Buffer, 0, cfg.FramesInFlight)
	for i := range cfg.FramesInFlight {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: cfg.label(fmt.Sprintf("staging_%d", i)),
			Size:  cfg.StagingSize,
			Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("create staging buffer %d: %w", i, err)
		}
		r.staging = append(r.staging, buf)
	}

	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: cfg.label("primitives"),
		Size:  cfg.StagingSize,
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageVertex | gputypes.BufferUsageIndex,
	})
	if err != nil {
		return fmt.Errorf("create primitive buffer: %w", err)
	}
	r.primitives = buf

	r.pipeline, err = newPrimitivePipeline(r.device, cfg)
	if err != nil {
		return err
	}
	r.textures, err = newTextureRegistry(r.device, r.queue, r.pipeline, cfg)
	return err
}

// Config returns the renderer settings.
func (r *Renderer) Config() Config { return r.cfg }

// Ring exposes the slot ring for inspection.
func (r *Renderer) Ring() *Ring { return r.ring }

// CreateTexture uploads an RGBA8 texture. It implements font.TextureUploader.
func (r *Renderer) CreateTexture(label string, width, height uint32, rgba []byte) (imdraw.Texture, error) {
	if r.closed {
		return imdraw.Texture{}, ErrClosed
	}
	t, err := r.textures.create(label, width, height, rgba)
	if err != nil {
		return imdraw.Texture{}, err
	}
	imdraw.Logger().Debug("texture created", "label", label, "id", t.ID, "width", width, "height", height)
	return t, nil
}

// UpdateTexture replaces a texture's pixels. The write is ordered before
// the next submission.
func (r *Renderer) UpdateTexture(t imdraw.Texture, rgba []byte) error {
	if r.closed {
		return ErrClosed
	}
	return r.textures.update(t, rgba)
}

// ReleaseTexture unregisters a texture. Lists that still reference it draw
// with the white fallback. GPU memory is freed as soon as the last
// submitted frame completes, or immediately when no frame is in flight.
func (r *Renderer) ReleaseTexture(t imdraw.Texture) error {
	if r.closed {
		return ErrClosed
	}
	e, err := r.textures.remove(t)
	if err != nil {
		return err
	}
	r.ring.DeferLatest(func() { r.textures.destroyEntry(e) })
	return nil
}

// BeginFrame waits for the next staging slot and maps it for writing.
func (r *Renderer) BeginFrame(ctx context.Context) (*Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.frame != nil {
		return nil, ErrSlotBusy
	}
	slot, err := r.ring.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	mapping, err := r.device.MapBuffer(r.staging[slot], 0, r.cfg.StagingSize)
	if err != nil {
		r.ring.Abort()
		return nil, fmt.Errorf("map staging buffer %d: %w", slot, err)
	}
	r.frame = &Frame{
		slot: slot,
		data: unsafe.Slice((*byte)(mapping.Ptr), r.cfg.StagingSize),
	}
	return r.frame, nil
}

// SubmitFrame records and submits a frame, then presents it.
//
// If the output cannot be acquired the frame is dropped, the slot is
// returned to idle and the error (wrapping ErrOutputStale for outdated or
// lost surfaces) is returned. A stale error from Present means the frame
// was submitted but not shown.
func (r *Renderer) SubmitFrame(f *Frame, list *imdraw.PrimitiveList, out Output) (Stats, error) {
	if r.closed {
		return Stats{}, ErrClosed
	}
	if f == nil || f != r.frame {
		return Stats{}, errFrameNotCurrent
	}
	if !f.serialized {
		f.Serialize(list)
	}
	lay := f.layout
	stats := Stats{
		Slot:     f.slot,
		Commands: len(list.Commands()),
		Vertices: lay.Vertices,
		Indices:  lay.Indices,
		Clamped:  lay.Clamped,
	}

	view, err := out.Acquire()
	if err != nil {
		r.abortFrame(f)
		return stats, err
	}

	if err := r.unmap(f); err != nil {
		out.Discard()
		r.abortFrame(f)
		return stats, err
	}

	cmdBuf, draws, err := r.record(f.slot, lay, list.Commands(), view)
	if err != nil {
		out.Discard()
		r.abortFrame(f)
		return stats, err
	}
	stats.DrawCalls = draws

	token, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		out.Discard()
		r.abortFrame(f)
		return stats, fmt.Errorf("submit frame: %w", err)
	}
	r.retire(cmdBuf)
	if err := r.ring.Commit(token); err != nil {
		return stats, err
	}
	r.frame = nil
	stats.Token = token

	if err := out.Present(r.queue); err != nil {
		return stats, err
	}
	return stats, nil
}

// Render draws one list: BeginFrame, Serialize, SubmitFrame.
func (r *Renderer) Render(ctx context.Context, list *imdraw.PrimitiveList, out Output) (Stats, error) {
	f, err := r.BeginFrame(ctx)
	if err != nil {
		return Stats{}, err
	}
	f.Serialize(list)
	return r.SubmitFrame(f, list, out)
}

// Resize waits for in-flight frames and reconfigures the output.
func (r *Renderer) Resize(ctx context.Context, out Output, width, height uint32) error {
	if r.closed {
		return ErrClosed
	}
	if r.frame != nil {
		return ErrSlotBusy
	}
	if err := r.ring.Drain(ctx); err != nil {
		return err
	}
	if err := out.Configure(width, height); err != nil {
		return err
	}
	imdraw.Logger().Debug("output resized", "width", width, "height", height)
	return nil
}

// Wait blocks until every submitted frame has completed.
func (r *Renderer) Wait(ctx context.Context) error {
	if r.closed {
		return ErrClosed
	}
	return r.ring.Drain(ctx)
}

// Close waits for the GPU and releases every resource. Close is idempotent.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	if r.frame != nil {
		r.abortFrame(r.frame)
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.FenceTimeout)
	defer cancel()
	err := r.ring.Drain(ctx)
	if err != nil {
		imdraw.Logger().Warn("close without draining", "error", err)
		_ = r.device.WaitIdle()
	}
	r.destroy()
	r.closed = true
	return err
}

func (r *Renderer) record(slot int, lay Layout, cmds []imdraw.Command, view hal.TextureView) (hal.CommandBuffer, int, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: r.cfg.label("frame")})
	if err != nil {
		return nil, 0, fmt.Errorf("create frame encoder: %w", err)
	}
	if err := encoder.BeginEncoding(r.cfg.label("frame")); err != nil {
		encoder.DiscardEncoding()
		return nil, 0, fmt.Errorf("begin frame encoding: %w", err)
	}

	if lay.End > 0 {
		encoder.CopyBufferToBuffer(r.staging[slot], r.primitives, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: lay.End},
		})
		encoder.TransitionBuffers([]hal.BufferBarrier{{
			Buffer: r.primitives,
			Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageCopyDst,
				NewUsage: gputypes.BufferUsageVertex | gputypes.BufferUsageIndex,
			},
		}})
	}

	c := r.cfg.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: r.cfg.label("primitives"),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}},
	})

	draws := PlanDraws(cmds, lay.IndexCount())
	if len(draws) > 0 {
		rp.SetPipeline(r.pipeline.pipeline)
		rp.SetVertexBuffer(0, r.primitives, lay.VertexOffset)
		rp.SetIndexBuffer(r.primitives, gputypes.IndexFormatUint32, lay.IndexOffset)
		for _, d := range draws {
			rp.SetBindGroup(0, r.textures.bindGroup(d.Texture), nil)
			rp.DrawIndexed(d.Count, 1, d.First, 0, 0)
		}
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, 0, fmt.Errorf("end frame encoding: %w", err)
	}
	return cmdBuf, len(draws), nil
}

// retire schedules the command buffer to be freed when the current slot's
// submission completes.
func (r *Renderer) retire(cmdBuf hal.CommandBuffer) {
	r.ring.Defer(func() { r.device.FreeCommandBuffer(cmdBuf) })
}

func (r *Renderer) unmap(f *Frame) error {
	if f.data == nil {
		return nil
	}
	f.data = nil
	if err := r.device.UnmapBuffer(r.staging[f.slot]); err != nil {
		return fmt.Errorf("unmap staging buffer %d: %w", f.slot, err)
	}
	return nil
}

func (r *Renderer) abortFrame(f *Frame) {
	_ = r.unmap(f)
	r.ring.Abort()
	r.frame = nil
}

// destroy releases resources in reverse creation order.
func (r *Renderer) destroy() {
	if r.ring != nil {
		r.ring.releaseAll()
	}
	if r.textures != nil {
		r.textures.destroy()
		r.textures = nil
	}
	if r.pipeline != nil {
		r.pipeline.destroy()
		r.pipeline = nil
	}
	if r.primitives != nil {
		r.device.DestroyBuffer(r.primitives)
		r.primitives = nil
	}
	for i := len(r.staging) - 1; i >= 0; i-- {
		r.device.DestroyBuffer(r.staging[i])
	}
	r.staging = nil
}
