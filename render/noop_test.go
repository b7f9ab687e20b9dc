// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// testBindGroup is distinguishable by label; noop bind groups are all
// zero-sized and cannot be told apart.
type testBindGroup struct {
	noop.Resource
	label string
}

// recordingDevice wraps a noop device and records what the renderer asks
// of it.
type recordingDevice struct {
	hal.Device

	encoders          []*recordingEncoder
	freedCmdBufs      int
	destroyedTextures int
	destroyedGroups   int

	// beginErr fails BeginEncoding on every new encoder.
	beginErr error
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	inner, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	e := &recordingEncoder{CommandEncoder: inner, beginErr: d.beginErr}
	d.encoders = append(d.encoders, e)
	return e, nil
}

func (d *recordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	return &testBindGroup{label: desc.Label}, nil
}

func (d *recordingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.destroyedGroups++
}

func (d *recordingDevice) DestroyTexture(t hal.Texture) {
	d.destroyedTextures++
	d.Device.DestroyTexture(t)
}

func (d *recordingDevice) FreeCommandBuffer(cb hal.CommandBuffer) {
	d.freedCmdBufs++
	d.Device.FreeCommandBuffer(cb)
}

func (d *recordingDevice) lastEncoder(t *testing.T) *recordingEncoder {
	t.Helper()
	if len(d.encoders) == 0 {
		t.Fatal("no command encoder was created")
	}
	return d.encoders[len(d.encoders)-1]
}

type recordingEncoder struct {
	hal.CommandEncoder

	copies    []hal.BufferCopy
	clear     gputypes.Color
	pass      *recordingPass
	beginErr  error
	discarded int
}

func (e *recordingEncoder) BeginEncoding(label string) error {
	if e.beginErr != nil {
		return e.beginErr
	}
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *recordingEncoder) DiscardEncoding() {
	e.discarded++
	e.CommandEncoder.DiscardEncoding()
}

func (e *recordingEncoder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	e.copies = append(e.copies, regions...)
	e.CommandEncoder.CopyBufferToBuffer(src, dst, regions)
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	if len(desc.ColorAttachments) > 0 {
		e.clear = desc.ColorAttachments[0].ClearValue
	}
	e.pass = &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc)}
	return e.pass
}

type drawCall struct {
	group string
	first uint32
	count uint32
}

type recordingPass struct {
	hal.RenderPassEncoder

	group        string
	vertexOffset uint64
	indexOffset  uint64
	indexFormat  gputypes.IndexFormat
	draws        []drawCall
}

func (p *recordingPass) SetBindGroup(index uint32, g hal.BindGroup, offsets []uint32) {
	if tg, ok := g.(*testBindGroup); ok {
		p.group = tg.label
	}
}

func (p *recordingPass) SetVertexBuffer(slot uint32, b hal.Buffer, offset uint64) {
	p.vertexOffset = offset
}

func (p *recordingPass) SetIndexBuffer(b hal.Buffer, f gputypes.IndexFormat, offset uint64) {
	p.indexFormat = f
	p.indexOffset = offset
}

func (p *recordingPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.draws = append(p.draws, drawCall{group: p.group, first: firstIndex, count: indexCount})
}

// gatedQueue completes submissions only when the test says so.
type gatedQueue struct {
	hal.Queue

	submitted atomic.Uint64
	completed atomic.Uint64
	submitErr error
}

func (q *gatedQueue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	if q.submitErr != nil {
		return 0, q.submitErr
	}
	return q.submitted.Add(1), nil
}

func (q *gatedQueue) PollCompleted() uint64 { return q.completed.Load() }

func (q *gatedQueue) completeAll() { q.completed.Store(q.submitted.Load()) }

// testRenderer builds a renderer over recording wrappers. The queue
// completes nothing until the test calls completeAll.
func testRenderer(t *testing.T, opts ...Option) (*Renderer, *recordingDevice, *gatedQueue) {
	t.Helper()
	device, queue := createNoopDevice(t)
	dev := &recordingDevice{Device: device}
	q := &gatedQueue{Queue: queue}

	base := []Option{
		WithStagingSize(4096),
		WithFenceTimeout(20 * time.Millisecond),
		func(c *Config) { c.PollInterval = 10 * time.Microsecond },
	}
	r, err := New(dev, q, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		q.completeAll()
		_ = r.Close()
	})
	return r, dev, q
}

// staleSurface fails every acquire with err.
type staleSurface struct {
	*noop.Surface
	err error
}

func (s *staleSurface) AcquireTexture(f hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.Surface.AcquireTexture(f)
}
