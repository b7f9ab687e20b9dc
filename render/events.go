// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"sync"

	"github.com/gogpu/gpucontext"
)

// PendingResize holds the latest resize event until the frame loop
// applies it. Events may arrive on another goroutine; only the last size
// is kept.
type PendingResize struct {
	mu      sync.Mutex
	width   int
	height  int
	pending bool
}

// BindResize records resize events from src. The frame loop calls Apply
// before building the next list, so an output is never reconfigured while
// a frame is being recorded.
func BindResize(src gpucontext.EventSource) *PendingResize {
	p := &PendingResize{}
	src.OnResize(p.Set)
	return p
}

// Set records a resize.
func (p *PendingResize) Set(width, height int) {
	p.mu.Lock()
	p.width, p.height, p.pending = width, height, true
	p.mu.Unlock()
}

// Take returns and clears the pending size.
func (p *PendingResize) Take() (width, height int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pending {
		return 0, 0, false
	}
	p.pending = false
	return p.width, p.height, true
}

// Apply resizes out if a resize is pending. Zero sizes (minimized windows)
// are dropped. It reports whether the output was reconfigured. A failed
// resize stays pending unless a newer event replaced it.
func (p *PendingResize) Apply(ctx context.Context, r *Renderer, out Output) (bool, error) {
	w, h, ok := p.Take()
	if !ok || w <= 0 || h <= 0 {
		return false, nil
	}
	if err := r.Resize(ctx, out, uint32(w), uint32(h)); err != nil {
		p.restore(w, h)
		return false, err
	}
	return true, nil
}

func (p *PendingResize) restore(width, height int) {
	p.mu.Lock()
	if !p.pending {
		p.width, p.height, p.pending = width, height, true
	}
	p.mu.Unlock()
}
