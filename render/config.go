// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imdraw"
)

// Config holds renderer settings. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// FramesInFlight is the number of staging slots. Frame N+1 is recorded
	// while frame N executes on the GPU.
	FramesInFlight int

	// StagingSize is the capacity in bytes of each staging buffer and of the
	// GPU vertex/index buffer.
	StagingSize uint64

	// ClearColor fills the output before primitives are drawn.
	ClearColor imdraw.Color

	// Format is the color format of the render pipeline. It must match the
	// output format.
	Format gputypes.TextureFormat

	// FenceTimeout bounds the wait for a slot's previous submission.
	FenceTimeout time.Duration

	// PollInterval is the sleep between completion polls.
	PollInterval time.Duration

	// Label prefixes GPU object labels.
	Label string
}

// DefaultConfig returns the default renderer settings: two frames in
// flight, 16 MiB staging, blue clear color, BGRA8 output.
func DefaultConfig() Config {
	return Config{
		FramesInFlight: 2,
		StagingSize:    16 << 20,
		ClearColor:     imdraw.Blue,
		Format:         gputypes.TextureFormatBGRA8Unorm,
		FenceTimeout:   5 * time.Second,
		PollInterval:   100 * time.Microsecond,
		Label:          "imdraw",
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.FramesInFlight < 1:
		return fmt.Errorf("render: frames in flight must be positive, got %d", c.FramesInFlight)
	case c.StagingSize < imdraw.VertexSize:
		return fmt.Errorf("render: staging size %d is smaller than one vertex", c.StagingSize)
	case c.StagingSize%4 != 0:
		return fmt.Errorf("render: staging size %d is not a multiple of 4", c.StagingSize)
	case c.FenceTimeout <= 0:
		return fmt.Errorf("render: fence timeout must be positive, got %v", c.FenceTimeout)
	case c.Format == gputypes.TextureFormatUndefined:
		return fmt.Errorf("render: undefined output format")
	}
	return nil
}

func (c Config) label(name string) string {
	if c.Label == "" {
		return name
	}
	return c.Label + "_" + name
}

// Option configures a Renderer.
type Option func(*Config)

// WithFramesInFlight sets the number of staging slots.
func WithFramesInFlight(n int) Option {
	return func(c *Config) { c.FramesInFlight = n }
}

// WithStagingSize sets the staging buffer capacity in bytes.
func WithStagingSize(size uint64) Option {
	return func(c *Config) { c.StagingSize = size }
}

// WithClearColor sets the clear color.
func WithClearColor(col imdraw.Color) Option {
	return func(c *Config) { c.ClearColor = col }
}

// WithFormat sets the output color format.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(c *Config) { c.Format = f }
}

// WithFenceTimeout sets the GPU wait timeout.
func WithFenceTimeout(d time.Duration) Option {
	return func(c *Config) { c.FenceTimeout = d }
}

// WithConfig replaces the whole configuration. Options after it still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}
