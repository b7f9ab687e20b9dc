// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imdraw"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.FramesInFlight != 2 {
		t.Errorf("FramesInFlight = %d, want 2", cfg.FramesInFlight)
	}
	if cfg.ClearColor != imdraw.Blue {
		t.Errorf("ClearColor = %v, want blue", cfg.ClearColor)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no frames", func(c *Config) { c.FramesInFlight = 0 }},
		{"staging below one vertex", func(c *Config) { c.StagingSize = imdraw.VertexSize - 4 }},
		{"unaligned staging", func(c *Config) { c.StagingSize = 1026 }},
		{"zero timeout", func(c *Config) { c.FenceTimeout = 0 }},
		{"undefined format", func(c *Config) { c.Format = gputypes.TextureFormatUndefined }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	base := cfg
	base.Label = "base"
	for _, opt := range []Option{
		WithConfig(base),
		WithFramesInFlight(3),
		WithStagingSize(1 << 10),
		WithClearColor(imdraw.RGB(1, 0, 0)),
		WithFormat(gputypes.TextureFormatRGBA8Unorm),
		WithFenceTimeout(time.Second),
	} {
		opt(&cfg)
	}

	want := Config{
		FramesInFlight: 3,
		StagingSize:    1 << 10,
		ClearColor:     imdraw.RGB(1, 0, 0),
		Format:         gputypes.TextureFormatRGBA8Unorm,
		FenceTimeout:   time.Second,
		PollInterval:   base.PollInterval,
		Label:          "base",
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestConfigLabel(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.label("staging_0"); got != "imdraw_staging_0" {
		t.Errorf("label = %q", got)
	}
	cfg.Label = ""
	if got := cfg.label("staging_0"); got != "staging_0" {
		t.Errorf("label without prefix = %q", got)
	}
}
