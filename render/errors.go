// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Renderer errors.
var (
	// ErrOutputStale is returned when the output surface is outdated or lost.
	// The frame was dropped; reconfigure the output and render again.
	ErrOutputStale = errors.New("render: output is stale")

	// ErrFenceTimeout is returned when a slot's previous submission did not
	// complete within Config.FenceTimeout.
	ErrFenceTimeout = errors.New("render: timed out waiting for GPU")

	// ErrSlotBusy is returned when a frame is begun while another frame is
	// still being recorded.
	ErrSlotBusy = errors.New("render: frame slot is busy")

	// ErrClosed is returned by operations on a closed renderer.
	ErrClosed = errors.New("render: renderer is closed")

	// ErrUnknownTexture is returned for handles the renderer did not create
	// or has already released.
	ErrUnknownTexture = errors.New("render: unknown texture")

	// ErrZeroSize is returned for zero-sized textures and outputs.
	ErrZeroSize = errors.New("render: zero size")

	// ErrTextureData is returned when pixel data does not match the texture size.
	ErrTextureData = errors.New("render: texture data size mismatch")

	// ErrNilDevice is returned when no HAL device or queue is available.
	ErrNilDevice = errors.New("render: nil device or queue")
)
