// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdraw"
)

//go:embed shaders/primitive.wgsl
var primitiveShaderSource string

// primitivePipeline owns the single render pipeline every command is drawn
// with. Commands differ only in the bind group selecting their texture.
//
// Architecture:
//
//	Renderer owns staging buffers, the GPU buffer and the texture registry
//	primitivePipeline owns shader, layouts, sampler, pipeline
//	textureRegistry creates one bind group per texture against bindLayout
type primitivePipeline struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	pipeline   hal.RenderPipeline
}

// compilePrimitiveShader checks the embedded shader with naga so a broken
// shader fails at startup with a readable error.
func compilePrimitiveShader() error {
	if primitiveShaderSource == "" {
		return fmt.Errorf("primitive shader source is empty")
	}
	if _, err := naga.Compile(primitiveShaderSource); err != nil {
		return fmt.Errorf("validate primitive shader: %w", err)
	}
	return nil
}

func newPrimitivePipeline(device hal.Device, cfg Config) (*primitivePipeline, error) {
	p := &primitivePipeline{device: device}
	if err := p.create(cfg); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *primitivePipeline) create(cfg Config) error {
	if err := compilePrimitiveShader(); err != nil {
		return err
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  cfg.label("primitive_shader"),
		Source: hal.ShaderSource{WGSL: primitiveShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile primitive shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: texture (texture_2d, fragment)
	//   Binding 1: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: cfg.label("primitive_layout"),
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create primitive bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            cfg.label("primitive_pipe_layout"),
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create primitive pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        cfg.label("primitive_sampler"),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("create primitive sampler: %w", err)
	}
	p.sampler = sampler

	blend := gputypes.BlendStateAlpha()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  cfg.label("primitive_pipeline"),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    primitiveVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.Format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create primitive pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// destroy releases pipeline resources in reverse creation order.
func (p *primitivePipeline) destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// primitiveVertexLayout matches VertexInput in primitive.wgsl and the
// staging encoding of imdraw.Vertex:
//
//	location 0: position  (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
//	location 2: color     (vec4<f32>)
func primitiveVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: imdraw.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}
