package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline/rt/shaders"
)

// Pipeline names in the pipeline cache.
const (
	maskPipeline    = "outline_mask_pipeline"
	jfaInitPipeline = "outline_jfa_init_pipeline"
	jfaPipeline     = "outline_jfa_pipeline"
	outlinePipeline = "outline_pipeline"
)

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64, dynamic bool) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			MinBindingSize:   size,
			HasDynamicOffset: dynamic,
		},
	}
}

func textureEntry(binding uint32, sampleType wgpu.TextureSampleType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: wgpu.TextureViewDimension2D,
			Multisampled:  false,
		},
	}
}

// layouts are the bind group layouts of all passes. They do not depend on
// the resolution and live as long as the renderer.
type layouts struct {
	view    *wgpu.BindGroupLayout // mask: view_proj
	model   *wgpu.BindGroupLayout // mask: per-item model, dynamic
	jfaInit *wgpu.BindGroupLayout // dims + mask
	jfa     *wgpu.BindGroupLayout // dims + seeds
	jump    *wgpu.BindGroupLayout // jump distance, dynamic
	outline *wgpu.BindGroupLayout // dims + seeds + mask
	params  *wgpu.BindGroupLayout // style
}

func newLayouts(device *wgpu.Device) (*layouts, error) {
	l := &layouts{}
	specs := []struct {
		dst     **wgpu.BindGroupLayout
		label   string
		entries []wgpu.BindGroupLayoutEntry
	}{
		{&l.view, "outline_view_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex, mat4Size, false),
		}},
		{&l.model, "outline_model_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex, mat4Size, true),
		}},
		{&l.jfaInit, "outline_jfa_init_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageFragment, 16, false),
			textureEntry(1, wgpu.TextureSampleTypeUnfilterableFloat),
		}},
		{&l.jfa, "outline_jfa_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageFragment, 16, false),
			textureEntry(1, wgpu.TextureSampleTypeSint),
		}},
		{&l.jump, "outline_jump_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageFragment, 16, true),
		}},
		{&l.outline, "outline_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageFragment, 16, false),
			textureEntry(1, wgpu.TextureSampleTypeSint),
			textureEntry(2, wgpu.TextureSampleTypeUnfilterableFloat),
		}},
		{&l.params, "outline_params_layout", []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageFragment, paramsSize, false),
		}},
	}
	for _, s := range specs {
		bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   s.label,
			Entries: s.entries,
		})
		if err != nil {
			l.release()
			return nil, err
		}
		*s.dst = bgl
	}
	return l, nil
}

func (l *layouts) release() {
	for _, bgl := range []*wgpu.BindGroupLayout{l.view, l.model, l.jfaInit, l.jfa, l.jump, l.outline, l.params} {
		if bgl != nil {
			bgl.Release()
		}
	}
}

var noBlend *wgpu.BlendState

// alphaBlend is straight-alpha source-over.
var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}

func buildMaskPipeline(device *wgpu.Device, l *layouts, samples uint32) (*wgpu.RenderPipeline, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "outline_mask_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.MaskWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "outline_mask_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{l.view, l.model},
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  maskPipeline,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 12,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    wgpu.TextureFormatR8Unorm,
				Blend:     noBlend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	})
}

// buildFullscreenPipeline builds a pass that draws one full-screen triangle
// and runs fs_main of src for every pixel of a single-sample target.
func buildFullscreenPipeline(device *wgpu.Device, label, src string, groups []*wgpu.BindGroupLayout, format wgpu.TextureFormat, blend *wgpu.BlendState) (*wgpu.RenderPipeline, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + "_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.Fullscreen(src)},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_fullscreen",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
}

// queuePipelines starts compiling every program of the pipeline.
func queuePipelines(cache *pipelineCache[*wgpu.RenderPipeline], device *wgpu.Device, l *layouts, maskSamples uint32, target wgpu.TextureFormat) {
	cache.Queue(maskPipeline, func() (*wgpu.RenderPipeline, error) {
		return buildMaskPipeline(device, l, maskSamples)
	})
	cache.Queue(jfaInitPipeline, func() (*wgpu.RenderPipeline, error) {
		return buildFullscreenPipeline(device, jfaInitPipeline, shaders.JfaInitWGSL,
			[]*wgpu.BindGroupLayout{l.jfaInit}, wgpu.TextureFormatRG16Sint, noBlend)
	})
	cache.Queue(jfaPipeline, func() (*wgpu.RenderPipeline, error) {
		return buildFullscreenPipeline(device, jfaPipeline, shaders.JfaWGSL,
			[]*wgpu.BindGroupLayout{l.jfa, l.jump}, wgpu.TextureFormatRG16Sint, noBlend)
	})
	cache.Queue(outlinePipeline, func() (*wgpu.RenderPipeline, error) {
		return buildFullscreenPipeline(device, outlinePipeline, shaders.OutlineWGSL,
			[]*wgpu.BindGroupLayout{l.outline, l.params}, target, alphaBlend)
	})
}
