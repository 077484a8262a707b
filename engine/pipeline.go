package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/mjoelnir/mjoelnir/shaders"
)

// Pipeline owns the render pass and the fixed graphics pipeline drawing into
// it. Both are built for one color format and rebuilt if that format changes.
type Pipeline struct {
	device *Device

	vertShader core1_0.ShaderModule
	fragShader core1_0.ShaderModule

	built          bool
	format         core1_0.Format
	renderPass     core1_0.RenderPass
	pipelineLayout core1_0.PipelineLayout
	pipeline       core1_0.Pipeline
}

// NewPipeline creates the shader modules. The render pass and pipeline are
// built on the first call to RenderPass, once the surface format is known.
func NewPipeline(device *Device, set shaders.Set) (*Pipeline, error) {
	p := &Pipeline{device: device}

	var err error
	p.vertShader, _, err = device.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: set.Vertex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create vertex shader module")
	}

	p.fragShader, _, err = device.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: set.Fragment,
	})
	if err != nil {
		device.driver.DestroyShaderModule(p.vertShader, nil)
		return nil, errors.Wrap(err, "create fragment shader module")
	}

	return p, nil
}

// RenderPass implements RenderPassProvider. The caller guarantees the device
// is idle when format differs from the one the pipeline was built for.
func (p *Pipeline) RenderPass(format core1_0.Format) (core1_0.RenderPass, error) {
	if p.built && p.format == format {
		return p.renderPass, nil
	}

	if p.built {
		Logger().Info("surface format changed, rebuilding pipeline", "from", p.format, "to", format)
		p.release()
	}

	err := p.createRenderPass(format)
	if err != nil {
		return core1_0.RenderPass{}, err
	}

	err = p.createGraphicsPipeline()
	if err != nil {
		p.release()
		return core1_0.RenderPass{}, err
	}

	p.built = true
	p.format = format
	return p.renderPass, nil
}

func (p *Pipeline) Handle() core1_0.Pipeline {
	return p.pipeline
}

func (p *Pipeline) createRenderPass(format core1_0.Format) error {
	renderPass, _, err := p.device.driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}

	p.renderPass = renderPass
	return nil
}

func (p *Pipeline) createGraphicsPipeline() error {
	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: p.vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: p.fragShader,
		Name:   "main",
	}

	// The triangle is generated in the vertex shader.
	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	// Viewport and scissor are dynamic; only their counts matter here.
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{{}},
		Scissors:  []core1_0.Rect2D{{}},
	}

	dynamicState := &core1_0.PipelineDynamicStateCreateInfo{
		DynamicStates: []core1_0.DynamicState{
			core1_0.DynamicStateViewport,
			core1_0.DynamicStateScissor,
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	var err error
	p.pipelineLayout, _, err = p.device.driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "create pipeline layout")
	}

	pipelines, _, err := p.device.driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			DynamicState:       dynamicState,
			Layout:             p.pipelineLayout,
			RenderPass:         p.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return errors.Wrap(err, "create graphics pipeline")
	}
	p.pipeline = pipelines[0]

	return nil
}

func (p *Pipeline) release() {
	driver := p.device.driver

	if p.pipeline.Initialized() {
		driver.DestroyPipeline(p.pipeline, nil)
		p.pipeline = core1_0.Pipeline{}
	}

	if p.pipelineLayout.Initialized() {
		driver.DestroyPipelineLayout(p.pipelineLayout, nil)
		p.pipelineLayout = core1_0.PipelineLayout{}
	}

	if p.renderPass.Initialized() {
		driver.DestroyRenderPass(p.renderPass, nil)
		p.renderPass = core1_0.RenderPass{}
	}

	p.built = false
}

func (p *Pipeline) Destroy() {
	p.release()

	if p.vertShader.Initialized() {
		p.device.driver.DestroyShaderModule(p.vertShader, nil)
		p.vertShader = core1_0.ShaderModule{}
	}

	if p.fragShader.Initialized() {
		p.device.driver.DestroyShaderModule(p.fragShader, nil)
		p.fragShader = core1_0.ShaderModule{}
	}
}
