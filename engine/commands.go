package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// commandRecorder owns one primary command buffer per frame slot, allocated
// from a pool that allows individual buffer resets.
type commandRecorder struct {
	device   *Device
	pipeline *Pipeline

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer
}

func newCommandRecorder(device *Device, pipeline *Pipeline) (*commandRecorder, error) {
	pool, _, err := device.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: device.graphicsIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}

	buffers, _, err := device.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: MaxFramesInFlight,
	})
	if err != nil {
		device.driver.DestroyCommandPool(pool, nil)
		return nil, errors.Wrap(err, "allocate command buffers")
	}

	return &commandRecorder{
		device:         device,
		pipeline:       pipeline,
		commandPool:    pool,
		commandBuffers: buffers,
	}, nil
}

// record rewrites the slot's command buffer to draw the fixed triangle into
// the framebuffer of imageIndex.
func (r *commandRecorder) record(slot int, imageIndex int, state *SwapchainState) error {
	driver := r.device.driver
	buffer := r.commandBuffers[slot]

	_, err := driver.ResetCommandBuffer(buffer, 0)
	if err != nil {
		return errors.Wrap(err, "reset command buffer")
	}

	_, err = driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	err = driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  state.RenderPass,
			Framebuffer: state.Framebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: state.Config.Extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
			},
		})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, r.pipeline.Handle())
	driver.CmdSetViewport(buffer, core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(state.Config.Extent.Width),
		Height:   float32(state.Config.Extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	driver.CmdSetScissor(buffer, core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: state.Config.Extent,
	})
	driver.CmdDraw(buffer, 3, 1, 0, 0)
	driver.CmdEndRenderPass(buffer)

	_, err = driver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "end command buffer")
	}

	return nil
}

func (r *commandRecorder) destroy() {
	if len(r.commandBuffers) > 0 {
		r.device.driver.FreeCommandBuffers(r.commandBuffers...)
		r.commandBuffers = nil
	}

	if r.commandPool.Initialized() {
		r.device.driver.DestroyCommandPool(r.commandPool, nil)
		r.commandPool = core1_0.CommandPool{}
	}
}
