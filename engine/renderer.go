package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/mjoelnir/mjoelnir/shaders"
)

// Renderer runs the construction stages in order and owns what they produce.
type Renderer struct {
	window Window

	instance  *Instance
	surface   *Surface
	device    *Device
	pipeline  *Pipeline
	swapchain *SwapchainManager
	backend   *vulkanFrames
	frames    *Frames
	stats     *FrameStats
}

// NewRenderer builds everything up to a ready frame synchronizer. On failure
// the partially built renderer is released.
func NewRenderer(config Config, host SurfaceHost, set shaders.Set) (r *Renderer, err error) {
	r = &Renderer{
		window: host,
		stats:  NewFrameStats(),
	}
	defer func() {
		if err != nil {
			r.Destroy()
			r = nil
		}
	}()

	r.instance, err = NewInstance(config, host)
	if err != nil {
		return r, err
	}

	r.surface, err = r.instance.CreateSurface(host)
	if err != nil {
		return r, err
	}

	physicalDevice, err := r.surface.PickPhysicalDevice()
	if err != nil {
		return r, err
	}

	r.device, err = physicalDevice.CreateLogicalDevice()
	if err != nil {
		return r, err
	}

	r.pipeline, err = NewPipeline(r.device, set)
	if err != nil {
		return r, err
	}

	r.swapchain = NewSwapchainManager(r.device, host, r.pipeline)
	err = r.swapchain.Create()
	if err != nil {
		return r, err
	}

	r.backend, err = newVulkanFrames(r.device, r.pipeline, r.swapchain)
	if err != nil {
		return r, err
	}

	r.frames = NewFrames(r.backend, r.swapchain, r.stats)
	return r, nil
}

func (r *Renderer) Stats() *FrameStats {
	return r.stats
}

// Run renders until the window asks to close or a fatal error occurs.
func (r *Renderer) Run() error {
	return mainLoop(r.window, r.frames, r.device)
}

type idler interface {
	WaitIdle() error
}

// mainLoop polls events and steps the frames once per iteration. Whatever
// ends the loop, the device is idle when it returns.
func mainLoop(window Window, frames *Frames, device idler) error {
	loopErr := func() error {
		for {
			for _, event := range window.PollEvents() {
				switch event.Kind {
				case EventClose:
					return nil
				case EventResize:
					frames.NotifyResized()
				}
			}

			err := frames.Step()
			if err != nil {
				return err
			}
		}
	}()

	idleErr := device.WaitIdle()
	if loopErr != nil {
		if idleErr != nil {
			loopErr = errors.WithSecondaryError(loopErr, idleErr)
		}
		return loopErr
	}
	return idleErr
}

// Destroy waits for the device to go idle and releases everything in reverse
// construction order. It is safe on a partially constructed renderer.
func (r *Renderer) Destroy() {
	if r.device != nil && r.device.driver != nil {
		err := r.device.WaitIdle()
		if err != nil {
			Logger().Warn("device did not go idle before teardown", "error", err)
		}
	}

	if r.backend != nil {
		r.backend.destroy()
		r.backend = nil
	}

	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}

	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}

	if r.device != nil {
		r.device.Destroy()
		r.device = nil
	}

	if r.surface != nil {
		r.surface.Destroy()
		r.surface = nil
	}

	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}
