package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

type frameSlot struct {
	imageAvailable core1_0.Semaphore
	renderFinished core1_0.Semaphore
	inFlight       core1_0.Fence
}

// vulkanFrames is the FrameBackend that talks to the device.
type vulkanFrames struct {
	device    *Device
	swapchain *SwapchainManager
	recorder  *commandRecorder

	slots [MaxFramesInFlight]frameSlot
}

func newVulkanFrames(device *Device, pipeline *Pipeline, swapchain *SwapchainManager) (*vulkanFrames, error) {
	recorder, err := newCommandRecorder(device, pipeline)
	if err != nil {
		return nil, err
	}

	frames := &vulkanFrames{
		device:    device,
		swapchain: swapchain,
		recorder:  recorder,
	}

	err = frames.createSyncObjects()
	if err != nil {
		frames.destroy()
		return nil, err
	}

	return frames, nil
}

func (f *vulkanFrames) createSyncObjects() error {
	driver := f.device.driver

	for i := range f.slots {
		var err error
		slot := &f.slots[i]

		slot.imageAvailable, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "create image-available semaphore")
		}

		slot.renderFinished, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "create render-finished semaphore")
		}

		// Signaled so the first wait on each slot returns immediately.
		slot.inFlight, _, err = driver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return errors.Wrap(err, "create in-flight fence")
		}
	}

	return nil
}

func (f *vulkanFrames) WaitForSlot(slot int) error {
	res, err := f.device.driver.WaitForFences(true, common.NoTimeout, f.slots[slot].inFlight)
	return resultError("wait for fence", res, err)
}

func (f *vulkanFrames) ResetSlot(slot int) error {
	res, err := f.device.driver.ResetFences(f.slots[slot].inFlight)
	return resultError("reset fence", res, err)
}

func (f *vulkanFrames) Acquire(slot int) (int, SurfaceStatus, error) {
	imageIndex, res, err := f.device.swapchainExtension.AcquireNextImage(
		f.swapchain.State().Swapchain, common.NoTimeout, &f.slots[slot].imageAvailable, nil)
	status, err := surfaceResult("acquire next image", res, err)
	return imageIndex, status, err
}

func (f *vulkanFrames) Record(slot int, imageIndex int) error {
	return f.recorder.record(slot, imageIndex, f.swapchain.State())
}

func (f *vulkanFrames) Submit(slot int) error {
	res, err := f.device.driver.QueueSubmit(f.device.graphicsQueue, &f.slots[slot].inFlight,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{f.slots[slot].imageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{f.recorder.commandBuffers[slot]},
			SignalSemaphores: []core1_0.Semaphore{f.slots[slot].renderFinished},
		},
	)
	return resultError("queue submit", res, err)
}

func (f *vulkanFrames) Present(slot int, imageIndex int) (SurfaceStatus, error) {
	res, err := f.device.swapchainExtension.QueuePresent(f.device.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{f.slots[slot].renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{f.swapchain.State().Swapchain},
		ImageIndices:   []int{imageIndex},
	})
	return surfaceResult("queue present", res, err)
}

// surfaceResult sorts an acquire or present result into the recoverable
// out-of-date class, the sub-optimal status, or a fatal error.
func surfaceResult(op string, res common.VkResult, err error) (SurfaceStatus, error) {
	switch {
	case res == khr_swapchain.VKErrorOutOfDate:
		return SurfaceOptimal, errors.Wrap(ErrSurfaceOutOfDate, op)
	case err != nil:
		return SurfaceOptimal, resultError(op, res, err)
	case res == khr_swapchain.VKSuboptimal:
		return SurfaceSuboptimal, nil
	}
	return SurfaceOptimal, nil
}

func (f *vulkanFrames) destroy() {
	driver := f.device.driver

	for i := range f.slots {
		slot := &f.slots[i]
		if slot.inFlight.Initialized() {
			driver.DestroyFence(slot.inFlight, nil)
		}
		if slot.renderFinished.Initialized() {
			driver.DestroySemaphore(slot.renderFinished, nil)
		}
		if slot.imageAvailable.Initialized() {
			driver.DestroySemaphore(slot.imageAvailable, nil)
		}
		*slot = frameSlot{}
	}

	f.recorder.destroy()
}
