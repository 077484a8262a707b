package engine

import (
	"fmt"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func intPtr(i int) *int {
	return &i
}

func completeIndices(graphics, present int) QueueFamilyIndices {
	return QueueFamilyIndices{GraphicsFamily: intPtr(graphics), PresentFamily: intPtr(present)}
}

type fakeWindow struct {
	width, height int
	waits         int
	events        [][]Event
	polls         int
	onWait        func(w *fakeWindow)
}

func (w *fakeWindow) PollEvents() []Event {
	w.polls++
	if len(w.events) == 0 {
		return nil
	}
	events := w.events[0]
	w.events = w.events[1:]
	return events
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if w.onWait != nil {
		w.onWait(w)
	}
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

type fakeSwapchainBackend struct {
	calls   []string
	support SwapchainSupport
	indices QueueFamilyIndices

	configs []SwapchainConfig

	framebufferErr error
	idleErr        error
}

func (b *fakeSwapchainBackend) QuerySwapchainSupport() (SwapchainSupport, error) {
	b.calls = append(b.calls, "support")
	return b.support, nil
}

func (b *fakeSwapchainBackend) QueueFamilies() (QueueFamilyIndices, error) {
	return b.indices, nil
}

func (b *fakeSwapchainBackend) CreateSwapchain(config SwapchainConfig) (khr_swapchain.Swapchain, error) {
	b.calls = append(b.calls, "swapchain")
	b.configs = append(b.configs, config)
	return khr_swapchain.Swapchain{}, nil
}

func (b *fakeSwapchainBackend) SwapchainImages(khr_swapchain.Swapchain) ([]core1_0.Image, error) {
	config := b.configs[len(b.configs)-1]
	return make([]core1_0.Image, config.ImageCount), nil
}

func (b *fakeSwapchainBackend) CreateImageView(core1_0.Image, core1_0.Format) (core1_0.ImageView, error) {
	b.calls = append(b.calls, "view")
	return core1_0.ImageView{}, nil
}

func (b *fakeSwapchainBackend) CreateFramebuffer(core1_0.RenderPass, core1_0.ImageView, core1_0.Extent2D) (core1_0.Framebuffer, error) {
	if b.framebufferErr != nil {
		return core1_0.Framebuffer{}, b.framebufferErr
	}
	b.calls = append(b.calls, "framebuffer")
	return core1_0.Framebuffer{}, nil
}

func (b *fakeSwapchainBackend) DestroyFramebuffer(core1_0.Framebuffer) {
	b.calls = append(b.calls, "destroy framebuffer")
}

func (b *fakeSwapchainBackend) DestroyImageView(core1_0.ImageView) {
	b.calls = append(b.calls, "destroy view")
}

func (b *fakeSwapchainBackend) DestroySwapchain(khr_swapchain.Swapchain) {
	b.calls = append(b.calls, "destroy swapchain")
}

func (b *fakeSwapchainBackend) WaitIdle() error {
	b.calls = append(b.calls, "idle")
	return b.idleErr
}

func (b *fakeSwapchainBackend) count(call string) int {
	n := 0
	for _, c := range b.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakePasses struct {
	formats []core1_0.Format
}

func (p *fakePasses) RenderPass(format core1_0.Format) (core1_0.RenderPass, error) {
	p.formats = append(p.formats, format)
	return core1_0.RenderPass{}, nil
}

type acquireResult struct {
	status SurfaceStatus
	err    error
}

type presentResult struct {
	status SurfaceStatus
	err    error
}

// fakeFrameBackend models one fence per slot. Submission unsignals work until
// it completes, either immediately on the next wait (autoComplete) or when the
// slot number arrives on completed.
type fakeFrameBackend struct {
	calls []string

	fences       [MaxFramesInFlight]bool
	inFlight     int
	maxInFlight  int
	autoComplete bool
	completed    chan int

	images    int
	nextImage int

	acquires  []acquireResult
	presents  []presentResult
	submitErr error
}

func newFakeFrameBackend(images int) *fakeFrameBackend {
	b := &fakeFrameBackend{
		autoComplete: true,
		completed:    make(chan int),
		images:       images,
	}
	for i := range b.fences {
		b.fences[i] = true
	}
	return b
}

func (b *fakeFrameBackend) complete(slot int) {
	if !b.fences[slot] {
		b.fences[slot] = true
		b.inFlight--
	}
}

func (b *fakeFrameBackend) WaitForSlot(slot int) error {
	b.calls = append(b.calls, fmt.Sprintf("wait %d", slot))
	for !b.fences[slot] {
		if b.autoComplete {
			b.complete(slot)
			break
		}
		b.complete(<-b.completed)
	}
	return nil
}

func (b *fakeFrameBackend) ResetSlot(slot int) error {
	b.calls = append(b.calls, fmt.Sprintf("reset %d", slot))
	b.fences[slot] = false
	return nil
}

func (b *fakeFrameBackend) Acquire(slot int) (int, SurfaceStatus, error) {
	b.calls = append(b.calls, fmt.Sprintf("acquire %d", slot))
	if len(b.acquires) > 0 {
		result := b.acquires[0]
		b.acquires = b.acquires[1:]
		if result.err != nil {
			return 0, result.status, result.err
		}
		image := b.takeImage()
		return image, result.status, nil
	}
	return b.takeImage(), SurfaceOptimal, nil
}

func (b *fakeFrameBackend) takeImage() int {
	image := b.nextImage
	b.nextImage = (b.nextImage + 1) % b.images
	return image
}

func (b *fakeFrameBackend) Record(slot int, imageIndex int) error {
	b.calls = append(b.calls, fmt.Sprintf("record %d %d", slot, imageIndex))
	return nil
}

func (b *fakeFrameBackend) Submit(slot int) error {
	b.calls = append(b.calls, fmt.Sprintf("submit %d", slot))
	if b.submitErr != nil {
		return b.submitErr
	}
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	return nil
}

func (b *fakeFrameBackend) Present(slot int, imageIndex int) (SurfaceStatus, error) {
	b.calls = append(b.calls, fmt.Sprintf("present %d %d", slot, imageIndex))
	if len(b.presents) > 0 {
		result := b.presents[0]
		b.presents = b.presents[1:]
		return result.status, result.err
	}
	return SurfaceOptimal, nil
}

type fakeRecreator struct {
	recreations int
	backend     *fakeFrameBackend
	err         error
}

func (r *fakeRecreator) Recreate() error {
	r.recreations++
	if r.backend != nil {
		r.backend.calls = append(r.backend.calls, "recreate")
	}
	return r.err
}

type fakeIdler struct {
	idles int
	err   error
}

func (i *fakeIdler) WaitIdle() error {
	i.idles++
	return i.err
}
