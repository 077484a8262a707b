package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// SwapchainBackend is the GPU surface the swapchain manager works against.
// *Device implements it.
type SwapchainBackend interface {
	QuerySwapchainSupport() (SwapchainSupport, error)
	QueueFamilies() (QueueFamilyIndices, error)

	CreateSwapchain(config SwapchainConfig) (khr_swapchain.Swapchain, error)
	SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error)
	CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error)
	CreateFramebuffer(renderPass core1_0.RenderPass, view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error)

	DestroyFramebuffer(framebuffer core1_0.Framebuffer)
	DestroyImageView(view core1_0.ImageView)
	DestroySwapchain(swapchain khr_swapchain.Swapchain)

	WaitIdle() error
}

// RenderPassProvider hands out a render pass compatible with the given color
// format, rebuilding whatever depends on the format when it changes.
type RenderPassProvider interface {
	RenderPass(format core1_0.Format) (core1_0.RenderPass, error)
}

// SwapchainState is the presentable image chain and everything built per
// image. Images, ImageViews and Framebuffers always have the same length.
type SwapchainState struct {
	Config       SwapchainConfig
	Swapchain    khr_swapchain.Swapchain
	RenderPass   core1_0.RenderPass
	Images       []core1_0.Image
	ImageViews   []core1_0.ImageView
	Framebuffers []core1_0.Framebuffer
}

// SwapchainManager exclusively owns the SwapchainState.
type SwapchainManager struct {
	backend SwapchainBackend
	window  Window
	passes  RenderPassProvider

	state       *SwapchainState
	recreations int
}

func NewSwapchainManager(backend SwapchainBackend, window Window, passes RenderPassProvider) *SwapchainManager {
	return &SwapchainManager{
		backend: backend,
		window:  window,
		passes:  passes,
	}
}

// State returns the live swapchain state, or nil before Create.
func (m *SwapchainManager) State() *SwapchainState {
	return m.state
}

// Recreations counts completed calls to Recreate.
func (m *SwapchainManager) Recreations() int {
	return m.recreations
}

// Create negotiates and builds swapchain, image views and framebuffers, in
// that order. On failure everything built so far is released.
func (m *SwapchainManager) Create() error {
	if m.state != nil {
		return errors.New("swapchain already created")
	}

	support, err := m.backend.QuerySwapchainSupport()
	if err != nil {
		return errors.Wrap(err, "query swapchain support")
	}

	indices, err := m.backend.QueueFamilies()
	if err != nil {
		return errors.Wrap(err, "find queue families")
	}

	width, height := m.window.FramebufferSize()
	config, err := NegotiateSwapchain(support, indices, width, height)
	if err != nil {
		return err
	}

	state := &SwapchainState{Config: config}
	state.Swapchain, err = m.backend.CreateSwapchain(config)
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	err = m.buildPerImage(state)
	if err != nil {
		m.release(state)
		return err
	}

	m.state = state
	Logger().Info("swapchain created",
		"format", config.Format.Format,
		"colorSpace", config.Format.ColorSpace,
		"presentMode", config.PresentMode,
		"extent", config.Extent,
		"images", len(state.Images))
	return nil
}

func (m *SwapchainManager) buildPerImage(state *SwapchainState) error {
	images, err := m.backend.SwapchainImages(state.Swapchain)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	state.Images = images

	for _, image := range images {
		view, err := m.backend.CreateImageView(image, state.Config.Format.Format)
		if err != nil {
			return errors.Wrap(err, "create image view")
		}
		state.ImageViews = append(state.ImageViews, view)
	}

	state.RenderPass, err = m.passes.RenderPass(state.Config.Format.Format)
	if err != nil {
		return err
	}

	for _, view := range state.ImageViews {
		framebuffer, err := m.backend.CreateFramebuffer(state.RenderPass, view, state.Config.Extent)
		if err != nil {
			return errors.Wrap(err, "create framebuffer")
		}
		state.Framebuffers = append(state.Framebuffers, framebuffer)
	}

	return nil
}

// Destroy releases framebuffers, then image views, then the swapchain.
// The caller guarantees no GPU work still references them.
func (m *SwapchainManager) Destroy() {
	if m.state == nil {
		return
	}
	m.release(m.state)
	m.state = nil
}

func (m *SwapchainManager) release(state *SwapchainState) {
	for _, framebuffer := range state.Framebuffers {
		m.backend.DestroyFramebuffer(framebuffer)
	}
	state.Framebuffers = nil

	for _, view := range state.ImageViews {
		m.backend.DestroyImageView(view)
	}
	state.ImageViews = nil
	state.Images = nil

	m.backend.DestroySwapchain(state.Swapchain)
}

// Recreate rebuilds the swapchain for the surface's current properties.
// While the framebuffer has a zero dimension it blocks on window events.
func (m *SwapchainManager) Recreate() error {
	width, height := m.window.FramebufferSize()
	for width == 0 || height == 0 {
		m.window.WaitEvents()
		width, height = m.window.FramebufferSize()
	}

	err := m.backend.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "wait for device idle before recreation")
	}

	m.Destroy()

	err = m.Create()
	if err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}

	m.recreations++
	return nil
}
