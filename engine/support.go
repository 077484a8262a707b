package engine

import (
	"math"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// extentUndefined reports whether a surface left the swapchain extent to the
// application, signaled by a width of 0xFFFFFFFF.
func extentUndefined(extent core1_0.Extent2D) bool {
	return uint32(extent.Width) == math.MaxUint32
}

// SwapchainSupport is what a surface supports on one physical device.
type SwapchainSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Adequate reports whether a swapchain can be built at all.
func (s SwapchainSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// SwapchainConfig holds negotiated swapchain creation parameters.
type SwapchainConfig struct {
	ImageCount         int
	Format             khr_surface.SurfaceFormat
	PresentMode        khr_surface.PresentMode
	Extent             core1_0.Extent2D
	SharingMode        core1_0.SharingMode
	QueueFamilyIndices []int
	PreTransform       khr_surface.SurfaceTransformFlags
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB with a non-linear sRGB color
// space and otherwise returns the first format verbatim. formats must not be
// empty.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return formats[0]
}

// ChoosePresentMode prefers mailbox and otherwise falls back to immediate.
//
// The fallback skips FIFO, the only mode every implementation must support.
// It is kept deliberately and logged so the choice is visible.
func ChoosePresentMode(modes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, mode := range modes {
		if mode == khr_surface.PresentModeMailbox {
			return mode
		}
	}

	supported := false
	for _, mode := range modes {
		if mode == khr_surface.PresentModeImmediate {
			supported = true
			break
		}
	}

	log := Logger()
	log.Warn("mailbox present mode unavailable, falling back to immediate")
	if !supported {
		log.Warn("immediate present mode is not reported as supported by the surface")
	}

	return khr_surface.PresentModeImmediate
}

// ChooseExtent uses the surface's current extent when it is defined and
// otherwise clamps the framebuffer size into the surface's extent bounds.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if !extentUndefined(capabilities.CurrentExtent) {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ChooseImageCount asks for one image more than the minimum, bounded by the
// maximum when there is one (0 means unbounded).
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// ChooseSharingMode returns exclusive ownership when graphics and present use
// the same family, and concurrent sharing across both families otherwise.
func ChooseSharingMode(indices QueueFamilyIndices) (core1_0.SharingMode, []int) {
	if *indices.GraphicsFamily == *indices.PresentFamily {
		return core1_0.SharingModeExclusive, nil
	}

	return core1_0.SharingModeConcurrent, []int{*indices.GraphicsFamily, *indices.PresentFamily}
}

// NegotiateSwapchain derives every swapchain creation parameter from the
// surface support, the queue families and the framebuffer size.
func NegotiateSwapchain(support SwapchainSupport, indices QueueFamilyIndices, width, height int) (SwapchainConfig, error) {
	if len(support.Formats) == 0 {
		return SwapchainConfig{}, ErrNoSurfaceFormats
	}
	if !indices.IsComplete() {
		return SwapchainConfig{}, ErrIncompleteQueueFamilies
	}

	sharingMode, familyIndices := ChooseSharingMode(indices)

	return SwapchainConfig{
		ImageCount:         ChooseImageCount(support.Capabilities),
		Format:             ChooseSurfaceFormat(support.Formats),
		PresentMode:        ChoosePresentMode(support.PresentModes),
		Extent:             ChooseExtent(support.Capabilities, width, height),
		SharingMode:        sharingMode,
		QueueFamilyIndices: familyIndices,
		PreTransform:       support.Capabilities.CurrentTransform,
	}, nil
}
