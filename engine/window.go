package engine

import (
	"unsafe"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type EventKind int

const (
	EventClose EventKind = iota
	EventResize
)

func (k EventKind) String() string {
	switch k {
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	}
	return "unknown"
}

// Event is a window notification the main loop reacts to.
type Event struct {
	Kind EventKind
}

// Window is the windowing collaborator seen by the main loop and the
// swapchain manager.
type Window interface {
	// PollEvents returns the events that arrived since the last call without
	// blocking.
	PollEvents() []Event
	// WaitEvents blocks until at least one event has arrived. The event stays
	// queued for the next PollEvents.
	WaitEvents()
	// FramebufferSize is the drawable size in pixels. A minimized window
	// reports zero.
	FramebufferSize() (width, height int)
}

// SurfaceHost is a Window that can bootstrap Vulkan.
type SurfaceHost interface {
	Window

	// ProcAddr returns vkGetInstanceProcAddr.
	ProcAddr() unsafe.Pointer
	VulkanInstanceExtensions() []string
	CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}
