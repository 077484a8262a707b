// Package window provides the SDL2 window the renderer draws into.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/mjoelnir/mjoelnir/engine"
)

// Window is a resizable SDL2 window with Vulkan support. All methods must be
// called from the thread that created it.
type Window struct {
	window *sdl.Window

	// Events picked up by WaitEvents, handed out by the next PollEvents.
	pending []engine.Event
}

func New(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: window}, nil
}

func (w *Window) PollEvents() []engine.Event {
	events := w.pending
	w.pending = nil

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := translate(event); ok {
			events = append(events, e)
		}
	}

	return events
}

func (w *Window) WaitEvents() {
	if e, ok := translate(sdl.WaitEvent()); ok {
		w.pending = append(w.pending, e)
	}
}

func (w *Window) FramebufferSize() (int, int) {
	if (w.window.GetFlags() & sdl.WINDOW_MINIMIZED) != 0 {
		return 0, 0
	}

	widthInt, heightInt := w.window.VulkanGetDrawableSize()
	return int(widthInt), int(heightInt)
}

func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *Window) VulkanInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *Window) CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	return vkng_sdl2.CreateSurface(instance, surfaceExtension, w.window)
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

// translate keeps the events the renderer reacts to.
func translate(event sdl.Event) (engine.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return engine.Event{Kind: engine.EventClose}, true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			return engine.Event{Kind: engine.EventClose}, true
		case sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED:
			return engine.Event{Kind: engine.EventResize}, true
		}
	}
	return engine.Event{}, false
}

var _ engine.SurfaceHost = (*Window)(nil)
