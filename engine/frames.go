package engine

import (
	"github.com/cockroachdb/errors"
)

// FrameState is where a frame slot is in its cycle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	}
	return "unknown"
}

// SurfaceStatus is the non-fatal outcome of an acquire or present.
type SurfaceStatus int

const (
	SurfaceOptimal SurfaceStatus = iota
	SurfaceSuboptimal
)

// FrameBackend performs the GPU side of one frame slot. Slot indices are in
// [0, MaxFramesInFlight); image indices address the current swapchain.
type FrameBackend interface {
	// WaitForSlot blocks until the slot's previous submission has completed.
	WaitForSlot(slot int) error
	// ResetSlot returns the slot's fence to the unsignaled state.
	ResetSlot(slot int) error
	// Acquire requests the next presentable image, signaling the slot's
	// image-acquired semaphore. A stale surface is reported as
	// ErrSurfaceOutOfDate.
	Acquire(slot int) (imageIndex int, status SurfaceStatus, err error)
	// Record re-records the slot's command buffer against imageIndex.
	Record(slot int, imageIndex int) error
	// Submit queues the slot's commands, waiting on image-acquired and
	// signaling render-finished and the slot's fence.
	Submit(slot int) error
	// Present queues imageIndex for presentation after render-finished. A
	// stale surface is reported as ErrSurfaceOutOfDate.
	Present(slot int, imageIndex int) (SurfaceStatus, error)
}

// Recreator rebuilds the swapchain. *SwapchainManager implements it.
type Recreator interface {
	Recreate() error
}

// Frames drives acquire, record, submit and present across a fixed ring of
// frame slots. It is not safe for concurrent use.
type Frames struct {
	// OnTransition, when set, is called after every frame state change.
	OnTransition func(slot int, state FrameState)

	backend   FrameBackend
	swapchain Recreator
	stats     *FrameStats

	currentFrame int
	states       [MaxFramesInFlight]FrameState
	resized      bool
}

func NewFrames(backend FrameBackend, swapchain Recreator, stats *FrameStats) *Frames {
	return &Frames{
		backend:   backend,
		swapchain: swapchain,
		stats:     stats,
	}
}

// NotifyResized raises the resize flag; the swapchain is recreated after the
// next present.
func (f *Frames) NotifyResized() {
	f.resized = true
}

func (f *Frames) CurrentFrame() int {
	return f.currentFrame
}

func (f *Frames) State(slot int) FrameState {
	return f.states[slot]
}

// Step renders one frame. It returns without advancing the current frame when
// the acquired surface is out of date, after recreating the swapchain. Any
// returned error is fatal and leaves the slot idle.
func (f *Frames) Step() (err error) {
	slot := f.currentFrame
	defer func() {
		if err != nil && f.states[slot] != FrameIdle {
			f.transition(slot, FrameIdle)
		}
	}()

	err = f.backend.WaitForSlot(slot)
	if err != nil {
		return errors.Wrapf(err, "wait for frame %d", slot)
	}

	f.transition(slot, FrameAcquiring)
	imageIndex, _, err := f.backend.Acquire(slot)
	if IsRecoverable(err) {
		// The fence was not reset, so it is still signaled from its last
		// submission and the retry's wait returns immediately.
		f.transition(slot, FrameIdle)
		Logger().Debug("swapchain out of date on acquire", "frame", slot)
		return f.recreate()
	}
	if err != nil {
		return errors.Wrapf(err, "acquire image for frame %d", slot)
	}

	err = f.backend.ResetSlot(slot)
	if err != nil {
		return errors.Wrapf(err, "reset fence for frame %d", slot)
	}

	f.transition(slot, FrameRecording)
	err = f.backend.Record(slot, imageIndex)
	if err != nil {
		return errors.Wrapf(err, "record frame %d image %d", slot, imageIndex)
	}

	err = f.backend.Submit(slot)
	if err != nil {
		return errors.Wrapf(err, "submit frame %d", slot)
	}
	f.transition(slot, FrameSubmitted)

	f.transition(slot, FramePresenting)
	status, err := f.backend.Present(slot, imageIndex)
	stale := IsRecoverable(err)
	if err != nil && !stale {
		return errors.Wrapf(err, "present frame %d image %d", slot, imageIndex)
	}
	f.transition(slot, FrameIdle)

	if stale || status != SurfaceOptimal || f.resized {
		Logger().Debug("recreating swapchain after present",
			"frame", slot, "stale", stale, "status", status, "resized", f.resized)
		f.resized = false
		err = f.recreate()
		if err != nil {
			return err
		}
	}

	f.currentFrame = (f.currentFrame + 1) % MaxFramesInFlight
	if f.stats != nil {
		f.stats.Frame()
	}
	return nil
}

func (f *Frames) transition(slot int, state FrameState) {
	f.states[slot] = state
	if f.OnTransition != nil {
		f.OnTransition(slot, state)
	}
}

func (f *Frames) recreate() error {
	err := f.swapchain.Recreate()
	if err != nil {
		return err
	}
	if f.stats != nil {
		f.stats.Recreated()
	}
	return nil
}

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceOptimal:
		return "optimal"
	case SurfaceSuboptimal:
		return "suboptimal"
	}
	return "unknown"
}
