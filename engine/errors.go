package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
)

// Fatal setup errors. Any of these aborts startup.
var (
	ErrNoSuitableDevice        = errors.New("failed to find a suitable GPU")
	ErrIncompleteQueueFamilies = errors.New("queue families incomplete")
	ErrMissingExtension        = errors.New("missing extension")
	ErrMissingLayer            = errors.New("missing layer")
	ErrNoSurfaceFormats        = errors.New("surface reports no formats")
)

// ErrSurfaceOutOfDate is the only recoverable error class. It is raised when
// the swapchain no longer matches its surface and is handled by recreating
// the swapchain.
var ErrSurfaceOutOfDate = errors.New("surface out of date")

// IsRecoverable reports whether err may be handled by swapchain recreation
// rather than terminating the run loop.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceOutOfDate)
}

func resultError(op string, res common.VkResult, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s (%s)", op, res)
}
