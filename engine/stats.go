package engine

import (
	"time"

	"github.com/loov/hrtime"
)

const defaultReportEvery = 600

// FrameStats measures frame pacing and counts swapchain recreations.
type FrameStats struct {
	// ReportEvery is the number of frames between debug log reports. Zero
	// disables reporting.
	ReportEvery int

	frames      int
	recreations int

	last        time.Duration
	windowStart time.Duration
	windowCount int
	previous    time.Duration
}

func NewFrameStats() *FrameStats {
	now := hrtime.Now()
	return &FrameStats{
		ReportEvery: defaultReportEvery,
		last:        now,
		windowStart: now,
	}
}

// Frame records a completed frame.
func (s *FrameStats) Frame() {
	now := hrtime.Now()
	s.previous = now - s.last
	s.last = now
	s.frames++
	s.windowCount++

	if s.ReportEvery <= 0 || s.windowCount < s.ReportEvery {
		return
	}

	elapsed := now - s.windowStart
	average := elapsed / time.Duration(s.windowCount)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(s.windowCount) / elapsed.Seconds()
	}

	Logger().Debug("frame timing",
		"frames", s.frames,
		"average", average,
		"fps", fps,
		"recreations", s.recreations)

	s.windowStart = now
	s.windowCount = 0
}

// Recreated records a swapchain recreation.
func (s *FrameStats) Recreated() {
	s.recreations++
}

func (s *FrameStats) Frames() int {
	return s.frames
}

func (s *FrameStats) Recreations() int {
	return s.recreations
}

// LastFrameTime is the time between the two most recent frames.
func (s *FrameStats) LastFrameTime() time.Duration {
	return s.previous
}
