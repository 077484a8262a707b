package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func testCapabilities() *khr_surface.SurfaceCapabilities {
	return &khr_surface.SurfaceCapabilities{
		MinImageCount:  1,
		MaxImageCount:  0,
		CurrentExtent:  core1_0.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: core1_0.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}
}

func TestChooseImageCount(t *testing.T) {
	for _, tc := range []struct {
		min, max int
		want     int
	}{
		{min: 1, max: 0, want: 2},
		{min: 2, max: 8, want: 3},
		{min: 3, max: 3, want: 3},
	} {
		capabilities := &khr_surface.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
		if have := ChooseImageCount(capabilities); have != tc.want {
			t.Errorf("ChooseImageCount(min %d, max %d): have %d, want %d", tc.min, tc.max, have, tc.want)
		}
	}
}

func TestChooseSharingMode(t *testing.T) {
	mode, families := ChooseSharingMode(completeIndices(0, 0))
	if mode != core1_0.SharingModeExclusive || families != nil {
		t.Errorf("same family: have %v %v, want exclusive with no families", mode, families)
	}

	mode, families = ChooseSharingMode(completeIndices(0, 2))
	if mode != core1_0.SharingModeConcurrent || !reflect.DeepEqual(families, []int{0, 2}) {
		t.Errorf("distinct families: have %v %v, want concurrent [0 2]", mode, families)
	}
}

func TestChooseExtent(t *testing.T) {
	capabilities := testCapabilities()

	for _, tc := range []struct {
		width, height int
		want          core1_0.Extent2D
	}{
		{width: 1024, height: 768, want: core1_0.Extent2D{Width: 1024, Height: 768}},
		{width: 10, height: 768, want: core1_0.Extent2D{Width: 64, Height: 768}},
		{width: 8000, height: 9000, want: core1_0.Extent2D{Width: 4096, Height: 4096}},
	} {
		if have := ChooseExtent(capabilities, tc.width, tc.height); have != tc.want {
			t.Errorf("ChooseExtent(%d, %d): have %v, want %v", tc.width, tc.height, have, tc.want)
		}
	}

	capabilities.CurrentExtent = core1_0.Extent2D{Width: -1, Height: -1}
	want := core1_0.Extent2D{Width: 1024, Height: 768}
	if have := ChooseExtent(capabilities, 1024, 768); have != want {
		t.Errorf("negative current extent: have %v, want %v", have, want)
	}

	capabilities.CurrentExtent = core1_0.Extent2D{Width: 800, Height: 600}
	want = core1_0.Extent2D{Width: 800, Height: 600}
	if have := ChooseExtent(capabilities, 1024, 768); have != want {
		t.Errorf("defined current extent: have %v, want %v", have, want)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	other := khr_surface.SurfaceFormat{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	wrongSpace := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear + 1}

	for _, tc := range []struct {
		name    string
		formats []khr_surface.SurfaceFormat
		want    khr_surface.SurfaceFormat
	}{
		{name: "preferred present", formats: []khr_surface.SurfaceFormat{other, preferred}, want: preferred},
		{name: "preferred absent", formats: []khr_surface.SurfaceFormat{other}, want: other},
		{name: "color space mismatch", formats: []khr_surface.SurfaceFormat{wrongSpace, other}, want: wrongSpace},
	} {
		if have := ChooseSurfaceFormat(tc.formats); have != tc.want {
			t.Errorf("%s: have %v, want %v", tc.name, have, tc.want)
		}
	}
}

func TestChoosePresentMode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		modes []khr_surface.PresentMode
		want  khr_surface.PresentMode
	}{
		{
			name:  "mailbox",
			modes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox},
			want:  khr_surface.PresentModeMailbox,
		},
		{
			name:  "immediate fallback",
			modes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeImmediate},
			want:  khr_surface.PresentModeImmediate,
		},
		{
			name:  "fifo only",
			modes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
			want:  khr_surface.PresentModeImmediate,
		},
	} {
		if have := ChoosePresentMode(tc.modes); have != tc.want {
			t.Errorf("%s: have %v, want %v", tc.name, have, tc.want)
		}
	}
}

func TestNegotiateSwapchain(t *testing.T) {
	support := SwapchainSupport{
		Capabilities: testCapabilities(),
		Formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeMailbox},
	}

	config, err := NegotiateSwapchain(support, completeIndices(0, 1), 1024, 768)
	if err != nil {
		t.Fatal(err)
	}
	if config.ImageCount != 2 {
		t.Errorf("ImageCount: have %d, want 2", config.ImageCount)
	}
	if config.Extent != (core1_0.Extent2D{Width: 1024, Height: 768}) {
		t.Errorf("Extent: have %v, want 1024x768", config.Extent)
	}
	if config.SharingMode != core1_0.SharingModeConcurrent {
		t.Errorf("SharingMode: have %v, want concurrent", config.SharingMode)
	}
	if config.PresentMode != khr_surface.PresentModeMailbox {
		t.Errorf("PresentMode: have %v, want mailbox", config.PresentMode)
	}

	support.Formats = nil
	_, err = NegotiateSwapchain(support, completeIndices(0, 1), 1024, 768)
	if !errors.Is(err, ErrNoSurfaceFormats) {
		t.Errorf("no formats: have %v, want %v", err, ErrNoSurfaceFormats)
	}
}

func TestExtentUndefined(t *testing.T) {
	for _, tc := range []struct {
		width int
		want  bool
	}{
		{width: math.MaxUint32, want: true},
		{width: -1, want: true},
		{width: 0, want: false},
		{width: 800, want: false},
	} {
		if have := extentUndefined(core1_0.Extent2D{Width: tc.width}); have != tc.want {
			t.Errorf("extentUndefined(%d): have %v, want %v", tc.width, have, tc.want)
		}
	}
}
