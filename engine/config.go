package engine

// MaxFramesInFlight bounds how many frames may be outstanding on the GPU.
const MaxFramesInFlight = 2

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// Config holds the window and instance settings for a Renderer.
type Config struct {
	Title           string
	ApplicationName string
	Width, Height   int

	// Validation enables the Khronos validation layer and the debug messenger.
	Validation bool
}

func DefaultConfig() Config {
	return Config{
		Title:           "Mjoelnir",
		ApplicationName: "Mjoelnir Sandbox",
		Width:           800,
		Height:          600,
		Validation:      true,
	}
}
