package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/mjoelnir/mjoelnir/engine"
)

// Options is everything the command line controls.
type Options struct {
	Config engine.Config
	// ShaderDir is empty unless --shaders was given.
	ShaderDir string
	Verbose   bool
	ShowHelp  bool
}

func defaultOptions() Options {
	return Options{
		Config: engine.DefaultConfig(),
	}
}

func parseCommandLine(args []string) (Options, error) {
	options := defaultOptions()

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--help", "-h":
			options.ShowHelp = true
		case "--no-validation":
			options.Config.Validation = false
		case "--verbose", "-v":
			options.Verbose = true
		case "--width", "--height", "--shaders":
			if i+1 >= len(args) {
				return options, errors.Newf("option %s needs a value", arg)
			}
			i++
			value := args[i]

			if arg == "--shaders" {
				options.ShaderDir = value
				continue
			}

			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return options, errors.Newf("option %s needs a positive integer, got %q", arg, value)
			}
			if arg == "--width" {
				options.Config.Width = n
			} else {
				options.Config.Height = n
			}
		default:
			return options, errors.Newf("unrecognized option: %s", arg)
		}
	}

	return options, nil
}

const defaultShaderDir = "shaders"

// shaderDir returns dir, or the shaders directory next to the executable when
// dir is empty.
func shaderDir(dir string, executable func() (string, error)) (string, error) {
	if dir != "" {
		return dir, nil
	}

	path, err := executable()
	if err != nil {
		return "", errors.Wrap(err, "locate executable")
	}
	return filepath.Join(filepath.Dir(path), defaultShaderDir), nil
}

func printUsage() {
	fmt.Println("\nOptions")
	fmt.Println("\t--width N, --height N")
	fmt.Println("\t\tInitial window size in pixels (default 800x600)")
	fmt.Println("\t--shaders DIR")
	fmt.Println("\t\tDirectory holding vert.spv and frag.spv (default: shaders next to the executable)")
	fmt.Println("\t--no-validation")
	fmt.Println("\t\tDisable the Khronos validation layer")
	fmt.Println("\t--verbose, -v")
	fmt.Println("\t\tLog debug output, including validation messages and frame timing")
}
