package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/mjoelnir/mjoelnir/engine"
	"github.com/mjoelnir/mjoelnir/shaders"
	"github.com/mjoelnir/mjoelnir/window"
)

func run(options Options) error {
	dir, err := shaderDir(options.ShaderDir, os.Executable)
	if err != nil {
		return err
	}

	set, err := shaders.Loader{FS: os.DirFS(dir)}.Load(context.Background())
	if err != nil {
		return err
	}

	win, err := window.New(options.Config.Title, options.Config.Width, options.Config.Height)
	if err != nil {
		return err
	}
	defer win.Destroy()

	renderer, err := engine.NewRenderer(options.Config, win, set)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	err = renderer.Run()
	if err != nil {
		return err
	}

	stats := renderer.Stats()
	engine.Logger().Info("shutting down", "frames", stats.Frames(), "recreations", stats.Recreations())
	return nil
}

func main() {
	// SDL and the presentation engine expect every call on the main thread.
	runtime.LockOSThread()

	options, err := parseCommandLine(os.Args[1:])
	if err != nil {
		fmt.Printf("\n%v\n", err)
		fmt.Println("\nUse --help or -h for option list.")
		os.Exit(1)
	}
	if options.ShowHelp {
		printUsage()
		return
	}

	level := slog.LevelInfo
	if options.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.New())
	engine.SetLogger(logger)

	err = run(options)
	if err != nil {
		logger.Error("fatal", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}
