package main

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestParseCommandLineDefaults(t *testing.T) {
	options, err := parseCommandLine(nil)
	if err != nil {
		t.Fatalf("parseCommandLine: unexpected error %v", err)
	}
	if options.Config.Width != 800 || options.Config.Height != 600 {
		t.Fatalf("size\nhave %dx%d\nwant 800x600", options.Config.Width, options.Config.Height)
	}
	if !options.Config.Validation {
		t.Fatal("validation should be on by default")
	}
	if options.ShaderDir != "" {
		t.Fatalf("ShaderDir\nhave %q\nwant empty", options.ShaderDir)
	}
}

func TestParseCommandLine(t *testing.T) {
	options, err := parseCommandLine([]string{
		"--width", "1024", "--height", "768", "--no-validation", "--shaders", "build/spv", "-v",
	})
	if err != nil {
		t.Fatalf("parseCommandLine: unexpected error %v", err)
	}
	if options.Config.Width != 1024 || options.Config.Height != 768 {
		t.Fatalf("size\nhave %dx%d\nwant 1024x768", options.Config.Width, options.Config.Height)
	}
	if options.Config.Validation {
		t.Fatal("--no-validation was ignored")
	}
	if options.ShaderDir != "build/spv" {
		t.Fatalf("ShaderDir\nhave %q\nwant %q", options.ShaderDir, "build/spv")
	}
	if !options.Verbose {
		t.Fatal("-v was ignored")
	}
}

func TestParseCommandLineErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus"},
		{"--width"},
		{"--width", "wide"},
		{"--height", "0"},
		{"--shaders"},
	} {
		if _, err := parseCommandLine(args); err == nil {
			t.Fatalf("parseCommandLine(%q): expected error", args)
		}
	}
}

func TestParseCommandLineHelp(t *testing.T) {
	options, err := parseCommandLine([]string{"-h"})
	if err != nil {
		t.Fatalf("parseCommandLine: unexpected error %v", err)
	}
	if !options.ShowHelp {
		t.Fatal("-h did not request help")
	}
}

func TestShaderDir(t *testing.T) {
	executable := func() (string, error) {
		return filepath.Join("opt", "mjoelnir", "sandbox"), nil
	}

	dir, err := shaderDir("", executable)
	if err != nil {
		t.Fatalf("shaderDir: unexpected error %v", err)
	}
	if want := filepath.Join("opt", "mjoelnir", "shaders"); dir != want {
		t.Fatalf("default\nhave %q\nwant %q", dir, want)
	}

	dir, err = shaderDir("build/spv", executable)
	if err != nil {
		t.Fatalf("shaderDir: unexpected error %v", err)
	}
	if dir != "build/spv" {
		t.Fatalf("override\nhave %q\nwant %q", dir, "build/spv")
	}

	failure := errors.New("no procfs")
	_, err = shaderDir("", func() (string, error) { return "", failure })
	if !errors.Is(err, failure) {
		t.Fatalf("have %v, want %v", err, failure)
	}
}
