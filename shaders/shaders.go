// Package shaders loads the SPIR-V bytecode for the fixed triangle pipeline.
//
// The .spv files are compiled from the GLSL sources in this directory at
// build time.
package shaders

//go:generate glslc shader.vert -o vert.spv
//go:generate glslc shader.frag -o frag.spv

import (
	"context"
	"encoding/binary"
	"io/fs"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const (
	VertexFile   = "vert.spv"
	FragmentFile = "frag.spv"
)

// Set is the bytecode for every stage of the pipeline.
type Set struct {
	Vertex   []uint32
	Fragment []uint32
}

// Loader reads shader stages from a file system.
type Loader struct {
	FS fs.FS
}

// Load reads both stages concurrently. A missing, empty or truncated file is
// an error.
func (l Loader) Load(ctx context.Context) (Set, error) {
	var set Set

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		code, err := l.loadStage(VertexFile)
		set.Vertex = code
		return err
	})
	group.Go(func() error {
		code, err := l.loadStage(FragmentFile)
		set.Fragment = code
		return err
	})

	err := group.Wait()
	if err != nil {
		return Set{}, err
	}

	return set, nil
}

func (l Loader) loadStage(name string) ([]uint32, error) {
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %s", name)
	}

	code, err := BytesToBytecode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %s", name)
	}
	return code, nil
}

// BytesToBytecode converts little-endian SPIR-V bytes to 32-bit words.
func BytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 {
		return nil, errors.New("empty bytecode")
	}
	if len(b)%4 != 0 {
		return nil, errors.Newf("bytecode length %d is not a multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	return byteCode, nil
}
