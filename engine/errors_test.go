package engine

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestIsRecoverable(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: ErrSurfaceOutOfDate, want: true},
		{err: errors.Wrap(ErrSurfaceOutOfDate, "queue present"), want: true},
		{err: errors.Wrapf(errors.Wrap(ErrSurfaceOutOfDate, "acquire next image"), "frame %d", 1), want: true},
		{err: ErrNoSuitableDevice, want: false},
		{err: errors.New("device lost"), want: false},
	} {
		if have := IsRecoverable(tc.err); have != tc.want {
			t.Errorf("IsRecoverable(%v): have %v, want %v", tc.err, have, tc.want)
		}
	}
}

func TestResultError(t *testing.T) {
	if err := resultError("create swapchain", 0, nil); err != nil {
		t.Fatalf("have %v, want nil", err)
	}

	cause := errors.New("out of host memory")
	err := resultError("create swapchain", 0, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("have %v, want wrapped %v", err, cause)
	}
}
