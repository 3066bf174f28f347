package render

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var (
	// ErrNoSuitableDevice is returned by New when no physical device exposes
	// a queue family with both graphics and present support for the surface.
	ErrNoSuitableDevice = errors.New("no suitable physical device")

	// ErrTimeout is wrapped by a FrameError when a bounded wait expires.
	ErrTimeout = errors.New("wait timed out")

	// ErrDestroyed is returned by DrawFrame once the renderer is torn down.
	ErrDestroyed = errors.New("renderer destroyed")
)

// InitializationError reports a failed construction stage. Construction
// failures are fatal: whatever was built before Stage has been released.
type InitializationError struct {
	Stage string
	Err   error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Stage, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// FrameError reports a failure inside DrawFrame. It is returned to the
// caller as-is and never retried.
type FrameError struct {
	Op  string
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %s: %v", e.Op, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

func initError(stage string, err error) error {
	if errors.Is(err, ErrNoSuitableDevice) {
		return err
	}
	return &InitializationError{Stage: stage, Err: err}
}

func frameError(op string, err error) error {
	return &FrameError{Op: op, Err: err}
}

// resultError converts a Vulkan result into an error, nil on success.
func resultError(op string, res vulkan.Result) error {
	switch res {
	case vulkan.Success:
		return nil
	case vulkan.Timeout:
		return errors.Wrap(ErrTimeout, op)
	}
	if err := vulkan.Error(res); err != nil {
		return errors.Wrapf(err, "%s (%d)", op, res)
	}
	return errors.Errorf("%s: unexpected result %d", op, res)
}
