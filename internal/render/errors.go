package render

import (
	"github.com/cockroachdb/errors"
)

// Every failure surfaced by this package is marked with exactly one of these
// kinds. None of them are recoverable; callers test with errors.Is.
var (
	ErrValidationUnavailable     = errors.New("validation layers unavailable")
	ErrInstanceCreationFailed    = errors.New("instance creation failed")
	ErrSurfaceCreationFailed     = errors.New("surface creation failed")
	ErrNoSuitableDevice          = errors.New("no suitable physical device")
	ErrNoGraphicsQueue           = errors.New("no graphics queue family")
	ErrDeviceCreationFailed      = errors.New("logical device creation failed")
	ErrSwapchainCreationFailed   = errors.New("swapchain creation failed")
	ErrCommandSetupFailed        = errors.New("command pool setup failed")
	ErrRenderPassCreationFailed  = errors.New("render pass creation failed")
	ErrFramebufferCreationFailed = errors.New("framebuffer creation failed")
	ErrSyncSetupFailed           = errors.New("sync object creation failed")
	ErrFenceTimeout              = errors.New("fence wait timed out")
	ErrAcquireFailed             = errors.New("image acquire failed")
	ErrRecordFailed              = errors.New("command recording failed")
	ErrSubmitFailed              = errors.New("queue submit failed")
	ErrPresentFailed             = errors.New("present failed")
)

var kinds = []error{
	ErrValidationUnavailable,
	ErrInstanceCreationFailed,
	ErrSurfaceCreationFailed,
	ErrNoSuitableDevice,
	ErrNoGraphicsQueue,
	ErrDeviceCreationFailed,
	ErrSwapchainCreationFailed,
	ErrCommandSetupFailed,
	ErrRenderPassCreationFailed,
	ErrFramebufferCreationFailed,
	ErrSyncSetupFailed,
	ErrFenceTimeout,
	ErrAcquireFailed,
	ErrRecordFailed,
	ErrSubmitFailed,
	ErrPresentFailed,
}

// KindOf returns the kind sentinel err is marked with, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// fail wraps a native error with the step that produced it and marks it with kind.
func fail(kind error, err error, step string) error {
	return errors.Mark(errors.Wrap(err, step), kind)
}

// failf builds a new error for a step that failed without a native error.
func failf(kind error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), kind)
}
