// Package window is the SDL side of the renderer: the window, the instance
// extensions it needs, its surface, and its input events.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/clearscreen/internal/render"
	"github.com/vkngwrapper/clearscreen/internal/vkng"
)

var _ render.Window = (*Window)(nil)

type Window struct {
	handle        *sdl.Window
	width, height int
}

// Open initialises SDL video and opens a fixed-size window that can present with Vulkan.
func Open(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl video")
	}

	handle, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(err, "create %dx%d window", width, height)
	}

	return &Window{handle: handle, width: width, height: height}, nil
}

// Size is the size the window was opened with.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// DrawableSize is the current size of the window in pixels.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.handle.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) VulkanInstanceExtensions() []string {
	return w.handle.VulkanGetInstanceExtensions()
}

// ProcAddr is SDL's vkGetInstanceProcAddr.
func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *Window) CreateSurface(instance render.Instance) (render.Surface, error) {
	surface, err := vkng.CreateSDLSurface(instance, w.handle)
	if err != nil {
		return nil, err
	}
	return surface, nil
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	if w.handle != nil {
		w.handle.Destroy()
		w.handle = nil
	}
	sdl.Quit()
}
