package render

import (
	"time"

	"github.com/google/uuid"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// The interfaces below are the slice of the native API the render context
// drives. internal/vkng binds them to vkngwrapper objects.

type Loader interface {
	AvailableLayers() ([]string, error)
	AvailableExtensions() ([]string, error)
	CreateInstance(info core1_0.InstanceCreateInfo) (Instance, error)
}

type Instance interface {
	PhysicalDevices() ([]PhysicalDevice, error)
	Destroy()
}

// DeviceClass is the reported class of a physical device.
type DeviceClass int

const (
	DeviceClassOther DeviceClass = iota
	DeviceClassIntegrated
	DeviceClassDiscrete
)

func (c DeviceClass) String() string {
	switch c {
	case DeviceClassIntegrated:
		return "integrated"
	case DeviceClassDiscrete:
		return "discrete"
	default:
		return "other"
	}
}

// DeviceInfo is what a physical device reports about itself.
type DeviceInfo struct {
	Name              string
	Class             DeviceClass
	PipelineCacheUUID uuid.UUID
}

type PhysicalDevice interface {
	Describe() (DeviceInfo, error)
	Extensions() ([]string, error)
	QueueFamilies() []*core1_0.QueueFamilyProperties
	CreateDevice(info core1_0.DeviceCreateInfo) (Device, error)
}

type Surface interface {
	SupportsPresent(device PhysicalDevice, family int) (bool, error)
	Capabilities(device PhysicalDevice) (*khr_surface.SurfaceCapabilities, error)
	Formats(device PhysicalDevice) ([]khr_surface.SurfaceFormat, error)
	Destroy()
}

// Window is the windowing collaborator as seen by the bootstrapper.
type Window interface {
	Size() (width, height int)
	VulkanInstanceExtensions() []string
	CreateSurface(instance Instance) (Surface, error)
}

type Device interface {
	Queue(family int) Queue
	// CreateSwapchain fills in the surface; the rest of info is used as given.
	CreateSwapchain(surface Surface, info khr_swapchain.SwapchainCreateInfo) (Swapchain, error)
	CreateImageView(image Image, info core1_0.ImageViewCreateInfo) (ImageView, error)
	CreateRenderPass(info core1_0.RenderPassCreateInfo) (RenderPass, error)
	CreateFramebuffer(pass RenderPass, view ImageView, info core1_0.FramebufferCreateInfo) (Framebuffer, error)
	CreateCommandPool(info core1_0.CommandPoolCreateInfo) (CommandPool, error)
	CreateSemaphore() (Semaphore, error)
	CreateFence(signaled bool) (Fence, error)
	WaitForFence(fence Fence, timeout time.Duration) (common.VkResult, error)
	ResetFence(fence Fence) error
	WaitIdle() error
	Destroy()
}

type Swapchain interface {
	Images() ([]Image, error)
	AcquireNextImage(timeout time.Duration, signal Semaphore) (int, common.VkResult, error)
	Present(queue Queue, wait Semaphore, imageIndex int) (common.VkResult, error)
	Destroy()
}

type Queue interface {
	Submit(buffer CommandBuffer, wait Semaphore, waitStage core1_0.PipelineStageFlags, signal Semaphore, fence Fence) error
}

type CommandPool interface {
	AllocatePrimary() (CommandBuffer, error)
	Destroy()
}

type CommandBuffer interface {
	Reset() error
	Begin(usage core1_0.CommandBufferUsageFlags) error
	BeginRenderPass(pass RenderPass, framebuffer Framebuffer, area core1_0.Rect2D, clear core1_0.ClearValueFloat) error
	EndRenderPass()
	End() error
}

// Image is owned by its swapchain and never destroyed directly.
type Image interface{}

type ImageView interface{ Destroy() }

type RenderPass interface{ Destroy() }

type Framebuffer interface{ Destroy() }

type Semaphore interface{ Destroy() }

type Fence interface{ Destroy() }
