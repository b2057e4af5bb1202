package render

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

// RenderContext owns every native object the renderer creates, from the
// instance down to the per-frame sync objects.
type RenderContext struct {
	opts Options
	log  *slog.Logger

	instance       Instance
	surface        Surface
	physicalDevice *PhysicalDeviceCandidate
	queueFamilies  QueueFamilyIndices
	device         Device
	graphicsQueue  Queue

	swapchain     *SwapchainState
	commandPool   CommandPool
	commandBuffer CommandBuffer
	targets       *RenderTargetSet
	sync          *FrameSyncObjects

	frame     uint64
	state     FrameState
	stats     FrameStats
	destroyed bool
}

// New runs the bootstrap pipeline in order. If a step fails, everything the
// earlier steps created is released before the error is returned.
func New(loader Loader, window Window, opts Options) (*RenderContext, error) {
	rc := &RenderContext{
		opts: opts,
		log:  opts.logger(),
	}

	err := rc.init(loader, window)
	if err != nil {
		rc.release()
		rc.destroyed = true
		return nil, err
	}

	return rc, nil
}

func (rc *RenderContext) init(loader Loader, window Window) error {
	var err error

	rc.instance, err = CreateInstance(loader, window, rc.opts)
	if err != nil {
		return err
	}

	rc.surface, err = CreateSurface(window, rc.instance)
	if err != nil {
		return err
	}

	rc.physicalDevice, err = SelectDevice(rc.instance)
	if err != nil {
		return err
	}
	rc.log.Info("physical device selected",
		"name", rc.physicalDevice.Name,
		"class", rc.physicalDevice.Class,
		"pipelineCacheUUID", rc.physicalDevice.PipelineCacheUUID)

	rc.queueFamilies, err = ResolveQueueFamilies(rc.physicalDevice.Device.QueueFamilies(), func(family int) (bool, error) {
		return rc.surface.SupportsPresent(rc.physicalDevice.Device, family)
	})
	if err != nil {
		return fail(ErrDeviceCreationFailed, err, "resolve queue families")
	}
	if rc.queueFamilies.Graphics == nil {
		return failf(ErrNoGraphicsQueue, "%s has no graphics-capable queue family", rc.physicalDevice.Name)
	}
	rc.log.Info("queue families resolved",
		"graphics", optionalIndex(rc.queueFamilies.Graphics),
		"present", optionalIndex(rc.queueFamilies.Present),
		"compute", optionalIndex(rc.queueFamilies.Compute),
		"transfer", optionalIndex(rc.queueFamilies.Transfer))

	rc.device, rc.graphicsQueue, err = CreateLogicalDevice(rc.physicalDevice, rc.queueFamilies)
	if err != nil {
		return err
	}

	width, height := window.Size()
	windowExtent := core1_0.Extent2D{Width: width, Height: height}

	rc.swapchain, err = CreateSwapchain(rc.device, rc.physicalDevice.Device, rc.surface, rc.queueFamilies, windowExtent)
	if err != nil {
		return err
	}
	rc.log.Info("swapchain created",
		"format", rc.swapchain.Format,
		"extent", rc.swapchain.Extent,
		"presentMode", rc.swapchain.PresentMode,
		"images", len(rc.swapchain.Images))

	rc.commandPool, rc.commandBuffer, err = CreateCommands(rc.device, *rc.queueFamilies.Graphics)
	if err != nil {
		return err
	}

	// Framebuffers and the render area follow the window, not the negotiated extent.
	rc.targets, err = CreateRenderTargets(rc.device, rc.swapchain.Format, rc.swapchain.Views, windowExtent)
	if err != nil {
		return err
	}

	rc.sync, err = CreateFrameSync(rc.device)
	return err
}

// Destroy waits for the last submitted frame, then releases everything in
// dependency order. It is safe to call more than once. If the wait fails,
// nothing is destroyed since the GPU may still reference it.
func (rc *RenderContext) Destroy() error {
	if rc.destroyed {
		return nil
	}

	if rc.sync != nil && rc.sync.InFlight != nil {
		res, err := rc.device.WaitForFence(rc.sync.InFlight, FrameTimeout)
		if err != nil {
			return fail(ErrFenceTimeout, err, "wait for in-flight fence before teardown")
		}
		if res == core1_0.VKTimeout {
			return failf(ErrFenceTimeout, "in-flight fence not signaled after %s, leaking render context", FrameTimeout)
		}
	}

	rc.release()
	rc.destroyed = true
	return nil
}

func (rc *RenderContext) release() {
	if rc.sync != nil {
		rc.sync.Destroy()
		rc.sync = nil
	}

	if rc.targets != nil {
		rc.targets.Destroy()
		rc.targets = nil
	}

	if rc.commandPool != nil {
		rc.commandPool.Destroy()
		rc.commandPool = nil
		rc.commandBuffer = nil
	}

	if rc.swapchain != nil {
		rc.swapchain.Destroy()
		rc.swapchain = nil
	}

	if rc.device != nil {
		rc.device.Destroy()
		rc.device = nil
		rc.graphicsQueue = nil
	}

	if rc.surface != nil {
		rc.surface.Destroy()
		rc.surface = nil
	}

	if rc.instance != nil {
		rc.instance.Destroy()
		rc.instance = nil
	}
}

// WaitIdle blocks until the device has finished all submitted work.
func (rc *RenderContext) WaitIdle() error {
	if rc.device == nil {
		return errors.New("render context is destroyed")
	}
	return errors.Wrap(rc.device.WaitIdle(), "wait for device idle")
}

func (rc *RenderContext) FrameNumber() uint64 { return rc.frame }

func (rc *RenderContext) State() FrameState { return rc.state }

func (rc *RenderContext) Stats() FrameStats { return rc.stats }

func (rc *RenderContext) QueueFamilies() QueueFamilyIndices { return rc.queueFamilies }

func (rc *RenderContext) Device() *PhysicalDeviceCandidate { return rc.physicalDevice }

func (rc *RenderContext) Swapchain() *SwapchainState { return rc.swapchain }

func (rc *RenderContext) Targets() *RenderTargetSet { return rc.targets }

func optionalIndex(idx *int) interface{} {
	if idx == nil {
		return "none"
	}
	return *idx
}
