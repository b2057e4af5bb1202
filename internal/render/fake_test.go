package render

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// callLog records native calls made through the fakes, in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// destroyed returns only the destroy calls, without the prefix.
func (l *callLog) destroyed() []string {
	var names []string
	for _, call := range l.snapshot() {
		var name string
		if _, err := fmt.Sscanf(call, "destroy %s", &name); err == nil {
			names = append(names, name)
		}
	}
	return names
}

var errDriver = errors.New("driver error")

// requireErrorIs checks marks as well as the wrap chain.
func requireErrorIs(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, target), "expected %q to be %q", err, target)
}

type fakeHandle struct {
	log  *callLog
	name string
}

func (h *fakeHandle) Destroy() { h.log.add("destroy %s", h.name) }

type fakeLoader struct {
	log        *callLog
	layers     []string
	extensions []string
	createErr  error

	instance *fakeInstance
	created  core1_0.InstanceCreateInfo
}

func (l *fakeLoader) AvailableLayers() ([]string, error)     { return l.layers, nil }
func (l *fakeLoader) AvailableExtensions() ([]string, error) { return l.extensions, nil }

func (l *fakeLoader) CreateInstance(info core1_0.InstanceCreateInfo) (Instance, error) {
	l.log.add("create instance")
	if l.createErr != nil {
		return nil, l.createErr
	}
	l.created = info
	return l.instance, nil
}

type fakeInstance struct {
	log     *callLog
	devices []PhysicalDevice
}

func (i *fakeInstance) PhysicalDevices() ([]PhysicalDevice, error) { return i.devices, nil }
func (i *fakeInstance) Destroy()                                   { i.log.add("destroy instance") }

type fakePhysicalDevice struct {
	log         *callLog
	info        DeviceInfo
	extensions  []string
	families    []*core1_0.QueueFamilyProperties
	describeErr error
	createErr   error

	device  *fakeDevice
	created core1_0.DeviceCreateInfo
}

func (d *fakePhysicalDevice) Describe() (DeviceInfo, error) { return d.info, d.describeErr }
func (d *fakePhysicalDevice) Extensions() ([]string, error) { return d.extensions, nil }
func (d *fakePhysicalDevice) QueueFamilies() []*core1_0.QueueFamilyProperties {
	return d.families
}

func (d *fakePhysicalDevice) CreateDevice(info core1_0.DeviceCreateInfo) (Device, error) {
	d.log.add("create device")
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.created = info
	return d.device, nil
}

type fakeSurface struct {
	log        *callLog
	present    map[int]bool
	presentErr error
	caps       *khr_surface.SurfaceCapabilities
	formats    []khr_surface.SurfaceFormat
	queries    []int
}

func (s *fakeSurface) SupportsPresent(device PhysicalDevice, family int) (bool, error) {
	s.queries = append(s.queries, family)
	return s.present[family], s.presentErr
}

func (s *fakeSurface) Capabilities(device PhysicalDevice) (*khr_surface.SurfaceCapabilities, error) {
	return s.caps, nil
}

func (s *fakeSurface) Formats(device PhysicalDevice) ([]khr_surface.SurfaceFormat, error) {
	return s.formats, nil
}

func (s *fakeSurface) Destroy() { s.log.add("destroy surface") }

type fakeWindow struct {
	log           *callLog
	width, height int
	extensions    []string
	surface       *fakeSurface
	surfaceErr    error
}

func (w *fakeWindow) Size() (int, int)                   { return w.width, w.height }
func (w *fakeWindow) VulkanInstanceExtensions() []string { return w.extensions }

func (w *fakeWindow) CreateSurface(instance Instance) (Surface, error) {
	w.log.add("create surface")
	if w.surfaceErr != nil {
		return nil, w.surfaceErr
	}
	return w.surface, nil
}

type fakeDevice struct {
	log *callLog

	swapchain        *fakeSwapchain
	queue            *fakeQueue
	renderPassErr    error
	framebufferErrAt int
	fenceErr         error
	resetErr         error
	waitResults      []common.VkResult

	swapchainInfo   khr_swapchain.SwapchainCreateInfo
	renderPassInfo  core1_0.RenderPassCreateInfo
	framebufferInfo []core1_0.FramebufferCreateInfo
	poolInfo        core1_0.CommandPoolCreateInfo
	buffer          *fakeCommandBuffer

	views        int
	framebuffers int
	semaphores   int
	queueFamily  int
}

func newFakeDevice(log *callLog, images int) *fakeDevice {
	return &fakeDevice{
		log:              log,
		swapchain:        &fakeSwapchain{log: log, images: images, acquireRes: core1_0.VKSuccess, presentRes: core1_0.VKSuccess},
		queue:            &fakeQueue{log: log},
		buffer:           &fakeCommandBuffer{log: log},
		framebufferErrAt: -1,
		queueFamily:      -1,
	}
}

func (d *fakeDevice) Queue(family int) Queue {
	d.queueFamily = family
	return d.queue
}

func (d *fakeDevice) CreateSwapchain(surface Surface, info khr_swapchain.SwapchainCreateInfo) (Swapchain, error) {
	d.log.add("create swapchain")
	d.swapchainInfo = info
	return d.swapchain, nil
}

func (d *fakeDevice) CreateImageView(image Image, info core1_0.ImageViewCreateInfo) (ImageView, error) {
	name := fmt.Sprintf("view%d", d.views)
	d.views++
	d.log.add("create %s of %v", name, image)
	return &fakeHandle{log: d.log, name: name}, nil
}

func (d *fakeDevice) CreateRenderPass(info core1_0.RenderPassCreateInfo) (RenderPass, error) {
	d.log.add("create renderpass")
	if d.renderPassErr != nil {
		return nil, d.renderPassErr
	}
	d.renderPassInfo = info
	return &fakeHandle{log: d.log, name: "renderpass"}, nil
}

func (d *fakeDevice) CreateFramebuffer(pass RenderPass, view ImageView, info core1_0.FramebufferCreateInfo) (Framebuffer, error) {
	if d.framebuffers == d.framebufferErrAt {
		return nil, errDriver
	}
	name := fmt.Sprintf("framebuffer%d", d.framebuffers)
	d.framebuffers++
	d.log.add("create %s for %s", name, view.(*fakeHandle).name)
	d.framebufferInfo = append(d.framebufferInfo, info)
	return &fakeHandle{log: d.log, name: name}, nil
}

func (d *fakeDevice) CreateCommandPool(info core1_0.CommandPoolCreateInfo) (CommandPool, error) {
	d.log.add("create pool")
	d.poolInfo = info
	return &fakeCommandPool{log: d.log, buffer: d.buffer}, nil
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) {
	name := fmt.Sprintf("semaphore%d", d.semaphores)
	d.semaphores++
	d.log.add("create %s", name)
	return &fakeHandle{log: d.log, name: name}, nil
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	d.log.add("create fence signaled=%t", signaled)
	if d.fenceErr != nil {
		return nil, d.fenceErr
	}
	return &fakeHandle{log: d.log, name: "fence"}, nil
}

// WaitForFence pops the next scripted result, or succeeds once the script is exhausted.
func (d *fakeDevice) WaitForFence(fence Fence, timeout time.Duration) (common.VkResult, error) {
	d.log.add("wait fence %s", timeout)
	if len(d.waitResults) == 0 {
		return core1_0.VKSuccess, nil
	}
	res := d.waitResults[0]
	d.waitResults = d.waitResults[1:]
	return res, nil
}

func (d *fakeDevice) ResetFence(fence Fence) error {
	d.log.add("reset fence")
	return d.resetErr
}

func (d *fakeDevice) WaitIdle() error {
	d.log.add("wait idle")
	return nil
}

func (d *fakeDevice) Destroy() { d.log.add("destroy device") }

type fakeSwapchain struct {
	log    *callLog
	images int

	acquireIndex int
	acquireRes   common.VkResult
	acquireErr   error
	presentRes   common.VkResult
	presentErr   error
}

func (s *fakeSwapchain) Images() ([]Image, error) {
	images := make([]Image, s.images)
	for i := range images {
		images[i] = fmt.Sprintf("image%d", i)
	}
	return images, nil
}

func (s *fakeSwapchain) AcquireNextImage(timeout time.Duration, signal Semaphore) (int, common.VkResult, error) {
	s.log.add("acquire %s signal %s", timeout, signal.(*fakeHandle).name)
	return s.acquireIndex, s.acquireRes, s.acquireErr
}

func (s *fakeSwapchain) Present(queue Queue, wait Semaphore, imageIndex int) (common.VkResult, error) {
	s.log.add("present %d wait %s", imageIndex, wait.(*fakeHandle).name)
	return s.presentRes, s.presentErr
}

func (s *fakeSwapchain) Destroy() { s.log.add("destroy swapchain") }

type fakeQueue struct {
	log       *callLog
	submitErr error
	stage     core1_0.PipelineStageFlags
}

func (q *fakeQueue) Submit(buffer CommandBuffer, wait Semaphore, waitStage core1_0.PipelineStageFlags, signal Semaphore, fence Fence) error {
	q.log.add("submit wait %s signal %s fence %s",
		wait.(*fakeHandle).name, signal.(*fakeHandle).name, fence.(*fakeHandle).name)
	q.stage = waitStage
	return q.submitErr
}

type fakeCommandPool struct {
	log    *callLog
	buffer *fakeCommandBuffer
}

func (p *fakeCommandPool) AllocatePrimary() (CommandBuffer, error) {
	p.log.add("allocate buffer")
	return p.buffer, nil
}

func (p *fakeCommandPool) Destroy() { p.log.add("destroy pool") }

type fakeCommandBuffer struct {
	log *callLog

	usage  core1_0.CommandBufferUsageFlags
	area   core1_0.Rect2D
	clears []core1_0.ClearValueFloat
}

func (b *fakeCommandBuffer) Reset() error {
	b.log.add("reset buffer")
	return nil
}

func (b *fakeCommandBuffer) Begin(usage core1_0.CommandBufferUsageFlags) error {
	b.log.add("begin buffer")
	b.usage = usage
	return nil
}

func (b *fakeCommandBuffer) BeginRenderPass(pass RenderPass, framebuffer Framebuffer, area core1_0.Rect2D, clear core1_0.ClearValueFloat) error {
	b.log.add("begin %s on %s", pass.(*fakeHandle).name, framebuffer.(*fakeHandle).name)
	b.area = area
	b.clears = append(b.clears, clear)
	return nil
}

func (b *fakeCommandBuffer) EndRenderPass() { b.log.add("end renderpass") }

func (b *fakeCommandBuffer) End() error {
	b.log.add("end buffer")
	return nil
}

func queueFamily(flags core1_0.QueueFlags) *core1_0.QueueFamilyProperties {
	return &core1_0.QueueFamilyProperties{QueueFlags: flags, QueueCount: 1}
}

// clientDecides is the extent drivers report when the window decides the size.
func clientDecides() core1_0.Extent2D {
	undefined := ^uint32(0)
	return core1_0.Extent2D{Width: int(undefined), Height: int(undefined)}
}

// testRig is a fully working fake driver for a single-family discrete device.
type testRig struct {
	log      *callLog
	loader   *fakeLoader
	instance *fakeInstance
	physical *fakePhysicalDevice
	device   *fakeDevice
	surface  *fakeSurface
	window   *fakeWindow
}

func newTestRig(images int) *testRig {
	log := &callLog{}
	device := newFakeDevice(log, images)

	physical := &fakePhysicalDevice{
		log:        log,
		info:       DeviceInfo{Name: "fake discrete", Class: DeviceClassDiscrete},
		extensions: []string{khr_swapchain.ExtensionName},
		families: []*core1_0.QueueFamilyProperties{
			queueFamily(core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer),
		},
		device: device,
	}

	instance := &fakeInstance{log: log, devices: []PhysicalDevice{physical}}

	surface := &fakeSurface{
		log:     log,
		present: map[int]bool{0: true},
		caps: &khr_surface.SurfaceCapabilities{
			MinImageCount:           images,
			MaxImageCount:           8,
			CurrentExtent:           core1_0.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          core1_0.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms:     khr_surface.TransformIdentity,
			CurrentTransform:        khr_surface.TransformIdentity,
			SupportedCompositeAlpha: khr_surface.CompositeAlphaOpaque,
		},
		formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
	}

	window := &fakeWindow{
		log:        log,
		width:      800,
		height:     600,
		extensions: []string{khr_surface.ExtensionName},
		surface:    surface,
	}

	loader := &fakeLoader{
		log:        log,
		layers:     []string{ValidationLayer},
		extensions: []string{khr_surface.ExtensionName},
		instance:   instance,
	}

	return &testRig{
		log:      log,
		loader:   loader,
		instance: instance,
		physical: physical,
		device:   device,
		surface:  surface,
		window:   window,
	}
}

func (r *testRig) options() Options {
	return Options{
		ApplicationName:    "test",
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "test engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_1,
		EnableValidation:   true,
	}
}

func (r *testRig) newContext() (*RenderContext, error) {
	return New(r.loader, r.window, r.options())
}
