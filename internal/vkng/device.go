package vkng

import (
	"time"

	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/vkngwrapper/clearscreen/internal/render"
)

var (
	_ render.Device        = (*Device)(nil)
	_ render.Swapchain     = (*Swapchain)(nil)
	_ render.Queue         = (*Queue)(nil)
	_ render.CommandPool   = (*CommandPool)(nil)
	_ render.CommandBuffer = (*CommandBuffer)(nil)
)

type Device struct {
	device    core1_0.Device
	swapchain khr_swapchain.Extension
}

func (d *Device) Queue(family int) render.Queue {
	return &Queue{queue: d.device.GetQueue(family, 0)}
}

func (d *Device) CreateSwapchain(surface render.Surface, info khr_swapchain.SwapchainCreateInfo) (render.Swapchain, error) {
	info.Surface = surface.(*Surface).surface

	swapchain, _, err := d.swapchain.CreateSwapchain(d.device, nil, info)
	if err != nil {
		return nil, err
	}
	return &Swapchain{swapchain: swapchain, extension: d.swapchain}, nil
}

func (d *Device) CreateImageView(image render.Image, info core1_0.ImageViewCreateInfo) (render.ImageView, error) {
	info.Image = image.(core1_0.Image)

	view, _, err := d.device.CreateImageView(nil, info)
	if err != nil {
		return nil, err
	}
	return &ImageView{view: view}, nil
}

func (d *Device) CreateRenderPass(info core1_0.RenderPassCreateInfo) (render.RenderPass, error) {
	pass, _, err := d.device.CreateRenderPass(nil, info)
	if err != nil {
		return nil, err
	}
	return &RenderPass{pass: pass}, nil
}

func (d *Device) CreateFramebuffer(pass render.RenderPass, view render.ImageView, info core1_0.FramebufferCreateInfo) (render.Framebuffer, error) {
	info.RenderPass = pass.(*RenderPass).pass
	info.Attachments = []core1_0.ImageView{view.(*ImageView).view}

	framebuffer, _, err := d.device.CreateFramebuffer(nil, info)
	if err != nil {
		return nil, err
	}
	return &Framebuffer{framebuffer: framebuffer}, nil
}

func (d *Device) CreateCommandPool(info core1_0.CommandPoolCreateInfo) (render.CommandPool, error) {
	pool, _, err := d.device.CreateCommandPool(nil, info)
	if err != nil {
		return nil, err
	}
	return &CommandPool{pool: pool, device: d.device}, nil
}

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	semaphore, _, err := d.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, err
	}
	return &Semaphore{semaphore: semaphore}, nil
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	var info core1_0.FenceCreateInfo
	if signaled {
		info.Flags = core1_0.FenceCreateSignaled
	}

	fence, _, err := d.device.CreateFence(nil, info)
	if err != nil {
		return nil, err
	}
	return &Fence{fence: fence}, nil
}

func (d *Device) WaitForFence(fence render.Fence, timeout time.Duration) (common.VkResult, error) {
	return d.device.WaitForFences(true, timeout, []core1_0.Fence{fence.(*Fence).fence})
}

func (d *Device) ResetFence(fence render.Fence) error {
	_, err := d.device.ResetFences([]core1_0.Fence{fence.(*Fence).fence})
	return err
}

func (d *Device) WaitIdle() error {
	_, err := d.device.WaitIdle()
	return err
}

func (d *Device) Destroy() {
	d.device.Destroy(nil)
}

type Swapchain struct {
	swapchain khr_swapchain.Swapchain
	extension khr_swapchain.Extension
}

func (s *Swapchain) Images() ([]render.Image, error) {
	images, _, err := s.swapchain.SwapchainImages()
	if err != nil {
		return nil, err
	}

	wrapped := make([]render.Image, 0, len(images))
	for _, image := range images {
		wrapped = append(wrapped, image)
	}
	return wrapped, nil
}

func (s *Swapchain) AcquireNextImage(timeout time.Duration, signal render.Semaphore) (int, common.VkResult, error) {
	return s.swapchain.AcquireNextImage(timeout, signal.(*Semaphore).semaphore, nil)
}

func (s *Swapchain) Present(queue render.Queue, wait render.Semaphore, imageIndex int) (common.VkResult, error) {
	return s.extension.QueuePresent(queue.(*Queue).queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{wait.(*Semaphore).semaphore},
		Swapchains:     []khr_swapchain.Swapchain{s.swapchain},
		ImageIndices:   []int{imageIndex},
	})
}

func (s *Swapchain) Destroy() {
	s.swapchain.Destroy(nil)
}

type Queue struct {
	queue core1_0.Queue
}

func (q *Queue) Submit(buffer render.CommandBuffer, wait render.Semaphore, waitStage core1_0.PipelineStageFlags, signal render.Semaphore, fence render.Fence) error {
	_, err := q.queue.Submit(fence.(*Fence).fence, []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{wait.(*Semaphore).semaphore},
			WaitDstStageMask: []core1_0.PipelineStageFlags{waitStage},
			CommandBuffers:   []core1_0.CommandBuffer{buffer.(*CommandBuffer).buffer},
			SignalSemaphores: []core1_0.Semaphore{signal.(*Semaphore).semaphore},
		},
	})
	return err
}

type CommandPool struct {
	pool   core1_0.CommandPool
	device core1_0.Device
}

func (p *CommandPool) AllocatePrimary() (render.CommandBuffer, error) {
	buffers, _, err := p.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, err
	}
	return &CommandBuffer{buffer: buffers[0]}, nil
}

// Destroy frees the pool and every buffer allocated from it.
func (p *CommandPool) Destroy() {
	p.pool.Destroy(nil)
}

type CommandBuffer struct {
	buffer core1_0.CommandBuffer
}

func (b *CommandBuffer) Reset() error {
	_, err := b.buffer.Reset(0)
	return err
}

func (b *CommandBuffer) Begin(usage core1_0.CommandBufferUsageFlags) error {
	_, err := b.buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: usage,
	})
	return err
}

func (b *CommandBuffer) BeginRenderPass(pass render.RenderPass, framebuffer render.Framebuffer, area core1_0.Rect2D, clear core1_0.ClearValueFloat) error {
	return b.buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline, core1_0.RenderPassBeginInfo{
		RenderPass:  pass.(*RenderPass).pass,
		Framebuffer: framebuffer.(*Framebuffer).framebuffer,
		RenderArea:  area,
		ClearValues: []core1_0.ClearValue{clear},
	})
}

func (b *CommandBuffer) EndRenderPass() {
	b.buffer.CmdEndRenderPass()
}

func (b *CommandBuffer) End() error {
	_, err := b.buffer.End()
	return err
}

type ImageView struct{ view core1_0.ImageView }

func (v *ImageView) Destroy() { v.view.Destroy(nil) }

type RenderPass struct{ pass core1_0.RenderPass }

func (p *RenderPass) Destroy() { p.pass.Destroy(nil) }

type Framebuffer struct{ framebuffer core1_0.Framebuffer }

func (f *Framebuffer) Destroy() { f.framebuffer.Destroy(nil) }

type Semaphore struct{ semaphore core1_0.Semaphore }

func (s *Semaphore) Destroy() { s.semaphore.Destroy(nil) }

type Fence struct{ fence core1_0.Fence }

func (f *Fence) Destroy() { f.fence.Destroy(nil) }
