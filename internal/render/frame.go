package render

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/core1_0"
)

// FrameTimeout bounds both the fence wait and the image acquire.
const FrameTimeout = time.Second

// FrameState is where a frame is in the acquire, record, submit, present cycle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresented
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresented:
		return "presented"
	default:
		return "unknown"
	}
}

// FrameSyncObjects is the single set of sync objects shared by every frame.
type FrameSyncObjects struct {
	InFlight       Fence
	ImageAvailable Semaphore
	RenderFinished Semaphore
}

// CreateFrameSync creates both semaphores and a signaled fence, so the first
// frame does not block.
func CreateFrameSync(device Device) (*FrameSyncObjects, error) {
	sync := &FrameSyncObjects{}
	var err error

	sync.ImageAvailable, err = device.CreateSemaphore()
	if err != nil {
		return nil, fail(ErrSyncSetupFailed, err, "create image-available semaphore")
	}

	sync.RenderFinished, err = device.CreateSemaphore()
	if err != nil {
		sync.Destroy()
		return nil, fail(ErrSyncSetupFailed, err, "create render-finished semaphore")
	}

	sync.InFlight, err = device.CreateFence(true)
	if err != nil {
		sync.Destroy()
		return nil, fail(ErrSyncSetupFailed, err, "create in-flight fence")
	}

	return sync, nil
}

// Destroy releases the fence, then the semaphores.
func (s *FrameSyncObjects) Destroy() {
	if s.InFlight != nil {
		s.InFlight.Destroy()
		s.InFlight = nil
	}
	if s.ImageAvailable != nil {
		s.ImageAvailable.Destroy()
		s.ImageAvailable = nil
	}
	if s.RenderFinished != nil {
		s.RenderFinished.Destroy()
		s.RenderFinished = nil
	}
}

// ClearColor is the background for a frame: blue pulses with the frame number.
func ClearColor(frame uint64) mgl32.Vec4 {
	blue := math.Abs(math.Sin(float64(frame) / 120))
	return mgl32.Vec4{0, 0, float32(blue), 0}
}

// FrameStats are timings of presented frames.
type FrameStats struct {
	Frames        uint64
	LastFrame     time.Duration
	LastFenceWait time.Duration
	total         time.Duration
}

func (s FrameStats) MeanFrame() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.total / time.Duration(s.Frames)
}

func (s *FrameStats) record(frame, fenceWait time.Duration) {
	s.Frames++
	s.LastFrame = frame
	s.LastFenceWait = fenceWait
	s.total += frame
}

// Draw runs one frame: wait for the previous frame's fence, acquire an image,
// record the clear pass, submit and present. Any failure is fatal and leaves
// State at the step that failed.
func (rc *RenderContext) Draw() error {
	if rc.destroyed {
		return errors.New("draw on a destroyed render context")
	}

	start := hrtime.Now()
	rc.state = FrameAcquiring

	res, err := rc.device.WaitForFence(rc.sync.InFlight, FrameTimeout)
	if err != nil {
		return fail(ErrFenceTimeout, err, "wait for in-flight fence")
	}
	if res == core1_0.VKTimeout {
		return failf(ErrFenceTimeout, "in-flight fence not signaled after %s", FrameTimeout)
	}
	fenceWait := hrtime.Since(start)

	err = rc.device.ResetFence(rc.sync.InFlight)
	if err != nil {
		return fail(ErrSubmitFailed, err, "reset in-flight fence")
	}

	imageIndex, res, err := rc.swapchain.Swapchain.AcquireNextImage(FrameTimeout, rc.sync.ImageAvailable)
	if err != nil {
		return fail(ErrAcquireFailed, err, "acquire next image")
	}
	if res != core1_0.VKSuccess {
		return failf(ErrAcquireFailed, "acquire next image returned %v", res)
	}
	if imageIndex < 0 || imageIndex >= len(rc.targets.Framebuffers) {
		return failf(ErrAcquireFailed, "acquired image %d but only %d framebuffers exist", imageIndex, len(rc.targets.Framebuffers))
	}

	rc.state = FrameRecording
	err = rc.record(imageIndex)
	if err != nil {
		return err
	}

	err = rc.graphicsQueue.Submit(rc.commandBuffer,
		rc.sync.ImageAvailable, core1_0.PipelineStageColorAttachmentOutput,
		rc.sync.RenderFinished, rc.sync.InFlight)
	if err != nil {
		return fail(ErrSubmitFailed, err, "submit command buffer")
	}
	rc.state = FrameSubmitted

	res, err = rc.swapchain.Swapchain.Present(rc.graphicsQueue, rc.sync.RenderFinished, imageIndex)
	if err != nil {
		return fail(ErrPresentFailed, err, "present image")
	}
	if res != core1_0.VKSuccess {
		return failf(ErrPresentFailed, "present returned %v", res)
	}
	rc.state = FramePresented

	rc.stats.record(hrtime.Since(start), fenceWait)
	rc.logFrame(imageIndex)

	rc.frame++
	rc.state = FrameIdle
	return nil
}

func (rc *RenderContext) record(imageIndex int) error {
	err := rc.commandBuffer.Reset()
	if err != nil {
		return fail(ErrRecordFailed, err, "reset command buffer")
	}

	err = rc.commandBuffer.Begin(core1_0.CommandBufferUsageOneTimeSubmit)
	if err != nil {
		return fail(ErrRecordFailed, err, "begin command buffer")
	}

	color := ClearColor(rc.frame)
	err = rc.commandBuffer.BeginRenderPass(rc.targets.RenderPass, rc.targets.Framebuffers[imageIndex],
		core1_0.Rect2D{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: rc.targets.Extent,
		},
		core1_0.ClearValueFloat{color[0], color[1], color[2], color[3]})
	if err != nil {
		return fail(ErrRecordFailed, err, "begin render pass")
	}
	rc.commandBuffer.EndRenderPass()

	err = rc.commandBuffer.End()
	if err != nil {
		return fail(ErrRecordFailed, err, "end command buffer")
	}
	return nil
}

func (rc *RenderContext) logFrame(imageIndex int) {
	rc.log.Debug("frame presented", "frame", rc.frame, "image", imageIndex)

	interval := rc.opts.FrameLogInterval
	if interval == 0 || (rc.frame+1)%interval != 0 {
		return
	}
	rc.log.Info("frame timing",
		"frame", rc.frame,
		"mean", rc.stats.MeanFrame(),
		"last", rc.stats.LastFrame,
		"fenceWait", rc.stats.LastFenceWait)
}
