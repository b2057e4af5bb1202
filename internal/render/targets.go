package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// RenderTargetSet is a single-subpass clear pass and one framebuffer per swapchain view.
type RenderTargetSet struct {
	RenderPass   RenderPass
	Framebuffers []Framebuffer
	Extent       core1_0.Extent2D
}

// Destroy releases the framebuffers, then the render pass.
func (t *RenderTargetSet) Destroy() {
	for _, framebuffer := range t.Framebuffers {
		framebuffer.Destroy()
	}
	t.Framebuffers = nil

	if t.RenderPass != nil {
		t.RenderPass.Destroy()
		t.RenderPass = nil
	}
}

func clearPassInfo(format core1_0.Format) core1_0.RenderPassCreateInfo {
	return core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
	}
}

// CreateRenderTargets builds the render pass for format and one framebuffer of
// size extent for each view.
func CreateRenderTargets(device Device, format core1_0.Format, views []ImageView, extent core1_0.Extent2D) (*RenderTargetSet, error) {
	pass, err := device.CreateRenderPass(clearPassInfo(format))
	if err != nil {
		return nil, fail(ErrRenderPassCreationFailed, err, "create render pass")
	}

	targets := &RenderTargetSet{
		RenderPass: pass,
		Extent:     extent,
	}

	for idx, view := range views {
		framebuffer, err := device.CreateFramebuffer(pass, view, core1_0.FramebufferCreateInfo{
			Width:  extent.Width,
			Height: extent.Height,
			Layers: 1,
		})
		if err != nil {
			targets.Destroy()
			return nil, errors.Mark(errors.Wrapf(err, "create framebuffer %d", idx), ErrFramebufferCreationFailed)
		}
		targets.Framebuffers = append(targets.Framebuffers, framebuffer)
	}

	return targets, nil
}
