package render

import (
	"math"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

const DefaultSurfaceFormat = core1_0.FormatB8G8R8A8UnsignedNormalized

var compositeAlphaPriority = []khr_surface.CompositeAlphaFlags{
	khr_surface.CompositeAlphaPreMultiplied,
	khr_surface.CompositeAlphaPostMultiplied,
	khr_surface.CompositeAlphaInherit,
	khr_surface.CompositeAlphaOpaque,
}

// SwapchainState is the negotiated swapchain with its images and one view per image.
type SwapchainState struct {
	Swapchain   Swapchain
	Format      core1_0.Format
	ColorSpace  khr_surface.ColorSpace
	Extent      core1_0.Extent2D
	PresentMode khr_surface.PresentMode
	Images      []Image
	Views       []ImageView
}

// Destroy releases the views, then the swapchain.
func (s *SwapchainState) Destroy() {
	for _, view := range s.Views {
		view.Destroy()
	}
	s.Views = nil
	s.Images = nil

	if s.Swapchain != nil {
		s.Swapchain.Destroy()
		s.Swapchain = nil
	}
}

// ChooseSurfaceFormat takes the surface's first format, substituting the
// default when the surface leaves the format undefined.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) (core1_0.Format, error) {
	if len(formats) == 0 {
		return core1_0.FormatUndefined, failf(ErrSwapchainCreationFailed, "surface reports no formats")
	}

	if formats[0].Format == core1_0.FormatUndefined {
		return DefaultSurfaceFormat, nil
	}
	return formats[0].Format, nil
}

// ChooseExtent uses the surface's current extent when it is defined. When the
// surface lets the client decide, the requested size is clamped into the
// surface's supported range.
func ChooseExtent(caps *khr_surface.SurfaceCapabilities, requested core1_0.Extent2D) core1_0.Extent2D {
	if !clientDecidesExtent(caps.CurrentExtent) {
		return caps.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// The driver reports 0xFFFFFFFF; some bindings surface it as -1.
func clientDecidesExtent(extent core1_0.Extent2D) bool {
	return extent.Width < 0 || uint32(extent.Width) == math.MaxUint32
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func chooseCompositeAlpha(caps *khr_surface.SurfaceCapabilities) khr_surface.CompositeAlphaFlags {
	for _, alpha := range compositeAlphaPriority {
		if caps.SupportedCompositeAlpha&alpha != 0 {
			return alpha
		}
	}
	return khr_surface.CompositeAlphaOpaque
}

// ImageSharing returns exclusive sharing when graphics and present share a
// family. Otherwise images are shared concurrently between the graphics and
// transfer families. A concurrent list must name distinct families, so when
// graphics is also the transfer family the images stay exclusive.
func ImageSharing(indices QueueFamilyIndices) (core1_0.SharingMode, []int, error) {
	if indices.SharedGraphicsPresent() {
		return core1_0.SharingModeExclusive, nil, nil
	}

	if indices.Graphics == nil || indices.Transfer == nil {
		return core1_0.SharingModeConcurrent, nil, failf(ErrSwapchainCreationFailed,
			"graphics and present families differ and no transfer family is available for concurrent sharing")
	}

	if *indices.Graphics == *indices.Transfer {
		return core1_0.SharingModeExclusive, nil, nil
	}

	return core1_0.SharingModeConcurrent, []int{*indices.Graphics, *indices.Transfer}, nil
}

// NegotiateSwapchain turns what the surface reports into swapchain creation parameters.
func NegotiateSwapchain(caps *khr_surface.SurfaceCapabilities, formats []khr_surface.SurfaceFormat, indices QueueFamilyIndices, requested core1_0.Extent2D) (khr_swapchain.SwapchainCreateInfo, error) {
	var info khr_swapchain.SwapchainCreateInfo

	format, err := ChooseSurfaceFormat(formats)
	if err != nil {
		return info, err
	}

	sharingMode, sharedFamilies, err := ImageSharing(indices)
	if err != nil {
		return info, err
	}

	preTransform := caps.CurrentTransform
	if caps.SupportedTransforms&khr_surface.TransformIdentity != 0 {
		preTransform = khr_surface.TransformIdentity
	}

	info = khr_swapchain.SwapchainCreateInfo{
		// Only one image is acquired at a time, so the minimum is enough.
		MinImageCount:    caps.MinImageCount,
		ImageFormat:      format,
		ImageColorSpace:  khr_surface.ColorSpaceSRGBNonlinear,
		ImageExtent:      ChooseExtent(caps, requested),
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: sharedFamilies,

		PreTransform:   preTransform,
		CompositeAlpha: chooseCompositeAlpha(caps),
		PresentMode:    khr_surface.PresentModeFIFO,
		Clipped:        true,
	}
	return info, nil
}

// CreateSwapchain negotiates and creates the swapchain, then one colour view per image.
func CreateSwapchain(device Device, physical PhysicalDevice, surface Surface, indices QueueFamilyIndices, requested core1_0.Extent2D) (*SwapchainState, error) {
	caps, err := surface.Capabilities(physical)
	if err != nil {
		return nil, fail(ErrSwapchainCreationFailed, err, "query surface capabilities")
	}

	formats, err := surface.Formats(physical)
	if err != nil {
		return nil, fail(ErrSwapchainCreationFailed, err, "query surface formats")
	}

	info, err := NegotiateSwapchain(caps, formats, indices, requested)
	if err != nil {
		return nil, err
	}

	swapchain, err := device.CreateSwapchain(surface, info)
	if err != nil {
		return nil, fail(ErrSwapchainCreationFailed, err, "create swapchain")
	}

	state := &SwapchainState{
		Swapchain:   swapchain,
		Format:      info.ImageFormat,
		ColorSpace:  info.ImageColorSpace,
		Extent:      info.ImageExtent,
		PresentMode: info.PresentMode,
	}

	state.Images, err = swapchain.Images()
	if err != nil {
		state.Destroy()
		return nil, fail(ErrSwapchainCreationFailed, err, "get swapchain images")
	}

	for _, image := range state.Images {
		// Zero-valued component mapping is the identity swizzle.
		view, err := device.CreateImageView(image, core1_0.ImageViewCreateInfo{
			ViewType: core1_0.ImageViewType2D,
			Format:   state.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			state.Destroy()
			return nil, fail(ErrSwapchainCreationFailed, err, "create image view")
		}
		state.Views = append(state.Views, view)
	}

	return state, nil
}
