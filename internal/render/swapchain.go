package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// swapchainState is fixed for the renderer's lifetime; there is no
// recreate path.
type swapchainState struct {
	handle vulkan.Swapchain
	// images are owned by handle.
	images []vulkan.Image
	format vulkan.SurfaceFormat
	extent vulkan.Extent2D
	views  []vulkan.ImageView
}

func chooseSurfaceFormat(available []vulkan.SurfaceFormat) vulkan.SurfaceFormat {
	for _, f := range available {
		if f.Format == vulkan.FormatB8g8r8a8Srgb && f.ColorSpace == vulkan.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return available[0]
}

// chooseExtent honours the surface's current extent unless it carries the
// "application decides" sentinel, in which case the window size is clamped
// into the surface limits.
func chooseExtent(caps vulkan.SurfaceCapabilities, width, height int) vulkan.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	min := caps.MinImageExtent
	max := caps.MaxImageExtent
	return vulkan.Extent2D{
		Width:  uint32(clamp(uint64(width), uint64(min.Width), uint64(max.Width))),
		Height: uint32(clamp(uint64(height), uint64(min.Height), uint64(max.Height))),
	}
}

// chooseImageCount asks for one image above the minimum. A zero maximum
// means the surface sets no upper bound.
func chooseImageCount(caps vulkan.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func (r *Renderer) createSwapchain(target Target) error {
	caps, err := r.api.SurfaceCapabilities(r.dev.physical, r.ctx.surface)
	if err != nil {
		return err
	}
	formats, err := r.api.SurfaceFormats(r.dev.physical, r.ctx.surface)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		return errors.New("surface reports no formats")
	}

	surfaceFormat := chooseSurfaceFormat(formats)
	width, height := target.GetFramebufferSize()
	extent := chooseExtent(caps, width, height)

	createInfo := vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          r.ctx.surface,
		MinImageCount:    chooseImageCount(caps),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		ImageSharingMode: vulkan.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      vulkan.PresentModeFifo,
		Clipped:          vulkan.True,
		OldSwapchain:     vulkan.Swapchain(vulkan.NullHandle),
	}

	swapchain, err := r.api.CreateSwapchain(r.dev.logical, &createInfo)
	if err != nil {
		return err
	}
	images, err := r.api.SwapchainImages(r.dev.logical, swapchain)
	if err != nil {
		r.api.DestroySwapchain(r.dev.logical, swapchain)
		return err
	}
	r.swapchain = swapchainState{
		handle: swapchain,
		images: images,
		format: surfaceFormat,
		extent: extent,
	}
	return nil
}

// createImageViews builds one view per swapchain image. On failure the
// views built so far are released before returning.
func (r *Renderer) createImageViews() error {
	views := make([]vulkan.ImageView, 0, len(r.swapchain.images))
	for i, img := range r.swapchain.images {
		viewInfo := vulkan.ImageViewCreateInfo{
			SType:    vulkan.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vulkan.ImageViewType2d,
			Format:   r.swapchain.format.Format,
			Components: vulkan.ComponentMapping{
				R: vulkan.ComponentSwizzleIdentity,
				G: vulkan.ComponentSwizzleIdentity,
				B: vulkan.ComponentSwizzleIdentity,
				A: vulkan.ComponentSwizzleIdentity,
			},
			SubresourceRange: vulkan.ImageSubresourceRange{
				AspectMask:     vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		view, err := r.api.CreateImageView(r.dev.logical, &viewInfo)
		if err != nil {
			destroyImageViews(r.api, r.dev.logical, views)
			return errors.Wrapf(err, "image view %d", i)
		}
		views = append(views, view)
	}
	r.swapchain.views = views
	return nil
}

// destroyImageViews releases views last-to-first.
func destroyImageViews(api API, dev vulkan.Device, views []vulkan.ImageView) {
	for i := len(views) - 1; i >= 0; i-- {
		api.DestroyImageView(dev, views[i])
	}
}

func clamp(val, min, max uint64) uint64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
