package render

import (
	"github.com/vulkan-go/vulkan"
)

// createRenderPass defines the single clear-and-store color pass shared by
// every swapchain image.
func (r *Renderer) createRenderPass() error {
	colorAttachment := vulkan.AttachmentDescription{
		Format:         r.swapchain.format.Format,
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutUndefined,
		FinalLayout:    vulkan.ImageLayoutPresentSrc,
	}

	colorRef := vulkan.AttachmentReference{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vulkan.SubpassDescription{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vulkan.AttachmentReference{colorRef},
	}

	createInfo := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vulkan.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vulkan.SubpassDescription{subpass},
	}

	pass, err := r.api.CreateRenderPass(r.dev.logical, &createInfo)
	if err != nil {
		return err
	}
	r.renderPass = pass
	return nil
}

// newFramebuffer wraps a single image view for the render pass. The caller
// owns the result.
func (r *Renderer) newFramebuffer(view vulkan.ImageView) (vulkan.Framebuffer, error) {
	createInfo := vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      r.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vulkan.ImageView{view},
		Width:           r.swapchain.extent.Width,
		Height:          r.swapchain.extent.Height,
		Layers:          1,
	}
	return r.api.CreateFramebuffer(r.dev.logical, &createInfo)
}
