package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// commandSet holds the pool and the pre-recorded buffer for each swapchain
// image; buffers[i] draws into views[i].
type commandSet struct {
	pool    vulkan.CommandPool
	buffers []vulkan.CommandBuffer
}

func (r *Renderer) createCommandPool() error {
	poolInfo := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: r.dev.family,
	}
	pool, err := r.api.CreateCommandPool(r.dev.logical, &poolInfo)
	if err != nil {
		return err
	}
	r.commands.pool = pool
	return nil
}

// allocateCommandBuffers takes one primary buffer per image view. The
// buffers are freed together with the pool.
func (r *Renderer) allocateCommandBuffers() error {
	allocInfo := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.commands.pool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(r.swapchain.views)),
	}
	buffers, err := r.api.AllocateCommandBuffers(r.dev.logical, &allocInfo)
	if err != nil {
		return err
	}
	r.commands.buffers = buffers
	return nil
}

// recordCommandBuffers records every buffer once. The content never depends
// on per-frame state, so nothing is re-recorded later.
func (r *Renderer) recordCommandBuffers() error {
	for i, cb := range r.commands.buffers {
		if err := r.recordCommandBuffer(cb, i); err != nil {
			return errors.Wrapf(err, "record command buffer %d", i)
		}
	}
	return nil
}

func (r *Renderer) recordCommandBuffer(cb vulkan.CommandBuffer, imageIndex int) error {
	beginInfo := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
	}
	if err := r.api.BeginCommandBuffer(cb, &beginInfo); err != nil {
		return err
	}

	fb, err := r.newFramebuffer(r.swapchain.views[imageIndex])
	if err != nil {
		return err
	}
	defer r.api.DestroyFramebuffer(r.dev.logical, fb)

	clearValues := []vulkan.ClearValue{r.cfg.clearValue()}
	renderPassInfo := vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.renderPass,
		Framebuffer: fb,
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: r.swapchain.extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	r.api.CmdBeginRenderPass(cb, &renderPassInfo, vulkan.SubpassContentsInline)
	r.api.CmdEndRenderPass(cb)

	return r.api.EndCommandBuffer(cb)
}
