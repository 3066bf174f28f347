package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// frameSync is the single in-flight slot. inFlight starts signaled so the
// first DrawFrame does not block.
type frameSync struct {
	imageAvailable vulkan.Semaphore
	renderFinished vulkan.Semaphore
	inFlight       vulkan.Fence
}

func (r *Renderer) createSyncObjects() error {
	dev := r.dev.logical
	imageAvailable, err := r.api.CreateSemaphore(dev)
	if err != nil {
		return err
	}
	renderFinished, err := r.api.CreateSemaphore(dev)
	if err != nil {
		r.api.DestroySemaphore(dev, imageAvailable)
		return err
	}
	inFlight, err := r.api.CreateFence(dev, true)
	if err != nil {
		r.api.DestroySemaphore(dev, renderFinished)
		r.api.DestroySemaphore(dev, imageAvailable)
		return err
	}
	r.sync = frameSync{
		imageAvailable: imageAvailable,
		renderFinished: renderFinished,
		inFlight:       inFlight,
	}
	return nil
}

func (s frameSync) destroy(api API, dev vulkan.Device) {
	api.DestroyFence(dev, s.inFlight)
	api.DestroySemaphore(dev, s.renderFinished)
	api.DestroySemaphore(dev, s.imageAvailable)
}

// DrawFrame waits for the previous frame, acquires the next swapchain
// image, submits its pre-recorded command buffer and presents it.
//
// With a zero Config.FrameTimeout both waits are unbounded: a lost device
// blocks the caller forever. Errors are *FrameError values; none are
// retried, and an out-of-date swapchain is not recoverable.
func (r *Renderer) DrawFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrDestroyed
	}

	dev := r.dev.logical
	timeout := r.cfg.waitTimeout()

	if err := r.api.WaitForFence(dev, r.sync.inFlight, timeout); err != nil {
		return frameError("wait", err)
	}
	if err := r.api.ResetFence(dev, r.sync.inFlight); err != nil {
		return frameError("reset", err)
	}

	imageIndex, err := r.api.AcquireNextImage(dev, r.swapchain.handle, timeout, r.sync.imageAvailable)
	if err != nil {
		return frameError("acquire", err)
	}
	if int(imageIndex) >= len(r.commands.buffers) {
		return frameError("acquire", errors.Errorf("image index %d out of range (%d images)", imageIndex, len(r.commands.buffers)))
	}

	waitStages := []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit)}
	submitInfo := vulkan.SubmitInfo{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{r.sync.imageAvailable},
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{r.commands.buffers[imageIndex]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{r.sync.renderFinished},
	}
	if err := r.api.QueueSubmit(r.dev.queue, []vulkan.SubmitInfo{submitInfo}, r.sync.inFlight); err != nil {
		return frameError("submit", err)
	}

	presentInfo := vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{r.sync.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{r.swapchain.handle},
		PImageIndices:      []uint32{imageIndex},
	}
	if err := r.api.QueuePresent(r.dev.queue, &presentInfo); err != nil {
		return frameError("present", err)
	}
	r.frames++
	return nil
}
