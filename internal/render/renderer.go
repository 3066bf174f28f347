package render

import (
	"log"
	"sync"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// stage marks how far construction got; teardown walks it backwards.
type stage int

const (
	stageNone stage = iota
	stageInstance
	stageDiagnostics
	stageSurface
	stagePhysicalDevice
	stageDevice
	stageSwapchain
	stageImageViews
	stageRenderPass
	stageCommandPool
	stageCommandBuffers
	stageRecorded
	stageSync
)

var stageNames = map[stage]string{
	stageInstance:       "instance",
	stageDiagnostics:    "diagnostics",
	stageSurface:        "surface",
	stagePhysicalDevice: "physical device",
	stageDevice:         "logical device",
	stageSwapchain:      "swapchain",
	stageImageViews:     "image views",
	stageRenderPass:     "render pass",
	stageCommandPool:    "command pool",
	stageCommandBuffers: "command buffers",
	stageRecorded:       "command recording",
	stageSync:           "sync objects",
}

func (s stage) String() string { return stageNames[s] }

// Renderer owns every GPU object needed to clear and present one window.
// It is safe for use by one goroutine at a time; DrawFrame and Destroy
// serialize on an internal mutex.
type Renderer struct {
	api API
	cfg Config
	log *log.Logger

	mu        sync.Mutex
	built     stage
	destroyed bool
	frames    uint64

	ctx        graphicsContext
	dev        device
	swapchain  swapchainState
	renderPass vulkan.RenderPass
	commands   commandSet
	sync       frameSync
}

// New builds the whole pipeline for target: instance, optional diagnostics,
// surface, device, swapchain and views, render pass, recorded command
// buffers and sync objects, strictly in that order. If any step fails,
// everything already built is destroyed and the error is returned.
func New(api API, target Target, cfg Config) (*Renderer, error) {
	r := &Renderer{
		api: api,
		cfg: cfg,
		log: cfg.logger(),
	}

	steps := []struct {
		stage stage
		fn    func() error
	}{
		{stageInstance, func() error { return r.createInstance(target) }},
		{stageDiagnostics, r.setupDiagnostics},
		{stageSurface, func() error { return r.createSurface(target) }},
		{stagePhysicalDevice, r.pickPhysicalDevice},
		{stageDevice, r.createLogicalDevice},
		{stageSwapchain, func() error { return r.createSwapchain(target) }},
		{stageImageViews, r.createImageViews},
		{stageRenderPass, r.createRenderPass},
		{stageCommandPool, r.createCommandPool},
		{stageCommandBuffers, r.allocateCommandBuffers},
		{stageRecorded, r.recordCommandBuffers},
		{stageSync, r.createSyncObjects},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			r.teardown()
			return nil, initError(step.stage.String(), err)
		}
		r.built = step.stage
	}

	r.log.Printf("renderer: %d swapchain images, %dx%d, format %d, queue family %d",
		len(r.swapchain.images), r.swapchain.extent.Width, r.swapchain.extent.Height,
		r.swapchain.format.Format, r.dev.family)
	return r, nil
}

// Destroy waits for the device to go idle and releases every object in
// the reverse of creation order. It is a no-op after the first call.
//
// A failed idle wait panics: releasing objects the GPU may still be using
// would corrupt driver state.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.built >= stageDevice {
		if err := r.api.DeviceWaitIdle(r.dev.logical); err != nil {
			panic(errors.Wrap(err, "renderer teardown"))
		}
	}
	r.teardown()
	r.log.Printf("renderer: destroyed after %d frames", r.frames)
}

// teardown releases everything up to r.built, newest first. The device must
// already be idle.
func (r *Renderer) teardown() {
	api := r.api
	dev := r.dev.logical
	if r.built >= stageSync {
		r.sync.destroy(api, dev)
	}
	if r.built >= stageCommandPool {
		api.DestroyCommandPool(dev, r.commands.pool)
		r.commands = commandSet{}
	}
	if r.built >= stageRenderPass {
		api.DestroyRenderPass(dev, r.renderPass)
	}
	if r.built >= stageImageViews {
		destroyImageViews(api, dev, r.swapchain.views)
		r.swapchain.views = nil
	}
	if r.built >= stageSwapchain {
		api.DestroySwapchain(dev, r.swapchain.handle)
		r.swapchain.images = nil
	}
	if r.built >= stageDevice {
		api.DestroyDevice(dev)
	}
	if r.built >= stageSurface {
		api.DestroySurface(r.ctx.instance, r.ctx.surface)
	}
	if r.built >= stageDiagnostics && r.ctx.debug != nil {
		r.ctx.debug.destroy(api, r.ctx.instance)
		r.ctx.debug = nil
	}
	if r.built >= stageInstance {
		api.DestroyInstance(r.ctx.instance)
	}
	r.built = stageNone
}

// Extent is the swapchain image size chosen at construction.
func (r *Renderer) Extent() vulkan.Extent2D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swapchain.extent
}

// Format is the chosen swapchain surface format.
func (r *Renderer) Format() vulkan.SurfaceFormat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swapchain.format
}

// ImageCount is the number of swapchain images, and of recorded command
// buffers. It drops to zero once the renderer is destroyed.
func (r *Renderer) ImageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.swapchain.images)
}

func (r *Renderer) QueueFamily() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dev.family
}

// Frames reports how many frames were presented successfully.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
