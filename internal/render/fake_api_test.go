package render

import (
	"math"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var (
	handleSlots [16]byte
	bufferSlots [8]byte
)

// fakeHandle returns a distinct non-nil physical device handle for tests.
func fakeHandle(i int) vulkan.PhysicalDevice {
	return vulkan.PhysicalDevice(unsafe.Pointer(&handleSlots[i]))
}

type fakeDevice struct {
	families []vulkan.QueueFamilyProperties
	// present[i] is the present-support answer for family i.
	present []bool
	// probeErr[i] makes the present-support query for family i fail.
	probeErr map[uint32]error
}

type fakeTarget struct {
	width, height int
	extensions    []string
}

func (t *fakeTarget) GetRequiredInstanceExtensions() []string { return t.extensions }

func (t *fakeTarget) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	return 0, nil
}

func (t *fakeTarget) GetFramebufferSize() (int, int) { return t.width, t.height }

// fakeAPI records every call in order and answers queries from its fields.
type fakeAPI struct {
	events []string
	fail   map[string]error

	layers   []string
	devices  []vulkan.PhysicalDevice
	gpus     map[vulkan.PhysicalDevice]*fakeDevice
	caps     vulkan.SurfaceCapabilities
	formats  []vulkan.SurfaceFormat
	acquired []uint32

	instanceInfo  *vulkan.InstanceCreateInfo
	deviceInfo    *vulkan.DeviceCreateInfo
	swapchainInfo *vulkan.SwapchainCreateInfo
	renderPass    *vulkan.RenderPassCreateInfo
	framebuffers  []vulkan.FramebufferCreateInfo
	passBegins    []vulkan.RenderPassBeginInfo
	submits       []vulkan.SubmitInfo
	presents      []vulkan.PresentInfo
	fenceSignaled bool
	acquireCalls  int
}

// newFakeAPI describes one device with one graphics+present family and a
// surface that picks its own extent.
func newFakeAPI() *fakeAPI {
	dev := fakeHandle(0)
	return &fakeAPI{
		fail:    map[string]error{},
		layers:  []string{"VK_LAYER_KHRONOS_validation"},
		devices: []vulkan.PhysicalDevice{dev},
		gpus: map[vulkan.PhysicalDevice]*fakeDevice{
			dev: {
				families: []vulkan.QueueFamilyProperties{{QueueFlags: vulkan.QueueFlags(vulkan.QueueGraphicsBit), QueueCount: 1}},
				present:  []bool{true},
			},
		},
		caps: vulkan.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  0,
			CurrentExtent:  vulkan.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent: vulkan.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vulkan.Extent2D{Width: 4096, Height: 4096},
		},
		formats: []vulkan.SurfaceFormat{{Format: vulkan.FormatR8g8b8a8Unorm, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}},
	}
}

func (f *fakeAPI) record(event string) error {
	f.events = append(f.events, event)
	if err, ok := f.fail[event]; ok {
		return err
	}
	return nil
}

// lifecycle returns only create/destroy events, skipping the given kinds.
func (f *fakeAPI) lifecycle(skip ...string) []string {
	var out []string
next:
	for _, e := range f.events {
		if !strings.HasPrefix(e, "create ") && !strings.HasPrefix(e, "destroy ") {
			continue
		}
		for _, s := range skip {
			if strings.HasSuffix(e, " "+s) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeAPI) count(event string) int {
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

func (f *fakeAPI) InstanceLayers() ([]string, error) {
	return f.layers, f.record("enumerate layers")
}

func (f *fakeAPI) CreateInstance(info *vulkan.InstanceCreateInfo) (vulkan.Instance, error) {
	f.instanceInfo = info
	return nil, f.record("create instance")
}

func (f *fakeAPI) DestroyInstance(vulkan.Instance) { f.record("destroy instance") }

func (f *fakeAPI) CreateDebugReportCallback(vulkan.Instance, *vulkan.DebugReportCallbackCreateInfo) (vulkan.DebugReportCallback, error) {
	return nil, f.record("create debug")
}

func (f *fakeAPI) DestroyDebugReportCallback(vulkan.Instance, vulkan.DebugReportCallback) {
	f.record("destroy debug")
}

func (f *fakeAPI) CreateSurface(vulkan.Instance, Target) (vulkan.Surface, error) {
	return nil, f.record("create surface")
}

func (f *fakeAPI) DestroySurface(vulkan.Instance, vulkan.Surface) { f.record("destroy surface") }

func (f *fakeAPI) PhysicalDevices(vulkan.Instance) ([]vulkan.PhysicalDevice, error) {
	return f.devices, f.record("enumerate devices")
}

func (f *fakeAPI) QueueFamilies(dev vulkan.PhysicalDevice) []vulkan.QueueFamilyProperties {
	return f.gpus[dev].families
}

func (f *fakeAPI) SurfaceSupport(dev vulkan.PhysicalDevice, family uint32, _ vulkan.Surface) (bool, error) {
	gpu := f.gpus[dev]
	if err, ok := gpu.probeErr[family]; ok {
		return true, err
	}
	return gpu.present[family], nil
}

func (f *fakeAPI) SurfaceCapabilities(vulkan.PhysicalDevice, vulkan.Surface) (vulkan.SurfaceCapabilities, error) {
	return f.caps, f.record("surface capabilities")
}

func (f *fakeAPI) SurfaceFormats(vulkan.PhysicalDevice, vulkan.Surface) ([]vulkan.SurfaceFormat, error) {
	return f.formats, f.record("surface formats")
}

func (f *fakeAPI) CreateDevice(_ vulkan.PhysicalDevice, info *vulkan.DeviceCreateInfo) (vulkan.Device, error) {
	f.deviceInfo = info
	return nil, f.record("create device")
}

func (f *fakeAPI) DestroyDevice(vulkan.Device) { f.record("destroy device") }

func (f *fakeAPI) DeviceQueue(vulkan.Device, uint32, uint32) vulkan.Queue { return nil }

func (f *fakeAPI) DeviceWaitIdle(vulkan.Device) error {
	return f.record("idle")
}

func (f *fakeAPI) CreateSwapchain(_ vulkan.Device, info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	f.swapchainInfo = info
	return nil, f.record("create swapchain")
}

func (f *fakeAPI) DestroySwapchain(vulkan.Device, vulkan.Swapchain) { f.record("destroy swapchain") }

func (f *fakeAPI) SwapchainImages(vulkan.Device, vulkan.Swapchain) ([]vulkan.Image, error) {
	return make([]vulkan.Image, f.swapchainInfo.MinImageCount), f.record("swapchain images")
}

func (f *fakeAPI) CreateImageView(vulkan.Device, *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error) {
	return nil, f.record("create view")
}

func (f *fakeAPI) DestroyImageView(vulkan.Device, vulkan.ImageView) { f.record("destroy view") }

func (f *fakeAPI) CreateRenderPass(_ vulkan.Device, info *vulkan.RenderPassCreateInfo) (vulkan.RenderPass, error) {
	f.renderPass = info
	return nil, f.record("create renderpass")
}

func (f *fakeAPI) DestroyRenderPass(vulkan.Device, vulkan.RenderPass) { f.record("destroy renderpass") }

func (f *fakeAPI) CreateFramebuffer(_ vulkan.Device, info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error) {
	f.framebuffers = append(f.framebuffers, *info)
	return nil, f.record("create framebuffer")
}

func (f *fakeAPI) DestroyFramebuffer(vulkan.Device, vulkan.Framebuffer) {
	f.record("destroy framebuffer")
}

func (f *fakeAPI) CreateCommandPool(vulkan.Device, *vulkan.CommandPoolCreateInfo) (vulkan.CommandPool, error) {
	return nil, f.record("create pool")
}

func (f *fakeAPI) DestroyCommandPool(vulkan.Device, vulkan.CommandPool) { f.record("destroy pool") }

func (f *fakeAPI) AllocateCommandBuffers(_ vulkan.Device, info *vulkan.CommandBufferAllocateInfo) ([]vulkan.CommandBuffer, error) {
	buffers := make([]vulkan.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		buffers[i] = vulkan.CommandBuffer(unsafe.Pointer(&bufferSlots[i]))
	}
	return buffers, f.record("allocate buffers")
}

func (f *fakeAPI) BeginCommandBuffer(vulkan.CommandBuffer, *vulkan.CommandBufferBeginInfo) error {
	return f.record("begin buffer")
}

func (f *fakeAPI) EndCommandBuffer(vulkan.CommandBuffer) error { return f.record("end buffer") }

func (f *fakeAPI) CmdBeginRenderPass(_ vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo, _ vulkan.SubpassContents) {
	f.passBegins = append(f.passBegins, *info)
	f.record("begin pass")
}

func (f *fakeAPI) CmdEndRenderPass(vulkan.CommandBuffer) { f.record("end pass") }

func (f *fakeAPI) CreateSemaphore(vulkan.Device) (vulkan.Semaphore, error) {
	return nil, f.record("create semaphore")
}

func (f *fakeAPI) DestroySemaphore(vulkan.Device, vulkan.Semaphore) { f.record("destroy semaphore") }

func (f *fakeAPI) CreateFence(_ vulkan.Device, signaled bool) (vulkan.Fence, error) {
	f.fenceSignaled = signaled
	return nil, f.record("create fence")
}

func (f *fakeAPI) DestroyFence(vulkan.Device, vulkan.Fence) { f.record("destroy fence") }

// WaitForFence models a GPU that completes submitted work by the time the
// CPU waits, unless a failure is injected.
func (f *fakeAPI) WaitForFence(_ vulkan.Device, _ vulkan.Fence, timeout uint64) error {
	if err := f.record("wait"); err != nil {
		return err
	}
	if !f.fenceSignaled {
		return errors.New("fake: wait on a fence that was never submitted")
	}
	return nil
}

func (f *fakeAPI) ResetFence(vulkan.Device, vulkan.Fence) error {
	f.fenceSignaled = false
	return f.record("reset")
}

func (f *fakeAPI) AcquireNextImage(vulkan.Device, vulkan.Swapchain, uint64, vulkan.Semaphore) (uint32, error) {
	if err := f.record("acquire"); err != nil {
		return 0, err
	}
	var index uint32
	if f.acquireCalls < len(f.acquired) {
		index = f.acquired[f.acquireCalls]
	} else {
		index = uint32(f.acquireCalls) % f.swapchainInfo.MinImageCount
	}
	f.acquireCalls++
	return index, nil
}

func (f *fakeAPI) QueueSubmit(_ vulkan.Queue, submits []vulkan.SubmitInfo, _ vulkan.Fence) error {
	if f.fenceSignaled {
		return errors.New("fake: submit while the in-flight fence is still signaled")
	}
	f.submits = append(f.submits, submits...)
	if err := f.record("submit"); err != nil {
		return err
	}
	// The fake GPU finishes instantly.
	f.fenceSignaled = true
	return nil
}

func (f *fakeAPI) QueuePresent(_ vulkan.Queue, info *vulkan.PresentInfo) error {
	f.presents = append(f.presents, *info)
	return f.record("present")
}
