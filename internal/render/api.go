package render

import (
	"unsafe"

	"github.com/vulkan-go/vulkan"
)

// Target is the presentation target supplied by the host windowing layer.
// *glfw.Window satisfies it.
type Target interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetFramebufferSize() (width, height int)
}

// API is the slice of Vulkan the renderer drives. Every method that can
// fail returns an error built from the Vulkan result; queries return
// dereferenced structs.
type API interface {
	InstanceLayers() ([]string, error)
	CreateInstance(info *vulkan.InstanceCreateInfo) (vulkan.Instance, error)
	DestroyInstance(instance vulkan.Instance)
	CreateDebugReportCallback(instance vulkan.Instance, info *vulkan.DebugReportCallbackCreateInfo) (vulkan.DebugReportCallback, error)
	DestroyDebugReportCallback(instance vulkan.Instance, callback vulkan.DebugReportCallback)

	CreateSurface(instance vulkan.Instance, target Target) (vulkan.Surface, error)
	DestroySurface(instance vulkan.Instance, surface vulkan.Surface)

	PhysicalDevices(instance vulkan.Instance) ([]vulkan.PhysicalDevice, error)
	QueueFamilies(dev vulkan.PhysicalDevice) []vulkan.QueueFamilyProperties
	SurfaceSupport(dev vulkan.PhysicalDevice, family uint32, surface vulkan.Surface) (bool, error)
	SurfaceCapabilities(dev vulkan.PhysicalDevice, surface vulkan.Surface) (vulkan.SurfaceCapabilities, error)
	SurfaceFormats(dev vulkan.PhysicalDevice, surface vulkan.Surface) ([]vulkan.SurfaceFormat, error)

	CreateDevice(dev vulkan.PhysicalDevice, info *vulkan.DeviceCreateInfo) (vulkan.Device, error)
	DestroyDevice(device vulkan.Device)
	DeviceQueue(device vulkan.Device, family, index uint32) vulkan.Queue
	DeviceWaitIdle(device vulkan.Device) error

	CreateSwapchain(device vulkan.Device, info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error)
	DestroySwapchain(device vulkan.Device, swapchain vulkan.Swapchain)
	SwapchainImages(device vulkan.Device, swapchain vulkan.Swapchain) ([]vulkan.Image, error)
	CreateImageView(device vulkan.Device, info *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error)
	DestroyImageView(device vulkan.Device, view vulkan.ImageView)

	CreateRenderPass(device vulkan.Device, info *vulkan.RenderPassCreateInfo) (vulkan.RenderPass, error)
	DestroyRenderPass(device vulkan.Device, pass vulkan.RenderPass)
	CreateFramebuffer(device vulkan.Device, info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error)
	DestroyFramebuffer(device vulkan.Device, fb vulkan.Framebuffer)

	CreateCommandPool(device vulkan.Device, info *vulkan.CommandPoolCreateInfo) (vulkan.CommandPool, error)
	DestroyCommandPool(device vulkan.Device, pool vulkan.CommandPool)
	AllocateCommandBuffers(device vulkan.Device, info *vulkan.CommandBufferAllocateInfo) ([]vulkan.CommandBuffer, error)
	BeginCommandBuffer(cb vulkan.CommandBuffer, info *vulkan.CommandBufferBeginInfo) error
	EndCommandBuffer(cb vulkan.CommandBuffer) error
	CmdBeginRenderPass(cb vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo, contents vulkan.SubpassContents)
	CmdEndRenderPass(cb vulkan.CommandBuffer)

	CreateSemaphore(device vulkan.Device) (vulkan.Semaphore, error)
	DestroySemaphore(device vulkan.Device, sem vulkan.Semaphore)
	CreateFence(device vulkan.Device, signaled bool) (vulkan.Fence, error)
	DestroyFence(device vulkan.Device, fence vulkan.Fence)
	WaitForFence(device vulkan.Device, fence vulkan.Fence, timeout uint64) error
	ResetFence(device vulkan.Device, fence vulkan.Fence) error

	AcquireNextImage(device vulkan.Device, swapchain vulkan.Swapchain, timeout uint64, sem vulkan.Semaphore) (uint32, error)
	QueueSubmit(queue vulkan.Queue, submits []vulkan.SubmitInfo, fence vulkan.Fence) error
	QueuePresent(queue vulkan.Queue, info *vulkan.PresentInfo) error
}
