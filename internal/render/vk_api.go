package render

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

type vkAPI struct{}

// LoadVulkan binds the Vulkan loader through the given vkGetInstanceProcAddr
// (for example glfw.GetVulkanGetInstanceProcAddress()) and returns the
// API backed by it. It must be called once per process.
func LoadVulkan(procAddr unsafe.Pointer) (API, error) {
	vulkan.SetGetInstanceProcAddr(procAddr)
	if err := vulkan.Init(); err != nil {
		return nil, errors.Wrap(err, "vulkan init")
	}
	return vkAPI{}, nil
}

func (vkAPI) InstanceLayers() ([]string, error) {
	var count uint32
	if err := resultError("enumerate instance layers", vulkan.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vulkan.LayerProperties, count)
	if err := resultError("enumerate instance layers", vulkan.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for i := range props {
		props[i].Deref()
		names = append(names, vulkan.ToString(props[i].LayerName[:]))
	}
	return names, nil
}

func (vkAPI) CreateInstance(info *vulkan.InstanceCreateInfo) (vulkan.Instance, error) {
	var instance vulkan.Instance
	if err := resultError("create instance", vulkan.CreateInstance(info, nil, &instance)); err != nil {
		return nil, err
	}
	if err := vulkan.InitInstance(instance); err != nil {
		vulkan.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vkInitInstance")
	}
	return instance, nil
}

func (vkAPI) DestroyInstance(instance vulkan.Instance) {
	vulkan.DestroyInstance(instance, nil)
}

func (vkAPI) CreateDebugReportCallback(instance vulkan.Instance, info *vulkan.DebugReportCallbackCreateInfo) (vulkan.DebugReportCallback, error) {
	var callback vulkan.DebugReportCallback
	err := resultError("create debug callback", vulkan.CreateDebugReportCallback(instance, info, nil, &callback))
	return callback, err
}

func (vkAPI) DestroyDebugReportCallback(instance vulkan.Instance, callback vulkan.DebugReportCallback) {
	vulkan.DestroyDebugReportCallback(instance, callback, nil)
}

func (vkAPI) CreateSurface(instance vulkan.Instance, target Target) (vulkan.Surface, error) {
	surfacePtr, err := target.CreateWindowSurface(instance, nil)
	if err != nil {
		return vulkan.Surface(vulkan.NullHandle), errors.Wrap(err, "create window surface")
	}
	return vulkan.SurfaceFromPointer(surfacePtr), nil
}

func (vkAPI) DestroySurface(instance vulkan.Instance, surface vulkan.Surface) {
	vulkan.DestroySurface(instance, surface, nil)
}

func (vkAPI) PhysicalDevices(instance vulkan.Instance) ([]vulkan.PhysicalDevice, error) {
	var count uint32
	if err := resultError("enumerate physical devices", vulkan.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vulkan.PhysicalDevice, count)
	if count == 0 {
		return devices, nil
	}
	if err := resultError("enumerate physical devices list", vulkan.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, err
	}
	return devices[:count], nil
}

func (vkAPI) QueueFamilies(dev vulkan.PhysicalDevice) []vulkan.QueueFamilyProperties {
	var count uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	props := make([]vulkan.QueueFamilyProperties, count)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(dev, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return props
}

func (vkAPI) SurfaceSupport(dev vulkan.PhysicalDevice, family uint32, surface vulkan.Surface) (bool, error) {
	var present vulkan.Bool32
	if err := resultError("surface support", vulkan.GetPhysicalDeviceSurfaceSupport(dev, family, surface, &present)); err != nil {
		return false, err
	}
	return present == vulkan.True, nil
}

func (vkAPI) SurfaceCapabilities(dev vulkan.PhysicalDevice, surface vulkan.Surface) (vulkan.SurfaceCapabilities, error) {
	var caps vulkan.SurfaceCapabilities
	if err := resultError("surface capabilities", vulkan.GetPhysicalDeviceSurfaceCapabilities(dev, surface, &caps)); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (vkAPI) SurfaceFormats(dev vulkan.PhysicalDevice, surface vulkan.Surface) ([]vulkan.SurfaceFormat, error) {
	var count uint32
	if err := resultError("surface formats", vulkan.GetPhysicalDeviceSurfaceFormats(dev, surface, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	formats := make([]vulkan.SurfaceFormat, count)
	if err := resultError("surface formats", vulkan.GetPhysicalDeviceSurfaceFormats(dev, surface, &count, formats)); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats[:count], nil
}

func (vkAPI) CreateDevice(dev vulkan.PhysicalDevice, info *vulkan.DeviceCreateInfo) (vulkan.Device, error) {
	var device vulkan.Device
	err := resultError("create logical device", vulkan.CreateDevice(dev, info, nil, &device))
	return device, err
}

func (vkAPI) DestroyDevice(device vulkan.Device) {
	vulkan.DestroyDevice(device, nil)
}

func (vkAPI) DeviceQueue(device vulkan.Device, family, index uint32) vulkan.Queue {
	var queue vulkan.Queue
	vulkan.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (vkAPI) DeviceWaitIdle(device vulkan.Device) error {
	return resultError("device wait idle", vulkan.DeviceWaitIdle(device))
}

func (vkAPI) CreateSwapchain(device vulkan.Device, info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	var swapchain vulkan.Swapchain
	err := resultError("create swapchain", vulkan.CreateSwapchain(device, info, nil, &swapchain))
	return swapchain, err
}

func (vkAPI) DestroySwapchain(device vulkan.Device, swapchain vulkan.Swapchain) {
	vulkan.DestroySwapchain(device, swapchain, nil)
}

func (vkAPI) SwapchainImages(device vulkan.Device, swapchain vulkan.Swapchain) ([]vulkan.Image, error) {
	var count uint32
	if err := resultError("swapchain images", vulkan.GetSwapchainImages(device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vulkan.Image, count)
	if err := resultError("swapchain images", vulkan.GetSwapchainImages(device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images[:count], nil
}

func (vkAPI) CreateImageView(device vulkan.Device, info *vulkan.ImageViewCreateInfo) (vulkan.ImageView, error) {
	var view vulkan.ImageView
	err := resultError("create image view", vulkan.CreateImageView(device, info, nil, &view))
	return view, err
}

func (vkAPI) DestroyImageView(device vulkan.Device, view vulkan.ImageView) {
	vulkan.DestroyImageView(device, view, nil)
}

func (vkAPI) CreateRenderPass(device vulkan.Device, info *vulkan.RenderPassCreateInfo) (vulkan.RenderPass, error) {
	var pass vulkan.RenderPass
	err := resultError("create render pass", vulkan.CreateRenderPass(device, info, nil, &pass))
	return pass, err
}

func (vkAPI) DestroyRenderPass(device vulkan.Device, pass vulkan.RenderPass) {
	vulkan.DestroyRenderPass(device, pass, nil)
}

func (vkAPI) CreateFramebuffer(device vulkan.Device, info *vulkan.FramebufferCreateInfo) (vulkan.Framebuffer, error) {
	var fb vulkan.Framebuffer
	err := resultError("create framebuffer", vulkan.CreateFramebuffer(device, info, nil, &fb))
	return fb, err
}

func (vkAPI) DestroyFramebuffer(device vulkan.Device, fb vulkan.Framebuffer) {
	vulkan.DestroyFramebuffer(device, fb, nil)
}

func (vkAPI) CreateCommandPool(device vulkan.Device, info *vulkan.CommandPoolCreateInfo) (vulkan.CommandPool, error) {
	var pool vulkan.CommandPool
	err := resultError("create command pool", vulkan.CreateCommandPool(device, info, nil, &pool))
	return pool, err
}

func (vkAPI) DestroyCommandPool(device vulkan.Device, pool vulkan.CommandPool) {
	vulkan.DestroyCommandPool(device, pool, nil)
}

func (vkAPI) AllocateCommandBuffers(device vulkan.Device, info *vulkan.CommandBufferAllocateInfo) ([]vulkan.CommandBuffer, error) {
	buffers := make([]vulkan.CommandBuffer, info.CommandBufferCount)
	if err := resultError("allocate command buffers", vulkan.AllocateCommandBuffers(device, info, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (vkAPI) BeginCommandBuffer(cb vulkan.CommandBuffer, info *vulkan.CommandBufferBeginInfo) error {
	return resultError("begin command buffer", vulkan.BeginCommandBuffer(cb, info))
}

func (vkAPI) EndCommandBuffer(cb vulkan.CommandBuffer) error {
	return resultError("end command buffer", vulkan.EndCommandBuffer(cb))
}

func (vkAPI) CmdBeginRenderPass(cb vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo, contents vulkan.SubpassContents) {
	vulkan.CmdBeginRenderPass(cb, info, contents)
}

func (vkAPI) CmdEndRenderPass(cb vulkan.CommandBuffer) {
	vulkan.CmdEndRenderPass(cb)
}

func (vkAPI) CreateSemaphore(device vulkan.Device) (vulkan.Semaphore, error) {
	info := vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}
	var sem vulkan.Semaphore
	err := resultError("create semaphore", vulkan.CreateSemaphore(device, &info, nil, &sem))
	return sem, err
}

func (vkAPI) DestroySemaphore(device vulkan.Device, sem vulkan.Semaphore) {
	vulkan.DestroySemaphore(device, sem, nil)
}

func (vkAPI) CreateFence(device vulkan.Device, signaled bool) (vulkan.Fence, error) {
	info := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	var fence vulkan.Fence
	err := resultError("create fence", vulkan.CreateFence(device, &info, nil, &fence))
	return fence, err
}

func (vkAPI) DestroyFence(device vulkan.Device, fence vulkan.Fence) {
	vulkan.DestroyFence(device, fence, nil)
}

func (vkAPI) WaitForFence(device vulkan.Device, fence vulkan.Fence, timeout uint64) error {
	return resultError("wait for fence", vulkan.WaitForFences(device, 1, []vulkan.Fence{fence}, vulkan.True, timeout))
}

func (vkAPI) ResetFence(device vulkan.Device, fence vulkan.Fence) error {
	return resultError("reset fence", vulkan.ResetFences(device, 1, []vulkan.Fence{fence}))
}

func (vkAPI) AcquireNextImage(device vulkan.Device, swapchain vulkan.Swapchain, timeout uint64, sem vulkan.Semaphore) (uint32, error) {
	var index uint32
	res := vulkan.AcquireNextImage(device, swapchain, timeout, sem, vulkan.Fence(vulkan.NullHandle), &index)
	if res == vulkan.Suboptimal {
		return index, nil
	}
	return index, resultError("acquire next image", res)
}

func (vkAPI) QueueSubmit(queue vulkan.Queue, submits []vulkan.SubmitInfo, fence vulkan.Fence) error {
	return resultError("queue submit", vulkan.QueueSubmit(queue, uint32(len(submits)), submits, fence))
}

func (vkAPI) QueuePresent(queue vulkan.Queue, info *vulkan.PresentInfo) error {
	res := vulkan.QueuePresent(queue, info)
	if res == vulkan.Suboptimal {
		return nil
	}
	return resultError("queue present", res)
}
