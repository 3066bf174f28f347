package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// graphicsContext is the process-facing half of the renderer: the
// instance, its optional diagnostics and the window surface.
type graphicsContext struct {
	instance vulkan.Instance
	debug    *diagnostics
	surface  vulkan.Surface
}

type device struct {
	physical vulkan.PhysicalDevice
	logical  vulkan.Device
	// queue belongs to logical and dies with it.
	queue  vulkan.Queue
	family uint32
}

func (r *Renderer) createInstance(target Target) error {
	if r.cfg.Diagnostics && !validationLayersSupported(r.api) {
		return errors.New("requested validation layers not available")
	}

	appInfo := vulkan.ApplicationInfo{
		SType:              vulkan.StructureTypeApplicationInfo,
		PApplicationName:   r.cfg.AppName,
		ApplicationVersion: vulkan.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine",
		EngineVersion:      vulkan.MakeVersion(1, 0, 0),
		ApiVersion:         vulkan.MakeVersion(1, 1, 0),
	}

	extensions := append([]string(nil), target.GetRequiredInstanceExtensions()...)
	if r.cfg.Diagnostics {
		extensions = append(extensions, debugReportExtension)
	}

	createInfo := vulkan.InstanceCreateInfo{
		SType:                   vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	if r.cfg.Diagnostics {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = validationLayers
	}

	instance, err := r.api.CreateInstance(&createInfo)
	if err != nil {
		return err
	}
	r.ctx.instance = instance
	return nil
}

func (r *Renderer) setupDiagnostics() error {
	if !r.cfg.Diagnostics {
		return nil
	}
	debug, err := newDiagnostics(r.api, r.ctx.instance, r.log)
	if err != nil {
		return err
	}
	r.ctx.debug = debug
	return nil
}

func (r *Renderer) createSurface(target Target) error {
	surface, err := r.api.CreateSurface(r.ctx.instance, target)
	if err != nil {
		return err
	}
	r.ctx.surface = surface
	return nil
}

// selectDevice returns the first physical device and queue family that can
// both run graphics work and present to surface. A failing present-support
// probe counts as "no support" for that family.
func selectDevice(api API, instance vulkan.Instance, surface vulkan.Surface) (vulkan.PhysicalDevice, uint32, error) {
	devices, err := api.PhysicalDevices(instance)
	if err != nil {
		return nil, 0, err
	}
	for _, dev := range devices {
		for i, props := range api.QueueFamilies(dev) {
			if props.QueueFlags&vulkan.QueueFlags(vulkan.QueueGraphicsBit) == 0 {
				continue
			}
			present, err := api.SurfaceSupport(dev, uint32(i), surface)
			if err != nil || !present {
				continue
			}
			return dev, uint32(i), nil
		}
	}
	return nil, 0, errors.Wrapf(ErrNoSuitableDevice, "%d devices enumerated", len(devices))
}

func (r *Renderer) pickPhysicalDevice() error {
	dev, family, err := selectDevice(r.api, r.ctx.instance, r.ctx.surface)
	if err != nil {
		return err
	}
	r.dev.physical = dev
	r.dev.family = family
	return nil
}

func (r *Renderer) createLogicalDevice() error {
	queueInfos := []vulkan.DeviceQueueCreateInfo{{
		SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: r.dev.family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	createInfo := vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		PQueueCreateInfos:       queueInfos,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{{}},
		PpEnabledExtensionNames: deviceExtensions,
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
	}
	if r.cfg.Diagnostics {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = validationLayers
	}

	logical, err := r.api.CreateDevice(r.dev.physical, &createInfo)
	if err != nil {
		return err
	}
	r.dev.logical = logical
	r.dev.queue = r.api.DeviceQueue(logical, r.dev.family, 0)
	return nil
}
