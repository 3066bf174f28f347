package render

import (
	"log"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// diagnostics is the optional validation capability of a graphics context.
// It only exists when Config.Diagnostics is set.
type diagnostics struct {
	callback vulkan.DebugReportCallback
}

func validationLayersSupported(api API) bool {
	available, err := api.InstanceLayers()
	if err != nil {
		return false
	}
	supported := make(map[string]bool, len(available))
	for _, name := range available {
		supported[name] = true
	}
	for _, l := range validationLayers {
		if !supported[l] {
			return false
		}
	}
	return true
}

func newDiagnostics(api API, instance vulkan.Instance, logger *log.Logger) (*diagnostics, error) {
	createInfo := vulkan.DebugReportCallbackCreateInfo{
		SType: vulkan.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vulkan.DebugReportFlags(
			vulkan.DebugReportErrorBit |
				vulkan.DebugReportWarningBit |
				vulkan.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vulkan.Bool32 {
			logger.Printf("[VK][%s][0x%x] %s (code=%d)", layerPrefix, flags, message, messageCode)
			return vulkan.False
		},
	}
	callback, err := api.CreateDebugReportCallback(instance, &createInfo)
	if err != nil {
		return nil, errors.Wrap(err, "debug report")
	}
	return &diagnostics{callback: callback}, nil
}

func (d *diagnostics) destroy(api API, instance vulkan.Instance) {
	api.DestroyDebugReportCallback(instance, d.callback)
}
