package render

import (
	"log"
	"os"
	"time"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/vulkan-go/vulkan"
)

var (
	validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
	deviceExtensions = []string{"VK_KHR_swapchain"}
)

const debugReportExtension = "VK_EXT_debug_report"

// Config controls how a Renderer is built.
type Config struct {
	AppName string

	// Diagnostics enables the validation layer and the debug report
	// callback. It is off unless set explicitly.
	Diagnostics bool

	// ClearColor is the RGBA color every frame is cleared to.
	ClearColor mgl32.Vec4

	// FrameTimeout bounds the fence wait and image acquisition in DrawFrame.
	// Zero waits forever.
	FrameTimeout time.Duration

	Logger *log.Logger
}

// DefaultConfig returns the configuration used by the host binary.
func DefaultConfig() Config {
	return Config{
		AppName:     "vrender",
		Diagnostics: DiagnosticsFromEnv(),
		ClearColor:  mgl32.Vec4{0.1, 0.2, 0.3, 1.0},
		Logger:      log.Default(),
	}
}

// DiagnosticsFromEnv reads VK_VALIDATION. Unset means enabled; "0" or
// "false" in any common casing disables it.
func DiagnosticsFromEnv() bool {
	val := os.Getenv("VK_VALIDATION")
	if val == "" {
		return true
	}
	switch val {
	case "0", "false", "False", "FALSE":
		return false
	default:
		return true
	}
}

func (c Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// clearValue clamps ClearColor into the [0,1] range the UNORM and SRGB
// swapchain formats accept.
func (c Config) clearValue() vulkan.ClearValue {
	r, g, b, a := c.ClearColor.Elem()
	col := mgl32.Vec4{
		mgl32.Clamp(r, 0, 1),
		mgl32.Clamp(g, 0, 1),
		mgl32.Clamp(b, 0, 1),
		mgl32.Clamp(a, 0, 1),
	}
	return vulkan.NewClearValue(col[:])
}

func (c Config) waitTimeout() uint64 {
	if c.FrameTimeout <= 0 {
		return vulkan.MaxUint64
	}
	return uint64(c.FrameTimeout.Nanoseconds())
}
