package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"vrender/internal/listener"
	"vrender/internal/render"
)

func init() {
	// GLFW/Vulkan require the main thread.
	runtime.LockOSThread()
}

var (
	debug         = flag.Bool("debug", false, "force the validation layer and debug report callback on")
	socketPath    = flag.String("socket", listener.DefaultPath, "unix socket for window commands")
	noListen      = flag.Bool("no-listen", false, "do not open the command socket")
	initial       = flag.Int("windows", 1, "number of windows to open at startup")
	width         = flag.Int("width", 800, "default window width")
	height        = flag.Int("height", 600, "default window height")
	frameTimeout  = flag.Duration("frame-timeout", 0, "bound on fence waits and image acquisition (0 waits forever)")
	statsInterval = flag.Duration("stats-interval", 5*time.Second, "how often to log frame rates (0 disables)")
)

func main() {
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalf("init glfw: %v", err)
	}
	api, err := render.LoadVulkan(glfw.GetVulkanGetInstanceProcAddress())
	if err != nil {
		glfw.Terminate()
		log.Fatalf("load vulkan: %v", err)
	}

	cfg := render.DefaultConfig()
	if *debug {
		cfg.Diagnostics = true
	}
	cfg.FrameTimeout = *frameTimeout
	log.Printf("diagnostics enabled: %v", cfg.Diagnostics)

	h := newHost(api, cfg, hostOptions{
		width:         *width,
		height:        *height,
		statsInterval: *statsInterval,
	})

	// On SIGINT/SIGTERM closer runs the bound cleanup from its own goroutine.
	// Windows belong to the main thread, so the cleanup only asks the loop
	// to stop and waits for it to finish tearing down.
	var (
		quitOnce sync.Once
		quit     = make(chan struct{})
		done     = make(chan struct{})
	)
	closer.Bind(func() {
		quitOnce.Do(func() { close(quit) })
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			log.Printf("shutdown timed out")
		}
	})
	defer closer.Close()

	if !*noListen {
		h.listen(context.Background(), *socketPath)
	}
	for i := 0; i < *initial; i++ {
		if err := h.openWindow(listener.Command{Name: listener.SpawnWindow}); err != nil {
			h.shutdown()
			glfw.Terminate()
			close(done)
			log.Fatalf("init vulkan: %v", err)
		}
	}

	h.run(quit)

	h.shutdown()
	glfw.Terminate()
	close(done)
	log.Printf("bye")
}
