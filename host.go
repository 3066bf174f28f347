package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"

	"vrender/internal/listener"
	"vrender/internal/render"
)

type hostOptions struct {
	width, height int
	statsInterval time.Duration
}

// hostWindow pairs a glfw window with the renderer drawing into it.
type hostWindow struct {
	title    string
	window   *glfw.Window
	renderer *render.Renderer
	stats    *frameStats
}

func (w *hostWindow) close() {
	w.renderer.Destroy()
	w.window.Destroy()
}

// host owns every window and runs on the locked main thread. The listener
// only ever touches the spawn channel.
type host struct {
	api  render.API
	cfg  render.Config
	opts hostOptions
	log  *log.Logger

	windows []*hostWindow
	opened  int
	spawn   chan listener.Command

	listening  bool
	cancel     context.CancelFunc
	listenDone chan error
}

func newHost(api render.API, cfg render.Config, opts hostOptions) *host {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &host{
		api:   api,
		cfg:   cfg,
		opts:  opts,
		log:   logger,
		spawn: make(chan listener.Command, 16),
	}
}

// listen starts the command socket. Spawn requests are queued for the main
// loop and the loop is woken up if it is blocked waiting for events.
func (h *host) listen(ctx context.Context, path string) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.listenDone = make(chan error, 1)
	h.listening = true
	srv := &listener.Server{
		Path:    path,
		Handler: h.enqueue,
		Logger:  h.log,
	}
	go func() {
		h.listenDone <- srv.ListenAndServe(ctx)
	}()
}

func (h *host) enqueue(cmd listener.Command) {
	select {
	case h.spawn <- cmd:
		glfw.PostEmptyEvent()
	default:
		h.log.Printf("spawn queue full, dropping %s", cmd.Name)
	}
}

// openWindow creates a window and its renderer. The title and size fall
// back to the host defaults when cmd leaves them empty.
func (h *host) openWindow(cmd listener.Command) error {
	h.opened++
	title := cmd.Title
	if title == "" {
		title = fmt.Sprintf("vrender #%d", h.opened)
	}
	width, height := h.opts.width, h.opts.height
	if cmd.Width > 0 {
		width = cmd.Width
	}
	if cmd.Height > 0 {
		height = cmd.Height
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return errors.Wrapf(err, "create window %q", title)
	}

	// The framebuffer has to have a non-zero size before the swapchain is built.
	for {
		fbw, fbh := window.GetFramebufferSize()
		if fbw > 0 && fbh > 0 {
			break
		}
		glfw.WaitEventsTimeout(0.01)
	}

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	renderer, err := render.New(h.api, window, h.cfg)
	if err != nil {
		window.Destroy()
		return errors.Wrapf(err, "window %q", title)
	}
	h.windows = append(h.windows, &hostWindow{
		title:    title,
		window:   window,
		renderer: renderer,
		stats:    newFrameStats(title, h.opts.statsInterval, h.log),
	})
	h.log.Printf("opened window %q (%dx%d)", title, width, height)
	return nil
}

// run drives every window until quit is closed, or until no windows are
// left and nothing can open new ones.
func (h *host) run(quit <-chan struct{}) {
	h.log.Printf("Entering main loop")
	for {
		select {
		case <-quit:
			return
		default:
		}
		h.checkListener()
		if len(h.windows) == 0 {
			if !h.listening {
				return
			}
			glfw.WaitEventsTimeout(0.1)
		} else {
			glfw.PollEvents()
		}
		h.drainSpawns()
		h.drawAll()
		time.Sleep(1 * time.Millisecond)
	}
}

func (h *host) checkListener() {
	if !h.listening {
		return
	}
	select {
	case err := <-h.listenDone:
		h.listening = false
		h.listenDone = nil
		if err != nil {
			h.log.Printf("listener stopped: %v", err)
		}
	default:
	}
}

func (h *host) drainSpawns() {
	for {
		select {
		case cmd := <-h.spawn:
			if err := h.openWindow(cmd); err != nil {
				h.log.Printf("spawn window: %v", err)
			}
		default:
			return
		}
	}
}

func (h *host) drawAll() {
	live := h.windows[:0]
	for _, w := range h.windows {
		if w.window.ShouldClose() {
			h.log.Printf("closing window %q", w.title)
			w.close()
			continue
		}
		if err := w.renderer.DrawFrame(); err != nil {
			h.log.Printf("window %q: draw frame: %v", w.title, err)
			w.close()
			continue
		}
		w.stats.frame()
		live = append(live, w)
	}
	for i := len(live); i < len(h.windows); i++ {
		h.windows[i] = nil
	}
	h.windows = live
}

// shutdown stops the listener and tears down every window. It must run on
// the main thread before glfw.Terminate.
func (h *host) shutdown() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.listenDone != nil {
		if err := <-h.listenDone; err != nil {
			h.log.Printf("listener stopped: %v", err)
		}
		h.listenDone = nil
	}
	h.listening = false
	for i := len(h.windows) - 1; i >= 0; i-- {
		h.windows[i].close()
	}
	h.windows = nil
}
