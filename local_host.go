package hookflow

import (
	"errors"
	"sync"
)

// HostEvent is one event dispatched on a LocalHost.
type HostEvent struct {
	Name   string
	Detail any
}

// LocalHost is a synchronous, in-process Host. It is meant for tests,
// examples and server-side use where there is no UI runtime to embed into.
//
// Typical usage:
//
//	host := hookflow.NewLocalHost()
//	reg := hookflow.MustAttach(host)
//
//	var wf hookflow.Workflow
//	_ = host.Mount(func() {
//		wf = hookflow.UseWorkflow(reg, hookflow.WorkflowConfig{}, projections...)
//	})
//
//	_ = wf.Trigger(ctx, "customers.createCustomer", "Gopher")
//
// RequestUpdate renders before it returns. Updates requested while a render
// is running, from inside it or from another goroutine, mark the host dirty
// and the running render loop renders again once it is done, so renders
// never overlap. A render that requests an update on every pass never
// terminates.
//
// Renders run on whichever goroutine requested the update. That includes
// side-effect goroutines and the goroutine of a pending After check, so a
// render must not share unsynchronized variables with the code that mounted
// it.
type LocalHost struct {
	mu        sync.Mutex
	render    func()
	hooks     []func()
	listeners map[string][]func(detail any)
	events    []HostEvent
	dirty     bool
	rendering bool
	renders   int
}

// Ensure LocalHost provides the post-render hook the slot registry uses.
var (
	_ Host         = (*LocalHost)(nil)
	_ UpdateHooker = (*LocalHost)(nil)
)

// NewLocalHost returns an unmounted LocalHost.
func NewLocalHost() *LocalHost {
	return &LocalHost{listeners: make(map[string][]func(detail any))}
}

// Mount installs render and runs the first render.
//
// If Mount is called on a mounted host, it returns an error.
func (h *LocalHost) Mount(render func()) error {
	if render == nil {
		return errors.New("hookflow: LocalHost render function is nil")
	}

	h.mu.Lock()
	if h.render != nil {
		h.mu.Unlock()
		return errors.New("hookflow: LocalHost already mounted")
	}
	h.render = render
	h.mu.Unlock()

	h.RequestUpdate()
	return nil
}

// Unmount stops rendering and releases the host's slot registry. Cells
// handed out before keep working.
func (h *LocalHost) Unmount() {
	h.mu.Lock()
	h.render = nil
	h.dirty = false
	h.mu.Unlock()

	Release(h)
}

func (h *LocalHost) RequestUpdate() {
	h.mu.Lock()
	if h.render == nil {
		h.mu.Unlock()
		return
	}
	h.dirty = true
	if h.rendering {
		h.mu.Unlock()
		return
	}
	h.rendering = true
	h.mu.Unlock()

	h.loop()
}

func (h *LocalHost) loop() {
	finished := false
	defer func() {
		// A panicking render must not leave the host stuck in rendering.
		if !finished {
			h.mu.Lock()
			h.rendering = false
			h.dirty = false
			h.mu.Unlock()
		}
	}()

	for {
		h.mu.Lock()
		if !h.dirty || h.render == nil {
			h.rendering = false
			finished = true
			h.mu.Unlock()
			return
		}
		h.dirty = false
		render := h.render
		h.mu.Unlock()

		render()

		h.mu.Lock()
		h.renders++
		hooks := append([]func(){}, h.hooks...)
		h.mu.Unlock()

		for _, fn := range hooks {
			fn()
		}
	}
}

func (h *LocalHost) OnUpdated(fn func()) {
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// DispatchEvent records the event and hands detail to every listener of
// name, in registration order.
func (h *LocalHost) DispatchEvent(name string, detail any) bool {
	h.mu.Lock()
	h.events = append(h.events, HostEvent{Name: name, Detail: detail})
	listeners := append([]func(any){}, h.listeners[name]...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(detail)
	}
	return true
}

// AddEventListener registers fn for events called name.
func (h *LocalHost) AddEventListener(name string, fn func(detail any)) {
	h.mu.Lock()
	h.listeners[name] = append(h.listeners[name], fn)
	h.mu.Unlock()
}

// Renders returns the number of completed renders.
func (h *LocalHost) Renders() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.renders
}

// Events returns a copy of every event dispatched so far.
func (h *LocalHost) Events() []HostEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostEvent(nil), h.events...)
}
