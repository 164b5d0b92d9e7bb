package testutil

import (
	"context"
	"sync"
)

// Event is one call to FakeHost.DispatchEvent.
type Event struct {
	Name   string
	Detail any
}

// FakeHost is a host double that records update requests and events. It
// never renders by itself; tests call Render to simulate a completed render
// pass, which runs the registered post-render hooks.
type FakeHost struct {
	mu       sync.Mutex
	updates  int
	events   []Event
	hooks    []func()
	awaited  int
	awaitErr error
}

// NewFakeHost returns an empty FakeHost.
func NewFakeHost() *FakeHost {
	return &FakeHost{}
}

func (h *FakeHost) RequestUpdate() {
	h.mu.Lock()
	h.updates++
	h.mu.Unlock()
}

func (h *FakeHost) DispatchEvent(name string, detail any) bool {
	h.mu.Lock()
	h.events = append(h.events, Event{Name: name, Detail: detail})
	h.mu.Unlock()
	return true
}

func (h *FakeHost) OnUpdated(fn func()) {
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

func (h *FakeHost) UpdateComplete(ctx context.Context) error {
	h.mu.Lock()
	h.awaited++
	err := h.awaitErr
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return ctx.Err()
}

// FailUpdates makes every following UpdateComplete return err.
func (h *FakeHost) FailUpdates(err error) {
	h.mu.Lock()
	h.awaitErr = err
	h.mu.Unlock()
}

// Render runs render, if any, then every post-render hook.
func (h *FakeHost) Render(render func()) {
	if render != nil {
		render()
	}
	h.mu.Lock()
	hooks := append([]func(){}, h.hooks...)
	h.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Updates returns the number of RequestUpdate calls.
func (h *FakeHost) Updates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updates
}

// Awaited returns the number of UpdateComplete calls.
func (h *FakeHost) Awaited() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.awaited
}

// Events returns a copy of the dispatched events.
func (h *FakeHost) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// EventsNamed returns the dispatched events with the given name.
func (h *FakeHost) EventsNamed(name string) []Event {
	var out []Event
	for _, ev := range h.Events() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// BareHost implements only the mandatory host capabilities.
type BareHost struct {
	mu      sync.Mutex
	updates int
}

func (h *BareHost) RequestUpdate() {
	h.mu.Lock()
	h.updates++
	h.mu.Unlock()
}

func (h *BareHost) DispatchEvent(name string, detail any) bool { return false }

// Updates returns the number of RequestUpdate calls.
func (h *BareHost) Updates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updates
}
