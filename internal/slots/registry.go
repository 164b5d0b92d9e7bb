// Package slots keeps the per-host arena that gives render functions stable
// state across re-renders.
//
// A render allocates cells by calling the Allocate functions in a fixed
// order. The registry hands out the cell created at the same call position
// during the first render, so call order stands in for explicit identity.
// Render paths that skip or reorder allocations shift every following slot
// and silently attach state to the wrong caller.
package slots

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/petrijr/hookflow/pkg/api"
)

// Registry is the slot arena of one host.
type Registry struct {
	host api.Host

	mu        sync.Mutex
	cursor    int
	allocated int
	states    []any
	reducers  map[int]any
	workflows map[int]any
}

var (
	tableMu sync.Mutex
	table   = make(map[api.Host]*Registry)
)

// Attach returns the registry of host, creating it on first use. A new
// registry hooks itself into hosts implementing api.UpdateHooker so its
// cursor is reset after every render.
func Attach(host api.Host) (*Registry, error) {
	if host == nil {
		return nil, api.ErrInvalidHost
	}
	if !reflect.TypeOf(host).Comparable() {
		return nil, fmt.Errorf("%w: %T", api.ErrInvalidHost, host)
	}
	if v := reflect.ValueOf(host); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, api.ErrInvalidHost
	}

	tableMu.Lock()
	reg, ok := table[host]
	if !ok {
		reg = newRegistry(host)
		table[host] = reg
	}
	tableMu.Unlock()

	if !ok {
		if hooker, isHooker := host.(api.UpdateHooker); isHooker {
			hooker.OnUpdated(reg.Updated)
		}
	}
	return reg, nil
}

// MustAttach is like Attach but panics if the host cannot be attached.
func MustAttach(host api.Host) *Registry {
	reg, err := Attach(host)
	if err != nil {
		panic(fmt.Sprintf("hookflow: %v", err))
	}
	return reg
}

// Release forgets the registry of host. Cells already handed out keep
// working; the next Attach starts from an empty arena.
func Release(host api.Host) {
	if host == nil {
		return
	}
	tableMu.Lock()
	defer tableMu.Unlock()
	delete(table, host)
}

func newRegistry(host api.Host) *Registry {
	return &Registry{
		host:      host,
		reducers:  make(map[int]any),
		workflows: make(map[int]any),
	}
}

// Host returns the host this registry belongs to.
func (r *Registry) Host() api.Host {
	return r.host
}

// Updated rewinds the cursor. Hosts call it once per completed render.
func (r *Registry) Updated() {
	r.mu.Lock()
	r.cursor = 0
	r.mu.Unlock()
}

// Cursor returns the number of state slots allocated in the current render.
func (r *Registry) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Allocated returns the number of state slots ever created.
func (r *Registry) Allocated() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocated
}

// AllocateState returns the state cell at the current call position. On the
// first pass through a position, initial builds the cell. On later passes
// the existing cell is returned and, if update is non-nil, passed to it
// first.
func (r *Registry) AllocateState(initial func() any, update func(existing any)) (cell any, index int) {
	r.mu.Lock()
	if r.cursor == r.allocated {
		index = r.cursor
		r.mu.Unlock()

		// Build outside the lock: constructors may allocate on other hosts.
		cell = initial()

		r.mu.Lock()
		r.states = append(r.states, cell)
		r.cursor++
		r.allocated++
		r.mu.Unlock()
		return cell, index
	}

	index = r.cursor
	cell = r.states[index]
	r.cursor++
	r.mu.Unlock()

	if update != nil {
		update(cell)
	}
	return cell, index
}

// AllocateReducer returns the reducer companion of the state slot allocated
// just before it. build runs only on the first pass.
func (r *Registry) AllocateReducer(build func() any) (cell any, index int) {
	return r.companion(r.reducers, build)
}

// AllocateWorkflow returns the workflow companion of the state slot
// allocated just before it. build runs only on the first pass.
func (r *Registry) AllocateWorkflow(build func() any) (cell any, index int) {
	return r.companion(r.workflows, build)
}

func (r *Registry) companion(slots map[int]any, build func() any) (any, int) {
	r.mu.Lock()
	index := r.cursor - 1
	if index < 0 {
		r.mu.Unlock()
		panic(api.ErrNoPrecedingSlot)
	}
	existing, ok := slots[index]
	firstPass := r.cursor == r.allocated
	r.mu.Unlock()

	if ok || !firstPass {
		return existing, index
	}

	cell := build()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := slots[index]; ok {
		return existing, index
	}
	slots[index] = cell
	return cell, index
}
