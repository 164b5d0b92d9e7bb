package cell

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/petrijr/hookflow/internal/slots"
	"github.com/petrijr/hookflow/pkg/api"
)

// Handler computes the next state of a reducer for one action.
type Handler[T any] func(ctx context.Context, payload any) (T, error)

// Actions maps action names to their handlers.
type Actions[T any] map[string]Handler[T]

// ReducerFunc builds the dispatch table for the current state. Handlers close
// over state and return the value that replaces it.
type ReducerFunc[T any] func(state T) Actions[T]

// Listener is notified after a handled action with the new state.
type Listener[T any] func(action string, state T)

// Reducer maps named actions to state transitions on top of a State.
type Reducer[T any] struct {
	host  api.Host
	fn    ReducerFunc[T]
	state *State[T]
	emit  bool

	mu        sync.RWMutex
	listeners []Listener[T]
}

// NewReducer creates a reducer bound to host with its own backing state.
// It panics if fn does not produce a valid dispatch table for initial.
func NewReducer[T any](host api.Host, fn ReducerFunc[T], initial T, opts ...Option) *Reducer[T] {
	return newReducer(host, fn, NewState(host, initial, opts...), initial, opts)
}

// UseReducer returns the reducer at the current call position of reg. It
// allocates a state slot followed by a reducer slot, so both survive
// re-renders.
func UseReducer[T any](reg *slots.Registry, fn ReducerFunc[T], initial T, opts ...Option) *Reducer[T] {
	state := UseState(reg, initial, opts...)
	cell, index := reg.AllocateReducer(func() any {
		return newReducer(reg.Host(), fn, state, initial, opts)
	})
	return slotAs[*Reducer[T]](cell, index)
}

func newReducer[T any](host api.Host, fn ReducerFunc[T], state *State[T], initial T, opts []Option) *Reducer[T] {
	if fn == nil {
		panic("hookflow: reducer function is nil")
	}
	if err := validate(fn(initial)); err != nil {
		panic(fmt.Sprintf("hookflow: %v", err))
	}
	return &Reducer[T]{
		host:  host,
		fn:    fn,
		state: state,
		emit:  collect(opts).emitEvents,
	}
}

func validate[T any](actions Actions[T]) error {
	if actions == nil {
		return fmt.Errorf("reducer returned no actions")
	}
	for name, h := range actions {
		if name == "" {
			return fmt.Errorf("reducer declares an action with an empty name")
		}
		if h == nil {
			return fmt.Errorf("action %q has nil handler", name)
		}
	}
	return nil
}

// Get returns the current state.
func (r *Reducer[T]) Get() T {
	return r.state.Get()
}

// State returns the backing state cell.
func (r *Reducer[T]) State() *State[T] {
	return r.state
}

// Dispatch runs the handler registered for action and stores its result.
// Unknown actions leave the state untouched, notify nobody and return the
// current state. Handler errors are returned as is and leave the state
// unchanged.
func (r *Reducer[T]) Dispatch(ctx context.Context, action string, payload any) (T, error) {
	current := r.state.Get()
	handler, ok := r.fn(current)[action]
	if !ok || handler == nil {
		return current, nil
	}

	next, err := handler(ctx, payload)
	if err != nil {
		if p, ok := api.IsPayloadTypeError(err); ok && p.Action == "" {
			p.Action = action
		}
		return current, err
	}
	if err := r.state.Set(ctx, next); err != nil {
		return r.state.Get(), err
	}

	value := r.state.Get()
	r.mu.RLock()
	listeners := append([]Listener[T](nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(action, value)
	}

	if r.emit {
		r.host.DispatchEvent(action, value)
	}
	return value, nil
}

// Subscribe registers fn for every handled action.
func (r *Reducer[T]) Subscribe(fn Listener[T]) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// When registers fn for one action only.
func (r *Reducer[T]) When(action string, fn func(state T)) {
	r.Subscribe(func(a string, state T) {
		if a == action {
			fn(state)
		}
	})
}

// Handle adapts a handler taking a typed payload. A payload of another type
// fails with *api.PayloadTypeError; a nil payload is passed as the zero P.
func Handle[T, P any](fn func(ctx context.Context, payload P) (T, error)) Handler[T] {
	return func(ctx context.Context, payload any) (T, error) {
		if payload == nil {
			var zero P
			return fn(ctx, zero)
		}
		p, ok := payload.(P)
		if !ok {
			var zero T
			return zero, &api.PayloadTypeError{
				Want: reflect.TypeFor[P]().String(),
				Got:  fmt.Sprintf("%T", payload),
			}
		}
		return fn(ctx, p)
	}
}
