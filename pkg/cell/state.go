package cell

import (
	"context"
	"fmt"
	"sync"

	"github.com/petrijr/hookflow/internal/clone"
	"github.com/petrijr/hookflow/internal/slots"
	"github.com/petrijr/hookflow/pkg/api"
)

// Subscriber is notified with the new value after every effective Set.
type Subscriber[T any] func(ctx context.Context, value T) error

// State is a single persisted value. Its first subscriber always asks the
// host to re-render.
type State[T any] struct {
	mu          sync.RWMutex
	value       T
	subscribers []Subscriber[T]
	merge       bool
}

// NewState creates a state cell bound to host, seeded with a clone of
// initial.
func NewState[T any](host api.Host, initial T, opts ...Option) *State[T] {
	o := collect(opts)
	s := &State[T]{
		value: clone.Clone(initial),
		merge: o.merge,
	}
	s.subscribers = append(s.subscribers, renderSubscriber[T](host, o.awaitRender))
	return s
}

// UseState returns the state cell at the current call position of reg,
// creating it from initial on the first render. On later renders initial is
// ignored unless UpdateDefault is given.
func UseState[T any](reg *slots.Registry, initial T, opts ...Option) *State[T] {
	o := collect(opts)
	var update func(any)
	if o.updateDefault {
		update = func(existing any) {
			if s, ok := existing.(*State[T]); ok {
				s.Inject(initial)
			}
		}
	}
	cell, index := reg.AllocateState(func() any {
		return NewState(reg.Host(), initial, opts...)
	}, update)
	return slotAs[*State[T]](cell, index)
}

func renderSubscriber[T any](host api.Host, await bool) Subscriber[T] {
	return func(ctx context.Context, _ T) error {
		host.RequestUpdate()
		if !await {
			return nil
		}
		if aw, ok := host.(api.UpdateAwaiter); ok {
			return aw.UpdateComplete(ctx)
		}
		return nil
	}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value with a clone of update and notifies subscribers in
// registration order, stopping at the first error. Setting the value the
// cell already holds is a no-op.
func (s *State[T]) Set(ctx context.Context, update T) error {
	s.mu.Lock()
	if clone.Same(update, s.value) {
		s.mu.Unlock()
		return nil
	}
	if s.merge {
		s.value = clone.Merge(s.value, update)
	} else {
		s.value = clone.Clone(update)
	}
	value := s.value
	subscribers := append([]Subscriber[T](nil), s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subscribers {
		if err := fn(ctx, value); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe appends fn to the subscribers. There is no way to unsubscribe;
// cells live as long as their host.
func (s *State[T]) Subscribe(fn Subscriber[T]) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Inject overwrites the value without cloning it and without notifying
// anyone. It exists to resynchronize a cell from outside a render.
func (s *State[T]) Inject(update T) {
	s.mu.Lock()
	s.value = update
	s.mu.Unlock()
}

func slotAs[C any](cell any, index int) C {
	c, ok := cell.(C)
	if !ok {
		var want C
		panic(&api.SlotTypeError{
			Index: index,
			Want:  fmt.Sprintf("%T", want),
			Got:   fmt.Sprintf("%T", cell),
		})
	}
	return c
}
