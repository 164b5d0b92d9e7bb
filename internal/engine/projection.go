package engine

import (
	"context"
	"fmt"

	"github.com/petrijr/hookflow/internal/slots"
	"github.com/petrijr/hookflow/pkg/api"
	"github.com/petrijr/hookflow/pkg/cell"
)

// ProjectionSpec declares one named projection of a workflow. Build it with
// Project.
type ProjectionSpec struct {
	name  string
	build func(host api.Host) projection
	use   func(reg *slots.Registry) projection
}

// Name returns the projection name.
func (s ProjectionSpec) Name() string {
	return s.name
}

// Project declares a projection named name, backed by a reducer starting
// from initial. Plans treat a projection still equal to initial as not done.
func Project[T any](name string, reducer cell.ReducerFunc[T], initial T, opts ...cell.Option) ProjectionSpec {
	return ProjectionSpec{
		name: name,
		build: func(host api.Host) projection {
			return &reducerProjection[T]{
				reducer: cell.NewReducer(host, reducer, initial, opts...),
				initial: initial,
			}
		},
		use: func(reg *slots.Registry) projection {
			return &reducerProjection[T]{
				reducer: cell.UseReducer(reg, reducer, initial, opts...),
				initial: initial,
			}
		},
	}
}

// projection is the type-erased view the engine has of a reducer.
type projection interface {
	dispatch(ctx context.Context, action string, payload any) error
	value() any
	initialValue() any
}

type reducerProjection[T any] struct {
	reducer *cell.Reducer[T]
	initial T
}

func (p *reducerProjection[T]) dispatch(ctx context.Context, action string, payload any) error {
	_, err := p.reducer.Dispatch(ctx, action, payload)
	return err
}

func (p *reducerProjection[T]) value() any {
	return p.reducer.Get()
}

func (p *reducerProjection[T]) initialValue() any {
	return p.initial
}

func checkSpecs(specs []ProjectionSpec) {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		name := s.Name()
		if name == "" {
			panic("hookflow: projection name is empty")
		}
		if s.build == nil || s.use == nil {
			panic(fmt.Sprintf("hookflow: projection %q was not built with Project", name))
		}
		if seen[name] {
			panic(fmt.Sprintf("hookflow: duplicate projection %q", name))
		}
		seen[name] = true
	}
}
